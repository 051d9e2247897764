package event

import (
	"fmt"
	"time"
)

// Type tags the producing family of an event.
type Type string

const (
	// TypeConfiguration carries configuration changes from the host.
	TypeConfiguration Type = "configuration"
	// TypeGenericIdentity carries identity requests, including push token syncs.
	TypeGenericIdentity Type = "genericIdentity"
	// TypeMessaging carries messaging interactions (notification tracking).
	TypeMessaging Type = "messaging"
	// TypeEdge tags outbound events handed back to the host for upload.
	TypeEdge Type = "edge"
)

// Source tags the intent of an event within its type family.
type Source string

const (
	// SourceRequestContent marks a request originated by the application.
	SourceRequestContent Source = "requestContent"
	// SourceResponseContent marks a response delivered by the host.
	SourceResponseContent Source = "responseContent"
	// SourceSharedState marks a shared-state change notification.
	SourceSharedState Source = "sharedState"
)

// Event is a single immutable record on the host event bus.
//
// Data holds the raw payload as decoded JSON (string-keyed maps, slices,
// strings, bools, numbers). It may be nil. Callers must not mutate Data
// after construction; Factory.New copies the map it is handed so the
// producer cannot either.
type Event struct {
	ID        string
	Type      Type
	Source    Source
	Timestamp time.Time
	Data      map[string]any
}

// Is reports whether the event carries the given (type, source) pair.
func (e *Event) Is(t Type, s Source) bool {
	return e.Type == t && e.Source == s
}

// StringValue returns the string stored at key in the payload.
// Missing key, nil payload, and non-string values all return ok=false.
func (e *Event) StringValue(key string) (string, bool) {
	if e.Data == nil {
		return "", false
	}
	v, ok := e.Data[key].(string)
	return v, ok
}

// BoolValue returns the bool stored at key in the payload.
// Missing key, nil payload, and non-bool values all return ok=false.
func (e *Event) BoolValue(key string) (bool, bool) {
	if e.Data == nil {
		return false, false
	}
	v, ok := e.Data[key].(bool)
	return v, ok
}

// MapValue returns the nested map stored at key in the payload.
// Missing key, nil payload, and non-map values all return ok=false.
func (e *Event) MapValue(key string) (map[string]any, bool) {
	if e.Data == nil {
		return nil, false
	}
	v, ok := e.Data[key].(map[string]any)
	return v, ok
}

// String implements fmt.Stringer for log output. Payload contents are
// deliberately omitted; they may carry tokens and identifiers.
func (e *Event) String() string {
	return fmt.Sprintf("event{id=%s type=%s source=%s}", e.ID, e.Type, e.Source)
}

// Factory stamps new events with an ID and a timestamp.
//
// Thread-safety: Factory is safe for concurrent use when its generator and
// clock are (both production implementations are).
type Factory struct {
	gen   IDGenerator
	clock Clock
}

// NewFactory creates a Factory. A nil gen defaults to UUIDv7Generator and a
// nil clock to SystemClock.
func NewFactory(gen IDGenerator, clock Clock) *Factory {
	if gen == nil {
		gen = UUIDv7Generator{}
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Factory{gen: gen, clock: clock}
}

// New builds a stamped event. The payload map is copied one level deep;
// nested maps and slices are shared and must not be mutated by the caller.
func (f *Factory) New(t Type, s Source, data map[string]any) *Event {
	var copied map[string]any
	if data != nil {
		copied = make(map[string]any, len(data))
		for k, v := range data {
			copied[k] = v
		}
	}
	return &Event{
		ID:        f.gen.Generate(),
		Type:      t,
		Source:    s,
		Timestamp: f.clock.Now(),
		Data:      copied,
	}
}

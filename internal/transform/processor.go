package transform

import (
	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/state"
)

// Inbound payload keys.
const (
	keyPushIdentifier    = "pushIdentifier"
	keyEventType         = "eventType"
	keyMessageID         = "messageId"
	keyActionID          = "actionId"
	keyApplicationOpened = "applicationOpened"
	keyAdobe             = "adobe"
	keyMixins            = "mixins"
	keyCJM               = "cjm"
)

// Branch names used in drops and logs.
const (
	branchPushSync = "pushSync"
	branchTracking = "tracking"
)

// AppInfo supplies the application bundle identifier for push registration.
// The host implements this; the Configuration appID key is the fallback when
// the host returns an empty string.
type AppInfo interface {
	AppID() string
}

// Processor renders gated inbound events into outbound edge events.
//
// Thread-safety: Processor is safe for concurrent use; it holds no mutable
// state beyond the injected factory, which is itself safe.
type Processor struct {
	factory *event.Factory
	appInfo AppInfo
}

// NewProcessor creates a Processor. A nil factory defaults to UUIDv7 IDs and
// the system clock; a nil appInfo leaves only the configuration fallback.
func NewProcessor(factory *event.Factory, appInfo AppInfo) *Processor {
	if factory == nil {
		factory = event.NewFactory(nil, nil)
	}
	return &Processor{factory: factory, appInfo: appInfo}
}

// Process routes ev to its transform branch.
//
// Returns:
//   - (out, nil) when a branch rendered an outbound event
//   - (nil, *Drop) when a branch matched but the event cannot ship
//   - (nil, nil) when no branch matches; the event is not for this extension
//
// Process never returns a non-Drop error. Same event, same snapshots, same
// payload: only the outbound ID and timestamp differ between calls.
func (p *Processor) Process(ev *event.Event, config, identity *state.Snapshot) (*event.Event, error) {
	switch {
	case ev.Is(event.TypeGenericIdentity, event.SourceRequestContent):
		return p.processPushSync(ev, config, identity)
	case ev.Is(event.TypeMessaging, event.SourceRequestContent):
		return p.processTracking(ev, config)
	default:
		return nil, nil
	}
}

// resolveAppID prefers the host-provided bundle identifier and falls back to
// the Configuration snapshot.
func (p *Processor) resolveAppID(config *state.Snapshot) string {
	if p.appInfo != nil {
		if id := p.appInfo.AppID(); id != "" {
			return id
		}
	}
	id, _ := config.StringValue(state.KeyAppID)
	return id
}

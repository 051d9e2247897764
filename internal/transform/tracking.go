package transform

import (
	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/xdm"
)

// trackingRequest is the typed decode of a notification interaction payload.
type trackingRequest struct {
	eventType         string
	messageID         string
	actionID          string
	applicationOpened bool
	mixins            map[string]any
}

func decodeTracking(ev *event.Event) (trackingRequest, *Drop) {
	if ev.Data == nil {
		return trackingRequest{}, newDrop(DropNilPayload, branchTracking, ev.ID,
			"tracking request carries no payload")
	}

	eventType, ok := ev.StringValue(keyEventType)
	if !ok || eventType == "" {
		return trackingRequest{}, newDrop(DropMissingTrackingField, branchTracking, ev.ID,
			"eventType absent or empty")
	}
	messageID, ok := ev.StringValue(keyMessageID)
	if !ok || messageID == "" {
		return trackingRequest{}, newDrop(DropMissingTrackingField, branchTracking, ev.ID,
			"messageId absent or empty")
	}

	// Optional fields: absence is not an error.
	actionID, _ := ev.StringValue(keyActionID)
	opened, _ := ev.BoolValue(keyApplicationOpened)

	return trackingRequest{
		eventType:         eventType,
		messageID:         messageID,
		actionID:          actionID,
		applicationOpened: opened,
		mixins:            extractMixins(ev),
	}, nil
}

// extractMixins pulls the caller's xdm overlay out of the adobe block.
// The mixins key wins outright over the legacy cjm key; an empty map reads
// as absent so a degenerate mixins value cannot shadow real cjm data.
func extractMixins(ev *event.Event) map[string]any {
	adobe, ok := ev.MapValue(keyAdobe)
	if !ok {
		return nil
	}
	if m, ok := adobe[keyMixins].(map[string]any); ok && len(m) > 0 {
		return m
	}
	if m, ok := adobe[keyCJM].(map[string]any); ok && len(m) > 0 {
		return m
	}
	return nil
}

// processTracking handles messaging/requestContent events: report a
// notification interaction as an experience event.
//
// The dataset check precedes payload decode. Without a configured dataset
// nothing can be tracked no matter what the payload says, and that is the
// one drop worth a warning.
func (p *Processor) processTracking(ev *event.Event, config *state.Snapshot) (*event.Event, error) {
	datasetID, ok := config.StringValue(state.KeyDatasetID)
	if !ok || datasetID == "" {
		return nil, newDrop(DropMissingDatasetID, branchTracking, ev.ID,
			"no experience event dataset configured")
	}

	req, drop := decodeTracking(ev)
	if drop != nil {
		return nil, drop
	}

	payload := xdm.BuildTracking(xdm.Tracking{
		EventType:         req.eventType,
		MessageID:         req.messageID,
		ActionID:          req.actionID,
		ApplicationOpened: req.applicationOpened,
		DatasetID:         datasetID,
		Mixins:            req.mixins,
	})
	return p.factory.New(event.TypeEdge, event.SourceRequestContent, payload), nil
}

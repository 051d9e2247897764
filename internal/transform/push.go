package transform

import (
	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/privacy"
	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/xdm"
)

// pushSyncRequest is the typed decode of a push token sync payload.
type pushSyncRequest struct {
	token string
}

func decodePushSync(ev *event.Event) (pushSyncRequest, *Drop) {
	token, ok := ev.StringValue(keyPushIdentifier)
	if !ok || token == "" {
		return pushSyncRequest{}, newDrop(DropMissingPushToken, branchPushSync, ev.ID,
			"push token absent or empty")
	}
	return pushSyncRequest{token: token}, nil
}

// processPushSync handles genericIdentity/requestContent events: attach the
// push token to the installation's ECID.
//
// Consent is read from the Configuration snapshot resolved at the event, so
// an event that queued across a consent change is judged by the snapshot
// that traveled with it.
func (p *Processor) processPushSync(ev *event.Event, config, identity *state.Snapshot) (*event.Event, error) {
	req, drop := decodePushSync(ev)
	if drop != nil {
		return nil, drop
	}

	statusValue, _ := config.StringValue(state.KeyPrivacyStatus)
	status, ok := privacy.Parse(statusValue)
	if !ok || status != privacy.StatusOptedIn {
		return nil, newDrop(DropPrivacyNotOptedIn, branchPushSync, ev.ID,
			"collect consent is not opted in")
	}

	ecid, ok := identity.StringValue(state.KeyECID)
	if !ok || ecid == "" {
		return nil, newDrop(DropMissingECID, branchPushSync, ev.ID,
			"identity snapshot carries no ECID")
	}

	useSandbox, _ := config.BoolValue(state.KeyUseSandbox)

	payload := xdm.BuildPushRegistration(xdm.PushRegistration{
		AppID:    p.resolveAppID(config),
		Token:    req.token,
		Platform: xdm.PlatformFor(useSandbox),
		ECID:     ecid,
	})
	return p.factory.New(event.TypeEdge, event.SourceRequestContent, payload), nil
}

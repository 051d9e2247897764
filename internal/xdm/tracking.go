package xdm

// Keys and fixed values of the tracking envelope.
const (
	keyExperience        = "_experience"
	keyJourneyManagement = "customerJourneyManagement"

	// pushProviderAPNS names the transport in tracking payloads. Fixed: the
	// sandbox flag affects only registration, never tracking attribution.
	pushProviderAPNS = "apns"

	// pushChannelID is the XDM channel identity for push.
	pushChannelID = "https://ns.adobe.com/xdm/channels/push"
)

// Tracking describes one validated notification interaction.
type Tracking struct {
	EventType         string
	MessageID         string
	ActionID          string // empty for non-custom interactions
	ApplicationOpened bool
	DatasetID         string
	Mixins            map[string]any // caller-supplied xdm overlay, may be nil
}

// BuildTracking renders the experience event envelope:
//
//	{"xdm": {...}, "meta": {"collect": {"datasetId": ...}}}
//
// The xdm block starts from the interaction fields, then the caller's mixins
// merge over it (mixins win every collision). When the merged block carries
// the journey-management sub-map, the fixed message-profile fragment merges
// into it so every interaction attributes back to the push channel.
func BuildTracking(tr Tracking) map[string]any {
	launches := 0
	if tr.ApplicationOpened {
		launches = 1
	}

	trackingBlock := map[string]any{
		"pushProvider":          pushProviderAPNS,
		"pushProviderMessageID": tr.MessageID,
	}
	if tr.ActionID != "" {
		trackingBlock["customAction"] = map[string]any{"actionID": tr.ActionID}
	}

	xdm := map[string]any{
		"eventType":                tr.EventType,
		"pushNotificationTracking": trackingBlock,
		"application": map[string]any{
			"launches": map[string]any{"value": launches},
		},
	}

	if len(tr.Mixins) > 0 {
		xdm = MergeOverwrite(xdm, tr.Mixins)
		injectMessageProfile(xdm)
	}

	return map[string]any{
		"xdm": xdm,
		"meta": map[string]any{
			"collect": map[string]any{"datasetId": tr.DatasetID},
		},
	}
}

// injectMessageProfile merges the fixed message-profile fragment into the
// journey-management sub-map. Absent that sub-map the payload is left alone:
// the fragment only means something in a journey context.
//
// xdm must be a freshly built map (MergeOverwrite output); it is mutated in
// place.
func injectMessageProfile(xdm map[string]any) {
	experience, ok := xdm[keyExperience].(map[string]any)
	if !ok {
		return
	}
	journey, ok := experience[keyJourneyManagement].(map[string]any)
	if !ok {
		return
	}
	experience[keyJourneyManagement] = MergeOverwrite(journey, messageProfileFragment())
}

func messageProfileFragment() map[string]any {
	return map[string]any{
		"messageProfile": map[string]any{
			"channel": map[string]any{"_id": pushChannelID},
		},
		"pushChannelContext": map[string]any{"platform": pushProviderAPNS},
	}
}

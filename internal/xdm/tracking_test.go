package xdm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trackingXDM(t *testing.T, payload map[string]any) map[string]any {
	t.Helper()
	xdm, ok := payload["xdm"].(map[string]any)
	require.True(t, ok, "payload must carry an xdm block")
	return xdm
}

func TestBuildTrackingEnvelope(t *testing.T) {
	got := BuildTracking(Tracking{
		EventType:         "pushTracking.applicationOpened",
		MessageID:         "msg-1",
		ApplicationOpened: true,
		DatasetID:         "ds-1",
	})

	xdm := trackingXDM(t, got)
	assert.Equal(t, "pushTracking.applicationOpened", xdm["eventType"])

	tracking := xdm["pushNotificationTracking"].(map[string]any)
	assert.Equal(t, "msg-1", tracking["pushProviderMessageID"])
	assert.Equal(t, "apns", tracking["pushProvider"])
	assert.NotContains(t, tracking, "customAction", "no actionID, no custom action block")

	launches := xdm["application"].(map[string]any)["launches"].(map[string]any)
	assert.Equal(t, 1, launches["value"])

	meta := got["meta"].(map[string]any)
	assert.Equal(t, map[string]any{"collect": map[string]any{"datasetId": "ds-1"}}, meta)
}

func TestBuildTrackingCustomAction(t *testing.T) {
	got := BuildTracking(Tracking{
		EventType: "pushTracking.customAction",
		MessageID: "msg-1",
		ActionID:  "accept",
		DatasetID: "ds-1",
	})

	xdm := trackingXDM(t, got)
	tracking := xdm["pushNotificationTracking"].(map[string]any)
	assert.Equal(t, map[string]any{"actionID": "accept"}, tracking["customAction"])

	launches := xdm["application"].(map[string]any)["launches"].(map[string]any)
	assert.Equal(t, 0, launches["value"], "interaction without open counts no launch")
}

func TestBuildTrackingMixinsMergeOverCore(t *testing.T) {
	got := BuildTracking(Tracking{
		EventType: "pushTracking.applicationOpened",
		MessageID: "msg-1",
		DatasetID: "ds-1",
		Mixins: map[string]any{
			"eventType": "overridden.by.mixin",
			"custom":    map[string]any{"k": "v"},
		},
	})

	xdm := trackingXDM(t, got)
	assert.Equal(t, "overridden.by.mixin", xdm["eventType"], "mixins win collisions")
	assert.Equal(t, map[string]any{"k": "v"}, xdm["custom"])
}

func TestBuildTrackingInjectsMessageProfile(t *testing.T) {
	got := BuildTracking(Tracking{
		EventType: "pushTracking.applicationOpened",
		MessageID: "msg-1",
		DatasetID: "ds-1",
		Mixins: map[string]any{
			"_experience": map[string]any{
				"customerJourneyManagement": map[string]any{
					"messageExecution": map[string]any{"messageExecutionID": "exec-1"},
				},
			},
		},
	})

	xdm := trackingXDM(t, got)
	journey := xdm["_experience"].(map[string]any)["customerJourneyManagement"].(map[string]any)

	assert.Equal(t, map[string]any{"messageExecutionID": "exec-1"}, journey["messageExecution"],
		"caller's journey data survives")
	profile := journey["messageProfile"].(map[string]any)
	assert.Equal(t, map[string]any{"_id": "https://ns.adobe.com/xdm/channels/push"}, profile["channel"])
	assert.Equal(t, map[string]any{"platform": "apns"}, journey["pushChannelContext"])
}

func TestBuildTrackingNoFragmentWithoutJourneyBlock(t *testing.T) {
	got := BuildTracking(Tracking{
		EventType: "pushTracking.applicationOpened",
		MessageID: "msg-1",
		DatasetID: "ds-1",
		Mixins:    map[string]any{"custom": "value"},
	})

	xdm := trackingXDM(t, got)
	assert.NotContains(t, xdm, "_experience",
		"fragment only applies inside a journey-management block")
}

func TestBuildTrackingNoFragmentWhenExperienceNotAMap(t *testing.T) {
	got := BuildTracking(Tracking{
		EventType: "pushTracking.applicationOpened",
		MessageID: "msg-1",
		DatasetID: "ds-1",
		Mixins:    map[string]any{"_experience": "corrupt"},
	})

	xdm := trackingXDM(t, got)
	assert.Equal(t, "corrupt", xdm["_experience"], "malformed block passes through untouched")
}

func TestBuildTrackingDoesNotMutateMixins(t *testing.T) {
	mixins := map[string]any{
		"_experience": map[string]any{
			"customerJourneyManagement": map[string]any{},
		},
	}

	BuildTracking(Tracking{
		EventType: "e", MessageID: "m", DatasetID: "d", Mixins: mixins,
	})

	journey := mixins["_experience"].(map[string]any)["customerJourneyManagement"].(map[string]any)
	assert.Empty(t, journey, "caller's mixin map stays untouched")
}

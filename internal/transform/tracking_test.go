package transform

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/state"
)

func trackingConfig() *state.Snapshot {
	return makeConfig(map[string]any{
		state.KeyPrivacyStatus: "optedIn",
		state.KeyDatasetID:     "ds-1",
	})
}

func xdmBlock(t *testing.T, out *event.Event) map[string]any {
	t.Helper()
	require.NotNil(t, out)
	block, ok := out.Data["xdm"].(map[string]any)
	require.True(t, ok)
	return block
}

func TestTrackingRoundTrip(t *testing.T) {
	p := makeProcessor("out-1")

	out, err := p.Process(makeTrackingEvent(map[string]any{
		keyEventType:         "pushTracking.customAction",
		keyMessageID:         "msg-1",
		keyActionID:          "accept",
		keyApplicationOpened: true,
	}), trackingConfig(), makeIdentity("abc123"))
	require.NoError(t, err)

	assert.Equal(t, event.TypeEdge, out.Type)
	assert.Equal(t, event.SourceRequestContent, out.Source)

	xdm := xdmBlock(t, out)
	assert.Equal(t, "pushTracking.customAction", xdm["eventType"])

	tracking := xdm["pushNotificationTracking"].(map[string]any)
	assert.Equal(t, "msg-1", tracking["pushProviderMessageID"])
	assert.Equal(t, "apns", tracking["pushProvider"])
	assert.Equal(t, map[string]any{"actionID": "accept"}, tracking["customAction"])

	launches := xdm["application"].(map[string]any)["launches"].(map[string]any)
	assert.Equal(t, 1, launches["value"])

	meta := out.Data["meta"].(map[string]any)
	assert.Equal(t, map[string]any{"collect": map[string]any{"datasetId": "ds-1"}}, meta)
}

func TestTrackingWithoutActionID(t *testing.T) {
	p := makeProcessor("out-1")

	out, err := p.Process(makeTrackingEvent(map[string]any{
		keyEventType: "pushTracking.applicationOpened",
		keyMessageID: "msg-1",
	}), trackingConfig(), makeIdentity("abc123"))
	require.NoError(t, err)

	xdm := xdmBlock(t, out)
	tracking := xdm["pushNotificationTracking"].(map[string]any)
	assert.NotContains(t, tracking, "customAction")

	launches := xdm["application"].(map[string]any)["launches"].(map[string]any)
	assert.Equal(t, 0, launches["value"], "applicationOpened absent reads as not opened")
}

func TestTrackingRequiresDatasetID(t *testing.T) {
	p := makeProcessor()
	ev := makeTrackingEvent(map[string]any{
		keyEventType: "pushTracking.applicationOpened",
		keyMessageID: "msg-1",
	})

	tests := []struct {
		name   string
		config map[string]any
	}{
		{"dataset absent", map[string]any{state.KeyPrivacyStatus: "optedIn"}},
		{"dataset empty", map[string]any{state.KeyPrivacyStatus: "optedIn", state.KeyDatasetID: ""}},
		{"dataset wrong type", map[string]any{state.KeyPrivacyStatus: "optedIn", state.KeyDatasetID: 7}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(ev, makeConfig(tt.config), makeIdentity("abc123"))
			assert.Nil(t, out)

			drop, ok := AsDrop(err)
			require.True(t, ok)
			assert.Equal(t, DropMissingDatasetID, drop.Code)
			assert.Equal(t, slog.LevelWarn, drop.Level(), "missing configuration is worth a warning")
		})
	}
}

func TestTrackingNilPayload(t *testing.T) {
	p := makeProcessor()

	out, err := p.Process(makeTrackingEvent(nil), trackingConfig(), makeIdentity("abc123"))
	assert.Nil(t, out)

	drop, ok := AsDrop(err)
	require.True(t, ok)
	assert.Equal(t, DropNilPayload, drop.Code)
	assert.Equal(t, slog.LevelDebug, drop.Level())
}

func TestTrackingRequiresEventTypeAndMessageID(t *testing.T) {
	p := makeProcessor()

	tests := []struct {
		name string
		data map[string]any
	}{
		{"eventType missing", map[string]any{keyMessageID: "msg-1"}},
		{"eventType empty", map[string]any{keyEventType: "", keyMessageID: "msg-1"}},
		{"eventType wrong type", map[string]any{keyEventType: 1, keyMessageID: "msg-1"}},
		{"messageId missing", map[string]any{keyEventType: "pushTracking.applicationOpened"}},
		{"messageId empty", map[string]any{keyEventType: "pushTracking.applicationOpened", keyMessageID: ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := p.Process(makeTrackingEvent(tt.data), trackingConfig(), makeIdentity("abc123"))
			assert.Nil(t, out)
			assert.True(t, IsDropCode(err, DropMissingTrackingField))
		})
	}
}

func TestTrackingMixinsWinOverCJM(t *testing.T) {
	p := makeProcessor("out-1")

	out, err := p.Process(makeTrackingEvent(map[string]any{
		keyEventType: "pushTracking.applicationOpened",
		keyMessageID: "msg-1",
		keyAdobe: map[string]any{
			keyMixins: map[string]any{"winner": "mixins"},
			keyCJM:    map[string]any{"loser": "cjm"},
		},
	}), trackingConfig(), makeIdentity("abc123"))
	require.NoError(t, err)

	xdm := xdmBlock(t, out)
	assert.Equal(t, "mixins", xdm["winner"])
	assert.NotContains(t, xdm, "loser", "cjm is ignored outright when mixins is present")
}

func TestTrackingLegacyCJMFallback(t *testing.T) {
	p := makeProcessor("out-1")

	out, err := p.Process(makeTrackingEvent(map[string]any{
		keyEventType: "pushTracking.applicationOpened",
		keyMessageID: "msg-1",
		keyAdobe: map[string]any{
			keyCJM: map[string]any{
				"_experience": map[string]any{
					"customerJourneyManagement": map[string]any{
						"messageExecution": map[string]any{"messageExecutionID": "exec-1"},
					},
				},
			},
		},
	}), trackingConfig(), makeIdentity("abc123"))
	require.NoError(t, err)

	xdm := xdmBlock(t, out)
	journey := xdm["_experience"].(map[string]any)["customerJourneyManagement"].(map[string]any)
	assert.Contains(t, journey, "messageExecution", "legacy cjm data lands in the payload")
	assert.Contains(t, journey, "messageProfile", "fixed fragment rides along")
	assert.Equal(t, map[string]any{"platform": "apns"}, journey["pushChannelContext"])
}

func TestTrackingEmptyMixinsFallsBackToCJM(t *testing.T) {
	p := makeProcessor("out-1")

	out, err := p.Process(makeTrackingEvent(map[string]any{
		keyEventType: "pushTracking.applicationOpened",
		keyMessageID: "msg-1",
		keyAdobe: map[string]any{
			keyMixins: map[string]any{},
			keyCJM:    map[string]any{"fromCJM": true},
		},
	}), trackingConfig(), makeIdentity("abc123"))
	require.NoError(t, err)

	xdm := xdmBlock(t, out)
	assert.Equal(t, true, xdm["fromCJM"], "an empty mixins map reads as absent")
}

func TestTrackingMalformedAdobeBlock(t *testing.T) {
	p := makeProcessor("out-1")

	out, err := p.Process(makeTrackingEvent(map[string]any{
		keyEventType: "pushTracking.applicationOpened",
		keyMessageID: "msg-1",
		keyAdobe:     "not a map",
	}), trackingConfig(), makeIdentity("abc123"))
	require.NoError(t, err, "a malformed adobe block is ignored, not fatal")

	xdm := xdmBlock(t, out)
	assert.Equal(t, "pushTracking.applicationOpened", xdm["eventType"])
	assert.NotContains(t, xdm, "_experience")
}

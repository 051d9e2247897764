package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSnapshotIsSet(t *testing.T) {
	tests := []struct {
		name string
		snap *Snapshot
		want bool
	}{
		{"nil snapshot", nil, false},
		{"pending", &Snapshot{Status: StatusPending}, false},
		{"none", &Snapshot{Status: StatusNone}, false},
		{"set", &Snapshot{Status: StatusSet}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.snap.IsSet())
		})
	}
}

func TestSnapshotStringValue(t *testing.T) {
	snap := &Snapshot{
		Owner:  OwnerConfiguration,
		Status: StatusSet,
		Data: map[string]any{
			KeyPrivacyStatus: "optedIn",
			KeyUseSandbox:    true,
		},
	}

	got, ok := snap.StringValue(KeyPrivacyStatus)
	assert.True(t, ok)
	assert.Equal(t, "optedIn", got)

	_, ok = snap.StringValue(KeyUseSandbox)
	assert.False(t, ok, "bool should not read as string")

	_, ok = snap.StringValue(KeyDatasetID)
	assert.False(t, ok)

	var nilSnap *Snapshot
	_, ok = nilSnap.StringValue(KeyPrivacyStatus)
	assert.False(t, ok, "nil snapshot reads as absent")
}

func TestSnapshotBoolValue(t *testing.T) {
	snap := &Snapshot{Data: map[string]any{KeyUseSandbox: true, KeyAppID: "com.example.app"}}

	got, ok := snap.BoolValue(KeyUseSandbox)
	assert.True(t, ok)
	assert.True(t, got)

	_, ok = snap.BoolValue(KeyAppID)
	assert.False(t, ok)

	_, ok = (&Snapshot{}).BoolValue(KeyUseSandbox)
	assert.False(t, ok)
}

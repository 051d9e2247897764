package journal

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/xdm"
)

// marshalPayload converts an event payload to canonical JSON TEXT.
// A nil payload stores as the literal 'null'.
func marshalPayload(data map[string]any) (string, error) {
	out, err := xdm.MarshalCanonical(data)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(out), nil
}

// unmarshalPayload parses canonical JSON TEXT back into a payload map.
// Uses json.Number to avoid float64 precision loss for values > 2^53,
// which would silently change payload hashes on replay.
func unmarshalPayload(data string) (map[string]any, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return m, nil
}

// snapshotRecord is the stored shape of a shared-state snapshot.
type snapshotRecord struct {
	Owner   string         `json:"owner"`
	Version int64          `json:"version"`
	Status  string         `json:"status"`
	Data    map[string]any `json:"data"`
}

// marshalSnapshot converts a snapshot to canonical JSON TEXT.
// A nil snapshot (owner never published) stores as the literal 'null'.
func marshalSnapshot(s *state.Snapshot) (string, error) {
	if s == nil {
		return "null", nil
	}
	out, err := xdm.MarshalCanonical(map[string]any{
		"owner":   s.Owner,
		"version": s.Version,
		"status":  string(s.Status),
		"data":    s.Data,
	})
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return string(out), nil
}

// unmarshalSnapshot parses stored snapshot TEXT. 'null' reads back as nil.
func unmarshalSnapshot(data string) (*state.Snapshot, error) {
	if data == "" || data == "null" {
		return nil, nil
	}
	var rec snapshotRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &state.Snapshot{
		Owner:   rec.Owner,
		Version: rec.Version,
		Status:  state.Status(rec.Status),
		Data:    rec.Data,
	}, nil
}

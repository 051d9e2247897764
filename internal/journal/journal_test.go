package journal

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/extension"
	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/xdm"
)

// createTestJournal creates a journal backed by a temp file.
func createTestJournal(t *testing.T) *Journal {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

// createTestEvent creates an event with a fixed timestamp for round-trip checks.
func createTestEvent(id string, data map[string]any) *event.Event {
	return &event.Event{
		ID:        id,
		Type:      event.TypeMessaging,
		Source:    event.SourceRequestContent,
		Timestamp: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Data:      data,
	}
}

func configSnapshot() *state.Snapshot {
	return &state.Snapshot{
		Owner:   state.OwnerConfiguration,
		Version: 3,
		Status:  state.StatusSet,
		Data:    map[string]any{state.KeyPrivacyStatus: "optedIn", state.KeyDatasetID: "ds-1"},
	}
}

func identitySnapshot() *state.Snapshot {
	return &state.Snapshot{
		Owner:   state.OwnerIdentity,
		Version: 1,
		Status:  state.StatusSet,
		Data:    map[string]any{state.KeyECID: "abc123"},
	}
}

func TestOpen_CreatesNewDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer j.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("database file was not created")
	}
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	for i := 0; i < 3; i++ {
		j, err := Open(path)
		if err != nil {
			t.Fatalf("Open() iteration %d failed: %v", i, err)
		}
		j.Close()
	}

	j, err := Open(path)
	if err != nil {
		t.Fatalf("final Open() failed: %v", err)
	}
	defer j.Close()

	for _, table := range []string{"events", "outcomes"} {
		var name string
		err := j.db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q not found after idempotent opens: %v", table, err)
		}
	}
}

func TestOpen_AppliesPragmas(t *testing.T) {
	j := createTestJournal(t)

	if err := j.verifyPragma("journal_mode", "wal"); err != nil {
		t.Error(err)
	}
	if err := j.verifyPragma("foreign_keys", "1"); err != nil {
		t.Error(err)
	}
	if err := j.verifyPragma("busy_timeout", "5000"); err != nil {
		t.Error(err)
	}
}

func TestRecordDelivery_Idempotent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	ev := createTestEvent("evt-1", map[string]any{"messageId": "m1"})

	for i := 0; i < 2; i++ {
		if err := j.RecordDelivery(ctx, 1, ev, configSnapshot(), identitySnapshot()); err != nil {
			t.Fatalf("RecordDelivery() attempt %d failed: %v", i, err)
		}
	}

	var count int
	if err := j.db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		t.Fatalf("count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("events count = %d, want 1 (duplicate should be ignored)", count)
	}
}

func TestRecordDelivery_NilEvent(t *testing.T) {
	j := createTestJournal(t)

	if err := j.RecordDelivery(context.Background(), 1, nil, nil, nil); err == nil {
		t.Error("RecordDelivery(nil) should fail")
	}
}

func TestRecordOutcome_OncePerEvent(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	ev := createTestEvent("evt-1", nil)

	if err := j.RecordDelivery(ctx, 1, ev, nil, nil); err != nil {
		t.Fatalf("RecordDelivery() failed: %v", err)
	}

	first := extension.Outcome{Disposition: extension.DispositionIgnored}
	second := extension.Outcome{Disposition: extension.DispositionDropped, Reason: "MISSING_ECID"}

	if err := j.RecordOutcome(ctx, ev.ID, first); err != nil {
		t.Fatalf("first RecordOutcome() failed: %v", err)
	}
	if err := j.RecordOutcome(ctx, ev.ID, second); err != nil {
		t.Fatalf("second RecordOutcome() failed: %v", err)
	}

	got, err := j.ReadOutcome(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ReadOutcome() failed: %v", err)
	}
	if got.Disposition != string(extension.DispositionIgnored) {
		t.Errorf("disposition = %q, want first write %q", got.Disposition, extension.DispositionIgnored)
	}
}

func TestRecordOutcome_RequiresEvent(t *testing.T) {
	j := createTestJournal(t)

	err := j.RecordOutcome(context.Background(), "no-such-event",
		extension.Outcome{Disposition: extension.DispositionIgnored})
	if err == nil {
		t.Error("RecordOutcome() for unknown event should violate the foreign key")
	}
}

func TestReadEntries_DeterministicOrder(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	// Insert out of order; reads must come back seq-ordered.
	for _, rec := range []struct {
		seq int64
		id  string
	}{{2, "evt-b"}, {1, "evt-a"}, {3, "evt-c"}} {
		ev := createTestEvent(rec.id, nil)
		if err := j.RecordDelivery(ctx, rec.seq, ev, nil, nil); err != nil {
			t.Fatalf("RecordDelivery(%s) failed: %v", rec.id, err)
		}
	}

	entries, err := j.ReadEntries(ctx)
	if err != nil {
		t.Fatalf("ReadEntries() failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	for i, wantID := range []string{"evt-a", "evt-b", "evt-c"} {
		if entries[i].Event.ID != wantID {
			t.Errorf("entries[%d].Event.ID = %q, want %q", i, entries[i].Event.ID, wantID)
		}
		if entries[i].Seq != int64(i+1) {
			t.Errorf("entries[%d].Seq = %d, want %d", i, entries[i].Seq, i+1)
		}
	}
}

func TestReadEntries_EmptyJournal(t *testing.T) {
	j := createTestJournal(t)

	entries, err := j.ReadEntries(context.Background())
	if err != nil {
		t.Fatalf("ReadEntries() failed: %v", err)
	}
	if entries == nil {
		t.Error("ReadEntries() should return empty slice, not nil")
	}
	if len(entries) != 0 {
		t.Errorf("len(entries) = %d, want 0", len(entries))
	}
}

func TestReadEntries_RoundTripsSnapshots(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()
	ev := createTestEvent("evt-1", map[string]any{"pushIdentifier": "tok1"})

	if err := j.RecordDelivery(ctx, 1, ev, configSnapshot(), nil); err != nil {
		t.Fatalf("RecordDelivery() failed: %v", err)
	}

	entries, err := j.ReadEntries(ctx)
	if err != nil {
		t.Fatalf("ReadEntries() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len(entries) = %d, want 1", len(entries))
	}

	entry := entries[0]
	if !entry.Event.Timestamp.Equal(ev.Timestamp) {
		t.Errorf("timestamp = %v, want %v", entry.Event.Timestamp, ev.Timestamp)
	}
	if got, _ := entry.Event.StringValue("pushIdentifier"); got != "tok1" {
		t.Errorf("payload pushIdentifier = %q, want tok1", got)
	}

	config := entry.Config
	if config == nil {
		t.Fatal("config snapshot did not round trip")
	}
	if config.Owner != state.OwnerConfiguration || config.Version != 3 || !config.IsSet() {
		t.Errorf("config snapshot = %+v, want owner=Configuration version=3 status=set", config)
	}
	if got, _ := config.StringValue(state.KeyPrivacyStatus); got != "optedIn" {
		t.Errorf("config privacy.status = %q, want optedIn", got)
	}

	if entry.Identity != nil {
		t.Errorf("identity snapshot = %+v, want nil (never published)", entry.Identity)
	}
}

func TestReadDeliveries_JoinsOutcomes(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	outbound := &event.Event{
		ID:     "out-1",
		Type:   event.TypeEdge,
		Source: event.SourceRequestContent,
		Data:   map[string]any{"xdm": map[string]any{"eventType": "pushTracking.applicationOpened"}},
	}

	withOutcome := createTestEvent("evt-a", nil)
	if err := j.RecordDelivery(ctx, 1, withOutcome, nil, nil); err != nil {
		t.Fatalf("RecordDelivery(evt-a) failed: %v", err)
	}
	if err := j.RecordOutcome(ctx, withOutcome.ID, extension.Outcome{
		Disposition: extension.DispositionDispatched,
		Outbound:    outbound,
	}); err != nil {
		t.Fatalf("RecordOutcome(evt-a) failed: %v", err)
	}

	withoutOutcome := createTestEvent("evt-b", nil)
	if err := j.RecordDelivery(ctx, 2, withoutOutcome, nil, nil); err != nil {
		t.Fatalf("RecordDelivery(evt-b) failed: %v", err)
	}

	deliveries, err := j.ReadDeliveries(ctx)
	if err != nil {
		t.Fatalf("ReadDeliveries() failed: %v", err)
	}
	if len(deliveries) != 2 {
		t.Fatalf("len(deliveries) = %d, want 2", len(deliveries))
	}

	first := deliveries[0]
	if first.Outcome == nil {
		t.Fatal("evt-a should carry an outcome")
	}
	if first.Outcome.Disposition != string(extension.DispositionDispatched) {
		t.Errorf("disposition = %q, want dispatched", first.Outcome.Disposition)
	}
	if first.Outcome.Outbound == nil || first.Outcome.Outbound.ID != "out-1" {
		t.Errorf("outbound = %+v, want out-1", first.Outcome.Outbound)
	}
	if first.Outcome.PayloadHash != xdm.MustPayloadHash(outbound.Data) {
		t.Error("stored payload hash does not match the outbound payload")
	}

	if deliveries[1].Outcome != nil {
		t.Errorf("evt-b outcome = %+v, want nil", deliveries[1].Outcome)
	}
}

func TestReadOutcome_HashSurvivesRoundTrip(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	// Numeric payloads must keep their hash through storage: the replay
	// check rehashes the read-back payload.
	outbound := &event.Event{
		ID:     "out-1",
		Type:   event.TypeEdge,
		Source: event.SourceRequestContent,
		Data: map[string]any{
			"xdm": map[string]any{
				"application": map[string]any{"launches": map[string]any{"value": 1}},
			},
		},
	}

	ev := createTestEvent("evt-1", nil)
	if err := j.RecordDelivery(ctx, 1, ev, nil, nil); err != nil {
		t.Fatalf("RecordDelivery() failed: %v", err)
	}
	if err := j.RecordOutcome(ctx, ev.ID, extension.Outcome{
		Disposition: extension.DispositionDispatched,
		Outbound:    outbound,
	}); err != nil {
		t.Fatalf("RecordOutcome() failed: %v", err)
	}

	got, err := j.ReadOutcome(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ReadOutcome() failed: %v", err)
	}
	rehashed, err := xdm.PayloadHash(got.Outbound.Data)
	if err != nil {
		t.Fatalf("PayloadHash() on read-back payload failed: %v", err)
	}
	if rehashed != got.PayloadHash {
		t.Errorf("rehash = %s, stored = %s", rehashed, got.PayloadHash)
	}
}

func TestReadOutcome_NotFound(t *testing.T) {
	j := createTestJournal(t)

	_, err := j.ReadOutcome(context.Background(), "no-such-event")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestLastSeq(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	seq, err := j.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 0 {
		t.Errorf("LastSeq() on empty journal = %d, want 0", seq)
	}

	for i := int64(1); i <= 3; i++ {
		ev := createTestEvent(string(rune('a'+i)), nil)
		if err := j.RecordDelivery(ctx, i, ev, nil, nil); err != nil {
			t.Fatalf("RecordDelivery() failed: %v", err)
		}
	}

	seq, err = j.LastSeq(ctx)
	if err != nil {
		t.Fatalf("LastSeq() failed: %v", err)
	}
	if seq != 3 {
		t.Errorf("LastSeq() = %d, want 3", seq)
	}
}

func TestStats(t *testing.T) {
	j := createTestJournal(t)
	ctx := context.Background()

	records := []struct {
		id          string
		disposition extension.Disposition
	}{
		{"evt-a", extension.DispositionDispatched},
		{"evt-b", extension.DispositionDispatched},
		{"evt-c", extension.DispositionDropped},
		{"evt-d", extension.DispositionHandled},
	}
	for i, rec := range records {
		ev := createTestEvent(rec.id, nil)
		if err := j.RecordDelivery(ctx, int64(i+1), ev, nil, nil); err != nil {
			t.Fatalf("RecordDelivery(%s) failed: %v", rec.id, err)
		}
		if err := j.RecordOutcome(ctx, rec.id, extension.Outcome{Disposition: rec.disposition}); err != nil {
			t.Fatalf("RecordOutcome(%s) failed: %v", rec.id, err)
		}
	}

	stats, err := j.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() failed: %v", err)
	}
	want := map[string]int{"dispatched": 2, "dropped": 1, "handled": 1}
	for disposition, count := range want {
		if stats[disposition] != count {
			t.Errorf("stats[%q] = %d, want %d", disposition, stats[disposition], count)
		}
	}
}

func TestObserver_RecordsDeliveryAndOutcome(t *testing.T) {
	j := createTestJournal(t)

	observe := j.Observer()
	ev := createTestEvent("evt-1", map[string]any{"pushIdentifier": "tok1"})
	observe(1, ev, configSnapshot(), identitySnapshot(), extension.Outcome{
		Disposition: extension.DispositionDropped,
		Reason:      "MISSING_ECID",
	})

	got, err := j.ReadOutcome(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("ReadOutcome() failed: %v", err)
	}
	if got.Disposition != "dropped" || got.Reason != "MISSING_ECID" {
		t.Errorf("outcome = %+v, want dropped/MISSING_ECID", got)
	}
}

package harness

import (
	"context"
	"fmt"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/extension"
	"github.com/solaria-labs/herald/internal/journal"
	"github.com/solaria-labs/herald/internal/testutil"
	"github.com/solaria-labs/herald/internal/transform"
	"github.com/solaria-labs/herald/internal/xdm"
)

// Divergence is one mismatch between a journaled outcome and the outcome a
// fresh extension produced for the same delivery.
type Divergence struct {
	EventID  string `json:"eventId"`
	Field    string `json:"field"` // "disposition", "reason", or "payload_hash"
	Stored   string `json:"stored"`
	Replayed string `json:"replayed"`
}

// ReplayReport summarizes a replay run.
type ReplayReport struct {
	// Entries is the number of journaled deliveries.
	Entries int `json:"entries"`

	// Compared is the number of deliveries with a stored outcome that were
	// rerun and compared.
	Compared int `json:"compared"`

	// Skipped counts deliveries whose outcome write never landed. They are
	// rerun for state effects but nothing exists to compare against.
	Skipped int `json:"skipped"`

	// Divergences lists every mismatch, in journal order.
	Divergences []Divergence `json:"divergences"`
}

// Clean reports whether the replay reproduced every stored outcome.
func (r *ReplayReport) Clean() bool {
	return len(r.Divergences) == 0
}

// discardDispatcher swallows outbound events. Replay only inspects the
// returned outcome; nothing should reach a network.
type discardDispatcher struct{}

func (discardDispatcher) Dispatch(*event.Event) {}

// noopScheduler ignores pause and resume signals. Replay feeds deliveries
// directly, so there is no queue to gate.
type noopScheduler struct{}

func (noopScheduler) StopEvents()  {}
func (noopScheduler) StartEvents() {}

// Replay reruns every journaled delivery through a fresh extension and
// compares the new outcomes against the stored ones. Because each entry
// carries the snapshots it was judged by, replay is independent of the
// order configuration changed in the original run.
//
// appID substitutes for the host's application identifier, which is not
// journaled. A different appID than the original run changes push payload
// hashes; pass the original host's identifier for byte-exact comparison.
func Replay(ctx context.Context, j *journal.Journal, appID string) (*ReplayReport, error) {
	deliveries, err := j.ReadDeliveries(ctx)
	if err != nil {
		return nil, fmt.Errorf("read deliveries: %w", err)
	}

	clock := testutil.NewClock(scenarioEpoch)
	outbound := event.NewFactory(event.NewSequentialGenerator("replay"), clock)
	processor := transform.NewProcessor(outbound, testutil.StaticAppInfo(appID))
	ext := extension.New(discardDispatcher{}, noopScheduler{}, processor)

	report := &ReplayReport{
		Entries:     len(deliveries),
		Divergences: []Divergence{},
	}

	for _, d := range deliveries {
		outcome := ext.HandleEvent(d.Entry.Event, d.Entry.Config, d.Entry.Identity)

		if d.Outcome == nil {
			report.Skipped++
			continue
		}
		report.Compared++
		report.compare(d.Entry.Event.ID, d.Outcome, outcome)
	}

	return report, nil
}

// compare checks one stored outcome against its replayed counterpart.
// A disposition mismatch suppresses the finer-grained checks; they would
// only restate the same divergence.
func (r *ReplayReport) compare(eventID string, stored *journal.OutcomeRecord, replayed extension.Outcome) {
	if stored.Disposition != string(replayed.Disposition) {
		r.Divergences = append(r.Divergences, Divergence{
			EventID:  eventID,
			Field:    "disposition",
			Stored:   stored.Disposition,
			Replayed: string(replayed.Disposition),
		})
		return
	}

	if stored.Reason != replayed.Reason {
		r.Divergences = append(r.Divergences, Divergence{
			EventID:  eventID,
			Field:    "reason",
			Stored:   stored.Reason,
			Replayed: replayed.Reason,
		})
	}

	replayedHash := ""
	if replayed.Outbound != nil {
		h, err := xdm.PayloadHash(replayed.Outbound.Data)
		if err != nil {
			replayedHash = fmt.Sprintf("unhashable: %v", err)
		} else {
			replayedHash = h
		}
	}
	if stored.PayloadHash != replayedHash {
		r.Divergences = append(r.Divergences, Divergence{
			EventID:  eventID,
			Field:    "payload_hash",
			Stored:   stored.PayloadHash,
			Replayed: replayedHash,
		})
	}
}

package journal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/extension"
	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/xdm"
)

// RecordDelivery inserts a delivered event with the snapshots it was judged by.
// Uses ON CONFLICT(id) DO NOTHING for idempotency - duplicate IDs are silently
// ignored. Other constraint violations (e.g., NOT NULL) will still return errors.
//
// Payload and snapshots are serialized to canonical JSON per RFC 8785 for
// deterministic replay.
func (j *Journal) RecordDelivery(ctx context.Context, seq int64, ev *event.Event, config, identity *state.Snapshot) error {
	if ev == nil {
		return fmt.Errorf("record delivery: nil event")
	}

	payloadJSON, err := marshalPayload(ev.Data)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	configJSON, err := marshalSnapshot(config)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	identityJSON, err := marshalSnapshot(identity)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}

	_, err = j.db.ExecContext(ctx, `
		INSERT INTO events
		(id, seq, type, source, occurred_at, payload, config_state, identity_state)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`,
		ev.ID,
		seq,
		string(ev.Type),
		string(ev.Source),
		ev.Timestamp.UTC().Format(time.RFC3339Nano),
		payloadJSON,
		configJSON,
		identityJSON,
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}

	return nil
}

// RecordOutcome inserts the outcome for a delivered event.
// Uses ON CONFLICT DO NOTHING for idempotency - each event gets exactly ONE
// outcome (enforced by the UNIQUE constraint on event_id); later writes are
// silently ignored.
//
// When the outcome carries an outbound event, its payload is stored as
// canonical JSON together with its content-addressed hash, which is what
// replay comparison checks.
//
// Note: The event referenced by eventID must exist (foreign key constraint).
func (j *Journal) RecordOutcome(ctx context.Context, eventID string, outcome extension.Outcome) error {
	var outboundID, outboundType, outboundSource, outboundPayload, payloadHash string

	if outcome.Outbound != nil {
		outboundID = outcome.Outbound.ID
		outboundType = string(outcome.Outbound.Type)
		outboundSource = string(outcome.Outbound.Source)

		var err error
		outboundPayload, err = marshalPayload(outcome.Outbound.Data)
		if err != nil {
			return fmt.Errorf("record outcome: %w", err)
		}
		payloadHash, err = xdm.PayloadHash(outcome.Outbound.Data)
		if err != nil {
			return fmt.Errorf("record outcome: %w", err)
		}
	}

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO outcomes
		(event_id, disposition, reason, outbound_id, outbound_type, outbound_source, outbound_payload, payload_hash)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		eventID,
		string(outcome.Disposition),
		outcome.Reason,
		outboundID,
		outboundType,
		outboundSource,
		outboundPayload,
		payloadHash,
	)
	if err != nil {
		return fmt.Errorf("record outcome: %w", err)
	}

	return nil
}

// Observer returns a delivery hook that journals every event and outcome.
// The signature matches hub.WithOutcomeObserver.
//
// ERROR HANDLING: journal failures are logged and swallowed. A full disk
// must not stall event delivery; the journal is a log, not a gate.
func (j *Journal) Observer() func(seq int64, ev *event.Event, config, identity *state.Snapshot, outcome extension.Outcome) {
	return func(seq int64, ev *event.Event, config, identity *state.Snapshot, outcome extension.Outcome) {
		ctx := context.Background()
		if err := j.RecordDelivery(ctx, seq, ev, config, identity); err != nil {
			slog.Warn("journal write failed", "event", ev.ID, "error", err)
			return
		}
		if err := j.RecordOutcome(ctx, ev.ID, outcome); err != nil {
			slog.Warn("journal outcome write failed", "event", ev.ID, "error", err)
		}
	}
}

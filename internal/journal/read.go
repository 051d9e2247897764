package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/state"
)

// Entry is one journaled delivery: the event plus the snapshots it was
// judged by at delivery time.
type Entry struct {
	Seq      int64
	Event    *event.Event
	Config   *state.Snapshot
	Identity *state.Snapshot
}

// OutcomeRecord is the stored outcome of one delivery.
type OutcomeRecord struct {
	EventID     string
	Disposition string
	Reason      string
	Outbound    *event.Event // nil unless disposition is 'dispatched'
	PayloadHash string       // content hash of the outbound payload
}

// Delivery pairs an entry with its outcome. Outcome is nil when the
// delivery was journaled but its outcome write never landed.
type Delivery struct {
	Entry   Entry
	Outcome *OutcomeRecord
}

// ReadEntries returns all journaled deliveries with deterministic ordering:
// ORDER BY seq ASC, id COLLATE BINARY ASC.
//
// Returns an empty slice (not nil) if the journal is empty.
func (j *Journal) ReadEntries(ctx context.Context) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, seq, type, source, occurred_at, payload, config_state, identity_state
		FROM events
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}

	// Return empty slice instead of nil
	if entries == nil {
		entries = []Entry{}
	}

	return entries, nil
}

// ReadDeliveries returns all journaled deliveries joined with their
// outcomes, ordered by seq ASC, id COLLATE BINARY ASC. Entries whose
// outcome write never landed carry a nil Outcome.
func (j *Journal) ReadDeliveries(ctx context.Context) ([]Delivery, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT e.id, e.seq, e.type, e.source, e.occurred_at, e.payload, e.config_state, e.identity_state,
		       o.disposition, o.reason, o.outbound_id, o.outbound_type, o.outbound_source, o.outbound_payload, o.payload_hash
		FROM events e
		LEFT JOIN outcomes o ON o.event_id = e.id
		ORDER BY e.seq ASC, e.id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var deliveries []Delivery
	for rows.Next() {
		var id, typ, source, occurredAt, payload, configJSON, identityJSON string
		var seq int64
		var disposition, reason, outboundID, outboundType sql.NullString
		var outboundSource, outboundPayload, payloadHash sql.NullString
		if err := rows.Scan(
			&id, &seq, &typ, &source, &occurredAt, &payload, &configJSON, &identityJSON,
			&disposition, &reason, &outboundID, &outboundType, &outboundSource, &outboundPayload, &payloadHash,
		); err != nil {
			return nil, fmt.Errorf("scan delivery: %w", err)
		}

		entry, err := buildEntry(id, seq, typ, source, occurredAt, payload, configJSON, identityJSON)
		if err != nil {
			return nil, err
		}

		d := Delivery{Entry: entry}
		if disposition.Valid {
			outcome, err := buildOutcome(id,
				disposition.String, reason.String,
				outboundID.String, outboundType.String, outboundSource.String,
				outboundPayload.String, payloadHash.String)
			if err != nil {
				return nil, err
			}
			d.Outcome = &outcome
		}
		deliveries = append(deliveries, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate deliveries: %w", err)
	}

	if deliveries == nil {
		deliveries = []Delivery{}
	}

	return deliveries, nil
}

// ReadOutcome retrieves the outcome for a single event.
// Returns sql.ErrNoRows if no outcome was recorded.
func (j *Journal) ReadOutcome(ctx context.Context, eventID string) (OutcomeRecord, error) {
	var disposition, reason, outboundID, outboundType string
	var outboundSource, outboundPayload, payloadHash string
	err := j.db.QueryRowContext(ctx, `
		SELECT disposition, reason, outbound_id, outbound_type, outbound_source, outbound_payload, payload_hash
		FROM outcomes
		WHERE event_id = ?
	`, eventID).Scan(
		&disposition, &reason, &outboundID, &outboundType, &outboundSource, &outboundPayload, &payloadHash,
	)
	if err != nil {
		return OutcomeRecord{}, err
	}

	return buildOutcome(eventID, disposition, reason, outboundID, outboundType, outboundSource, outboundPayload, payloadHash)
}

// LastSeq returns the highest journaled delivery sequence, or 0 when the
// journal is empty. Used to resume the hub's clock.
func (j *Journal) LastSeq(ctx context.Context) (int64, error) {
	var seq int64
	err := j.db.QueryRowContext(ctx, `
		SELECT COALESCE(MAX(seq), 0) FROM events
	`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("last seq: %w", err)
	}
	return seq, nil
}

// Stats returns delivery counts grouped by disposition.
func (j *Journal) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT disposition, COUNT(*)
		FROM outcomes
		GROUP BY disposition
		ORDER BY disposition ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var disposition string
		var count int
		if err := rows.Scan(&disposition, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[disposition] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stats: %w", err)
	}

	return stats, nil
}

// scanEntry scans a row into an Entry.
func scanEntry(rows *sql.Rows) (Entry, error) {
	var id, typ, source, occurredAt, payload, configJSON, identityJSON string
	var seq int64
	if err := rows.Scan(&id, &seq, &typ, &source, &occurredAt, &payload, &configJSON, &identityJSON); err != nil {
		return Entry{}, fmt.Errorf("scan entry: %w", err)
	}
	return buildEntry(id, seq, typ, source, occurredAt, payload, configJSON, identityJSON)
}

// buildEntry reassembles an Entry from its stored columns.
func buildEntry(id string, seq int64, typ, source, occurredAt, payload, configJSON, identityJSON string) (Entry, error) {
	ts, err := time.Parse(time.RFC3339Nano, occurredAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse occurred_at for %s: %w", id, err)
	}

	data, err := unmarshalPayload(payload)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	config, err := unmarshalSnapshot(configJSON)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", id, err)
	}
	identity, err := unmarshalSnapshot(identityJSON)
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: %w", id, err)
	}

	return Entry{
		Seq: seq,
		Event: &event.Event{
			ID:        id,
			Type:      event.Type(typ),
			Source:    event.Source(source),
			Timestamp: ts,
			Data:      data,
		},
		Config:   config,
		Identity: identity,
	}, nil
}

// buildOutcome reassembles an OutcomeRecord from its stored columns.
func buildOutcome(eventID, disposition, reason, outboundID, outboundType, outboundSource, outboundPayload, payloadHash string) (OutcomeRecord, error) {
	rec := OutcomeRecord{
		EventID:     eventID,
		Disposition: disposition,
		Reason:      reason,
		PayloadHash: payloadHash,
	}

	if outboundID != "" {
		data, err := unmarshalPayload(outboundPayload)
		if err != nil {
			return OutcomeRecord{}, fmt.Errorf("outcome for %s: %w", eventID, err)
		}
		rec.Outbound = &event.Event{
			ID:     outboundID,
			Type:   event.Type(outboundType),
			Source: event.Source(outboundSource),
			Data:   data,
		}
	}

	return rec, nil
}

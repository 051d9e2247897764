package transform

import (
	"errors"
	"fmt"
	"log/slog"
)

// Drop explains why an event produced no outbound payload.
//
// Drops are the expected negative result of processing, not failures: the
// caller logs them at Level and moves on. No drop ever stops the stream.
type Drop struct {
	// Code identifies the drop category.
	Code DropCode

	// Message is a human-readable description.
	Message string

	// EventID identifies the dropped event.
	EventID string

	// Branch names the transform branch that dropped it.
	Branch string
}

// DropCode categorizes drops.
type DropCode string

const (
	// DropPrivacyNotOptedIn means the configuration snapshot at the event
	// did not carry opted-in consent.
	DropPrivacyNotOptedIn DropCode = "PRIVACY_NOT_OPTED_IN"

	// DropMissingECID means the identity snapshot carried no experience
	// cloud ID to attach the token to.
	DropMissingECID DropCode = "MISSING_ECID"

	// DropMissingPushToken means the sync request carried no usable token.
	DropMissingPushToken DropCode = "MISSING_PUSH_TOKEN"

	// DropMissingDatasetID means tracking is not configured: no experience
	// event dataset to land uploads in.
	DropMissingDatasetID DropCode = "MISSING_DATASET_ID"

	// DropNilPayload means a tracking request arrived with no payload at all.
	DropNilPayload DropCode = "NIL_PAYLOAD"

	// DropMissingTrackingField means eventType or messageId was absent or empty.
	DropMissingTrackingField DropCode = "MISSING_TRACKING_FIELD"
)

// Error implements the error interface.
func (d *Drop) Error() string {
	if d.EventID != "" {
		return fmt.Sprintf("%s: %s (event=%s, branch=%s)", d.Code, d.Message, d.EventID, d.Branch)
	}
	return fmt.Sprintf("%s: %s", d.Code, d.Message)
}

// Level returns the log level for this drop. Missing configuration is worth
// a warning; everything else is ordinary incompleteness and logs at debug.
func (d *Drop) Level() slog.Level {
	if d.Code == DropMissingDatasetID {
		return slog.LevelWarn
	}
	return slog.LevelDebug
}

// AsDrop extracts a *Drop from err, unwrapping as needed.
func AsDrop(err error) (*Drop, bool) {
	var d *Drop
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// IsDropCode reports whether err is a drop with the given code.
func IsDropCode(err error, code DropCode) bool {
	d, ok := AsDrop(err)
	return ok && d.Code == code
}

func newDrop(code DropCode, branch, eventID, message string) *Drop {
	return &Drop{Code: code, Message: message, EventID: eventID, Branch: branch}
}

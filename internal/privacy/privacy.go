// Package privacy models the collect consent flag and the single piece of
// process-wide state this extension keeps: the last observed status.
package privacy

import (
	"strings"
	"sync"
)

// Status is the collect consent of the installation.
type Status string

const (
	// StatusOptedIn permits processing and upload.
	StatusOptedIn Status = "optedIn"
	// StatusOptedOut forbids processing; event delivery pauses.
	StatusOptedOut Status = "optedOut"
	// StatusUnknown is the initial state and any unresolved consent.
	StatusUnknown Status = "unknown"
)

// Parse maps the privacy.status configuration string to a Status.
//
// Matching is case-insensitive and accepts the legacy "optedunknown"
// spelling for StatusUnknown. Unrecognized values return ok=false; the
// caller keeps its previous status in that case.
func Parse(s string) (Status, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "optedin":
		return StatusOptedIn, true
	case "optedout":
		return StatusOptedOut, true
	case "unknown", "optedunknown":
		return StatusUnknown, true
	default:
		return "", false
	}
}

// Ledger holds the last observed privacy status behind a narrow get/set
// surface. It exists so the rest of the code never reaches for a global:
// the configuration reactor writes it, everything else only reads.
//
// The initial status is StatusUnknown.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex, although the hub's single-writer loop means reads and writes are
// not normally concurrent.
type Ledger struct {
	mu     sync.Mutex
	status Status
}

// NewLedger creates a ledger starting at StatusUnknown.
func NewLedger() *Ledger {
	return &Ledger{status: StatusUnknown}
}

// Status returns the last recorded status.
func (l *Ledger) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

// SetStatus records a new status.
func (l *Ledger) SetStatus(s Status) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.status = s
}

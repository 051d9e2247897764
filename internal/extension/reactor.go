package extension

import (
	"log/slog"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/privacy"
	"github.com/solaria-labs/herald/internal/state"
)

// onConfigurationChanged applies a configuration change to the consent
// ledger and signals the scheduler.
//
// Soft failure throughout: a configuration event without a privacy status,
// or with one that does not parse, changes nothing — the ledger keeps its
// last value and no scheduling signal fires.
func (x *Extension) onConfigurationChanged(ev *event.Event) {
	raw, ok := ev.StringValue(state.KeyPrivacyStatus)
	if !ok {
		slog.Debug("configuration change without privacy status", "event", ev.ID)
		return
	}
	status, ok := privacy.Parse(raw)
	if !ok {
		slog.Warn("unparsable privacy status", "event", ev.ID, "value", raw)
		return
	}

	x.ledger.SetStatus(status)

	if status == privacy.StatusOptedIn {
		x.scheduler.StartEvents()
		slog.Info("collect consent opted in, resuming event delivery")
		return
	}
	x.scheduler.StopEvents()
	slog.Info("collect consent not opted in, pausing event delivery",
		"status", string(status))
}

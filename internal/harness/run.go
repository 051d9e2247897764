package harness

import (
	"time"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/extension"
	"github.com/solaria-labs/herald/internal/hub"
	"github.com/solaria-labs/herald/internal/state"
	"github.com/solaria-labs/herald/internal/testutil"
	"github.com/solaria-labs/herald/internal/transform"
)

// DefaultAppID is the application identifier stamped into push payloads
// when the run supplies no app of its own.
const DefaultAppID = "com.herald.harness"

// scenarioEpoch is the frozen start time of every scenario run.
// The clock advances one second per step.
var scenarioEpoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

// RunOptions customizes a run. The zero value is a plain in-memory run.
type RunOptions struct {
	// Observer receives every delivery outcome after the trace recorder.
	// Use it to tee outcomes into a journal.
	Observer hub.OutcomeObserver

	// AppID overrides the application identifier for push payloads.
	// Empty means DefaultAppID.
	AppID string
}

// Run executes a scenario against a fresh hub and extension and returns
// the result. Scenarios never share state; each run starts from an empty
// queue, empty shared state, and the frozen epoch.
func Run(scenario *Scenario) *Result {
	return RunWith(scenario, RunOptions{})
}

// RunWith is Run with options.
func RunWith(scenario *Scenario, opts RunOptions) *Result {
	result := NewResult(scenario.Name)

	clock := testutil.NewClock(scenarioEpoch)
	inbound := event.NewFactory(event.NewSequentialGenerator("evt"), clock)
	outbound := event.NewFactory(event.NewSequentialGenerator("out"), clock)

	observer := func(seq int64, ev *event.Event, config, identity *state.Snapshot, outcome extension.Outcome) {
		result.addDelivery(seq, ev, outcome)
		if opts.Observer != nil {
			opts.Observer(seq, ev, config, identity, outcome)
		}
	}

	appID := opts.AppID
	if appID == "" {
		appID = DefaultAppID
	}

	h := hub.New(hub.WithOutcomeObserver(observer))
	processor := transform.NewProcessor(outbound, testutil.StaticAppInfo(appID))
	if err := h.Attach(extension.New(h, h, processor)); err != nil {
		result.AddError("attach extension: %v", err)
		return result
	}

	for i, step := range scenario.Steps {
		clock.Advance(time.Second)

		switch {
		case step.Publish != nil:
			snap := h.SetSharedState(step.Publish.Owner, step.Publish.status(), step.Publish.Data)
			result.addPublish(snap)
		case step.Enqueue != nil:
			ev := inbound.New(event.Type(step.Enqueue.Type), event.Source(step.Enqueue.Source), step.Enqueue.Payload)
			if !h.Enqueue(ev) {
				result.AddError("steps[%d]: hub refused event %s", i, ev.ID)
			}
		}

		// Drain after every step so traces show which step unblocked
		// which delivery. A paused hub legitimately drains nothing.
		h.Drain()
	}

	result.Dispatched = len(h.Dispatched())
	result.Paused = h.Paused()
	result.Held = h.Pending()

	if scenario.Expect != nil {
		for _, failure := range EvaluateExpect(scenario.Expect, result) {
			result.AddError("%s", failure)
		}
	}

	return result
}

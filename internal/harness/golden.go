package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/solaria-labs/herald/internal/xdm"
)

// toCanonicalMap converts a TraceEvent to a map for canonical JSON
// serialization. xdm.MarshalCanonical handles only maps, slices, and
// primitives, so struct fields are copied by hand, empty values omitted.
func (te TraceEvent) toCanonicalMap() map[string]any {
	m := map[string]any{"kind": te.Kind}
	if te.Owner != "" {
		m["owner"] = te.Owner
	}
	if te.Version != 0 {
		m["version"] = te.Version
	}
	if te.Status != "" {
		m["status"] = te.Status
	}
	if te.Seq != 0 {
		m["seq"] = te.Seq
	}
	if te.EventID != "" {
		m["eventId"] = te.EventID
	}
	if te.EventType != "" {
		m["eventType"] = te.EventType
	}
	if te.EventSource != "" {
		m["eventSource"] = te.EventSource
	}
	if te.Disposition != "" {
		m["disposition"] = te.Disposition
	}
	if te.Reason != "" {
		m["reason"] = te.Reason
	}
	if te.OutboundID != "" {
		m["outboundId"] = te.OutboundID
	}
	if te.OutboundType != "" {
		m["outboundType"] = te.OutboundType
	}
	if te.OutboundSource != "" {
		m["outboundSource"] = te.OutboundSource
	}
	if te.OutboundData != nil {
		m["outboundData"] = te.OutboundData
	}
	return m
}

// CanonicalTrace returns the canonical JSON encoding of the result's
// scenario name and trace. Byte-for-byte stable across runs and platforms.
func (r *Result) CanonicalTrace() ([]byte, error) {
	trace := make([]any, len(r.Trace))
	for i, te := range r.Trace {
		trace[i] = te.toCanonicalMap()
	}
	return xdm.MarshalCanonical(map[string]any{
		"scenario": r.ScenarioName,
		"trace":    trace,
	})
}

// RunWithGolden executes a scenario and compares its canonical trace
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result := Run(scenario)
	AssertGolden(t, result)
	return result
}

// AssertGolden compares a result's canonical trace against the golden
// file named after its scenario. Useful when the caller already ran the
// scenario and wants the trace check without a second run.
func AssertGolden(t *testing.T, result *Result) {
	t.Helper()

	trace, err := result.CanonicalTrace()
	if err != nil {
		t.Fatalf("canonical trace: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, result.ScenarioName, trace)
}

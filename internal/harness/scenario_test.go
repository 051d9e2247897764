package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solaria-labs/herald/internal/state"
)

// writeScenario writes inline YAML to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: token-sync
description: "Push token reaches the edge"
steps:
  - publish:
      owner: Configuration
      data:
        privacy.status: optedIn
  - publish:
      owner: Identity
      data:
        ECID: abc123
  - enqueue:
      type: genericIdentity
      source: requestContent
      payload:
        pushIdentifier: tok1
expect:
  dispatched: 1
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "token-sync", scenario.Name)
	assert.Equal(t, "Push token reaches the edge", scenario.Description)
	require.Len(t, scenario.Steps, 3)
	assert.Equal(t, "Configuration", scenario.Steps[0].Publish.Owner)
	assert.Equal(t, "optedIn", scenario.Steps[0].Publish.Data["privacy.status"])
	assert.Equal(t, "genericIdentity", scenario.Steps[2].Enqueue.Type)
	assert.Equal(t, "tok1", scenario.Steps[2].Enqueue.Payload["pushIdentifier"])
	require.NotNil(t, scenario.Expect)
	require.NotNil(t, scenario.Expect.Dispatched)
	assert.Equal(t, 1, *scenario.Expect.Dispatched)
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario("/nonexistent/scenario.yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_MalformedYAML(t *testing.T) {
	path := writeScenario(t, `
name: test
steps:
  unclosed: [bracket
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingName(t *testing.T) {
	path := writeScenario(t, `
steps:
  - enqueue:
      type: messaging
      source: requestContent
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_EmptySteps(t *testing.T) {
	path := writeScenario(t, `
name: test
steps: []
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_UnknownFieldRejected(t *testing.T) {
	// Typos like "expects:" must fail loudly, not silently skip assertions.
	path := writeScenario(t, `
name: test
steps:
  - enqueue:
      type: messaging
      source: requestContent
expects:
  dispatched: 1
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expects")
}

func TestLoadScenario_BadEnqueueType(t *testing.T) {
	path := writeScenario(t, `
name: test
steps:
  - enqueue:
      type: rumor
      source: requestContent
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
}

func TestLoadScenario_BadPrivacyValueInPublish(t *testing.T) {
	path := writeScenario(t, `
name: test
steps:
  - publish:
      owner: Configuration
      data:
        privacy.status: maybe
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "E202")
}

func TestScenarioValidate_StepChoice(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr string
	}{
		{
			name:    "neither directive",
			step:    Step{},
			wantErr: "exactly one of publish or enqueue",
		},
		{
			name: "both directives",
			step: Step{
				Publish: &PublishStep{Owner: "Configuration"},
				Enqueue: &EnqueueStep{Type: "messaging", Source: "requestContent"},
			},
			wantErr: "exactly one of publish or enqueue",
		},
		{
			name:    "unknown owner",
			step:    Step{Publish: &PublishStep{Owner: "Nobody"}},
			wantErr: `unknown owner "Nobody"`,
		},
		{
			name:    "unknown status",
			step:    Step{Publish: &PublishStep{Owner: "Configuration", Status: "sorta"}},
			wantErr: `unknown status "sorta"`,
		},
		{
			name:    "unknown source",
			step:    Step{Enqueue: &EnqueueStep{Type: "messaging", Source: "requestContnt"}},
			wantErr: `unknown source "requestContnt"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Scenario{Name: "test", Steps: []Step{tt.step}}
			err := s.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPublishStep_StatusDefaultsToSet(t *testing.T) {
	p := &PublishStep{Owner: "Configuration"}
	assert.Equal(t, state.StatusSet, p.status())

	p.Status = "pending"
	assert.Equal(t, state.StatusPending, p.status())
}

// TestLoadExampleScenarios validates the scenario files in
// testdata/scenarios. They serve as documentation and regression tests.
func TestLoadExampleScenarios(t *testing.T) {
	tests := []struct {
		file          string
		wantName      string
		wantStepCount int
	}{
		{"testdata/scenarios/push-roundtrip.yaml", "push-roundtrip", 3},
		{"testdata/scenarios/privacy-pause.yaml", "privacy-pause", 7},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			scenario, err := LoadScenario(tt.file)
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, scenario.Name)
			assert.Len(t, scenario.Steps, tt.wantStepCount)
			assert.NotNil(t, scenario.Expect)
		})
	}
}

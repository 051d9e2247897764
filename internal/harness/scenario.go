package harness

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/solaria-labs/herald/internal/event"
	"github.com/solaria-labs/herald/internal/schema"
	"github.com/solaria-labs/herald/internal/state"
)

// Scenario defines one harness run: an ordered list of steps plus optional
// expectations on the result.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed on it.
	Name string `yaml:"name"`

	// Description explains what this scenario demonstrates.
	Description string `yaml:"description,omitempty"`

	// Steps run in order. Each step publishes shared state or enqueues an
	// event, then the hub drains.
	Steps []Step `yaml:"steps"`

	// Expect asserts on the result after the final drain. Nil means the
	// scenario only exists for its golden trace.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Step carries exactly one directive.
type Step struct {
	Publish *PublishStep `yaml:"publish,omitempty"`
	Enqueue *EnqueueStep `yaml:"enqueue,omitempty"`
}

// PublishStep publishes a new shared-state version for an owner.
type PublishStep struct {
	// Owner is "Configuration" or "Identity".
	Owner string `yaml:"owner"`

	// Status defaults to "set" when omitted.
	Status string `yaml:"status,omitempty"`

	// Data is the snapshot payload.
	Data map[string]any `yaml:"data,omitempty"`
}

// EnqueueStep submits an event to the hub.
type EnqueueStep struct {
	Type    string         `yaml:"type"`
	Source  string         `yaml:"source"`
	Payload map[string]any `yaml:"payload,omitempty"`
}

// Expect asserts on the run result. All fields are optional; only set
// fields are checked.
type Expect struct {
	// Dispatched is the expected number of outbound events.
	Dispatched *int `yaml:"dispatched,omitempty"`

	// DropReasons is the expected ordered list of drop codes.
	// An empty (non-nil) list asserts that nothing dropped.
	DropReasons []string `yaml:"dropReasons,omitempty"`

	// Paused is the expected pause state after the final drain.
	Paused *bool `yaml:"paused,omitempty"`

	// Held is the expected number of undelivered events after the final
	// drain.
	Held *int `yaml:"held,omitempty"`
}

// loadSchema compiles the embedded CUE schema once per process.
var loadSchema = sync.OnceValues(schema.Load)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, fails the
// schema (typos, wrong enums, bad shapes), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Schema check runs on the generic document first: CUE reports every
	// shape problem at once, with field paths, before struct decoding
	// flattens the information away.
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	sch, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	if errs := sch.ValidateScenario(doc); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, fmt.Errorf("invalid scenario %s:\n  %s", path, strings.Join(msgs, "\n  "))
	}

	// Parse YAML with strict field validation (catches typos like
	// "expects:" vs "expect:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// Validate checks required fields. Scenarios built in Go bypass the schema
// pass, so the essential rules live here too.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if (step.Publish == nil) == (step.Enqueue == nil) {
			return fmt.Errorf("steps[%d]: exactly one of publish or enqueue is required", i)
		}

		if p := step.Publish; p != nil {
			if p.Owner != state.OwnerConfiguration && p.Owner != state.OwnerIdentity {
				return fmt.Errorf("steps[%d].publish: unknown owner %q", i, p.Owner)
			}
			switch p.Status {
			case "", string(state.StatusSet), string(state.StatusPending), string(state.StatusNone):
			default:
				return fmt.Errorf("steps[%d].publish: unknown status %q", i, p.Status)
			}
		}

		if e := step.Enqueue; e != nil {
			switch event.Type(e.Type) {
			case event.TypeConfiguration, event.TypeGenericIdentity, event.TypeMessaging, event.TypeEdge:
			default:
				return fmt.Errorf("steps[%d].enqueue: unknown type %q", i, e.Type)
			}
			switch event.Source(e.Source) {
			case event.SourceRequestContent, event.SourceResponseContent, event.SourceSharedState:
			default:
				return fmt.Errorf("steps[%d].enqueue: unknown source %q", i, e.Source)
			}
		}
	}

	return nil
}

// status returns the publish status, defaulting to "set".
func (p *PublishStep) status() state.Status {
	if p.Status == "" {
		return state.StatusSet
	}
	return state.Status(p.Status)
}

package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Step operations. Each record-producing op binds its result under the
// step's "as" name; identify only traces the computed identifier.
const (
	OpNew            = "new"
	OpNewAsync       = "new_async"
	OpNewUniqueAsync = "new_unique_async"
	OpContinue       = "continue"
	OpSucceed        = "succeed"
	OpFail           = "fail"
	OpAdopt          = "adopt"
	OpIdentify       = "identify"
	OpParse          = "parse"
)

// Assertion kinds supported by the harness.
const (
	// AssertValid checks that the target record passes shape validation.
	AssertValid = "valid"

	// AssertIDStable checks that all listed records share one identifier.
	AssertIDStable = "id_stable"

	// AssertPhase checks the target's lifecycle phase (async records only).
	AssertPhase = "phase"

	// AssertProgress checks the target's progress value.
	AssertProgress = "progress"

	// AssertErrorFlag checks the target's error flag.
	AssertErrorFlag = "error_flag"

	// AssertChildOf checks that child descends from parent.
	AssertChildOf = "child_of"

	// AssertNotChildOf checks that child does not descend from parent.
	AssertNotChildOf = "not_child_of"

	// AssertPIDEqualsIDOf checks the raw pid field against the parent's id.
	AssertPIDEqualsIDOf = "pid_equals_id_of"
)

// Scenario defines a complete conformance scenario: a deterministic clock,
// a sequence of construction and lifecycle steps, and assertions over the
// records those steps produce.
type Scenario struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description,omitempty"`
	Clock       *ClockSpec  `yaml:"clock,omitempty"`
	Steps       []Step      `yaml:"steps"`
	Assertions  []Assertion `yaml:"assertions,omitempty"`
}

// ClockSpec configures the scenario's stepping clock. Zero values fall
// back to the harness defaults (2024-01-01T00:00:00Z, one second).
type ClockSpec struct {
	Start string `yaml:"start,omitempty"`
	Step  int    `yaml:"step_seconds,omitempty"`
}

// Step is a single operation in a scenario.
//
// Field usage depends on Op:
//   - new, new_async, new_unique_async: Type required, Payload optional, As required
//   - continue: From and As required, Payload and Progress optional
//   - succeed, fail: From and As required, Payload optional
//   - adopt: Parent, Child, and As required
//   - identify: Type required, Payload optional
//   - parse: Wire and As required
type Step struct {
	Op       string `yaml:"op"`
	As       string `yaml:"as,omitempty"`
	From     string `yaml:"from,omitempty"`
	Type     string `yaml:"type,omitempty"`
	Payload  any    `yaml:"payload,omitempty"`
	Progress int    `yaml:"progress,omitempty"`
	Parent   string `yaml:"parent,omitempty"`
	Child    string `yaml:"child,omitempty"`
	Wire     string `yaml:"wire,omitempty"`
}

// Assertion is a check evaluated against the records bound by the steps.
//
// Field usage depends on Kind:
//   - valid: Target required
//   - id_stable: Targets required (at least two)
//   - phase: Target and Equals (string) required
//   - progress: Target and Equals (integer) required
//   - error_flag: Target and Equals (boolean) required
//   - child_of, not_child_of, pid_equals_id_of: Parent and Child required
type Assertion struct {
	Kind    string   `yaml:"kind"`
	Target  string   `yaml:"target,omitempty"`
	Targets []string `yaml:"targets,omitempty"`
	Parent  string   `yaml:"parent,omitempty"`
	Child   string   `yaml:"child,omitempty"`
	Equals  any      `yaml:"equals,omitempty"`
}

// LoadScenario reads and validates a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes and validates scenario YAML.
//
// Unknown fields are rejected so that typos in scenario files fail loudly
// instead of silently skipping a step or assertion field.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields before execution. Value-level
// mistakes (wrong type names, bad payloads) surface as step errors at run
// time; this pass only catches structurally incomplete scenarios.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i := range s.Steps {
		if err := validateStep(i, &s.Steps[i]); err != nil {
			return err
		}
	}

	for i := range s.Assertions {
		if err := validateAssertion(i, &s.Assertions[i]); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	if s.Op == "" {
		return fmt.Errorf("steps[%d]: op is required", index)
	}

	switch s.Op {
	case OpNew, OpNewAsync, OpNewUniqueAsync:
		if s.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for %s", index, s.Op)
		}
		if s.As == "" {
			return fmt.Errorf("steps[%d]: as is required for %s", index, s.Op)
		}

	case OpContinue:
		if s.From == "" {
			return fmt.Errorf("steps[%d]: from is required for continue", index)
		}
		if s.As == "" {
			return fmt.Errorf("steps[%d]: as is required for continue", index)
		}
		if s.Progress < 0 || s.Progress > 100 {
			return fmt.Errorf("steps[%d]: progress must be between 0 and 100, got %d", index, s.Progress)
		}

	case OpSucceed, OpFail:
		if s.From == "" {
			return fmt.Errorf("steps[%d]: from is required for %s", index, s.Op)
		}
		if s.As == "" {
			return fmt.Errorf("steps[%d]: as is required for %s", index, s.Op)
		}

	case OpAdopt:
		if s.Parent == "" {
			return fmt.Errorf("steps[%d]: parent is required for adopt", index)
		}
		if s.Child == "" {
			return fmt.Errorf("steps[%d]: child is required for adopt", index)
		}
		if s.As == "" {
			return fmt.Errorf("steps[%d]: as is required for adopt", index)
		}

	case OpIdentify:
		if s.Type == "" {
			return fmt.Errorf("steps[%d]: type is required for identify", index)
		}

	case OpParse:
		if s.Wire == "" {
			return fmt.Errorf("steps[%d]: wire is required for parse", index)
		}
		if s.As == "" {
			return fmt.Errorf("steps[%d]: as is required for parse", index)
		}

	default:
		return fmt.Errorf("steps[%d]: unknown op %q", index, s.Op)
	}

	return nil
}

func validateAssertion(index int, a *Assertion) error {
	if a.Kind == "" {
		return fmt.Errorf("assertions[%d]: kind is required", index)
	}

	switch a.Kind {
	case AssertValid:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for valid", index)
		}

	case AssertIDStable:
		if len(a.Targets) < 2 {
			return fmt.Errorf("assertions[%d]: targets list with at least two entries is required for id_stable", index)
		}

	case AssertPhase:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for phase", index)
		}
		if _, ok := a.Equals.(string); !ok {
			return fmt.Errorf("assertions[%d]: equals must be a string for phase", index)
		}

	case AssertProgress:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for progress", index)
		}
		if _, ok := a.Equals.(int); !ok {
			return fmt.Errorf("assertions[%d]: equals must be an integer for progress", index)
		}

	case AssertErrorFlag:
		if a.Target == "" {
			return fmt.Errorf("assertions[%d]: target is required for error_flag", index)
		}
		if _, ok := a.Equals.(bool); !ok {
			return fmt.Errorf("assertions[%d]: equals must be a boolean for error_flag", index)
		}

	case AssertChildOf, AssertNotChildOf, AssertPIDEqualsIDOf:
		if a.Parent == "" {
			return fmt.Errorf("assertions[%d]: parent is required for %s", index, a.Kind)
		}
		if a.Child == "" {
			return fmt.Errorf("assertions[%d]: child is required for %s", index, a.Kind)
		}

	default:
		return fmt.Errorf("assertions[%d]: unknown kind %q", index, a.Kind)
	}

	return nil
}

// Package harness provides a conformance testing framework for the action
// convention.
//
// Scenarios are YAML files that describe a sequence of construction and
// lifecycle steps plus assertions over the records those steps produce.
// Each run uses a fresh stepping clock, so creation and revision timestamps
// are fully determined by step order and the resulting records are
// byte-identical across runs. Content-derived identifiers are deterministic
// by construction; only new_unique_async steps produce run-dependent output,
// so scenarios compared against golden files should avoid them.
//
// The harness validates:
//   - Scenario definition format and parsing
//   - Construction, revision, and adoption step mechanics
//   - Assertion evaluation over the bound records
//   - Canonical trace serialization for golden file comparison
package harness

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/acta-dev/acta/internal/testutil"
	"github.com/acta-dev/acta/pkg/action"
)

// Defaults for the scenario clock. One second between records keeps
// timestamps readable in golden files.
const (
	defaultClockStart = "2024-01-01T00:00:00Z"
	defaultClockStep  = time.Second
)

// Env is the set of named records bound by a scenario's steps.
type Env map[string]*action.Action

// Harness executes scenario steps against a deterministically clocked
// factory, binding each produced record under its step's "as" name.
type Harness struct {
	factory *action.Factory
	clock   *testutil.SteppingClock
	env     Env
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Step failures (unknown bindings, misuse of the lifecycle operations,
// malformed wire input) abort the run with an error: scenario steps
// describe expected-good flows, and judging the outcome is the job of the
// assertions. Assertion failures do not abort; they accumulate on the
// result and flip Pass to false.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with step-level debug logging.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	clock, err := buildClock(scenario.Clock)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		factory: action.NewFactory(clock),
		clock:   clock,
		env:     Env{},
		logger:  logger,
	}

	result := NewResult(scenario.Name)

	for i, step := range scenario.Steps {
		if err := h.executeStep(i+1, step, result); err != nil {
			return nil, err
		}
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, h.env) {
		result.AddError(msg)
	}

	if err := h.captureFinal(result); err != nil {
		return nil, err
	}

	return result, nil
}

// executeStep runs one step and traces its outcome. Step numbers are
// 1-based to match how scenario authors count.
func (h *Harness) executeStep(num int, step Step, result *Result) error {
	fail := func(err error) error {
		return fmt.Errorf("step %d (%s): %w", num, step.Op, err)
	}

	switch step.Op {
	case OpNew, OpNewAsync, OpNewUniqueAsync:
		payload, err := payloadValue(step.Payload)
		if err != nil {
			return fail(err)
		}
		opts := action.Options{
			Async: step.Op == OpNewAsync || step.Op == OpNewUniqueAsync,
			Uniq:  step.Op == OpNewUniqueAsync,
		}
		a, err := h.factory.New(step.Type, payload, opts)
		if err != nil {
			return fail(err)
		}
		h.bind(num, step, a, result)

	case OpContinue:
		from, err := h.lookup(num, step.From)
		if err != nil {
			return err
		}
		payload, err := payloadValue(step.Payload)
		if err != nil {
			return fail(err)
		}
		a, err := h.factory.Continue(from, payload, step.Progress)
		if err != nil {
			return fail(err)
		}
		h.bind(num, step, a, result)

	case OpSucceed:
		from, err := h.lookup(num, step.From)
		if err != nil {
			return err
		}
		payload, err := payloadValue(step.Payload)
		if err != nil {
			return fail(err)
		}
		a, err := h.factory.Succeed(from, payload)
		if err != nil {
			return fail(err)
		}
		h.bind(num, step, a, result)

	case OpFail:
		from, err := h.lookup(num, step.From)
		if err != nil {
			return err
		}
		reason, err := payloadValue(step.Payload)
		if err != nil {
			return fail(err)
		}
		a, err := h.factory.Fail(from, reason)
		if err != nil {
			return fail(err)
		}
		h.bind(num, step, a, result)

	case OpAdopt:
		parent, err := h.lookup(num, step.Parent)
		if err != nil {
			return err
		}
		child, err := h.lookup(num, step.Child)
		if err != nil {
			return err
		}
		a, err := h.factory.MakeChildOf(parent, child)
		if err != nil {
			return fail(err)
		}
		h.bind(num, step, a, result)

	case OpIdentify:
		payload, err := payloadValue(step.Payload)
		if err != nil {
			return fail(err)
		}
		id, err := action.Identify(step.Type, payload, false)
		if err != nil {
			return fail(err)
		}
		result.AddIdentityTrace(num, id)
		h.logger.Debug("step executed", "step", num, "op", step.Op, "id", id)

	case OpParse:
		a, err := action.Parse([]byte(step.Wire))
		if err != nil {
			return fail(err)
		}
		h.bind(num, step, a, result)

	default:
		// Unreachable for validated scenarios.
		return fmt.Errorf("step %d: unknown op %q", num, step.Op)
	}

	return nil
}

// bind stores a record under the step's name and traces the step.
func (h *Harness) bind(num int, step Step, a *action.Action, result *Result) {
	h.env[step.As] = a
	result.AddRecordTrace(num, step.Op, step.As, a)
	h.logger.Debug("step executed",
		"step", num,
		"op", step.Op,
		"name", step.As,
		"id", a.Meta.ID,
	)
}

// lookup resolves a binding name to its record.
func (h *Harness) lookup(num int, name string) (*action.Action, error) {
	a, ok := h.env[name]
	if !ok {
		return nil, fmt.Errorf("step %d: unknown binding %q", num, name)
	}
	return a, nil
}

// captureFinal snapshots every binding's wire form onto the result.
// Bindings are serialized in sorted name order so errors are reported
// deterministically; the map itself is order-free.
func (h *Harness) captureFinal(result *Result) error {
	if len(h.env) == 0 {
		return nil
	}

	names := make([]string, 0, len(h.env))
	for name := range h.env {
		names = append(names, name)
	}
	sort.Strings(names)

	final := make(map[string]string, len(names))
	for _, name := range names {
		data, err := h.env[name].MarshalJSON()
		if err != nil {
			return fmt.Errorf("capture %q: %w", name, err)
		}
		final[name] = string(data)
	}
	result.Final = final
	return nil
}

// payloadValue converts a decoded YAML payload to a plain value. A nil
// payload means absent.
func payloadValue(v any) (action.Value, error) {
	if v == nil {
		return nil, nil
	}
	value, err := action.FromGo(v)
	if err != nil {
		return nil, fmt.Errorf("payload: %w", err)
	}
	return value, nil
}

// buildClock constructs the scenario clock, applying defaults for any
// unset fields.
func buildClock(spec *ClockSpec) (*testutil.SteppingClock, error) {
	start := defaultClockStart
	step := defaultClockStep
	if spec != nil {
		if spec.Start != "" {
			start = spec.Start
		}
		if spec.Step > 0 {
			step = time.Duration(spec.Step) * time.Second
		}
	}

	ts, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return nil, fmt.Errorf("invalid clock start %q: %w", start, err)
	}
	return testutil.NewSteppingClock(ts, step), nil
}

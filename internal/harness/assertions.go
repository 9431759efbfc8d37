package harness

import (
	"fmt"
	"strings"

	"github.com/acta-dev/acta/pkg/action"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Kind     string       // Assertion kind for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Kind)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Name != "" {
			fmt.Fprintf(&buf, "  [%d] %s %s id=%s\n", event.Step, event.Op, event.Name, event.ID)
		} else {
			fmt.Fprintf(&buf, "  [%d] %s id=%s\n", event.Step, event.Op, event.ID)
		}
	}

	return buf.String()
}

// lookupBinding resolves an assertion's binding reference.
func lookupBinding(env Env, name string) (*action.Action, error) {
	a, ok := env[name]
	if !ok {
		return nil, fmt.Errorf("unknown binding %q", name)
	}
	return a, nil
}

// assertValid checks that the target record passes shape validation.
func assertValid(env Env, assertion Assertion, trace []TraceEvent) error {
	a, err := lookupBinding(env, assertion.Target)
	if err != nil {
		return err
	}

	errs := action.Check(a)
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, fe := range errs {
		msgs[i] = fe.Error()
	}
	return &AssertionError{
		Kind:     AssertValid,
		Expected: fmt.Sprintf("%q passes validation", assertion.Target),
		Actual:   strings.Join(msgs, "; "),
		Trace:    trace,
	}
}

// assertIDStable checks that every listed record carries the same
// identifier. Revisions and adoptions must never mint a new identity.
func assertIDStable(env Env, assertion Assertion, trace []TraceEvent) error {
	first := ""
	pairs := make([]string, 0, len(assertion.Targets))
	stable := true

	for i, name := range assertion.Targets {
		a, err := lookupBinding(env, name)
		if err != nil {
			return err
		}
		if i == 0 {
			first = a.Meta.ID
		} else if a.Meta.ID != first {
			stable = false
		}
		pairs = append(pairs, fmt.Sprintf("%s=%s", name, a.Meta.ID))
	}

	if stable {
		return nil
	}
	return &AssertionError{
		Kind:     AssertIDStable,
		Expected: fmt.Sprintf("one shared id across %s", strings.Join(assertion.Targets, ", ")),
		Actual:   strings.Join(pairs, ", "),
		Trace:    trace,
	}
}

// assertPhase checks the target's lifecycle phase.
func assertPhase(env Env, assertion Assertion, trace []TraceEvent) error {
	a, err := lookupBinding(env, assertion.Target)
	if err != nil {
		return err
	}

	want, _ := assertion.Equals.(string)
	if !a.Meta.Async {
		return &AssertionError{
			Kind:     AssertPhase,
			Expected: fmt.Sprintf("%q is async with phase %q", assertion.Target, want),
			Actual:   fmt.Sprintf("%q is a sync record", assertion.Target),
			Trace:    trace,
		}
	}
	if got := string(a.Meta.Phase); got != want {
		return &AssertionError{
			Kind:     AssertPhase,
			Expected: fmt.Sprintf("%q in phase %q", assertion.Target, want),
			Actual:   fmt.Sprintf("phase %q", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertProgress checks the target's progress value.
func assertProgress(env Env, assertion Assertion, trace []TraceEvent) error {
	a, err := lookupBinding(env, assertion.Target)
	if err != nil {
		return err
	}

	want, _ := assertion.Equals.(int)
	if a.Meta.Progress != want {
		return &AssertionError{
			Kind:     AssertProgress,
			Expected: fmt.Sprintf("%q at progress %d", assertion.Target, want),
			Actual:   fmt.Sprintf("progress %d", a.Meta.Progress),
			Trace:    trace,
		}
	}
	return nil
}

// assertErrorFlag checks the target's error flag.
func assertErrorFlag(env Env, assertion Assertion, trace []TraceEvent) error {
	a, err := lookupBinding(env, assertion.Target)
	if err != nil {
		return err
	}

	want, _ := assertion.Equals.(bool)
	if a.Error != want {
		return &AssertionError{
			Kind:     AssertErrorFlag,
			Expected: fmt.Sprintf("%q with error=%t", assertion.Target, want),
			Actual:   fmt.Sprintf("error=%t", a.Error),
			Trace:    trace,
		}
	}
	return nil
}

// assertChildOf checks descent via the library predicate. want selects
// between child_of and not_child_of.
func assertChildOf(env Env, assertion Assertion, trace []TraceEvent, want bool) error {
	parent, err := lookupBinding(env, assertion.Parent)
	if err != nil {
		return err
	}
	child, err := lookupBinding(env, assertion.Child)
	if err != nil {
		return err
	}

	got, err := action.IsChildOf(parent, child)
	if err != nil {
		return err
	}
	if got == want {
		return nil
	}

	kind := AssertChildOf
	if !want {
		kind = AssertNotChildOf
	}
	return &AssertionError{
		Kind:     kind,
		Expected: fmt.Sprintf("IsChildOf(%s, %s) == %t", assertion.Parent, assertion.Child, want),
		Actual:   fmt.Sprintf("%t", got),
		Trace:    trace,
	}
}

// assertPIDEqualsIDOf checks the raw lineage fields directly, without
// going through the predicate.
func assertPIDEqualsIDOf(env Env, assertion Assertion, trace []TraceEvent) error {
	parent, err := lookupBinding(env, assertion.Parent)
	if err != nil {
		return err
	}
	child, err := lookupBinding(env, assertion.Child)
	if err != nil {
		return err
	}

	if child.Meta.PID != parent.Meta.ID {
		return &AssertionError{
			Kind:     AssertPIDEqualsIDOf,
			Expected: fmt.Sprintf("%s.meta.pid == %s.meta.id (%s)", assertion.Child, assertion.Parent, parent.Meta.ID),
			Actual:   fmt.Sprintf("pid=%q", child.Meta.PID),
			Trace:    trace,
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the bound records
// and returns error messages for any that fail.
func EvaluateAssertions(result *Result, assertions []Assertion, env Env) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Kind {
		case AssertValid:
			err = assertValid(env, assertion, result.Trace)
		case AssertIDStable:
			err = assertIDStable(env, assertion, result.Trace)
		case AssertPhase:
			err = assertPhase(env, assertion, result.Trace)
		case AssertProgress:
			err = assertProgress(env, assertion, result.Trace)
		case AssertErrorFlag:
			err = assertErrorFlag(env, assertion, result.Trace)
		case AssertChildOf:
			err = assertChildOf(env, assertion, result.Trace, true)
		case AssertNotChildOf:
			err = assertChildOf(env, assertion, result.Trace, false)
		case AssertPIDEqualsIDOf:
			err = assertPIDEqualsIDOf(env, assertion, result.Trace)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion kind %q", i, assertion.Kind)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

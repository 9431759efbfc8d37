package harness

import (
	"fmt"

	"github.com/acta-dev/acta/pkg/action"
)

// TraceEvent records one executed step.
//
// Record-producing steps carry the binding name plus the record's identity
// and lifecycle fields; identify steps carry only the computed identifier.
type TraceEvent struct {
	Step     int    `json:"step"`
	Op       string `json:"op"`
	Name     string `json:"name,omitempty"`
	ID       string `json:"id,omitempty"`
	Phase    string `json:"phase,omitempty"`
	Progress int    `json:"progress,omitempty"`
	Error    bool   `json:"error,omitempty"`
	Valid    bool   `json:"valid,omitempty"`
}

// Result is the outcome of running a scenario.
type Result struct {
	Scenario string       `json:"scenario"`
	Pass     bool         `json:"pass"`
	Trace    []TraceEvent `json:"trace"`
	Errors   []string     `json:"errors,omitempty"`

	// Final maps each binding name to its record's wire-format JSON,
	// captured after the last step.
	Final map[string]string `json:"final,omitempty"`
}

// NewResult creates a passing result for the named scenario. Assertion
// failures flip it via AddError.
func NewResult(scenario string) *Result {
	return &Result{
		Scenario: scenario,
		Pass:     true,
		Trace:    []TraceEvent{},
		Errors:   []string{},
	}
}

// AddError records an assertion failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddRecordTrace appends a trace event for a step that bound a record.
func (r *Result) AddRecordTrace(step int, op, name string, a *action.Action) {
	r.Trace = append(r.Trace, TraceEvent{
		Step:     step,
		Op:       op,
		Name:     name,
		ID:       a.Meta.ID,
		Phase:    string(a.Meta.Phase),
		Progress: a.Meta.Progress,
		Error:    a.Error,
		Valid:    action.IsValid(a),
	})
}

// AddIdentityTrace appends a trace event for an identify step.
func (r *Result) AddIdentityTrace(step int, id string) {
	r.Trace = append(r.Trace, TraceEvent{
		Step: step,
		Op:   OpIdentify,
		ID:   id,
	})
}

// CanonicalBytes serializes the result as canonical JSON for golden file
// comparison. Wire snapshots under Final are embedded as parsed objects so
// the golden shows real record structure rather than quoted JSON text.
//
// Field presence follows the trace semantics: progress, error, and valid
// are meaningful only for record-producing steps, so they are emitted
// exactly when the event carries a binding name.
func (r *Result) CanonicalBytes() ([]byte, error) {
	trace := make([]any, len(r.Trace))
	for i, event := range r.Trace {
		eventMap := map[string]any{
			"step": event.Step,
			"op":   event.Op,
		}
		if event.Name != "" {
			eventMap["name"] = event.Name
			eventMap["progress"] = event.Progress
			eventMap["error"] = event.Error
			eventMap["valid"] = event.Valid
		}
		if event.ID != "" {
			eventMap["id"] = event.ID
		}
		if event.Phase != "" {
			eventMap["phase"] = event.Phase
		}
		trace[i] = eventMap
	}

	out := map[string]any{
		"scenario": r.Scenario,
		"pass":     r.Pass,
		"trace":    trace,
	}

	if len(r.Errors) > 0 {
		errs := make([]any, len(r.Errors))
		for i, msg := range r.Errors {
			errs[i] = msg
		}
		out["errors"] = errs
	}

	if len(r.Final) > 0 {
		final := make(map[string]any, len(r.Final))
		for name, wire := range r.Final {
			v, err := action.ParseValue([]byte(wire))
			if err != nil {
				return nil, fmt.Errorf("final[%q]: %w", name, err)
			}
			final[name] = v
		}
		out["final"] = final
	}

	v, err := action.FromGo(out)
	if err != nil {
		return nil, err
	}
	return action.MarshalCanonical(v)
}

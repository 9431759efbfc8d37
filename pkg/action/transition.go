package action

// Lifecycle transitions. Each requires a valid async action, returns a new
// record, and never mutates its input. The identifier, ctime, type,
// lineage, and flags are copied unchanged; utime is refreshed from the
// factory clock. Transitions do not gate on the current phase: producing a
// successor of a finished action is permitted and simply yields another
// record with the same identity.

// Continue returns a successor in the intermediate running stage with the
// given payload and progress. Progress is clamped to [0, 100]; error is
// cleared.
func (f *Factory) Continue(a *Action, payload Value, progress int) (*Action, error) {
	return f.transition("Continue", a, payload, false, PhaseRunning, clampProgress(progress))
}

// Succeed returns a successor in the terminal stage carrying the result
// payload, with progress forced to 100 and error false.
func (f *Factory) Succeed(a *Action, payload Value) (*Action, error) {
	return f.transition("Succeed", a, payload, false, PhaseFinished, 100)
}

// Fail returns a successor in the terminal stage whose payload is the
// failure description and whose error flag is set, with progress 100.
func (f *Factory) Fail(a *Action, reason Value) (*Action, error) {
	return f.transition("Fail", a, reason, true, PhaseFinished, 100)
}

func (f *Factory) transition(op string, a *Action, payload Value, errorFlag bool, phase Phase, progress int) (*Action, error) {
	if err := a.verify(op); err != nil {
		return nil, err
	}
	if !a.Meta.Async {
		return nil, newNotAsyncError(op, a)
	}
	if err := checkPayload(op, payload); err != nil {
		return nil, err
	}

	b := *a
	b.Payload = payload
	b.Error = errorFlag
	b.Meta.Phase = phase
	b.Meta.Progress = progress
	b.Meta.UTime = f.now()
	return &b, nil
}

func clampProgress(p int) int {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	default:
		return p
	}
}

// Continue applies Factory.Continue on the system clock.
func Continue(a *Action, payload Value, progress int) (*Action, error) {
	return defaultFactory.Continue(a, payload, progress)
}

// Succeed applies Factory.Succeed on the system clock.
func Succeed(a *Action, payload Value) (*Action, error) {
	return defaultFactory.Succeed(a, payload)
}

// Fail applies Factory.Fail on the system clock.
func Fail(a *Action, reason Value) (*Action, error) {
	return defaultFactory.Fail(a, reason)
}

package action

// Guarded accessors. Each verifies the receiver first and returns a
// UsageError (ErrCodeInvalidAction) when it does not validate, so reads
// off malformed records fail loudly instead of returning junk. Callers
// that want the boolean path should gate with IsValid beforehand.

// ID returns the action's identifier.
func (a *Action) ID() (string, error) {
	if err := a.verify("ID"); err != nil {
		return "", err
	}
	return a.Meta.ID, nil
}

// ParentID returns the identifier of the action's parent. An action
// without lineage returns the empty string, not an error.
func (a *Action) ParentID() (string, error) {
	if err := a.verify("ParentID"); err != nil {
		return "", err
	}
	return a.Meta.PID, nil
}

// IsAsync reports whether the action carries lifecycle state.
func (a *Action) IsAsync() (bool, error) {
	if err := a.verify("IsAsync"); err != nil {
		return false, err
	}
	return a.Meta.Async, nil
}

// IsUnique reports whether the action's identifier was randomly generated
// rather than content-derived.
func (a *Action) IsUnique() (bool, error) {
	if err := a.verify("IsUnique"); err != nil {
		return false, err
	}
	return a.Meta.Uniq, nil
}

// IsStarted reports whether an async action is still in its initial
// stage. Calling it on a sync action is a usage error (ErrCodeNotAsync).
func (a *Action) IsStarted() (bool, error) {
	return a.phaseIs("IsStarted", PhaseStarted)
}

// IsRunning reports whether an async action is in the intermediate stage
// set by Continue. Calling it on a sync action is a usage error.
func (a *Action) IsRunning() (bool, error) {
	return a.phaseIs("IsRunning", PhaseRunning)
}

// IsFinished reports whether an async action has reached the terminal
// stage. Calling it on a sync action is a usage error.
func (a *Action) IsFinished() (bool, error) {
	return a.phaseIs("IsFinished", PhaseFinished)
}

func (a *Action) phaseIs(op string, want Phase) (bool, error) {
	if err := a.verify(op); err != nil {
		return false, err
	}
	if !a.Meta.Async {
		return false, newNotAsyncError(op, a)
	}
	return a.Meta.Phase == want, nil
}

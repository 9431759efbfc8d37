package action

// MakeChildOf returns a copy of child whose pid is the parent's id, with
// utime refreshed. Both records must validate; sync and async actions can
// parent each other freely. The child's own identity is untouched.
func (f *Factory) MakeChildOf(parent, child *Action) (*Action, error) {
	if err := parent.verify("MakeChildOf"); err != nil {
		return nil, err
	}
	if err := child.verify("MakeChildOf"); err != nil {
		return nil, err
	}

	c := *child
	c.Meta.PID = parent.Meta.ID
	c.Meta.UTime = f.now()
	return &c, nil
}

// MakeChildOf applies Factory.MakeChildOf on the system clock.
func MakeChildOf(parent, child *Action) (*Action, error) {
	return defaultFactory.MakeChildOf(parent, child)
}

// IsChildOf reports whether child claims parent as its parent: its pid is
// set and equals the parent's id. Both records must validate. A child
// without a pid claims no parentage and is nobody's child.
func IsChildOf(parent, child *Action) (bool, error) {
	if err := parent.verify("IsChildOf"); err != nil {
		return false, err
	}
	if err := child.verify("IsChildOf"); err != nil {
		return false, err
	}
	return child.Meta.PID != "" && child.Meta.PID == parent.Meta.ID, nil
}

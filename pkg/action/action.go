package action

// Phase is the lifecycle stage of an async action.
type Phase string

const (
	// PhaseStarted is the initial stage set at creation.
	PhaseStarted Phase = "started"

	// PhaseRunning is the intermediate stage set by Continue.
	PhaseRunning Phase = "running"

	// PhaseFinished is the terminal stage set by Succeed and Fail.
	PhaseFinished Phase = "finished"
)

// Meta carries an action's identity, lineage, and lifecycle metadata.
// Empty PID/UTime mean absent; Phase and Progress are meaningful only when
// Async is true and must not be set on sync actions.
type Meta struct {
	Sign     string `json:"sign"`
	ID       string `json:"id"`
	PID      string `json:"pid,omitempty"`
	CTime    string `json:"ctime"`
	UTime    string `json:"utime,omitempty"`
	Async    bool   `json:"async"`
	Uniq     bool   `json:"uniq"`
	Phase    Phase  `json:"phase,omitempty"`
	Progress int    `json:"progress,omitempty"`
}

// Action is an immutable-by-convention record describing that something
// happened. Treat constructed actions as read-only: every operation in
// this package returns a new record and callers are expected to do the
// same.
type Action struct {
	Type    string `json:"type"`
	Payload Value  `json:"payload,omitempty"`
	Error   bool   `json:"error"`
	Meta    Meta   `json:"meta"`
}

// Options selects the variant an action is created as.
type Options struct {
	// Async marks the action as carrying lifecycle state (phase/progress).
	Async bool

	// Uniq requests a random identifier instead of a content-derived one.
	Uniq bool
}

// Factory constructs actions and their lifecycle successors. The zero
// value reads the system clock; inject a Clock for deterministic time.
// A Factory is safe for concurrent use when its Clock is.
type Factory struct {
	Clock Clock
}

// NewFactory returns a Factory on the given clock. A nil clock means the
// system clock.
func NewFactory(clock Clock) *Factory {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Factory{Clock: clock}
}

func (f *Factory) now() string {
	c := f.Clock
	if c == nil {
		c = SystemClock{}
	}
	return formatTime(c.Now())
}

// New constructs an action of the given type. The payload may be nil
// (absent). The identifier is content-derived unless opts.Uniq is set;
// error is always false at creation; ctime is the factory clock's current
// time. Async actions start in PhaseStarted with progress 0.
func (f *Factory) New(typ string, payload Value, opts Options) (*Action, error) {
	if typ == "" {
		return nil, newEmptyTypeError("New")
	}
	if opts.Uniq {
		// Identify skips canonicalization for unique ids; reject payloads
		// with no canonical form here so they cannot enter a record.
		if err := checkPayload("New", payload); err != nil {
			return nil, err
		}
	}
	id, err := Identify(typ, payload, opts.Uniq)
	if err != nil {
		return nil, err
	}

	a := &Action{
		Type:    typ,
		Payload: payload,
		Meta: Meta{
			Sign:  Sign,
			ID:    id,
			CTime: f.now(),
			Async: opts.Async,
			Uniq:  opts.Uniq,
		},
	}
	if opts.Async {
		a.Meta.Phase = PhaseStarted
		a.Meta.Progress = 0
	}
	return a, nil
}

// NewAsync is shorthand for New with Options{Async: true}.
func (f *Factory) NewAsync(typ string, payload Value) (*Action, error) {
	return f.New(typ, payload, Options{Async: true})
}

// NewUniqueAsync is shorthand for New with Options{Async: true, Uniq: true}.
func (f *Factory) NewUniqueAsync(typ string, payload Value) (*Action, error) {
	return f.New(typ, payload, Options{Async: true, Uniq: true})
}

// defaultFactory backs the package-level constructors and transitions.
var defaultFactory = &Factory{Clock: SystemClock{}}

// New constructs an action on the system clock. See Factory.New.
func New(typ string, payload Value, opts Options) (*Action, error) {
	return defaultFactory.New(typ, payload, opts)
}

// NewAsync constructs an async action on the system clock.
func NewAsync(typ string, payload Value) (*Action, error) {
	return defaultFactory.NewAsync(typ, payload)
}

// NewUniqueAsync constructs an async action with a random identifier on
// the system clock.
func NewUniqueAsync(typ string, payload Value) (*Action, error) {
	return defaultFactory.NewUniqueAsync(typ, payload)
}

// MustNew is like New but panics on error. Use only in tests or when
// inputs are known to be valid.
func MustNew(typ string, payload Value, opts Options) *Action {
	a, err := New(typ, payload, opts)
	if err != nil {
		panic(err)
	}
	return a
}

// checkPayload rejects payloads that cannot take canonical form, so every
// constructed record is serializable.
func checkPayload(op string, payload Value) error {
	if payload == nil {
		return nil
	}
	if _, err := MarshalCanonical(payload); err != nil {
		return newBadValueError(op, payload, err)
	}
	return nil
}

// record returns the action's wire shape as a plain map, the view the
// validator checks. Phase and progress surface whenever they would appear
// on the wire, including when illegitimately set on a sync action.
func (a *Action) record() map[string]any {
	meta := map[string]any{
		"sign":  a.Meta.Sign,
		"id":    a.Meta.ID,
		"ctime": a.Meta.CTime,
		"async": a.Meta.Async,
		"uniq":  a.Meta.Uniq,
	}
	if a.Meta.PID != "" {
		meta["pid"] = a.Meta.PID
	}
	if a.Meta.UTime != "" {
		meta["utime"] = a.Meta.UTime
	}
	if a.Meta.Async || a.Meta.Phase != "" {
		meta["phase"] = string(a.Meta.Phase)
	}
	if a.Meta.Async || a.Meta.Progress != 0 {
		meta["progress"] = a.Meta.Progress
	}

	rec := map[string]any{
		"type":  a.Type,
		"error": a.Error,
		"meta":  meta,
	}
	if a.Payload != nil {
		rec["payload"] = a.Payload
	}
	return rec
}

// verify gates every guarded operation: nil receivers and records that
// fail validation become usage errors carrying the offending value.
func (a *Action) verify(op string) error {
	if a == nil {
		return newInvalidActionError(op, nil, nil)
	}
	if errs := Check(a); len(errs) > 0 {
		return newInvalidActionError(op, a, errs)
	}
	return nil
}

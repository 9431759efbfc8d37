package schema

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta/internal/testutil"
	"github.com/acta-dev/acta/pkg/action"
)

func TestValidate_FactoryRecords(t *testing.T) {
	clock := testutil.NewSteppingClock(
		time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC), time.Second)
	f := action.NewFactory(clock)

	parent, err := f.New("session.opened", action.Object{"user": action.String("ada")}, action.Options{})
	require.NoError(t, err)
	job, err := f.NewAsync("export.requested", action.Object{"format": action.String("csv")})
	require.NoError(t, err)
	adopted, err := f.MakeChildOf(parent, job)
	require.NoError(t, err)
	done, err := f.Succeed(adopted, nil)
	require.NoError(t, err)
	bare, err := f.New("ping", nil, action.Options{})
	require.NoError(t, err)

	for _, a := range []*action.Action{parent, job, adopted, done, bare} {
		data, err := a.MarshalJSON()
		require.NoError(t, err)
		assert.NoError(t, Validate(data), "record %s", a.Type)
	}
}

func TestValidate_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(top, meta map[string]any)
	}{
		{
			name: "bogus phase",
			mutate: func(top, meta map[string]any) {
				meta["phase"] = "exploded"
			},
		},
		{
			name: "progress above bounds",
			mutate: func(top, meta map[string]any) {
				meta["progress"] = 400
			},
		},
		{
			name: "progress below bounds",
			mutate: func(top, meta map[string]any) {
				meta["progress"] = -1
			},
		},
		{
			name: "progress not an integer",
			mutate: func(top, meta map[string]any) {
				meta["progress"] = 50.5
			},
		},
		{
			name: "sign mismatch",
			mutate: func(top, meta map[string]any) {
				meta["sign"] = "somebody/else/v9"
			},
		},
		{
			name: "lifecycle keys on sync meta",
			mutate: func(top, meta map[string]any) {
				meta["async"] = false
			},
		},
		{
			name: "unexpected top-level key",
			mutate: func(top, meta map[string]any) {
				top["trace"] = true
			},
		},
		{
			name: "unexpected meta key",
			mutate: func(top, meta map[string]any) {
				meta["zebra"] = 1
			},
		},
		{
			name: "missing sign",
			mutate: func(top, meta map[string]any) {
				delete(meta, "sign")
			},
		},
		{
			name: "type not a string",
			mutate: func(top, meta map[string]any) {
				top["type"] = 42
			},
		},
		{
			name: "error not a boolean",
			mutate: func(top, meta map[string]any) {
				top["error"] = "no"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(wireDoc(t, tt.mutate))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "#Action")
		})
	}
}

func TestValidate_ShapeValidButSemanticallyBogus(t *testing.T) {
	// The behavioral check is literal about keys and leaves values alone;
	// the schema pins them.
	doc := wireDoc(t, func(top, meta map[string]any) {
		meta["phase"] = "exploded"
		meta["progress"] = 400
	})

	a, err := action.Parse(doc)
	require.NoError(t, err)
	assert.True(t, action.IsValid(a))

	assert.Error(t, Validate(doc))
}

func TestValidate_NonObjects(t *testing.T) {
	for _, input := range []string{`null`, `[1,2]`, `"hi"`, `{`} {
		assert.Error(t, Validate([]byte(input)), "input %s", input)
	}
}

func TestValidate_NullPayload(t *testing.T) {
	doc := wireDoc(t, func(top, meta map[string]any) {
		top["payload"] = nil
	})
	assert.NoError(t, Validate(doc))
}

func TestSource(t *testing.T) {
	src := Source()
	assert.Contains(t, src, "#Action")
	assert.Contains(t, src, `"acta/action/v1"`)
	assert.Contains(t, src, `"started" | "running" | "finished"`)
}

// wireDoc builds a conforming async wire document and lets the caller
// mutate it before encoding.
func wireDoc(t *testing.T, mutate func(top, meta map[string]any)) []byte {
	t.Helper()

	meta := map[string]any{
		"sign":     "acta/action/v1",
		"id":       "8d76ac36-b2e2-524a-b361-b8d2adf52a62",
		"ctime":    "2024-01-01T00:00:00.000Z",
		"async":    true,
		"uniq":     false,
		"phase":    "started",
		"progress": 0,
	}
	top := map[string]any{
		"type":    "fetch",
		"error":   false,
		"payload": map[string]any{"url": "/x"},
		"meta":    meta,
	}
	if mutate != nil {
		mutate(top, meta)
	}

	data, err := json.Marshal(top)
	require.NoError(t, err)
	return data
}

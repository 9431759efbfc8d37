package action

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acta-dev/acta/internal/testutil"
)

var testInstant = time.Date(2024, 5, 6, 7, 8, 9, 123000000, time.UTC)

func testFactory() *Factory {
	return NewFactory(testutil.NewFixedClock(testInstant))
}

func TestFactoryNew_Sync(t *testing.T) {
	f := testFactory()

	a, err := f.New("user.created", Object{"name": String("Ada"), "age": Int(36)}, Options{})
	require.NoError(t, err)

	assert.Equal(t, "user.created", a.Type)
	assert.Equal(t, Object{"name": String("Ada"), "age": Int(36)}, a.Payload)
	assert.False(t, a.Error)
	assert.Equal(t, Sign, a.Meta.Sign)
	assert.Equal(t, "b75583bc-d621-5089-be13-8229ecc285c5", a.Meta.ID)
	assert.Empty(t, a.Meta.PID)
	assert.Equal(t, "2024-05-06T07:08:09.123Z", a.Meta.CTime)
	assert.Empty(t, a.Meta.UTime)
	assert.False(t, a.Meta.Async)
	assert.False(t, a.Meta.Uniq)
	assert.Empty(t, a.Meta.Phase)
	assert.Zero(t, a.Meta.Progress)
	assert.True(t, IsValid(a))
}

func TestFactoryNew_Async(t *testing.T) {
	f := testFactory()

	a, err := f.NewAsync("fetch", Object{"url": String("/x")})
	require.NoError(t, err)

	assert.Equal(t, "8d76ac36-b2e2-524a-b361-b8d2adf52a62", a.Meta.ID)
	assert.True(t, a.Meta.Async)
	assert.False(t, a.Meta.Uniq)
	assert.Equal(t, PhaseStarted, a.Meta.Phase)
	assert.Zero(t, a.Meta.Progress)
	assert.True(t, IsValid(a))
}

func TestFactoryNew_UniqueAsync(t *testing.T) {
	f := testFactory()

	a, err := f.NewUniqueAsync("upload", Object{"file": String("a.txt")})
	require.NoError(t, err)
	b, err := f.NewUniqueAsync("upload", Object{"file": String("a.txt")})
	require.NoError(t, err)

	assert.True(t, a.Meta.Async)
	assert.True(t, a.Meta.Uniq)
	assert.Equal(t, PhaseStarted, a.Meta.Phase)

	_, err = uuid.Parse(a.Meta.ID)
	require.NoError(t, err)
	assert.NotEqual(t, a.Meta.ID, b.Meta.ID)
	assert.True(t, IsValid(a))
	assert.True(t, IsValid(b))
}

func TestFactoryNew_EmptyType(t *testing.T) {
	f := testFactory()

	_, err := f.New("", nil, Options{})
	require.Error(t, err)
	assert.True(t, IsEmptyType(err))
}

func TestFactoryNew_UncanonicalizablePayload(t *testing.T) {
	f := testFactory()

	_, err := f.New("metric", Object{"rate": Float(math.Inf(1))}, Options{})
	require.Error(t, err)
	assert.True(t, IsBadValue(err))

	// Unique ids skip canonicalization, but a payload with no canonical
	// form must still be rejected at the door.
	_, err = f.New("metric", Object{"rate": Float(math.NaN())}, Options{Uniq: true, Async: true})
	require.Error(t, err)
	assert.True(t, IsBadValue(err))
}

func TestFactoryNew_TimeConversion(t *testing.T) {
	zone := time.FixedZone("UTC+2", 2*60*60)
	clock := testutil.NewFixedClock(time.Date(2024, 3, 1, 12, 0, 0, 456789012, zone))
	f := NewFactory(clock)

	a, err := f.New("ping", nil, Options{})
	require.NoError(t, err)

	// Timestamps are UTC with millisecond precision regardless of the
	// clock's zone or resolution.
	assert.Equal(t, "2024-03-01T10:00:00.456Z", a.Meta.CTime)
}

func TestZeroValueFactory(t *testing.T) {
	var f Factory

	before := time.Now().UTC()
	a, err := f.New("ping", nil, Options{})
	require.NoError(t, err)
	after := time.Now().UTC()

	ts, err := time.Parse(TimeLayout, a.Meta.CTime)
	require.NoError(t, err)
	assert.False(t, ts.Before(before.Truncate(time.Millisecond)))
	assert.False(t, ts.After(after))
}

func TestPackageLevelConstructors(t *testing.T) {
	a, err := New("ping", nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, "cc6d40f9-215a-5549-8aeb-0027ed0cd65c", a.Meta.ID)

	b, err := NewAsync("fetch", Object{"url": String("/x")})
	require.NoError(t, err)
	assert.True(t, b.Meta.Async)

	c, err := NewUniqueAsync("upload", nil)
	require.NoError(t, err)
	assert.True(t, c.Meta.Uniq)
}

func TestMustNew(t *testing.T) {
	a := MustNew("ping", nil, Options{})
	assert.Equal(t, "ping", a.Type)

	assert.Panics(t, func() {
		MustNew("", nil, Options{})
	})
}

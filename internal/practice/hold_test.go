package practice

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func at(ms int) time.Time {
	return t0.Add(time.Duration(ms) * time.Millisecond)
}

func TestDebouncerMismatchBeforeThresholdResets(t *testing.T) {
	d := NewDebouncer(LessonHold)
	d.SetTarget("B")

	state, fired := d.Feed("B", at(0))
	assert.Equal(t, Accumulating, state)
	assert.False(t, fired)

	state, fired = d.Feed("B", at(500))
	assert.Equal(t, Accumulating, state)
	assert.False(t, fired)

	state, fired = d.Feed("A", at(600))
	assert.Equal(t, Idle, state)
	assert.False(t, fired)

	// The timer restarts from the next match.
	d.Feed("B", at(700))
	state, fired = d.Feed("B", at(1400))
	assert.Equal(t, Accumulating, state)
	assert.False(t, fired)

	state, fired = d.Feed("B", at(1500))
	assert.Equal(t, Confirmed, state)
	assert.True(t, fired)
}

func TestDebouncerContinuousHoldConfirmsOnce(t *testing.T) {
	for _, hold := range []time.Duration{SpellingHold, LessonHold} {
		t.Run(hold.String(), func(t *testing.T) {
			d := NewDebouncer(hold)
			d.SetTarget("B")

			edges := 0
			var confirmedAt int
			for ms := 0; ms <= 3000; ms += 33 {
				state, fired := d.Feed("B", at(ms))
				if fired {
					edges++
					confirmedAt = ms
				}
				if ms >= int(hold/time.Millisecond)+33 {
					assert.Equal(t, Confirmed, state, "at %dms", ms)
				}
			}

			assert.Equal(t, 1, edges)
			assert.GreaterOrEqual(t, confirmedAt, int(hold/time.Millisecond))
			assert.Less(t, confirmedAt, int(hold/time.Millisecond)+33)
		})
	}
}

func TestDebouncerElapsedEqualToHoldConfirms(t *testing.T) {
	d := NewDebouncer(LessonHold)
	d.SetTarget("C")

	d.Feed("C", at(0))
	state, fired := d.Feed("C", at(800))
	assert.Equal(t, Confirmed, state)
	assert.True(t, fired)
}

func TestDebouncerCaseInsensitive(t *testing.T) {
	d := NewDebouncer(SpellingHold)
	d.SetTarget("m")

	d.Feed("M", at(0))
	state, fired := d.Feed("M", at(500))
	assert.Equal(t, Confirmed, state)
	assert.True(t, fired)
}

func TestDebouncerReset(t *testing.T) {
	d := NewDebouncer(SpellingHold)
	d.SetTarget("A")
	d.Feed("A", at(0))
	d.Feed("A", at(600))
	require.Equal(t, Confirmed, d.State())

	d.Reset()
	assert.Equal(t, Idle, d.State())

	// A fresh hold confirms again after a reset.
	d.Feed("A", at(700))
	_, fired := d.Feed("A", at(1200))
	assert.True(t, fired)
}

func TestDebouncerSetTargetResets(t *testing.T) {
	d := NewDebouncer(SpellingHold)
	d.SetTarget("A")
	d.Feed("A", at(0))
	require.Equal(t, Accumulating, d.State())

	d.SetTarget("B")
	assert.Equal(t, Idle, d.State())
	assert.Equal(t, "B", d.Target())

	state, _ := d.Feed("A", at(100))
	assert.Equal(t, Idle, state)
}

func TestDebouncerNoTarget(t *testing.T) {
	d := NewDebouncer(0)

	state, fired := d.Feed("", at(0))
	assert.Equal(t, Idle, state)
	assert.False(t, fired)
}

func TestDebouncerZeroHoldConfirmsImmediately(t *testing.T) {
	d := NewDebouncer(0)
	d.SetTarget("A")

	state, fired := d.Feed("A", at(0))
	assert.Equal(t, Confirmed, state)
	assert.True(t, fired)
}

func TestDebouncerProgress(t *testing.T) {
	d := NewDebouncer(LessonHold)
	d.SetTarget("A")
	assert.Zero(t, d.Progress(at(0)))

	d.Feed("A", at(0))
	assert.InDelta(t, 0.5, d.Progress(at(400)), 1e-9)
	assert.Equal(t, 1.0, d.Progress(at(5000)))

	d.Feed("A", at(900))
	assert.Equal(t, 1.0, d.Progress(at(900)))
}

func TestStateJSON(t *testing.T) {
	data, err := json.Marshal(map[string]State{"s": Accumulating})
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"accumulating"}`, string(data))

	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "confirmed", Confirmed.String())
	assert.Equal(t, "unknown", State(9).String())

	var decoded map[string]State
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, Accumulating, decoded["s"])
	assert.Error(t, json.Unmarshal([]byte(`{"s":"held"}`), &decoded))
}

// Package practice runs the live sign practice loop: it turns per-frame
// classifications into a "correct" signal once the learner holds the target
// sign long enough, and reports progress for a lesson or a spelled word.
package practice

import (
	"fmt"
	"strings"
	"time"
)

// Hold durations for the two practice modes. A single-sign lesson asks for a
// deliberate hold; spelling a word moves faster between letters.
const (
	LessonHold   = 800 * time.Millisecond
	SpellingHold = 500 * time.Millisecond
)

// State is the debouncer's position in its hold cycle.
type State int

const (
	// Idle means no matching prediction is being timed.
	Idle State = iota
	// Accumulating means the target has matched continuously since Start.
	Accumulating
	// Confirmed means the target was held for at least the hold duration.
	Confirmed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Accumulating:
		return "accumulating"
	case Confirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a state name.
func (s *State) UnmarshalText(text []byte) error {
	for _, st := range []State{Idle, Accumulating, Confirmed} {
		if string(text) == st.String() {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown hold state %q", text)
}

// Debouncer requires a prediction to match the target continuously for a
// hold duration before it reports success. It is not safe for concurrent use.
type Debouncer struct {
	hold   time.Duration
	target string
	start  time.Time
	state  State
}

// NewDebouncer returns an idle debouncer with no target.
func NewDebouncer(hold time.Duration) *Debouncer {
	return &Debouncer{hold: hold}
}

// SetTarget changes the label being practiced and returns to Idle.
func (d *Debouncer) SetTarget(target string) {
	d.target = target
	d.Reset()
}

// Target returns the label being practiced.
func (d *Debouncer) Target() string {
	return d.target
}

// Hold returns the required hold duration.
func (d *Debouncer) Hold() time.Duration {
	return d.hold
}

// State returns the current state.
func (d *Debouncer) State() State {
	return d.state
}

// Reset clears the timer and returns to Idle.
func (d *Debouncer) Reset() {
	d.state = Idle
	d.start = time.Time{}
}

// Feed records the prediction made at now. It returns the new state and
// whether this call moved the debouncer into Confirmed, which happens at most
// once per continuous hold. Any mismatch, including an empty target, resets
// to Idle.
func (d *Debouncer) Feed(predicted string, now time.Time) (State, bool) {
	if d.target == "" || !strings.EqualFold(predicted, d.target) {
		d.Reset()
		return d.state, false
	}

	switch d.state {
	case Confirmed:
		return d.state, false
	case Idle:
		d.state = Accumulating
		d.start = now
	}

	if now.Sub(d.start) >= d.hold {
		d.state = Confirmed
		return d.state, true
	}
	return d.state, false
}

// Progress returns how much of the hold has elapsed at now, in [0, 1].
func (d *Debouncer) Progress(now time.Time) float64 {
	switch d.state {
	case Confirmed:
		return 1
	case Accumulating:
		if d.hold <= 0 {
			return 1
		}
		p := float64(now.Sub(d.start)) / float64(d.hold)
		return min(max(p, 0), 1)
	default:
		return 0
	}
}

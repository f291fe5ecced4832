package practice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeedKeepsLatest(t *testing.T) {
	f := NewFeed()
	ch, cancel := f.Subscribe()
	defer cancel()

	f.Publish(Snapshot{Prediction: "A"})
	f.Publish(Snapshot{Prediction: "B"})
	f.Publish(Snapshot{Prediction: "C"})

	got := <-ch
	assert.Equal(t, "C", got.Prediction)

	select {
	case s := <-ch:
		t.Fatalf("unexpected pending snapshot %+v", s)
	default:
	}
}

func TestFeedFanOut(t *testing.T) {
	f := NewFeed()
	a, cancelA := f.Subscribe()
	b, cancelB := f.Subscribe()
	defer cancelB()
	require.Equal(t, 2, f.Len())

	f.Publish(Snapshot{Prediction: "L"})
	assert.Equal(t, "L", (<-a).Prediction)
	assert.Equal(t, "L", (<-b).Prediction)

	cancelA()
	cancelA()
	assert.Equal(t, 1, f.Len())

	_, open := <-a
	assert.False(t, open)

	// Publishing after a subscriber left must not panic.
	f.Publish(Snapshot{Prediction: "M"})
	assert.Equal(t, "M", (<-b).Prediction)
}

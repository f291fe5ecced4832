package practice

import (
	"time"

	"github.com/bmharper/ringbuffer"
)

// LatencyWindow is the number of recent frames averaged for mean latency.
const LatencyWindow = 30

// Metrics tracks per-frame processing latency and the processed frame rate.
// FPS is recomputed each time more than a second of wall-clock time has
// passed since the last computation. Not safe for concurrent use.
type Metrics struct {
	latencies   ringbuffer.RingP[time.Duration]
	last        time.Duration
	windowStart time.Time
	frames      int
	fps         float64
}

// NewMetrics creates an empty Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		latencies: ringbuffer.NewRingP[time.Duration](LatencyWindow),
	}
}

// Observe records one processed frame that started at start and finished at end.
func (m *Metrics) Observe(start, end time.Time) {
	m.last = end.Sub(start)
	m.latencies.Add(m.last)

	if m.windowStart.IsZero() {
		m.windowStart = start
	}
	m.frames++

	if elapsed := end.Sub(m.windowStart); elapsed > time.Second {
		m.fps = float64(m.frames) / elapsed.Seconds()
		m.frames = 0
		m.windowStart = end
	}
}

// LastLatency returns the latency of the most recent frame.
func (m *Metrics) LastLatency() time.Duration {
	return m.last
}

// MeanLatency returns the mean latency over the recent window.
func (m *Metrics) MeanLatency() time.Duration {
	n := m.latencies.Len()
	if n == 0 {
		return 0
	}
	var sum time.Duration
	for i := 0; i < n; i++ {
		sum += m.latencies.Peek(i)
	}
	return sum / time.Duration(n)
}

// FPS returns the most recently computed frame rate.
func (m *Metrics) FPS() float64 {
	return m.fps
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

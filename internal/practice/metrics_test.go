package practice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsLatency(t *testing.T) {
	m := NewMetrics()
	assert.Zero(t, m.MeanLatency())

	m.Observe(at(0), at(10))
	m.Observe(at(100), at(130))

	assert.Equal(t, 30*time.Millisecond, m.LastLatency())
	assert.Equal(t, 20*time.Millisecond, m.MeanLatency())
}

func TestMetricsLatencyWindow(t *testing.T) {
	m := NewMetrics()
	for i := 0; i < LatencyWindow; i++ {
		m.Observe(at(i*100), at(i*100+100))
	}
	assert.Equal(t, 100*time.Millisecond, m.MeanLatency())

	// Older samples fall out of the window.
	for i := 0; i < LatencyWindow; i++ {
		m.Observe(at(10000+i*100), at(10000+i*100+10))
	}
	assert.Equal(t, 10*time.Millisecond, m.MeanLatency())
}

func TestMetricsFPS(t *testing.T) {
	m := NewMetrics()

	// 20 frames over one second at 50ms spacing.
	for i := 0; i < 20; i++ {
		m.Observe(at(i*50), at(i*50+5))
	}
	assert.Zero(t, m.FPS(), "not computed until a full second has passed")

	m.Observe(at(1000), at(1005))
	assert.InDelta(t, 21/1.005, m.FPS(), 1e-6)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, 1.5, millis(1500*time.Microsecond))
}

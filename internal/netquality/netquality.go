// Package netquality estimates connection speed from observed request
// latency.
package netquality

import (
	"sync"
	"time"
)

const (
	DefaultFastThreshold = 400 * time.Millisecond
	// smoothing is the weight of the newest sample in the moving average.
	smoothing = 0.3
)

// Monitor keeps an exponential moving average of request latency. It is
// safe for concurrent use.
type Monitor struct {
	threshold time.Duration

	mu      sync.Mutex
	average float64
	samples int
}

func NewMonitor(threshold time.Duration) *Monitor {
	if threshold <= 0 {
		threshold = DefaultFastThreshold
	}
	return &Monitor{threshold: threshold}
}

// Observe records one request latency. Non-positive durations are ignored.
func (m *Monitor) Observe(d time.Duration) {
	if d <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.samples == 0 {
		m.average = float64(d)
	} else {
		m.average = smoothing*float64(d) + (1-smoothing)*m.average
	}
	m.samples++
}

// Average returns the smoothed latency, zero before the first sample.
func (m *Monitor) Average() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return time.Duration(m.average)
}

// IsFastConnection is optimistic until the first request completes.
func (m *Monitor) IsFastConnection() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.samples == 0 || time.Duration(m.average) < m.threshold
}

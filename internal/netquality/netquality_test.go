package netquality

import (
	"testing"
	"time"
)

func TestMonitorIsFastWithoutSamples(t *testing.T) {
	m := NewMonitor(0)
	if !m.IsFastConnection() {
		t.Fatalf("expected fast before any sample")
	}
	if m.Average() != 0 {
		t.Fatalf("average = %v, want 0", m.Average())
	}
}

func TestMonitorSmoothsLatency(t *testing.T) {
	m := NewMonitor(400 * time.Millisecond)

	m.Observe(100 * time.Millisecond)
	if got := m.Average(); got != 100*time.Millisecond {
		t.Fatalf("first sample average = %v, want 100ms", got)
	}
	m.Observe(1100 * time.Millisecond)
	if got := m.Average(); got < 399*time.Millisecond || got > 401*time.Millisecond {
		t.Fatalf("average = %v, want about 400ms", got)
	}
	m.Observe(2 * time.Second)
	if m.IsFastConnection() {
		t.Fatalf("expected slow after long requests")
	}
}

func TestMonitorIgnoresNonPositive(t *testing.T) {
	m := NewMonitor(time.Second)
	m.Observe(0)
	m.Observe(-time.Second)
	if m.Average() != 0 || !m.IsFastConnection() {
		t.Fatalf("expected no samples recorded")
	}
}

package utils

import (
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// CheckLatency keeps a window of recent check durations in a ring and counts every
// check ever observed, so callers can act on the running total after the window fills.
type CheckLatency struct {
	mu     sync.Mutex
	window []time.Duration
	next   int
	filled bool
	total  uint64
}

// LatencySnapshot summarises the current window.
type LatencySnapshot struct {
	Checks  uint64
	Samples int
	P50     time.Duration
	P95     time.Duration
	Max     time.Duration
}

// NewCheckLatency keeps the last size durations.
func NewCheckLatency(size int) *CheckLatency {
	if size <= 0 {
		size = 512
	}
	return &CheckLatency{window: make([]time.Duration, size)}
}

// Observe records d and returns the number of checks seen so far, d included.
func (c *CheckLatency) Observe(d time.Duration) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.window[c.next] = d
	c.next++
	if c.next == len(c.window) {
		c.next = 0
		c.filled = true
	}
	c.total++
	return c.total
}

// Snapshot returns percentiles over the window. The zero snapshot means nothing was observed.
func (c *CheckLatency) Snapshot() LatencySnapshot {
	c.mu.Lock()
	n := c.next
	if c.filled {
		n = len(c.window)
	}
	sorted := slices.Clone(c.window[:n])
	total := c.total
	c.mu.Unlock()

	if n == 0 {
		return LatencySnapshot{}
	}
	slices.Sort(sorted)
	return LatencySnapshot{
		Checks:  total,
		Samples: n,
		P50:     nearestRank(sorted, 50),
		P95:     nearestRank(sorted, 95),
		Max:     sorted[n-1],
	}
}

// nearestRank expects sorted input.
func nearestRank(sorted []time.Duration, p int) time.Duration {
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// MarshalJSON reports durations in milliseconds.
func (s LatencySnapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Checks  uint64  `json:"checks"`
		Samples int     `json:"samples"`
		P50     float64 `json:"p50Ms"`
		P95     float64 `json:"p95Ms"`
		Max     float64 `json:"maxMs"`
	}{
		Checks:  s.Checks,
		Samples: s.Samples,
		P50:     millis(s.P50),
		P95:     millis(s.P95),
		Max:     millis(s.Max),
	})
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

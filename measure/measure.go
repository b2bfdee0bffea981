// Package measure provides opt-in byte accounting for encoded artifacts.
// Enable it by setting BLISS_MEASURE=1 in the environment.
package measure

import (
	"os"
	"sync"
)

// Enabled gates all measurement call sites.
var Enabled = os.Getenv("BLISS_MEASURE") == "1"

// Counters accumulates named byte counts.
type Counters struct {
	mu sync.Mutex
	m  map[string]int64
}

// Global is the process-wide counter set.
var Global = &Counters{m: make(map[string]int64)}

// Add accumulates n bytes under key.
func (c *Counters) Add(key string, n int64) {
	c.mu.Lock()
	c.m[key] += n
	c.mu.Unlock()
}

// SnapshotAndReset returns the accumulated counters and clears them.
func (c *Counters) SnapshotAndReset() map[string]int64 {
	c.mu.Lock()
	out := c.m
	c.m = make(map[string]int64)
	c.mu.Unlock()
	return out
}

// Package scheduler paces the monitoring stages. The gate is the only
// component state that lives outside the store: per-stage last-run
// timestamps compared against the configured update interval.
package scheduler

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Stage names used by the monitor loop
const (
	StageTokens  = "tokens"
	StageHolders = "holders"
)

// Gate rate-limits named stages to at most one pass per interval.
// A stage held back by the gate is skipped, which callers must treat
// as "no work this cycle", not as an empty upstream result.
type Gate struct {
	clock    clock.Clock
	interval time.Duration

	mu      sync.Mutex
	lastRun map[string]time.Time
}

// NewGate creates a gate with the given stage repeat interval
func NewGate(interval time.Duration, clk clock.Clock) *Gate {
	if clk == nil {
		clk = clock.New()
	}
	return &Gate{
		clock:    clk,
		interval: interval,
		lastRun:  make(map[string]time.Time),
	}
}

// Due reports whether the stage may run now and, if so, records the run.
// At most one caller per interval gets true.
func (g *Gate) Due(stage string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	if last, ok := g.lastRun[stage]; ok && now.Sub(last) < g.interval {
		return false
	}
	g.lastRun[stage] = now
	return true
}

// Reset clears the stage's last-run record so its next Due passes
func (g *Gate) Reset(stage string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.lastRun, stage)
}

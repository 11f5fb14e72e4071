// Package paper keeps the simulated account and the session's closed plans in memory.
package paper

import (
	"sync"

	"github.com/maheshnellore19-collab/AI-Trader/internal/plan"
)

// Ledger stores closed plans for the running session. Nothing is persisted.
type Ledger struct {
	mu    sync.Mutex
	plans []plan.TradePlan
	limit int
}

// NewLedger creates an empty ledger keeping at most limit plans; zero keeps everything.
func NewLedger(limit int) *Ledger {
	if limit < 0 {
		limit = 0
	}
	return &Ledger{limit: limit}
}

// Record appends a copy of a closed plan.
func (l *Ledger) Record(p plan.TradePlan) {
	p.Reason = append([]string(nil), p.Reason...)
	l.mu.Lock()
	l.plans = append(l.plans, p)
	if l.limit > 0 && len(l.plans) > l.limit {
		l.plans = l.plans[len(l.plans)-l.limit:]
	}
	l.mu.Unlock()
}

// Snapshot returns a copy of the recorded plans, oldest first.
func (l *Ledger) Snapshot() []plan.TradePlan {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]plan.TradePlan, len(l.plans))
	copy(out, l.plans)
	return out
}

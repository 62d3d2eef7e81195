package enrich

import (
	"sync"
	"time"
)

// Pacer enforces a minimum spacing between sequential external calls. The
// interval is a rate-limit courtesy, not a throughput optimization.
type Pacer struct {
	mu            sync.Mutex
	nextAllowedAt time.Time
	interval      time.Duration
}

func NewPacer(interval time.Duration) *Pacer {
	if interval < 0 {
		interval = 0
	}
	return &Pacer{interval: interval}
}

// WaitTurn blocks until the next call slot opens.
func (p *Pacer) WaitTurn() {
	if p.interval == 0 {
		return
	}
	p.mu.Lock()
	now := time.Now()
	scheduled := now
	if p.nextAllowedAt.After(now) {
		scheduled = p.nextAllowedAt
	}
	p.nextAllowedAt = scheduled.Add(p.interval)
	p.mu.Unlock()

	if sleep := time.Until(scheduled); sleep > 0 {
		time.Sleep(sleep)
	}
}

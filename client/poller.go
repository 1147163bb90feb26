package client

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// FetchFunc re-reads some remote state. It is the poller's unit of work;
// errors are logged and the next tick retries from scratch.
type FetchFunc func(ctx context.Context) error

// Poller substitutes for server push: while a view is visible it re-fetches
// state on a fixed interval, so peer activity becomes visible within one
// interval. It is single-flight by construction: a tick that fires while a
// fetch is still outstanding is skipped, never queued. Cancelling the
// context stops the loop, which is how view lifecycle detaches it.
type Poller struct {
	interval time.Duration
	fetch    FetchFunc
	log      *slog.Logger
	inFlight atomic.Bool
	skipped  atomic.Uint64
}

func NewPoller(interval time.Duration, fetch FetchFunc, log *slog.Logger) *Poller {
	return &Poller{interval: interval, fetch: fetch, log: log}
}

// Run blocks until ctx is cancelled. An immediate first fetch runs before
// the ticker starts so a freshly opened view is not blank for a full
// interval.
func (p *Poller) Run(ctx context.Context) error {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Debug("poller stopped", "skipped_ticks", p.skipped.Load())
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

// SkippedTicks reports how many ticks were dropped because a fetch was
// still outstanding.
func (p *Poller) SkippedTicks() uint64 {
	return p.skipped.Load()
}

func (p *Poller) tick(ctx context.Context) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.skipped.Add(1)
		p.log.Debug("tick skipped, fetch still outstanding")
		return
	}

	go func() {
		defer p.inFlight.Store(false)
		if err := p.fetch(ctx); err != nil && ctx.Err() == nil {
			p.log.Warn("poll fetch failed", "error", err)
		}
	}()
}

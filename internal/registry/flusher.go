package registry

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// DefaultFlushDelay is how long the engine waits after the last
// mutation before persisting the catalog to the blob store.
const DefaultFlushDelay = 5 * time.Second

// Flusher coalesces durable writes behind a reset-on-mutation timer.
// At most one flush is pending at a time: each Schedule call cancels
// the previous timer and starts a fresh one, so a burst of mutations
// produces a single write reflecting the final state.
//
// A failed deferred flush is logged and not retried; in-memory state
// stays authoritative until the next mutation schedules another write.
type Flusher struct {
	mu    sync.Mutex
	timer *time.Timer
	delay time.Duration
	flush func() error
}

func NewFlusher(delay time.Duration, flush func() error) *Flusher {
	if delay <= 0 {
		delay = DefaultFlushDelay
	}
	return &Flusher{delay: delay, flush: flush}
}

// Schedule arms (or re-arms) the deferred flush.
func (f *Flusher) Schedule() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.delay, func() {
		if err := f.flush(); err != nil {
			zap.L().Error("deferred catalog flush failed", zap.Error(err))
		}
	})
}

// FlushNow cancels any pending timer and writes synchronously. Used by
// seeding, import, and shutdown, where the caller must observe the
// durable state before proceeding.
func (f *Flusher) FlushNow() error {
	f.mu.Lock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()
	return f.flush()
}

// Stop cancels any pending flush without writing.
func (f *Flusher) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

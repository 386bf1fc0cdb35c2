// Package scheduler runs the periodic background jobs of the admin service
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/amirphl/orochi-admin/utils"
)

// SessionReaper closes form sessions idle since before now and reports how many it closed
type SessionReaper interface {
	ReapIdle(now time.Time) int
}

// FormReaper periodically closes idle form sessions so their pending lookups are released
type FormReaper struct {
	sessions SessionReaper
	interval time.Duration
	logger   *log.Logger
	now      func() time.Time
}

func NewFormReaper(sessions SessionReaper, interval time.Duration, logger *log.Logger) *FormReaper {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = log.Default()
	}
	return &FormReaper{
		sessions: sessions,
		interval: interval,
		logger:   logger,
		now:      utils.UTCNow,
	}
}

// Start launches the reaper loop in a background goroutine and returns a stop function.
// Stop blocks until the loop has exited.
func (r *FormReaper) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.RunOnce()
			}
		}
	}()

	return func() {
		cancel()
		wg.Wait()
	}
}

// RunOnce reaps idle sessions once
func (r *FormReaper) RunOnce() int {
	n := r.sessions.ReapIdle(r.now())
	if n > 0 {
		r.logger.Printf("scheduler: closed %d idle form sessions", n)
	}
	return n
}

package form

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period a search field waits before looking up
const DefaultDebounce = 500 * time.Millisecond

// Timer is the handle returned by Clock.AfterFunc
type Timer interface {
	Stop() bool
}

// Clock schedules delayed calls. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock is the wall clock backed by time.AfterFunc
var RealClock Clock = realClock{}

// Debouncer runs only the last scheduled function once the window passes without
// another Schedule call. Rapid successive calls reset the timer.
type Debouncer struct {
	mu       sync.Mutex
	clock    Clock
	timer    Timer
	duration time.Duration
	gen      uint64
}

// NewDebouncer creates a debouncer with the given window. A nil clock uses RealClock.
func NewDebouncer(duration time.Duration, clock Clock) *Debouncer {
	if clock == nil {
		clock = RealClock
	}
	return &Debouncer{duration: duration, clock: clock}
}

// Schedule replaces any pending call with fn
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.duration, func() {
		// a timer that already fired when Stop was called must not run a superseded fn
		d.mu.Lock()
		current := d.gen == gen
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops any pending call
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending reports whether a call is waiting for its window to close
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

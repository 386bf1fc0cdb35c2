package form

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/amirphl/orochi-admin/models"
)

// manualClock fires timers only when Advance moves time past their deadline
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock   *manualClock
	at      time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (c *manualClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var next *manualTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.at
		next.fired = true
		c.mu.Unlock()
		next.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

type searchCall struct {
	at   time.Duration
	text string
}

type recordingClient struct {
	mu      sync.Mutex
	clock   *manualClock
	calls   []searchCall
	results []SearchResult
	err     error
}

func (c *recordingClient) Search(_ context.Context, _ string, text string) ([]SearchResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var at time.Duration
	if c.clock != nil {
		at = c.clock.Now()
	}
	c.calls = append(c.calls, searchCall{at: at, text: text})
	return c.results, c.err
}

func (c *recordingClient) Calls() []searchCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]searchCall(nil), c.calls...)
}

func TestDebouncer_ManualClock(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(500*time.Millisecond, clock)

	var calls int32
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	assert.True(t, d.Pending())

	clock.Advance(499 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	clock.Advance(time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.False(t, d.Pending())
}

func TestDebouncer_Cancel(t *testing.T) {
	clock := &manualClock{}
	d := NewDebouncer(500*time.Millisecond, clock)

	var calls int32
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	clock.Advance(100 * time.Millisecond)
	d.Cancel()
	clock.Advance(time.Second)

	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestDebouncer_RealClock(t *testing.T) {
	defer goleak.VerifyNone(t)

	var called int32
	var lastValue int32
	d := NewDebouncer(30*time.Millisecond, nil)

	for i := 1; i <= 5; i++ {
		value := int32(i)
		d.Schedule(func() {
			atomic.StoreInt32(&lastValue, value)
			atomic.AddInt32(&called, 1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return atomic.LoadInt32(&called) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), atomic.LoadInt32(&called))
	assert.Equal(t, int32(5), atomic.LoadInt32(&lastValue))
}

func TestLookup_BurstFiresOnceWithLatestText(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock, results: []SearchResult{{ID: "1", Label: "John"}}}
	param := models.ParameterDefinition{Name: "searchTerm", Type: models.ParameterTypeSearch, APIEndpoint: "/clients"}

	var delivered []LookupResult
	var l *Lookup
	l = NewLookup(param, client, LookupOptions{Debounce: 500 * time.Millisecond, Clock: clock}, func(r LookupResult) {
		if l.Current(r) {
			delivered = append(delivered, r)
		}
	})

	l.Schedule("j")
	clock.Advance(100 * time.Millisecond)
	l.Schedule("jo")
	clock.Advance(100 * time.Millisecond)
	l.Schedule("joh")
	clock.Advance(100 * time.Millisecond)
	l.Schedule("john")

	clock.Advance(399 * time.Millisecond)
	assert.Empty(t, client.Calls(), "no call before the window closes")

	clock.Advance(time.Millisecond)
	clock.Advance(2 * time.Second)

	calls := client.Calls()
	require.Len(t, calls, 1)
	assert.GreaterOrEqual(t, calls[0].at, 700*time.Millisecond)
	assert.Equal(t, "john", calls[0].text)

	require.Len(t, delivered, 1)
	assert.Equal(t, []string{"1"}, delivered[0].IDs())
}

func TestLookup_BlankTextIsSuppressed(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock}
	l := NewLookup(models.ParameterDefinition{Name: "s"}, client, LookupOptions{Clock: clock}, func(LookupResult) {})

	l.Schedule("john")
	clock.Advance(100 * time.Millisecond)
	l.Schedule("   ")
	clock.Advance(time.Second)

	assert.Empty(t, client.Calls())
}

func TestLookup_CancelBeforeWindowCloses(t *testing.T) {
	clock := &manualClock{}
	client := &recordingClient{clock: clock}
	l := NewLookup(models.ParameterDefinition{Name: "s"}, client, LookupOptions{Clock: clock}, func(LookupResult) {
		t.Fatal("cancelled lookup delivered a result")
	})

	l.Schedule("john")
	clock.Advance(200 * time.Millisecond)
	l.Cancel()
	clock.Advance(time.Second)

	assert.Empty(t, client.Calls())
}

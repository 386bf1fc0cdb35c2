package scheduler

import (
	"bytes"
	"context"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type countingReaper struct {
	calls  atomic.Int32
	reaped int
}

func (c *countingReaper) ReapIdle(time.Time) int {
	c.calls.Add(1)
	return c.reaped
}

func TestFormReaperRunOnce(t *testing.T) {
	var buf bytes.Buffer
	sessions := &countingReaper{reaped: 3}
	r := NewFormReaper(sessions, time.Minute, log.New(&buf, "", 0))

	assert.Equal(t, 3, r.RunOnce())
	assert.Contains(t, buf.String(), "closed 3 idle form sessions")

	buf.Reset()
	sessions.reaped = 0
	assert.Zero(t, r.RunOnce())
	assert.Empty(t, buf.String(), "quiet ticks are not logged")
}

func TestFormReaperStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	sessions := &countingReaper{}
	r := NewFormReaper(sessions, 5*time.Millisecond, log.New(&bytes.Buffer{}, "", 0))
	stop := r.Start(context.Background())

	require.Eventually(t, func() bool { return sessions.calls.Load() >= 2 }, time.Second, time.Millisecond)
	stop()

	calls := sessions.calls.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, sessions.calls.Load(), "no ticks after stop")
}

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeClock is a mutable clock for window tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestNormalizeHostname(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "saramin.co.kr", NormalizeHostname("saramin.co.kr"))
	assert.Equal(t, "saramin.co.kr", NormalizeHostname("www.saramin.co.kr"))
	assert.Equal(t, "wanted.co.kr", NormalizeHostname("WWW.WANTED.CO.KR"))
	assert.Equal(t, "unknown-board.com", NormalizeHostname("www.unknown-board.com"))
}

func TestCheckQuotaExhaustionAndRecovery(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	host := "incruit.com" // 5/hr

	for i := 0; i < 5; i++ {
		require.True(t, l.Check(host).Allowed, "request %d should be allowed", i)
		l.RecordRequest(host)
		clk.Advance(time.Minute)
	}

	denied := l.Check(host)
	require.False(t, denied.Allowed)
	assert.Greater(t, denied.RetryAfter, time.Duration(0))

	// The oldest entry is 5 minutes old; the window frees up 55 minutes
	// from now.
	assert.InDelta(t, float64(55*time.Minute), float64(denied.RetryAfter), float64(time.Second))

	clk.Advance(56 * time.Minute)
	assert.True(t, l.Check(host).Allowed, "quota must recover once the window slides")
}

func TestCheckUnknownSiteUsesDefaultQuota(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	host := "www.some-other-board.io"

	for i := 0; i < defaultLimits.MaxPerHour; i++ {
		l.RecordRequest(host)
	}
	assert.False(t, l.Check(host).Allowed)
}

func TestAcquireConcurrencyExclusive(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	host := "jumpit.co.kr" // maxConcurrent 1
	ctx := context.Background()

	release := l.AcquireConcurrency(ctx, host, time.Second)
	require.NotNil(t, release)

	// While the slot is held, a second acquire must time out.
	start := time.Now()
	second := l.AcquireConcurrency(ctx, host, 300*time.Millisecond)
	assert.Nil(t, second)
	assert.GreaterOrEqual(t, time.Since(start), 250*time.Millisecond)

	release()
	third := l.AcquireConcurrency(ctx, host, time.Second)
	require.NotNil(t, third, "slot must be reusable after release")
	third()
}

func TestAcquireConcurrencyBlocksUntilRelease(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	host := "programmers.co.kr" // maxConcurrent 1
	ctx := context.Background()

	first := l.AcquireConcurrency(ctx, host, time.Second)
	require.NotNil(t, first)

	acquired := make(chan struct{})
	go func() {
		release := l.AcquireConcurrency(ctx, host, 5*time.Second)
		if release != nil {
			release()
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire resolved while the slot was held")
	case <-time.After(250 * time.Millisecond):
	}

	first()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("second acquire did not resolve after release")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	ctx := context.Background()

	release := l.AcquireConcurrency(ctx, "catch.co.kr", time.Second)
	require.NotNil(t, release)
	release()
	release() // second call must be a no-op

	again := l.AcquireConcurrency(ctx, "catch.co.kr", time.Second)
	require.NotNil(t, again)
	again()
}

func TestSweepForceReleasesStaleSlots(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	ctx := context.Background()
	host := "rocketpunch.com"

	release := l.AcquireConcurrency(ctx, host, time.Second)
	require.NotNil(t, release)

	clk.Advance(6 * time.Minute)
	l.Sweep()

	recovered := l.AcquireConcurrency(ctx, host, time.Second)
	require.NotNil(t, recovered, "sweep must reclaim a slot held over five minutes")

	// The stale closure must not free the slot out from under the new
	// holder.
	release()
	blocked := l.AcquireConcurrency(ctx, host, 200*time.Millisecond)
	assert.Nil(t, blocked)
	recovered()
}

func TestSweepPrunesLedgers(t *testing.T) {
	t.Parallel()

	clk := newFakeClock()
	l := New(clk, zap.NewNop())
	host := "jobkorea.co.kr"

	l.RecordRequest(host)
	clk.Advance(2 * time.Hour)
	l.Sweep()

	l.mu.Lock()
	_, exists := l.ledgers[NormalizeHostname(host)]
	l.mu.Unlock()
	assert.False(t, exists, "empty ledgers are dropped by the sweep")
}

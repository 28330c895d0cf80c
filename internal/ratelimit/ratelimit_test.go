package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	clocktesting "k8s.io/utils/clock/testing"
)

func newLimiter(threshold int, window time.Duration) (*Limiter, *clocktesting.FakePassiveClock) {
	clk := clocktesting.NewFakePassiveClock(time.Unix(1_700_000_000, 0))
	return New(threshold, window, WithClock(clk)), clk
}

func TestCheckOverflow_AboveThreshold(t *testing.T) {
	t.Parallel()
	l, _ := newLimiter(5, 5*time.Second)

	for i := 0; i < 5; i++ {
		l.RecordRequest()
		assert.False(t, l.CheckOverflow(), "request %d", i+1)
	}

	l.RecordRequest()
	assert.True(t, l.CheckOverflow(), "sixth request overflows")
}

func TestCheckOverflow_WindowReset(t *testing.T) {
	t.Parallel()
	l, clk := newLimiter(5, 5*time.Second)

	for i := 0; i < 6; i++ {
		l.RecordRequest()
	}
	assert.True(t, l.CheckOverflow())

	clk.SetTime(clk.Now().Add(5*time.Second + time.Millisecond))
	assert.False(t, l.CheckOverflow(), "expired window resets without explicit call")
	assert.Equal(t, 0, l.Count())
}

func TestCheckOverflow_WindowBoundaryNotExpired(t *testing.T) {
	t.Parallel()
	l, clk := newLimiter(1, 5*time.Second)

	l.RecordRequest()
	l.RecordRequest()
	clk.SetTime(clk.Now().Add(5 * time.Second))
	assert.True(t, l.CheckOverflow(), "elapsed equal to window keeps counting")
}

func TestCheckOverflow_Rollover(t *testing.T) {
	t.Parallel()
	clk := clocktesting.NewFakePassiveClock(time.Unix(1_700_000_000, 0))
	l := New(1, time.Minute, WithClock(clk), WithRolloverThreshold(time.Hour))

	l.RecordRequest()
	l.RecordRequest()

	clk.SetTime(clk.Now().Add(-30 * time.Minute))
	assert.True(t, l.CheckOverflow(), "small backwards jump is tolerated")

	clk.SetTime(clk.Now().Add(-2 * time.Hour))
	assert.False(t, l.CheckOverflow(), "jump beyond rollover threshold resets")
}

func TestAllow(t *testing.T) {
	t.Parallel()
	l, clk := newLimiter(2, time.Second)

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	clk.SetTime(clk.Now().Add(2 * time.Second))
	assert.True(t, l.Allow(), "new window admits again")
}

func TestNew_Defaults(t *testing.T) {
	t.Parallel()
	l := New(0, 0)

	assert.Equal(t, DefaultThreshold, l.threshold)
	assert.Equal(t, DefaultWindow, l.window)
	assert.Equal(t, DefaultRolloverThreshold, l.rollover)
}

func TestSetLimits(t *testing.T) {
	t.Parallel()
	l, clk := newLimiter(1, 5*time.Second)

	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	l.SetLimits(3, 5*time.Second)
	assert.Equal(t, 2, l.Count(), "count carries over")
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	l.SetLimits(3, 10*time.Second)
	clk.SetTime(clk.Now().Add(6 * time.Second))
	assert.False(t, l.Allow(), "widened window has not expired")

	l.SetLimits(0, 0)
	assert.Equal(t, DefaultThreshold, l.threshold)
	assert.Equal(t, DefaultWindow, l.window)
}

func TestLimiter_Concurrent(t *testing.T) {
	t.Parallel()
	l, _ := newLimiter(1000, time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				l.Allow()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 500, l.Count())
}

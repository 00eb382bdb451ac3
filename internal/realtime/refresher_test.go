package realtime

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefresherCoalescesBursts(t *testing.T) {
	var fires atomic.Int32
	var firstFire atomic.Int64

	refresher := NewRefresher(60*time.Millisecond, func(context.Context) {
		if fires.Add(1) == 1 {
			firstFire.Store(time.Now().UnixNano())
		}
	}, nil)
	defer refresher.Close()

	start := time.Now()
	for i := 0; i < 10; i++ {
		refresher.MarkDirty()
		time.Sleep(5 * time.Millisecond)
	}

	require.Eventually(t, func() bool { return fires.Load() > 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(120 * time.Millisecond)

	assert.Equal(t, int32(1), fires.Load(), "a burst triggers exactly one refresh")

	elapsed := time.Duration(firstFire.Load() - start.UnixNano())
	lastMark := 10 * 5 * time.Millisecond
	assert.GreaterOrEqual(t, elapsed, lastMark, "the refresh never fires before the burst has settled")
}

func TestRefresherFiresAgainAfterQuietPeriod(t *testing.T) {
	var fires atomic.Int32
	refresher := NewRefresher(20*time.Millisecond, func(context.Context) {
		fires.Add(1)
	}, nil)
	defer refresher.Close()

	refresher.MarkDirty()
	require.Eventually(t, func() bool { return fires.Load() == 1 }, time.Second, 5*time.Millisecond)

	refresher.MarkDirty()
	require.Eventually(t, func() bool { return fires.Load() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRefresherCloseCancelsPending(t *testing.T) {
	var fires atomic.Int32
	refresher := NewRefresher(30*time.Millisecond, func(context.Context) {
		fires.Add(1)
	}, nil)

	refresher.MarkDirty()
	refresher.Close()

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fires.Load())

	refresher.MarkDirty()
	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, fires.Load(), "a closed refresher rejects new signals")
}

func TestRefresherDefaultsQuietPeriod(t *testing.T) {
	refresher := NewRefresher(0, func(context.Context) {}, nil)
	defer refresher.Close()
	assert.Equal(t, 2*time.Second, refresher.quiet)
}

package migrationgate_test

import (
	"sync"
	"testing"
	"time"

	"github.com/joeycumines/go-dispatchqueue/migrationgate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_panicsOnNonPositiveInterval(t *testing.T) {
	assert.Panics(t, func() { migrationgate.New(0) })
	assert.Panics(t, func() { migrationgate.New(-time.Second) })
}

func TestGate_recentlyTouchedAbsentIsFalse(t *testing.T) {
	g := migrationgate.New(time.Minute)
	assert.False(t, g.RecentlyTouched(`hostA`, 1_000))
}

func TestGate_markThenRecentlyTouched(t *testing.T) {
	g := migrationgate.New(240_000 * time.Millisecond)

	g.Mark(`S`, 0)

	assert.True(t, g.RecentlyTouched(`S`, 100_000))
	assert.True(t, g.RecentlyTouched(`S`, 240_000))
	assert.False(t, g.RecentlyTouched(`S`, 240_001))
}

func TestGate_markPairTouchesBothEndpoints(t *testing.T) {
	g := migrationgate.New(time.Minute)

	g.MarkPair(`S`, `T`, 1_000)

	assert.True(t, g.RecentlyTouched(`S`, 1_500))
	assert.True(t, g.RecentlyTouched(`T`, 1_500))
}

func TestGate_doubleMarkIsEquivalentToLaterTimestamp(t *testing.T) {
	g := migrationgate.New(time.Minute)

	g.MarkPair(`S`, `T`, 0)
	g.MarkPair(`S`, `T`, 30_000)

	// single later call would also be touched at 89_999 but not 90_001
	assert.True(t, g.RecentlyTouched(`S`, 89_999))
	assert.False(t, g.RecentlyTouched(`S`, 90_001))
}

func TestGate_sweepRemovesExpiredEntriesOnly(t *testing.T) {
	g := migrationgate.New(time.Minute)

	g.Mark(`old`, 0)
	g.Mark(`fresh`, 50_000)

	g.Sweep(70_000)

	assert.False(t, g.RecentlyTouched(`old`, 70_000))
	assert.True(t, g.RecentlyTouched(`fresh`, 70_000))
}

func TestGate_concurrentMarkAndCheck(t *testing.T) {
	g := migrationgate.New(time.Second)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			g.Mark(`h`, int64(i))
		}(i)
		go func() {
			defer wg.Done()
			g.RecentlyTouched(`h`, 1_000)
		}()
	}
	wg.Wait()

	require.NotPanics(t, func() { g.RecentlyTouched(`h`, 1_000) })
}

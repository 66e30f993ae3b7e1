package cooldown

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClock is a settable clock shared by a test and its ledger.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestAllowAdmitsFirstInvocation(t *testing.T) {
	l := NewLedger()
	assert.True(t, l.Allow("u1:course", DefaultWindow))
}

func TestAllowRejectsWithinWindow(t *testing.T) {
	clock := newTestClock()
	l := newLedgerAt(clock.Now)

	require.True(t, l.Allow("k", 30*time.Second))

	clock.Advance(29 * time.Second)
	assert.False(t, l.Allow("k", 30*time.Second))
}

func TestAllowAdmitsAfterWindow(t *testing.T) {
	clock := newTestClock()
	l := newLedgerAt(clock.Now)

	require.True(t, l.Allow("k", 30*time.Second))

	clock.Advance(30 * time.Second)
	assert.True(t, l.Allow("k", 30*time.Second))

	// The successful re-admission restarts the window.
	clock.Advance(time.Second)
	assert.False(t, l.Allow("k", 30*time.Second))
}

func TestAllowKeysAreIndependent(t *testing.T) {
	clock := newTestClock()
	l := newLedgerAt(clock.Now)

	require.True(t, l.Allow("u1:course:300", 30*time.Second))
	assert.True(t, l.Allow("u1:course:400", 30*time.Second))
	assert.True(t, l.Allow("u2:course:300", 30*time.Second))
	assert.False(t, l.Allow("u1:course:300", 30*time.Second))
}

func TestAllowConcurrentSameKeyAdmitsOne(t *testing.T) {
	clock := newTestClock()
	l := newLedgerAt(clock.Now)

	const workers = 64
	var admitted int64
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if l.Allow("shared", 30*time.Second) {
				atomic.AddInt64(&admitted, 1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int64(1), admitted)
}

func TestSweepReclaimsExpiredEntries(t *testing.T) {
	clock := newTestClock()
	l := newLedgerAt(clock.Now)

	require.True(t, l.Allow("old", 30*time.Second))
	clock.Advance(31 * time.Second)
	require.True(t, l.Allow("fresh", 30*time.Second))

	l.Sweep()
	assert.Equal(t, 1, l.Size())

	// The surviving entry still throttles.
	assert.False(t, l.Allow("fresh", 30*time.Second))
}

func TestSweepKeepsEntriesInsideWindow(t *testing.T) {
	clock := newTestClock()
	l := newLedgerAt(clock.Now)

	require.True(t, l.Allow("k", 30*time.Second))
	clock.Advance(10 * time.Second)

	l.Sweep()
	assert.Equal(t, 1, l.Size())
}

func TestSweepEmptyLedger(t *testing.T) {
	l := NewLedger()
	l.Sweep()
	assert.Zero(t, l.Size())
}

package update

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingChecker struct {
	modes []Mode
}

func (r *recordingChecker) Check(_ context.Context, mode Mode) Outcome {
	r.modes = append(r.modes, mode)
	return OutcomeUpToDate
}

// fakeClock drives the scheduler: each sleep advances time by the poll
// interval, and the loop ends after wakes sleeps.
type fakeClock struct {
	now   time.Time
	wakes int
	slept []time.Duration
}

func (c *fakeClock) sleep(_ context.Context, d time.Duration) bool {
	if len(c.slept) == c.wakes {
		return false
	}
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return true
}

func newTestScheduler(t *testing.T, dataDir string, wakes int) (*Scheduler, *recordingChecker, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: testNow, wakes: wakes}
	th := NewThrottle(dataDir, DefaultCheckInterval, nil)
	th.now = func() time.Time { return clock.now }

	checker := &recordingChecker{}
	s := NewScheduler(th, checker, 0, nil)
	s.sleep = clock.sleep
	return s, checker, clock
}

func TestScheduler_ChecksOnLaunchAndEvery24Hours(t *testing.T) {
	// 48 hourly wakes after launch: checks due at hours 24 and 48.
	s, checker, clock := newTestScheduler(t, t.TempDir(), 48)

	s.Run(context.Background())

	assert.Len(t, clock.slept, 48)
	for _, d := range clock.slept {
		assert.Equal(t, DefaultPollInterval, d)
	}
	assert.Equal(t, []Mode{Silent, Silent, Silent}, checker.modes)

	last, err := s.throttle.Last()
	require.NoError(t, err)
	assert.True(t, last.Equal(clock.now))
}

func TestScheduler_NotDueBeforeInterval(t *testing.T) {
	s, checker, _ := newTestScheduler(t, t.TempDir(), 23)

	s.Run(context.Background())

	assert.Len(t, checker.modes, 1, "only the launch check")
}

func TestScheduler_LaunchCheckIgnoresThrottle(t *testing.T) {
	dir := t.TempDir()
	s, checker, _ := newTestScheduler(t, dir, 0)
	require.NoError(t, s.throttle.Save())

	s.Run(context.Background())

	assert.Len(t, checker.modes, 1)
}

func TestScheduler_UnparseableTimestampFailsOpen(t *testing.T) {
	s, checker, clock := newTestScheduler(t, t.TempDir(), 1)

	// Corrupt the file between launch and the first wake.
	s.sleep = func(ctx context.Context, d time.Duration) bool {
		if !clock.sleep(ctx, d) {
			return false
		}
		writeTimestamp(t, s.throttle, "corrupt")
		return true
	}

	s.Run(context.Background())

	assert.Len(t, checker.modes, 2)
	last, err := s.throttle.Last()
	require.NoError(t, err)
	assert.Equal(t, strconv.FormatInt(clock.now.Unix(), 10), strconv.FormatInt(last.Unix(), 10))
}

func TestScheduler_NoDataDirChecksEveryPoll(t *testing.T) {
	s, checker, _ := newTestScheduler(t, "", 3)

	s.Run(context.Background())

	assert.Len(t, checker.modes, 4)
}

func TestScheduler_StopsWithContext(t *testing.T) {
	th := NewThrottle(t.TempDir(), DefaultCheckInterval, nil)
	checker := &recordingChecker{}
	s := NewScheduler(th, checker, time.Hour, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

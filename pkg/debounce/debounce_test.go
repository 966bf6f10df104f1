package debounce

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleCoalescesBurst(t *testing.T) {
	t.Parallel()

	d := New(30 * time.Millisecond)
	var calls atomic.Int32
	var last atomic.Int32

	for i := 1; i <= 5; i++ {
		i := i
		d.Schedule(func() {
			calls.Add(1)
			last.Store(int32(i))
		})
		time.Sleep(5 * time.Millisecond)
	}

	waitFor(t, func() bool { return calls.Load() == 1 })
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Fatalf("expected exactly one call, got %d", got)
	}
	if got := last.Load(); got != 5 {
		t.Fatalf("expected the last scheduled call to win, got %d", got)
	}
}

func TestCancelDropsPendingCall(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)
	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	if !d.Pending() {
		t.Fatal("expected pending call")
	}
	d.Cancel()
	if d.Pending() {
		t.Fatal("expected no pending call after cancel")
	}

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected cancelled call not to run, got %d", got)
	}
}

func TestFlushRunsImmediately(t *testing.T) {
	t.Parallel()

	d := New(time.Hour)
	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })

	if !d.Flush() {
		t.Fatal("expected flush to run pending call")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected one call, got %d", got)
	}
	if d.Flush() {
		t.Fatal("second flush should find nothing pending")
	}
}

func TestCallsDoNotOverlap(t *testing.T) {
	t.Parallel()

	d := New(time.Millisecond)
	var active atomic.Int32
	var overlapped atomic.Bool
	var wg sync.WaitGroup
	wg.Add(2)

	slow := func() {
		defer wg.Done()
		if active.Add(1) > 1 {
			overlapped.Store(true)
		}
		time.Sleep(30 * time.Millisecond)
		active.Add(-1)
	}

	d.Schedule(slow)
	time.Sleep(10 * time.Millisecond)
	d.Schedule(slow)
	wg.Wait()

	if overlapped.Load() {
		t.Fatal("expected debounced calls to run one at a time")
	}
}

func TestCancelAndWaitBlocksOnRunningCall(t *testing.T) {
	t.Parallel()

	d := New(time.Millisecond)
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	d.Schedule(func() {
		close(started)
		<-release
		finished.Store(true)
	})
	<-started

	returned := make(chan struct{})
	go func() {
		d.CancelAndWait()
		close(returned)
	}()

	select {
	case <-returned:
		t.Fatal("expected CancelAndWait to block while the call runs")
	case <-time.After(30 * time.Millisecond):
	}
	close(release)
	<-returned
	if !finished.Load() {
		t.Fatal("expected the running call to finish before CancelAndWait returned")
	}
}

func TestCancelAndWaitDropsPendingCall(t *testing.T) {
	t.Parallel()

	d := New(20 * time.Millisecond)
	var calls atomic.Int32
	d.Schedule(func() { calls.Add(1) })
	d.CancelAndWait()

	time.Sleep(50 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("expected cancelled call not to run, got %d", got)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

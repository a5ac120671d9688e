package focus

import (
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

type fakeScheduler struct {
	fn        func()
	scheduled int
	cancelled int
}

func (s *fakeScheduler) Every(d time.Duration, fn func()) func() {
	if d != time.Second {
		panic("unexpected tick interval")
	}
	s.fn = fn
	s.scheduled++
	return func() {
		s.cancelled++
		s.fn = nil
	}
}

// advance delivers n ticks while a schedule is active.
func (s *fakeScheduler) advance(n int) int {
	delivered := 0
	for i := 0; i < n && s.fn != nil; i++ {
		s.fn()
		delivered++
	}
	return delivered
}

type fakeNotifier struct {
	allowed bool
	sent    []string
}

func (n *fakeNotifier) Permitted() bool { return n.allowed }

func (n *fakeNotifier) Notify(title, body string) error {
	n.sent = append(n.sent, title+": "+body)
	return nil
}

func newTestTimer(t *testing.T, opts ...Option) (*Timer, *fakeScheduler) {
	t.Helper()
	scheduler := &fakeScheduler{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	base := []Option{WithScheduler(scheduler), WithLogger(logger)}
	return New(append(base, opts...)...), scheduler
}

func TestInitialState(t *testing.T) {
	timer, _ := newTestTimer(t)
	state := timer.State()
	if state.Phase != PhaseFocus || state.Running || state.Remaining != 1500*time.Second {
		t.Fatalf("unexpected initial state %+v", state)
	}
}

func TestFullFocusSessionSwitchesToBreak(t *testing.T) {
	notifier := &fakeNotifier{allowed: true}
	timer, scheduler := newTestTimer(t, WithNotifier(notifier))

	timer.Toggle()
	if delivered := scheduler.advance(1500); delivered != 1500 {
		t.Fatalf("expected 1500 ticks, got %d", delivered)
	}

	state := timer.State()
	if state.Phase != PhaseBreak {
		t.Fatalf("expected break phase, got %s", state.Phase)
	}
	if state.Remaining != 300*time.Second {
		t.Fatalf("expected 300s remaining, got %v", state.Remaining)
	}
	if state.Running {
		t.Fatalf("expected timer to be paused")
	}
	if state.Completed != 1 {
		t.Fatalf("expected 1 completed session, got %d", state.Completed)
	}
	if len(notifier.sent) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(notifier.sent))
	}
	if scheduler.fn != nil {
		t.Fatalf("expected ticks to be cancelled at phase end")
	}
}

func TestNotificationRequiresPermission(t *testing.T) {
	notifier := &fakeNotifier{allowed: false}
	timer, scheduler := newTestTimer(t, WithNotifier(notifier), WithDurations(3*time.Second, 2*time.Second))

	timer.Toggle()
	scheduler.advance(3)
	if timer.State().Phase != PhaseBreak {
		t.Fatalf("expected break phase")
	}
	if len(notifier.sent) != 0 {
		t.Fatalf("expected no notification without permission")
	}
}

func TestBreakEndReturnsToFocusWithoutCounting(t *testing.T) {
	timer, scheduler := newTestTimer(t, WithDurations(2*time.Second, 2*time.Second))

	timer.Toggle()
	scheduler.advance(2)
	timer.Toggle()
	scheduler.advance(2)

	state := timer.State()
	if state.Phase != PhaseFocus || state.Running || state.Remaining != 2*time.Second {
		t.Fatalf("unexpected state after break %+v", state)
	}
	if state.Completed != 1 {
		t.Fatalf("expected counter to stay 1, got %d", state.Completed)
	}
}

func TestToggleOnlyFlipsRunning(t *testing.T) {
	timer, scheduler := newTestTimer(t)

	timer.Toggle()
	scheduler.advance(10)
	timer.Toggle()

	state := timer.State()
	if state.Running || state.Remaining != 1490*time.Second || state.Phase != PhaseFocus {
		t.Fatalf("unexpected state %+v", state)
	}
	if scheduler.fn != nil || scheduler.cancelled == 0 {
		t.Fatalf("expected ticks to be cancelled on pause")
	}

	timer.Tick()
	if timer.State().Remaining != 1490*time.Second {
		t.Fatalf("expected paused timer to ignore ticks")
	}
}

func TestResetKeepsPhaseAndCounter(t *testing.T) {
	timer, scheduler := newTestTimer(t, WithDurations(2*time.Second, 5*time.Second))

	timer.Toggle()
	scheduler.advance(2)
	timer.Toggle()
	scheduler.advance(3)
	timer.Reset()

	state := timer.State()
	if state.Phase != PhaseBreak || state.Remaining != 5*time.Second || state.Running || state.Completed != 1 {
		t.Fatalf("unexpected state after reset %+v", state)
	}
}

func TestSkipBreak(t *testing.T) {
	timer, scheduler := newTestTimer(t)

	if err := timer.SkipBreak(); !errors.Is(err, ErrNotOnBreak) {
		t.Fatalf("expected ErrNotOnBreak, got %v", err)
	}

	timer.Toggle()
	scheduler.advance(1500)
	timer.Toggle()
	scheduler.advance(42)

	if err := timer.SkipBreak(); err != nil {
		t.Fatalf("skip break: %v", err)
	}
	state := timer.State()
	if state.Phase != PhaseFocus || state.Remaining != 1500*time.Second || state.Running {
		t.Fatalf("unexpected state after skip %+v", state)
	}
}

func TestCloseResetsButKeepsCounter(t *testing.T) {
	timer, scheduler := newTestTimer(t, WithDurations(2*time.Second, 5*time.Second))
	timer.Attach("7")

	timer.Toggle()
	scheduler.advance(2)
	timer.Toggle()
	timer.Close()

	state := timer.State()
	if state.Phase != PhaseFocus || state.Remaining != 2*time.Second || state.Running {
		t.Fatalf("unexpected state after close %+v", state)
	}
	if state.Completed != 1 {
		t.Fatalf("expected counter to survive close, got %d", state.Completed)
	}
	if state.TaskID != "" {
		t.Fatalf("expected task to be detached, got %q", state.TaskID)
	}
	if scheduler.fn != nil {
		t.Fatalf("expected no ticks after close")
	}
}

func TestCompleteTask(t *testing.T) {
	var completed string
	timer, scheduler := newTestTimer(t, WithCompleteTask(func(taskID string) error {
		completed = taskID
		return nil
	}))

	if err := timer.CompleteTask(); !errors.Is(err, ErrNoTask) {
		t.Fatalf("expected ErrNoTask, got %v", err)
	}

	timer.Attach("12")
	timer.Toggle()
	scheduler.advance(5)
	if err := timer.CompleteTask(); err != nil {
		t.Fatalf("complete task: %v", err)
	}
	if completed != "12" {
		t.Fatalf("expected callback for 12, got %q", completed)
	}
	state := timer.State()
	if state.Running || state.Remaining != 1500*time.Second || state.TaskID != "" {
		t.Fatalf("expected close after completion, got %+v", state)
	}
}

func TestCompleteTaskOnlyDuringFocus(t *testing.T) {
	timer, scheduler := newTestTimer(t, WithDurations(time.Second, time.Minute))
	timer.Attach("3")
	timer.Toggle()
	scheduler.advance(1)

	if err := timer.CompleteTask(); !errors.Is(err, ErrNotFocusing) {
		t.Fatalf("expected ErrNotFocusing, got %v", err)
	}
}

func TestStaleScheduledTickIsIgnored(t *testing.T) {
	timer, scheduler := newTestTimer(t)

	timer.Toggle()
	stale := scheduler.fn
	timer.Toggle()
	stale()

	if timer.State().Remaining != 1500*time.Second {
		t.Fatalf("expected stale tick to be ignored, got %v", timer.State().Remaining)
	}
}

func TestStopPreventsFurtherTicks(t *testing.T) {
	timer, scheduler := newTestTimer(t)
	timer.Toggle()
	timer.Stop()
	timer.Toggle()

	if scheduler.fn != nil {
		t.Fatalf("expected no active schedule after stop")
	}
	if timer.State().Running {
		t.Fatalf("expected stopped timer to stay paused")
	}
}

func TestOnChangeObservesUpdates(t *testing.T) {
	var changes atomic.Int32
	timer, scheduler := newTestTimer(t, WithOnChange(func(State) { changes.Add(1) }))
	timer.Toggle()
	scheduler.advance(3)

	if got := changes.Load(); got != 4 {
		t.Fatalf("expected 4 change notifications, got %d", got)
	}
}

func TestProgressAndFormat(t *testing.T) {
	timer, scheduler := newTestTimer(t)
	timer.Toggle()
	scheduler.advance(750)

	if progress := timer.Progress(); progress != 0.5 {
		t.Fatalf("expected progress 0.5, got %v", progress)
	}
	if got := FormatRemaining(timer.State().Remaining); got != "12:30" {
		t.Fatalf("expected 12:30, got %s", got)
	}
	if got := FormatRemaining(0); got != "00:00" {
		t.Fatalf("expected 00:00, got %s", got)
	}
}

func TestRealSchedulerCancelStopsTicks(t *testing.T) {
	ticks := make(chan struct{}, 16)
	cancel := RealScheduler{}.Every(5*time.Millisecond, func() { ticks <- struct{}{} })

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatalf("expected at least one tick")
	}
	cancel()
	cancel()
}

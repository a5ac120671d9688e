// Package focus implements the pomodoro focus/break countdown.
package focus

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	FocusDuration = 25 * time.Minute
	BreakDuration = 5 * time.Minute
	tickInterval  = time.Second
)

var (
	ErrNotOnBreak  = errors.New("not on break")
	ErrNoTask      = errors.New("no task attached")
	ErrNotFocusing = errors.New("not in focus phase")
)

type Phase string

const (
	PhaseFocus Phase = "focus"
	PhaseBreak Phase = "break"
)

type State struct {
	Phase     Phase
	Remaining time.Duration
	Running   bool
	// Completed counts finished focus sessions for the lifetime of the Timer.
	Completed int
	TaskID    string
}

// Scheduler delivers fn every d until the returned cancel func is called.
type Scheduler interface {
	Every(d time.Duration, fn func()) (cancel func())
}

type Notifier interface {
	Permitted() bool
	Notify(title, body string) error
}

type Timer struct {
	mu           sync.Mutex
	state        State
	focus        time.Duration
	brk          time.Duration
	scheduler    Scheduler
	notifier     Notifier
	onChange     func(State)
	completeTask func(taskID string) error
	logger       *slog.Logger
	cancel       func()
	generation   uint64
	stopped      bool
}

type Option func(*Timer)

func WithScheduler(scheduler Scheduler) Option {
	return func(t *Timer) { t.scheduler = scheduler }
}

func WithNotifier(notifier Notifier) Option {
	return func(t *Timer) { t.notifier = notifier }
}

// WithOnChange registers fn to observe every state change. fn runs without the timer lock held.
func WithOnChange(fn func(State)) Option {
	return func(t *Timer) { t.onChange = fn }
}

func WithCompleteTask(fn func(taskID string) error) Option {
	return func(t *Timer) { t.completeTask = fn }
}

func WithDurations(focus, brk time.Duration) Option {
	return func(t *Timer) {
		if focus > 0 {
			t.focus = focus
		}
		if brk > 0 {
			t.brk = brk
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(t *Timer) {
		if logger != nil {
			t.logger = logger
		}
	}
}

func New(opts ...Option) *Timer {
	t := &Timer{
		focus:     FocusDuration,
		brk:       BreakDuration,
		scheduler: RealScheduler{},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.state = State{Phase: PhaseFocus, Remaining: t.focus}
	return t
}

func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Toggle starts or pauses the countdown without touching phase or remaining time.
func (t *Timer) Toggle() {
	t.update(func() {
		if t.stopped {
			return
		}
		t.state.Running = !t.state.Running
		if t.state.Running {
			t.scheduleLocked()
		} else {
			t.cancelLocked()
		}
	})
}

// Tick advances the countdown by one second. It is a no-op while paused.
func (t *Timer) Tick() {
	t.tick(0, false)
}

func (t *Timer) tick(generation uint64, scheduled bool) {
	var notify bool
	t.update(func() {
		if scheduled && generation != t.generation {
			return
		}
		if !t.state.Running || t.stopped {
			return
		}
		t.state.Remaining -= tickInterval
		if t.state.Remaining > 0 {
			return
		}
		t.cancelLocked()
		t.state.Running = false
		if t.state.Phase == PhaseFocus {
			t.state.Completed++
			t.state.Phase = PhaseBreak
			t.state.Remaining = t.brk
			notify = true
			t.logger.Info("focus session complete", slog.Int("completed", t.state.Completed))
			return
		}
		t.state.Phase = PhaseFocus
		t.state.Remaining = t.focus
	})
	if notify {
		t.notify()
	}
}

// Reset restores the current phase's full duration and pauses.
func (t *Timer) Reset() {
	t.update(func() {
		t.cancelLocked()
		t.state.Running = false
		t.state.Remaining = t.durationOf(t.state.Phase)
	})
}

func (t *Timer) SkipBreak() error {
	var err error
	t.update(func() {
		if t.state.Phase != PhaseBreak {
			err = ErrNotOnBreak
			return
		}
		t.cancelLocked()
		t.state.Phase = PhaseFocus
		t.state.Remaining = t.focus
		t.state.Running = false
	})
	return err
}

// Close pauses, returns to a fresh focus phase and detaches the task. The
// completed counter is kept.
func (t *Timer) Close() {
	t.update(func() {
		t.cancelLocked()
		t.state.Running = false
		t.state.Phase = PhaseFocus
		t.state.Remaining = t.focus
		t.state.TaskID = ""
	})
}

func (t *Timer) Attach(taskID string) {
	t.update(func() {
		t.state.TaskID = taskID
	})
}

// CompleteTask runs the completion callback for the attached task and closes the timer.
func (t *Timer) CompleteTask() error {
	t.mu.Lock()
	taskID := t.state.TaskID
	phase := t.state.Phase
	t.mu.Unlock()

	if taskID == "" {
		return ErrNoTask
	}
	if phase != PhaseFocus {
		return ErrNotFocusing
	}

	var err error
	if t.completeTask != nil {
		if cbErr := t.completeTask(taskID); cbErr != nil {
			err = fmt.Errorf("complete task %s: %w", taskID, cbErr)
		}
	}
	t.Close()
	return err
}

// Stop cancels scheduling for good. Later calls to Toggle and Tick do nothing.
func (t *Timer) Stop() {
	t.update(func() {
		t.cancelLocked()
		t.state.Running = false
		t.stopped = true
	})
}

// Progress reports the elapsed share of the current phase in [0, 1].
func (t *Timer) Progress() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	total := t.durationOf(t.state.Phase)
	if total <= 0 {
		return 0
	}
	return float64(total-t.state.Remaining) / float64(total)
}

// FormatRemaining renders d as MM:SS.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func (t *Timer) durationOf(phase Phase) time.Duration {
	if phase == PhaseBreak {
		return t.brk
	}
	return t.focus
}

// update runs fn under the lock and reports the resulting state to onChange.
func (t *Timer) update(fn func()) {
	t.mu.Lock()
	fn()
	state := t.state
	onChange := t.onChange
	t.mu.Unlock()

	if onChange != nil {
		onChange(state)
	}
}

func (t *Timer) scheduleLocked() {
	t.cancelLocked()
	t.generation++
	generation := t.generation
	t.cancel = t.scheduler.Every(tickInterval, func() {
		t.tick(generation, true)
	})
}

func (t *Timer) cancelLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.generation++
}

func (t *Timer) notify() {
	if t.notifier == nil || !t.notifier.Permitted() {
		return
	}
	body := fmt.Sprintf("Time for a %d-minute break.", int(t.brk/time.Minute))
	if err := t.notifier.Notify("Focus session complete!", body); err != nil {
		t.logger.Warn("notify failed", slog.Any("err", err))
	}
}

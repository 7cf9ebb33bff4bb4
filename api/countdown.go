package countdown

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// ------------------- State -------------------

// State is where a Timer is in its lifecycle. Finished is terminal.
type State int

const (
	Paused State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// ------------------- Timer -------------------

// Config describes a countdown. Only StartTime is required.
type Config struct {
	// StartTime is the countdown length in seconds.
	StartTime float64
	// OnFinish is called once when the timer enters Finished.
	OnFinish func()

	Out    io.Writer       // defaults to os.Stdout
	Clock  clockwork.Clock // defaults to the real clock
	Logger *zerolog.Logger // defaults to a no-op logger
}

// Timer counts down from a start time, redrawing its remaining time on a
// single output line until it reaches zero.
type Timer struct {
	mu sync.Mutex

	id          uuid.UUID
	startTime   float64
	currentTime float64
	state       State
	onFinish    func()

	// pending is the only outstanding wakeup. gen is bumped whenever it is
	// replaced or cancelled so a callback that already fired can tell it is stale.
	pending clockwork.Timer
	gen     uint64

	clock   clockwork.Clock
	display *Display
	log     zerolog.Logger
}

// New returns a paused Timer. cfg.StartTime should be finite and
// non-negative; the display is only sized correctly for start times below a day.
func New(cfg Config) *Timer {
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	if cfg.OnFinish == nil {
		cfg.OnFinish = func() {}
	}

	id := uuid.New()
	logger := cfg.Logger.With().Str("timer_id", id.String()[:8]).Logger()

	return &Timer{
		id:          id,
		startTime:   cfg.StartTime,
		currentTime: cfg.StartTime,
		state:       Paused,
		onFinish:    cfg.OnFinish,
		clock:       cfg.Clock,
		display:     NewDisplay(cfg.Out, MaxDisplayWidth(cfg.StartTime), &logger),
		log:         logger,
	}
}

// Start begins or resumes the countdown. Only valid while Paused.
func (t *Timer) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Paused {
		return &StateError{Op: "start", State: t.state}
	}

	t.state = Running
	t.schedule(t.tick)

	t.log.Debug().Float64("remaining", t.currentTime).Msg("timer started")
	return nil
}

// Pause stops the countdown and cancels the pending wakeup. Only valid while Running.
func (t *Timer) Pause() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Running {
		return &StateError{Op: "pause", State: t.state}
	}

	t.state = Paused
	t.cancel()

	t.log.Debug().Float64("remaining", t.currentTime).Msg("timer paused")
	return nil
}

// Finish ends the countdown immediately and runs the finish callback.
// Valid while Paused or Running.
func (t *Timer) Finish() error {
	t.mu.Lock()
	if t.state == Finished {
		t.mu.Unlock()
		return &StateError{Op: "finish", State: Finished}
	}
	handler := t.finishLocked()
	t.mu.Unlock()

	handler()
	return nil
}

// State returns the current state.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Remaining returns the seconds left on the countdown.
func (t *Timer) Remaining() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.currentTime
}

// StartTime returns the seconds the countdown started from.
func (t *Timer) StartTime() float64 { return t.startTime }

// ID identifies the timer in log output.
func (t *Timer) ID() uuid.UUID { return t.id }

// Formatted returns the remaining time as the display would show it.
func (t *Timer) Formatted() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return FormatTime(t.currentTime, ExtraDecimals(t.currentTime))
}

// finishLocked moves to Finished and returns the callback to run once the
// lock is released.
func (t *Timer) finishLocked() func() {
	t.state = Finished
	t.currentTime = 0
	t.cancel()

	t.log.Debug().Msg("timer finished")
	return t.onFinish
}

// schedule arms the single pending wakeup. step runs with the lock held and
// may return a function to call after it is released.
func (t *Timer) schedule(step func() func()) {
	t.gen++
	gen := t.gen
	period := TickPeriod(t.currentTime)

	t.pending = t.clock.AfterFunc(period, func() {
		t.mu.Lock()
		if gen != t.gen || t.state != Running {
			t.mu.Unlock()
			t.log.Debug().Uint64("gen", gen).Msg("dropping stale wakeup")
			return
		}
		t.pending = nil
		after := step()
		t.mu.Unlock()

		if after != nil {
			after()
		}
	})

	t.log.Trace().Dur("period", period).Uint64("gen", gen).Msg("wakeup scheduled")
}

// cancel stops the pending wakeup, if any.
func (t *Timer) cancel() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
}

// tick records when it ran and schedules a second wakeup that subtracts the
// wall-clock time actually elapsed since then.
func (t *Timer) tick() func() {
	start := t.clock.Now()
	t.schedule(func() func() {
		return t.measure(start)
	})
	return nil
}

func (t *Timer) measure(start time.Time) func() {
	t.currentTime -= t.clock.Since(start).Seconds()

	if t.currentTime <= 0 {
		t.display.Terminate()
		return t.finishLocked()
	}

	t.display.Redraw(FormatTime(t.currentTime, ExtraDecimals(t.currentTime)))
	return t.tick()
}

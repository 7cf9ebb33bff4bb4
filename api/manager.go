package countdown

import (
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Manager owns a Timer and exposes its completion as a channel. It also
// accepts text commands, which is how the control pipe drives the timer.
type Manager struct {
	Timer *Timer

	doneCh   chan struct{}
	doneOnce sync.Once
	log      zerolog.Logger
}

// NewManager builds the Timer described by cfg. cfg.OnFinish, if set, runs
// before Done is closed.
func NewManager(cfg Config) *Manager {
	m := &Manager{
		doneCh: make(chan struct{}),
	}
	if cfg.Logger != nil {
		m.log = *cfg.Logger
	} else {
		m.log = zerolog.Nop()
	}

	// hook completion into the Timer
	handler := cfg.OnFinish
	cfg.OnFinish = func() {
		if handler != nil {
			handler()
		}
		m.doneOnce.Do(func() { close(m.doneCh) })
	}
	m.Timer = New(cfg)
	return m
}

// --- Control methods ---

func (m *Manager) Start() error  { return m.Timer.Start() }
func (m *Manager) Pause() error  { return m.Timer.Pause() }
func (m *Manager) Finish() error { return m.Timer.Finish() }

// Done is closed once the timer has finished and its callback has returned.
func (m *Manager) Done() <-chan struct{} {
	return m.doneCh
}

// Dispatch runs a single text command: start, pause, finish or status.
func (m *Manager) Dispatch(cmd string) error {
	switch strings.ToLower(strings.TrimSpace(cmd)) {
	case "start":
		return m.Start()
	case "pause":
		return m.Pause()
	case "finish":
		return m.Finish()
	case "status":
		m.log.Log().
			Str("state", m.Timer.State().String()).
			Str("remaining", m.Timer.Formatted()).
			Msg("timer status")
		return nil
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

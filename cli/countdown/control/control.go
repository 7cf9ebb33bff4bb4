//go:build unix

package control

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

// Pipe is a named pipe that accepts one command per line and hands each to
// a Dispatcher. Any process can drive the timer with
//
//	echo pause > /tmp/countdown.pipe.<pid>
type Pipe struct {
	path   string
	target Dispatcher
	log    zerolog.Logger

	// file is the read end while a writer is connected.
	fileMu sync.Mutex
	file   *os.File

	startOnce sync.Once
	stopOnce  sync.Once
	wg        sync.WaitGroup
	stopping  chan struct{}
}

// --- Pipe setup ---

// Open creates a FIFO unique to this process next to base. A relative base
// is placed under os.TempDir().
func Open(base string, target Dispatcher, logger *zerolog.Logger) (*Pipe, error) {
	abs := base
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(os.TempDir(), base)
	}

	path, err := mkfifoUnique(abs, 0o600)
	if err != nil {
		return nil, err
	}

	p := &Pipe{
		path:     path,
		target:   target,
		stopping: make(chan struct{}),
	}
	if logger != nil {
		p.log = logger.With().Str("pipe", path).Logger()
	} else {
		p.log = zerolog.Nop()
	}
	return p, nil
}

func mkfifoUnique(base string, mode os.FileMode) (string, error) {
	// PID keeps concurrent timers apart
	pid := os.Getpid()

	for i := 0; i < 1000; i++ {
		var path string
		if i == 0 {
			path = fmt.Sprintf("%s.%d", base, pid)
		} else {
			path = fmt.Sprintf("%s.%d.%d", base, pid, i)
		}

		err := syscall.Mkfifo(path, uint32(mode.Perm()))
		if err == nil {
			return path, nil
		}
		if errors.Is(err, os.ErrExist) {
			fi, statErr := os.Lstat(path)
			if statErr != nil {
				continue
			}
			// a leftover FIFO nobody is reading can be reused
			if fi.Mode()&os.ModeNamedPipe != 0 && !hasReader(path) {
				return path, nil
			}
			continue
		}
		return "", fmt.Errorf("mkfifo %q: %w", path, err)
	}
	return "", fmt.Errorf("unable to allocate unique FIFO for base %q after many attempts", base)
}

// hasReader reports whether some process has path open for reading. A
// non-blocking write open only succeeds in that case.
func hasReader(path string) bool {
	file, err := os.OpenFile(path, os.O_WRONLY|syscall.O_NONBLOCK, 0)
	if err != nil {
		return false
	}
	file.Close()
	return true
}

func (p *Pipe) Path() string { return p.path }

// Serve starts the command loop in the background. Calling it again is a no-op.
func (p *Pipe) Serve() {
	p.startOnce.Do(func() {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			p.handleCommands()
		}()
	})
}

// Close stops the command loop and removes the FIFO.
func (p *Pipe) Close() error {
	var err error
	p.stopOnce.Do(func() {
		p.log.Debug().Msg("closing control pipe")
		close(p.stopping)

		done := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(done)
		}()

		// the loop may be blocked opening the FIFO until a writer shows up,
		// or reading from a writer that never closes its end
	wait:
		for {
			hasReader(p.path)
			p.interruptRead()
			select {
			case <-done:
				break wait
			case <-time.After(50 * time.Millisecond):
			}
		}

		if rmErr := os.Remove(p.path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = fmt.Errorf("removing FIFO %q: %w", p.path, rmErr)
		}
	})
	return err
}

// interruptRead unblocks a read in progress on the FIFO.
func (p *Pipe) interruptRead() {
	p.fileMu.Lock()
	defer p.fileMu.Unlock()
	if p.file == nil {
		return
	}
	if err := p.file.SetReadDeadline(time.Now()); err != nil {
		_ = p.file.Close()
	}
}

func (p *Pipe) setFile(f *os.File) {
	p.fileMu.Lock()
	p.file = f
	p.fileMu.Unlock()
}

func (p *Pipe) isStopping() bool {
	select {
	case <-p.stopping:
		return true
	default:
		return false
	}
}

// --- Internal command loop ---

func (p *Pipe) handleCommands() {
	p.log.Debug().Msg("control pipe listening")
	defer p.log.Debug().Msg("control pipe stopped")

	for {
		if p.isStopping() {
			return
		}

		file, err := os.OpenFile(p.path, os.O_RDONLY, os.ModeNamedPipe)
		if err != nil {
			p.log.Warn().Err(err).Msg("open FIFO failed")
			select {
			case <-p.stopping:
				return
			case <-time.After(time.Second):
				continue
			}
		}

		p.setFile(file)
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			cmd := scanner.Text()
			if cmd == "" {
				continue
			}
			p.log.Debug().Str("command", cmd).Msg("received command")
			if err := p.target.Dispatch(cmd); err != nil {
				p.log.Warn().Err(err).Str("command", cmd).Msg("command rejected")
			}
		}
		if err := scanner.Err(); err != nil && !p.isStopping() {
			p.log.Warn().Err(err).Msg("reading FIFO failed")
		}
		p.setFile(nil)
		_ = file.Close()

		// avoid spinning when writers come and go quickly
		select {
		case <-p.stopping:
			return
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// Command countdown counts down from a start time on a single, live-updating
// terminal line and prints "Finished!" when it reaches zero.
//
// Usage:
//
//	countdown [flags] [start]
//
// start is a number of seconds ("185", "8.123") or a duration ("3m5s").
// It defaults to 185 seconds.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	countdown "github.com/d093w1z/countdown/api"
	"github.com/d093w1z/countdown/cli/countdown/config"
	"github.com/d093w1z/countdown/cli/countdown/control"
)

const exitInterrupted = 130

func main() {
	os.Exit(run())
}

// resolveConfig layers flags and the positional start time over the config
// file and environment.
func resolveConfig(args []string) (config.Config, error) {
	fs := flag.NewFlagSet("countdown", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to a YAML config file")
	controlPipe := fs.String("control", "", "create a control pipe at this base path (start, pause, finish, status)")
	verbose := fs.Bool("v", false, "enable debug logging")
	noColor := fs.Bool("no-color", false, "disable colored output")

	if err := fs.Parse(args); err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return config.Config{}, err
	}
	if *verbose {
		cfg.LogLevel = "debug"
	}
	if *controlPipe != "" {
		cfg.ControlPipe = *controlPipe
	}
	if *noColor {
		cfg.NoColor = true
	}

	if fs.NArg() > 0 {
		start, err := config.ParseStartTime(fs.Arg(0))
		if err != nil {
			return config.Config{}, fmt.Errorf("invalid start time: %w", err)
		}
		cfg.StartTime = start
	}
	return cfg, nil
}

func startMessage(seconds float64) string {
	return fmt.Sprintf("Starting timer is %s seconds.", strconv.FormatFloat(seconds, 'f', -1, 64))
}

// newManager builds the countdown that draws to out and announces the end there.
func newManager(cfg config.Config, out io.Writer, logger *zerolog.Logger) *countdown.Manager {
	finished := color.New(color.FgGreen, color.Bold)
	if cfg.NoColor {
		finished.DisableColor()
	}

	return countdown.NewManager(countdown.Config{
		StartTime: cfg.StartTime,
		OnFinish: func() {
			finished.Fprintln(out, "Finished!")
		},
		Out:    out,
		Logger: logger,
	})
}

func run() int {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := resolveConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		setupLogging(config.Default().LogLevel)
		log.Error().Err(err).Msg("failed to load configuration")
		return 1
	}

	setupLogging(cfg.LogLevel)
	if envErr != nil && !errors.Is(envErr, os.ErrNotExist) {
		log.Warn().Err(envErr).Msg("could not load .env file")
	}

	mgr := newManager(cfg, os.Stdout, &log.Logger)

	log.Debug().
		Str("timer_id", mgr.Timer.ID().String()).
		Float64("start_time", cfg.StartTime).
		Str("control_pipe", cfg.ControlPipe).
		Msg("starting countdown")

	if cfg.ControlPipe != "" {
		pipe, err := control.Open(cfg.ControlPipe, mgr, &log.Logger)
		if err != nil {
			log.Error().Err(err).Msg("failed to open control pipe")
			return 1
		}
		defer func() {
			if err := pipe.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close control pipe")
			}
		}()
		pipe.Serve()
		fmt.Fprintf(os.Stderr, "Control pipe: %s\n", pipe.Path())
	}

	fmt.Println(startMessage(cfg.StartTime))

	if err := mgr.Start(); err != nil {
		log.Error().Err(err).Msg("failed to start timer")
		return 1
	}

	sigc := make(chan os.Signal, 2)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigc)

	select {
	case <-mgr.Done():
		return 0
	case sig := <-sigc:
		// stop the pending wakeup before leaving the live line
		if err := mgr.Pause(); err != nil && !errors.Is(err, countdown.ErrInvalidState) {
			log.Warn().Err(err).Msg("failed to pause timer")
		}
		fmt.Println()
		log.Debug().Str("signal", sig.String()).Msg("interrupted")
		return exitInterrupted
	}
}

func setupLogging(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
		log.Warn().Str("level", level).Msg("unknown log level, using warn")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

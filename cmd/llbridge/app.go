package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"llbridge/internal/config"
	"llbridge/internal/llvm/datalayout"
	"llbridge/internal/observ"
	"llbridge/internal/session"
	"llbridge/internal/trace"
)

// appState is what every subcommand shares: the resolved config, the
// tracer built from it and the phase timer.
type appState struct {
	cfg     *config.Config
	tracer  trace.Tracer
	span    *trace.Span
	timer   *observ.Timer
	timings bool
	color   bool
}

var app appState

func setupApp(cmd *cobra.Command) error {
	flags := cmd.Root().PersistentFlags()

	colorMode, err := flags.GetString("color")
	if err != nil {
		return err
	}
	switch colorMode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", colorMode)
	}
	app.color = !color.NoColor

	if app.timings, err = flags.GetBool("timings"); err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	app.cfg = cfg

	tracer, span, err := setupTracing(cmd, cfg)
	if err != nil {
		return err
	}
	app.tracer, app.span = tracer, span
	app.timer = observ.NewTimer(tracer)
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return nil, err
	}
	var cfg *config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return nil, err
	}

	if layout, _ := flags.GetString("datalayout"); layout != "" {
		if _, err := datalayout.Parse(layout); err != nil {
			return nil, fmt.Errorf("--datalayout: %w", err)
		}
		cfg.Target.DataLayout = layout
	}
	if jobs, _ := flags.GetInt("jobs"); jobs > 0 {
		cfg.Scan.Jobs = jobs
	}
	return cfg, nil
}

// openSession opens a session on the shared config, timed as "session".
func openSession() (*session.Session, error) {
	var s *session.Session
	err := app.timer.Measure("session", func() error {
		var err error
		s, err = session.Open(app.cfg, app.tracer)
		return err
	})
	return s, err
}

// closeSession closes s and folds a leak report into err.
func closeSession(s *session.Session, err *error) {
	if cerr := s.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func (a *appState) close(stderr io.Writer) {
	if a.timer != nil && a.timings {
		fmt.Fprint(stderr, a.timer.Summary())
	}
	if a.tracer == nil {
		return
	}
	a.span.End("")
	if err := a.tracer.Flush(); err != nil {
		fmt.Fprintf(stderr, "trace: flush error: %v\n", err)
	}
	if multi, ok := a.tracer.(*trace.MultiTracer); ok {
		if ring, ok := multi.Ring(); ok {
			if err := ring.Dump(stderr, trace.FormatText); err != nil {
				fmt.Fprintf(stderr, "trace: dump error: %v\n", err)
			}
		}
	}
	if ring, ok := a.tracer.(*trace.RingTracer); ok {
		if err := ring.Dump(stderr, trace.FormatText); err != nil {
			fmt.Fprintf(stderr, "trace: dump error: %v\n", err)
		}
	}
	if err := a.tracer.Close(); err != nil {
		fmt.Fprintf(stderr, "trace: close error: %v\n", err)
	}
}

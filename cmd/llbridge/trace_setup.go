package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"llbridge/internal/config"
	"llbridge/internal/trace"
)

// setupTracing builds the tracer from [trace] with flag overrides and
// attaches it, with a span for the command, to the command context.
func setupTracing(cmd *cobra.Command, cfg *config.Config) (trace.Tracer, *trace.Span, error) {
	flags := cmd.Root().PersistentFlags()

	output, err := flags.GetString("trace")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace flag: %w", err)
	}
	level, err := flags.GetString("trace-level")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-level flag: %w", err)
	}
	mode, err := flags.GetString("trace-mode")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get trace-mode flag: %w", err)
	}

	if output != "" {
		cfg.Trace.Output = output
		// an output without a level means the user wants a trace
		if level == "" && (cfg.Trace.Level == "" || cfg.Trace.Level == "off") {
			level = "session"
		}
	}
	if level != "" {
		cfg.Trace.Level = level
	}
	if mode != "" {
		cfg.Trace.Mode = mode
	}

	tcfg, err := cfg.TraceSettings()
	if err != nil {
		return nil, nil, err
	}
	tracer, err := trace.New(tcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create tracer: %w", err)
	}
	span := trace.Begin(tracer, trace.ScopeSession, "llbridge "+cmd.Name(), 0)
	ctx := trace.WithSpan(trace.WithTracer(cmd.Context(), tracer), span)
	cmd.SetContext(ctx)
	return tracer, span, nil
}

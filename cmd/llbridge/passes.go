package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"llbridge/internal/llvm/inproc"
	"llbridge/internal/llvm/vocab"
)

var passesGlobals []string

func init() {
	passesCmd.Flags().StringSliceVar(&passesGlobals, "global", nil, "run the pipeline over a module with these globals (name[:linkage])")
}

var passesCmd = &cobra.Command{
	Use:   "passes",
	Short: "List the passes the backend accepts and the configured pipeline",
	RunE:  runPasses,
}

func runPasses(cmd *cobra.Command, args []string) (err error) {
	out := cmd.OutOrStdout()
	pipeline := app.cfg.Passes.Pipeline
	position := make(map[string]int, len(pipeline))
	for i, name := range pipeline {
		if _, seen := position[name]; !seen {
			position[name] = i + 1
		}
	}

	active := color.New(color.FgGreen, color.Bold)
	for _, name := range inproc.KnownPasses() {
		if pos, ok := position[name]; ok {
			active.Fprintf(out, "%3d %s\n", pos, name)
			continue
		}
		fmt.Fprintf(out, "    %s\n", name)
	}
	if len(passesGlobals) == 0 {
		return nil
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	b := s.Backend()
	m := b.NewModule("cli")
	for _, spec := range passesGlobals {
		name, linkName, _ := strings.Cut(spec, ":")
		linkage, err := parseLinkage(linkName)
		if err != nil {
			return err
		}
		b.AddGlobal(m, name, b.Int(32), linkage)
	}
	changed := s.Optimize(m)
	fmt.Fprintf(out, "\npipeline [%s] changed=%s\n", strings.Join(pipeline, ", "), strconv.FormatBool(changed))
	for _, g := range b.Globals(m) {
		fmt.Fprintf(out, "  %s %s\n", b.ValueName(g), b.Linkage(g))
	}
	return nil
}

func parseLinkage(name string) (vocab.Linkage, error) {
	if name == "" {
		return vocab.ExternalLinkage, nil
	}
	return vocab.ParseLinkage(strings.ToLower(name))
}

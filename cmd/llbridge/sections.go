package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"llbridge/internal/objscan"
	"llbridge/internal/ui"
)

var (
	sectionsUI      string
	sectionsFormat  string
	sectionsCache   string
	sectionsNoCache bool
	sectionsDrop    bool
)

func init() {
	sectionsCmd.Flags().StringVar(&sectionsUI, "ui", "off", "progress UI (auto|on|off)")
	sectionsCmd.Flags().StringVar(&sectionsFormat, "format", "table", "output format (table|json|summary)")
	sectionsCmd.Flags().StringVar(&sectionsCache, "cache", "", "cache directory (default: [scan].cache, then the user cache)")
	sectionsCmd.Flags().BoolVar(&sectionsNoCache, "no-cache", false, "do not read or write the scan cache")
	sectionsCmd.Flags().BoolVar(&sectionsDrop, "drop-cache", false, "empty the scan cache before scanning")
}

var sectionsCmd = &cobra.Command{
	Use:   "sections [flags] <file|dir>...",
	Short: "List the sections of ELF, Mach-O and PE object files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSections,
}

func runSections(cmd *cobra.Command, args []string) error {
	switch sectionsFormat {
	case "table", "json", "summary":
	default:
		return fmt.Errorf("unsupported format %q (must be table, json or summary)", sectionsFormat)
	}
	mode, err := readUIMode(sectionsUI)
	if err != nil {
		return err
	}

	var files []string
	err = app.timer.Measure("expand", func() error {
		files, err = objscan.ExpandPaths(args)
		return err
	})
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no object files under %v", args)
	}

	cache, err := openScanCache()
	if err != nil {
		return err
	}
	opts := objscan.Options{
		Jobs:   app.cfg.Scan.Jobs,
		Cache:  cache,
		Config: app.cfg,
	}

	var results []objscan.Result
	phase := app.timer.Begin("scan")
	if shouldUseTUI(mode) {
		results, err = scanWithUI(cmd.Context(), files, opts)
	} else {
		results, err = objscan.ScanFiles(cmd.Context(), files, opts)
	}
	app.timer.End(phase, strconv.Itoa(len(files))+" files")
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch sectionsFormat {
	case "json":
		err = renderSectionsJSON(out, results)
	case "summary":
		err = renderSectionsSummary(out, results)
	default:
		err = renderSectionsTable(out, results)
	}
	if err != nil {
		return err
	}
	if failed := objscan.Failed(results); len(failed) > 0 {
		for _, r := range failed {
			color.New(color.FgRed).Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
		}
		return fmt.Errorf("%d of %d files failed", len(failed), len(results))
	}
	return nil
}

func openScanCache() (*objscan.Cache, error) {
	if sectionsNoCache {
		return nil, nil
	}
	var (
		cache *objscan.Cache
		err   error
	)
	switch dir := sectionsCache; {
	case dir != "":
		cache, err = objscan.OpenCache(dir)
	case app.cfg.CacheDir() != "":
		cache, err = objscan.OpenCache(app.cfg.CacheDir())
	default:
		cache, err = objscan.OpenUserCache("llbridge")
	}
	if err != nil {
		return nil, err
	}
	if sectionsDrop {
		if err := cache.DropAll(); err != nil {
			return nil, err
		}
	}
	return cache, nil
}

func scanWithUI(ctx context.Context, files []string, opts objscan.Options) ([]objscan.Result, error) {
	events := make(chan ui.Event, 256)
	type outcome struct {
		results []objscan.Result
		err     error
	}
	outcomeCh := make(chan outcome, 1)
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts.OnFile = func(res *objscan.Result) {
		ev := ui.Event{File: res.Path, Status: ui.StatusDone}
		switch {
		case res.Err != nil:
			ev.Status = ui.StatusError
			ev.Detail = res.Err.Error()
		case res.Cached:
			ev.Status = ui.StatusCached
			ev.Detail = strconv.Itoa(len(res.Sections)) + " sections"
		default:
			ev.Detail = strconv.Itoa(len(res.Sections)) + " sections"
		}
		events <- ev
	}
	go func() {
		results, err := objscan.ScanFiles(ctx, files, opts)
		outcomeCh <- outcome{results: results, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("scanning", files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// after ctrl+c the model stops reading; stop the workers and drain
	cancel()
	for range events {
	}
	res := <-outcomeCh
	if uiErr != nil {
		return res.results, uiErr
	}
	return res.results, res.err
}

func renderSectionsTable(out io.Writer, results []objscan.Result) error {
	for i, r := range results {
		if r.Err != nil {
			continue
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		header := fmt.Sprintf("%s: %s, %d bytes", r.Path, r.Format, r.Bytes)
		if r.Cached {
			header += " (cached)"
		}
		fmt.Fprintln(out, header)

		tb := ui.NewTable(app.color,
			ui.Column{Title: "Idx", Align: ui.AlignRight},
			ui.Column{Title: "Name"},
			ui.Column{Title: "Size", Align: ui.AlignRight},
			ui.Column{Title: "Address", Align: ui.AlignRight},
			ui.Column{Title: "Digest"},
		)
		for j, s := range r.Sections {
			digest := "-"
			if s.Digest != (objscan.Digest{}) {
				digest = s.Digest.Short()
			}
			tb.Row(strconv.Itoa(j), ui.Truncate(s.Name, 32), tb.Number(s.Size), tb.Hex(s.Address), digest)
		}
		if err := tb.Render(out); err != nil {
			return err
		}
	}
	return nil
}

func renderSectionsSummary(out io.Writer, results []objscan.Result) error {
	tb := ui.NewTable(app.color,
		ui.Column{Title: "File"},
		ui.Column{Title: "Format"},
		ui.Column{Title: "Sections", Align: ui.AlignRight},
		ui.Column{Title: "Total", Align: ui.AlignRight},
		ui.Column{Title: "Digest"},
	)
	for _, r := range results {
		if r.Err != nil {
			tb.Row(ui.Truncate(r.Path, 48), "error")
			continue
		}
		tb.Row(ui.Truncate(r.Path, 48), r.Format, strconv.Itoa(len(r.Sections)), tb.Number(r.TotalSize()), r.Digest.Short())
	}
	return tb.Render(out)
}

type sectionJSON struct {
	Name    string `json:"name"`
	Size    uint64 `json:"size"`
	Address uint64 `json:"address"`
	SHA256  string `json:"sha256,omitempty"`
}

type fileJSON struct {
	Path     string        `json:"path"`
	Format   string        `json:"format,omitempty"`
	Bytes    int           `json:"bytes"`
	SHA256   string        `json:"sha256,omitempty"`
	Cached   bool          `json:"cached,omitempty"`
	Error    string        `json:"error,omitempty"`
	Sections []sectionJSON `json:"sections,omitempty"`
}

func renderSectionsJSON(out io.Writer, results []objscan.Result) error {
	payload := make([]fileJSON, 0, len(results))
	for _, r := range results {
		f := fileJSON{Path: r.Path, Format: r.Format, Bytes: r.Bytes, Cached: r.Cached}
		if r.Err != nil {
			f.Error = r.Err.Error()
		} else {
			f.SHA256 = r.Digest.String()
		}
		for _, s := range r.Sections {
			sj := sectionJSON{Name: s.Name, Size: s.Size, Address: s.Address}
			if s.Digest != (objscan.Digest{}) {
				sj.SHA256 = s.Digest.String()
			}
			f.Sections = append(f.Sections, sj)
		}
		payload = append(payload, f)
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

package objscan

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"llbridge/internal/config"
	"llbridge/internal/session"
	"llbridge/internal/trace"
)

// objectSuffixes are the extensions ExpandPaths picks up inside directories.
var objectSuffixes = []string{".o", ".obj", ".so", ".dylib", ".dll", ".exe"}

// Options tune ScanFiles.
type Options struct {
	Jobs   int            // <= 0 means GOMAXPROCS
	Cache  *Cache         // nil disables caching
	Config *config.Config // session config for every worker
	Tracer trace.Tracer
	// OnFile is called after each file, from the worker goroutine.
	OnFile func(res *Result)
}

// ExpandPaths replaces directories in paths by the object files below
// them. Plain files are kept as given. The result is sorted.
func ExpandPaths(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && hasObjectSuffix(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

func hasObjectSuffix(path string) bool {
	for _, suf := range objectSuffixes {
		if strings.HasSuffix(path, suf) {
			return true
		}
	}
	return false
}

// ScanFiles scans every path in parallel. Each worker opens its own
// session. Per-file failures land in Result.Err; the returned error is
// reserved for cancellation and session setup failures.
func ScanFiles(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	tr := opts.Tracer
	if tr == nil {
		tr = trace.FromContext(ctx)
	}
	sp := trace.Begin(tr, trace.ScopeSession, "scan-files", trace.CurrentSpan(ctx)).
		WithExtra("files", strconv.Itoa(len(paths))).
		WithExtra("jobs", strconv.Itoa(jobs))

	// indices are unique per goroutine, no lock needed
	results := make([]Result, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			res, err := scanFile(opts, tr, path)
			if err != nil {
				return err
			}
			results[i] = *res
			if opts.OnFile != nil {
				opts.OnFile(&results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		sp.End("cancelled")
		return results, err
	}
	sp.WithExtra("failed", strconv.Itoa(len(Failed(results)))).End("ok")
	return results, nil
}

// scanFile returns an error only when no session could be opened.
func scanFile(opts Options, tr trace.Tracer, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Result{Path: path, Err: err}, nil
	}
	digest := Digest(sha256.Sum256(data))
	if res, ok, err := opts.Cache.Get(digest, path); err != nil {
		trace.Error(tr, trace.ScopeFile, "cache", err)
	} else if ok {
		return res, nil
	}

	s, err := session.Open(opts.Config, tr)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	res, scanErr := ScanObject(s, path, data)
	closeErr := s.Close()
	if scanErr != nil {
		return &Result{Path: path, Bytes: len(data), Digest: digest, Err: scanErr}, nil
	}
	if closeErr != nil {
		res.Err = closeErr
		return res, nil
	}
	if err := opts.Cache.Put(res); err != nil {
		trace.Error(tr, trace.ScopeFile, "cache", err)
	}
	return res, nil
}

// Failed returns the results that carry an error.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if r.Err != nil {
			out = append(out, r)
		}
	}
	return out
}

// Join merges every per-file error into one.
func Join(results []Result) error {
	var errs []error
	for _, r := range results {
		if r.Err != nil {
			errs = append(errs, r.Err)
		}
	}
	return errors.Join(errs...)
}

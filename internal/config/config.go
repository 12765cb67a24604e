// Package config loads llbridge.toml, the per-project session settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"llbridge/internal/llvm/datalayout"
	"llbridge/internal/llvm/typeexpr"
	"llbridge/internal/trace"
)

// FileName is the config file searched for by Find.
const FileName = "llbridge.toml"

// Config is the decoded llbridge.toml.
type Config struct {
	Path string `toml:"-"` // empty for the built-in defaults
	Root string `toml:"-"`

	Target TargetConfig      `toml:"target"`
	Passes PassesConfig      `toml:"passes"`
	Trace  TraceConfig       `toml:"trace"`
	Scan   ScanConfig        `toml:"scan"`
	Types  map[string]string `toml:"types"`
}

type TargetConfig struct {
	DataLayout string `toml:"datalayout"`
	Triple     string `toml:"triple"`
}

type PassesConfig struct {
	Pipeline []string `toml:"pipeline"`
}

type TraceConfig struct {
	Level    string `toml:"level"`
	Mode     string `toml:"mode"`
	Format   string `toml:"format"`
	Output   string `toml:"output"`
	RingSize int    `toml:"ring_size"`
}

type ScanConfig struct {
	Jobs  int    `toml:"jobs"`  // 0 means GOMAXPROCS
	Cache string `toml:"cache"` // directory; empty disables caching
}

// Default returns the settings used when no llbridge.toml exists.
func Default() *Config {
	return &Config{
		Trace: TraceConfig{Level: "off", Mode: "stream"},
	}
}

// Find walks up from startDir looking for llbridge.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest llbridge.toml above startDir, or the
// defaults when there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load decodes and validates the file at path.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	cfg.Root = filepath.Dir(path)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without a backend.
// Pass names and type expressions are checked when a session binds them.
func (c *Config) Validate() error {
	if _, err := datalayout.Parse(c.Target.DataLayout); err != nil {
		return fmt.Errorf("[target].datalayout: %w", err)
	}
	for i, name := range c.Passes.Pipeline {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("[passes].pipeline[%d] is empty", i)
		}
	}
	if _, err := c.TraceSettings(); err != nil {
		return err
	}
	if c.Scan.Jobs < 0 {
		return fmt.Errorf("[scan].jobs must not be negative, got %d", c.Scan.Jobs)
	}
	for name, expr := range c.Types {
		if strings.TrimSpace(name) == "" || strings.TrimSpace(expr) == "" {
			return fmt.Errorf("[types]: empty name or expression for %q", name)
		}
	}
	return nil
}

// TraceSettings converts [trace] into a tracer config. A relative output
// path is resolved against the config directory.
func (c *Config) TraceSettings() (trace.Config, error) {
	var out trace.Config
	level, err := trace.ParseLevel(orDefault(c.Trace.Level, "off"))
	if err != nil {
		return out, fmt.Errorf("[trace].level: %w", err)
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return out, fmt.Errorf("[trace].mode: %w", err)
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return out, fmt.Errorf("[trace].format: %w", err)
	}
	outPath := c.Trace.Output
	if outPath != "" && outPath != "-" && !filepath.IsAbs(outPath) && c.Root != "" {
		outPath = filepath.Join(c.Root, outPath)
	}
	return trace.Config{
		Level:      level,
		Mode:       mode,
		Format:     format,
		OutputPath: outPath,
		RingSize:   c.Trace.RingSize,
	}, nil
}

// TypeDefs returns [types] as declarations ordered by name.
func (c *Config) TypeDefs() []typeexpr.Def {
	names := make([]string, 0, len(c.Types))
	for name := range c.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	defs := make([]typeexpr.Def, len(names))
	for i, name := range names {
		defs[i] = typeexpr.Def{Name: name, Expr: c.Types[name]}
	}
	return defs
}

// CacheDir resolves [scan].cache against the config directory.
func (c *Config) CacheDir() string {
	if c.Scan.Cache == "" || filepath.IsAbs(c.Scan.Cache) || c.Root == "" {
		return c.Scan.Cache
	}
	return filepath.Join(c.Root, c.Scan.Cache)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

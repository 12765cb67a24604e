// Package session is the compilation session context object: one backend
// context, the type-name registry, the target data and the pass manager,
// opened from a config and released together at the end.
package session

import (
	"errors"
	"fmt"
	"strconv"

	"llbridge/internal/config"
	"llbridge/internal/llvm"
	"llbridge/internal/llvm/inproc"
	"llbridge/internal/llvm/typeexpr"
	"llbridge/internal/trace"
)

// Session is not safe for concurrent use. Parallel work opens one
// session per goroutine.
type Session struct {
	backend *inproc.Catalog
	cat     llvm.Catalog
	names   *llvm.TypeNames
	target  llvm.TargetData
	passes  llvm.PassManager
	tracer  trace.Tracer
	span    *trace.Span
	objects int
	closed  bool
}

// Open creates a session from cfg. tr may be nil.
func Open(cfg *config.Config, tr trace.Tracer) (*Session, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if tr == nil {
		tr = trace.Nop
	}
	backend := inproc.New()
	s := &Session{
		backend: backend,
		cat:     llvm.Traced(backend, tr),
		tracer:  tr,
	}
	s.span = trace.Begin(tr, trace.ScopeSession, "session", 0)
	if cfg.Path != "" {
		s.span.WithExtra("config", cfg.Path)
	}
	s.names = llvm.NewTypeNames(s.cat)

	if err := s.setup(cfg); err != nil {
		s.release()
		s.span.End("error")
		trace.Error(tr, trace.ScopeSession, "session", err)
		return nil, err
	}
	return s, nil
}

func (s *Session) setup(cfg *config.Config) error {
	if err := typeexpr.BindAll(cfg.TypeDefs(), s.backend, s.names); err != nil {
		return fmt.Errorf("[types]: %w", err)
	}
	s.target = llvm.NewTargetData(s.cat, cfg.Target.DataLayout)
	s.passes = llvm.NewPassManager(s.cat)
	if err := s.passes.AddPipeline(cfg.Passes.Pipeline); err != nil {
		return fmt.Errorf("[passes]: %w", err)
	}
	s.passes.AddTargetData(s.target)
	return nil
}

// Catalog is the traced catalog every foreign call goes through.
func (s *Session) Catalog() llvm.Catalog { return s.cat }

// Backend is the in-process context, for building types and modules.
func (s *Session) Backend() *inproc.Catalog { return s.backend }

// Names is the session's type-name registry.
func (s *Session) Names() *llvm.TypeNames { return s.names }

// Target is the session's target data. The session keeps its own
// reference; callers that store it elsewhere should Share it.
func (s *Session) Target() llvm.TargetData { return s.target }

// Passes is the session's pass manager.
func (s *Session) Passes() llvm.PassManager { return s.passes }

// Tracer returns the tracer the session reports to.
func (s *Session) Tracer() trace.Tracer { return s.tracer }

// ParseType reads a type expression against the session registry.
func (s *Session) ParseType(expr string) (llvm.TypeRef, error) {
	return typeexpr.Parse(expr, s.backend, s.names)
}

// OpenObject parses data as an object file owned by this session's
// backend. The caller releases the result.
func (s *Session) OpenObject(name string, data []byte) (llvm.ObjectFile, error) {
	obj, err := llvm.NewObjectFileFromBytes(s.cat, name, data)
	if err != nil {
		return llvm.ObjectFile{}, fmt.Errorf("%s: %w", name, err)
	}
	s.objects++
	return obj, nil
}

// Optimize runs the configured pipeline over m.
func (s *Session) Optimize(m llvm.ModuleRef) bool {
	sp := trace.Begin(s.tracer, trace.ScopeFile, "optimize", s.span.ID())
	changed := s.passes.Run(m)
	sp.WithExtra("changed", strconv.FormatBool(changed)).End("")
	return changed
}

// Close releases the session's own resources and reports any backend
// allocation still live, which means a caller leaked a wrapper.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	s.release()
	err := s.backend.CheckLeaks()
	if err != nil {
		trace.Error(s.tracer, trace.ScopeSession, "session", err)
	}
	s.span.WithExtra("types", strconv.Itoa(s.names.Len())).
		WithExtra("objects", strconv.Itoa(s.objects)).
		End(statusOf(err))
	return err
}

func (s *Session) release() {
	s.passes.Release()
	s.target.Release()
}

func statusOf(err error) string {
	var leak *inproc.LeakError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &leak):
		return "leaked " + strconv.Itoa(leak.Stats.Total())
	default:
		return "error"
	}
}

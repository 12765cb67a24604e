package inproc

import (
	"sort"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/vocab"
)

// passFunc transforms a module and reports whether anything changed.
// A nil passFunc is accepted into pipelines but leaves modules alone.
type passFunc func(c *Catalog, mod *module) bool

var knownPasses = map[string]passFunc{
	"adce":          nil,
	"always-inline": nil,
	"constmerge":    nil,
	"dce":           nil,
	"early-cse":     nil,
	"globaldce":     globalDCE,
	"globalopt":     nil,
	"gvn":           nil,
	"indvars":       nil,
	"inline":        nil,
	"instcombine":   nil,
	"internalize":   internalize,
	"ipsccp":        nil,
	"licm":          nil,
	"loop-rotate":   nil,
	"loop-unroll":   nil,
	"mem2reg":       nil,
	"reassociate":   nil,
	"sccp":          nil,
	"simplifycfg":   nil,
	"sroa":          nil,
	"tailcallelim":  nil,
	"verify":        nil,
}

// KnownPasses lists the pass names AddPass accepts.
func KnownPasses() []string {
	names := make([]string, 0, len(knownPasses))
	for name := range knownPasses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type passManager struct {
	pipeline []string
	td       llvm.TargetDataRef
	runs     int
}

func (c *Catalog) CreatePassManager() llvm.PassManagerRef {
	pm := llvm.PassManagerRef(c.alloc())
	c.passes[pm] = &passManager{}
	return pm
}

func (c *Catalog) DisposePassManager(pm llvm.PassManagerRef) {
	if _, ok := c.passes[pm]; !ok {
		badDispose(pm)
	}
	delete(c.passes, pm)
	c.disposed++
}

func (c *Catalog) passManager(pm llvm.PassManagerRef) *passManager {
	p, ok := c.passes[pm]
	if !ok {
		panic("inproc: use of unknown " + pm.String())
	}
	return p
}

func (c *Catalog) AddPass(pm llvm.PassManagerRef, name string) bool {
	p := c.passManager(pm)
	if _, ok := knownPasses[name]; !ok {
		return false
	}
	p.pipeline = append(p.pipeline, name)
	return true
}

func (c *Catalog) AddTargetData(td llvm.TargetDataRef, pm llvm.PassManagerRef) {
	c.target(td)
	c.passManager(pm).td = td
}

func (c *Catalog) RunPassManager(pm llvm.PassManagerRef, m llvm.ModuleRef) bool {
	p := c.passManager(pm)
	mod := c.module(m)
	if !p.td.IsNil() {
		// target data must outlive every run that uses it
		c.target(p.td)
	}
	p.runs++
	changed := false
	for _, name := range p.pipeline {
		if fn := knownPasses[name]; fn != nil && fn(c, mod) {
			changed = true
		}
	}
	return changed
}

// Pipeline returns the passes added to pm, in order.
func (c *Catalog) Pipeline(pm llvm.PassManagerRef) []string {
	return append([]string(nil), c.passManager(pm).pipeline...)
}

// Runs reports how often pm has been run.
func (c *Catalog) Runs(pm llvm.PassManagerRef) int { return c.passManager(pm).runs }

// globalDCE drops globals with local linkage. Nothing in the model can
// reference a global, so every local one is dead.
func globalDCE(c *Catalog, mod *module) bool {
	kept := mod.globals[:0]
	for _, g := range mod.globals {
		switch c.value(g).linkage {
		case vocab.InternalLinkage, vocab.PrivateLinkage:
			continue
		}
		kept = append(kept, g)
	}
	changed := len(kept) != len(mod.globals)
	mod.globals = kept
	return changed
}

// internalize gives every externally visible global except main internal
// linkage.
func internalize(c *Catalog, mod *module) bool {
	changed := false
	for _, g := range mod.globals {
		v := c.value(g)
		if v.linkage == vocab.ExternalLinkage && v.name != "main" {
			v.linkage = vocab.InternalLinkage
			changed = true
		}
	}
	return changed
}

// Linkage returns the current linkage of a global.
func (c *Catalog) Linkage(v llvm.ValueRef) vocab.Linkage { return c.value(v).linkage }

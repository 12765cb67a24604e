// Package inproc is a pure-Go backend catalog. It models the slice of the
// LLVM-C surface that the llvm package drives: a type context, target data
// over a parsed data layout, a legacy pass manager and an object-file
// reader for ELF, Mach-O and PE images.
//
// A Catalog is one backend context. It is not safe for concurrent use;
// parallel work gives each goroutine its own Catalog.
package inproc

import (
	"fmt"
	"sort"
	"strings"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/datalayout"
)

var _ llvm.Catalog = (*Catalog)(nil)

// Catalog implements llvm.Catalog in process.
type Catalog struct {
	types   typeTable
	values  []valueInfo
	modules map[llvm.ModuleRef]*module

	next     uintptr
	targets  map[llvm.TargetDataRef]*targetData
	passes   map[llvm.PassManagerRef]*passManager
	buffers  map[llvm.MemoryBufferRef]*memBuffer
	objects  map[llvm.ObjectFileRef]*objectFile
	iters    map[llvm.SectionIteratorRef]*sectionIter
	disposed int
}

// New creates an empty backend context.
func New() *Catalog {
	return &Catalog{
		types:   newTypeTable(),
		values:  []valueInfo{{}},
		modules: make(map[llvm.ModuleRef]*module),
		next:    0x1000,
		targets: make(map[llvm.TargetDataRef]*targetData),
		passes:  make(map[llvm.PassManagerRef]*passManager),
		buffers: make(map[llvm.MemoryBufferRef]*memBuffer),
		objects: make(map[llvm.ObjectFileRef]*objectFile),
		iters:   make(map[llvm.SectionIteratorRef]*sectionIter),
	}
}

// alloc hands out a fresh address-like handle. Handles are never reused
// within a catalog, so a stale handle cannot alias a new allocation.
func (c *Catalog) alloc() uintptr {
	c.next += 0x10
	return c.next
}

// Stats counts live allocations per resource kind.
type Stats struct {
	TargetData       int
	PassManagers     int
	MemoryBuffers    int
	ObjectFiles      int
	SectionIterators int
	Disposed         int
}

// Total is the number of live allocations.
func (s Stats) Total() int {
	return s.TargetData + s.PassManagers + s.MemoryBuffers + s.ObjectFiles + s.SectionIterators
}

func (s Stats) String() string {
	var parts []string
	add := func(n int, what string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, what))
		}
	}
	add(s.TargetData, "target data")
	add(s.PassManagers, "pass managers")
	add(s.MemoryBuffers, "memory buffers")
	add(s.ObjectFiles, "object files")
	add(s.SectionIterators, "section iterators")
	if len(parts) == 0 {
		return "no live allocations"
	}
	return strings.Join(parts, ", ")
}

// Live reports the allocations that have not been disposed. Memory
// buffers owned by an object file are counted with the object file.
func (c *Catalog) Live() Stats {
	free := 0
	for _, b := range c.buffers {
		if b.owner.IsNil() {
			free++
		}
	}
	return Stats{
		TargetData:       len(c.targets),
		PassManagers:     len(c.passes),
		MemoryBuffers:    free,
		ObjectFiles:      len(c.objects),
		SectionIterators: len(c.iters),
		Disposed:         c.disposed,
	}
}

// LeakError lists allocations still live when a leak check runs.
type LeakError struct {
	Stats   Stats
	Handles []string
}

func (e *LeakError) Error() string {
	return fmt.Sprintf("inproc: %s still live: %s", e.Stats, strings.Join(e.Handles, " "))
}

// CheckLeaks returns a *LeakError when anything is still allocated.
func (c *Catalog) CheckLeaks() error {
	st := c.Live()
	if st.Total() == 0 {
		return nil
	}
	var handles []string
	for h := range c.targets {
		handles = append(handles, h.String())
	}
	for h := range c.passes {
		handles = append(handles, h.String())
	}
	for h, b := range c.buffers {
		if b.owner.IsNil() {
			handles = append(handles, h.String())
		}
	}
	for h := range c.objects {
		handles = append(handles, h.String())
	}
	for h := range c.iters {
		handles = append(handles, h.String())
	}
	sort.Strings(handles)
	return &LeakError{Stats: st, Handles: handles}
}

// badDispose reports a dispose of something this catalog does not hold.
// The real backend would corrupt its heap here.
func badDispose(h fmt.Stringer) {
	panic(fmt.Sprintf("inproc: dispose of unknown or already disposed %s", h))
}

// targetData is one CreateTargetData allocation.
type targetData struct {
	layout *datalayout.Layout
	engine *datalayout.Engine
}

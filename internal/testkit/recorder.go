package testkit

import (
	"fmt"
	"strings"
	"sync"

	"llbridge/internal/llvm"
)

// Recorder wraps a catalog and logs every resource create and dispose
// call, so tests can count foreign calls without a native backend.
type Recorder struct {
	llvm.Catalog

	mu    sync.Mutex
	calls []string
}

// Record starts recording calls made through the returned catalog.
func Record(cat llvm.Catalog) *Recorder { return &Recorder{Catalog: cat} }

func (r *Recorder) log(method string, arg any) {
	r.mu.Lock()
	r.calls = append(r.calls, fmt.Sprintf("%s(%v)", method, arg))
	r.mu.Unlock()
}

// Calls returns the recorded calls in order.
func (r *Recorder) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Count reports how many recorded calls were made to method.
func (r *Recorder) Count(method string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.calls {
		if strings.HasPrefix(c, method+"(") {
			n++
		}
	}
	return n
}

func (r *Recorder) CreateTargetData(layout string) llvm.TargetDataRef {
	r.log("CreateTargetData", fmt.Sprintf("%q", layout))
	return r.Catalog.CreateTargetData(layout)
}

func (r *Recorder) DisposeTargetData(td llvm.TargetDataRef) {
	r.log("DisposeTargetData", td)
	r.Catalog.DisposeTargetData(td)
}

func (r *Recorder) CreatePassManager() llvm.PassManagerRef {
	r.log("CreatePassManager", "")
	return r.Catalog.CreatePassManager()
}

func (r *Recorder) DisposePassManager(pm llvm.PassManagerRef) {
	r.log("DisposePassManager", pm)
	r.Catalog.DisposePassManager(pm)
}

func (r *Recorder) CreateMemoryBufferWithMemoryRangeCopy(data []byte, name string) llvm.MemoryBufferRef {
	r.log("CreateMemoryBufferWithMemoryRangeCopy", fmt.Sprintf("%q", name))
	return r.Catalog.CreateMemoryBufferWithMemoryRangeCopy(data, name)
}

func (r *Recorder) DisposeMemoryBuffer(buf llvm.MemoryBufferRef) {
	r.log("DisposeMemoryBuffer", buf)
	r.Catalog.DisposeMemoryBuffer(buf)
}

func (r *Recorder) CreateObjectFile(buf llvm.MemoryBufferRef) llvm.ObjectFileRef {
	r.log("CreateObjectFile", buf)
	return r.Catalog.CreateObjectFile(buf)
}

func (r *Recorder) DisposeObjectFile(obj llvm.ObjectFileRef) {
	r.log("DisposeObjectFile", obj)
	r.Catalog.DisposeObjectFile(obj)
}

func (r *Recorder) GetSections(obj llvm.ObjectFileRef) llvm.SectionIteratorRef {
	r.log("GetSections", obj)
	return r.Catalog.GetSections(obj)
}

func (r *Recorder) DisposeSectionIterator(si llvm.SectionIteratorRef) {
	r.log("DisposeSectionIterator", si)
	r.Catalog.DisposeSectionIterator(si)
}

package llvm_test

import (
	"strings"
	"testing"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/inproc"
	"llbridge/internal/testkit"
	"llbridge/internal/trace"
)

func TestTracedDisabledIsIdentity(t *testing.T) {
	c := inproc.New()
	if llvm.Traced(c, trace.Nop) != llvm.Catalog(c) {
		t.Fatal("disabled tracer should not wrap the catalog")
	}
}

func TestTracedReportsLifetimes(t *testing.T) {
	ring := trace.NewRingTracer(64, trace.LevelResource)
	c := inproc.New()
	cat := llvm.Traced(c, ring)

	obj, err := llvm.NewObjectFileFromBytes(cat, "min.o", testkit.MinimalELF())
	if err != nil {
		t.Fatal(err)
	}
	it := obj.Sections()
	it.Release()
	obj.Release()
	_, _ = llvm.NewObjectFileFromBytes(cat, "junk", []byte("junk"))
	tn := llvm.NewTypeNames(cat)
	tn.TypeToStr(c.Int(8)) // call scope is filtered at LevelResource

	var names []string
	for _, ev := range ring.Snapshot() {
		names = append(names, ev.Name)
	}
	got := strings.Join(names, " ")
	want := "create:objectfile create:sections dispose:sections dispose:objectfile reject:objectfile"
	if got != want {
		t.Fatalf("events = %q\nwant     %q", got, want)
	}
}

func TestTracedCallScope(t *testing.T) {
	ring := trace.NewRingTracer(16, trace.LevelDebug)
	c := inproc.New()
	tn := llvm.NewTypeNames(llvm.Traced(c, ring))
	if got := tn.TypeToStr(c.Pointer(c.Int(8))); got != "*i8" {
		t.Fatalf("TypeToStr = %q", got)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "TypeKind:Pointer" || events[1].Name != "TypeKind:Integer" {
		t.Fatalf("events = %+v", events)
	}
}

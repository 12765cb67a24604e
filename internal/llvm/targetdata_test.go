package llvm_test

import (
	"testing"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/inproc"
	"llbridge/internal/llvm/vocab"
	"llbridge/internal/testkit"
)

const x86Layout = "e-m:e-p270:32:32-p271:32:32-p272:64:64-i64:64-i128:128-f80:128-n8:16:32:64-S128"

func TestTargetDataSharedDisposeOnce(t *testing.T) {
	c := inproc.New()
	rec := testkit.Record(c)

	td := llvm.NewTargetData(rec, x86Layout)
	a := td.Share()
	b := a.Share()
	td.Release()
	a.Release()
	if rec.Count("DisposeTargetData") != 0 {
		t.Fatal("disposed with one reference left")
	}
	if b.StringRep() != x86Layout {
		t.Fatalf("StringRep = %q", b.StringRep())
	}
	b.Release()
	if rec.Count("DisposeTargetData") != 1 {
		t.Fatalf("calls = %v", rec.Calls())
	}
	if b.Valid() {
		t.Fatal("released reference still valid")
	}
}

func TestTargetDataQueries(t *testing.T) {
	c := inproc.New()
	td := llvm.NewTargetData(c, x86Layout)
	defer td.Release()

	st := c.Struct([]llvm.TypeRef{c.Int(8), c.Int(64), c.Int(16)}, false)
	if td.ByteOrder() != llvm.LittleEndian || td.PointerSize() != 8 {
		t.Fatalf("order=%s ptr=%d", td.ByteOrder(), td.PointerSize())
	}
	if td.ABISize(st) != 24 || td.ABIAlign(st) != 8 || td.StoreSize(st) != 24 {
		t.Fatalf("size=%d align=%d", td.ABISize(st), td.ABIAlign(st))
	}
	if td.SizeInBits(c.Int(17)) != 17 {
		t.Fatal("i17 size in bits")
	}
	if td.OffsetOfElement(st, 2) != 16 || td.ElementAtOffset(st, 9) != 1 {
		t.Fatal("struct element offsets")
	}
	if td.PreferredAlign(c.Double()) != 8 || td.CallFrameAlign(c.Double()) != 8 {
		t.Fatal("double alignment")
	}
}

func TestPassManagerWrapper(t *testing.T) {
	c := inproc.New()
	rec := testkit.Record(c)
	td := llvm.NewTargetData(rec, "")
	defer td.Release()

	pm := llvm.NewPassManager(rec)
	if err := pm.AddPipeline([]string{"mem2reg", "bogus", "gvn"}); err == nil {
		t.Fatal("unknown pass accepted")
	}
	if got := c.Pipeline(pm.Raw()); len(got) != 1 || got[0] != "mem2reg" {
		t.Fatalf("pipeline = %v, want to stop at the unknown pass", got)
	}
	pm.AddTargetData(td)

	m := c.NewModule("m")
	c.AddGlobal(m, "tmp", c.Int(8), vocab.PrivateLinkage)
	if err := pm.AddPass("globaldce"); err != nil {
		t.Fatal(err)
	}
	if !pm.Run(m) {
		t.Fatal("globaldce did not report a change")
	}
	pm.Release()
	if rec.Count("DisposePassManager") != 1 {
		t.Fatalf("calls = %v", rec.Calls())
	}
}

package inproc

import (
	"llbridge/internal/llvm"
	"llbridge/internal/llvm/datalayout"
)

// CreateTargetData parses layout. Like LLVMCreateTargetData it has no
// failure channel, so an invalid layout panics; callers validate with
// datalayout.Parse first.
func (c *Catalog) CreateTargetData(layout string) llvm.TargetDataRef {
	l := datalayout.MustParse(layout)
	td := llvm.TargetDataRef(c.alloc())
	c.targets[td] = &targetData{layout: l, engine: datalayout.NewEngine(l, c)}
	return td
}

func (c *Catalog) DisposeTargetData(td llvm.TargetDataRef) {
	if _, ok := c.targets[td]; !ok {
		badDispose(td)
	}
	delete(c.targets, td)
	c.disposed++
}

func (c *Catalog) target(td llvm.TargetDataRef) *targetData {
	t, ok := c.targets[td]
	if !ok {
		panic("inproc: use of unknown " + td.String())
	}
	return t
}

func (c *Catalog) CopyStringRepOfTargetData(td llvm.TargetDataRef) string {
	return c.target(td).layout.String()
}

func (c *Catalog) ByteOrder(td llvm.TargetDataRef) llvm.ByteOrder {
	if c.target(td).layout.BigEndian {
		return llvm.BigEndian
	}
	return llvm.LittleEndian
}

func (c *Catalog) PointerSize(td llvm.TargetDataRef) uint32 {
	return c.target(td).layout.PointerSize()
}

func (c *Catalog) SizeOfTypeInBits(td llvm.TargetDataRef, ty llvm.TypeRef) uint64 {
	return c.target(td).engine.SizeInBits(ty)
}

func (c *Catalog) StoreSizeOfType(td llvm.TargetDataRef, ty llvm.TypeRef) uint64 {
	return c.target(td).engine.StoreSize(ty)
}

func (c *Catalog) ABISizeOfType(td llvm.TargetDataRef, ty llvm.TypeRef) uint64 {
	return c.target(td).engine.ABISize(ty)
}

func (c *Catalog) ABIAlignmentOfType(td llvm.TargetDataRef, ty llvm.TypeRef) uint32 {
	return c.target(td).engine.ABIAlign(ty)
}

func (c *Catalog) CallFrameAlignmentOfType(td llvm.TargetDataRef, ty llvm.TypeRef) uint32 {
	return c.target(td).engine.CallFrameAlign(ty)
}

func (c *Catalog) PreferredAlignmentOfType(td llvm.TargetDataRef, ty llvm.TypeRef) uint32 {
	return c.target(td).engine.PreferredAlign(ty)
}

func (c *Catalog) OffsetOfElement(td llvm.TargetDataRef, st llvm.TypeRef, idx uint32) uint64 {
	return c.target(td).engine.OffsetOfElement(st, idx)
}

func (c *Catalog) ElementAtOffset(td llvm.TargetDataRef, st llvm.TypeRef, offset uint64) uint32 {
	return c.target(td).engine.ElementAtOffset(st, offset)
}

package datalayout

import (
	"fortio.org/safecast"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/vocab"
)

// Types is what the engine needs to know about a type beyond the
// registry's structural accessors.
type Types interface {
	llvm.TypeInspector
	IsPackedStruct(st llvm.TypeRef) bool
	PointerAddressSpace(ptr llvm.TypeRef) uint32
}

// StructLayout is the field placement of one struct type.
type StructLayout struct {
	Size    uint64 // bytes, including tail padding
	Align   uint32 // bytes
	Offsets []uint64
}

// Engine answers layout queries for one Layout. It caches struct
// layouts, so it belongs to a single catalog like the types it measures.
type Engine struct {
	Layout *Layout
	types  Types
	cache  map[llvm.TypeRef]*StructLayout
	open   []llvm.TypeRef // structs being laid out
}

// NewEngine binds l to the catalog that owns the types being measured.
func NewEngine(l *Layout, types Types) *Engine {
	return &Engine{Layout: l, types: types, cache: make(map[llvm.TypeRef]*StructLayout, 32)}
}

// Pointer returns the spec for an address space, falling back to 0.
func (l *Layout) Pointer(as uint32) PointerSpec {
	for _, p := range l.Pointers {
		if p.AddrSpace == as {
			return p
		}
	}
	for _, p := range l.Pointers {
		if p.AddrSpace == 0 {
			return p
		}
	}
	return PointerSpec{Size: 64, ABI: 64, Pref: 64, Index: 64}
}

// PointerSize is the size of an address-space-0 pointer in bytes.
func (l *Layout) PointerSize() uint32 { return l.Pointer(0).Size / 8 }

// SizeInBits is the number of bits needed to hold a value of ty.
func (e *Engine) SizeInBits(ty llvm.TypeRef) uint64 {
	t := e.types
	switch kind := t.TypeKind(ty); kind {
	case vocab.LabelTypeKind:
		return uint64(e.Layout.Pointer(0).Size)
	case vocab.PointerTypeKind:
		return uint64(e.Layout.Pointer(t.PointerAddressSpace(ty)).Size)
	case vocab.ArrayTypeKind:
		return t.ArrayLength(ty) * e.ABISize(t.ElementType(ty)) * 8
	case vocab.StructTypeKind:
		return e.StructLayout(ty).Size * 8
	case vocab.IntegerTypeKind:
		return uint64(t.IntTypeWidth(ty))
	case vocab.HalfTypeKind, vocab.BFloatTypeKind:
		return 16
	case vocab.FloatTypeKind:
		return 32
	case vocab.DoubleTypeKind, vocab.X86MMXTypeKind:
		return 64
	case vocab.X86FP80TypeKind:
		return 80
	case vocab.FP128TypeKind, vocab.PPCFP128TypeKind:
		return 128
	case vocab.VectorTypeKind:
		return uint64(t.VectorSize(ty)) * e.SizeInBits(t.ElementType(ty))
	default:
		// void, function, metadata, label-like kinds are unsized
		return 0
	}
}

// StoreSize is the number of bytes a store of ty may write.
func (e *Engine) StoreSize(ty llvm.TypeRef) uint64 {
	return (e.SizeInBits(ty) + 7) / 8
}

// ABISize is StoreSize rounded up to the ABI alignment.
func (e *Engine) ABISize(ty llvm.TypeRef) uint64 {
	return alignTo(e.StoreSize(ty), uint64(e.ABIAlign(ty)))
}

// ABIAlign is the minimum alignment of ty in bytes.
func (e *Engine) ABIAlign(ty llvm.TypeRef) uint32 { return e.alignment(ty, true) }

// PreferredAlign is the alignment the backend prefers for ty in bytes.
func (e *Engine) PreferredAlign(ty llvm.TypeRef) uint32 { return e.alignment(ty, false) }

// CallFrameAlign is the alignment of ty when passed on the stack. LLVM
// answers this with the ABI alignment.
func (e *Engine) CallFrameAlign(ty llvm.TypeRef) uint32 { return e.ABIAlign(ty) }

func (e *Engine) alignment(ty llvm.TypeRef, abi bool) uint32 {
	t := e.types
	switch kind := t.TypeKind(ty); kind {
	case vocab.LabelTypeKind:
		return pick(e.Layout.Pointer(0).ABI, e.Layout.Pointer(0).Pref, abi) / 8
	case vocab.PointerTypeKind:
		p := e.Layout.Pointer(t.PointerAddressSpace(ty))
		return pick(p.ABI, p.Pref, abi) / 8
	case vocab.ArrayTypeKind:
		return e.alignment(t.ElementType(ty), abi)
	case vocab.StructTypeKind:
		if abi && t.IsPackedStruct(ty) {
			return 1
		}
		agg := pick(e.Layout.Aggregate.ABI, e.Layout.Aggregate.Pref, abi) / 8
		return max(agg, e.StructLayout(ty).Align, 1)
	case vocab.IntegerTypeKind:
		return intAlignment(e.Layout.Ints, t.IntTypeWidth(ty), abi)
	case vocab.HalfTypeKind, vocab.BFloatTypeKind, vocab.FloatTypeKind, vocab.DoubleTypeKind,
		vocab.X86FP80TypeKind, vocab.FP128TypeKind, vocab.PPCFP128TypeKind:
		bits := e.SizeInBits(ty)
		if s, ok := exact(e.Layout.Floats, bits); ok {
			return pick(s.ABI, s.Pref, abi) / 8
		}
		return naturalAlign(e.StoreSize(ty))
	case vocab.VectorTypeKind, vocab.X86MMXTypeKind:
		bits := e.SizeInBits(ty)
		if s, ok := exact(e.Layout.Vectors, bits); ok {
			return pick(s.ABI, s.Pref, abi) / 8
		}
		return naturalAlign(e.StoreSize(ty))
	default:
		return 1
	}
}

// StructLayout places the fields of st. Like the other queries it has
// no error channel: a struct that contains itself by value panics with
// *RecursiveError. Callers measuring untrusted types run CheckSized first.
func (e *Engine) StructLayout(st llvm.TypeRef) *StructLayout {
	if sl, ok := e.cache[st]; ok {
		return sl
	}
	if cycle := openCycle(e.open, st); cycle != nil {
		e.open = nil
		panic(&RecursiveError{Type: st, Cycle: cycle})
	}
	e.open = append(e.open, st)
	t := e.types
	packed := t.IsPackedStruct(st)
	fields := t.StructElementTypes(st)
	sl := &StructLayout{Align: 1, Offsets: make([]uint64, len(fields))}
	var offset uint64
	for i, f := range fields {
		align := uint32(1)
		if !packed {
			align = e.ABIAlign(f)
		}
		offset = alignTo(offset, uint64(align))
		sl.Offsets[i] = offset
		offset += e.ABISize(f)
		sl.Align = max(sl.Align, align)
	}
	sl.Size = alignTo(offset, uint64(sl.Align))
	e.open = e.open[:len(e.open)-1]
	e.cache[st] = sl
	return sl
}

// OffsetOfElement is the byte offset of field idx of st.
func (e *Engine) OffsetOfElement(st llvm.TypeRef, idx uint32) uint64 {
	sl := e.StructLayout(st)
	if int(idx) >= len(sl.Offsets) {
		return sl.Size
	}
	return sl.Offsets[idx]
}

// ElementAtOffset is the index of the field of st that contains offset.
func (e *Engine) ElementAtOffset(st llvm.TypeRef, offset uint64) uint32 {
	sl := e.StructLayout(st)
	idx := 0
	for i, off := range sl.Offsets {
		if off > offset {
			break
		}
		idx = i
	}
	out, err := safecast.Conv[uint32](idx)
	if err != nil {
		return 0
	}
	return out
}

func pick(abiBits, prefBits uint32, abi bool) uint32 {
	if abi {
		return abiBits
	}
	return prefBits
}

// intAlignment uses the smallest integer entry at least as wide as width,
// or the widest entry when width exceeds them all.
func intAlignment(specs []AlignSpec, width uint32, abi bool) uint32 {
	if len(specs) == 0 {
		return 1
	}
	for _, s := range specs {
		if s.Width >= width {
			return pick(s.ABI, s.Pref, abi) / 8
		}
	}
	last := specs[len(specs)-1]
	return pick(last.ABI, last.Pref, abi) / 8
}

func exact(specs []AlignSpec, bits uint64) (AlignSpec, bool) {
	for _, s := range specs {
		if uint64(s.Width) == bits {
			return s, true
		}
	}
	return AlignSpec{}, false
}

// naturalAlign rounds a byte size up to a power of two.
func naturalAlign(size uint64) uint32 {
	align := uint64(1)
	for align < size {
		align <<= 1
	}
	out, err := safecast.Conv[uint32](align)
	if err != nil {
		return 1 << 31
	}
	return out
}

func alignTo(v, align uint64) uint64 {
	if align <= 1 {
		return v
	}
	return (v + align - 1) / align * align
}

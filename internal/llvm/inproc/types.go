package inproc

import (
	"fmt"
	"strconv"
	"strings"

	"fortio.org/safecast"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/vocab"
)

// maxIntWidth is LLVM's IntegerType::MAX_INT_BITS.
const maxIntWidth = 1<<23 - 1

type typeInfo struct {
	kind     vocab.TypeKind
	width    uint32
	elem     llvm.TypeRef
	count    uint64
	addr     uint32
	ret      llvm.TypeRef
	list     []llvm.TypeRef // params or fields
	packed   bool
	variadic bool
	name     string // identified structs only
	opaque   bool   // identified struct without a body
}

type typeKey struct {
	kind     vocab.TypeKind
	width    uint32
	elem     llvm.TypeRef
	count    uint64
	addr     uint32
	ret      llvm.TypeRef
	list     string
	packed   bool
	variadic bool
}

// typeTable interns structural types. Identified structs bypass the index:
// two of them with the same body are still different types.
type typeTable struct {
	types  []typeInfo
	index  map[typeKey]llvm.TypeRef
	byName map[string]llvm.TypeRef
}

func newTypeTable() typeTable {
	return typeTable{
		types:  []typeInfo{{}}, // reserve 0 as the null handle
		index:  make(map[typeKey]llvm.TypeRef, 64),
		byName: make(map[string]llvm.TypeRef, 16),
	}
}

func keyOf(t *typeInfo) typeKey {
	var sb strings.Builder
	for i, ty := range t.list {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(ty), 16))
	}
	return typeKey{
		kind: t.kind, width: t.width, elem: t.elem, count: t.count, addr: t.addr,
		ret: t.ret, list: sb.String(), packed: t.packed, variadic: t.variadic,
	}
}

func (tt *typeTable) intern(t typeInfo) llvm.TypeRef {
	key := keyOf(&t)
	if ty, ok := tt.index[key]; ok {
		return ty
	}
	ty := tt.appendRaw(t)
	tt.index[key] = ty
	return ty
}

func (tt *typeTable) appendRaw(t typeInfo) llvm.TypeRef {
	slot, err := safecast.Conv[uint32](len(tt.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	tt.types = append(tt.types, t)
	return llvm.TypeRef(slot)
}

func (tt *typeTable) lookup(ty llvm.TypeRef) *typeInfo {
	if ty == 0 || uint64(ty) >= uint64(len(tt.types)) {
		panic(fmt.Sprintf("inproc: invalid %s", ty))
	}
	return &tt.types[ty]
}

func (tt *typeTable) lookupKind(ty llvm.TypeRef, want ...vocab.TypeKind) *typeInfo {
	t := tt.lookup(ty)
	for _, k := range want {
		if t.kind == k {
			return t
		}
	}
	panic(fmt.Sprintf("inproc: %s is %s, want %v", ty, t.kind, want))
}

func (tt *typeTable) check(tys ...llvm.TypeRef) {
	for _, ty := range tys {
		tt.lookup(ty)
	}
}

// Primitive returns the type of a kind that carries no structure, such as
// Void, Float or Token.
func (c *Catalog) Primitive(kind vocab.TypeKind) llvm.TypeRef {
	switch kind {
	case vocab.IntegerTypeKind, vocab.FunctionTypeKind, vocab.StructTypeKind, vocab.ArrayTypeKind,
		vocab.PointerTypeKind, vocab.VectorTypeKind, vocab.ScalableVectorTypeKind, vocab.TargetExtTypeKind:
		panic(fmt.Sprintf("inproc: %s is not a primitive kind", kind))
	}
	if kind > vocab.TargetExtTypeKind {
		panic(fmt.Sprintf("inproc: type kind %d out of range", uint32(kind)))
	}
	return c.types.intern(typeInfo{kind: kind})
}

func (c *Catalog) Void() llvm.TypeRef   { return c.Primitive(vocab.VoidTypeKind) }
func (c *Catalog) Float() llvm.TypeRef  { return c.Primitive(vocab.FloatTypeKind) }
func (c *Catalog) Double() llvm.TypeRef { return c.Primitive(vocab.DoubleTypeKind) }

// Int returns the integer type of the given bit width.
func (c *Catalog) Int(width uint32) llvm.TypeRef {
	if width == 0 || width > maxIntWidth {
		panic(fmt.Sprintf("inproc: integer width %d out of range", width))
	}
	return c.types.intern(typeInfo{kind: vocab.IntegerTypeKind, width: width})
}

// Function returns the function type ret(params...).
func (c *Catalog) Function(ret llvm.TypeRef, params []llvm.TypeRef, variadic bool) llvm.TypeRef {
	c.types.check(ret)
	c.types.check(params...)
	return c.types.intern(typeInfo{
		kind: vocab.FunctionTypeKind, ret: ret, list: cloneRefs(params), variadic: variadic,
	})
}

// Struct returns the literal struct with the given fields.
func (c *Catalog) Struct(fields []llvm.TypeRef, packed bool) llvm.TypeRef {
	c.types.check(fields...)
	return c.types.intern(typeInfo{kind: vocab.StructTypeKind, list: cloneRefs(fields), packed: packed})
}

// NamedStruct creates an identified struct with no body yet. Names are
// uniqued by appending a numeric suffix, as LLVM does.
func (c *Catalog) NamedStruct(name string) llvm.TypeRef {
	unique := name
	for i := 0; ; i++ {
		if _, taken := c.types.byName[unique]; !taken {
			break
		}
		unique = name + "." + strconv.Itoa(i)
	}
	ty := c.types.appendRaw(typeInfo{kind: vocab.StructTypeKind, name: unique, opaque: true})
	if unique != "" {
		c.types.byName[unique] = ty
	}
	return ty
}

// SetBody gives an identified struct its fields. The fields may refer to
// st itself.
func (c *Catalog) SetBody(st llvm.TypeRef, fields []llvm.TypeRef, packed bool) {
	t := c.types.lookupKind(st, vocab.StructTypeKind)
	if !t.opaque && t.name == "" {
		panic(fmt.Sprintf("inproc: %s is a literal struct", st))
	}
	c.types.check(fields...)
	t.list = cloneRefs(fields)
	t.packed = packed
	t.opaque = false
}

// StructName returns the name of an identified struct.
func (c *Catalog) StructName(st llvm.TypeRef) (string, bool) {
	t := c.types.lookupKind(st, vocab.StructTypeKind)
	return t.name, t.name != ""
}

// LookupStruct finds an identified struct by name.
func (c *Catalog) LookupStruct(name string) (llvm.TypeRef, bool) {
	ty, ok := c.types.byName[name]
	return ty, ok
}

// IsOpaqueStruct reports whether st is an identified struct without body.
func (c *Catalog) IsOpaqueStruct(st llvm.TypeRef) bool {
	return c.types.lookupKind(st, vocab.StructTypeKind).opaque
}

// Array returns [n x elem].
func (c *Catalog) Array(elem llvm.TypeRef, n uint64) llvm.TypeRef {
	c.types.check(elem)
	return c.types.intern(typeInfo{kind: vocab.ArrayTypeKind, elem: elem, count: n})
}

// Pointer returns a pointer to elem in address space 0.
func (c *Catalog) Pointer(elem llvm.TypeRef) llvm.TypeRef { return c.PointerIn(elem, 0) }

// PointerIn returns a pointer to elem in the given address space.
func (c *Catalog) PointerIn(elem llvm.TypeRef, addrSpace uint32) llvm.TypeRef {
	c.types.check(elem)
	return c.types.intern(typeInfo{kind: vocab.PointerTypeKind, elem: elem, addr: addrSpace})
}

// Vector returns <n x elem>.
func (c *Catalog) Vector(elem llvm.TypeRef, n uint32) llvm.TypeRef {
	if n == 0 {
		panic("inproc: zero-length vector")
	}
	c.types.check(elem)
	return c.types.intern(typeInfo{kind: vocab.VectorTypeKind, elem: elem, count: uint64(n)})
}

// IsVariadic reports whether the function type takes trailing varargs.
func (c *Catalog) IsVariadic(fn llvm.TypeRef) bool {
	return c.types.lookupKind(fn, vocab.FunctionTypeKind).variadic
}

func cloneRefs(in []llvm.TypeRef) []llvm.TypeRef {
	if len(in) == 0 {
		return nil
	}
	return append([]llvm.TypeRef(nil), in...)
}

// TypeInspector

func (c *Catalog) TypeKind(ty llvm.TypeRef) vocab.TypeKind { return c.types.lookup(ty).kind }

func (c *Catalog) IntTypeWidth(ty llvm.TypeRef) uint32 {
	return c.types.lookupKind(ty, vocab.IntegerTypeKind).width
}

func (c *Catalog) ReturnType(fn llvm.TypeRef) llvm.TypeRef {
	return c.types.lookupKind(fn, vocab.FunctionTypeKind).ret
}

func (c *Catalog) ParamTypes(fn llvm.TypeRef) []llvm.TypeRef {
	return cloneRefs(c.types.lookupKind(fn, vocab.FunctionTypeKind).list)
}

func (c *Catalog) StructElementTypes(st llvm.TypeRef) []llvm.TypeRef {
	return cloneRefs(c.types.lookupKind(st, vocab.StructTypeKind).list)
}

func (c *Catalog) ElementType(ty llvm.TypeRef) llvm.TypeRef {
	return c.types.lookupKind(ty, vocab.ArrayTypeKind, vocab.PointerTypeKind, vocab.VectorTypeKind).elem
}

func (c *Catalog) ArrayLength(arr llvm.TypeRef) uint64 {
	return c.types.lookupKind(arr, vocab.ArrayTypeKind).count
}

func (c *Catalog) VectorSize(vec llvm.TypeRef) uint32 {
	n, err := safecast.Conv[uint32](c.types.lookupKind(vec, vocab.VectorTypeKind).count)
	if err != nil {
		panic(fmt.Errorf("vector size overflow: %w", err))
	}
	return n
}

func (c *Catalog) IsPackedStruct(st llvm.TypeRef) bool {
	return c.types.lookupKind(st, vocab.StructTypeKind).packed
}

func (c *Catalog) PointerAddressSpace(ptr llvm.TypeRef) uint32 {
	return c.types.lookupKind(ptr, vocab.PointerTypeKind).addr
}

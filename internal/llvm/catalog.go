package llvm

import "llbridge/internal/llvm/vocab"

// TypeInspector is the set of structural accessors the type registry needs.
type TypeInspector interface {
	TypeKind(ty TypeRef) vocab.TypeKind
	IntTypeWidth(ty TypeRef) uint32
	ReturnType(fn TypeRef) TypeRef
	ParamTypes(fn TypeRef) []TypeRef
	StructElementTypes(st TypeRef) []TypeRef
	// ElementType is defined for array, pointer and vector types.
	ElementType(ty TypeRef) TypeRef
	ArrayLength(arr TypeRef) uint64
	VectorSize(vec TypeRef) uint32
	TypeOf(v ValueRef) TypeRef
}

// TargetDataCatalog creates, queries and disposes target data.
type TargetDataCatalog interface {
	// CreateTargetData never fails; the layout string must already be valid.
	CreateTargetData(layout string) TargetDataRef
	DisposeTargetData(td TargetDataRef)
	CopyStringRepOfTargetData(td TargetDataRef) string
	ByteOrder(td TargetDataRef) ByteOrder
	PointerSize(td TargetDataRef) uint32
	SizeOfTypeInBits(td TargetDataRef, ty TypeRef) uint64
	StoreSizeOfType(td TargetDataRef, ty TypeRef) uint64
	ABISizeOfType(td TargetDataRef, ty TypeRef) uint64
	ABIAlignmentOfType(td TargetDataRef, ty TypeRef) uint32
	CallFrameAlignmentOfType(td TargetDataRef, ty TypeRef) uint32
	PreferredAlignmentOfType(td TargetDataRef, ty TypeRef) uint32
	OffsetOfElement(td TargetDataRef, st TypeRef, idx uint32) uint64
	ElementAtOffset(td TargetDataRef, st TypeRef, offset uint64) uint32
}

// PassManagerCatalog is the legacy pass manager surface.
type PassManagerCatalog interface {
	CreatePassManager() PassManagerRef
	DisposePassManager(pm PassManagerRef)
	// AddPass appends a pass by its registry name and reports whether the
	// backend knows it.
	AddPass(pm PassManagerRef, name string) bool
	AddTargetData(td TargetDataRef, pm PassManagerRef)
	RunPassManager(pm PassManagerRef, m ModuleRef) bool
}

// ObjectCatalog covers memory buffers, object files and their sections.
type ObjectCatalog interface {
	CreateMemoryBufferWithMemoryRangeCopy(data []byte, name string) MemoryBufferRef
	DisposeMemoryBuffer(buf MemoryBufferRef)
	// CreateObjectFile returns a nil handle when the buffer is not a
	// recognised object format. On success the object file owns buf.
	CreateObjectFile(buf MemoryBufferRef) ObjectFileRef
	DisposeObjectFile(obj ObjectFileRef)
	GetSections(obj ObjectFileRef) SectionIteratorRef
	DisposeSectionIterator(si SectionIteratorRef)
	IsSectionIteratorAtEnd(obj ObjectFileRef, si SectionIteratorRef) bool
	MoveToNextSection(si SectionIteratorRef)
	SectionName(si SectionIteratorRef) string
	SectionSize(si SectionIteratorRef) uint64
	SectionAddress(si SectionIteratorRef) uint64
	SectionContents(si SectionIteratorRef) []byte
}

// Catalog is the slice of the foreign function catalog this package uses.
// Every method is a single blocking foreign call.
type Catalog interface {
	TypeInspector
	TargetDataCatalog
	PassManagerCatalog
	ObjectCatalog
}

package llvm

// TargetData owns a backend target-data descriptor.
type TargetData struct {
	h   *Owned[TargetDataRef]
	cat TargetDataCatalog
}

// NewTargetData creates target data from a data-layout string.
func NewTargetData(cat TargetDataCatalog, layout string) TargetData {
	raw := cat.CreateTargetData(layout)
	return TargetData{h: Acquire(raw, cat.DisposeTargetData), cat: cat}
}

// Share returns an independent reference to the same descriptor.
func (td TargetData) Share() TargetData {
	return TargetData{h: td.h.Share(), cat: td.cat}
}

// Release drops this reference.
func (td TargetData) Release() { td.h.Release() }

// Raw returns the backend handle.
func (td TargetData) Raw() TargetDataRef { return td.h.Raw() }

// Valid reports whether td holds a live reference.
func (td TargetData) Valid() bool { return td.h != nil && !td.h.Released() }

func (td TargetData) StringRep() string {
	return td.cat.CopyStringRepOfTargetData(td.Raw())
}

func (td TargetData) ByteOrder() ByteOrder { return td.cat.ByteOrder(td.Raw()) }

// PointerSize is the size of a default address-space pointer in bytes.
func (td TargetData) PointerSize() uint32 { return td.cat.PointerSize(td.Raw()) }

func (td TargetData) SizeInBits(ty TypeRef) uint64 {
	return td.cat.SizeOfTypeInBits(td.Raw(), ty)
}

// StoreSize is the number of bytes a store of ty may overwrite.
func (td TargetData) StoreSize(ty TypeRef) uint64 {
	return td.cat.StoreSizeOfType(td.Raw(), ty)
}

// ABISize is the allocation stride of ty, including tail padding.
func (td TargetData) ABISize(ty TypeRef) uint64 {
	return td.cat.ABISizeOfType(td.Raw(), ty)
}

func (td TargetData) ABIAlign(ty TypeRef) uint32 {
	return td.cat.ABIAlignmentOfType(td.Raw(), ty)
}

func (td TargetData) CallFrameAlign(ty TypeRef) uint32 {
	return td.cat.CallFrameAlignmentOfType(td.Raw(), ty)
}

func (td TargetData) PreferredAlign(ty TypeRef) uint32 {
	return td.cat.PreferredAlignmentOfType(td.Raw(), ty)
}

// OffsetOfElement is the byte offset of field idx within struct st.
func (td TargetData) OffsetOfElement(st TypeRef, idx uint32) uint64 {
	return td.cat.OffsetOfElement(td.Raw(), st, idx)
}

// ElementAtOffset is the index of the field of st containing offset.
func (td TargetData) ElementAtOffset(st TypeRef, offset uint64) uint32 {
	return td.cat.ElementAtOffset(td.Raw(), st, offset)
}

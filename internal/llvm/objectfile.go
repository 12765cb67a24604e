package llvm

import "errors"

// ErrNotObjectFile is returned when the backend rejects a buffer.
var ErrNotObjectFile = errors.New("not a recognised object file")

// ObjectFile owns a backend object file.
type ObjectFile struct {
	h   *Owned[ObjectFileRef]
	cat ObjectCatalog
}

// NewObjectFile wraps the object file parsed from buf. It returns false,
// and allocates nothing, when the backend does not recognise the buffer;
// buf then still belongs to the caller. On success buf belongs to the
// object file.
func NewObjectFile(cat ObjectCatalog, buf MemoryBufferRef) (ObjectFile, bool) {
	raw := cat.CreateObjectFile(buf)
	if raw.IsNil() {
		return ObjectFile{}, false
	}
	return ObjectFile{h: Acquire(raw, cat.DisposeObjectFile), cat: cat}, true
}

// NewObjectFileFromBytes copies data into a memory buffer and parses it.
// The buffer is disposed here when parsing fails.
func NewObjectFileFromBytes(cat ObjectCatalog, name string, data []byte) (ObjectFile, error) {
	buf := cat.CreateMemoryBufferWithMemoryRangeCopy(data, name)
	obj, ok := NewObjectFile(cat, buf)
	if !ok {
		cat.DisposeMemoryBuffer(buf)
		return ObjectFile{}, ErrNotObjectFile
	}
	return obj, nil
}

// Share returns an independent reference to the same object file.
func (o ObjectFile) Share() ObjectFile {
	return ObjectFile{h: o.h.Share(), cat: o.cat}
}

// Release drops this reference.
func (o ObjectFile) Release() { o.h.Release() }

// Raw returns the backend handle.
func (o ObjectFile) Raw() ObjectFileRef { return o.h.Raw() }

// Valid reports whether o holds a live reference.
func (o ObjectFile) Valid() bool { return o.h != nil && !o.h.Released() }

// Sections starts a section iterator over o.
func (o ObjectFile) Sections() SectionIter { return NewSectionIter(o) }

// SectionIter owns a backend section iterator. It holds its own reference
// to the object file, so the object file outlives the iterator even when
// the caller releases theirs first.
type SectionIter struct {
	h   *Owned[SectionIteratorRef]
	obj ObjectFile
}

// NewSectionIter positions a new iterator on the first section of obj.
func NewSectionIter(obj ObjectFile) SectionIter {
	cat := obj.cat
	raw := cat.GetSections(obj.Raw())
	return SectionIter{h: Acquire(raw, cat.DisposeSectionIterator), obj: obj.Share()}
}

// Share returns an independent reference to the same iterator. Both
// references observe the same position.
func (si SectionIter) Share() SectionIter {
	return SectionIter{h: si.h.Share(), obj: si.obj.Share()}
}

// Release drops this reference and the object file share it holds.
func (si SectionIter) Release() {
	if si.h == nil || si.h.Released() {
		return
	}
	si.h.Release()
	si.obj.Release()
}

// Raw returns the backend handle.
func (si SectionIter) Raw() SectionIteratorRef { return si.h.Raw() }

func (si SectionIter) AtEnd() bool {
	return si.obj.cat.IsSectionIteratorAtEnd(si.obj.Raw(), si.Raw())
}

func (si SectionIter) Next() { si.obj.cat.MoveToNextSection(si.Raw()) }

func (si SectionIter) Name() string { return si.obj.cat.SectionName(si.Raw()) }

func (si SectionIter) Size() uint64 { return si.obj.cat.SectionSize(si.Raw()) }

func (si SectionIter) Address() uint64 { return si.obj.cat.SectionAddress(si.Raw()) }

// Contents returns a copy of the section bytes.
func (si SectionIter) Contents() []byte { return si.obj.cat.SectionContents(si.Raw()) }

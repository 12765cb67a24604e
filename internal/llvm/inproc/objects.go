package inproc

import (
	"bytes"
	"debug/elf"
	"debug/macho"
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"

	"fortio.org/safecast"

	"llbridge/internal/llvm"
)

type memBuffer struct {
	name  string
	data  []byte
	owner llvm.ObjectFileRef // set once an object file took the buffer
}

type section struct {
	name string
	size uint64
	addr uint64
	off  uint64 // content range in the buffer; n == 0 for zero-fill
	n    uint64
}

type objectFile struct {
	buf      llvm.MemoryBufferRef
	format   string
	sections []section
	iters    int
}

type sectionIter struct {
	obj llvm.ObjectFileRef
	idx int
}

var errTruncated = errors.New("section extends past end of buffer")

func (c *Catalog) CreateMemoryBufferWithMemoryRangeCopy(data []byte, name string) llvm.MemoryBufferRef {
	buf := llvm.MemoryBufferRef(c.alloc())
	c.buffers[buf] = &memBuffer{name: name, data: bytes.Clone(data)}
	return buf
}

func (c *Catalog) DisposeMemoryBuffer(buf llvm.MemoryBufferRef) {
	b, ok := c.buffers[buf]
	if !ok {
		badDispose(buf)
	}
	if !b.owner.IsNil() {
		panic(fmt.Sprintf("inproc: dispose of %s owned by %s", buf, b.owner))
	}
	delete(c.buffers, buf)
	c.disposed++
}

// BufferName returns the identifier a memory buffer was created with.
func (c *Catalog) BufferName(buf llvm.MemoryBufferRef) string {
	b, ok := c.buffers[buf]
	if !ok {
		panic("inproc: use of unknown " + buf.String())
	}
	return b.name
}

// CreateObjectFile returns the null handle when buf holds no ELF, Mach-O
// or COFF/PE image, or when the image is malformed. The buffer is left
// untouched in that case.
func (c *Catalog) CreateObjectFile(buf llvm.MemoryBufferRef) llvm.ObjectFileRef {
	b, ok := c.buffers[buf]
	if !ok {
		panic("inproc: use of unknown " + buf.String())
	}
	if !b.owner.IsNil() {
		panic(fmt.Sprintf("inproc: %s already owned by %s", buf, b.owner))
	}
	format, sections, err := parseObject(b.data)
	if err != nil {
		return 0
	}
	obj := llvm.ObjectFileRef(c.alloc())
	c.objects[obj] = &objectFile{buf: buf, format: format, sections: sections}
	b.owner = obj
	return obj
}

func (c *Catalog) DisposeObjectFile(obj llvm.ObjectFileRef) {
	o, ok := c.objects[obj]
	if !ok {
		badDispose(obj)
	}
	if o.iters > 0 {
		panic(fmt.Sprintf("inproc: dispose of %s with %d live section iterators", obj, o.iters))
	}
	delete(c.buffers, o.buf)
	delete(c.objects, obj)
	c.disposed += 2
}

func (c *Catalog) object(obj llvm.ObjectFileRef) *objectFile {
	o, ok := c.objects[obj]
	if !ok {
		panic("inproc: use of unknown " + obj.String())
	}
	return o
}

// ObjectFormat names the container format of obj, for example "elf64".
func (c *Catalog) ObjectFormat(obj llvm.ObjectFileRef) string { return c.object(obj).format }

func (c *Catalog) GetSections(obj llvm.ObjectFileRef) llvm.SectionIteratorRef {
	o := c.object(obj)
	si := llvm.SectionIteratorRef(c.alloc())
	c.iters[si] = &sectionIter{obj: obj}
	o.iters++
	return si
}

func (c *Catalog) DisposeSectionIterator(si llvm.SectionIteratorRef) {
	it, ok := c.iters[si]
	if !ok {
		badDispose(si)
	}
	c.object(it.obj).iters--
	delete(c.iters, si)
	c.disposed++
}

func (c *Catalog) iter(si llvm.SectionIteratorRef) (*sectionIter, *objectFile) {
	it, ok := c.iters[si]
	if !ok {
		panic("inproc: use of unknown " + si.String())
	}
	return it, c.object(it.obj)
}

func (c *Catalog) current(si llvm.SectionIteratorRef) (section, *objectFile) {
	it, o := c.iter(si)
	if it.idx >= len(o.sections) {
		panic("inproc: " + si.String() + " is at end")
	}
	return o.sections[it.idx], o
}

func (c *Catalog) IsSectionIteratorAtEnd(obj llvm.ObjectFileRef, si llvm.SectionIteratorRef) bool {
	it, o := c.iter(si)
	if it.obj != obj {
		panic(fmt.Sprintf("inproc: %s does not belong to %s", si, obj))
	}
	return it.idx >= len(o.sections)
}

func (c *Catalog) MoveToNextSection(si llvm.SectionIteratorRef) {
	it, o := c.iter(si)
	if it.idx < len(o.sections) {
		it.idx++
	}
}

func (c *Catalog) SectionName(si llvm.SectionIteratorRef) string {
	s, _ := c.current(si)
	return s.name
}

func (c *Catalog) SectionSize(si llvm.SectionIteratorRef) uint64 {
	s, _ := c.current(si)
	return s.size
}

func (c *Catalog) SectionAddress(si llvm.SectionIteratorRef) uint64 {
	s, _ := c.current(si)
	return s.addr
}

func (c *Catalog) SectionContents(si llvm.SectionIteratorRef) []byte {
	s, o := c.current(si)
	if s.n == 0 {
		return nil
	}
	// ranges were checked against the buffer when the object was parsed
	data := c.buffers[o.buf].data
	return bytes.Clone(data[s.off : s.off+s.n])
}

func parseObject(data []byte) (string, []section, error) {
	switch {
	case len(data) >= 4 && string(data[:4]) == elf.ELFMAG:
		return parseELF(data)
	case isMachO(data):
		return parseMachO(data)
	case isCOFF(data):
		return parsePE(data)
	default:
		return "", nil, llvm.ErrNotObjectFile
	}
}

func isMachO(data []byte) bool {
	if len(data) < 4 {
		return false
	}
	switch binary.LittleEndian.Uint32(data) {
	case macho.Magic32, macho.Magic64:
		return true
	}
	switch binary.BigEndian.Uint32(data) {
	case macho.Magic32, macho.Magic64:
		return true
	}
	return false
}

// isCOFF accepts PE images and bare COFF objects for the common machines.
func isCOFF(data []byte) bool {
	if len(data) >= 2 && data[0] == 'M' && data[1] == 'Z' {
		return true
	}
	if len(data) < 20 {
		return false
	}
	switch binary.LittleEndian.Uint16(data) {
	case pe.IMAGE_FILE_MACHINE_I386, pe.IMAGE_FILE_MACHINE_AMD64,
		pe.IMAGE_FILE_MACHINE_ARM64, pe.IMAGE_FILE_MACHINE_ARMNT:
		return true
	}
	return false
}

func checkRange(data []byte, off, n uint64) error {
	size, err := safecast.Conv[uint64](len(data))
	if err != nil {
		return err
	}
	if off > size || n > size-off {
		return errTruncated
	}
	return nil
}

func parseELF(data []byte) (string, []section, error) {
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	format := "elf32"
	if f.Class == elf.ELFCLASS64 {
		format = "elf64"
	}
	sections := make([]section, 0, len(f.Sections))
	for _, s := range f.Sections {
		sec := section{name: s.Name, size: s.Size, addr: s.Addr}
		if s.Type != elf.SHT_NOBITS && s.Type != elf.SHT_NULL {
			sec.off, sec.n = s.Offset, s.FileSize
			if err := checkRange(data, sec.off, sec.n); err != nil {
				return "", nil, fmt.Errorf("%s: %w", s.Name, err)
			}
		}
		sections = append(sections, sec)
	}
	return format, sections, nil
}

func parseMachO(data []byte) (string, []section, error) {
	f, err := macho.NewFile(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	format := "macho32"
	if f.Magic == macho.Magic64 {
		format = "macho64"
	}
	sections := make([]section, 0, len(f.Sections))
	for _, s := range f.Sections {
		sec := section{name: s.Name, size: s.Size, addr: s.Addr}
		switch s.Flags & 0xff {
		case 0x1, 0xc, 0x12: // S_ZEROFILL, S_GB_ZEROFILL, S_THREAD_LOCAL_ZEROFILL
		default:
			sec.off, sec.n = uint64(s.Offset), s.Size
			if err := checkRange(data, sec.off, sec.n); err != nil {
				return "", nil, fmt.Errorf("%s: %w", s.Name, err)
			}
		}
		sections = append(sections, sec)
	}
	return format, sections, nil
}

func parsePE(data []byte) (string, []section, error) {
	f, err := pe.NewFile(bytes.NewReader(data))
	if err != nil {
		return "", nil, err
	}
	format := "coff"
	var imageBase uint64
	switch oh := f.OptionalHeader.(type) {
	case *pe.OptionalHeader32:
		format, imageBase = "pe32", uint64(oh.ImageBase)
	case *pe.OptionalHeader64:
		format, imageBase = "pe32+", oh.ImageBase
	}
	sections := make([]section, 0, len(f.Sections))
	for _, s := range f.Sections {
		size := uint64(s.Size)
		addr := uint64(s.VirtualAddress)
		if format != "coff" {
			// images report the mapped size and the loaded address
			if s.VirtualSize != 0 && s.VirtualSize < s.Size {
				size = uint64(s.VirtualSize)
			}
			addr += imageBase
		}
		sec := section{name: s.Name, size: size, addr: addr}
		if s.Offset != 0 {
			sec.off, sec.n = uint64(s.Offset), size
			if err := checkRange(data, sec.off, sec.n); err != nil {
				return "", nil, fmt.Errorf("%s: %w", s.Name, err)
			}
		}
		sections = append(sections, sec)
	}
	return format, sections, nil
}

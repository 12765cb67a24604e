package testkit

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
)

// MinimalELF section names and sizes, in section-table order after the
// null section.
var MinimalELFSections = []struct {
	Name string
	Size uint64
	Addr uint64
}{
	{".text", 3, 0x1000},
	{".bss", 16, 0x2000},
	{".shstrtab", 22, 0},
}

// MinimalELFText is the content of the .text section of MinimalELF.
var MinimalELFText = []byte{0x90, 0x90, 0xc3}

// MinimalELF builds a little-endian ELF64 relocatable object with a
// .text, a .bss and a section-name table.
func MinimalELF() []byte {
	const (
		textOff   = 64
		strtabOff = textOff + 4
		shoff     = 96
	)
	strtab := []byte("\x00.text\x00.bss\x00.shstrtab\x00")

	var hdr elf.Header64
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	hdr.Type = uint16(elf.ET_REL)
	hdr.Machine = uint16(elf.EM_X86_64)
	hdr.Version = uint32(elf.EV_CURRENT)
	hdr.Shoff = shoff
	hdr.Ehsize = 64
	hdr.Shentsize = 64
	hdr.Shnum = 4
	hdr.Shstrndx = 3

	sections := []elf.Section64{
		{},
		{
			Name: 1, Type: uint32(elf.SHT_PROGBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Addr: 0x1000, Off: textOff, Size: uint64(len(MinimalELFText)), Addralign: 1,
		},
		{
			Name: 7, Type: uint32(elf.SHT_NOBITS), Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE),
			Addr: 0x2000, Off: strtabOff, Size: 16, Addralign: 8,
		},
		{
			Name: 12, Type: uint32(elf.SHT_STRTAB), Off: strtabOff, Size: uint64(len(strtab)), Addralign: 1,
		},
	}

	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, &hdr)
	buf.Write(MinimalELFText)
	buf.WriteByte(0)
	buf.Write(strtab)
	buf.Write(make([]byte, shoff-buf.Len()))
	for i := range sections {
		_ = binary.Write(&buf, binary.LittleEndian, &sections[i])
	}
	return buf.Bytes()
}

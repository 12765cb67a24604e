package llvm

import "fmt"

// Opaque backend handles. Each category is its own type so a TypeRef
// cannot be passed where a ValueRef is expected without an explicit
// conversion. The zero value is the null handle. The core never looks
// behind a handle; it only hands it back to the catalog.

type (
	ContextRef         uintptr
	ModuleRef          uintptr
	TypeRef            uintptr
	ValueRef           uintptr
	BasicBlockRef      uintptr
	BuilderRef         uintptr
	MemoryBufferRef    uintptr
	PassManagerRef     uintptr
	TargetDataRef      uintptr
	ObjectFileRef      uintptr
	SectionIteratorRef uintptr
)

func (r ContextRef) IsNil() bool         { return r == 0 }
func (r ModuleRef) IsNil() bool          { return r == 0 }
func (r TypeRef) IsNil() bool            { return r == 0 }
func (r ValueRef) IsNil() bool           { return r == 0 }
func (r BasicBlockRef) IsNil() bool      { return r == 0 }
func (r BuilderRef) IsNil() bool         { return r == 0 }
func (r MemoryBufferRef) IsNil() bool    { return r == 0 }
func (r PassManagerRef) IsNil() bool     { return r == 0 }
func (r TargetDataRef) IsNil() bool      { return r == 0 }
func (r ObjectFileRef) IsNil() bool      { return r == 0 }
func (r SectionIteratorRef) IsNil() bool { return r == 0 }

func (r TypeRef) String() string            { return fmt.Sprintf("type@%#x", uintptr(r)) }
func (r ValueRef) String() string           { return fmt.Sprintf("value@%#x", uintptr(r)) }
func (r PassManagerRef) String() string     { return fmt.Sprintf("passmanager@%#x", uintptr(r)) }
func (r TargetDataRef) String() string      { return fmt.Sprintf("targetdata@%#x", uintptr(r)) }
func (r ObjectFileRef) String() string      { return fmt.Sprintf("objectfile@%#x", uintptr(r)) }
func (r SectionIteratorRef) String() string { return fmt.Sprintf("sections@%#x", uintptr(r)) }
func (r MemoryBufferRef) String() string    { return fmt.Sprintf("membuf@%#x", uintptr(r)) }

// ByteOrder is the endianness reported by target data.
type ByteOrder uint8

const (
	BigEndian    ByteOrder = 0
	LittleEndian ByteOrder = 1
)

func (b ByteOrder) String() string {
	if b == BigEndian {
		return "big"
	}
	return "little"
}

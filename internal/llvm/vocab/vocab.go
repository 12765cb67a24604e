// Package vocab holds the fixed constant tables of the LLVM C API.
//
// Every value here must equal the numbering in llvm-c/Core.h for the
// backend version the catalog was built against. The tables carry no
// behaviour beyond printing and parsing; a mismatch is a silent
// miscompile, which is why vocab_test.go pins each value.
package vocab

import (
	"fmt"
	"strings"
)

// CallConv is an LLVMCallConv value.
type CallConv uint32

const (
	CCallConv           CallConv = 0
	FastCallConv        CallConv = 8
	ColdCallConv        CallConv = 9
	X86StdcallCallConv  CallConv = 64
	X86FastcallCallConv CallConv = 65
)

var callConvNames = map[CallConv]string{
	CCallConv:           "ccc",
	FastCallConv:        "fastcc",
	ColdCallConv:        "coldcc",
	X86StdcallCallConv:  "x86_stdcallcc",
	X86FastcallCallConv: "x86_fastcallcc",
}

func (c CallConv) String() string {
	if s, ok := callConvNames[c]; ok {
		return s
	}
	return fmt.Sprintf("cc%d", uint32(c))
}

// ParseCallConv accepts the IR spelling of a calling convention.
func ParseCallConv(s string) (CallConv, error) {
	for cc, name := range callConvNames {
		if name == s {
			return cc, nil
		}
	}
	return 0, fmt.Errorf("invalid calling convention: %q", s)
}

// Visibility is an LLVMVisibility value.
type Visibility uint32

const (
	DefaultVisibility   Visibility = 0
	HiddenVisibility    Visibility = 1
	ProtectedVisibility Visibility = 2
)

func (v Visibility) String() string {
	switch v {
	case DefaultVisibility:
		return "default"
	case HiddenVisibility:
		return "hidden"
	case ProtectedVisibility:
		return "protected"
	default:
		return fmt.Sprintf("Visibility(%d)", uint32(v))
	}
}

// Linkage is an LLVMLinkage value.
type Linkage uint32

const (
	ExternalLinkage            Linkage = 0
	AvailableExternallyLinkage Linkage = 1
	LinkOnceAnyLinkage         Linkage = 2
	LinkOnceODRLinkage         Linkage = 3
	LinkOnceODRAutoHideLinkage Linkage = 4
	WeakAnyLinkage             Linkage = 5
	WeakODRLinkage             Linkage = 6
	AppendingLinkage           Linkage = 7
	InternalLinkage            Linkage = 8
	PrivateLinkage             Linkage = 9
	DLLImportLinkage           Linkage = 10
	DLLExportLinkage           Linkage = 11
	ExternalWeakLinkage        Linkage = 12
	GhostLinkage               Linkage = 13
	CommonLinkage              Linkage = 14
	LinkerPrivateLinkage       Linkage = 15
	LinkerPrivateWeakLinkage   Linkage = 16
)

var linkageNames = [...]string{
	"external",
	"available_externally",
	"linkonce",
	"linkonce_odr",
	"linkonce_odr_autohide",
	"weak",
	"weak_odr",
	"appending",
	"internal",
	"private",
	"dllimport",
	"dllexport",
	"extern_weak",
	"ghost",
	"common",
	"linker_private",
	"linker_private_weak",
}

func (l Linkage) String() string {
	if int(l) < len(linkageNames) {
		return linkageNames[l]
	}
	return fmt.Sprintf("Linkage(%d)", uint32(l))
}

// ParseLinkage accepts the IR spelling of a linkage.
func ParseLinkage(s string) (Linkage, error) {
	for i, name := range linkageNames {
		if name == s {
			return Linkage(i), nil
		}
	}
	return 0, fmt.Errorf("invalid linkage: %q", s)
}

// Attribute is a bit in the legacy LLVMAttribute mask.
type Attribute uint64

const (
	ZExtAttribute            Attribute = 1 << 0
	SExtAttribute            Attribute = 1 << 1
	NoReturnAttribute        Attribute = 1 << 2
	InRegAttribute           Attribute = 1 << 3
	StructRetAttribute       Attribute = 1 << 4
	NoUnwindAttribute        Attribute = 1 << 5
	NoAliasAttribute         Attribute = 1 << 6
	ByValAttribute           Attribute = 1 << 7
	NestAttribute            Attribute = 1 << 8
	ReadNoneAttribute        Attribute = 1 << 9
	ReadOnlyAttribute        Attribute = 1 << 10
	NoInlineAttribute        Attribute = 1 << 11
	AlwaysInlineAttribute    Attribute = 1 << 12
	OptimizeForSizeAttribute Attribute = 1 << 13
	StackProtectAttribute    Attribute = 1 << 14
	StackProtectReqAttribute Attribute = 1 << 15
	AlignmentAttribute       Attribute = 31 << 16
	NoCaptureAttribute       Attribute = 1 << 21
	NoRedZoneAttribute       Attribute = 1 << 22
	NoImplicitFloatAttribute Attribute = 1 << 23
	NakedAttribute           Attribute = 1 << 24
	InlineHintAttribute      Attribute = 1 << 25
	StackAttribute           Attribute = 7 << 26
	ReturnsTwiceAttribute    Attribute = 1 << 29
	UWTableAttribute         Attribute = 1 << 30
	NonLazyBindAttribute     Attribute = 1 << 31
)

var attributeNames = []struct {
	bit  Attribute
	name string
}{
	{ZExtAttribute, "zeroext"},
	{SExtAttribute, "signext"},
	{NoReturnAttribute, "noreturn"},
	{InRegAttribute, "inreg"},
	{StructRetAttribute, "sret"},
	{NoUnwindAttribute, "nounwind"},
	{NoAliasAttribute, "noalias"},
	{ByValAttribute, "byval"},
	{NestAttribute, "nest"},
	{ReadNoneAttribute, "readnone"},
	{ReadOnlyAttribute, "readonly"},
	{NoInlineAttribute, "noinline"},
	{AlwaysInlineAttribute, "alwaysinline"},
	{OptimizeForSizeAttribute, "optsize"},
	{StackProtectAttribute, "ssp"},
	{StackProtectReqAttribute, "sspreq"},
	{NoCaptureAttribute, "nocapture"},
	{NoRedZoneAttribute, "noredzone"},
	{NoImplicitFloatAttribute, "noimplicitfloat"},
	{NakedAttribute, "naked"},
	{InlineHintAttribute, "inlinehint"},
	{ReturnsTwiceAttribute, "returns_twice"},
	{UWTableAttribute, "uwtable"},
	{NonLazyBindAttribute, "nonlazybind"},
}

// Alignment extracts the encoded alignment field (log2 + 1, zero = unset).
func (a Attribute) Alignment() uint64 {
	return uint64(a&AlignmentAttribute) >> 16
}

// StackAlignment extracts the encoded alignstack field.
func (a Attribute) StackAlignment() uint64 {
	return uint64(a&StackAttribute) >> 26
}

// WithAlignment encodes an alignment in bytes into the mask; align must be
// a power of two no greater than 2^30.
func (a Attribute) WithAlignment(align uint64) Attribute {
	a &^= AlignmentAttribute
	if align == 0 {
		return a
	}
	log := uint64(0)
	for (uint64(1) << log) < align {
		log++
	}
	return a | Attribute((log+1)<<16)&AlignmentAttribute
}

func (a Attribute) String() string {
	if a == 0 {
		return ""
	}
	parts := make([]string, 0, 4)
	for _, n := range attributeNames {
		if a&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}
	if enc := a.Alignment(); enc != 0 {
		parts = append(parts, fmt.Sprintf("align %d", uint64(1)<<(enc-1)))
	}
	if enc := a.StackAlignment(); enc != 0 {
		parts = append(parts, fmt.Sprintf("alignstack(%d)", uint64(1)<<(enc-1)))
	}
	return strings.Join(parts, " ")
}

// ParseAttribute accepts a single attribute keyword.
func ParseAttribute(s string) (Attribute, error) {
	for _, n := range attributeNames {
		if n.name == s {
			return n.bit, nil
		}
	}
	return 0, fmt.Errorf("invalid attribute: %q", s)
}

// IntPredicate is an LLVMIntPredicate value.
type IntPredicate uint16

const (
	IntEQ  IntPredicate = 32
	IntNE  IntPredicate = 33
	IntUGT IntPredicate = 34
	IntUGE IntPredicate = 35
	IntULT IntPredicate = 36
	IntULE IntPredicate = 37
	IntSGT IntPredicate = 38
	IntSGE IntPredicate = 39
	IntSLT IntPredicate = 40
	IntSLE IntPredicate = 41
)

var intPredicateNames = [...]string{"eq", "ne", "ugt", "uge", "ult", "ule", "sgt", "sge", "slt", "sle"}

func (p IntPredicate) String() string {
	if p >= IntEQ && p <= IntSLE {
		return intPredicateNames[p-IntEQ]
	}
	return fmt.Sprintf("IntPredicate(%d)", uint16(p))
}

// Swapped returns the predicate that holds with the operands exchanged.
func (p IntPredicate) Swapped() IntPredicate {
	switch p {
	case IntUGT:
		return IntULT
	case IntUGE:
		return IntULE
	case IntULT:
		return IntUGT
	case IntULE:
		return IntUGE
	case IntSGT:
		return IntSLT
	case IntSGE:
		return IntSLE
	case IntSLT:
		return IntSGT
	case IntSLE:
		return IntSGE
	default:
		return p
	}
}

// RealPredicate is an LLVMRealPredicate value.
type RealPredicate uint16

const (
	RealPredicateFalse RealPredicate = 0
	RealOEQ            RealPredicate = 1
	RealOGT            RealPredicate = 2
	RealOGE            RealPredicate = 3
	RealOLT            RealPredicate = 4
	RealOLE            RealPredicate = 5
	RealONE            RealPredicate = 6
	RealORD            RealPredicate = 7
	RealUNO            RealPredicate = 8
	RealUEQ            RealPredicate = 9
	RealUGT            RealPredicate = 10
	RealUGE            RealPredicate = 11
	RealULT            RealPredicate = 12
	RealULE            RealPredicate = 13
	RealUNE            RealPredicate = 14
	RealPredicateTrue  RealPredicate = 15
)

var realPredicateNames = [...]string{
	"false", "oeq", "ogt", "oge", "olt", "ole", "one", "ord",
	"uno", "ueq", "ugt", "uge", "ult", "ule", "une", "true",
}

func (p RealPredicate) String() string {
	if int(p) < len(realPredicateNames) {
		return realPredicateNames[p]
	}
	return fmt.Sprintf("RealPredicate(%d)", uint16(p))
}

// Ordered reports whether the predicate is false whenever an operand is NaN.
func (p RealPredicate) Ordered() bool {
	return p >= RealOEQ && p <= RealORD
}

// AtomicBinOp is an LLVMAtomicRMWBinOp value.
type AtomicBinOp uint32

const (
	AtomicXchg AtomicBinOp = 0
	AtomicAdd  AtomicBinOp = 1
	AtomicSub  AtomicBinOp = 2
	AtomicAnd  AtomicBinOp = 3
	AtomicNand AtomicBinOp = 4
	AtomicOr   AtomicBinOp = 5
	AtomicXor  AtomicBinOp = 6
	AtomicMax  AtomicBinOp = 7
	AtomicMin  AtomicBinOp = 8
	AtomicUMax AtomicBinOp = 9
	AtomicUMin AtomicBinOp = 10
)

var atomicBinOpNames = [...]string{"xchg", "add", "sub", "and", "nand", "or", "xor", "max", "min", "umax", "umin"}

func (op AtomicBinOp) String() string {
	if int(op) < len(atomicBinOpNames) {
		return atomicBinOpNames[op]
	}
	return fmt.Sprintf("AtomicBinOp(%d)", uint32(op))
}

// AtomicOrdering is an LLVMAtomicOrdering value. 3 is reserved for consume.
type AtomicOrdering uint32

const (
	NotAtomic              AtomicOrdering = 0
	Unordered              AtomicOrdering = 1
	Monotonic              AtomicOrdering = 2
	Acquire                AtomicOrdering = 4
	Release                AtomicOrdering = 5
	AcquireRelease         AtomicOrdering = 6
	SequentiallyConsistent AtomicOrdering = 7
)

func (o AtomicOrdering) String() string {
	switch o {
	case NotAtomic:
		return "notatomic"
	case Unordered:
		return "unordered"
	case Monotonic:
		return "monotonic"
	case Acquire:
		return "acquire"
	case Release:
		return "release"
	case AcquireRelease:
		return "acq_rel"
	case SequentiallyConsistent:
		return "seq_cst"
	default:
		return fmt.Sprintf("AtomicOrdering(%d)", uint32(o))
	}
}

// FileType is an LLVMCodeGenFileType value.
type FileType uint32

const (
	AssemblyFile FileType = 0
	ObjectFile   FileType = 1
)

func (f FileType) String() string {
	switch f {
	case AssemblyFile:
		return "asm"
	case ObjectFile:
		return "obj"
	default:
		return fmt.Sprintf("FileType(%d)", uint32(f))
	}
}

// MetadataKind is a fixed metadata kind id.
type MetadataKind uint32

const (
	MDDbg        MetadataKind = 0
	MDTBAA       MetadataKind = 1
	MDProf       MetadataKind = 2
	MDFPMath     MetadataKind = 3
	MDRange      MetadataKind = 4
	MDTBAAStruct MetadataKind = 5
)

var metadataKindNames = [...]string{"dbg", "tbaa", "prof", "fpmath", "range", "tbaa.struct"}

func (m MetadataKind) String() string {
	if int(m) < len(metadataKindNames) {
		return metadataKindNames[m]
	}
	return fmt.Sprintf("MetadataKind(%d)", uint32(m))
}

// AsmDialect selects the inline assembly syntax.
type AsmDialect uint32

const (
	AsmDialectATT   AsmDialect = 0
	AsmDialectIntel AsmDialect = 1
)

func (d AsmDialect) String() string {
	switch d {
	case AsmDialectATT:
		return "att"
	case AsmDialectIntel:
		return "intel"
	default:
		return fmt.Sprintf("AsmDialect(%d)", uint32(d))
	}
}

// DIFlags are debug-info descriptor flags.
type DIFlags uint32

const (
	FlagPrivate           DIFlags = 1 << 0
	FlagProtected         DIFlags = 1 << 1
	FlagFwdDecl           DIFlags = 1 << 2
	FlagAppleBlock        DIFlags = 1 << 3
	FlagBlockByrefStruct  DIFlags = 1 << 4
	FlagVirtual           DIFlags = 1 << 5
	FlagArtificial        DIFlags = 1 << 6
	FlagExplicit          DIFlags = 1 << 7
	FlagPrototyped        DIFlags = 1 << 8
	FlagObjcClassComplete DIFlags = 1 << 9
	FlagObjectPointer     DIFlags = 1 << 10
	FlagVector            DIFlags = 1 << 11
	FlagStaticMember      DIFlags = 1 << 12
)

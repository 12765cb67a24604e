package vocab

import (
	"fmt"
	"strings"
)

// TypeKind mirrors LLVMTypeKind in llvm-c/Core.h.
type TypeKind uint32

const (
	VoidTypeKind           TypeKind = 0
	HalfTypeKind           TypeKind = 1
	FloatTypeKind          TypeKind = 2
	DoubleTypeKind         TypeKind = 3
	X86FP80TypeKind        TypeKind = 4
	FP128TypeKind          TypeKind = 5
	PPCFP128TypeKind       TypeKind = 6
	LabelTypeKind          TypeKind = 7
	IntegerTypeKind        TypeKind = 8
	FunctionTypeKind       TypeKind = 9
	StructTypeKind         TypeKind = 10
	ArrayTypeKind          TypeKind = 11
	PointerTypeKind        TypeKind = 12
	VectorTypeKind         TypeKind = 13
	MetadataTypeKind       TypeKind = 14
	X86MMXTypeKind         TypeKind = 15
	TokenTypeKind          TypeKind = 16
	ScalableVectorTypeKind TypeKind = 17
	BFloatTypeKind         TypeKind = 18
	X86AMXTypeKind         TypeKind = 19
	TargetExtTypeKind      TypeKind = 20
)

// Literal is the fixed rendering of a primitive kind. Composite kinds
// return ok == false.
func (k TypeKind) Literal() (string, bool) {
	switch k {
	case VoidTypeKind:
		return "Void", true
	case HalfTypeKind:
		return "Half", true
	case FloatTypeKind:
		return "Float", true
	case DoubleTypeKind:
		return "Double", true
	case X86FP80TypeKind:
		return "X86_FP80", true
	case FP128TypeKind:
		return "FP128", true
	case PPCFP128TypeKind:
		return "PPC_FP128", true
	case LabelTypeKind:
		return "Label", true
	case MetadataTypeKind:
		return "Metadata", true
	case X86MMXTypeKind:
		return "X86_MMX", true
	default:
		return "", false
	}
}

// IsPrimitive reports whether the kind renders as a fixed literal.
func (k TypeKind) IsPrimitive() bool {
	_, ok := k.Literal()
	return ok
}

// IsFloatingPoint reports whether the kind is one of the IEEE-ish formats.
func (k TypeKind) IsFloatingPoint() bool {
	switch k {
	case HalfTypeKind, FloatTypeKind, DoubleTypeKind, X86FP80TypeKind,
		FP128TypeKind, PPCFP128TypeKind, BFloatTypeKind:
		return true
	default:
		return false
	}
}

func (k TypeKind) String() string {
	switch k {
	case IntegerTypeKind:
		return "Integer"
	case FunctionTypeKind:
		return "Function"
	case StructTypeKind:
		return "Struct"
	case ArrayTypeKind:
		return "Array"
	case PointerTypeKind:
		return "Pointer"
	case VectorTypeKind:
		return "Vector"
	case TokenTypeKind:
		return "Token"
	case ScalableVectorTypeKind:
		return "ScalableVector"
	case BFloatTypeKind:
		return "BFloat"
	case X86AMXTypeKind:
		return "X86_AMX"
	case TargetExtTypeKind:
		return "TargetExt"
	}
	if lit, ok := k.Literal(); ok {
		return lit
	}
	return fmt.Sprintf("TypeKind(%d)", uint32(k))
}

// ParsePrimitive maps a primitive literal back to its kind. Matching is
// case-insensitive so config files may spell "double" or "Double".
func ParsePrimitive(s string) (TypeKind, bool) {
	for k := VoidTypeKind; k <= X86MMXTypeKind; k++ {
		if lit, ok := k.Literal(); ok && strings.EqualFold(lit, s) {
			return k, true
		}
	}
	return 0, false
}

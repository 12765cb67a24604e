package llvm

import (
	"fmt"

	"llbridge/internal/llvm/vocab"
)

// RegistryErrorKind enumerates consistency violations of TypeNames.
type RegistryErrorKind uint8

const (
	// RegistryNameTaken means the name is already bound.
	RegistryNameTaken RegistryErrorKind = iota + 1
	// RegistryTypeTaken means the type already has a name.
	RegistryTypeTaken
)

// RegistryError reports a broken one-to-one name binding.
type RegistryError struct {
	Kind     RegistryErrorKind
	Name     string
	Type     TypeRef
	Existing string  // for RegistryTypeTaken
	Bound    TypeRef // for RegistryNameTaken
}

func (e *RegistryError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case RegistryNameTaken:
		return fmt.Sprintf("type name %q already bound to %s (associating %s)", e.Name, e.Bound, e.Type)
	case RegistryTypeTaken:
		return fmt.Sprintf("%s already named %q (associating %q)", e.Type, e.Existing, e.Name)
	default:
		return fmt.Sprintf("type registry error kind=%d name=%q", e.Kind, e.Name)
	}
}

// UnknownTypeKindError is raised when the backend reports a kind the
// renderer has no rule for.
type UnknownTypeKindError struct {
	Kind vocab.TypeKind
	Type TypeRef
}

func (e *UnknownTypeKindError) Error() string {
	return fmt.Sprintf("unknown type kind (%d) for %s", uint32(e.Kind), e.Type)
}

// RecursiveTypeError is raised when an unnamed struct contains itself.
// Naming the struct with AssociateType lets it render.
type RecursiveTypeError struct {
	Type  TypeRef
	Cycle []TypeRef
}

func (e *RecursiveTypeError) Error() string {
	return fmt.Sprintf("unnamed recursive struct %s (cycle length %d); associate a name before rendering", e.Type, len(e.Cycle))
}

package llvm

import (
	"fmt"
	"sort"
	"strings"

	"llbridge/internal/llvm/vocab"
)

// TypeNames binds symbolic names to backend types, one to one, for the
// lifetime of a compilation session, and renders types as text.
//
// TypeNames is not safe for concurrent use.
type TypeNames struct {
	ti     TypeInspector
	byType map[TypeRef]string
	byName map[string]TypeRef
}

// NewTypeNames creates an empty registry that queries ti for structure.
func NewTypeNames(ti TypeInspector) *TypeNames {
	return &TypeNames{
		ti:     ti,
		byType: make(map[TypeRef]string, 64),
		byName: make(map[string]TypeRef, 64),
	}
}

// AssociateType binds name to ty. It panics with a *RegistryError when
// name is bound to another type or ty to another name. Repeating an
// existing pair is a no-op.
func (tn *TypeNames) AssociateType(name string, ty TypeRef) {
	if err := tn.TryAssociateType(name, ty); err != nil {
		panic(err)
	}
}

// TryAssociateType is AssociateType for callers binding untrusted input.
func (tn *TypeNames) TryAssociateType(name string, ty TypeRef) error {
	if bound, ok := tn.byName[name]; ok {
		if bound == ty {
			return nil
		}
		return &RegistryError{Kind: RegistryNameTaken, Name: name, Type: ty, Bound: bound}
	}
	if existing, ok := tn.byType[ty]; ok {
		return &RegistryError{Kind: RegistryTypeTaken, Name: name, Type: ty, Existing: existing}
	}
	tn.byType[ty] = name
	tn.byName[name] = ty
	return nil
}

// FindName returns the name bound to ty.
func (tn *TypeNames) FindName(ty TypeRef) (string, bool) {
	name, ok := tn.byType[ty]
	return name, ok
}

// FindType returns the type bound to name.
func (tn *TypeNames) FindType(name string) (TypeRef, bool) {
	ty, ok := tn.byName[name]
	return ty, ok
}

// Len is the number of bindings.
func (tn *TypeNames) Len() int { return len(tn.byName) }

// Names returns every bound name in sorted order.
func (tn *TypeNames) Names() []string {
	names := make([]string, 0, len(tn.byName))
	for name := range tn.byName {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Binding is one registry entry.
type Binding struct {
	Name string
	Type TypeRef
}

// Snapshot returns all bindings ordered by name.
func (tn *TypeNames) Snapshot() []Binding {
	out := make([]Binding, 0, len(tn.byName))
	for _, name := range tn.Names() {
		out = append(out, Binding{Name: name, Type: tn.byName[name]})
	}
	return out
}

// TypeToStr renders ty. A bound name wins over structure, which is what
// stops recursion through named aggregates. It panics with
// *UnknownTypeKindError for kinds it cannot render and with
// *RecursiveTypeError for unnamed self-referential structs.
func (tn *TypeNames) TypeToStr(ty TypeRef) string {
	s, err := tn.RenderType(ty)
	if err != nil {
		panic(err)
	}
	return s
}

// RenderType is TypeToStr returning the failure instead of panicking.
func (tn *TypeNames) RenderType(ty TypeRef) (string, error) {
	r := renderer{tn: tn}
	var sb strings.Builder
	if err := r.render(&sb, ty); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// ValToStr renders the type of v.
func (tn *TypeNames) ValToStr(v ValueRef) string {
	return tn.TypeToStr(tn.ti.TypeOf(v))
}

type renderer struct {
	tn    *TypeNames
	stack []TypeRef
}

func (r *renderer) render(sb *strings.Builder, ty TypeRef) error {
	if name, ok := r.tn.byType[ty]; ok {
		sb.WriteString(name)
		return nil
	}
	ti := r.tn.ti
	kind := ti.TypeKind(ty)
	if lit, ok := kind.Literal(); ok {
		sb.WriteString(lit)
		return nil
	}
	switch kind {
	case vocab.IntegerTypeKind:
		fmt.Fprintf(sb, "i%d", ti.IntTypeWidth(ty))
		return nil
	case vocab.FunctionTypeKind:
		sb.WriteString("fn(")
		if err := r.list(sb, ti.ParamTypes(ty)); err != nil {
			return err
		}
		sb.WriteString(") -> ")
		return r.render(sb, ti.ReturnType(ty))
	case vocab.StructTypeKind:
		for i, open := range r.stack {
			if open == ty {
				cycle := append([]TypeRef(nil), r.stack[i:]...)
				return &RecursiveTypeError{Type: ty, Cycle: cycle}
			}
		}
		r.stack = append(r.stack, ty)
		sb.WriteByte('{')
		if err := r.list(sb, ti.StructElementTypes(ty)); err != nil {
			return err
		}
		sb.WriteByte('}')
		r.stack = r.stack[:len(r.stack)-1]
		return nil
	case vocab.ArrayTypeKind:
		sb.WriteByte('[')
		if err := r.render(sb, ti.ElementType(ty)); err != nil {
			return err
		}
		fmt.Fprintf(sb, " x %d]", ti.ArrayLength(ty))
		return nil
	case vocab.PointerTypeKind:
		sb.WriteByte('*')
		return r.render(sb, ti.ElementType(ty))
	case vocab.VectorTypeKind:
		sb.WriteByte('<')
		if err := r.render(sb, ti.ElementType(ty)); err != nil {
			return err
		}
		fmt.Fprintf(sb, " x %d>", ti.VectorSize(ty))
		return nil
	default:
		return &UnknownTypeKindError{Kind: kind, Type: ty}
	}
}

func (r *renderer) list(sb *strings.Builder, tys []TypeRef) error {
	for i, ty := range tys {
		if i > 0 {
			sb.WriteString(", ")
		}
		if err := r.render(sb, ty); err != nil {
			return err
		}
	}
	return nil
}

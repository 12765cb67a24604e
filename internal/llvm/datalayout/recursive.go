package datalayout

import (
	"fmt"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/vocab"
)

// RecursiveError reports a struct that contains itself by value, directly
// or through arrays, vectors or other structs. Such a type has no finite
// size. Cycle lists the structs on the path, starting with Type.
type RecursiveError struct {
	Type  llvm.TypeRef
	Cycle []llvm.TypeRef
}

func (e *RecursiveError) Error() string {
	return fmt.Sprintf("%s contains itself by value (cycle of %d structs)", e.Type, len(e.Cycle))
}

// CheckSized fails with *RecursiveError when measuring ty would never
// terminate. Pointers end the walk, so self reference through a pointer
// is fine.
func CheckSized(t llvm.TypeInspector, ty llvm.TypeRef) error {
	c := sizedCheck{t: t, done: make(map[llvm.TypeRef]bool)}
	return c.walk(ty)
}

type sizedCheck struct {
	t     llvm.TypeInspector
	stack []llvm.TypeRef
	done  map[llvm.TypeRef]bool
}

func (c *sizedCheck) walk(ty llvm.TypeRef) error {
	switch c.t.TypeKind(ty) {
	case vocab.ArrayTypeKind, vocab.VectorTypeKind:
		return c.walk(c.t.ElementType(ty))
	case vocab.StructTypeKind:
		if c.done[ty] {
			return nil
		}
		if cycle := openCycle(c.stack, ty); cycle != nil {
			return &RecursiveError{Type: ty, Cycle: cycle}
		}
		c.stack = append(c.stack, ty)
		for _, f := range c.t.StructElementTypes(ty) {
			if err := c.walk(f); err != nil {
				return err
			}
		}
		c.stack = c.stack[:len(c.stack)-1]
		c.done[ty] = true
	}
	return nil
}

// openCycle returns the part of stack from ty onwards, or nil when ty is
// not on it.
func openCycle(stack []llvm.TypeRef, ty llvm.TypeRef) []llvm.TypeRef {
	for i, open := range stack {
		if open == ty {
			return append([]llvm.TypeRef(nil), stack[i:]...)
		}
	}
	return nil
}

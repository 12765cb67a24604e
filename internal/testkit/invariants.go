package testkit

import (
	"fmt"

	"llbridge/internal/llvm"
)

// CheckRegistryInvariants verifies that a type registry is one to one:
// 1) every binding is visible from both directions
// 2) no two names share a type
// 3) Len agrees with the number of bindings
func CheckRegistryInvariants(tn *llvm.TypeNames) error {
	if tn == nil {
		return fmt.Errorf("nil registry")
	}
	bindings := tn.Snapshot()
	if len(bindings) != tn.Len() {
		return fmt.Errorf("snapshot has %d bindings, Len reports %d", len(bindings), tn.Len())
	}
	seen := make(map[llvm.TypeRef]string, len(bindings))
	for _, b := range bindings {
		if b.Type.IsNil() {
			return fmt.Errorf("name %q bound to the null type", b.Name)
		}
		if prev, dup := seen[b.Type]; dup {
			return fmt.Errorf("%s bound to both %q and %q", b.Type, prev, b.Name)
		}
		seen[b.Type] = b.Name

		// 1) both directions agree
		if ty, ok := tn.FindType(b.Name); !ok || ty != b.Type {
			return fmt.Errorf("FindType(%q) = %s, %v; want %s", b.Name, ty, ok, b.Type)
		}
		if name, ok := tn.FindName(b.Type); !ok || name != b.Name {
			return fmt.Errorf("FindName(%s) = %q, %v; want %q", b.Type, name, ok, b.Name)
		}
	}
	return nil
}

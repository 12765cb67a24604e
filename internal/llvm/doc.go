// Package llvm is the thin management layer between code generation and
// the native backend's foreign catalog.
//
// # Owned resources
//
// Backend objects that need an explicit dispose call are wrapped in
// Owned. A reference is created by Acquire or Share and dropped by
// Release; the dispose call fires once, when the last reference goes:
//
//	td := llvm.NewTargetData(cat, layout)
//	defer td.Release()
//
//	other := td.Share() // second reference, same descriptor
//	other.Release()     // td still valid
//
// TargetData, PassManager, ObjectFile and SectionIter are the four
// resource kinds. NewObjectFile is the only constructor that can fail.
//
// # Type names
//
// TypeNames keeps a one-to-one mapping between names and TypeRefs for a
// session and renders types for diagnostics:
//
//	names := llvm.NewTypeNames(cat)
//	names.AssociateType("Node", node)
//	names.TypeToStr(fnTy) // "fn(*Node, i32) -> i1"
//
// Recursive structs render only once they have a name.
//
// # Handles
//
// Everything else the catalog returns (types, values, modules, blocks) is
// owned by the backend context and never disposed here.
package llvm

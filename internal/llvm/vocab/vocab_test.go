package vocab

import "testing"

// Values copied from llvm-c/Core.h. Any drift here breaks every foreign call
// that passes one of these codes.
func TestTypeKindMatchesCoreHeader(t *testing.T) {
	header := map[TypeKind]uint32{
		VoidTypeKind:           0,
		HalfTypeKind:           1,
		FloatTypeKind:          2,
		DoubleTypeKind:         3,
		X86FP80TypeKind:        4,
		FP128TypeKind:          5,
		PPCFP128TypeKind:       6,
		LabelTypeKind:          7,
		IntegerTypeKind:        8,
		FunctionTypeKind:       9,
		StructTypeKind:         10,
		ArrayTypeKind:          11,
		PointerTypeKind:        12,
		VectorTypeKind:         13,
		MetadataTypeKind:       14,
		X86MMXTypeKind:         15,
		TokenTypeKind:          16,
		ScalableVectorTypeKind: 17,
		BFloatTypeKind:         18,
		X86AMXTypeKind:         19,
		TargetExtTypeKind:      20,
	}
	for k, want := range header {
		if uint32(k) != want {
			t.Errorf("%s = %d, want %d", k, uint32(k), want)
		}
	}
}

func TestPredicatesMatchCoreHeader(t *testing.T) {
	if IntEQ != 32 || IntSLE != 41 {
		t.Fatalf("int predicates shifted: eq=%d sle=%d", IntEQ, IntSLE)
	}
	if RealPredicateFalse != 0 || RealUNE != 14 || RealPredicateTrue != 15 {
		t.Fatalf("real predicates shifted")
	}
	if IntSGT.Swapped() != IntSLT || IntEQ.Swapped() != IntEQ {
		t.Fatalf("Swapped broken")
	}
	if !RealOLT.Ordered() || RealULT.Ordered() {
		t.Fatalf("Ordered broken")
	}
}

func TestCallConvAndLinkageValues(t *testing.T) {
	cases := []struct {
		got, want uint32
		name      string
	}{
		{uint32(CCallConv), 0, "ccc"},
		{uint32(FastCallConv), 8, "fastcc"},
		{uint32(ColdCallConv), 9, "coldcc"},
		{uint32(X86StdcallCallConv), 64, "x86_stdcallcc"},
		{uint32(X86FastcallCallConv), 65, "x86_fastcallcc"},
		{uint32(InternalLinkage), 8, "internal"},
		{uint32(PrivateLinkage), 9, "private"},
		{uint32(LinkerPrivateWeakLinkage), 16, "linker_private_weak"},
		{uint32(HiddenVisibility), 1, "hidden"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %d, want %d", tc.name, tc.got, tc.want)
		}
	}
	cc, err := ParseCallConv("fastcc")
	if err != nil || cc != FastCallConv {
		t.Fatalf("ParseCallConv(fastcc) = %v, %v", cc, err)
	}
	l, err := ParseLinkage("weak_odr")
	if err != nil || l != WeakODRLinkage {
		t.Fatalf("ParseLinkage(weak_odr) = %v, %v", l, err)
	}
	if _, err := ParseLinkage("nope"); err == nil {
		t.Fatal("expected error for unknown linkage")
	}
}

func TestAttributeBits(t *testing.T) {
	if AlignmentAttribute != 2031616 {
		t.Fatalf("AlignmentAttribute = %d", AlignmentAttribute)
	}
	if StackAttribute != 469762048 {
		t.Fatalf("StackAttribute = %d", StackAttribute)
	}
	if NonLazyBindAttribute != 2147483648 {
		t.Fatalf("NonLazyBindAttribute = %d", NonLazyBindAttribute)
	}
	a := (NoUnwindAttribute | ReadOnlyAttribute).WithAlignment(16)
	if a.Alignment() != 5 {
		t.Fatalf("alignment field = %d, want 5", a.Alignment())
	}
	if got := a.String(); got != "nounwind readonly align 16" {
		t.Fatalf("String() = %q", got)
	}
	if got := a.WithAlignment(0); got != NoUnwindAttribute|ReadOnlyAttribute {
		t.Fatalf("WithAlignment(0) = %d", got)
	}
}

func TestAtomicOrderingSkipsConsume(t *testing.T) {
	if Monotonic != 2 || Acquire != 4 || SequentiallyConsistent != 7 {
		t.Fatal("atomic orderings shifted")
	}
	if AtomicOrdering(3).String() != "AtomicOrdering(3)" {
		t.Fatalf("consume slot should be unnamed, got %q", AtomicOrdering(3).String())
	}
	if AtomicUMin != 10 {
		t.Fatalf("AtomicUMin = %d", AtomicUMin)
	}
}

func TestPrimitiveLiterals(t *testing.T) {
	for k := VoidTypeKind; k <= X86MMXTypeKind; k++ {
		lit, ok := k.Literal()
		if !ok {
			continue
		}
		back, ok := ParsePrimitive(lit)
		if !ok || back != k {
			t.Errorf("ParsePrimitive(%q) = %v, %v", lit, back, ok)
		}
	}
	if _, ok := IntegerTypeKind.Literal(); ok {
		t.Fatal("Integer must not have a fixed literal")
	}
	if _, ok := VectorTypeKind.Literal(); ok {
		t.Fatal("Vector must not have a fixed literal")
	}
	if k, ok := ParsePrimitive("double"); !ok || k != DoubleTypeKind {
		t.Fatalf("case-insensitive parse failed: %v %v", k, ok)
	}
}

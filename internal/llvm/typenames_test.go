package llvm_test

import (
	"errors"
	"reflect"
	"testing"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/inproc"
	"llbridge/internal/llvm/vocab"
	"llbridge/internal/testkit"
)

func TestAssociateRoundTrip(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	i32 := c.Int(32)
	tn.AssociateType("Word", i32)

	if ty, ok := tn.FindType("Word"); !ok || ty != i32 {
		t.Fatalf("FindType = %s, %v", ty, ok)
	}
	if name, ok := tn.FindName(i32); !ok || name != "Word" {
		t.Fatalf("FindName = %q, %v", name, ok)
	}
	if _, ok := tn.FindType("Missing"); ok {
		t.Fatal("lookup of unbound name succeeded")
	}
	if _, ok := tn.FindName(c.Int(64)); ok {
		t.Fatal("lookup of unbound type succeeded")
	}
	if err := testkit.CheckRegistryInvariants(tn); err != nil {
		t.Fatal(err)
	}
}

func TestAssociateInjective(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	tn.AssociateType("Word", c.Int(32))
	tn.AssociateType("Word", c.Int(32)) // identical pair is a no-op

	cases := []struct {
		name string
		ty   llvm.TypeRef
		kind llvm.RegistryErrorKind
	}{
		{"Word", c.Int(64), llvm.RegistryNameTaken},
		{"Other", c.Int(32), llvm.RegistryTypeTaken},
	}
	for _, tc := range cases {
		func() {
			defer func() {
				var regErr *llvm.RegistryError
				err, _ := recover().(error)
				if !errors.As(err, &regErr) {
					t.Fatalf("AssociateType(%q) panic = %v, want *RegistryError", tc.name, err)
				}
				if regErr.Kind != tc.kind {
					t.Fatalf("AssociateType(%q) kind = %d, want %d", tc.name, regErr.Kind, tc.kind)
				}
			}()
			tn.AssociateType(tc.name, tc.ty)
		}()
	}
	if tn.Len() != 1 {
		t.Fatalf("failed associations changed the registry: %v", tn.Names())
	}
	if err := tn.TryAssociateType("Other", c.Int(32)); err == nil {
		t.Fatal("TryAssociateType accepted a taken type")
	}
	if err := testkit.CheckRegistryInvariants(tn); err != nil {
		t.Fatal(err)
	}
}

func TestRenderPrimitives(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	want := map[vocab.TypeKind]string{
		vocab.VoidTypeKind:     "Void",
		vocab.HalfTypeKind:     "Half",
		vocab.FloatTypeKind:    "Float",
		vocab.DoubleTypeKind:   "Double",
		vocab.X86FP80TypeKind:  "X86_FP80",
		vocab.FP128TypeKind:    "FP128",
		vocab.PPCFP128TypeKind: "PPC_FP128",
		vocab.LabelTypeKind:    "Label",
		vocab.MetadataTypeKind: "Metadata",
		vocab.X86MMXTypeKind:   "X86_MMX",
	}
	for kind, lit := range want {
		if got := tn.TypeToStr(c.Primitive(kind)); got != lit {
			t.Errorf("TypeToStr(%s) = %q, want %q", kind, got, lit)
		}
	}
}

func TestRenderComposites(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	i8, i32 := c.Int(8), c.Int(32)
	cases := []struct {
		ty   llvm.TypeRef
		want string
	}{
		{c.Int(1), "i1"},
		{i32, "i32"},
		{c.Int(128), "i128"},
		{c.Double(), "Double"},
		{c.Function(c.Int(1), []llvm.TypeRef{i32, i32}, false), "fn(i32, i32) -> i1"},
		{c.Struct([]llvm.TypeRef{i32, i8}, false), "{i32, i8}"},
		{c.Array(i8, 4), "[i8 x 4]"},
		{c.Function(c.Void(), []llvm.TypeRef{i32, c.Pointer(i8)}, false), "fn(i32, *i8) -> Void"},
		{c.Function(c.Int(1), nil, false), "fn() -> i1"},
		{c.Struct([]llvm.TypeRef{i32, c.Double()}, false), "{i32, Double}"},
		{c.Struct(nil, false), "{}"},
		{c.Array(i8, 16), "[i8 x 16]"},
		{c.Pointer(c.Pointer(i8)), "**i8"},
		{c.Vector(c.Float(), 4), "<Float x 4>"},
		{c.Array(c.Struct([]llvm.TypeRef{c.Pointer(i32)}, false), 2), "[{*i32} x 2]"},
	}
	for _, tc := range cases {
		if got := tn.TypeToStr(tc.ty); got != tc.want {
			t.Errorf("TypeToStr = %q, want %q", got, tc.want)
		}
	}
}

func TestRenderNameShortCircuitsRecursion(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	node := c.NamedStruct("node")
	c.SetBody(node, []llvm.TypeRef{c.Int(32), c.Pointer(node)}, false)
	tn.AssociateType("Node", node)

	cases := []struct {
		ty   llvm.TypeRef
		want string
	}{
		{node, "Node"},
		{c.Pointer(node), "*Node"},
		{c.Function(c.Int(1), []llvm.TypeRef{c.Pointer(node), c.Int(32)}, false), "fn(*Node, i32) -> i1"},
	}
	for _, tc := range cases {
		if got := tn.TypeToStr(tc.ty); got != tc.want {
			t.Errorf("TypeToStr = %q, want %q", got, tc.want)
		}
	}

	// a bound primitive renders by name too
	tn.AssociateType("Size", c.Int(64))
	if got := tn.TypeToStr(c.Array(c.Int(64), 2)); got != "[Size x 2]" {
		t.Errorf("TypeToStr = %q, want [Size x 2]", got)
	}
}

func TestRenderUnnamedRecursiveStruct(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	list := c.NamedStruct("")
	c.SetBody(list, []llvm.TypeRef{c.Int(8), c.Pointer(list)}, false)

	_, err := tn.RenderType(list)
	var recErr *llvm.RecursiveTypeError
	if !errors.As(err, &recErr) {
		t.Fatalf("RenderType error = %v, want *RecursiveTypeError", err)
	}
	if recErr.Type != list || len(recErr.Cycle) != 1 {
		t.Fatalf("error = %+v", recErr)
	}

	// naming it afterwards makes it renderable
	tn.AssociateType("List", list)
	if got := tn.TypeToStr(c.Pointer(list)); got != "*List" {
		t.Fatalf("TypeToStr = %q", got)
	}
}

func TestRenderUnknownKind(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	token := c.Primitive(vocab.TokenTypeKind)

	_, err := tn.RenderType(c.Struct([]llvm.TypeRef{token}, false))
	var kindErr *llvm.UnknownTypeKindError
	if !errors.As(err, &kindErr) || kindErr.Kind != vocab.TokenTypeKind || kindErr.Type != token {
		t.Fatalf("RenderType error = %v", err)
	}

	defer func() {
		if _, ok := recover().(*llvm.UnknownTypeKindError); !ok {
			t.Fatal("TypeToStr did not panic with *UnknownTypeKindError")
		}
	}()
	tn.TypeToStr(token)
}

func TestValToStr(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	m := c.NewModule("m")
	g := c.AddGlobal(m, "table", c.Array(c.Pointer(c.Int(8)), 4), vocab.InternalLinkage)
	if got := tn.ValToStr(g); got != "[*i8 x 4]" {
		t.Fatalf("ValToStr = %q", got)
	}
}

func TestNamesAndSnapshot(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	tn.AssociateType("b", c.Int(16))
	tn.AssociateType("a", c.Int(8))
	tn.AssociateType("c", c.Int(32))

	if got := tn.Names(); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Names = %v", got)
	}
	snap := tn.Snapshot()
	if len(snap) != 3 || snap[0].Name != "a" || snap[0].Type != c.Int(8) {
		t.Fatalf("Snapshot = %+v", snap)
	}
}

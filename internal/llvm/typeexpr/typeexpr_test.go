package typeexpr_test

import (
	"errors"
	"testing"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/inproc"
	"llbridge/internal/llvm/typeexpr"
	"llbridge/internal/llvm/vocab"
	"llbridge/internal/testkit"
)

func TestParseRenderRoundTrip(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	node := c.NamedStruct("node")
	c.SetBody(node, []llvm.TypeRef{c.Int(32), c.Pointer(node)}, false)
	tn.AssociateType("Node", node)

	i8, i32 := c.Int(8), c.Int(32)
	types := []llvm.TypeRef{
		c.Void(),
		c.Primitive(vocab.X86FP80TypeKind),
		c.Primitive(vocab.PPCFP128TypeKind),
		c.Primitive(vocab.X86MMXTypeKind),
		c.Int(1),
		c.Int(1 << 20),
		c.Pointer(c.Pointer(i8)),
		c.Array(i32, 0),
		c.Array(c.Array(i8, 3), 2),
		c.Vector(c.Float(), 8),
		c.Struct(nil, false),
		c.Struct([]llvm.TypeRef{i8, c.Double(), c.Pointer(node)}, false),
		c.Function(c.Void(), nil, false),
		c.Function(c.Pointer(node), []llvm.TypeRef{node, c.Function(i8, []llvm.TypeRef{i32}, false)}, false),
		node,
	}
	for _, ty := range types {
		text := tn.TypeToStr(ty)
		got, err := typeexpr.Parse(text, c, tn)
		if err != nil {
			t.Errorf("Parse(%q): %v", text, err)
			continue
		}
		if got != ty {
			t.Errorf("Parse(%q) = %q, want the rendered type back", text, tn.TypeToStr(got))
		}
	}
}

func TestParseWhitespace(t *testing.T) {
	c := inproc.New()
	got, err := typeexpr.Parse("  fn( * i8 ,[ i32 x 4 ] )->{ }  ", c, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := c.Function(c.Struct(nil, false), []llvm.TypeRef{c.Pointer(c.Int(8)), c.Array(c.Int(32), 4)}, false)
	if got != want {
		t.Fatal("whitespace changed the parsed type")
	}
}

func TestParseErrors(t *testing.T) {
	c := inproc.New()
	cases := []struct {
		src  string
		kind typeexpr.ErrorKind
		pos  int
	}{
		{"", typeexpr.ErrUnexpected, 0},
		{"i32 i32", typeexpr.ErrUnexpected, 4},
		{"[i8 y 4]", typeexpr.ErrUnexpected, 4},
		{"[i8 x]", typeexpr.ErrUnexpected, 5},
		{"fn(i8) i8", typeexpr.ErrUnexpected, 7},
		{"{i8, }", typeexpr.ErrUnexpected, 5},
		{"i0", typeexpr.ErrBadNumber, 0},
		{"i99999999", typeexpr.ErrBadNumber, 0},
		{"<i8 x 0>", typeexpr.ErrBadNumber, 0},
		{"Missing", typeexpr.ErrUndefinedName, 0},
		{"*void", typeexpr.ErrUndefinedName, 1},
		{"i8 - i8", typeexpr.ErrUnexpected, 3},
	}
	for _, tc := range cases {
		_, err := typeexpr.Parse(tc.src, c, nil)
		var perr *typeexpr.Error
		if !errors.As(err, &perr) {
			t.Errorf("Parse(%q) = %v, want *typeexpr.Error", tc.src, err)
			continue
		}
		if perr.Kind != tc.kind || perr.Pos != tc.pos {
			t.Errorf("Parse(%q) = kind %d at %d (%v), want kind %d at %d", tc.src, perr.Kind, perr.Pos, err, tc.kind, tc.pos)
		}
	}
}

func TestParseNormalisesNames(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	tn.AssociateType("Caf\u00e9", c.Int(16))
	got, err := typeexpr.Parse("*Cafe\u0301", c, tn)
	if err != nil {
		t.Fatal(err)
	}
	if got != c.Pointer(c.Int(16)) {
		t.Fatal("decomposed name did not resolve to the NFC binding")
	}
}

func TestBindAllMutualRecursion(t *testing.T) {
	c := inproc.New()
	tn := llvm.NewTypeNames(c)
	defs := []typeexpr.Def{
		{Name: "Tree", Expr: "{Size, *Forest, *Tree}"},
		{Name: "Forest", Expr: "{Size, [*Tree x 8]}"},
		{Name: "Visit", Expr: "fn(*Tree, Handle) -> Void"},
		{Name: "Handle", Expr: "*Size"},
		{Name: "Size", Expr: "i64"},
	}
	if err := typeexpr.BindAll(defs, c, tn); err != nil {
		t.Fatal(err)
	}
	if err := testkit.CheckRegistryInvariants(tn); err != nil {
		t.Fatal(err)
	}
	tree, _ := tn.FindType("Tree")
	forest, _ := tn.FindType("Forest")
	if got := tn.TypeToStr(c.Struct(c.StructElementTypes(tree), false)); got != "{Size, *Forest, *Tree}" {
		t.Fatalf("Tree body = %q", got)
	}
	if got := tn.TypeToStr(c.Struct(c.StructElementTypes(forest), false)); got != "{Size, [*Tree x 8]}" {
		t.Fatalf("Forest body = %q", got)
	}
	visit, _ := tn.FindType("Visit")
	if got := tn.TypeToStr(c.ReturnType(visit)); got != "Void" {
		t.Fatalf("Visit returns %q", got)
	}
}

func TestBindAllErrors(t *testing.T) {
	cases := []struct {
		name string
		defs []typeexpr.Def
		kind typeexpr.ErrorKind
	}{
		{"cycle", []typeexpr.Def{{Name: "A", Expr: "*B"}, {Name: "B", Expr: "[A x 2]"}}, typeexpr.ErrCycle},
		{"self alias", []typeexpr.Def{{Name: "A", Expr: "*A"}}, typeexpr.ErrCycle},
		{"undefined", []typeexpr.Def{{Name: "A", Expr: "*Nope"}}, typeexpr.ErrUndefinedName},
		{"duplicate", []typeexpr.Def{{Name: "A", Expr: "i8"}, {Name: "A", Expr: "i16"}}, typeexpr.ErrBinding},
		{"shared type", []typeexpr.Def{{Name: "A", Expr: "i8"}, {Name: "B", Expr: "i8"}}, typeexpr.ErrBinding},
		{"bad body", []typeexpr.Def{{Name: "S", Expr: "{i8,"}}, typeexpr.ErrUnexpected},
		{"name with space", []typeexpr.Def{{Name: "a b", Expr: "i8"}}, typeexpr.ErrBinding},
		{"name with punctuation", []typeexpr.Def{{Name: "*A", Expr: "i8"}}, typeexpr.ErrBinding},
		{"empty name", []typeexpr.Def{{Name: "", Expr: "i8"}}, typeexpr.ErrBinding},
		{"struct by value", []typeexpr.Def{{Name: "Loop", Expr: "{i8, Loop}"}}, typeexpr.ErrCycle},
		{"struct in array", []typeexpr.Def{{Name: "Loop", Expr: "{[Loop x 2]}"}}, typeexpr.ErrCycle},
		{"mutual by value", []typeexpr.Def{{Name: "S", Expr: "{T}"}, {Name: "T", Expr: "{i8, S}"}}, typeexpr.ErrCycle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := inproc.New()
			err := typeexpr.BindAll(tc.defs, c, llvm.NewTypeNames(c))
			var perr *typeexpr.Error
			if !errors.As(err, &perr) || perr.Kind != tc.kind {
				t.Fatalf("BindAll = %v, want kind %d", err, tc.kind)
			}
		})
	}
}

func TestBindAllWrapsRegistryError(t *testing.T) {
	c := inproc.New()
	err := typeexpr.BindAll([]typeexpr.Def{{Name: "A", Expr: "i8"}, {Name: "B", Expr: "i8"}}, c, llvm.NewTypeNames(c))
	var regErr *llvm.RegistryError
	if !errors.As(err, &regErr) || regErr.Kind != llvm.RegistryTypeTaken {
		t.Fatalf("err = %v, want wrapped RegistryTypeTaken", err)
	}
}

package typeexpr

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/datalayout"
)

// StructBuilder adds identified structs, which may refer to themselves
// through pointers. *inproc.Catalog implements it.
type StructBuilder interface {
	Builder
	llvm.TypeInspector
	NamedStruct(name string) llvm.TypeRef
	SetBody(st llvm.TypeRef, fields []llvm.TypeRef, packed bool)
}

// Def is one "name = type expression" declaration.
type Def struct {
	Name string
	Expr string
}

// BindAll declares every def and binds its name in names. A def whose
// expression is a struct body "{...}" becomes an identified struct that
// is bound before any body is parsed, so structs may refer to each other
// and to themselves. Other defs are aliases of the type they spell and
// may refer to each other in any order, as long as they do not form a
// cycle. Names are NFC-normalised and must lex as a single identifier,
// so every bound name can be read back by Parse. A struct that contains
// itself by value is rejected with ErrCycle.
func BindAll(defs []Def, b StructBuilder, names *llvm.TypeNames) error {
	type structDef struct {
		def Def
		ty  llvm.TypeRef
	}
	var structs []structDef
	pending := make(map[string]Def, len(defs))
	order := make([]string, 0, len(defs))

	for _, d := range defs {
		d.Name = norm.NFC.String(d.Name)
		if !isIdent(d.Name) {
			return &Error{Kind: ErrBinding, Name: d.Name, Msg: fmt.Sprintf("type name %q is not an identifier", d.Name)}
		}
		if _, dup := pending[d.Name]; dup {
			return &Error{Kind: ErrBinding, Msg: fmt.Sprintf("type %q declared twice", d.Name)}
		}
		if strings.HasPrefix(strings.TrimSpace(d.Expr), "{") {
			st := b.NamedStruct(d.Name)
			if err := names.TryAssociateType(d.Name, st); err != nil {
				return bindError(d, err)
			}
			structs = append(structs, structDef{def: d, ty: st})
			continue
		}
		pending[d.Name] = d
		order = append(order, d.Name)
	}

	for len(order) > 0 {
		var waiting []string
		for _, name := range order {
			d := pending[name]
			ty, err := Parse(d.Expr, b, names)
			var perr *Error
			if errors.As(err, &perr) && perr.Kind == ErrUndefinedName {
				if _, later := pending[perr.Name]; later {
					waiting = append(waiting, name)
					continue
				}
			}
			if err != nil {
				return err
			}
			if err := names.TryAssociateType(name, ty); err != nil {
				return bindError(d, err)
			}
			delete(pending, name)
		}
		if len(waiting) == len(order) {
			return &Error{Kind: ErrCycle, Msg: "alias cycle among " + strings.Join(waiting, ", ")}
		}
		order = waiting
	}

	for _, s := range structs {
		fields, err := parseStructBody(s.def.Expr, b, names)
		if err != nil {
			return err
		}
		b.SetBody(s.ty, fields, false)
	}
	for _, s := range structs {
		if err := datalayout.CheckSized(b, s.ty); err != nil {
			return &Error{Kind: ErrCycle, Name: s.def.Name, Msg: s.def.Name + " contains itself by value", Err: err}
		}
	}
	return nil
}

// isIdent reports whether name is exactly one identifier token.
func isIdent(name string) bool {
	lx := lexer{src: name}
	tok := lx.next()
	return tok.kind == tokIdent && tok.text == name && lx.next().kind == tokEOF
}

func bindError(d Def, err error) error {
	return &Error{Kind: ErrBinding, Msg: fmt.Sprintf("binding %q: %v", d.Name, err), Err: err}
}

func parseStructBody(src string, b Builder, names Names) ([]llvm.TypeRef, error) {
	p := parser{lx: lexer{src: src}, b: b, names: names, src: src}
	if err := p.expect(tokLBrace); err != nil {
		return nil, err
	}
	fields, err := p.parseList(tokRBrace)
	if err != nil {
		return nil, err
	}
	if tok := p.lx.next(); tok.kind != tokEOF {
		return nil, p.unexpected(tok, "end of input")
	}
	return fields, nil
}

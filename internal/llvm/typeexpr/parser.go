// Package typeexpr reads the textual type syntax produced by
// llvm.TypeNames.TypeToStr back into backend types:
//
//	Void Half Float Double X86_FP80 FP128 PPC_FP128 Label Metadata X86_MMX
//	iN               integer of N bits
//	*T               pointer
//	[T x N]          array
//	<T x N>          vector
//	{T, U}           literal struct
//	fn(T, U) -> R    function
//	Name             a type bound in the registry
//
// For any type t the registry can render, Parse(TypeToStr(t)) == t.
package typeexpr

import (
	"fmt"
	"strconv"

	"fortio.org/safecast"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/vocab"
)

// Builder constructs backend types. *inproc.Catalog implements it.
type Builder interface {
	Primitive(kind vocab.TypeKind) llvm.TypeRef
	Int(width uint32) llvm.TypeRef
	Function(ret llvm.TypeRef, params []llvm.TypeRef, variadic bool) llvm.TypeRef
	Struct(fields []llvm.TypeRef, packed bool) llvm.TypeRef
	Array(elem llvm.TypeRef, n uint64) llvm.TypeRef
	Pointer(elem llvm.TypeRef) llvm.TypeRef
	Vector(elem llvm.TypeRef, n uint32) llvm.TypeRef
}

// Names resolves bound type names. *llvm.TypeNames implements it.
type Names interface {
	FindType(name string) (llvm.TypeRef, bool)
}

// maxIntWidth matches LLVM's limit on integer types.
const maxIntWidth = 1<<23 - 1

var primitives = func() map[string]vocab.TypeKind {
	m := make(map[string]vocab.TypeKind, 10)
	for k := vocab.VoidTypeKind; k <= vocab.TargetExtTypeKind; k++ {
		if lit, ok := k.Literal(); ok {
			m[lit] = k
		}
	}
	return m
}()

// Parse builds the type written in src. names may be nil when src uses
// no bound names.
func Parse(src string, b Builder, names Names) (llvm.TypeRef, error) {
	p := parser{lx: lexer{src: src}, b: b, names: names, src: src}
	ty, err := p.parseType()
	if err != nil {
		return 0, err
	}
	if tok := p.lx.next(); tok.kind != tokEOF {
		return 0, p.unexpected(tok, "end of input")
	}
	return ty, nil
}

// MustParse is Parse for expressions known to be valid.
func MustParse(src string, b Builder, names Names) llvm.TypeRef {
	ty, err := Parse(src, b, names)
	if err != nil {
		panic(err)
	}
	return ty
}

type parser struct {
	lx    lexer
	b     Builder
	names Names
	src   string
}

func (p *parser) parseType() (llvm.TypeRef, error) {
	tok := p.lx.next()
	switch tok.kind {
	case tokStar:
		elem, err := p.parseType()
		if err != nil {
			return 0, err
		}
		return p.b.Pointer(elem), nil
	case tokLBracket:
		elem, n, err := p.parseSized(tokRBracket)
		if err != nil {
			return 0, err
		}
		return p.b.Array(elem, n), nil
	case tokLAngle:
		elem, n, err := p.parseSized(tokRAngle)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, p.errorf(ErrBadNumber, tok.pos, "vector length must be positive")
		}
		width, err := safecast.Conv[uint32](n)
		if err != nil {
			return 0, p.errorf(ErrBadNumber, tok.pos, "vector length %d too large", n)
		}
		return p.b.Vector(elem, width), nil
	case tokLBrace:
		fields, err := p.parseList(tokRBrace)
		if err != nil {
			return 0, err
		}
		return p.b.Struct(fields, false), nil
	case tokIdent:
		return p.parseNamed(tok)
	default:
		return 0, p.unexpected(tok, "type")
	}
}

func (p *parser) parseNamed(tok token) (llvm.TypeRef, error) {
	if tok.text == "fn" && p.lx.peek().kind == tokLParen {
		p.lx.next()
		params, err := p.parseList(tokRParen)
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokArrow); err != nil {
			return 0, err
		}
		ret, err := p.parseType()
		if err != nil {
			return 0, err
		}
		return p.b.Function(ret, params, false), nil
	}
	// bound names take precedence, mirroring the renderer
	if p.names != nil {
		if ty, ok := p.names.FindType(tok.text); ok {
			return ty, nil
		}
	}
	if kind, ok := primitives[tok.text]; ok {
		return p.b.Primitive(kind), nil
	}
	if width, ok, err := p.intWidth(tok); ok {
		if err != nil {
			return 0, err
		}
		return p.b.Int(width), nil
	}
	return 0, &Error{
		Kind: ErrUndefinedName, Pos: tok.pos, Src: p.src, Name: tok.text,
		Msg: fmt.Sprintf("undefined type name %q", tok.text),
	}
}

// intWidth recognises iN. ok is false when tok is not of that shape.
func (p *parser) intWidth(tok token) (width uint32, ok bool, err error) {
	text := tok.text
	if len(text) < 2 || text[0] != 'i' {
		return 0, false, nil
	}
	for i := 1; i < len(text); i++ {
		if text[i] < '0' || text[i] > '9' {
			return 0, false, nil
		}
	}
	n, perr := strconv.ParseUint(text[1:], 10, 32)
	if perr != nil || n == 0 || n > maxIntWidth {
		return 0, true, p.errorf(ErrBadNumber, tok.pos, "integer width %s out of range", text[1:])
	}
	return uint32(n), true, nil
}

// parseSized reads "T x N" and the closing token.
func (p *parser) parseSized(closing tokenKind) (llvm.TypeRef, uint64, error) {
	elem, err := p.parseType()
	if err != nil {
		return 0, 0, err
	}
	if tok := p.lx.next(); tok.kind != tokIdent || tok.text != "x" {
		return 0, 0, p.unexpected(tok, "'x'")
	}
	tok := p.lx.next()
	if tok.kind != tokInt {
		return 0, 0, p.unexpected(tok, "integer")
	}
	n, err := strconv.ParseUint(tok.text, 10, 64)
	if err != nil {
		return 0, 0, p.errorf(ErrBadNumber, tok.pos, "%s out of range", tok.text)
	}
	if err := p.expect(closing); err != nil {
		return 0, 0, err
	}
	return elem, n, nil
}

// parseList reads a possibly empty comma-separated list of types and the
// closing token.
func (p *parser) parseList(closing tokenKind) ([]llvm.TypeRef, error) {
	if p.lx.peek().kind == closing {
		p.lx.next()
		return nil, nil
	}
	var out []llvm.TypeRef
	for {
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		out = append(out, ty)
		tok := p.lx.next()
		switch tok.kind {
		case tokComma:
			continue
		case closing:
			return out, nil
		default:
			return nil, p.unexpected(tok, "',' or "+closing.String())
		}
	}
}

func (p *parser) expect(kind tokenKind) error {
	if tok := p.lx.next(); tok.kind != kind {
		return p.unexpected(tok, kind.String())
	}
	return nil
}

func (p *parser) unexpected(tok token, want string) error {
	got := tok.kind.String()
	if tok.kind != tokEOF {
		got = fmt.Sprintf("%q", tok.text)
	}
	return p.errorf(ErrUnexpected, tok.pos, "expected %s, found %s", want, got)
}

func (p *parser) errorf(kind ErrorKind, pos int, format string, args ...any) error {
	return &Error{Kind: kind, Pos: pos, Src: p.src, Msg: fmt.Sprintf(format, args...)}
}

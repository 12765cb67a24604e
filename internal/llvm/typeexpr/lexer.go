package typeexpr

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokIdent
	tokInt
	tokStar
	tokComma
	tokArrow
	tokLBracket
	tokRBracket
	tokLAngle
	tokRAngle
	tokLBrace
	tokRBrace
	tokLParen
	tokRParen
	tokInvalid
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokInt:
		return "integer"
	case tokStar:
		return "'*'"
	case tokComma:
		return "','"
	case tokArrow:
		return "'->'"
	case tokLBracket:
		return "'['"
	case tokRBracket:
		return "']'"
	case tokLAngle:
		return "'<'"
	case tokRAngle:
		return "'>'"
	case tokLBrace:
		return "'{'"
	case tokRBrace:
		return "'}'"
	case tokLParen:
		return "'('"
	case tokRParen:
		return "')'"
	default:
		return "invalid character"
	}
}

type token struct {
	kind tokenKind
	pos  int // byte offset
	text string
}

var punct = map[byte]tokenKind{
	'*': tokStar,
	',': tokComma,
	'[': tokLBracket,
	']': tokRBracket,
	'<': tokLAngle,
	'>': tokRAngle,
	'{': tokLBrace,
	'}': tokRBrace,
	'(': tokLParen,
	')': tokRParen,
}

// lexer splits a type expression. Identifiers are returned in NFC so that
// names typed in different normal forms resolve to the same binding.
type lexer struct {
	src  string
	pos  int
	look *token
}

func (lx *lexer) peek() token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

func (lx *lexer) next() token {
	tok := lx.peek()
	lx.look = nil
	return tok
}

func (lx *lexer) scan() token {
	for lx.pos < len(lx.src) && isSpace(lx.src[lx.pos]) {
		lx.pos++
	}
	start := lx.pos
	if lx.pos >= len(lx.src) {
		return token{kind: tokEOF, pos: start}
	}
	ch := lx.src[lx.pos]
	if k, ok := punct[ch]; ok {
		lx.pos++
		return token{kind: k, pos: start, text: lx.src[start:lx.pos]}
	}
	if ch == '-' {
		if lx.pos+1 < len(lx.src) && lx.src[lx.pos+1] == '>' {
			lx.pos += 2
			return token{kind: tokArrow, pos: start, text: "->"}
		}
		lx.pos++
		return token{kind: tokInvalid, pos: start, text: "-"}
	}
	if ch >= '0' && ch <= '9' {
		for lx.pos < len(lx.src) && lx.src[lx.pos] >= '0' && lx.src[lx.pos] <= '9' {
			lx.pos++
		}
		return token{kind: tokInt, pos: start, text: lx.src[start:lx.pos]}
	}
	r, size := utf8.DecodeRuneInString(lx.src[lx.pos:])
	if !isIdentStart(r) {
		lx.pos += size
		return token{kind: tokInvalid, pos: start, text: string(r)}
	}
	lx.pos += size
	for lx.pos < len(lx.src) {
		r, size = utf8.DecodeRuneInString(lx.src[lx.pos:])
		if !isIdentContinue(r) {
			break
		}
		lx.pos += size
	}
	return token{kind: tokIdent, pos: start, text: norm.NFC.String(lx.src[start:lx.pos])}
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\n' || b == '\r' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || r == '%' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || r == '.' || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r)
}

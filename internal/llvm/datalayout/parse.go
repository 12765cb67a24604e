// Package datalayout parses LLVM data-layout strings and answers size and
// alignment questions about backend types.
//
// All widths and alignments in a Layout are kept in bits, as written in
// the layout string; the query methods return bytes unless their name
// says otherwise.
package datalayout

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// AlignSpec is one "iN:abi:pref" style entry.
type AlignSpec struct {
	Width uint32
	ABI   uint32
	Pref  uint32
}

// PointerSpec describes pointers in one address space.
type PointerSpec struct {
	AddrSpace uint32
	Size      uint32
	ABI       uint32
	Pref      uint32
	Index     uint32
}

// Layout is a parsed data-layout string.
type Layout struct {
	BigEndian   bool
	StackAlign  uint32 // natural stack alignment, 0 if unspecified
	Mangling    byte   // 0 if unspecified
	Aggregate   AlignSpec
	NativeInts  []uint32
	Ints        []AlignSpec
	Floats      []AlignSpec
	Vectors     []AlignSpec
	Pointers    []PointerSpec
	NonIntegral []uint32

	rep string
}

// ErrorKind enumerates parse failures.
type ErrorKind uint8

const (
	ErrUnknownSpec ErrorKind = iota + 1
	ErrBadNumber
	ErrBadAlignment
	ErrMissingField
	ErrBadMangling
)

// Error is a data-layout parse failure.
type Error struct {
	Kind ErrorKind
	Spec string
	Msg  string
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ErrUnknownSpec:
		return fmt.Sprintf("datalayout: unknown specifier %q", e.Spec)
	case ErrBadNumber:
		return fmt.Sprintf("datalayout: %q: %s", e.Spec, e.Msg)
	case ErrBadAlignment:
		return fmt.Sprintf("datalayout: %q: bad alignment: %s", e.Spec, e.Msg)
	case ErrMissingField:
		return fmt.Sprintf("datalayout: %q: missing %s", e.Spec, e.Msg)
	case ErrBadMangling:
		return fmt.Sprintf("datalayout: %q: unknown mangling mode", e.Spec)
	default:
		return fmt.Sprintf("datalayout: error kind=%d in %q", e.Kind, e.Spec)
	}
}

// Default returns the layout LLVM assumes for an empty string.
func Default() *Layout {
	return &Layout{
		Aggregate: AlignSpec{ABI: 0, Pref: 64},
		Ints: []AlignSpec{
			{Width: 1, ABI: 8, Pref: 8},
			{Width: 8, ABI: 8, Pref: 8},
			{Width: 16, ABI: 16, Pref: 16},
			{Width: 32, ABI: 32, Pref: 32},
			{Width: 64, ABI: 32, Pref: 64},
		},
		Floats: []AlignSpec{
			{Width: 16, ABI: 16, Pref: 16},
			{Width: 32, ABI: 32, Pref: 32},
			{Width: 64, ABI: 64, Pref: 64},
			{Width: 128, ABI: 128, Pref: 128},
		},
		Vectors: []AlignSpec{
			{Width: 64, ABI: 64, Pref: 64},
			{Width: 128, ABI: 128, Pref: 128},
		},
		Pointers: []PointerSpec{{AddrSpace: 0, Size: 64, ABI: 64, Pref: 64, Index: 64}},
	}
}

// Parse reads a data-layout string on top of the defaults.
func Parse(s string) (*Layout, error) {
	l := Default()
	l.rep = s
	if s == "" {
		return l, nil
	}
	for _, spec := range strings.Split(s, "-") {
		if err := l.apply(spec); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// MustParse is Parse for layouts known to be valid.
func MustParse(s string) *Layout {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

// String returns the layout string Parse was given.
func (l *Layout) String() string { return l.rep }

func (l *Layout) apply(spec string) error {
	if spec == "" {
		return &Error{Kind: ErrUnknownSpec, Spec: spec}
	}
	switch {
	case spec == "e":
		l.BigEndian = false
		return nil
	case spec == "E":
		l.BigEndian = true
		return nil
	case strings.HasPrefix(spec, "ni:"):
		for _, f := range strings.Split(spec[3:], ":") {
			as, err := parseBits(spec, f)
			if err != nil {
				return err
			}
			if as == 0 {
				return &Error{Kind: ErrBadNumber, Spec: spec, Msg: "address space 0 cannot be non-integral"}
			}
			l.NonIntegral = append(l.NonIntegral, as)
		}
		return nil
	}

	fields := strings.Split(spec[1:], ":")
	switch spec[0] {
	case 'S':
		v, err := parseBits(spec, fields[0])
		if err != nil {
			return err
		}
		if err := checkAlign(spec, v, false); err != nil {
			return err
		}
		l.StackAlign = v
	case 'P', 'A', 'G':
		if _, err := parseBits(spec, fields[0]); err != nil {
			return err
		}
	case 'm':
		if len(spec) != 3 || spec[1] != ':' || !strings.ContainsRune("elmoxwa", rune(spec[2])) {
			return &Error{Kind: ErrBadMangling, Spec: spec}
		}
		l.Mangling = spec[2]
	case 'F':
		if len(spec) < 3 || (spec[1] != 'i' && spec[1] != 'n') {
			return &Error{Kind: ErrUnknownSpec, Spec: spec}
		}
		v, err := parseBits(spec, spec[2:])
		if err != nil {
			return err
		}
		return checkAlign(spec, v, false)
	case 'n':
		for _, f := range fields {
			v, err := parseBits(spec, f)
			if err != nil {
				return err
			}
			l.NativeInts = append(l.NativeInts, v)
		}
	case 'p':
		return l.applyPointer(spec, fields)
	case 'a':
		abi, pref, err := parseAlignPair(spec, fields, 1, true)
		if err != nil {
			return err
		}
		l.Aggregate = AlignSpec{ABI: abi, Pref: pref}
	case 'i', 'f', 'v':
		width, err := parseBits(spec, fields[0])
		if err != nil {
			return err
		}
		if width == 0 {
			return &Error{Kind: ErrBadNumber, Spec: spec, Msg: "zero width"}
		}
		abi, pref, err := parseAlignPair(spec, fields, 1, false)
		if err != nil {
			return err
		}
		if spec[0] == 'i' && width == 8 && abi != 8 {
			return &Error{Kind: ErrBadAlignment, Spec: spec, Msg: "i8 must be 8-bit aligned"}
		}
		entry := AlignSpec{Width: width, ABI: abi, Pref: pref}
		switch spec[0] {
		case 'i':
			l.Ints = upsert(l.Ints, entry)
		case 'f':
			l.Floats = upsert(l.Floats, entry)
		default:
			l.Vectors = upsert(l.Vectors, entry)
		}
	default:
		return &Error{Kind: ErrUnknownSpec, Spec: spec}
	}
	return nil
}

func (l *Layout) applyPointer(spec string, fields []string) error {
	var as uint32
	if fields[0] != "" {
		v, err := parseBits(spec, fields[0])
		if err != nil {
			return err
		}
		as = v
	}
	if len(fields) < 3 {
		return &Error{Kind: ErrMissingField, Spec: spec, Msg: "size and abi alignment"}
	}
	size, err := parseBits(spec, fields[1])
	if err != nil {
		return err
	}
	if size == 0 {
		return &Error{Kind: ErrBadNumber, Spec: spec, Msg: "zero pointer size"}
	}
	abi, pref, err := parseAlignPair(spec, fields, 2, false)
	if err != nil {
		return err
	}
	index := size
	if len(fields) > 4 {
		if index, err = parseBits(spec, fields[4]); err != nil {
			return err
		}
		if index > size {
			return &Error{Kind: ErrBadNumber, Spec: spec, Msg: "index size exceeds pointer size"}
		}
	}
	ps := PointerSpec{AddrSpace: as, Size: size, ABI: abi, Pref: pref, Index: index}
	for i := range l.Pointers {
		if l.Pointers[i].AddrSpace == as {
			l.Pointers[i] = ps
			return nil
		}
	}
	l.Pointers = append(l.Pointers, ps)
	sort.Slice(l.Pointers, func(i, j int) bool { return l.Pointers[i].AddrSpace < l.Pointers[j].AddrSpace })
	return nil
}

// parseAlignPair reads fields[at] as the ABI alignment and the optional
// fields[at+1] as the preferred one.
func parseAlignPair(spec string, fields []string, at int, zeroOK bool) (abi, pref uint32, err error) {
	if len(fields) <= at || fields[at] == "" {
		return 0, 0, &Error{Kind: ErrMissingField, Spec: spec, Msg: "abi alignment"}
	}
	if abi, err = parseBits(spec, fields[at]); err != nil {
		return 0, 0, err
	}
	if err = checkAlign(spec, abi, zeroOK); err != nil {
		return 0, 0, err
	}
	pref = abi
	if len(fields) > at+1 {
		if pref, err = parseBits(spec, fields[at+1]); err != nil {
			return 0, 0, err
		}
		if err = checkAlign(spec, pref, zeroOK); err != nil {
			return 0, 0, err
		}
	}
	if pref < abi {
		return 0, 0, &Error{Kind: ErrBadAlignment, Spec: spec, Msg: "preferred alignment below abi alignment"}
	}
	return abi, pref, nil
}

func parseBits(spec, field string) (uint32, error) {
	v, err := strconv.ParseUint(field, 10, 24)
	if err != nil {
		return 0, &Error{Kind: ErrBadNumber, Spec: spec, Msg: fmt.Sprintf("invalid number %q", field)}
	}
	return uint32(v), nil
}

func checkAlign(spec string, bits uint32, zeroOK bool) error {
	if bits == 0 {
		if zeroOK {
			return nil
		}
		return &Error{Kind: ErrBadAlignment, Spec: spec, Msg: "zero"}
	}
	if bits%8 != 0 || (bits&(bits-1)) != 0 {
		return &Error{Kind: ErrBadAlignment, Spec: spec, Msg: fmt.Sprintf("%d is not a power-of-two multiple of 8", bits)}
	}
	return nil
}

func upsert(specs []AlignSpec, entry AlignSpec) []AlignSpec {
	for i := range specs {
		if specs[i].Width == entry.Width {
			specs[i] = entry
			return specs
		}
	}
	specs = append(specs, entry)
	sort.Slice(specs, func(i, j int) bool { return specs[i].Width < specs[j].Width })
	return specs
}

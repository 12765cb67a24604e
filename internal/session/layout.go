package session

import (
	"fmt"

	"fortio.org/safecast"

	"llbridge/internal/llvm"
	"llbridge/internal/llvm/datalayout"
	"llbridge/internal/llvm/vocab"
)

// Field is one struct member in a Layout.
type Field struct {
	Index  uint32
	Offset uint64
	Size   uint64
	Type   string
}

// Layout is everything the target data knows about one type.
type Layout struct {
	Type       string
	Kind       vocab.TypeKind
	SizeInBits uint64
	StoreSize  uint64
	ABISize    uint64
	ABIAlign   uint32
	PrefAlign  uint32
	Fields     []Field // structs only
}

// DescribeLayout renders ty and measures it with the session target data.
func (s *Session) DescribeLayout(ty llvm.TypeRef) (Layout, error) {
	text, err := s.names.RenderType(ty)
	if err != nil {
		return Layout{}, err
	}
	kind := s.cat.TypeKind(ty)
	switch kind {
	case vocab.VoidTypeKind, vocab.FunctionTypeKind, vocab.LabelTypeKind, vocab.MetadataTypeKind, vocab.TokenTypeKind:
		return Layout{}, fmt.Errorf("%s has no size", text)
	}
	if kind == vocab.StructTypeKind && s.backend.IsOpaqueStruct(ty) {
		return Layout{}, fmt.Errorf("%s is opaque", text)
	}
	if err := datalayout.CheckSized(s.cat, ty); err != nil {
		return Layout{}, fmt.Errorf("%s: %w", text, err)
	}
	td := s.target
	out := Layout{
		Type:       text,
		Kind:       kind,
		SizeInBits: td.SizeInBits(ty),
		StoreSize:  td.StoreSize(ty),
		ABISize:    td.ABISize(ty),
		ABIAlign:   td.ABIAlign(ty),
		PrefAlign:  td.PreferredAlign(ty),
	}
	if kind != vocab.StructTypeKind {
		return out, nil
	}
	for i, f := range s.cat.StructElementTypes(ty) {
		idx, err := safecast.Conv[uint32](i)
		if err != nil {
			return Layout{}, fmt.Errorf("field index overflow: %w", err)
		}
		ftext, err := s.names.RenderType(f)
		if err != nil {
			return Layout{}, err
		}
		out.Fields = append(out.Fields, Field{
			Index:  idx,
			Offset: td.OffsetOfElement(ty, idx),
			Size:   td.ABISize(f),
			Type:   ftext,
		})
	}
	return out, nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"llbridge/internal/llvm/vocab"
	"llbridge/internal/ui"
)

var typesCmd = &cobra.Command{
	Use:   "types [expr]...",
	Short: "Render type expressions, or list the types bound in llbridge.toml",
	Long: `Each expression is parsed against the [types] registry and printed back in
canonical form. Without arguments every binding is listed.`,
	RunE: runTypes,
}

func runTypes(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	out := cmd.OutOrStdout()
	if len(args) == 0 {
		tb := ui.NewTable(app.color,
			ui.Column{Title: "Name"},
			ui.Column{Title: "Kind"},
			ui.Column{Title: "Definition"},
		)
		for _, b := range s.Names().Snapshot() {
			def := app.cfg.Types[b.Name]
			kind := s.Catalog().TypeKind(b.Type)
			if kind == vocab.StructTypeKind && s.Backend().IsOpaqueStruct(b.Type) {
				def = "opaque"
			}
			tb.Row(b.Name, kind.String(), def)
		}
		if tb.Len() == 0 {
			fmt.Fprintln(out, "no types bound")
			return nil
		}
		return tb.Render(out)
	}

	for _, expr := range args {
		ty, err := s.ParseType(expr)
		if err != nil {
			return err
		}
		text, err := s.Names().RenderType(ty)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, text)
	}
	return nil
}

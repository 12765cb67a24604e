package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"llbridge/internal/session"
	"llbridge/internal/ui"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <expr>...",
	Short: "Show size, alignment and field offsets of types under the target data layout",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLayout,
}

func runLayout(cmd *cobra.Command, args []string) (err error) {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer closeSession(s, &err)

	out := cmd.OutOrStdout()
	target := s.Target()
	fmt.Fprintf(out, "datalayout %q, %d-byte pointers, %s endian\n\n",
		target.StringRep(), target.PointerSize(), target.ByteOrder())

	for i, expr := range args {
		ty, err := s.ParseType(expr)
		if err != nil {
			return err
		}
		l, err := s.DescribeLayout(ty)
		if err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(out)
		}
		if err := renderLayout(out, l); err != nil {
			return err
		}
	}
	return nil
}

func renderLayout(out io.Writer, l session.Layout) error {
	fmt.Fprintf(out, "%s (%s)\n", l.Type, l.Kind)
	fmt.Fprintf(out, "  size %d bits, store %d, alloc %d, align %d abi / %d preferred\n",
		l.SizeInBits, l.StoreSize, l.ABISize, l.ABIAlign, l.PrefAlign)
	if len(l.Fields) == 0 {
		return nil
	}
	tb := ui.NewTable(app.color,
		ui.Column{Title: "  #", Align: ui.AlignRight},
		ui.Column{Title: "Offset", Align: ui.AlignRight},
		ui.Column{Title: "Size", Align: ui.AlignRight},
		ui.Column{Title: "Type"},
	)
	for _, f := range l.Fields {
		tb.Row(strconv.FormatUint(uint64(f.Index), 10), tb.Number(f.Offset), tb.Number(f.Size), f.Type)
	}
	return tb.Render(out)
}

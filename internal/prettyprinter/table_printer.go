package prettyprinter

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/funvibe/speclink/internal/symbols"
)

// TableOptions controls PrintTable.
type TableOptions struct {
	IncludeBuiltins bool // list entries that only hold the builtin definition
}

// PrintTable renders a lookup table as aligned columns, one row per
// definition, names sorted.
func PrintTable(table symbols.LookupTable, opts TableOptions) string {
	var sb strings.Builder
	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tREF\tSCOPE\tTYPE")

	names := table.UserNames()
	if opts.IncludeBuiltins {
		names = table.Names()
	}
	for _, name := range names {
		cell := table[name]
		for _, v := range cell.Values {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, v.Kind, ref(v.Reference), ref(v.Scope), annotation(v))
		}
		for _, t := range cell.Types {
			typ := "(opaque)"
			if !t.IsOpaque() {
				typ = PrintType(t.Type)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, symbols.KindTypedef, ref(t.Reference), "-", typ)
		}
	}
	w.Flush()
	return sb.String()
}

func ref(id uint64) string {
	if id == 0 {
		return "-"
	}
	return fmt.Sprint(id)
}

func annotation(v symbols.ValueDefinition) string {
	if v.TypeAnnotation == nil {
		return "-"
	}
	return PrintType(v.TypeAnnotation)
}

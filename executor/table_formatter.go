package executor

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/wbrown/typedb-core/compiler"
	"github.com/wbrown/typedb-core/ir"
)

// TableFormatter renders rows produced by a MatchExecutable as a markdown
// table.
type TableFormatter struct{}

// NewTableFormatter creates a formatter with default settings.
func NewTableFormatter() *TableFormatter { return &TableFormatter{} }

// FormatRows renders rows under the column names of executable's selected
// variables.
func (f *TableFormatter) FormatRows(executable *compiler.MatchExecutable, rows []ir.Row) string {
	if len(rows) == 0 {
		return "_No rows_"
	}

	headers := make([]string, len(executable.SelectedVars))
	for i, v := range executable.SelectedVars {
		headers[i] = v.String()
	}
	positions := executable.SelectedPositions()

	alignment := make([]tw.Align, len(headers))
	for i := range alignment {
		alignment[i] = tw.AlignNone
	}

	sb := &strings.Builder{}
	table := tablewriter.NewTable(sb,
		tablewriter.WithRenderer(renderer.NewMarkdown()),
		tablewriter.WithAlignment(alignment),
		tablewriter.WithHeaderAutoFormat(tw.Off),
	)
	table.Header(headers)

	for _, row := range rows {
		cells := make([]string, len(positions))
		for i, pos := range positions {
			if int(pos) < len(row) {
				cells[i] = row[pos].String()
			}
		}
		table.Append(cells)
	}
	table.Render()
	sb.WriteString(fmt.Sprintf("\n_%d rows_\n", len(rows)))
	return sb.String()
}

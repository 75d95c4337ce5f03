package ui

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Table is a plain description of a table; the console decides how it looks
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string

	// Indexed marks the first column as the selection index column
	Indexed bool

	// MaxCellWidth truncates long cells (event messages) when > 0
	MaxCellWidth int
}

// Len returns the number of data rows
func (t Table) Len() int {
	return len(t.Rows)
}

// IndexedTable builds a table whose first column is the 1-based row index
func IndexedTable(headers []string, rows [][]string) Table {
	t := Table{
		Headers: append([]string{"INDEX"}, headers...),
		Rows:    make([][]string, 0, len(rows)),
		Indexed: true,
	}
	for i, row := range rows {
		t.Rows = append(t.Rows, append([]string{strconv.Itoa(i + 1)}, row...))
	}
	return t
}

func (c *Console) renderTable(t Table) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault

	if t.Title != "" {
		tw.SetTitle(t.Title)
		tw.Style().Title.Align = text.AlignCenter
		// widen narrow tables so the title stays on one line
		tw.Style().Size.WidthMin = text.RuneWidthWithoutEscSequences(t.Title) + 4
	}
	if len(t.Headers) > 0 {
		tw.AppendHeader(toRow(t.Headers, 0))
	}
	for _, row := range t.Rows {
		tw.AppendRow(toRow(row, t.MaxCellWidth))
	}

	if c.color {
		tw.Style().Color.Header = text.Colors{text.Bold, text.FgMagenta}
		tw.Style().Title.Colors = text.Colors{text.Bold, text.FgYellow}
		if t.Indexed {
			tw.SetColumnConfigs([]table.ColumnConfig{
				{Number: 1, Colors: text.Colors{text.Bold, text.FgGreen}},
			})
		}
	}
	return tw.Render()
}

func toRow(cells []string, maxWidth int) table.Row {
	row := make(table.Row, len(cells))
	for i, cell := range cells {
		if maxWidth > 0 {
			cell = truncate(singleLine(cell), maxWidth)
		}
		row[i] = cell
	}
	return row
}

// Package formatter renders the run summary as Markdown.
package formatter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// minColumnWidth is the shortest separator Markdown renderers accept.
const minColumnWidth = 3

// alignTable renders header and rows as a Markdown table whose columns line
// up by display width, so CJK cells occupy two columns each.
func alignTable(header []string, rows [][]string) []string {
	table := append([][]string{header}, rows...)

	colCount := 0
	for _, row := range table {
		colCount = max(colCount, len(row))
	}

	colWidths := make([]int, colCount)
	for i := range colWidths {
		colWidths[i] = minColumnWidth
	}

	for _, row := range table {
		for i, cell := range row {
			colWidths[i] = max(colWidths[i], runewidth.StringWidth(cell))
		}
	}

	result := make([]string, 0, len(table)+1)
	result = append(result, renderRow(header, colWidths))

	sep := make([]string, colCount)
	for i, w := range colWidths {
		sep[i] = strings.Repeat("-", w)
	}

	result = append(result, renderRow(sep, colWidths))

	for _, row := range rows {
		result = append(result, renderRow(row, colWidths))
	}

	return result
}

func renderRow(cells []string, widths []int) string {
	var sb strings.Builder

	sb.WriteString("|")

	for j, w := range widths {
		content := ""
		if j < len(cells) {
			content = cells[j]
		}

		sb.WriteString(" ")
		sb.WriteString(runewidth.FillRight(content, w))
		sb.WriteString(" |")
	}

	return sb.String()
}

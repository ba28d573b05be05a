// Package layout sizes the host-pulse screen regions and table columns.
package layout

// ColumnPadding is the fixed number of cells added to every column.
const ColumnPadding = 2

// Columns splits a total width evenly across count columns: each column gets
// total/count (rounded down) plus padding, so the widths sum to at least
// total. A non-positive count yields nil; a negative total is treated as 0.
func Columns(total, count, padding int) []int {
	if count <= 0 {
		return nil
	}
	if total < 0 {
		total = 0
	}
	if padding < 0 {
		padding = 0
	}
	w := total/count + padding
	widths := make([]int, count)
	for i := range widths {
		widths[i] = w
	}
	return widths
}

// FitContent sizes each column to its content width plus padding. It is
// used before the terminal width is known.
func FitContent(contentWidths []int, padding int) []int {
	if padding < 0 {
		padding = 0
	}
	widths := make([]int, len(contentWidths))
	for i, cw := range contentWidths {
		if cw < 0 {
			cw = 0
		}
		widths[i] = cw + padding
	}
	return widths
}

// ContentWidths returns the widest cell in each column, including the
// header. measure reports the display width of a string.
func ContentWidths(headers []string, rows [][]string, measure func(string) int) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = measure(h)
	}
	for _, row := range rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := measure(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// BodyHeight returns the rows left for the table once the fixed chrome
// lines are removed, never less than minRows.
func BodyHeight(total, chrome, minRows int) int {
	h := total - chrome
	if h < minRows {
		return minRows
	}
	return h
}

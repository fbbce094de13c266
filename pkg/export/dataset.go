package export

import "unicode/utf8"

// Dataset defines tabular export content.
type Dataset struct {
	Title   string
	Sheet   string
	Headers []string
	Rows    []map[string]string
}

// Renderer serialises a dataset into one file format.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// ColumnWidths sizes each column to its longest cell, header included, clamped to
// [minWidth, maxWidth] and widened by padding.
func ColumnWidths(data Dataset, minWidth, maxWidth, padding int) []int {
	widths := make([]int, len(data.Headers))
	for i, header := range data.Headers {
		longest := utf8.RuneCountInString(header)
		for _, row := range data.Rows {
			if n := utf8.RuneCountInString(row[header]); n > longest {
				longest = n
			}
		}
		if longest < minWidth {
			longest = minWidth
		}
		if longest > maxWidth {
			longest = maxWidth
		}
		widths[i] = longest + padding
	}
	return widths
}

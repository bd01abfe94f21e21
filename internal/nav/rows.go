package nav

import (
	"strconv"

	"dvach/internal/export"
)

// Rows flattens what a frame currently shows into export rows: the visible
// entries of a list frame, or every post of a thread.
func Rows(f Frame) []export.Row {
	var rows []export.Row
	switch f := f.(type) {
	case *BoardsFrame:
		for _, e := range f.Visible() {
			rows = append(rows, export.Row{Key: e.Key(), Label: e.Label(), Body: e.Category})
		}
	case *ThreadsFrame:
		for _, e := range f.Visible() {
			rows = append(rows, export.Row{Key: e.Key(), Label: e.Label(), Body: e.Subject})
		}
	case *PostsFrame:
		for _, b := range f.Blocks {
			rows = append(rows, export.Row{Key: strconv.Itoa(b.ID), Label: b.Header(), Body: b.Text()})
		}
	}
	return rows
}

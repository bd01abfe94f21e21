package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"dvach/internal/model"
)

var (
	idStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	dateStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	fileStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// PrintBoards writes one "{id:>10} {category:20} {name}" line per board.
// Padding is measured in terminal cells so Cyrillic categories line up.
func PrintBoards(w io.Writer, boards []model.Board) error {
	for _, b := range boards {
		line := runewidth.FillLeft(b.ID, 10) + " " + runewidth.FillRight(b.Category, 20) + " " + b.Name
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// PrintThreads writes every thread as "{id} {subject}" followed by its
// wrapped, indented teaser.
func PrintThreads(w io.Writer, threads []model.Thread, width int) error {
	for _, t := range threads {
		_, err := fmt.Fprintf(w, "%s %s\n%s\n",
			idStyle.Render(t.ID),
			t.Subject,
			Layout(Teaser(t.Comment), width, DefaultIndent),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// PrintPosts writes every post as a colored block: id and date, image hints,
// then the wrapped body.
func PrintPosts(w io.Writer, posts []model.Post, opts Options) error {
	for _, b := range RenderPosts(posts, opts) {
		var sb strings.Builder
		sb.WriteString(idStyle.Render(fmt.Sprint(b.ID)))
		sb.WriteByte(' ')
		sb.WriteString(dateStyle.Render(b.Date))
		for _, h := range b.Hints {
			sb.WriteString("\n" + DefaultIndent + fileStyle.Render(h.FullName))
			sb.WriteString("\n" + DefaultIndent + h.Command)
		}
		sb.WriteByte('\n')
		sb.WriteString(b.Body)
		if _, err := fmt.Fprintln(w, sb.String()); err != nil {
			return err
		}
	}
	return nil
}

package render

import (
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
)

const (
	DefaultWidth  = 80
	DefaultIndent = "  "
)

// Layout wraps text to width and prefixes every resulting line, empty ones
// included, with prefix.
func Layout(text string, width int, prefix string) string {
	return Indent(Wrap(text, width), prefix)
}

// Wrap breaks text greedily at whitespace so that no line is wider than
// width cells. Existing newlines are kept and leading spaces of each line
// dropped. A word wider than width is not split; it ends up alone on its
// line. Non-positive widths mean DefaultWidth.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, " ")
	}
	w := wordwrap.NewWriter(width)
	// only whitespace breaks lines; "foo-bar" stays together
	w.Breakpoints = nil
	_, _ = w.Write([]byte(strings.Join(lines, "\n")))
	_ = w.Close()
	return w.String()
}

// Indent prepends prefix to every line of text, including empty lines.
func Indent(text, prefix string) string {
	if prefix == "" || text == "" {
		return text
	}
	if strings.Trim(prefix, " ") == "" {
		return indent.String(text, uint(len(prefix)))
	}
	lines := strings.Split(text, "\n")
	last := len(lines) - 1
	for i, l := range lines {
		if i == last && l == "" {
			break
		}
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}

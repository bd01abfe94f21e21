package render

import (
	"fmt"
	"strconv"
	"strings"

	"dvach/internal/model"
)

// Options controls how posts are turned into display blocks.
type Options struct {
	Width  int
	Indent string
	// Program is the command line prefix used in image retrieval hints,
	// e.g. "dvach" or "dvach --base-url https://example.org".
	Program string
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Indent == "" {
		o.Indent = DefaultIndent
	}
	if o.Program == "" {
		o.Program = "dvach"
	}
	return o
}

// Hint describes how to fetch one image from the command line.
type Hint struct {
	FullName string
	Command  string
}

// ImageHint builds the copyable retrieval command for img.
func ImageHint(img model.Image, program string) Hint {
	return Hint{
		FullName: img.FullName,
		Command:  fmt.Sprintf("%s --download %s > %s && xdg-open %s", program, img.Path, img.Name, img.Name),
	}
}

// Block is a post rendered for display.
type Block struct {
	ID    int
	Date  string
	Hints []Hint
	// Body is the comment in body mode, wrapped and indented.
	Body string
}

func RenderPost(p model.Post, opts Options) Block {
	opts = opts.withDefaults()
	b := Block{
		ID:   p.ID,
		Date: p.Date,
		Body: Layout(Body(p.Comment), opts.Width, opts.Indent),
	}
	for _, img := range p.Images {
		b.Hints = append(b.Hints, ImageHint(img, opts.Program))
	}
	return b
}

func RenderPosts(posts []model.Post, opts Options) []Block {
	out := make([]Block, 0, len(posts))
	for _, p := range posts {
		out = append(out, RenderPost(p, opts))
	}
	return out
}

// Header is the first line of a block: "{id} {date}".
func (b Block) Header() string {
	return strconv.Itoa(b.ID) + " " + b.Date
}

// HintLines returns the hint lines of the block, indented with prefix.
func (b Block) HintLines(prefix string) []string {
	lines := make([]string, 0, 2*len(b.Hints))
	for _, h := range b.Hints {
		lines = append(lines, prefix+h.FullName, prefix+h.Command)
	}
	return lines
}

// Text is the uncolored representation of the block.
func (b Block) Text() string {
	var sb strings.Builder
	sb.WriteString(b.Header())
	for _, l := range b.HintLines(DefaultIndent) {
		sb.WriteByte('\n')
		sb.WriteString(l)
	}
	if b.Body != "" {
		sb.WriteByte('\n')
		sb.WriteString(b.Body)
	}
	return sb.String()
}

// Commands returns the retrieval commands of every block, in order.
func Commands(blocks []Block) []string {
	var out []string
	for _, b := range blocks {
		for _, h := range b.Hints {
			out = append(out, h.Command)
		}
	}
	return out
}

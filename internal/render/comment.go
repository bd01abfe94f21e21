// Package render turns the markup carried by board payloads into plain,
// wrapped and indented terminal text.
package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Teaser returns the first text node of a comment, cut at its first
// newline. A comment without text yields "".
func Teaser(comment string) string {
	nodes := textNodes(fragment(comment), nil)
	if len(nodes) == 0 {
		return ""
	}
	first := nodes[0]
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return first
}

// Body returns every text node of a comment in document order, one per
// line. Tags only delimit text nodes, so "<span>a</span><br><span>b</span>"
// becomes "a\nb".
func Body(comment string) string {
	return strings.Join(textNodes(fragment(comment), nil), "\n")
}

// fragment parses s as the inner HTML of a <body> element. The HTML5
// fragment parser recovers from unclosed and unknown tags; a strings.Reader
// never fails, so an error simply leaves the fragment empty.
func fragment(s string) *goquery.Selection {
	root := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	if s != "" {
		context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		if nodes, err := html.ParseFragment(strings.NewReader(s), context); err == nil {
			for _, n := range nodes {
				root.AppendChild(n)
			}
		}
	}
	return goquery.NewDocumentFromNode(root).Selection
}

func textNodes(sel *goquery.Selection, out []string) []string {
	sel.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			out = append(out, c.Nodes[0].Data)
			return
		}
		out = textNodes(c, out)
	})
	return out
}

// Package extract turns the server's human-facing HTML pages into typed
// records. Every lookup is best-effort: a missing element resolves to a
// default value and never aborts extraction of the other fields.
package extract

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/lai323/lutego/utils"
	"golang.org/x/net/html"
)

// ErrUnparseable is returned when the input is not HTML at all, as opposed
// to HTML that happens to contain nothing of interest.
var ErrUnparseable = errors.New("extract: input is not an html document")

type Extractor struct {
	log *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{log: logger.With("component", "extract")}
}

// Parse builds a document tree. The html tokenizer accepts nearly any byte
// sequence, so input without a single tag is treated as structural failure.
func Parse(text string) (*html.Node, error) {
	if strings.TrimSpace(text) == "" || !strings.Contains(text, "<") {
		return nil, ErrUnparseable
	}
	doc, err := htmlquery.Parse(strings.NewReader(text))
	if err != nil {
		return nil, errors.Join(ErrUnparseable, err)
	}
	return doc, nil
}

func attr(n *html.Node, name string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// text is the whitespace-collapsed inner text of n.
func text(n *html.Node) string {
	if n == nil {
		return ""
	}
	return utils.CollapseSpace(htmlquery.InnerText(n))
}

// rawText keeps line breaks, for form fields whose value is free text.
func rawText(n *html.Node) string {
	if n == nil {
		return ""
	}
	return strings.TrimSpace(htmlquery.InnerText(n))
}

func isHeading(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		return true
	}
	return false
}

// headings collects heading elements below n in document order.
func headings(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			if isHeading(c) {
				out = append(out, c)
			}
			walk(c.FirstChild)
		}
	}
	if n != nil {
		walk(n.FirstChild)
	}
	return out
}

var invisible = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"head":     true,
}

// visibleLines returns the non-empty trimmed lines of the rendered text
// below n, skipping script-like elements.
func visibleLines(n *html.Node) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		for ; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				for _, l := range strings.Split(c.Data, "\n") {
					if l = strings.TrimSpace(l); l != "" {
						lines = append(lines, l)
					}
				}
			case html.ElementNode:
				if invisible[c.Data] {
					continue
				}
				walk(c.FirstChild)
			default:
				walk(c.FirstChild)
			}
		}
	}
	if n != nil {
		walk(n.FirstChild)
	}
	return lines
}

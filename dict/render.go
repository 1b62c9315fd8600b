package dict

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

// RenderText turns sanitized dictionary markup into plain text for the
// terminal. Readability handles article-shaped pages; short entries it
// rejects fall back to the document text.
func RenderText(content, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	if article, err := readability.FromReader(strings.NewReader(content), u); err == nil {
		if text := strings.TrimSpace(article.TextContent); text != "" {
			return tidyLines(text)
		}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return ""
	}
	return tidyLines(doc.Text())
}

func tidyLines(text string) string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return strings.Join(lines, "\n")
}

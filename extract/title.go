package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

const bookTitlePrefix = "Book: "

// TitleStrategy tries to read a book title from a parsed page.
type TitleStrategy struct {
	Name string
	Find func(doc *html.Node) (string, bool)
}

// TitleStrategies are tried in order; the first hit wins. The server has no
// single markup contract for titles across its templates.
var TitleStrategies = []TitleStrategy{
	{"prefixed heading", prefixedHeading},
	{"container heading", containerHeading},
	{"first heading", firstHeading},
	{"document title", documentTitle},
	{"title input", titleInput},
	{"body text", bodyTextLine},
}

// BookTitle returns the first title any strategy finds, or "Book <id>".
func (e *Extractor) BookTitle(page string, fallbackID int) string {
	if title, ok := e.FindBookTitle(page); ok {
		return title
	}
	return fmt.Sprintf("Book %d", fallbackID)
}

// FindBookTitle runs the title strategies and reports whether any matched.
func (e *Extractor) FindBookTitle(page string) (string, bool) {
	doc, err := Parse(page)
	if err != nil {
		return "", false
	}
	for _, s := range TitleStrategies {
		if title, ok := s.Find(doc); ok {
			e.log.Debug("book title found", "strategy", s.Name)
			return title, true
		}
	}
	return "", false
}

func prefixedHeading(doc *html.Node) (string, bool) {
	for _, h := range headings(doc) {
		t := text(h)
		if strings.HasPrefix(t, bookTitlePrefix) {
			if t = strings.TrimSpace(strings.TrimPrefix(t, bookTitlePrefix)); t != "" {
				return t, true
			}
		}
	}
	return "", false
}

const titleContainerXPath = `//*[@id="thetexttitle" or @id="reading_header" or contains(concat(" ", normalize-space(@class), " "), " book-title ")]`

func containerHeading(doc *html.Node) (string, bool) {
	for _, c := range htmlquery.Find(doc, titleContainerXPath) {
		for _, h := range headings(c) {
			t := strings.TrimSpace(strings.TrimPrefix(text(h), bookTitlePrefix))
			if t != "" {
				return t, true
			}
		}
	}
	return "", false
}

func firstHeading(doc *html.Node) (string, bool) {
	for _, h := range headings(doc) {
		if t := text(h); t != "" {
			return t, true
		}
	}
	return "", false
}

var (
	brandSuffix = regexp.MustCompile(`(?i)\s*[|:\-–—]\s*lute(\s+v?\d[\w.]*)?\s*$`)
	brandPrefix = regexp.MustCompile(`(?i)^\s*lute(\s+v?\d[\w.]*)?\s*[|:\-–—]\s*`)
)

func documentTitle(doc *html.Node) (string, bool) {
	t := text(htmlquery.FindOne(doc, `//title`))
	t = brandSuffix.ReplaceAllString(t, "")
	t = brandPrefix.ReplaceAllString(t, "")
	t = strings.TrimSpace(t)
	if t == "" || strings.EqualFold(t, "lute") {
		return "", false
	}
	return t, true
}

func titleInput(doc *html.Node) (string, bool) {
	v, _ := attr(htmlquery.FindOne(doc, `//input[@name="title"]`), "value")
	if v = strings.TrimSpace(v); v == "" {
		return "", false
	}
	return v, true
}

// chromeLines are navigation labels that appear on every page and must not
// be mistaken for a title.
var chromeLines = map[string]bool{}

func init() {
	for _, l := range []string{
		"lute",
		"home",
		"settings",
		"books",
		"terms",
		"term list",
		"create new book",
		"import web page",
		"mark rest as known",
		"mark page as read",
		"edit book",
		"archive book",
		"version and software info",
		"keyboard shortcuts",
		"language settings",
		"learning lute",
		"loading...",
		"create backup",
		"lute - learning using texts",
		"about",
	} {
		chromeLines[l] = true
	}
}

func bodyTextLine(doc *html.Node) (string, bool) {
	body := htmlquery.FindOne(doc, `//body`)
	if body == nil {
		return "", false
	}
	for _, l := range visibleLines(body) {
		if looksLikeTitle(l) {
			return l, true
		}
	}
	return "", false
}

func looksLikeTitle(l string) bool {
	if utf8.RuneCountInString(l) <= 10 || chromeLines[strings.ToLower(l)] {
		return false
	}
	if strings.Contains(l, ":") || strings.Contains(l, "--") {
		return true
	}
	for _, r := range l {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

package extract

import (
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/lai323/lutego/model"
	"golang.org/x/net/html"
)

const defaultLanguageID = 1

// TermForm reads the term edit form. clickedText stands in for the term
// text when the form has none.
func (e *Extractor) TermForm(page string, termID int, clickedText string) (model.TermFormData, error) {
	doc, err := Parse(page)
	if err != nil {
		return model.TermFormData{}, err
	}

	form := model.TermFormData{
		TermID:       termID,
		Text:         TermText(doc),
		LanguageID:   LanguageID(doc),
		Sentence:     Sentence(doc),
		Translation:  Translation(doc),
		Romanization: inputValue(doc, "romanization"),
		Status:       Status(doc),
		Parents:      e.tagList(doc, "parentslist"),
		Tags:         e.tagList(doc, "termtagslist"),
		SyncStatus:   SyncStatus(doc),
	}
	if form.Text == "" {
		form.Text = strings.TrimSpace(clickedText)
	}
	return form, nil
}

func inputValue(doc *html.Node, id string) string {
	n := htmlquery.FindOne(doc, `//input[@id="`+id+`"]`)
	if n == nil {
		n = htmlquery.FindOne(doc, `//input[@name="`+id+`"]`)
	}
	v, _ := attr(n, "value")
	return strings.TrimSpace(v)
}

func TermText(doc *html.Node) string {
	return inputValue(doc, "text")
}

func Translation(doc *html.Node) string {
	return rawText(htmlquery.FindOne(doc, `//textarea[@id="translation"]`))
}

func Sentence(doc *html.Node) string {
	n := htmlquery.FindOne(doc, `//textarea[@id="sentence"]`)
	if n != nil {
		return rawText(n)
	}
	return inputValue(doc, "sentence")
}

// Status maps the checked radio of the status list through the fixed code
// set, defaulting to the lowest learning status.
func Status(doc *html.Node) model.Status {
	n := htmlquery.FindOne(doc, `//ul[@id="status"]//input[@type="radio"][@checked]`)
	if n == nil {
		n = htmlquery.FindOne(doc, `//input[@type="radio"][@name="status"][@checked]`)
	}
	v, ok := attr(n, "value")
	if !ok {
		return model.DefaultStatus
	}
	s, _ := model.ParseStatus(strings.TrimSpace(v))
	return s
}

func LanguageID(doc *html.Node) int {
	v, ok := attr(htmlquery.FindOne(doc, `//select[@id="language_id"]/option[@selected]`), "value")
	if !ok {
		// Existing terms render the language as a hidden input.
		v, ok = attr(htmlquery.FindOne(doc, `//input[@id="language_id"]`), "value")
	}
	if !ok {
		return defaultLanguageID
	}
	id, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || id <= 0 {
		return defaultLanguageID
	}
	return id
}

func SyncStatus(doc *html.Node) bool {
	n := htmlquery.FindOne(doc, `//input[@id="sync_status"]`)
	_, checked := attr(n, "checked")
	return checked
}

// Parents returns the values of the parent term list in document order.
func Parents(doc *html.Node) []string {
	values, _ := TagListValue(inputValue(doc, "parentslist"))
	return values
}

func (e *Extractor) tagList(doc *html.Node, id string) []string {
	raw := inputValue(doc, id)
	values, err := TagListValue(raw)
	if err != nil {
		e.log.Warn("unreadable tag list", "input", id, "error", err)
	}
	return values
}

// TagListValue decodes a hidden input value holding a JSON array of
// {"value": ...} objects. The parser has already resolved entities once;
// the value is only unescaped a second time if it is still entity-encoded
// and does not parse as is.
func TagListValue(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return []string{}, nil
	}
	values, err := model.DecodeTagList(raw)
	if err == nil {
		return values, nil
	}
	unescaped := html.UnescapeString(raw)
	if unescaped == raw {
		return []string{}, err
	}
	values, err2 := model.DecodeTagList(unescaped)
	if err2 != nil {
		return []string{}, err2
	}
	return values, nil
}

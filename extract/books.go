package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/lai323/lutego/model"
	"golang.org/x/net/html"
)

const bookTableXPath = `//table[@id="booktable"]`

var readHref = regexp.MustCompile(`/read/(\d+)`)

// BookIDFromHref returns the numeric id of a /read/<id> link, or 0.
func BookIDFromHref(href string) int {
	m := readHref.FindStringSubmatch(href)
	if len(m) != 2 {
		return 0
	}
	id, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	return id
}

// BookList reads the static rows of the listing table. A table that the
// browser fills in asynchronously has no static rows; that yields an empty
// list, not an error.
func (e *Extractor) BookList(page string) ([]model.Book, error) {
	doc, err := Parse(page)
	if err != nil {
		return nil, err
	}

	books := []model.Book{}
	table := htmlquery.FindOne(doc, bookTableXPath)
	if table == nil {
		e.log.Debug("book table not found")
		return books, nil
	}

	for i, row := range htmlquery.Find(table, `.//tr[td]`) {
		book, ok := bookFromRow(row)
		if !ok {
			e.log.Warn("skipping book row", "row", i)
			continue
		}
		books = append(books, book)
	}

	if len(books) == 0 {
		if noBooks(doc) {
			e.log.Debug("listing page reports no books")
		} else {
			e.log.Debug("book table has no static rows")
		}
	}
	return books, nil
}

func bookFromRow(row *html.Node) (model.Book, bool) {
	cells := htmlquery.Find(row, `./td`)
	if len(cells) < 2 {
		// DataTables renders its "empty" placeholder as a single spanning cell.
		return model.Book{}, false
	}

	var book model.Book
	if a := htmlquery.FindOne(cells[0], `.//a[@href]`); a != nil {
		href, _ := attr(a, "href")
		book.ID = BookIDFromHref(href)
		book.Title = text(a)
	}
	if book.Title == "" {
		book.Title = text(cells[0])
	}
	book.Language = text(cells[1])
	if len(cells) > 3 {
		book.WordCount = parseCount(text(cells[3]))
	}
	return book, true
}

// parseCount reads "1,234" style numbers; anything else is 0.
func parseCount(s string) int {
	s = strings.NewReplacer(",", "", " ", "", " ", "").Replace(s)
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func noBooks(doc *html.Node) bool {
	if htmlquery.FindOne(doc, `//*[contains(@class,"dataTables_empty") or @id="nobooks"]`) != nil {
		return true
	}
	for _, l := range visibleLines(doc) {
		if strings.Contains(strings.ToLower(l), "no books") {
			return true
		}
	}
	return false
}

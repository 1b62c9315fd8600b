// Package datatables speaks the server-side paging protocol used by the
// book listing table.
package datatables

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/lai323/lutego/model"
	"github.com/tidwall/gjson"
)

const defaultTitle = "Unknown Title"

// ErrUnparseable reports a paging response that is not a JSON object.
var ErrUnparseable = errors.New("datatables: response is not a json object")

// Response is the decoded envelope. Draw and the record counts are
// informational only.
type Response struct {
	Draw            int
	RecordsTotal    int
	RecordsFiltered int
	Books           []model.Book
}

type Parser struct {
	log *slog.Logger
}

func NewParser(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{log: logger.With("component", "datatables")}
}

// Books parses a paging response into books. It returns nil when the body
// is not a JSON object, and an empty slice when it simply has no rows.
func (p *Parser) Books(body string) []model.Book {
	resp, ok := p.Parse(body)
	if !ok {
		return nil
	}
	return resp.Books
}

func (p *Parser) Parse(body string) (Response, bool) {
	if !gjson.Valid(body) {
		p.log.Warn("paging response is not valid json", "bytes", len(body))
		return Response{}, false
	}
	root := gjson.Parse(body)
	if !root.IsObject() {
		p.log.Warn("paging response is not an object")
		return Response{}, false
	}

	resp := Response{
		Draw:            int(root.Get("draw").Int()),
		RecordsTotal:    int(root.Get("recordsTotal").Int()),
		RecordsFiltered: int(root.Get("recordsFiltered").Int()),
		Books:           []model.Book{},
	}

	data := root.Get("data")
	if !data.IsArray() {
		return resp, true
	}
	for i, item := range data.Array() {
		// Rows are objects keyed by column name, not positional arrays.
		if !item.IsObject() {
			p.log.Warn("skipping paging row", "row", i, "type", item.Type.String())
			continue
		}
		book, ok := bookFromRow(item)
		if !ok {
			p.log.Warn("skipping paging row without id", "row", i)
			continue
		}
		resp.Books = append(resp.Books, book)
	}
	return resp, true
}

func bookFromRow(row gjson.Result) (model.Book, bool) {
	id, ok := intField(row, "BkID")
	if !ok {
		return model.Book{}, false
	}
	book := model.Book{
		ID:        id,
		Title:     stringField(row, "BkTitle", defaultTitle),
		Language:  stringField(row, "LgName", ""),
		WordCount: 0,
	}
	if n, ok := intField(row, "WordCount"); ok {
		book.WordCount = n
	}
	book.StatusDistribution = optionalString(row, "StatusDistribution")
	book.UnknownPercent = optionalInt(row, "UnknownPercent")
	book.DistinctUnknowns = optionalInt(row, "DistinctUnknowns")
	book.DistinctCount = optionalInt(row, "DistinctCount")
	book.PageNum = optionalInt(row, "PageNum")
	book.PageCount = optionalInt(row, "PageCount")
	book.LastOpenedDate = optionalString(row, "LastOpenedDate")
	return book, true
}

func stringField(row gjson.Result, key, def string) string {
	v := row.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.String()
}

func optionalString(row gjson.Result, key string) *string {
	v := row.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	s := v.String()
	return &s
}

// intField accepts numbers and numeric strings; the server emits both.
func intField(row gjson.Result, key string) (int, bool) {
	v := row.Get(key)
	switch v.Type {
	case gjson.Number:
		return int(v.Int()), true
	case gjson.String:
		n, err := strconv.Atoi(v.Str)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// optionalInt keeps present, non-negative values.
func optionalInt(row gjson.Result, key string) *int {
	n, ok := intField(row, key)
	if !ok || n < 0 {
		return nil
	}
	return &n
}

package extract

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/lai323/lutego/model"
	"golang.org/x/net/html"
)

var dictFieldName = regexp.MustCompile(`^dictionaries-(\d+)-(\w+)$`)

type dictRow struct {
	uri, useFor, dictType string
	active                bool
}

// LanguageDictionaries reads the dictionary rows of the language edit form,
// in form order.
func (e *Extractor) LanguageDictionaries(page string) ([]model.DictionaryInfo, error) {
	doc, err := Parse(page)
	if err != nil {
		return nil, err
	}

	rows := map[int]*dictRow{}
	for _, n := range htmlquery.Find(doc, `//*[starts-with(@name,"dictionaries-")]`) {
		name, _ := attr(n, "name")
		m := dictFieldName.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		idx, _ := strconv.Atoi(m[1])
		row, ok := rows[idx]
		if !ok {
			row = &dictRow{}
			rows[idx] = row
		}
		switch m[2] {
		case "dicturi":
			row.uri, _ = attr(n, "value")
		case "usefor":
			row.useFor = fieldValue(n)
		case "dicttype":
			row.dictType = fieldValue(n)
		case "is_active":
			_, row.active = attr(n, "checked")
		}
	}

	idxs := make([]int, 0, len(rows))
	for i := range rows {
		idxs = append(idxs, i)
	}
	sort.Ints(idxs)

	dicts := []model.DictionaryInfo{}
	for _, i := range idxs {
		row := rows[i]
		if strings.TrimSpace(row.uri) == "" {
			e.log.Warn("skipping dictionary row without url", "row", i)
			continue
		}
		d := model.NewDictionaryInfo(row.uri, model.DictionaryUse(row.useFor), row.active)
		d.Popup = row.dictType == "popuphtml"
		dicts = append(dicts, d)
	}
	return dicts, nil
}

// fieldValue reads an input's value or a select's selected option.
func fieldValue(n *html.Node) string {
	if n.Data == "select" {
		opt := htmlquery.FindOne(n, `./option[@selected]`)
		if opt == nil {
			opt = htmlquery.FindOne(n, `./option`)
		}
		v, _ := attr(opt, "value")
		return strings.TrimSpace(v)
	}
	v, _ := attr(n, "value")
	return strings.TrimSpace(v)
}

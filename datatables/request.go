package datatables

import (
	"net/url"
	"strconv"
)

// DefaultPageLength matches the listing page's initial page size.
const DefaultPageLength = 10

// Columns are the listing table's columns in the order the page declares
// them.
var Columns = []string{
	"BkTitle",
	"LgName",
	"TagList",
	"WordCount",
	"UnknownPercent",
	"LastOpenedDate",
	"BkID",
}

// FirstLoadRequest reproduces the exact parameter set the listing page
// sends on first load. The server builds invalid SQL when some of these
// parameters are missing, so none may be dropped.
func FirstLoadRequest(length int) url.Values {
	if length <= 0 {
		length = DefaultPageLength
	}
	v := url.Values{}
	v.Set("draw", "1")
	for i, name := range Columns {
		prefix := "columns[" + strconv.Itoa(i) + "]"
		v.Set(prefix+"[data]", strconv.Itoa(i))
		v.Set(prefix+"[name]", name)
		v.Set(prefix+"[searchable]", "true")
		v.Set(prefix+"[orderable]", "true")
		v.Set(prefix+"[search][value]", "")
		v.Set(prefix+"[search][regex]", "false")
	}
	v.Set("order[0][column]", "0")
	v.Set("order[0][dir]", "asc")
	v.Set("start", "0")
	v.Set("length", strconv.Itoa(length))
	v.Set("search[value]", "")
	v.Set("search[regex]", "false")
	return v
}

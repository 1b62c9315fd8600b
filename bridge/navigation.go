package bridge

import (
	"regexp"
	"strconv"
	"strings"
)

const readSegment = "/read/"

var readSuffix = regexp.MustCompile(`/read/(\d+)/?$`)

// InterceptNavigation extracts the book id of a reading URL. Links that
// carry more than the id, like a page number or a query, are handled by
// splitting on the path instead.
func InterceptNavigation(rawURL string) (int, bool) {
	if m := readSuffix.FindStringSubmatch(rawURL); m != nil {
		if id, err := strconv.Atoi(m[1]); err == nil && id > 0 {
			return id, true
		}
	}

	parts := strings.SplitN(rawURL, readSegment, 2)
	if len(parts) != 2 {
		return 0, false
	}
	rest := parts[1]
	if i := strings.IndexAny(rest, "/?#"); i >= 0 {
		rest = rest[:i]
	}
	id, err := strconv.Atoi(rest)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

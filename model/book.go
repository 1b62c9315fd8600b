package model

// Book is one document on the server. Optional fields are nil when the
// source did not carry them.
type Book struct {
	ID                 int     `json:"id"`
	Title              string  `json:"title"`
	Language           string  `json:"language"`
	WordCount          int     `json:"wordCount"`
	StatusDistribution *string `json:"statusDistribution,omitempty"`
	UnknownPercent     *int    `json:"unknownPercent,omitempty"`
	DistinctUnknowns   *int    `json:"distinctUnknowns,omitempty"`
	DistinctCount      *int    `json:"distinctCount,omitempty"`
	PageNum            *int    `json:"pageNum,omitempty"`
	PageCount          *int    `json:"pageCount,omitempty"`
	LastOpenedDate     *string `json:"lastOpenedDate,omitempty"`
}

// SameCore reports whether two books agree on the fields every source
// provides: id, title, language and word count.
func (b Book) SameCore(o Book) bool {
	return b.ID == o.ID && b.Title == o.Title && b.Language == o.Language && b.WordCount == o.WordCount
}

// BookEdit is the form body of POST /book/edit/{id}.
type BookEdit struct {
	Title      string
	Text       string
	LanguageID int
	Tags       []string
}

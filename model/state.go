package model

import "time"

// BookState is the "last read" record kept on the device.
type BookState struct {
	BookID   int       `json:"bookId"`
	PageNum  int       `json:"pageNum"`
	LastRead time.Time `json:"lastRead"`
}

type Bookmark struct {
	ID       string        `json:"id"`
	BookID   int           `json:"bookId"`
	Position time.Duration `json:"position"`
	Label    string        `json:"label"`
}

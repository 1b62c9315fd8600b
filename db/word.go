package db

import (
	"time"

	"github.com/lai323/lutego/model"
)

// Records are the gob shapes stored in bolt. They are kept apart from the
// model types so the json tags there can change without touching stored
// data.

type bookStateRecord struct {
	BookID   int
	PageNum  int
	LastRead int64
}

func fromBookState(s model.BookState) bookStateRecord {
	return bookStateRecord{BookID: s.BookID, PageNum: s.PageNum, LastRead: s.LastRead.Unix()}
}

func (r bookStateRecord) toModel() model.BookState {
	return model.BookState{BookID: r.BookID, PageNum: r.PageNum, LastRead: time.Unix(r.LastRead, 0)}
}

type bookmarkRecord struct {
	ID       string
	BookID   int
	Position int64
	Label    string
}

func fromBookmark(b model.Bookmark) bookmarkRecord {
	return bookmarkRecord{ID: b.ID, BookID: b.BookID, Position: int64(b.Position), Label: b.Label}
}

func (r bookmarkRecord) toModel() model.Bookmark {
	return model.Bookmark{ID: r.ID, BookID: r.BookID, Position: time.Duration(r.Position), Label: r.Label}
}

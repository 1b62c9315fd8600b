package db

import (
	"fmt"
	"io"
)

func PrintState(w io.Writer, db StateDB) error {
	state, ok, err := db.LastBookState()
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(w, "no book opened yet")
	} else {
		t := state.LastRead.Format("2006-01-02 15:04")
		fmt.Fprintf(w, "%-20s%d\n%-20s%d\n%-20s%s\n", "book", state.BookID, "page", state.PageNum, "last read", t)
	}
	hidden, err := db.ChromeHidden()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%-20s%t\n", "chrome hidden", hidden)
	return nil
}

func PrintBookmarks(w io.Writer, bookID int, db StateDB) error {
	marks, err := db.Bookmarks(bookID)
	if err != nil {
		return err
	}
	for _, m := range marks {
		fmt.Fprintf(w, "%-38s%-12s%s\n", m.ID, m.Position, m.Label)
	}
	return nil
}

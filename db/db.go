package db

import (
	"bytes"
	"encoding/gob"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
	"github.com/lai323/lutego/model"
)

const (
	STATE_BUCKET    = "state"
	BOOKMARK_BUCKET = "bookmark"
	SETTING_BUCKET  = "setting"

	LAST_BOOK_KEY     = "last"
	CHROME_HIDDEN_KEY = "chrome_hidden"
)

var ErrBookmarkNotFound = errors.New("bookmark not found")

// StateDB is the device-local state the reader keeps between runs.
type StateDB interface {
	Close() error
	SaveBookState(state model.BookState) error
	BookState(bookID int) (model.BookState, bool, error)
	LastBookState() (model.BookState, bool, error)
	AddBookmark(bookID int, position time.Duration, label string) (model.Bookmark, error)
	Bookmarks(bookID int) ([]model.Bookmark, error)
	DeleteBookmark(bookID int, id string) error
	SetChromeHidden(hidden bool) error
	ChromeHidden() (bool, error)
}

type BoltStateDB struct {
	*bolt.DB
}

func NewBoltStateDB(path string) (*BoltStateDB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{STATE_BUCKET, BOOKMARK_BUCKET, SETTING_BUCKET} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &BoltStateDB{DB: db}, nil
}

func bookKey(bookID int) []byte {
	return []byte(strconv.Itoa(bookID))
}

func encode(v interface{}) ([]byte, error) {
	buf := bytes.NewBuffer([]byte{})
	if err := gob.NewEncoder(buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewBuffer(data)).Decode(v)
}

// SaveBookState records the position in a book and marks it as the last
// one opened.
func (db *BoltStateDB) SaveBookState(state model.BookState) error {
	if state.LastRead.IsZero() {
		state.LastRead = time.Now()
	}
	data, err := encode(fromBookState(state))
	if err != nil {
		return err
	}
	return db.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(STATE_BUCKET))
		if err := b.Put(bookKey(state.BookID), data); err != nil {
			return err
		}
		return b.Put([]byte(LAST_BOOK_KEY), data)
	})
}

func (db *BoltStateDB) BookState(bookID int) (model.BookState, bool, error) {
	return db.getState(bookKey(bookID))
}

func (db *BoltStateDB) LastBookState() (model.BookState, bool, error) {
	return db.getState([]byte(LAST_BOOK_KEY))
}

func (db *BoltStateDB) getState(key []byte) (model.BookState, bool, error) {
	var data []byte
	err := db.DB.View(func(tx *bolt.Tx) error {
		data = append(data, tx.Bucket([]byte(STATE_BUCKET)).Get(key)...)
		return nil
	})
	if err != nil || len(data) == 0 {
		return model.BookState{}, false, err
	}
	r := bookStateRecord{}
	if err := decode(data, &r); err != nil {
		return model.BookState{}, false, err
	}
	return r.toModel(), true, nil
}

func (db *BoltStateDB) AddBookmark(bookID int, position time.Duration, label string) (model.Bookmark, error) {
	bm := model.Bookmark{
		ID:       uuid.NewString(),
		BookID:   bookID,
		Position: position,
		Label:    label,
	}
	data, err := encode(fromBookmark(bm))
	if err != nil {
		return model.Bookmark{}, err
	}
	err = db.DB.Update(func(tx *bolt.Tx) error {
		b, err := tx.Bucket([]byte(BOOKMARK_BUCKET)).CreateBucketIfNotExists(bookKey(bookID))
		if err != nil {
			return err
		}
		return b.Put([]byte(bm.ID), data)
	})
	if err != nil {
		return model.Bookmark{}, err
	}
	return bm, nil
}

// Bookmarks returns the bookmarks of a book ordered by position.
func (db *BoltStateDB) Bookmarks(bookID int) ([]model.Bookmark, error) {
	marks := []model.Bookmark{}
	err := db.DB.View(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BOOKMARK_BUCKET)).Bucket(bookKey(bookID))
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			r := bookmarkRecord{}
			if err := decode(v, &r); err != nil {
				return err
			}
			marks = append(marks, r.toModel())
			return nil
		})
	})
	sort.SliceStable(marks, func(i, j int) bool {
		return marks[i].Position < marks[j].Position
	})
	return marks, err
}

func (db *BoltStateDB) DeleteBookmark(bookID int, id string) error {
	return db.DB.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(BOOKMARK_BUCKET)).Bucket(bookKey(bookID))
		if b == nil || b.Get([]byte(id)) == nil {
			return ErrBookmarkNotFound
		}
		return b.Delete([]byte(id))
	})
}

func (db *BoltStateDB) SetChromeHidden(hidden bool) error {
	v := []byte{0}
	if hidden {
		v[0] = 1
	}
	return db.DB.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(SETTING_BUCKET)).Put([]byte(CHROME_HIDDEN_KEY), v)
	})
}

// ChromeHidden reports whether the reader's title and progress bar were
// last hidden. It is false until first set.
func (db *BoltStateDB) ChromeHidden() (bool, error) {
	hidden := false
	err := db.DB.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(SETTING_BUCKET)).Get([]byte(CHROME_HIDDEN_KEY))
		hidden = len(v) == 1 && v[0] == 1
		return nil
	})
	return hidden, err
}

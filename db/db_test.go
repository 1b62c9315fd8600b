package db

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/lai323/lutego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *BoltStateDB {
	db, err := NewBoltStateDB(filepath.Join(t.TempDir(), "lutego.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBookState(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.LastBookState()
	require.NoError(t, err)
	assert.False(t, ok)

	read := time.Date(2024, 5, 1, 20, 30, 0, 0, time.UTC)
	require.NoError(t, db.SaveBookState(model.BookState{BookID: 482, PageNum: 3, LastRead: read}))
	require.NoError(t, db.SaveBookState(model.BookState{BookID: 7, PageNum: 1, LastRead: read.Add(time.Hour)}))

	last, ok, err := db.LastBookState()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7, last.BookID)

	state, ok, err := db.BookState(482)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 3, state.PageNum)
	assert.True(t, read.Equal(state.LastRead))

	_, ok, err = db.BookState(1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSaveBookStateStampsTime(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveBookState(model.BookState{BookID: 1, PageNum: 2}))

	state, ok, err := db.BookState(1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), state.LastRead, time.Minute)
}

func TestBookmarks(t *testing.T) {
	db := openTestDB(t)

	late, err := db.AddBookmark(5, 90*time.Second, "chorus")
	require.NoError(t, err)
	early, err := db.AddBookmark(5, 10*time.Second, "intro")
	require.NoError(t, err)
	_, err = db.AddBookmark(6, time.Second, "other book")
	require.NoError(t, err)
	assert.NotEqual(t, late.ID, early.ID)

	marks, err := db.Bookmarks(5)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, "intro", marks[0].Label)
	assert.Equal(t, 90*time.Second, marks[1].Position)

	require.NoError(t, db.DeleteBookmark(5, early.ID))
	assert.ErrorIs(t, db.DeleteBookmark(5, early.ID), ErrBookmarkNotFound)
	assert.ErrorIs(t, db.DeleteBookmark(9, early.ID), ErrBookmarkNotFound)

	marks, err = db.Bookmarks(5)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, late.ID, marks[0].ID)

	marks, err = db.Bookmarks(42)
	require.NoError(t, err)
	assert.Empty(t, marks)
}

func TestChromeHidden(t *testing.T) {
	db := openTestDB(t)

	hidden, err := db.ChromeHidden()
	require.NoError(t, err)
	assert.False(t, hidden)

	require.NoError(t, db.SetChromeHidden(true))
	hidden, err = db.ChromeHidden()
	require.NoError(t, err)
	assert.True(t, hidden)

	require.NoError(t, db.SetChromeHidden(false))
	hidden, err = db.ChromeHidden()
	require.NoError(t, err)
	assert.False(t, hidden)
}

func TestPrint(t *testing.T) {
	db := openTestDB(t)
	var buf bytes.Buffer
	require.NoError(t, PrintState(&buf, db))
	assert.Contains(t, buf.String(), "no book opened yet")

	require.NoError(t, db.SaveBookState(model.BookState{BookID: 482, PageNum: 3}))
	_, err := db.AddBookmark(482, 2*time.Second, "start")
	require.NoError(t, err)

	buf.Reset()
	require.NoError(t, PrintState(&buf, db))
	assert.Contains(t, buf.String(), "482")

	buf.Reset()
	require.NoError(t, PrintBookmarks(&buf, 482, db))
	assert.Contains(t, buf.String(), "2s")
	assert.Contains(t, buf.String(), "start")
}

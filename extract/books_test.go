package extract

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingWithRows = `<html><body>
<table id="booktable">
  <thead><tr><th>Title</th><th>Language</th><th>Tags</th><th>Words</th></tr></thead>
  <tbody>
    <tr><td><a href="/read/482">Le Petit Prince</a></td><td>French</td><td></td><td>1,204</td></tr>
    <tr><td><a href="/read/">Broken link</a></td><td>German</td><td>x</td><td>abc</td></tr>
    <tr><td colspan="4" class="dataTables_empty">nothing</td></tr>
    <tr><td><a href="/read/9">Short row</a></td><td>Spanish</td></tr>
  </tbody>
</table>
</body></html>`

func TestBookIDFromHref(t *testing.T) {
	assert.Equal(t, 482, BookIDFromHref("/read/482"))
	assert.Equal(t, 0, BookIDFromHref("/read/"))
	assert.Equal(t, 12, BookIDFromHref("http://localhost:5001/read/12/page/3"))
	assert.Equal(t, 0, BookIDFromHref("/book/edit/12"))
}

func TestBookListStaticRows(t *testing.T) {
	books, err := New(nil).BookList(listingWithRows)
	require.NoError(t, err)
	require.Len(t, books, 3)

	assert.Equal(t, 482, books[0].ID)
	assert.Equal(t, "Le Petit Prince", books[0].Title)
	assert.Equal(t, "French", books[0].Language)
	assert.Equal(t, 1204, books[0].WordCount)
	assert.Nil(t, books[0].UnknownPercent)

	assert.Equal(t, 0, books[1].ID)
	assert.Equal(t, 0, books[1].WordCount)

	assert.Equal(t, 9, books[2].ID)
	assert.Equal(t, 0, books[2].WordCount)
}

func TestBookListAsyncTable(t *testing.T) {
	page := `<html><body><table id="booktable"><thead><tr><th>Title</th></tr></thead><tbody></tbody></table></body></html>`
	books, err := New(nil).BookList(page)
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestBookListNoBooksIndicator(t *testing.T) {
	page := `<html><body><p>No books available. Create one!</p></body></html>`
	books, err := New(nil).BookList(page)
	require.NoError(t, err)
	assert.Empty(t, books)
}

func TestBookListUnparseable(t *testing.T) {
	for _, in := range []string{"", "   ", "just some words"} {
		books, err := New(nil).BookList(in)
		assert.Nil(t, books)
		assert.True(t, errors.Is(err, ErrUnparseable), "input %q", in)
	}
}

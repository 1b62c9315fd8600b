package repo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lai323/lutego/config"
	"github.com/lai323/lutego/datatables"
	"github.com/lai323/lutego/dict"
	"github.com/lai323/lutego/extract"
	"github.com/lai323/lutego/lute"
	"github.com/lai323/lutego/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const listingPage = `<html><body>
<table id="booktable">
  <thead><tr><th>Title</th><th>Language</th><th>Tags</th><th>Words</th></tr></thead>
  <tbody>
    <tr><td><a href="/read/482">Le Petit Prince</a></td><td>French</td><td></td><td>1,234</td></tr>
  </tbody>
</table>
</body></html>`

const emptyListingPage = `<html><body><table id="booktable"><thead><tr><th>Title</th></tr></thead><tbody></tbody></table></body></html>`

const pagingBody = `{"draw":1,"recordsTotal":1,"recordsFiltered":1,"data":[{"BkID":7,"BkTitle":"Demo","LgName":"Spanish","WordCount":"250"}]}`

type server struct {
	*httptest.Server
	mu       sync.Mutex
	requests []string
	forms    map[string]map[string][]string
}

func newServer(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *server {
	s := &server{forms: map[string]map[string][]string{}}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		s.mu.Lock()
		s.requests = append(s.requests, r.Method+" "+r.URL.Path)
		if r.Method == http.MethodPost {
			s.forms[r.URL.Path] = r.PostForm
		}
		s.mu.Unlock()
		if h, ok := routes[r.Method+" "+r.URL.Path]; ok {
			h(w, r)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *server) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

func body(content string) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, content)
	}
}

func newRepo(serverURL string) *Repository {
	cfg := config.Config{ServerURL: serverURL, Timeout: 2 * time.Second, PageLength: config.DefaultPageLength}
	return New(cfg, lute.NewClient(cfg, nil), dict.NewTranslationCacheManager(), nil)
}

func TestGetBooksFromListingPage(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /":                       body(listingPage),
		"POST " + lute.PathDataTables: body(pagingBody),
	})

	books, err := newRepo(srv.URL).GetBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 482, books[0].ID)
	assert.Equal(t, "Le Petit Prince", books[0].Title)
	assert.Equal(t, 1234, books[0].WordCount)
	assert.Equal(t, []string{"GET /"}, srv.seen())
}

func TestGetBooksFallsBackToPaging(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /":                       body(emptyListingPage),
		"POST " + lute.PathDataTables: body(pagingBody),
	})

	books, err := newRepo(srv.URL).GetBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 7, books[0].ID)
	assert.Equal(t, "Demo", books[0].Title)
	assert.Equal(t, 250, books[0].WordCount)
	assert.Equal(t, []string{"GET /", "POST " + lute.PathDataTables}, srv.seen())

	form := srv.forms[lute.PathDataTables]
	assert.Equal(t, []string{"1"}, form["draw"])
	assert.Equal(t, []string{"BkTitle"}, form["columns[0][name]"])
	assert.Equal(t, []string{"BkID"}, form["columns[6][name]"])
	assert.Equal(t, []string{"0"}, form["order[0][column]"])
	assert.Equal(t, []string{"asc"}, form["order[0][dir]"])
	assert.Equal(t, []string{"0"}, form["start"])
	assert.Equal(t, []string{"10"}, form["length"])
	assert.Equal(t, []string{""}, form["search[value]"])
}

func TestGetBooksPagingAfterListingFailure(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST " + lute.PathDataTables: body(pagingBody),
	})

	books, err := newRepo(srv.URL).GetBooks(context.Background())
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, 7, books[0].ID)
}

func TestGetBooksBothEmpty(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /":                       body(emptyListingPage),
		"POST " + lute.PathDataTables: body(`{"draw":1,"recordsTotal":0,"recordsFiltered":0,"data":[]}`),
	})

	books, err := newRepo(srv.URL).GetBooks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestGetBooksUnparseablePaging(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /":                       body(emptyListingPage),
		"POST " + lute.PathDataTables: body(`<html>oops</html>`),
	})

	books, err := newRepo(srv.URL).GetBooks(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, books)
	assert.Empty(t, books)
}

func TestGetBooksUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	books, err := newRepo(url).GetBooks(context.Background())
	assert.Nil(t, books)
	require.Error(t, err)
	assert.Equal(t, MessageGeneric, UserMessage(err))
}

func TestGetBooksServerURLNotSet(t *testing.T) {
	books, err := newRepo("").GetBooks(context.Background())
	assert.Nil(t, books)
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrServerURLNotSet))
	assert.Equal(t, MessageSettings, UserMessage(err))
}

func TestGetBookTitle(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /read/5":      body(`<html><body><p>short</p></body></html>`),
		"GET /book/edit/5": body(`<html><body><form><input name="title" value="Le Petit Prince"></form></body></html>`),
		"GET /read/6":      body(`<html><body><h2>Book: Candide</h2></body></html>`),
	})
	r := newRepo(srv.URL)

	assert.Equal(t, "Le Petit Prince", r.GetBookTitle(context.Background(), 5))
	assert.Equal(t, "Candide", r.GetBookTitle(context.Background(), 6))
	assert.Equal(t, "Book 9", r.GetBookTitle(context.Background(), 9))
}

const linkedTermPage = `<html><body><form>
<input id="text" name="text" value="chats">
<input id="language_id" name="language_id" type="hidden" value="3">
<input id="parentslist" name="parentslist" type="hidden" value="[{&#34;value&#34;: &#34;chat&#34;}]">
<textarea id="translation" name="translation">cats</textarea>
<ul id="status"><li><input type="radio" name="status" value="3" checked></li></ul>
<input id="sync_status" name="sync_status" type="checkbox" checked>
</form></body></html>`

const plainTermPage = `<html><body><form>
<input id="text" name="text" value="maison">
<input id="language_id" name="language_id" type="hidden" value="3">
<textarea id="translation" name="translation">house</textarea>
<input id="sync_status" name="sync_status" type="checkbox">
</form></body></html>`

func TestTermRoundTripLinked(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /term/edit/17":  body(linkedTermPage),
		"POST /term/edit/17": body("ok"),
	})
	r := newRepo(srv.URL)

	form, err := r.LoadTermForm(context.Background(), 17, "chats")
	require.NoError(t, err)
	slot, ok := r.Translations().TemporaryTranslation()
	require.True(t, ok)
	assert.Equal(t, "cats", slot)

	r.Translations().AppendTranslation("felines")
	require.NoError(t, r.SaveTerm(context.Background(), form))

	posted := srv.forms["/term/edit/17"]
	assert.Equal(t, []string{"chats"}, posted["text"])
	assert.Equal(t, []string{"cats, felines"}, posted["translation"])
	assert.Equal(t, []string{"3"}, posted["status"])
	assert.Equal(t, []string{`[{"value":"chat"}]`}, posted["parentslist"])
	assert.Equal(t, []string{"on"}, posted["sync_status"])

	_, ok = r.Translations().TemporaryTranslation()
	assert.False(t, ok)
}

func TestTermRoundTripUnlinkedOmitsSyncStatus(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /term/edit/4":  body(plainTermPage),
		"POST /term/edit/4": body("ok"),
	})
	r := newRepo(srv.URL)

	form, err := r.LoadTermForm(context.Background(), 4, "maison")
	require.NoError(t, err)
	require.NoError(t, r.SaveTerm(context.Background(), form))

	posted := srv.forms["/term/edit/4"]
	assert.Equal(t, []string{"house"}, posted["translation"])
	assert.Equal(t, []string{"1"}, posted["status"])
	_, present := posted["sync_status"]
	assert.False(t, present)
}

func TestSaveTermFailureKeepsTranslation(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /term/edit/4": body(plainTermPage),
	})
	r := newRepo(srv.URL)

	form, err := r.LoadTermForm(context.Background(), 4, "maison")
	require.NoError(t, err)
	r.Translations().SetTemporaryTranslation("home")

	err = r.SaveTerm(context.Background(), form)
	require.Error(t, err)
	assert.True(t, errors.Is(err, lute.ErrServer))
	slot, ok := r.Translations().TemporaryTranslation()
	assert.True(t, ok)
	assert.Equal(t, "home", slot)
}

func TestBookActions(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST /book/edit/3":            body("ok"),
		"POST /book/archive/3":         body("ok"),
		"POST /book/delete/3":          body("ok"),
		"GET " + lute.PathCustomStyles: body(".lute { color: red; }"),
	})
	r := newRepo(srv.URL)
	ctx := context.Background()

	require.NoError(t, r.UpdateBook(ctx, 3, model.BookEdit{Title: "Candide", Text: "Il y avait", LanguageID: 3, Tags: []string{"classic"}}))
	edit := srv.forms["/book/edit/3"]
	assert.Equal(t, []string{"Candide"}, edit["title"])
	assert.Equal(t, []string{"Il y avait"}, edit["text"])
	assert.Equal(t, []string{"3"}, edit["language_id"])
	assert.Equal(t, []string{`[{"value":"classic"}]`}, edit["book_tags"])

	require.NoError(t, r.ArchiveBook(ctx, 3))
	require.NoError(t, r.DeleteBook(ctx, 3))
	assert.Error(t, r.DeleteBook(ctx, 4))

	css, err := r.CustomStyles(ctx)
	require.NoError(t, err)
	assert.Equal(t, ".lute { color: red; }", css)
}

func TestDictionaries(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"GET /language/edit/3": body(`<html><body><form>
<input name="dictionaries-0-dicturi" value="https://www.wordreference.com/fren/[LUTE]">
<select name="dictionaries-0-usefor"><option value="terms" selected>Terms</option></select>
<input type="checkbox" name="dictionaries-0-is_active" checked>
</form></body></html>`),
		"GET /language/edit/4": body(`<html><body><form></form></body></html>`),
	})
	cfg := config.Config{
		ServerURL:    srv.URL,
		Timeout:      2 * time.Second,
		Dictionaries: map[int][]string{4: {"https://glosbe.com/de/en/[LUTE]"}},
	}
	r := New(cfg, lute.NewClient(cfg, nil), nil, nil)
	ctx := context.Background()

	dicts, err := r.Dictionaries(ctx, 3)
	require.NoError(t, err)
	require.Len(t, dicts, 1)
	assert.Equal(t, "wordreference.com", dicts[0].DisplayName())

	dicts, err = r.Dictionaries(ctx, 4)
	require.NoError(t, err)
	require.Len(t, dicts, 1)
	assert.Equal(t, "glosbe.com", dicts[0].DisplayName())
	assert.True(t, dicts[0].Active)

	_, err = r.Dictionaries(ctx, 5)
	assert.Error(t, err)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "", UserMessage(nil))
	assert.Equal(t, MessageSettings, UserMessage(fmt.Errorf("wrap: %w", config.ErrServerURLNotSet)))
	assert.Equal(t, MessageGeneric, UserMessage(&lute.StatusError{Method: "GET", URL: "/", Status: 500}))
}

func TestPagedBooksUnparseable(t *testing.T) {
	srv := newServer(t, map[string]func(http.ResponseWriter, *http.Request){
		"POST " + lute.PathDataTables: body(`<html>oops</html>`),
	})

	books, err := newRepo(srv.URL).pagedBooks(context.Background())
	assert.Nil(t, books)
	assert.ErrorIs(t, err, datatables.ErrUnparseable)
	assert.False(t, errors.Is(err, extract.ErrUnparseable))
}

func TestListingAndPagingAgreeOnBook(t *testing.T) {
	listing := `<html><body><table id="booktable"><tbody>
<tr><td><a href="/read/482">Le Petit Prince</a></td><td>French</td><td>classic</td><td>1,234</td></tr>
</tbody></table></body></html>`
	paging := `{"draw":1,"recordsTotal":1,"recordsFiltered":1,"data":[
{"BkID":482,"BkTitle":"Le Petit Prince","LgName":"French","WordCount":1234,"UnknownPercent":12,"PageNum":2,"PageCount":9}]}`

	listed, err := extract.New(nil).BookList(listing)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	paged := datatables.NewParser(nil).Books(paging)
	require.Len(t, paged, 1)

	assert.True(t, listed[0].SameCore(paged[0]))
	assert.Nil(t, listed[0].UnknownPercent)
	require.NotNil(t, paged[0].UnknownPercent)
	assert.Equal(t, 12, *paged[0].UnknownPercent)

	other := paged[0]
	other.WordCount++
	assert.False(t, listed[0].SameCore(other))
}

// Package repo answers the reader's questions about the server (which books
// exist, what a book is called, what a term's form holds) by trying the
// available pages in order and falling back when one comes up empty.
package repo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"github.com/lai323/lutego/config"
	"github.com/lai323/lutego/datatables"
	"github.com/lai323/lutego/dict"
	"github.com/lai323/lutego/extract"
	"github.com/lai323/lutego/lute"
	"github.com/lai323/lutego/model"
)

const (
	MessageSettings = "Server URL is not set. Open the settings and enter the address of your Lute server."
	MessageGeneric  = "Could not reach the Lute server. Check that it is running and try again."
)

type Repository struct {
	client       *lute.Client
	extractor    *extract.Extractor
	parser       *datatables.Parser
	translations *dict.TranslationCacheManager
	cfg          config.Config
	log          *slog.Logger
}

func New(cfg config.Config, client *lute.Client, translations *dict.TranslationCacheManager, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	if translations == nil {
		translations = dict.NewTranslationCacheManager()
	}
	return &Repository{
		client:       client,
		extractor:    extract.New(logger),
		parser:       datatables.NewParser(logger),
		translations: translations,
		cfg:          cfg,
		log:          logger.With("component", "repo"),
	}
}

func (r *Repository) Translations() *dict.TranslationCacheManager {
	return r.translations
}

// GetBooks reads the listing page and, when it has no static rows, asks
// the paging endpoint. The second request only starts after the first has
// finished. When neither finds a book the listing page's result is
// returned; it is nil when the server could not be reached at all.
func (r *Repository) GetBooks(ctx context.Context) ([]model.Book, error) {
	listed, listErr := r.listedBooks(ctx)
	if len(listed) > 0 {
		return listed, nil
	}

	paged, pageErr := r.pagedBooks(ctx)
	if len(paged) > 0 {
		return paged, nil
	}

	if listErr != nil && pageErr != nil {
		return nil, errors.Join(listErr, pageErr)
	}
	return listed, nil
}

func (r *Repository) listedBooks(ctx context.Context) ([]model.Book, error) {
	page, err := r.client.Get(ctx, lute.PathIndex)
	if err != nil {
		r.log.WarnContext(ctx, "listing page unavailable", "error", err)
		return nil, err
	}
	books, err := r.extractor.BookList(page)
	if err != nil {
		r.log.WarnContext(ctx, "listing page unparseable", "error", err)
		return nil, err
	}
	r.log.DebugContext(ctx, "listing page parsed", "books", len(books))
	return books, nil
}

func (r *Repository) pagedBooks(ctx context.Context) ([]model.Book, error) {
	body, err := r.client.PostForm(ctx, lute.PathDataTables, datatables.FirstLoadRequest(r.cfg.PageLength))
	if err != nil {
		r.log.WarnContext(ctx, "paging endpoint unavailable", "error", err)
		return nil, err
	}
	books := r.parser.Books(body)
	if books == nil {
		return nil, fmt.Errorf("repo: paging response: %w", datatables.ErrUnparseable)
	}
	r.log.DebugContext(ctx, "paging response parsed", "books", len(books))
	return books, nil
}

// GetBookTitle looks for the title on the reading page, then on the edit
// page, and settles for "Book <id>".
func (r *Repository) GetBookTitle(ctx context.Context, bookID int) string {
	for _, p := range []string{lute.PathRead(bookID), lute.PathBookEdit(bookID)} {
		page, err := r.client.Get(ctx, p)
		if err != nil {
			r.log.WarnContext(ctx, "title page unavailable", "path", p, "error", err)
			continue
		}
		if title, ok := r.extractor.FindBookTitle(page); ok {
			return title
		}
	}
	return "Book " + strconv.Itoa(bookID)
}

// LoadTermForm fetches a term's edit form and seeds the shared translation
// slot with its translation.
func (r *Repository) LoadTermForm(ctx context.Context, termID int, clickedText string) (model.TermFormData, error) {
	page, err := r.client.Get(ctx, lute.PathTermEdit(termID))
	if err != nil {
		return model.TermFormData{}, fmt.Errorf("repo: load term %d: %w", termID, err)
	}
	form, err := r.extractor.TermForm(page, termID, clickedText)
	if err != nil {
		return model.TermFormData{}, fmt.Errorf("repo: parse term %d: %w", termID, err)
	}
	r.translations.SetTemporaryTranslation(form.Translation)
	return form, nil
}

// SaveTerm resubmits the form. A valid translation slot value replaces the
// form's translation; the slot is cleared once the server accepts it.
func (r *Repository) SaveTerm(ctx context.Context, form model.TermFormData) error {
	if text, ok := r.translations.TemporaryTranslation(); ok {
		form.Translation = text
	}
	if !form.Status.Valid() {
		form.Status = model.DefaultStatus
	}
	if _, err := r.client.PostForm(ctx, lute.PathTermEdit(form.TermID), form.FormValues()); err != nil {
		return fmt.Errorf("repo: save term %d: %w", form.TermID, err)
	}
	r.translations.Reset()
	r.log.InfoContext(ctx, "term saved", "term", form.TermID, "status", form.Status.String(), "sync", form.SyncStatus)
	return nil
}

func (r *Repository) UpdateBook(ctx context.Context, bookID int, edit model.BookEdit) error {
	form := url.Values{}
	form.Set("title", edit.Title)
	form.Set("text", edit.Text)
	form.Set("language_id", strconv.Itoa(edit.LanguageID))
	form.Set("book_tags", model.EncodeTagList(edit.Tags))
	if _, err := r.client.PostForm(ctx, lute.PathBookEdit(bookID), form); err != nil {
		return fmt.Errorf("repo: update book %d: %w", bookID, err)
	}
	return nil
}

func (r *Repository) ArchiveBook(ctx context.Context, bookID int) error {
	if _, err := r.client.PostForm(ctx, lute.PathBookArchive(bookID), nil); err != nil {
		return fmt.Errorf("repo: archive book %d: %w", bookID, err)
	}
	return nil
}

func (r *Repository) DeleteBook(ctx context.Context, bookID int) error {
	if _, err := r.client.PostForm(ctx, lute.PathBookDelete(bookID), nil); err != nil {
		return fmt.Errorf("repo: delete book %d: %w", bookID, err)
	}
	return nil
}

// CustomStyles returns the server's user stylesheet as raw CSS.
func (r *Repository) CustomStyles(ctx context.Context) (string, error) {
	css, err := r.client.Get(ctx, lute.PathCustomStyles)
	if err != nil {
		return "", fmt.Errorf("repo: custom styles: %w", err)
	}
	return css, nil
}

// Dictionaries reads a language's dictionaries from its edit page, falling
// back to the configured templates.
func (r *Repository) Dictionaries(ctx context.Context, languageID int) ([]model.DictionaryInfo, error) {
	page, err := r.client.Get(ctx, lute.PathLanguageEdit(languageID))
	if err == nil {
		dicts, perr := r.extractor.LanguageDictionaries(page)
		if perr == nil && len(dicts) > 0 {
			return dicts, nil
		}
		err = perr
	}
	if err != nil {
		r.log.WarnContext(ctx, "language page unusable, using configured dictionaries", "language", languageID, "error", err)
	}

	var dicts []model.DictionaryInfo
	for _, u := range r.cfg.DictionariesFor(languageID) {
		dicts = append(dicts, model.NewDictionaryInfo(u, model.UseTerms, true))
	}
	if len(dicts) == 0 && err != nil {
		return nil, fmt.Errorf("repo: dictionaries of language %d: %w", languageID, err)
	}
	return dicts, nil
}

// UserMessage turns an error into the text shown to the user. Configuration
// problems point at the settings; everything else gets the same generic
// message.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, config.ErrServerURLNotSet) {
		return MessageSettings
	}
	return MessageGeneric
}

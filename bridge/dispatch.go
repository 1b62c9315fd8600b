package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/lai323/lutego/dict"
	"github.com/lai323/lutego/model"
)

// StateStore persists what the page reports about the reading session.
type StateStore interface {
	SaveBookState(state model.BookState) error
	SetChromeHidden(hidden bool) error
	ChromeHidden() (bool, error)
}

type Option func(*Dispatcher)

// OnBookSelected sets the native transition to a book.
func OnBookSelected(fn func(ctx context.Context, bookID int) error) Option {
	return func(d *Dispatcher) { d.openBook = fn }
}

// OnTermClicked sets the native transition to a term's edit view.
func OnTermClicked(fn func(ctx context.Context, termID int, text string) error) Option {
	return func(d *Dispatcher) { d.openTerm = fn }
}

// Dispatcher is the single entry point for page messages.
type Dispatcher struct {
	translations *dict.TranslationCacheManager
	store        StateStore
	openBook     func(ctx context.Context, bookID int) error
	openTerm     func(ctx context.Context, termID int, text string) error
	log          *slog.Logger
}

func NewDispatcher(translations *dict.TranslationCacheManager, store StateStore, logger *slog.Logger, opts ...Option) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Dispatcher{
		translations: translations,
		store:        store,
		log:          logger.With("component", "bridge"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// HandleJSON decodes and dispatches one raw message.
func (d *Dispatcher) HandleJSON(ctx context.Context, data []byte) error {
	msg, err := Decode(data)
	if err != nil {
		d.log.WarnContext(ctx, "dropping bridge message", "error", err)
		return err
	}
	return d.Dispatch(ctx, msg)
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg Message) error {
	d.log.DebugContext(ctx, "bridge message", "type", msg.Type())

	switch m := msg.(type) {
	case BookSelected:
		if m.BookID <= 0 {
			return fmt.Errorf("bridge: book id %d: %w", m.BookID, ErrUnknownMessage)
		}
		if d.openBook == nil {
			return nil
		}
		return d.openBook(ctx, m.BookID)

	case DictionaryTextSelected:
		text := strings.TrimSpace(m.Text)
		if text == "" || d.translations == nil {
			return nil
		}
		d.translations.AppendTranslation(text)
		return nil

	case ChromeToggled:
		if d.store == nil {
			return nil
		}
		if err := d.store.SetChromeHidden(m.Hidden); err != nil {
			return fmt.Errorf("bridge: save chrome state: %w", err)
		}
		return nil

	case TermClicked:
		if d.openTerm == nil {
			return nil
		}
		return d.openTerm(ctx, m.TermID, m.Text)

	case PageChanged:
		if d.store == nil || m.BookID <= 0 {
			return nil
		}
		if err := d.store.SaveBookState(model.BookState{BookID: m.BookID, PageNum: m.Page}); err != nil {
			return fmt.Errorf("bridge: save book state: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("bridge: %T: %w", msg, ErrUnknownMessage)
	}
}

// Navigate reports whether a navigation the page started should be
// suppressed. Reading links are turned into a native book transition.
func (d *Dispatcher) Navigate(ctx context.Context, rawURL string) bool {
	id, ok := InterceptNavigation(rawURL)
	if !ok {
		return false
	}
	if err := d.Dispatch(ctx, BookSelected{BookID: id}); err != nil {
		d.log.WarnContext(ctx, "book transition failed", "book", id, "error", err)
	}
	return true
}

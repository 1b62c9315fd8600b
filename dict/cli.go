package dict

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/lai323/lutego/model"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

type Options struct {
	LanguageID  int
	Interactive bool
	Raw         bool
	// CacheDir keeps looked up pages between runs when set.
	CacheDir string
}

// DictionarySource resolves the dictionaries of a language.
type DictionarySource interface {
	Dictionaries(ctx context.Context, languageID int) ([]model.DictionaryInfo, error)
}

func Run(svc func() *Service, source func() DictionarySource, options *Options) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != 1 {
			return errors.New("Only one word or sentence can be looked up at a time")
		}
		term := args[0]
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		dicts, err := source().Dictionaries(ctx, options.LanguageID)
		if err != nil {
			return err
		}
		service := svc()
		if options.CacheDir != "" {
			disk, err := NewDiskCache(afero.NewOsFs(), options.CacheDir)
			if err != nil {
				return err
			}
			if _, err := disk.Load(service.Cache()); err != nil {
				service.log.Warn("dictionary cache not loaded", "error", err)
			}
			defer func() {
				if err := disk.Save(service.Cache()); err != nil {
					service.log.Warn("dictionary cache not saved", "error", err)
				}
			}()
		}

		session, err := NewSession(ctx, service, term, options.LanguageID, dicts)
		if err != nil {
			return err
		}

		if options.Interactive {
			return Start(session)
		}
		defer session.Close()
		return Print(cmd.OutOrStdout(), session, options.Raw)
	}
}

// Print loads every tab in order and writes it out.
func Print(w io.Writer, session *Session, raw bool) error {
	for i := range session.Tabs() {
		tab, err := session.LoadSync(i)
		if errors.Is(err, ErrSessionClosed) {
			return err
		}
		fmt.Fprintf(w, "== %s (%s)\n", tab.Name, tab.URL)
		switch {
		case err != nil:
			session.svc.log.Debug("dictionary tab failed", "dictionary", tab.Name, "error", err)
			fmt.Fprintf(w, "could not load %s\n\n", tab.Name)
		case raw:
			fmt.Fprintf(w, "%s\n\n", tab.Content)
		default:
			fmt.Fprintf(w, "%s\n\n", RenderText(tab.Content, tab.URL))
		}
	}
	return nil
}

package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/lai323/lutego/bridge"
	"github.com/lai323/lutego/db"
	"github.com/lai323/lutego/dict"
	"github.com/lai323/lutego/model"
	"github.com/lai323/lutego/repo"
	"github.com/lai323/lutego/ui"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func intArg(args []string, i int, name string) (int, error) {
	v, err := strconv.Atoi(args[i])
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, args[i])
	}
	return v, nil
}

func booksCmd() *cobra.Command {
	width := 0
	c := &cobra.Command{
		Use:   "books",
		Short: "list the books on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			books, err := app.repo.GetBooks(cmd.Context())
			if books == nil {
				if err == nil {
					err = errors.New("no data")
				}
				return errors.New(repo.UserMessage(err))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.BooksModel{Books: books, Width: width}.View())
			return nil
		},
	}
	c.Flags().IntVar(&width, "width", 100, "line width")
	return c
}

func titleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "title <book id>",
		Short: "show a book's title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.repo.GetBookTitle(cmd.Context(), id))
			return nil
		},
	}
}

func termCmd() *cobra.Command {
	var (
		translation string
		appends     []string
		status      string
	)
	c := &cobra.Command{
		Use:   "term <term id> [text]",
		Short: "show a term, or edit it with --translation, --append or --status",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "term id")
			if err != nil {
				return err
			}
			clicked := ""
			if len(args) == 2 {
				clicked = args[1]
			}
			ctx := cmd.Context()
			form, err := app.repo.LoadTermForm(ctx, id, clicked)
			if err != nil {
				return err
			}

			changed := false
			if cmd.Flags().Changed("translation") {
				app.translations.SetTemporaryTranslation(translation)
				changed = true
			}
			dispatcher := bridge.NewDispatcher(app.translations, nil, app.log)
			for _, text := range appends {
				if err := dispatcher.Dispatch(ctx, bridge.DictionaryTextSelected{Text: text}); err != nil {
					return err
				}
				changed = true
			}
			if status != "" {
				s, ok := model.ParseStatus(status)
				if !ok {
					return fmt.Errorf("invalid status %q", status)
				}
				form.Status = s
				changed = true
			}

			if changed {
				if err := app.repo.SaveTerm(ctx, form); err != nil {
					return err
				}
				form, err = app.repo.LoadTermForm(ctx, id, clicked)
				if err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.TermModel{Term: form}.View())
			return nil
		},
	}
	c.Flags().StringVar(&translation, "translation", "", "replace the translation")
	c.Flags().StringArrayVar(&appends, "append", nil, "append to the translation")
	c.Flags().StringVar(&status, "status", "", "status: 1-5, 98 (ignored) or 99 (well known)")
	return c
}

func dictCmd() *cobra.Command {
	opt := dict.Options{}
	c := &cobra.Command{
		Use:   "dict <term>",
		Short: "look a term up in the dictionaries of a language",
		Args:  cobra.ExactArgs(1),
		PreRun: func(cmd *cobra.Command, args []string) {
			opt.CacheDir = config.StoragePath
		},
		RunE: dict.Run(
			func() *dict.Service { return app.dict },
			func() dict.DictionarySource { return app.repo },
			&opt,
		),
	}
	c.Flags().IntVarP(&opt.LanguageID, "lang", "l", 1, "language id")
	c.Flags().BoolVarP(&opt.Interactive, "interactive", "i", false, "tabbed view")
	c.Flags().BoolVar(&opt.Raw, "raw", false, "print sanitized html instead of text")
	return c
}

func bookCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "book",
		Short: "edit, archive or delete a book",
	}

	edit := model.BookEdit{}
	textFile := ""
	editCmd := &cobra.Command{
		Use:  "edit <book id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			if textFile != "" {
				data, err := afero.ReadFile(afero.NewOsFs(), textFile)
				if err != nil {
					return err
				}
				edit.Text = string(data)
			}
			return app.repo.UpdateBook(cmd.Context(), id, edit)
		},
	}
	editCmd.Flags().StringVar(&edit.Title, "title", "", "title")
	editCmd.Flags().StringVar(&textFile, "text-file", "", "file holding the book text")
	editCmd.Flags().IntVar(&edit.LanguageID, "lang", 1, "language id")
	editCmd.Flags().StringSliceVar(&edit.Tags, "tags", nil, "tags")

	archiveCmd := &cobra.Command{
		Use:  "archive <book id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			return app.repo.ArchiveBook(cmd.Context(), id)
		},
	}
	deleteCmd := &cobra.Command{
		Use:  "delete <book id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			return app.repo.DeleteBook(cmd.Context(), id)
		},
	}
	c.AddCommand(editCmd, archiveCmd, deleteCmd)
	return c
}

func stateCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "state",
		Short: "show the last book read",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *db.BoltStateDB) error {
				return db.PrintState(cmd.OutOrStdout(), store)
			})
		},
	}
	c.AddCommand(&cobra.Command{
		Use:       "chrome <hidden|shown>",
		Short:     "hide or show the reader's title and progress bar",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"hidden", "shown"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *db.BoltStateDB) error {
				d := bridge.NewDispatcher(nil, store, app.log)
				return d.Dispatch(cmd.Context(), bridge.ChromeToggled{Hidden: args[0] == "hidden"})
			})
		},
	})
	return c
}

func bookmarkCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "bookmark",
		Short: "manage the bookmarks of a book",
	}
	c.AddCommand(&cobra.Command{
		Use:  "add <book id> <position> [label]",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			pos, err := time.ParseDuration(args[1])
			if err != nil {
				return fmt.Errorf("invalid position %q: %w", args[1], err)
			}
			label := ""
			if len(args) == 3 {
				label = args[2]
			}
			return withStore(func(store *db.BoltStateDB) error {
				bm, err := store.AddBookmark(id, pos, label)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), bm.ID)
				return nil
			})
		},
	}, &cobra.Command{
		Use:  "list <book id>",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			return withStore(func(store *db.BoltStateDB) error {
				return db.PrintBookmarks(cmd.OutOrStdout(), id, store)
			})
		},
	}, &cobra.Command{
		Use:  "delete <book id> <bookmark id>",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := intArg(args, 0, "book id")
			if err != nil {
				return err
			}
			return withStore(func(store *db.BoltStateDB) error {
				return store.DeleteBookmark(id, args[1])
			})
		},
	})
	return c
}

func stylesCmd() *cobra.Command {
	script := false
	c := &cobra.Command{
		Use:   "styles",
		Short: "print the server's custom styles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			css, err := app.repo.CustomStyles(cmd.Context())
			if err != nil {
				return err
			}
			if script {
				css = bridge.InjectCSSScript(css)
			}
			fmt.Fprintln(cmd.OutOrStdout(), css)
			return nil
		},
	}
	c.Flags().BoolVar(&script, "script", false, "print as an injection script")
	return c
}

// bridgeCmd feeds page messages, one JSON object per line, through the
// dispatcher. It is the terminal stand-in for the embedded reader. Lines
// that are not valid messages are logged and skipped.
func bridgeCmd() *cobra.Command {
	c := &cobra.Command{
		Use:   "bridge",
		Short: "dispatch reader messages read from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(func(store *db.BoltStateDB) error {
				d := readerDispatcher(cmd.OutOrStdout(), store)
				return dispatchLines(cmd.Context(), cmd.InOrStdin(), d)
			})
		},
	}
	theme := ""
	injectCmd := &cobra.Command{
		Use:   "inject <url>",
		Short: "print the scripts injected while the reader loads a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			css, err := app.repo.CustomStyles(ctx)
			if err != nil {
				app.log.WarnContext(ctx, "custom styles unavailable", "error", err)
			}
			return withStore(func(store *db.BoltStateDB) error {
				sched := &waitScheduler{}
				l := bridge.NewLifecycle(&printEvaluator{w: cmd.OutOrStdout()}, store, app.log,
					bridge.WithScheduler(sched),
					bridge.WithThemeClass(theme),
				)
				l.SetCustomStyles(css)
				injectPage(ctx, l, sched, args[0])
				return nil
			})
		},
	}
	injectCmd.Flags().StringVar(&theme, "theme", "lutego-theme", "class applied to the document")
	c.AddCommand(injectCmd)
	c.AddCommand(&cobra.Command{
		Use:   "navigate <url>",
		Short: "show whether the reader would turn a navigation into a book transition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d := readerDispatcher(cmd.OutOrStdout(), nil)
			if !d.Navigate(cmd.Context(), args[0]) {
				fmt.Fprintln(cmd.OutOrStdout(), "navigation allowed")
			}
			return nil
		},
	})
	return c
}

func readerDispatcher(w io.Writer, store bridge.StateStore) *bridge.Dispatcher {
	return bridge.NewDispatcher(app.translations, store, app.log,
		bridge.OnBookSelected(func(ctx context.Context, bookID int) error {
			fmt.Fprintf(w, "open book %d: %s\n", bookID, app.repo.GetBookTitle(ctx, bookID))
			return nil
		}),
		bridge.OnTermClicked(func(ctx context.Context, termID int, text string) error {
			form, err := app.repo.LoadTermForm(ctx, termID, text)
			if err != nil {
				return err
			}
			fmt.Fprintln(w, ui.TermModel{Term: form}.View())
			return nil
		}),
	)
}

// printEvaluator stands in for the reader's script engine.
type printEvaluator struct {
	mu sync.Mutex
	w  io.Writer
	n  int
}

func (e *printEvaluator) Evaluate(ctx context.Context, script string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.n++
	_, err := fmt.Fprintf(e.w, "// injection %d\n%s\n", e.n, script)
	return err
}

// waitScheduler runs retries on timers and lets the caller wait for them.
type waitScheduler struct {
	wg sync.WaitGroup
}

func (s *waitScheduler) AfterFunc(d time.Duration, f func()) {
	s.wg.Add(1)
	time.AfterFunc(d, func() {
		defer s.wg.Done()
		f()
	})
}

// injectPage plays one page load: the early injection and its retries,
// then the load-finished injection.
func injectPage(ctx context.Context, l *bridge.Lifecycle, sched *waitScheduler, url string) {
	l.PageStarted(ctx, url)
	sched.wg.Wait()
	l.PageFinished(ctx, url)
}

func dispatchLines(ctx context.Context, r io.Reader, d *bridge.Dispatcher) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		err := d.HandleJSON(ctx, []byte(line))
		if errors.Is(err, bridge.ErrUnknownMessage) || errors.Is(err, bridge.ErrMalformedMessage) {
			continue
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}

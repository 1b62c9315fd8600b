package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"syscall"

	lgconfig "github.com/lai323/lutego/config"
	"github.com/lai323/lutego/db"
	"github.com/lai323/lutego/dict"
	"github.com/lai323/lutego/lute"
	"github.com/lai323/lutego/repo"
	"github.com/lai323/lutego/utils"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	storagePath string
	serverURL   string
	verbose     bool
	unlockDb    bool

	config lgconfig.Config
	app    *services

	rootCmd = &cobra.Command{
		Use:           "lutego",
		Short:         "read and study with a Lute server from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initServices()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if unlockDb {
				return unlockdb()
			}
			return cmd.Help()
		},
	}
)

// services are built once per process and shared by every command.
type services struct {
	log          *slog.Logger
	client       *lute.Client
	translations *dict.TranslationCacheManager
	repo         *repo.Repository
	dict         *dict.Service
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, userError(err))
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file (default is %s)", lgconfig.DefaultConfigPath))
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", fmt.Sprintf("storage dir (default is %s)", lgconfig.DefaultStorageDir))
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Lute server url, overrides the config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.Flags().BoolVar(&unlockDb, "unlockdb", false, "unlock db")

	rootCmd.AddCommand(booksCmd(), titleCmd(), termCmd(), dictCmd(), bookCmd(), stateCmd(), bookmarkCmd(), stylesCmd(), bridgeCmd())
}

func initConfig() {
	var err error
	config, err = lgconfig.InitConfig(afero.NewOsFs(), configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if storagePath != "" {
		config.StoragePath = storagePath
	}
	if serverURL != "" {
		config.ServerURL = serverURL
	}
}

func initServices() error {
	if app != nil {
		return nil
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := lute.NewClient(config, logger)
	translations := dict.NewTranslationCacheManager()
	app = &services{
		log:          logger,
		client:       client,
		translations: translations,
		repo:         repo.New(config, client, translations, logger),
		dict:         dict.NewService(client, dict.NewDictionaryCacheManager(), client.BaseURL(), logger, dict.WithFetchTimeout(config.Timeout)),
	}
	return nil
}

// withStore opens the local state db for the duration of fn.
func withStore(fn func(store *db.BoltStateDB) error) error {
	if err := afero.NewOsFs().MkdirAll(config.StoragePath, 0755); err != nil {
		return err
	}
	store, err := db.NewBoltStateDB(config.DbFile())
	if err != nil {
		return utils.FmtErrorf("open "+config.DbFile()+" (another lutego running? try --unlockdb)", err)
	}
	defer store.Close()
	return fn(store)
}

// userError hides server and network detail behind the stable messages;
// local errors such as bad arguments keep their text.
func userError(err error) string {
	if errors.Is(err, lgconfig.ErrServerURLNotSet) || errors.Is(err, lute.ErrServer) || errors.Is(err, lute.ErrTransport) {
		return repo.UserMessage(err)
	}
	return err.Error()
}

func unlockdb() error {
	file, err := os.Open(config.DbFile())
	if err != nil {
		return err
	}
	defer file.Close()
	err = syscall.Flock(int(file.Fd()), syscall.LOCK_UN)
	if err != nil {
		return err
	}
	fmt.Printf("unlock %s\n", config.DbFile())
	return nil
}

// Package cmd implements the checklist command line interface.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nhle/checklist-sync/internal/api"
	"github.com/nhle/checklist-sync/internal/checklist"
	"github.com/nhle/checklist-sync/internal/credential"
	"github.com/nhle/checklist-sync/internal/kvstore"
	"github.com/nhle/checklist-sync/internal/logging"
	"github.com/nhle/checklist-sync/internal/model"
)

var (
	configPath string
	listName   string
	modeFlag   string
	debug      bool
)

var rootCmd = &cobra.Command{
	Use:   "checklist",
	Short: "Offline-friendly checklist manager with API sync",
	Long: `Manage named checklists from the terminal.

Each checklist is stored either in a local SQLite database or on a
remote checklist API. API-backed checklists keep working offline:
unconfirmed changes are applied locally and flushed to the server
in the background.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", model.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().StringVarP(&listName, "name", "n", "", "checklist display name")
	rootCmd.PersistentFlags().StringVarP(&modeFlag, "mode", "m", "local", "storage backend (local or api)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(importEmailCmd)
	rootCmd.AddCommand(uiCmd)
	rootCmd.AddCommand(versionCmd)
}

// storeEnv bundles everything a subcommand needs to work on a
// checklist, plus the cleanup for the underlying backend.
type storeEnv struct {
	cfg    *model.AppConfig
	kv     kvstore.Store
	client *api.Client
	logger *zap.Logger

	close func()
}

// openEnv loads configuration and opens the backend selected by the
// --mode flag.
func openEnv(interactive bool) (*storeEnv, error) {
	cfg, err := model.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	var logger *zap.Logger
	if interactive {
		logger, err = logging.FileLogger(filepath.Join(model.ConfigDir(), "checklist.log"), debug)
		if err != nil {
			return nil, err
		}
	} else {
		logger = logging.ConsoleLogger(debug)
	}

	env := &storeEnv{cfg: cfg, logger: logger, close: func() {}}

	switch modeFlag {
	case string(model.ModeLocal):
		dbPath := cfg.Storage.DBPath
		if dbPath == "" {
			dbPath = model.DefaultDBPath()
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		kv, err := kvstore.NewSQLiteStore(dbPath)
		if err != nil {
			return nil, err
		}
		env.kv = kv
		env.close = func() { _ = kv.Close() }

	case string(model.ModeAPI):
		if cfg.API.BaseURL == "" {
			return nil, fmt.Errorf("api mode requires api.base_url in %s", configPath)
		}
		env.client = api.NewClient(cfg.API.BaseURL, credential.TokenProvider{},
			api.WithRetryAttempts(cfg.API.RetryAttempts),
			api.WithLogger(logger),
		)

	default:
		return nil, fmt.Errorf("unknown mode %q (want local or api)", modeFlag)
	}

	return env, nil
}

// openStore builds a checklist store for the given display name on the
// environment's backend.
func (e *storeEnv) openStore(name string) (*checklist.Store, error) {
	return checklist.New(name, checklist.Options{
		Mode:              model.Mode(modeFlag),
		KV:                e.kv,
		Client:            e.client,
		EnableOfflineSync: e.cfg.Sync.EnableOffline,
		RetryAttempts:     e.cfg.API.RetryAttempts,
		SyncBaseDelay:     time.Second,
		Logger:            e.logger,
	})
}

// requireName validates that --name was provided.
func requireName() (string, error) {
	if listName == "" {
		return "", fmt.Errorf("a checklist name is required (use --name)")
	}
	return listName, nil
}

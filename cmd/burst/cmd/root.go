package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/burst"
	"github.com/nikbrunner/burst/internal/config"
	"github.com/nikbrunner/burst/internal/logger"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/storage"
)

var (
	configPath string
	logLevel   string
	logFile    string

	cfg   *config.Config
	store   storage.Storage
	svc     *burst.Service
	logSink io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "burst",
	Short: "Find duplicate bookmarks and search them fuzzily",
	Long: `burst loads a browser bookmark tree, groups bookmarks that share a URL
or title, and searches titles and URLs with typo-tolerant matching.

Data lives in ~/.config/burst/ unless the config file points elsewhere.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if logSink != nil {
			defer func() {
				logSink.Close()
				logSink = nil
			}()
		}
		if store == nil {
			return nil
		}
		return store.Close()
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides the config file)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "append logs to this file instead of stderr")
}

// setup loads config, opens storage and fills the service with the tree.
func setup(cmd *cobra.Command) error {
	path := configPath
	if path == "" {
		var err error
		if path, err = config.DefaultFilePath(); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}

	var err error
	if cfg, err = config.Load(path); err != nil {
		return err
	}

	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	if logFile != "" {
		if logSink, err = logger.InitFile(logFile, level); err != nil {
			return err
		}
	} else if err := logger.Init(os.Stderr, level); err != nil {
		return err
	}

	dir, err := config.DefaultDir()
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	if store, err = storage.Open(cfg.Backend, cfg.ResolvedDataPath(dir)); err != nil {
		return fmt.Errorf("open storage: %w", err)
	}

	svc = burst.New(store, store, burst.Options{
		SortMode: cfg.Mode(),
		Strategy: cfg.SearchStrategy(),
		Search:   cfg.SearchOptions(),
	})
	return svc.Refresh(cmd.Context())
}

// modifiable returns the node, or an error when the store would reject a
// change to it. Checking here lets the prompt be skipped.
func modifiable(id string) (*model.Node, error) {
	n, err := svc.Node(id)
	if err != nil {
		return nil, err
	}
	if n.Unmodifiable {
		return nil, &storage.MutationError{Op: "modify", ID: id, Err: storage.ErrUnmodifiable}
	}
	return n, nil
}

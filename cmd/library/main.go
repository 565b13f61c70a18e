package main

import (
	"errors"
	"fmt"
	"os"

	"collection_manager/pkg/catalog"
	"collection_manager/pkg/config"
	"collection_manager/pkg/database"
	"collection_manager/pkg/loader"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.Logger

func newRootCmd() *cobra.Command {
	cfg := config.Load()

	cmd := &cobra.Command{
		Use:   "library",
		Short: "Collection Manager for the library's books and movies",
		Long: `Loads the books and movies collections and starts an interactive menu
for checking items in and out, adding items, and browsing or querying the
collections. Changes live in memory only and are gone when the program exits.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if logger != nil {
				return nil
			}
			var err error
			logger, err = newLogger(cfg.Verbose)
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollectionManager(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.BooksFile, "books", cfg.BooksFile, "path to the books collection file")
	cmd.Flags().StringVar(&cfg.MoviesFile, "movies", cfg.MoviesFile, "path to the movies collection file")
	cmd.Flags().IntVar(&cfg.PageSize, "page-size", cfg.PageSize, "items shown per page when displaying a collection")
	cmd.Flags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable debug logging on stderr")

	return cmd
}

func newLogger(verbose bool) (*zap.Logger, error) {
	logCfg := zap.NewProductionConfig()
	logCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return logCfg.Build()
}

func runCollectionManager(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()
	if cfg.PageSize < 1 {
		cfg.PageSize = config.DefaultPageSize
	}

	cols, err := loader.LoadCollections(cfg.BooksFile, cfg.MoviesFile)
	if err != nil {
		logger.Error("Failed to load collections", zap.Error(err))
		path := cfg.BooksFile
		var fileErr *loader.FileError
		if errors.As(err, &fileErr) {
			path = fileErr.Path
		}
		if errors.Is(err, loader.ErrFileNotFound) {
			fmt.Fprintf(out, "File not found when attempting to read %s\n", path)
		} else {
			fmt.Fprintf(out, "Error in data file when reading %s\n", path)
		}
		fmt.Fprintln(out, "The collections could not be loaded. Exiting.")
		return err
	}

	db, err := database.InitCollectionsDB(logger)
	if err != nil {
		logger.Error("Failed to open collections database", zap.Error(err))
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	c := catalog.New(db, logger)
	if err := c.Seed(cols); err != nil {
		logger.Error("Failed to seed collections", zap.Error(err))
		fmt.Fprintln(out, "The collections could not be loaded. Exiting.")
		return err
	}
	fmt.Fprintln(out, "The collections have loaded successfully.")

	s := newSession(c, cmd.InOrStdin(), out, cfg.PageSize, logger)
	return s.run()
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if logger == nil {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

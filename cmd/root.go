package cmd

import (
	"fmt"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/hmans/shelf/internal/config"
	"github.com/hmans/shelf/internal/library"
	"github.com/hmans/shelf/internal/librarycore"
	"github.com/hmans/shelf/internal/log"
)

var (
	core   *librarycore.Core
	cfg    *config.Config
	logger = logr.Discard()

	configPath string
	seedPath   string
)

var rootCmd = &cobra.Command{
	Use:   "shelf",
	Short: "An in-memory GraphQL API for authors and books",
	Long: heredoc.Doc(`
		Shelf keeps a small library of authors and books in memory and serves
		it through GraphQL. Books reference their author by name; adding a
		book by an unknown author creates that author.

		Nothing is persisted. Every process starts from the seed data, either
		the built-in one or a YAML file given with --seed.
	`),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		if seedPath != "" {
			cfg.Data.Seed = seedPath
		}

		logger = log.New(os.Stderr, cfg.Log.Verbosity)

		seed, err := loadSeed(cfg.Data.Seed)
		if err != nil {
			return err
		}

		core = librarycore.New(seed)
		core.SetLogger(logger.WithName("core"))

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if core == nil {
			return nil
		}
		return core.Close()
	},
}

// loadSeed returns the seed at path, or the built-in seed when path is empty.
func loadSeed(path string) (*library.Seed, error) {
	if path == "" {
		return library.DefaultSeed(), nil
	}

	seed, err := library.LoadSeedFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading seed: %w", err)
	}
	return seed, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.ConfigFile, "Path to the config file")
	rootCmd.PersistentFlags().StringVar(&seedPath, "seed", "", "Path to a YAML seed file (overrides config)")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

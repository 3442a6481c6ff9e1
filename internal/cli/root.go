// Package cli implements the alfred-memory CLI commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/felixgeelhaar/bolt/v3"
	"github.com/spf13/cobra"

	"github.com/jeremysball/alfred-memory/internal/config"
	"github.com/jeremysball/alfred-memory/internal/embedding"
	"github.com/jeremysball/alfred-memory/internal/engine"
	"github.com/jeremysball/alfred-memory/internal/store"
)

var (
	configPath string
	dataDir    string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "alfred-memory",
	Short: "Persistent semantic memory for an assistant",
	Long: "Durable conversational memory with embedding-based retrieval, " +
		"hybrid ranking, and two-phase deletion. Records live in plain " +
		"newline-delimited JSON logs.",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ~/.alfred-memory/config.yaml)")
	RootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "Data directory (default: $ALFRED_MEMORY_DATA or config data_dir)")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	} else if env := os.Getenv("ALFRED_MEMORY_DATA"); env != "" {
		cfg.DataDir = env
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) *bolt.Logger {
	var handler bolt.Handler
	if cfg.Logging.Format == "json" {
		handler = bolt.NewJSONHandler(os.Stderr)
	} else {
		handler = bolt.NewConsoleHandler(os.Stderr)
	}
	l := bolt.New(handler)
	if verbose {
		l.SetLevel(bolt.DEBUG)
		return l
	}
	switch cfg.Logging.Level {
	case "debug":
		l.SetLevel(bolt.DEBUG)
	case "info":
		l.SetLevel(bolt.INFO)
	case "error":
		l.SetLevel(bolt.ERROR)
	default:
		l.SetLevel(bolt.WARN)
	}
	return l
}

// openEngine builds the engine and its stores from config.
func openEngine() (*engine.Engine, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	memories, err := store.NewMemoryStore(filepath.Join(cfg.DataDir, store.MemoryLogName))
	if err != nil {
		return nil, nil, err
	}
	summaries, err := store.NewSummaryStore(filepath.Join(cfg.DataDir, store.SummaryLogName))
	if err != nil {
		return nil, nil, err
	}

	eng := engine.New(memories, summaries, engine.Config{
		MinSimilarity:  cfg.Retrieval.MinSimilarity,
		Limit:          cfg.Retrieval.Limit,
		HalfLifeDays:   cfg.Retrieval.HalfLifeDays,
		DedupThreshold: cfg.Retrieval.DedupThreshold,
		PendingTTL:     cfg.Deletion.PendingTTL,
		ContextBudget:  cfg.Retrieval.ContextBudget,
	}, newLogger(cfg))
	return eng, cfg, nil
}

// embedText turns text into a query/content vector via the configured
// provider. The engine itself never calls the provider.
func embedText(ctx context.Context, cfg *config.Config, text string) ([]float32, error) {
	provider, err := embedding.New(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, fmt.Errorf("no embedding provider configured (set embedding.provider in %s)", config.DefaultPath())
	}
	vec, err := provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed text: %w", err)
	}
	return vec, nil
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}

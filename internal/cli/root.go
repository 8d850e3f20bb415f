package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/stalewatch/stalewatch/internal/config"
	"github.com/stalewatch/stalewatch/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "stalewatch",
	Short: "Staleness tracking for crawled repository lists",
	Long:  "Stalewatch decides which tracked repositories have gone without a push for too long, and keeps a durable record of stale, active, and reactivated entries across runs.",
}

var configPath string

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ~/.stalewatch/config.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(serveCmd)
}

// loadConfig reads the config file named by --config, STALEWATCH_CONFIG, or
// the default location.
func loadConfig() (config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("STALEWATCH_CONFIG")
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return config.Default(), nil
		}
		path = filepath.Join(home, ".stalewatch", "config.toml")
	}
	return config.Load(path)
}

// openStore is a helper that initializes the store for CLI commands.
// STALEWATCH_DB overrides the configured path.
func openStore(cfg config.Config) (*store.Store, error) {
	dbPath := os.Getenv("STALEWATCH_DB")
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}

	st := store.New()
	if err := st.Initialize(dbPath); err != nil {
		return nil, fmt.Errorf("initialize store: %w", err)
	}
	return st, nil
}

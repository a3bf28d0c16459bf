package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/logiprep/internal/config"
	"github.com/abhisek/logiprep/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "logiprep",
	Short: "Logical reasoning test practice",
	Long: "logiprep assembles timed mock tests and untimed practice sessions from a question bank,\n" +
		"records every answer and tells you which section to study next.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides LOGIPREP_DB env var)")
	rootCmd.PersistentFlags().String("user", "", "User id to record sessions under (overrides LOGIPREP_USER)")
	rootCmd.PersistentFlags().Int64("seed", 0, "Seed for question sampling (overrides LOGIPREP_SEED; 0 = random)")

	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then LOGIPREP_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.Store.Path != "" {
		return cfg.Store.Path, store.EnsureDir(cfg.Store.Path)
	}
	return store.DefaultDBPath()
}

// applyFlags lets command-line flags override loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.User = u
	}
	if s, _ := cmd.Flags().GetInt64("seed"); s != 0 {
		cfg.Seed = s
	}
}

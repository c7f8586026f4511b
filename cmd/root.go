package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/config"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/logger"
	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/store"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "rlpro",
	Short: "Turn documents into weighted practice cards",
	Long: `rlpro ingests a PDF or text document, splits it into sections and segments,
authors practice cards from each segment, and runs weighted review sessions
that resurface the cards you get wrong.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		if mode, _ := cmd.Flags().GetString("log-mode"); mode != "" {
			loaded.LogMode = mode
		}
		l, err := logger.New(loaded.LogMode)
		if err != nil {
			return err
		}
		cfg, log = loaded, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			log.Sync()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (overrides RLPRO_CONFIG)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides RLPRO_DB env var)")
	rootCmd.PersistentFlags().String("log-mode", "", "Log mode: dev, prod or debug")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(cardsCmd)
	rootCmd.AddCommand(practiceCmd)
	rootCmd.AddCommand(gradeCmd)
	rootCmd.AddCommand(weightsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then RLPRO_DB and the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return cfg.DatabasePath()
}

// openStore opens the resolved database. Callers close it.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

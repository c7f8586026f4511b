package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhao4hua4/Reinforce-Learning-Pro/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or write the effective configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	RunE: func(cmd *cobra.Command, args []string) error {
		secrets, _ := cmd.Flags().GetBool("show-secrets")
		return config.Write(cmd.OutOrStdout(), cfg, secrets)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file (default rlpro.toml)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "rlpro.toml"
		if len(args) == 1 {
			path = args[0]
		}
		force, _ := cmd.Flags().GetBool("force")
		if _, err := os.Stat(path); err == nil && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}

		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create config: %w", err)
		}
		defer f.Close()
		if err := config.Write(f, cfg, true); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Wrote", path)
		return nil
	},
}

func init() {
	configShowCmd.Flags().Bool("show-secrets", false, "Print API keys instead of redacting them")
	configInitCmd.Flags().Bool("force", false, "Overwrite an existing file")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}

// Command scout is a terminal client for the Scout assistant: an interactive
// chat TUI plus a few scriptable subcommands.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"scout-tui/internal/config"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:          "scout",
	Short:        "Chat with Scout from the terminal",
	Version:      "0.4.0",
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTUI(cmd)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.BaseURL, "base-url", "", "Scout API base URL (env SCOUT_API_BASE_URL)")
	pf.StringVar(&flags.Token, "token", "", "bearer token (env SCOUT_API_TOKEN)")
	pf.StringVarP(&flags.Model, "model", "m", "", "model used for answers")
	pf.StringVar(&flags.Home, "home", "", "data directory (env SCOUT_HOME)")
	pf.StringVar(&flags.DBPath, "db-path", "", "preferences database path")
	pf.StringVar(&flags.ConfigPath, "config", "", "config.toml path (env SCOUT_CONFIG)")
	pf.StringVar(&flags.ExportDir, "export-dir", "", "directory for exported chats")
	pf.BoolVar(&flags.Debug, "debug", false, "log debug output to the log file")

	rootCmd.AddCommand(newTUICmd())
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newChatsCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newKBCmd())
	rootCmd.AddCommand(newFilesCmd())
	rootCmd.AddCommand(newDashboardCmd())
	rootCmd.AddCommand(newWhoamiCmd())
	rootCmd.AddCommand(newHealthCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

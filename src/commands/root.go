package commands

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fx-dashboard",
	Short: "Live FX rate history service and dashboard",
	Long: `A live foreign-exchange dashboard backed by a rate history service.

Components:
• Rate history service (/api/history, /api/rate, /api/delete_history)
• Dashboard controller with a bounded per-instrument series
• Websocket and REST control surface for the dashboard
• gRPC health endpoint for orchestration`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config/default.yaml", "path to config file")
}

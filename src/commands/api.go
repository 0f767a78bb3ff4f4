package commands

import (
	"github.com/spf13/cobra"

	"fx-dashboard/src/grpc_control"
)

// apiCmd runs only the rate history service
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Run the rate history service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		ctx := cmd.Context()

		b, err := newBackend(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer b.close(log)

		components := []component{apiComponent(b)}
		if grpc, ok := grpcComponent(ctx, cfg, log, map[string]grpc_control.Probe{
			grpc_control.APIService: storeProbe(b.store),
		}); ok {
			components = append(components, grpc)
		}

		log.Info("Serving API on %s:%d", cfg.Host, cfg.Port)
		return runUntilSignal(ctx, log, components...)
	},
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

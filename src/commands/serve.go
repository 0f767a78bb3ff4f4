package commands

import (
	"github.com/spf13/cobra"

	"fx-dashboard/src/grpc_control"
)

// serveCmd runs the rate history service and the dashboard in one process
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API and the dashboard together",
	Long: `Start the rate history service and the dashboard in one process.

The dashboard gateway talks to the API over HTTP exactly as it would in a
split deployment, using dashboard.gateway_url (defaults to the API address).`,
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

		d, err := newDashboard(cfg, log)
		if err != nil {
			return err
		}

		components := []component{apiComponent(b)}
		components = append(components, dashboardComponents(ctx, d)...)
		if grpc, ok := grpcComponent(ctx, cfg, log, map[string]grpc_control.Probe{
			grpc_control.APIService:       storeProbe(b.store),
			grpc_control.DashboardService: controllerProbe(d.controller),
		}); ok {
			components = append(components, grpc)
		}

		log.Info("Serving API on %s:%d and dashboard on %s:%d", cfg.Host, cfg.Port, cfg.Dashboard.Host, cfg.Dashboard.Port)
		return runUntilSignal(ctx, log, components...)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

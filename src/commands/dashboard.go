package commands

import (
	"github.com/spf13/cobra"

	"fx-dashboard/src/grpc_control"
)

var gatewayURL string

// dashboardCmd runs only the dashboard against a remote rate history service
var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Run the dashboard against a running API",
	Long: `Start the dashboard controller and its websocket/REST surface.

History and fresh samples come from the rate history service at
dashboard.gateway_url, overridable with --gateway.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		if gatewayURL != "" {
			cfg.Dashboard.GatewayURL = gatewayURL
		}

		ctx := cmd.Context()

		d, err := newDashboard(cfg, log)
		if err != nil {
			return err
		}

		components := dashboardComponents(ctx, d)
		if grpc, ok := grpcComponent(ctx, cfg, log, map[string]grpc_control.Probe{
			grpc_control.DashboardService: controllerProbe(d.controller),
		}); ok {
			components = append(components, grpc)
		}

		log.Info("Serving dashboard on %s:%d (gateway %s)", cfg.Dashboard.Host, cfg.Dashboard.Port, cfg.Dashboard.GatewayURL)
		return runUntilSignal(ctx, log, components...)
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)

	dashboardCmd.Flags().StringVarP(&gatewayURL, "gateway", "g", "", "rate history service base URL")
}

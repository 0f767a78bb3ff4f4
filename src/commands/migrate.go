package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// migrateCmd creates the history schema and exits
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the rate history schema",
	Long: `Create the exchange_rates table and its (pair, ts_utc) index in the
configured store. Existing tables and rows are left untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		defer log.Sync()

		store, err := openStore(cmd.Context(), cfg, log)
		if err != nil {
			return fmt.Errorf("migrate %s store: %w", cfg.Storage.DBType, err)
		}
		defer store.Close()

		log.Info("Schema ready (%s)", cfg.Storage.DBType)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/iliyamo/villa-booking/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the villas, bookings and transactions tables",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.FromEnv()
		if err != nil {
			return err
		}
		if cfg.DB.Driver == config.DriverMemory {
			return errors.New("migrate needs DB_DRIVER set to mysql, postgres or sqlite")
		}
		_, closer, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		logger.Info("schema is up to date")
		return closer.Close()
	},
}

package cmd

import (
	"context"

	"github.com/chartapp/chartapp-services/internal/appconfig"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "init-db-migrate",
	Short: "Initialize tables and run database migrations",
	Long:  `This job ensures tables exist and then runs goose migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Set the log level
		setLogging(logLevel)

		// Load the config file. Migrations do not need the signing key.
		var err error
		appCfg, err = appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		if appCfg.Database.Driver == memoryDriver {
			log.Fatal().Msg("the in-memory store has no schema to migrate")
		}

		chatDB, err = openDB()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize ChatDB")
		}
		defer chatDB.Close()

		// Run the migrations
		log.Info().Msgf("Running migrations...")
		if err := chatDB.Migrate(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}

		log.Info().Msg("Migrations complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

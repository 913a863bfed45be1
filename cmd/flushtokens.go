package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var flushTokensCmd = &cobra.Command{
	Use:   "flush-expired-tokens",
	Short: "Delete revoked refresh tokens that have expired",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		commonSetUp(ctx)
		defer closeStore()

		if chatDB == nil {
			log.Fatal().Msg("flush-expired-tokens needs the postgres driver")
		}

		n, err := chatDB.FlushExpired(ctx, time.Now().UTC())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to flush expired tokens")
		}
		log.Info().Int64("deleted", n).Msg("Flushed expired tokens")
	},
}

func init() {
	rootCmd.AddCommand(flushTokensCmd)
}

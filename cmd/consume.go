package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/chartapp/chartapp-services/internal/appconfig"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var subscription string

var consumeCmd = &cobra.Command{
	Use:   "consume",
	Short: "Tail the audit topic and log every event",
	Run: func(cmd *cobra.Command, args []string) {
		setLogging(logLevel)

		cfg, err := appconfig.LoadConfig(configPath)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load config")
		}
		if cfg.Events.PulsarURL == "" {
			log.Fatal().Msg("events.pulsarURL is not set")
		}

		// Initialize event consumer
		consumer, err := events.NewEventConsumer(cfg.Events.PulsarURL, cfg.Events.Topic, subscription)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event consumer")
		}
		defer consumer.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		for {
			msg, event, err := consumer.Receive(ctx)
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return
			}
			if err != nil {
				log.Error().Err(err).Msg("Error receiving message")
				if msg != nil {
					consumer.Nack(msg)
				}
				continue
			}

			log.Info().
				Str("type", event.Type).
				Int64("actor_id", event.ActorID).
				Int64("user_id", event.UserID).
				Int64("group_id", event.GroupID).
				Int64("message_id", event.MessageID).
				Ints64("user_ids", event.UserIDs).
				Int64("timestamp", event.Timestamp).
				Msg("audit event")
			consumer.Ack(msg)
		}
	},
}

func init() {
	rootCmd.AddCommand(consumeCmd)
	consumeCmd.Flags().StringVar(&subscription, "subscription", "chat-audit-tail", "Pulsar subscription name")
}

package cmd

import (
	"context"
	"fmt"

	services "github.com/chartapp/chartapp-services/api/services"
	"github.com/chartapp/chartapp-services/db"
	"github.com/chartapp/chartapp-services/internal/appconfig"
	"github.com/chartapp/chartapp-services/internal/authn"
	"github.com/chartapp/chartapp-services/internal/authz"
	"github.com/chartapp/chartapp-services/internal/awsclient"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/internal/memstore"
	"github.com/rs/zerolog/log"
)

const memoryDriver = "memory"

var (
	appCfg *appconfig.Config
	chatDB *db.ChatDB
	store  services.ChatStore

	userPolicy authz.UserMutationPolicy
)

// commonSetUp sets the log level, loads the config, resolves the signing key
// and opens the store. It exits the process on failure.
func commonSetUp(ctx context.Context) {
	setLogging(logLevel)

	var err error
	appCfg, err = appconfig.LoadConfig(configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if appCfg.Auth.SigningKeySecretID != "" {
		if err := resolveSigningKey(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to resolve signing key")
		}
	}

	if err := appCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	userPolicy, err = authz.PolicyByName(appCfg.Auth.UserMutationPolicy)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid user mutation policy")
	}

	if appCfg.Database.Driver == memoryDriver {
		log.Warn().Msg("Using in-memory store, data is lost on exit")
		store = memstore.New()
		return
	}

	chatDB, err = openDB()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize ChatDB")
	}
	store = chatDB
}

func openDB() (*db.ChatDB, error) {
	logger := log.With().Str("component", "db").Logger()
	return db.NewChatDB(appCfg.Database.Driver, appCfg.Database.Source, &logger)
}

// resolveSigningKey replaces the configured signing key with the value of the
// Secrets Manager secret.
func resolveSigningKey(ctx context.Context) error {
	awsCfg, err := awsclient.LoadAWSConfig(ctx, appCfg.AWS.Region)
	if err != nil {
		return err
	}
	key, err := awsclient.GetSecretString(ctx, awsclient.NewSecretsManagerClient(awsCfg), appCfg.Auth.SigningKeySecretID)
	if err != nil {
		return err
	}
	appCfg.Auth.SigningKey = key
	return nil
}

// newRevocationList builds the configured refresh token deny-list.
func newRevocationList(ctx context.Context) (authn.RevocationList, error) {
	switch appCfg.Revocation.Backend {
	case appconfig.RevocationRedis:
		rdb, err := authn.NewRedisClient(ctx, appCfg.Revocation.Redis.Addr, appCfg.Revocation.Redis.Password, appCfg.Revocation.Redis.DB)
		if err != nil {
			return nil, err
		}
		return authn.NewRedisRevocationList(rdb), nil
	case appconfig.RevocationMemory:
		return authn.NewMemoryRevocationList(), nil
	case appconfig.RevocationPostgres:
		if chatDB == nil {
			log.Warn().Msg("No database for the postgres revocation backend, falling back to memory")
			return authn.NewMemoryRevocationList(), nil
		}
		return chatDB, nil
	}
	return nil, fmt.Errorf("unknown revocation backend %q", appCfg.Revocation.Backend)
}

// newNotifier returns the Pulsar publisher, or a no-op when no URL is set.
func newNotifier() (events.Notifier, error) {
	if appCfg.Events.PulsarURL == "" {
		log.Info().Msg("No Pulsar URL configured, audit events are disabled")
		return events.NopNotifier{}, nil
	}
	return events.NewEventPublisher(appCfg.Events.PulsarURL, appCfg.Events.Topic)
}

func closeStore() {
	if chatDB != nil {
		chatDB.Close()
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/chartapp/chartapp-services/api/handlers"
	"github.com/chartapp/chartapp-services/api/middleware"
	services "github.com/chartapp/chartapp-services/api/services"
	docs "github.com/chartapp/chartapp-services/docs"
	"github.com/chartapp/chartapp-services/internal/authn"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpSwagger "github.com/swaggo/http-swagger"
)

// @title Chat Services API
// @version v1
// @description Authentication, users, groups and messages for the chat backend.
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server for handling API requests",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()

		// Load the config, initialize the store and set up logging
		commonSetUp(ctx)
		defer closeStore()

		revoked, err := newRevocationList(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize revocation list")
		}

		// Initialize event publisher
		notifier, err := newNotifier()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize event publisher")
		}
		defer notifier.Close()

		tokens := authn.NewTokenService([]byte(appCfg.Auth.SigningKey),
			appCfg.Auth.AccessTokenTTL, appCfg.Auth.RefreshTokenTTL, revoked)

		service := &services.Service{
			Config: appCfg,
			DB:     store,
			Tokens: tokens,
			Events: notifier,

			UserMutation: userPolicy,
		}
		auth := &middleware.Authenticator{Tokens: tokens, Users: store}

		// Create routes
		r := mux.NewRouter()
		handlers.RegisterRoutes(r.PathPrefix(appCfg.BasePath).Subrouter(), service, auth)

		// Docs
		docs.SwaggerInfo.Host = appCfg.Host
		docs.SwaggerInfo.BasePath = appCfg.BasePath
		r.PathPrefix(appCfg.DocsPath).Handler(httpSwagger.Handler(
			httpSwagger.URL(path.Join(appCfg.DocsPath, "/doc.json")),
			httpSwagger.DeepLinking(true),
			httpSwagger.DocExpansion("none"),
			httpSwagger.DomID("swagger-ui"),
		)).Methods(http.MethodGet)

		srv := &http.Server{
			Addr:              fmt.Sprintf("%s:%d", host, port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			log.Info().Msg(fmt.Sprintf("Server started at %s:%d", host, port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("could not start server")
			}
		}()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
		<-stop

		shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("server shutdown failed")
		}
		log.Info().Msg("Server stopped")
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&host, "host", "0.0.0.0", "host to run the server on")
	serveCmd.Flags().IntVar(&port, "port", 8080, "port to run the server on")
}

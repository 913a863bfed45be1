package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/chartapp/chartapp-services/internal/authn"
	"github.com/chartapp/chartapp-services/models"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	ClaimsKey contextKey = "claims"
	TokenKey  contextKey = "token"
	ActorKey  contextKey = "actor"
)

// UserGetter resolves the user named by a token. A missing user is (nil, nil).
type UserGetter interface {
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
}

// Authenticator verifies bearer access tokens and resolves the acting user.
type Authenticator struct {
	Tokens *authn.TokenService
	Users  UserGetter
}

// JWTMiddleware parses the access token, loads the actor and adds both to the
// request context.
func (a *Authenticator) JWTMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := zerolog.Ctx(r.Context()).With().
				Str("handler", "JWTMiddleware").Logger()

			// Get the Authorization header
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Debug().Msg("authorization header missing")
				writeError(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
				return
			}

			// Check the Authorization header format
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader || token == "" {
				logger.Debug().Msg("invalid token format")
				writeError(w, http.StatusUnauthorized, "invalid token format")
				return
			}

			claims, err := a.Tokens.VerifyAccess(token)
			if err != nil {
				logger.Debug().Err(err).Msg("invalid bearer jwt token")
				writeError(w, http.StatusUnauthorized, "Given token not valid for any token type")
				return
			}

			actor, err := a.Users.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				logger.Error().Err(err).Int64("user_id", claims.UserID).Msg("failed to load token user")
				writeError(w, http.StatusInternalServerError, "Something went wrong issue with the server")
				return
			}
			if actor == nil || !actor.IsActive {
				logger.Debug().Int64("user_id", claims.UserID).Msg("token user not found or inactive")
				writeError(w, http.StatusUnauthorized, "User not found")
				return
			}

			// Add the token, claims and actor to the context
			ctx := context.WithValue(r.Context(), TokenKey, token)
			ctx = context.WithValue(ctx, ClaimsKey, claims)
			ctx = context.WithValue(ctx, ActorKey, actor)
			ctx = logger.With().Int64("user_id", actor.ID).Logger().WithContext(ctx)

			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// Actor returns the authenticated user stored by JWTMiddleware.
func Actor(ctx context.Context) (*models.User, bool) {
	actor, ok := ctx.Value(ActorKey).(*models.User)
	return actor, ok && actor != nil
}

// WithLogger adds a logger to the context and logs request information.
func WithLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			logger := log.With().
				Str("host", r.Host).
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Str("remote_addr", r.RemoteAddr).
				Time("timestamp", time.Now()).
				Logger()

			// Add the logger to the context
			ctx := logger.WithContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		},
	)
}

// Recoverer turns a panic in a handler into a 500 envelope. The panic value
// is only echoed back when redact is false.
func Recoverer(redact bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if p := recover(); p != nil {
					if p == http.ErrAbortHandler {
						panic(p)
					}
					zerolog.Ctx(r.Context()).Error().
						Interface("panic", p).
						Bytes("stack", debug.Stack()).
						Msg("recovered from panic")

					resp := models.Response{Status: false, Message: "Something went wrong issue with the server"}
					if !redact {
						resp.Error = fmt.Sprint(p)
					}
					writeJSON(w, http.StatusInternalServerError, resp)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.Response{Status: false, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

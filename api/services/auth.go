package services

import (
	"errors"
	"net/http"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/models"
	"github.com/rs/zerolog"
)

// LoginService exchanges email and password for a token pair.
func LoginService(svc *Service, w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to login")
		return
	}
	if err := requireCredentials(req); err != nil {
		svc.fail(w, r, err, "Unable to login")
		return
	}

	pair, user, err := svc.Tokens.Login(r.Context(), svc.DB, req.Email, req.Password)
	if err != nil {
		svc.fail(w, r, err, "No active account found with the given credentials")
		return
	}

	zerolog.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("User logged in")
	HandleSuccessResponse(w, http.StatusOK, "Login successful", models.TokenPairResponse{
		Refresh: pair.Refresh,
		Access:  pair.Access,
	})
}

// RefreshService mints a new access token from a refresh token.
func RefreshService(svc *Service, w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to refresh token")
		return
	}
	if req.Refresh == "" {
		svc.fail(w, r, apperrors.NewValidationError("refresh", "This field is required."), "Unable to refresh token")
		return
	}

	access, err := svc.Tokens.Refresh(r.Context(), req.Refresh)
	if err != nil {
		svc.fail(w, r, err, "Token is invalid or expired")
		return
	}

	HandleSuccessResponse(w, http.StatusOK, "Token refreshed", models.AccessTokenResponse{Access: access})
}

// SuperuserLoginService is LoginService restricted to superusers.
func SuperuserLoginService(svc *Service, w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to login")
		return
	}

	pair, user, err := svc.Tokens.SuperuserLogin(r.Context(), svc.DB, req.Email, req.Password)
	switch {
	case errors.Is(err, apperrors.ErrInvalidCredentials):
		svc.fail(w, r, err, "Invalid credentials")
		return
	case errors.Is(err, apperrors.ErrNotAuthorized):
		svc.fail(w, r, err, "User is not a superuser")
		return
	case err != nil:
		svc.fail(w, r, err, "Unable to login")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.SuperuserLoggedIn, ActorID: user.ID})
	zerolog.Ctx(r.Context()).Info().Int64("user_id", user.ID).Msg("Superuser logged in")
	HandleSuccessResponse(w, http.StatusOK, "Login successful", models.TokenPairResponse{
		Refresh: pair.Refresh,
		Access:  pair.Access,
	})
}

// LogoutService revokes the supplied refresh token. Every failure short of an
// internal fault is reported as 400.
func LogoutService(svc *Service, w http.ResponseWriter, r *http.Request) {
	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	var req models.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to logout")
		return
	}
	if req.RefreshToken == nil || *req.RefreshToken == "" {
		svc.fail(w, r, apperrors.NewValidationError("refresh_token", "This field is required."), "Unable to logout")
		return
	}

	claims, err := svc.Tokens.Logout(r.Context(), *req.RefreshToken)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidToken) {
			zerolog.Ctx(r.Context()).Debug().Err(err).Msg("Unable to logout")
			WriteResponse(w, http.StatusBadRequest, models.Response{
				Status:  false,
				Message: "Unable to logout",
				Error:   err.Error(),
			})
			return
		}
		svc.fail(w, r, err, "Unable to logout")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.SessionRevoked, ActorID: actor.ID, UserID: claims.UserID})
	zerolog.Ctx(r.Context()).Info().Int64("user_id", claims.UserID).Msg("Refresh token revoked")
	HandleSuccessResponse(w, http.StatusResetContent, "Successfully logged out", nil)
}

func requireCredentials(req models.LoginRequest) error {
	verr := &apperrors.ValidationError{}
	if req.Email == "" {
		verr.Add("email", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	return verr.OrNil()
}

package handlers

import (
	"net/http"

	services "github.com/chartapp/chartapp-services/api/services"
)

// @Summary Obtain a token pair
// @Description Exchange email and password for an access and a refresh token.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.Response{data=models.TokenPairResponse}
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Failure 500 {object} models.Response
// @Router /auth/token/ [post]
func Login(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.LoginService(svc, w, r)
	}
}

// @Summary Refresh an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param refresh body models.RefreshRequest true "Refresh token"
// @Success 200 {object} models.Response{data=models.AccessTokenResponse}
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /auth/token/refresh/ [post]
func Refresh(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.RefreshService(svc, w, r)
	}
}

// @Summary Superuser login
// @Description Like the token route, but only superusers are issued tokens.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.Response{data=models.TokenPairResponse}
// @Failure 401 {object} models.Response
// @Failure 403 {object} models.Response
// @Router /auth/superuser/login/ [post]
func SuperuserLogin(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.SuperuserLoginService(svc, w, r)
	}
}

// @Summary Log out
// @Description Revoke a refresh token. Access tokens already issued stay valid until they expire.
// @Tags auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param token body models.LogoutRequest true "Refresh token to revoke"
// @Success 205 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /auth/logout/ [post]
func Logout(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.LogoutService(svc, w, r)
	}
}

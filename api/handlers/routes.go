package handlers

import (
	"net/http"

	"github.com/chartapp/chartapp-services/api/middleware"
	services "github.com/chartapp/chartapp-services/api/services"
	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API on api. Token, superuser bootstrap and
// superuser login routes are public; every other route requires a bearer
// access token.
func RegisterRoutes(api *mux.Router, svc *services.Service, auth *middleware.Authenticator) {
	api.Use(middleware.WithLogger)
	api.Use(middleware.Recoverer(svc.Config != nil && svc.Config.Server.RedactInternalErrors))

	public := api.NewRoute().Subrouter()
	public.HandleFunc("/auth/token/", Login(svc)).Methods(http.MethodPost)
	public.HandleFunc("/auth/token/refresh/", Refresh(svc)).Methods(http.MethodPost)
	public.HandleFunc("/auth/superuser/login/", SuperuserLogin(svc)).Methods(http.MethodPost)
	public.HandleFunc("/superuser/", CreateSuperuser(svc)).Methods(http.MethodPost)

	private := api.NewRoute().Subrouter()
	private.Use(auth.JWTMiddleware)

	// Session routes
	private.HandleFunc("/auth/logout/", Logout(svc)).Methods(http.MethodPost)

	// User routes
	private.HandleFunc("/users/", CreateUser(svc)).Methods(http.MethodPost)
	private.HandleFunc("/users/", PatchUser(svc)).Methods(http.MethodPatch)
	private.HandleFunc("/users/", DeleteUser(svc)).Methods(http.MethodDelete)
	private.HandleFunc("/users/all/", ListUsers(svc)).Methods(http.MethodGet)
	private.HandleFunc("/users/{id:[0-9]+}/", GetUser(svc)).Methods(http.MethodGet)

	// Group routes
	private.HandleFunc("/groups/", CreateGroup(svc)).Methods(http.MethodPost)
	private.HandleFunc("/groups/", ListGroups(svc)).Methods(http.MethodGet)
	private.HandleFunc("/groups/{id:[0-9]+}/", GetGroup(svc)).Methods(http.MethodGet)
	private.HandleFunc("/groups/{id:[0-9]+}/", DeleteGroup(svc)).Methods(http.MethodDelete)
	private.HandleFunc("/groups/{id:[0-9]+}/add-members/", AddMembers(svc)).Methods(http.MethodPost)
	private.HandleFunc("/groups/{id:[0-9]+}/messages/", SendMessage(svc)).Methods(http.MethodPost)

	// Message routes
	private.HandleFunc("/messages/", ListMessages(svc)).Methods(http.MethodGet)
	private.HandleFunc("/messages/{group_id:[0-9]+}/", ListGroupMessages(svc)).Methods(http.MethodGet)
}

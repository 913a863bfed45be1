package handlers

import (
	"net/http"

	services "github.com/chartapp/chartapp-services/api/services"
)

// @Summary Create a superuser
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.CreateSuperuserRequest true "Superuser"
// @Success 201 {object} models.Response{data=models.SuperuserResponse}
// @Failure 400 {object} models.Response
// @Router /superuser/ [post]
func CreateSuperuser(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateSuperuserService(svc, w, r)
	}
}

// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body models.CreateUserRequest true "User"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 401 {object} models.Response
// @Router /users/ [post]
func CreateUser(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateUserService(svc, w, r)
	}
}

// @Summary Update a user
// @Description Partially update the user named by id. Any authenticated user may update any user unless the self-or-staff policy is configured.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body models.PatchUserRequest true "Fields to update"
// @Success 205 {object} models.Response
// @Failure 400 {object} models.Response
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /users/ [patch]
func PatchUser(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.PatchUserService(svc, w, r)
	}
}

// @Summary Delete a user
// @Description Deletes the user and the messages they sent. Groups they host are kept without a host.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id query int true "User ID"
// @Success 204
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /users/ [delete]
func DeleteUser(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteUserService(svc, w, r)
	}
}

// @Summary List users
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=[]models.UserSummary}
// @Router /users/all/ [get]
func ListUsers(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ListUsersService(svc, w, r)
	}
}

// @Summary Get a user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.Response{data=models.UserSummary}
// @Failure 404 {object} models.Response
// @Router /users/{id}/ [get]
func GetUser(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetUserService(svc, w, r)
	}
}

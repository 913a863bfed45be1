package handlers

import (
	"net/http"

	services "github.com/chartapp/chartapp-services/api/services"
)

// @Summary Create a group
// @Description The authenticated user becomes the host. Participants must be existing user ids.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param group body models.CreateGroupRequest true "Group"
// @Success 201 {object} models.Response{data=models.Group}
// @Failure 400 {object} models.Response
// @Router /groups/ [post]
func CreateGroup(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.CreateGroupService(svc, w, r)
	}
}

// @Summary List groups
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=[]models.Group}
// @Router /groups/ [get]
func ListGroups(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ListGroupsService(svc, w, r)
	}
}

// @Summary Get a group
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 200 {object} models.Response{data=models.Group}
// @Failure 404 {object} models.Response
// @Router /groups/{id}/ [get]
func GetGroup(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.GetGroupService(svc, w, r)
	}
}

// @Summary Delete a group
// @Description Host only. The group's messages are deleted with it.
// @Tags groups
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Success 204
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /groups/{id}/ [delete]
func DeleteGroup(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.DeleteGroupService(svc, w, r)
	}
}

// @Summary Add members to a group
// @Description Host only. Ids that do not name a user are ignored.
// @Tags groups
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param members body models.AddMembersRequest true "User ids"
// @Success 200 {object} models.Response{data=models.Group}
// @Failure 403 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /groups/{id}/add-members/ [post]
func AddMembers(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.AddMembersService(svc, w, r)
	}
}

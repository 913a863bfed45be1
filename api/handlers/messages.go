package handlers

import (
	"net/http"

	services "github.com/chartapp/chartapp-services/api/services"
)

// @Summary Send a message
// @Description The sender is always the authenticated user.
// @Tags messages
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Group ID"
// @Param message body models.SendMessageRequest true "Message"
// @Success 201 {object} models.Response{data=models.Message}
// @Failure 400 {object} models.Response
// @Failure 404 {object} models.Response
// @Router /groups/{id}/messages/ [post]
func SendMessage(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.SendMessageService(svc, w, r)
	}
}

// @Summary List messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Response{data=[]models.Message}
// @Router /messages/ [get]
func ListMessages(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ListMessagesService(svc, w, r)
	}
}

// @Summary List a group's messages
// @Tags messages
// @Produce json
// @Security BearerAuth
// @Param group_id path int true "Group ID"
// @Success 200 {object} models.Response{data=[]models.Message}
// @Failure 404 {object} models.Response
// @Router /messages/{group_id}/ [get]
func ListGroupMessages(svc *services.Service) http.HandlerFunc {

	return func(w http.ResponseWriter, r *http.Request) {

		services.ListMessagesService(svc, w, r)
	}
}

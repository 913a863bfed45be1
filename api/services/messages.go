package services

import (
	"net/http"
	"strings"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/internal/authz"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/models"
	"github.com/rs/zerolog"
)

// SendMessageService posts a message into a group. The sender is always the
// actor; a sender supplied in the body is ignored.
func SendMessageService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	group, ok := svc.loadGroup(w, r)
	if !ok {
		return
	}

	var req models.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to send the message")
		return
	}
	switch {
	case req.Content == nil:
		svc.fail(w, r, apperrors.NewValidationError("content", "This field is required."), "Unable to send the message")
		return
	case strings.TrimSpace(*req.Content) == "":
		svc.fail(w, r, apperrors.NewValidationError("content", "This field may not be blank."), "Unable to send the message")
		return
	}

	sender := authz.MessageSender(actor, req.Sender)
	msg, err := svc.DB.CreateMessage(r.Context(), group.ID, sender.ID, *req.Content)
	if err != nil {
		svc.fail(w, r, err, "Unable to send the message")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.MessageCreated, ActorID: actor.ID, GroupID: group.ID, MessageID: msg.ID})
	logger.Info().Int64("group_id", group.ID).Int64("message_id", msg.ID).Msg("Message sent successfully")

	HandleSuccessResponse(w, http.StatusCreated, "Message sent successfully", msg)
}

// ListMessagesService returns all messages, or those of one group when the
// group_id route variable is present.
func ListMessagesService(svc *Service, w http.ResponseWriter, r *http.Request) {
	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	var groupID *int64
	if _, scoped := muxVar(r, "group_id"); scoped {
		group, ok := svc.loadGroupVar(w, r, "group_id")
		if !ok {
			return
		}
		if err := authz.CanReadGroupMessages(actor, group); err != nil {
			svc.fail(w, r, err, "You do not have permission to view this resource.")
			return
		}
		groupID = &group.ID
	}

	messages, err := svc.DB.ListMessages(r.Context(), groupID)
	if err != nil {
		svc.fail(w, r, err, "Unable to retrieve messages")
		return
	}

	zerolog.Ctx(r.Context()).Debug().Int("message_count", len(messages)).Msg("Successfully retrieved messages")
	HandleSuccessResponse(w, http.StatusOK, "Messages retrieved successfully", messages)
}

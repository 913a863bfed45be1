package services

import (
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/internal/authz"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/models"
	"github.com/rs/zerolog"
)

const maxGroupNameLength = 255

// CreateGroupService creates a group hosted by the actor.
func CreateGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	var req models.CreateGroupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to create the group")
		return
	}
	if err := validateGroupName(req.Name); err != nil {
		svc.fail(w, r, err, "Unable to create the group")
		return
	}

	group, err := svc.DB.CreateGroup(r.Context(), &models.Group{
		Host:         &actor.ID,
		Name:         req.Name,
		Description:  req.Description,
		Participants: req.Participants,
	})
	if err != nil {
		svc.fail(w, r, err, "Unable to create the group")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.GroupCreated, ActorID: actor.ID, GroupID: group.ID, UserIDs: group.Participants})
	logger.Info().Int64("group_id", group.ID).Msg("Group created successfully")

	HandleSuccessResponse(w, http.StatusCreated, "Group created successfully", group,
		fmt.Sprintf("%s/groups/%d/", svc.basePath(), group.ID))
}

// ListGroupsService returns every group, most recently updated first.
func ListGroupsService(svc *Service, w http.ResponseWriter, r *http.Request) {
	groups, err := svc.DB.ListGroups(r.Context())
	if err != nil {
		svc.fail(w, r, err, "Unable to retrieve groups")
		return
	}

	zerolog.Ctx(r.Context()).Debug().Int("group_count", len(groups)).Msg("Successfully retrieved groups")
	HandleSuccessResponse(w, http.StatusOK, "Groups retrieved successfully", groups)
}

func GetGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
	group, ok := svc.loadGroup(w, r)
	if !ok {
		return
	}
	HandleSuccessResponse(w, http.StatusOK, "Group retrieved successfully", group)
}

// AddMembersService adds users to a group. Only the host may do this; ids
// that name no user are dropped without error.
func AddMembersService(svc *Service, w http.ResponseWriter, r *http.Request) {
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

	if err := authz.CanMutateGroup(actor, group); err != nil {
		svc.fail(w, r, err, "You do not have permission to edit this resource.")
		return
	}

	var req models.AddMembersRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Unable to add members")
		return
	}

	updated, err := svc.DB.AddParticipants(r.Context(), group.ID, req.UserIDs)
	if err != nil {
		svc.fail(w, r, err, "Unable to add members")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.GroupMembersAdded, ActorID: actor.ID, GroupID: group.ID, UserIDs: updated.Participants})
	logger.Info().Int64("group_id", group.ID).Int("participant_count", len(updated.Participants)).Msg("Members added successfully to the group")

	HandleSuccessResponse(w, http.StatusOK, "Members added successfully to the group", updated)
}

// DeleteGroupService removes a group and its messages. Only the host may do this.
func DeleteGroupService(svc *Service, w http.ResponseWriter, r *http.Request) {
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

	if err := authz.CanMutateGroup(actor, group); err != nil {
		svc.fail(w, r, err, "You do not have permission to edit this resource.")
		return
	}

	if err := svc.DB.DeleteGroup(r.Context(), group.ID); err != nil {
		svc.fail(w, r, err, "Group not found")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.GroupDeleted, ActorID: actor.ID, GroupID: group.ID})
	logger.Info().Int64("group_id", group.ID).Msg("Group deleted successfully")

	HandleSuccessResponse(w, http.StatusNoContent, "Group deleted successfully", nil)
}

// loadGroup resolves the {id} route variable. On failure the response has
// already been written.
func (svc *Service) loadGroup(w http.ResponseWriter, r *http.Request) (*models.Group, bool) {
	return svc.loadGroupVar(w, r, "id")
}

func (svc *Service) loadGroupVar(w http.ResponseWriter, r *http.Request, name string) (*models.Group, bool) {
	id, err := pathID(r, name)
	if err != nil {
		svc.fail(w, r, err, "Group not found")
		return nil, false
	}

	group, err := svc.DB.GetGroup(r.Context(), id)
	if err != nil {
		svc.fail(w, r, err, "Unable to retrieve group")
		return nil, false
	}
	if group == nil {
		svc.fail(w, r, fmt.Errorf("group %d: %w", id, apperrors.ErrNotFound), "Group not found")
		return nil, false
	}
	return group, true
}

func validateGroupName(name string) error {
	switch {
	case name == "":
		return apperrors.NewValidationError("name", "This field is required.")
	case strings.TrimSpace(name) == "":
		return apperrors.NewValidationError("name", "This field may not be blank.")
	case utf8.RuneCountInString(name) > maxGroupNameLength:
		return apperrors.NewValidationError("name",
			fmt.Sprintf("Ensure this field has no more than %d characters.", maxGroupNameLength))
	}
	return nil
}

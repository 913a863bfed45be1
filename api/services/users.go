package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/internal/authz"
	"github.com/chartapp/chartapp-services/internal/credentials"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/chartapp/chartapp-services/models"
	"github.com/rs/zerolog"
)

// CreateSuperuserService bootstraps a user with staff and superuser rights.
func CreateSuperuserService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req models.CreateSuperuserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "User has already been registered")
		return
	}

	user, err := credentials.CreateSuperuser(r.Context(), svc.DB, credentials.NewUser{
		Email:       req.Email,
		Username:    req.Username,
		Password:    req.Password,
		IsStaff:     req.IsStaff,
		IsSuperuser: req.IsSuperuser,
	})
	if err != nil {
		svc.fail(w, r, err, "User has already been registered")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.UserCreated, UserID: user.ID})
	logger.Info().Int64("user_id", user.ID).Msg("Superuser created successfully")

	HandleSuccessResponse(w, http.StatusCreated, "User created successfully", models.SuperuserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		IsSuperuser: user.IsSuperuser(),
		IsStaff:     user.IsStaff(),
	}, fmt.Sprintf("%s/users/%d/", svc.basePath(), user.ID))
}

// CreateUserService registers a regular user.
func CreateUserService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	var req models.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		svc.fail(w, r, err, "Failed to register")
		return
	}

	user, err := credentials.CreateUser(r.Context(), svc.DB, credentials.NewUser{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		svc.fail(w, r, err, "Failed to register")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.UserCreated, ActorID: actor.ID, UserID: user.ID})
	logger.Info().Int64("user_id", user.ID).Msg("User registered successfully")

	HandleSuccessResponse(w, http.StatusCreated, "Successfuly registered", nil,
		fmt.Sprintf("%s/users/%d/", svc.basePath(), user.ID))
}

// PatchUserService applies a partial update to the user named in the body.
func PatchUserService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		svc.fail(w, r, err, "Unable to update the user data")
		return
	}
	var req models.PatchUserRequest
	if err := unmarshalBody(body, &req); err != nil {
		svc.fail(w, r, err, "Unable to update the user data")
		return
	}
	keys, err := orderedKeys(body)
	if err != nil {
		svc.fail(w, r, apperrors.NewValidationError("detail", fmt.Sprintf("JSON parse error - %s", err)), "Unable to update the user data")
		return
	}
	if req.ID == nil {
		svc.fail(w, r, apperrors.NewValidationError("id", "This field is required."), "Unable to update the user data")
		return
	}

	if err := authz.CanMutateUser(svc.UserMutation, actor, *req.ID); err != nil {
		svc.fail(w, r, err, "You do not have permission to edit this resource.")
		return
	}

	patch, err := buildPatch(req)
	if err != nil {
		svc.fail(w, r, err, "Unable to update the user data")
		return
	}

	if _, err := svc.DB.UpdateUser(r.Context(), *req.ID, patch); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			svc.fail(w, r, err, "User not found")
			return
		}
		svc.fail(w, r, err, "Unable to update the user data")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.UserUpdated, ActorID: actor.ID, UserID: *req.ID})
	logger.Info().Int64("target_user_id", *req.ID).Strs("fields", keys).Msg("User updated successfully")

	HandleSuccessResponse(w, http.StatusResetContent, fmt.Sprintf("%s are updated", formatKeys(keys)), nil)
}

// DeleteUserService deletes the user named by the id query parameter together
// with the messages they sent.
func DeleteUserService(svc *Service, w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	actor, err := requestActor(r)
	if err != nil {
		svc.fail(w, r, err, "Authentication credentials were not provided.")
		return
	}

	raw := r.URL.Query().Get("id")
	if raw == "" {
		svc.fail(w, r, apperrors.NewValidationError("id", "This field is required."), "Unable to delete the user")
		return
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		svc.fail(w, r, apperrors.NewValidationError("id", "A valid integer is required."), "Unable to delete the user")
		return
	}

	if err := authz.CanMutateUser(svc.UserMutation, actor, id); err != nil {
		svc.fail(w, r, err, "You do not have permission to edit this resource.")
		return
	}

	if err := svc.DB.DeleteUser(r.Context(), id); err != nil {
		svc.fail(w, r, err, "User not found")
		return
	}

	svc.notify(r.Context(), events.Event{Type: events.UserDeleted, ActorID: actor.ID, UserID: id})
	logger.Info().Int64("target_user_id", id).Msg("User is successfully deleted")

	HandleSuccessResponse(w, http.StatusNoContent, "User is successfully deleted", nil)
}

// ListUsersService returns the public view of every user.
func ListUsersService(svc *Service, w http.ResponseWriter, r *http.Request) {
	users, err := svc.DB.ListUsers(r.Context())
	if err != nil {
		svc.fail(w, r, err, "Unable to retrieve users")
		return
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}

	zerolog.Ctx(r.Context()).Debug().Int("user_count", len(summaries)).Msg("Successfully retrieved users")
	HandleSuccessResponse(w, http.StatusOK, "Data retrieved successfully", summaries)
}

// GetUserService returns a single user.
func GetUserService(svc *Service, w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		svc.fail(w, r, err, "User not found")
		return
	}

	user, err := svc.DB.GetUserByID(r.Context(), id)
	if err != nil {
		svc.fail(w, r, err, "Unable to retrieve user")
		return
	}
	if user == nil {
		svc.fail(w, r, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound), "User not found")
		return
	}

	HandleSuccessResponse(w, http.StatusOK, "Data retrieved successfully", user.Summary())
}

// buildPatch validates the supplied fields and hashes a new password.
func buildPatch(req models.PatchUserRequest) (models.UserPatch, error) {
	var patch models.UserPatch
	verr := &apperrors.ValidationError{}

	if req.Email != nil {
		email, err := credentials.NormalizeEmail(*req.Email)
		mergeValidation(verr, err)
		patch.Email = &email
	}
	if req.Username != nil {
		mergeValidation(verr, credentials.ValidateUsername(*req.Username))
		patch.Username = req.Username
	}
	if req.Password != nil {
		mergeValidation(verr, credentials.ValidatePassword(*req.Password))
	}
	if err := verr.OrNil(); err != nil {
		return patch, err
	}

	if req.Password != nil {
		hash, err := credentials.HashPassword(*req.Password)
		if err != nil {
			return patch, err
		}
		patch.Password = &hash
	}
	return patch, nil
}

func mergeValidation(dst *apperrors.ValidationError, err error) {
	var verr *apperrors.ValidationError
	if errors.As(err, &verr) {
		dst.Merge(verr)
	}
}

// orderedKeys returns the top level keys of a JSON object in document order.
func orderedKeys(body []byte) ([]string, error) {
	if len(body) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("expected a JSON object")
	}

	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errors.New("expected an object key")
		}
		keys = append(keys, key)

		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// formatKeys renders keys as a bracketed list of quoted names, e.g. ['id', 'email'].
func formatKeys(keys []string) string {
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = "'" + k + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

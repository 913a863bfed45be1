// Package authz holds the decision functions consulted by the resource
// services before they touch the store. Nothing in here performs I/O.
package authz

import (
	"fmt"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
)

// CanMutateGroup allows the group host, and nobody else, to change a group:
// add participants or delete it. A group whose host was deleted can no
// longer be mutated.
func CanMutateGroup(actor *models.User, group *models.Group) error {
	if actor == nil || group == nil || group.Host == nil || *group.Host != actor.ID {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// CanReadGroupMessages always allows. Any authenticated actor may read any
// group's messages, participant or not.
func CanReadGroupMessages(actor *models.User, group *models.Group) error {
	return nil
}

// MessageSender returns the sender to persist for a new message. Whatever
// the request body claimed is discarded.
func MessageSender(actor *models.User, _ any) models.UserSummary {
	return actor.Summary()
}

// UserMutationPolicy decides whether actor may patch or delete the user
// identified by targetID.
type UserMutationPolicy func(actor *models.User, targetID int64) error

// AllowAnyAuthenticated lets every authenticated actor patch or delete any
// user record. There is no ownership check.
func AllowAnyAuthenticated(actor *models.User, _ int64) error {
	if actor == nil {
		return apperrors.ErrPermissionDenied
	}
	return nil
}

// SelfOrStaff restricts user mutation to the user themselves and staff.
func SelfOrStaff(actor *models.User, targetID int64) error {
	if actor == nil {
		return apperrors.ErrPermissionDenied
	}
	if actor.ID == targetID || actor.IsStaff() {
		return nil
	}
	return apperrors.ErrPermissionDenied
}

// CanMutateUser applies policy, falling back to AllowAnyAuthenticated when
// policy is nil.
func CanMutateUser(policy UserMutationPolicy, actor *models.User, targetID int64) error {
	if policy == nil {
		policy = AllowAnyAuthenticated
	}
	return policy(actor, targetID)
}

// PolicyByName resolves the name used in configuration.
func PolicyByName(name string) (UserMutationPolicy, error) {
	switch name {
	case "", "any":
		return AllowAnyAuthenticated, nil
	case "self-or-staff":
		return SelfOrStaff, nil
	default:
		return nil, fmt.Errorf("unknown user mutation policy %q", name)
	}
}

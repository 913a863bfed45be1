package authz

import (
	"testing"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(v int64) *int64 { return &v }

func TestCanMutateGroup(t *testing.T) {
	host := &models.User{ID: 1}
	other := &models.User{ID: 2}

	tests := []struct {
		name  string
		actor *models.User
		group *models.Group
		allow bool
	}{
		{"host", host, &models.Group{ID: 10, Host: ptr(1)}, true},
		{"not host", other, &models.Group{ID: 10, Host: ptr(1)}, false},
		{"host deleted", host, &models.Group{ID: 10}, false},
		{"participant is not host", other, &models.Group{ID: 10, Host: ptr(1), Participants: []int64{2}}, false},
		{"no actor", nil, &models.Group{ID: 10, Host: ptr(1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CanMutateGroup(tt.actor, tt.group)
			if tt.allow {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
			}
		})
	}
}

func TestCanReadGroupMessages_AnyActor(t *testing.T) {
	group := &models.Group{ID: 1, Host: ptr(1)}
	assert.NoError(t, CanReadGroupMessages(&models.User{ID: 42}, group))
}

func TestMessageSender_IgnoresRequestedSender(t *testing.T) {
	actor := &models.User{ID: 7, Username: "alice", Email: "alice@example.com"}

	sender := MessageSender(actor, map[string]any{"id": 99})

	assert.Equal(t, int64(7), sender.ID)
	assert.Equal(t, "alice", sender.Username)
}

func TestUserMutationPolicies(t *testing.T) {
	member := &models.User{ID: 1, Role: models.RoleMember}
	staff := &models.User{ID: 2, Role: models.RoleStaff}

	assert.NoError(t, AllowAnyAuthenticated(member, 99))
	assert.ErrorIs(t, AllowAnyAuthenticated(nil, 99), apperrors.ErrPermissionDenied)

	assert.NoError(t, SelfOrStaff(member, 1))
	assert.NoError(t, SelfOrStaff(staff, 99))
	assert.ErrorIs(t, SelfOrStaff(member, 99), apperrors.ErrPermissionDenied)
}

func TestCanMutateUser_DefaultIsPermissive(t *testing.T) {
	assert.NoError(t, CanMutateUser(nil, &models.User{ID: 1}, 500))
	assert.ErrorIs(t, CanMutateUser(nil, nil, 500), apperrors.ErrPermissionDenied)
}

func TestCanMutateUser_AppliesPolicy(t *testing.T) {
	member := &models.User{ID: 1, Role: models.RoleMember}

	assert.ErrorIs(t, CanMutateUser(SelfOrStaff, member, 500), apperrors.ErrPermissionDenied)
	assert.NoError(t, CanMutateUser(SelfOrStaff, member, 1))
	// The policy of one call does not leak into the next.
	assert.NoError(t, CanMutateUser(nil, member, 500))
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("self-or-staff")
	require.NoError(t, err)
	assert.Error(t, p(&models.User{ID: 1}, 2))

	p, err = PolicyByName("")
	require.NoError(t, err)
	assert.NoError(t, p(&models.User{ID: 1}, 2))

	_, err = PolicyByName("owner-only")
	assert.Error(t, err)
}

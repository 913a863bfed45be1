package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func steppingClock() func() time.Time {
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func TestStore_Users(t *testing.T) {
	s := New()
	ctx := context.Background()

	alice, err := s.CreateUser(ctx, &models.User{Email: "alice@example.com", Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), alice.ID)
	assert.Equal(t, models.RoleMember, alice.Role)

	_, err = s.CreateUser(ctx, &models.User{Email: "alice@example.com", Username: "again"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)

	bob, err := s.CreateUser(ctx, &models.User{Email: "bob@example.com", Username: "bob"})
	require.NoError(t, err)

	taken := "alice@example.com"
	_, err = s.UpdateUser(ctx, bob.ID, models.UserPatch{Email: &taken})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)

	name := "robert"
	updated, err := s.UpdateUser(ctx, bob.ID, models.UserPatch{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "robert", updated.Username)

	_, err = s.UpdateUser(ctx, 42, models.UserPatch{Username: &name})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, alice.ID, users[0].ID)
}

func TestStore_GroupsAndCascade(t *testing.T) {
	s := New()
	s.Now = steppingClock()
	ctx := context.Background()

	alice, _ := s.CreateUser(ctx, &models.User{Email: "alice@example.com", Username: "alice"})
	bob, _ := s.CreateUser(ctx, &models.User{Email: "bob@example.com", Username: "bob"})

	_, err := s.CreateGroup(ctx, &models.Group{Host: &alice.ID, Name: "bad", Participants: []int64{99}})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	first, err := s.CreateGroup(ctx, &models.Group{Host: &alice.ID, Name: "first"})
	require.NoError(t, err)
	second, err := s.CreateGroup(ctx, &models.Group{Host: &bob.ID, Name: "second"})
	require.NoError(t, err)

	groups, err := s.ListGroups(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, groups[0].ID)
	assert.Equal(t, first.ID, groups[1].ID)

	g, err := s.AddParticipants(ctx, first.ID, []int64{bob.ID, 99, bob.ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID}, g.Participants)

	_, err = s.CreateMessage(ctx, first.ID, alice.ID, "hi")
	require.NoError(t, err)
	fromBob, err := s.CreateMessage(ctx, first.ID, bob.ID, "hello")
	require.NoError(t, err)

	msgs, err := s.ListMessages(ctx, &first.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, fromBob.ID, msgs[0].ID)

	require.NoError(t, s.DeleteUser(ctx, alice.ID))

	g, err = s.GetGroup(ctx, first.ID)
	require.NoError(t, err)
	assert.Nil(t, g.Host)
	msgs, _ = s.ListMessages(ctx, nil)
	require.Len(t, msgs, 1)
	assert.Equal(t, fromBob.ID, msgs[0].ID)

	require.NoError(t, s.DeleteGroup(ctx, first.ID))
	msgs, _ = s.ListMessages(ctx, nil)
	assert.Empty(t, msgs)
	assert.ErrorIs(t, s.DeleteGroup(ctx, first.ID), apperrors.ErrNotFound)
}

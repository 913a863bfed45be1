package credentials

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUserStore struct {
	users  []*models.User
	errOut error
}

func (f *fakeUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	if f.errOut != nil {
		return false, f.errOut
	}
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	user.ID = int64(len(f.users) + 1)
	f.users = append(f.users, user)
	return user, nil
}

func boolPtr(b bool) *bool { return &b }

func init() {
	HashCost = bcrypt.MinCost
}

func TestNormalizeEmail(t *testing.T) {
	got, err := NormalizeEmail("  Alice@Example.COM ")
	require.NoError(t, err)
	assert.Equal(t, "Alice@example.com", got)

	for _, bad := range []string{"", "not-an-email", "a@@b.com", "Alice <alice@example.com>", strings.Repeat("a", 320) + "@x.io"} {
		_, err := NormalizeEmail(bad)
		assert.ErrorIs(t, err, apperrors.ErrValidation, bad)
	}
}

func TestValidateUsername(t *testing.T) {
	for _, ok := range []string{"alice", "Alice Smith", "a.b@c+d-e_f", "Zoë 42"} {
		assert.NoError(t, ValidateUsername(ok), ok)
	}
	for _, bad := range []string{"", "semi;colon", "slash/name", strings.Repeat("x", 65)} {
		assert.ErrorIs(t, ValidateUsername(bad), apperrors.ErrValidation, bad)
	}
}

func TestCreateUser_HashesPassword(t *testing.T) {
	store := &fakeUserStore{}

	user, err := CreateUser(context.Background(), store, NewUser{
		Email: "bob@Example.com", Username: "bob", Password: "s3cret",
	})

	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", user.Email)
	assert.NotEqual(t, "s3cret", user.Password)
	assert.True(t, CheckPassword(user.Password, "s3cret"))
	assert.False(t, CheckPassword(user.Password, "wrong"))
	assert.Equal(t, models.RoleMember, user.Role)
	assert.True(t, user.IsActive)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := &fakeUserStore{}
	ctx := context.Background()

	_, err := CreateUser(ctx, store, NewUser{Email: "carol@example.com", Username: "carol", Password: "pw"})
	require.NoError(t, err)

	_, err = CreateUser(ctx, store, NewUser{Email: "carol@EXAMPLE.com", Username: "carol2", Password: "pw"})
	assert.ErrorIs(t, err, apperrors.ErrDuplicateEmail)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Len(t, store.users, 1)
}

func TestCreateUser_CollectsFieldErrors(t *testing.T) {
	_, err := CreateUser(context.Background(), &fakeUserStore{}, NewUser{Email: "nope", Username: "bad/name"})

	var verr *apperrors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Fields, "email")
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")
}

func TestCreateUser_StoreError(t *testing.T) {
	_, err := CreateUser(context.Background(), &fakeUserStore{errOut: errors.New("boom")},
		NewUser{Email: "d@example.com", Username: "d", Password: "pw"})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateSuperuser_ForcesFlags(t *testing.T) {
	store := &fakeUserStore{}

	user, err := CreateSuperuser(context.Background(), store, NewUser{
		Email: "root@example.com", Username: "root", Password: "pw",
	})

	require.NoError(t, err)
	assert.True(t, user.IsStaff())
	assert.True(t, user.IsSuperuser())
	assert.True(t, user.IsActive)
	assert.NotEqual(t, "pw", user.Password)
}

func TestCreateSuperuser_RejectsExplicitFalse(t *testing.T) {
	tests := []struct {
		name   string
		staff  *bool
		super  *bool
		fields []string
	}{
		{"staff false", boolPtr(false), nil, []string{"is_staff"}},
		{"superuser false", nil, boolPtr(false), []string{"is_superuser"}},
		{"both false", boolPtr(false), boolPtr(false), []string{"is_staff", "is_superuser"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeUserStore{}
			_, err := CreateSuperuser(context.Background(), store, NewUser{
				Email: "root@example.com", Username: "root", Password: "pw",
				IsStaff: tt.staff, IsSuperuser: tt.super,
			})

			var verr *apperrors.ValidationError
			require.True(t, errors.As(err, &verr))
			for _, f := range tt.fields {
				assert.Contains(t, verr.Fields, f)
			}
			assert.Empty(t, store.users)
		})
	}
}

func TestCreateSuperuser_ExplicitTrueAccepted(t *testing.T) {
	user, err := CreateSuperuser(context.Background(), &fakeUserStore{}, NewUser{
		Email: "root@example.com", Username: "root", Password: "pw",
		IsStaff: boolPtr(true), IsSuperuser: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleSuperuser, user.Role)
}

func TestCreateUser_AcceptsLongPassword(t *testing.T) {
	long := strings.Repeat("correct horse battery staple ", 3)
	require.Greater(t, len(long), 72)

	user, err := CreateUser(context.Background(), &fakeUserStore{}, NewUser{
		Email: "a@example.com", Username: "a", Password: long,
	})

	require.NoError(t, err)
	assert.True(t, CheckPassword(user.Password, long))
	// Passwords sharing the first 72 bytes must not collide.
	assert.False(t, CheckPassword(user.Password, long[:72]))
	assert.False(t, CheckPassword(user.Password, long+"!"))
}

func TestValidatePassword(t *testing.T) {
	assert.ErrorIs(t, ValidatePassword(""), apperrors.ErrValidation)
	assert.NoError(t, ValidatePassword("x"))
	assert.NoError(t, ValidatePassword(strings.Repeat("p", 500)))
}

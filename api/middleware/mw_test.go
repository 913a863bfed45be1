package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chartapp/chartapp-services/internal/authn"
	"github.com/chartapp/chartapp-services/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockUserGetter struct {
	mock.Mock
}

func (m *MockUserGetter) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*models.User)
	return user, args.Error(1)
}

func newAuthenticator(users UserGetter) *Authenticator {
	return &Authenticator{
		Tokens: authn.NewTokenService([]byte("mw-test-key"), time.Minute, time.Hour, authn.NewMemoryRevocationList()),
		Users:  users,
	}
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) models.Response {
	t.Helper()
	var resp models.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestJWTMiddleware_RejectsMissingOrMalformedHeader(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Expected request to be blocked by JWTMiddleware")
	})
	mw := newAuthenticator(&MockUserGetter{}).JWTMiddleware(next)

	for _, header := range []string{"", "Token abc", "Bearer ", "Bearer invalid-token"} {
		req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		mw.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
		assert.False(t, decodeResponse(t, w).Status)
	}
}

func TestJWTMiddleware_RejectsRefreshToken(t *testing.T) {
	auth := newAuthenticator(&MockUserGetter{})
	pair, err := auth.Tokens.Issue(&models.User{ID: 1})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Refresh)
	w := httptest.NewRecorder()
	auth.JWTMiddleware(http.NotFoundHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTMiddleware_PopulatesActor(t *testing.T) {
	alice := &models.User{ID: 7, Email: "alice@example.com", Username: "alice", IsActive: true}
	users := &MockUserGetter{}
	users.On("GetUserByID", mock.Anything, int64(7)).Return(alice, nil)

	auth := newAuthenticator(users)
	pair, err := auth.Tokens.Issue(alice)
	require.NoError(t, err)

	var called bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		actor, ok := Actor(r.Context())
		require.True(t, ok)
		assert.Equal(t, alice.ID, actor.ID)

		claims := r.Context().Value(ClaimsKey).(authn.Claims)
		assert.Equal(t, int64(7), claims.UserID)
		assert.Equal(t, pair.Access, r.Context().Value(TokenKey))
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.Access)
	w := httptest.NewRecorder()
	auth.JWTMiddleware(next).ServeHTTP(w, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, w.Code)
	users.AssertExpectations(t)
}

func TestJWTMiddleware_UnknownOrInactiveUser(t *testing.T) {
	users := &MockUserGetter{}
	users.On("GetUserByID", mock.Anything, int64(1)).Return(nil, nil)
	users.On("GetUserByID", mock.Anything, int64(2)).Return(&models.User{ID: 2, IsActive: false}, nil)
	users.On("GetUserByID", mock.Anything, int64(3)).Return(nil, errors.New("db down"))

	auth := newAuthenticator(users)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("Expected request to be blocked by JWTMiddleware")
	})

	tests := []struct {
		id   int64
		code int
	}{
		{1, http.StatusUnauthorized},
		{2, http.StatusUnauthorized},
		{3, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		pair, err := auth.Tokens.Issue(&models.User{ID: tt.id})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/groups/", nil)
		req.Header.Set("Authorization", "Bearer "+pair.Access)
		w := httptest.NewRecorder()
		auth.JWTMiddleware(next).ServeHTTP(w, req)

		assert.Equal(t, tt.code, w.Code)
	}
}

func TestRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("nil map write")
	})

	w := httptest.NewRecorder()
	Recoverer(false)(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Status)
	assert.Equal(t, "nil map write", resp.Error)

	w = httptest.NewRecorder()
	Recoverer(true)(panicking).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Nil(t, decodeResponse(t, w).Error)
}

func TestWithLogger_AddsContextLogger(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEqual(t, zerolog.Disabled, zerolog.Ctx(r.Context()).GetLevel())
		w.WriteHeader(http.StatusNoContent)
	})
	w := httptest.NewRecorder()
	WithLogger(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

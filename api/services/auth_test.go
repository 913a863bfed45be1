package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chartapp/chartapp-services/internal/credentials"
	"github.com/chartapp/chartapp-services/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(t *testing.T, f *fixture, email, password string) (string, string) {
	t.Helper()
	w := httptest.NewRecorder()
	LoginService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/token/", map[string]string{
		"email": email, "password": password,
	}, nil, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decode(t, w).Data.(map[string]any)
	return data["access"].(string), data["refresh"].(string)
}

func TestLoginService(t *testing.T) {
	f := newFixture(t)
	f.user(t, "alice@example.com", "alice", "pw")

	access, refresh := login(t, f, "alice@EXAMPLE.com", "pw")
	assert.NotEmpty(t, access)
	assert.NotEmpty(t, refresh)

	w := httptest.NewRecorder()
	LoginService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/token/", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	}, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	LoginService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/token/", map[string]string{}, nil, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSuperuserLoginService(t *testing.T) {
	f := newFixture(t)
	f.user(t, "member@example.com", "member", "pw")
	_, err := credentials.CreateSuperuser(context.Background(), f.store, credentials.NewUser{
		Email: "root@example.com", Username: "root", Password: "pw",
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		code     int
		message  string
	}{
		{"superuser", "root@example.com", "pw", http.StatusOK, "Login successful"},
		{"not a superuser", "member@example.com", "pw", http.StatusForbidden, "User is not a superuser"},
		{"wrong password", "root@example.com", "nope", http.StatusUnauthorized, "Invalid credentials"},
		{"unknown", "ghost@example.com", "pw", http.StatusUnauthorized, "Invalid credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			SuperuserLoginService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/superuser/login/", map[string]string{
				"email": tt.email, "password": tt.password,
			}, nil, nil))
			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, tt.message, decode(t, w).Message)
		})
	}
}

func TestLogoutThenRefreshFails(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", "alice", "pw")
	access, refresh := login(t, f, "alice@example.com", "pw")

	w := httptest.NewRecorder()
	RefreshService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/token/refresh/", map[string]string{"refresh": refresh}, nil, nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	LogoutService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/logout/", map[string]string{"refresh_token": refresh}, alice, nil))
	require.Equal(t, http.StatusResetContent, w.Code, w.Body.String())
	assert.Equal(t, "Successfully logged out", decode(t, w).Message)

	w = httptest.NewRecorder()
	RefreshService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/token/refresh/", map[string]string{"refresh": refresh}, nil, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// The access token minted before logout stays valid until it expires.
	_, err := f.svc.Tokens.VerifyAccess(access)
	assert.NoError(t, err)

	w = httptest.NewRecorder()
	LogoutService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/logout/", map[string]string{"refresh_token": refresh}, alice, nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unable to logout", decode(t, w).Message)

	assert.Contains(t, f.events.types(), events.SessionRevoked)
}

func TestLogoutService_BadInput(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", "alice", "pw")

	for _, body := range []string{`{}`, `{"refresh_token": ""}`, `{"refresh_token": "garbage"}`} {
		w := httptest.NewRecorder()
		LogoutService(f.svc, w, newRequest(t, http.MethodPost, "/api/auth/logout/", body, alice, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.Equal(t, "Unable to logout", decode(t, w).Message)
	}
}

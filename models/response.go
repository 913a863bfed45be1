package models

// Response is the envelope returned by every endpoint.
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// TokenPairResponse is returned by the login routes.
type TokenPairResponse struct {
	Refresh string `json:"refresh"`
	Access  string `json:"access"`
}

// AccessTokenResponse is returned by the refresh route.
type AccessTokenResponse struct {
	Access string `json:"access"`
}

// LoginRequest carries the credentials of the login routes.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest is the payload of the token refresh route.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

// LogoutRequest is the payload of POST /auth/logout/.
type LogoutRequest struct {
	RefreshToken *string `json:"refresh_token"`
}

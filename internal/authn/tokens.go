package authn

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/internal/credentials"
	"github.com/chartapp/chartapp-services/models"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 24 * time.Hour
)

// Compared against when the email is unknown so both paths cost one bcrypt check.
var dummyHash, _ = credentials.HashPassword("unused-password")

// UserLookup finds a user by login email. A missing user is (nil, nil).
type UserLookup interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenPair bundles a short-lived access token and a longer-lived refresh token.
type TokenPair struct {
	Access  string
	Refresh string
}

// TokenService issues, verifies and revokes bearer tokens.
type TokenService struct {
	key        []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	revoked    RevocationList

	// Now stamps new tokens and is the reference for expiry checks.
	Now func() time.Time
}

// NewTokenService builds a TokenService. Zero TTLs fall back to the defaults.
func NewTokenService(key []byte, accessTTL, refreshTTL time.Duration, revoked RevocationList) *TokenService {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTTL
	}
	return &TokenService{
		key:        key,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		revoked:    revoked,
		Now:        time.Now,
	}
}

// Issue mints a new refresh/access pair for user.
func (s *TokenService) Issue(user *models.User) (*TokenPair, error) {
	refresh, err := s.sign(user.ID, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	access, err := s.sign(user.ID, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Login checks email and password and returns a fresh pair. Unknown users,
// inactive users and wrong passwords all yield ErrInvalidCredentials.
func (s *TokenService) Login(ctx context.Context, users UserLookup, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.authenticate(ctx, users, email, password)
	if err != nil {
		return nil, nil, err
	}
	pair, err := s.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// SuperuserLogin is Login restricted to superusers. A correct password on a
// non-superuser yields ErrNotAuthorized.
func (s *TokenService) SuperuserLogin(ctx context.Context, users UserLookup, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.authenticate(ctx, users, email, password)
	if err != nil {
		return nil, nil, err
	}
	if !user.IsSuperuser() {
		return nil, nil, apperrors.ErrNotAuthorized
	}
	pair, err := s.Issue(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// VerifyAccess validates an access token.
func (s *TokenService) VerifyAccess(token string) (Claims, error) {
	return s.verify(token, TokenTypeAccess)
}

// Refresh exchanges a valid, unrevoked refresh token for a new access token.
func (s *TokenService) Refresh(ctx context.Context, refresh string) (string, error) {
	claims, err := s.verifyRefresh(ctx, refresh)
	if err != nil {
		return "", err
	}
	return s.sign(claims.UserID, TokenTypeAccess, s.accessTTL)
}

// Logout revokes a refresh token. Revocation is terminal: a revoked token can
// neither be refreshed nor logged out again. Access tokens minted from it stay
// valid until they expire.
func (s *TokenService) Logout(ctx context.Context, refresh string) (Claims, error) {
	claims, err := s.verifyRefresh(ctx, refresh)
	if err != nil {
		return claims, err
	}
	if err := s.revoked.Revoke(ctx, claims.Id, claims.UserID, time.Unix(claims.ExpiresAt, 0)); err != nil {
		return claims, fmt.Errorf("error revoking refresh token: %w", err)
	}
	return claims, nil
}

func (s *TokenService) authenticate(ctx context.Context, users UserLookup, email, password string) (*models.User, error) {
	if normalized, err := credentials.NormalizeEmail(email); err == nil {
		email = normalized
	}

	user, err := users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error looking up user: %w", err)
	}
	if user == nil {
		credentials.CheckPassword(dummyHash, password)
		return nil, apperrors.ErrInvalidCredentials
	}
	if !credentials.CheckPassword(user.Password, password) || !user.IsActive {
		return nil, apperrors.ErrInvalidCredentials
	}
	return user, nil
}

func (s *TokenService) verifyRefresh(ctx context.Context, refresh string) (Claims, error) {
	claims, err := s.verify(refresh, TokenTypeRefresh)
	if err != nil {
		return claims, err
	}
	revoked, err := s.revoked.IsRevoked(ctx, claims.Id)
	if err != nil {
		return claims, fmt.Errorf("error checking revocation list: %w", err)
	}
	if revoked {
		return claims, fmt.Errorf("%w: token is blacklisted", apperrors.ErrInvalidToken)
	}
	return claims, nil
}

func (s *TokenService) verify(token, tokenType string) (Claims, error) {
	claims, err := ParseClaimsAt(token, s.key, s.Now())
	if err != nil {
		return claims, fmt.Errorf("%w: %v", apperrors.ErrInvalidToken, err)
	}
	if claims.TokenType != tokenType {
		return claims, fmt.Errorf("%w: wrong token type", apperrors.ErrInvalidToken)
	}
	return claims, nil
}

func (s *TokenService) sign(userID int64, tokenType string, ttl time.Duration) (string, error) {
	now := s.Now()
	claims := Claims{
		StandardClaims: jwt.StandardClaims{
			Id:        uuid.NewString(),
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
		TokenType: tokenType,
		UserID:    userID,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("error signing %s token: %w", tokenType, err)
	}
	return signed, nil
}

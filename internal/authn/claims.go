package authn

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

var ErrInvalidJWT = errors.New("invalid jwt token")
var ErrInvalidClaims = errors.New("invalid claims")

// Claims are carried by both access and refresh tokens. Subject and UserID
// hold the same id; Id is the token's jti.
type Claims struct {
	jwt.StandardClaims
	TokenType string `json:"token_type"`
	UserID    int64  `json:"user_id"`
}

// ParseClaims verifies the signature and expiry of token and returns its claims.
func ParseClaims(token string, key []byte) (Claims, error) {
	return ParseClaimsAt(token, key, time.Now())
}

// ParseClaimsAt is ParseClaims with the time checks made against now.
func ParseClaimsAt(token string, key []byte, now time.Time) (Claims, error) {
	claims := Claims{}
	parser := jwt.Parser{SkipClaimsValidation: true}
	t, err := parser.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return key, nil
	})
	if err != nil {
		return claims, fmt.Errorf("%w: %v", ErrInvalidJWT, err)
	}

	ts := now.Unix()
	switch {
	case !claims.VerifyExpiresAt(ts, true):
		return claims, fmt.Errorf("%w: token is expired", ErrInvalidJWT)
	case !claims.VerifyIssuedAt(ts, false):
		return claims, fmt.Errorf("%w: token used before issued", ErrInvalidJWT)
	case !claims.VerifyNotBefore(ts, false):
		return claims, fmt.Errorf("%w: token is not valid yet", ErrInvalidJWT)
	}
	if !t.Valid || claims.Id == "" || claims.UserID == 0 {
		return claims, ErrInvalidClaims
	}
	return claims, nil
}

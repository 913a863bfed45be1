package db

import (
	"context"
	"fmt"
	"time"
)

// Revoke records a logged out refresh token until it would have expired.
func (c *ChatDB) Revoke(ctx context.Context, jti string, userID int64, expiresAt time.Time) error {
	_, err := c.DB.ExecContext(ctx, `
		INSERT INTO revoked_tokens (jti, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (jti) DO NOTHING`,
		jti, userID, expiresAt.UTC())
	if err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}

func (c *ChatDB) IsRevoked(ctx context.Context, jti string) (bool, error) {
	var revoked bool
	err := c.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM revoked_tokens WHERE jti = $1)`, jti).Scan(&revoked)
	if err != nil {
		return false, fmt.Errorf("error checking token revocation: %w", err)
	}
	return revoked, nil
}

// FlushExpired deletes revocation entries for tokens that expired before now.
func (c *ChatDB) FlushExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := c.DB.ExecContext(ctx, `DELETE FROM revoked_tokens WHERE expires_at < $1`, now.UTC())
	if err != nil {
		return 0, fmt.Errorf("error flushing revoked tokens: %w", err)
	}
	return res.RowsAffected()
}

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
	"github.com/lib/pq"
)

const userColumns = `id, email, username, password, role, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Username, &u.Password, &role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

// CreateUser inserts a user whose password is already hashed.
func (c *ChatDB) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	role := user.Role
	if role == "" {
		role = models.RoleMember
	}

	row := c.DB.QueryRowContext(ctx, `
		INSERT INTO users (email, username, password, role, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		user.Email, user.Username, user.Password, string(role), user.IsActive)

	created, err := scanUser(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.DuplicateEmail()
		}
		return nil, fmt.Errorf("error inserting user: %w", err)
	}
	return created, nil
}

// EmailExists reports whether the exact email is already registered.
func (c *ChatDB) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := c.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	return exists, nil
}

// GetUserByEmail returns nil, nil when no user has the email.
func (c *ChatDB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := scanUser(c.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

// GetUserByID returns nil, nil when the user does not exist.
func (c *ChatDB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := scanUser(c.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving user: %w", err)
	}
	return user, nil
}

func (c *ChatDB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := c.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("error retrieving users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning users: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser applies the non-nil fields of patch. It returns ErrNotFound when
// the user does not exist.
func (c *ChatDB) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	var sets []string
	var args []any
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("email", patch.Email)
	add("username", patch.Username)
	add("password", patch.Password)

	if len(sets) == 0 {
		user, err := c.GetUserByID(ctx, id)
		if err == nil && user == nil {
			return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
		}
		return user, err
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s, updated_at = now() WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), userColumns)

	user, err := scanUser(c.DB.QueryRowContext(ctx, query, args...))
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	case isUniqueViolation(err):
		return nil, apperrors.DuplicateEmail()
	case err != nil:
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user with the messages they sent and their group
// memberships. Groups they host are kept with no host.
func (c *ChatDB) DeleteUser(ctx context.Context, id int64) error {
	return c.WithTx(ctx, func(ctx context.Context, tx dbtx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE sender_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting user messages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_participants WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting user memberships: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE chat_groups SET host = NULL WHERE host = $1`, id); err != nil {
			return fmt.Errorf("error detaching hosted groups: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting user: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
		}
		return nil
	})
}

// existingUserIDs returns the subset of ids that belong to a user, ascending.
func existingUserIDs(ctx context.Context, q dbtx, ids []int64) ([]int64, error) {
	found := []int64{}
	if len(ids) == 0 {
		return found, nil
	}

	rows, err := q.QueryContext(ctx, `SELECT id FROM users WHERE id = ANY($1) ORDER BY id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("error checking user ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning user ids: %w", err)
		}
		found = append(found, id)
	}
	return found, rows.Err()
}

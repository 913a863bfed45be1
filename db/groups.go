package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
	"github.com/lib/pq"
)

const groupSelect = `
	SELECT g.id, g.host, g.name, g.description, g.updated, g.created,
		COALESCE(array_agg(p.user_id ORDER BY p.user_id) FILTER (WHERE p.user_id IS NOT NULL), '{}')
	FROM chat_groups g
	LEFT JOIN group_participants p ON p.group_id = g.id`

const groupOrder = ` ORDER BY g.updated DESC, g.created DESC, g.id DESC`

func scanGroup(row interface{ Scan(...any) error }) (*models.Group, error) {
	var g models.Group
	var host sql.NullInt64
	var description sql.NullString
	var participants pq.Int64Array

	if err := row.Scan(&g.ID, &host, &g.Name, &description, &g.Updated, &g.Created, &participants); err != nil {
		return nil, err
	}
	if host.Valid {
		g.Host = &host.Int64
	}
	if description.Valid {
		g.Description = &description.String
	}
	g.Participants = []int64(participants)
	if g.Participants == nil {
		g.Participants = []int64{}
	}
	return &g, nil
}

// CreateGroup inserts the group and its initial participants. Every
// participant id must belong to an existing user.
func (c *ChatDB) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	var created *models.Group

	err := c.WithTx(ctx, func(ctx context.Context, tx dbtx) error {
		if len(group.Participants) > 0 {
			found, err := existingUserIDs(ctx, tx, group.Participants)
			if err != nil {
				return err
			}
			if missing := missingIDs(group.Participants, found); len(missing) > 0 {
				return apperrors.NewValidationError("participants",
					fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", missing[0]))
			}
		}

		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO chat_groups (host, name, description)
			VALUES ($1, $2, $3)
			RETURNING id`,
			group.Host, group.Name, group.Description).Scan(&id)
		if err != nil {
			return fmt.Errorf("error inserting group: %w", err)
		}

		if err := addParticipants(ctx, tx, id, group.Participants); err != nil {
			return err
		}

		created, err = getGroup(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetGroup returns nil, nil when the group does not exist.
func (c *ChatDB) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	return getGroup(ctx, c.DB, id)
}

func getGroup(ctx context.Context, q dbtx, id int64) (*models.Group, error) {
	group, err := scanGroup(q.QueryRowContext(ctx, groupSelect+` WHERE g.id = $1 GROUP BY g.id`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error retrieving group: %w", err)
	}
	return group, nil
}

func (c *ChatDB) ListGroups(ctx context.Context) ([]models.Group, error) {
	rows, err := c.DB.QueryContext(ctx, groupSelect+` GROUP BY g.id`+groupOrder)
	if err != nil {
		return nil, fmt.Errorf("error retrieving groups: %w", err)
	}
	defer rows.Close()

	groups := []models.Group{}
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning groups: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// AddParticipants adds the ids that belong to existing users to the group and
// silently drops the rest. Ids that are already participants are left as they are.
func (c *ChatDB) AddParticipants(ctx context.Context, groupID int64, userIDs []int64) (*models.Group, error) {
	var updated *models.Group

	err := c.WithTx(ctx, func(ctx context.Context, tx dbtx) error {
		found, err := existingUserIDs(ctx, tx, userIDs)
		if err != nil {
			return err
		}
		if err := addParticipants(ctx, tx, groupID, found); err != nil {
			return err
		}

		updated, err = getGroup(ctx, tx, groupID)
		if err == nil && updated == nil {
			return fmt.Errorf("group %d: %w", groupID, apperrors.ErrNotFound)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func addParticipants(ctx context.Context, tx dbtx, groupID int64, userIDs []int64) error {
	if len(userIDs) == 0 {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO group_participants (group_id, user_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT DO NOTHING`,
		groupID, pq.Array(userIDs))
	if err != nil {
		return fmt.Errorf("error adding participants: %w", err)
	}
	return nil
}

// DeleteGroup removes the group with its messages and participant links.
func (c *ChatDB) DeleteGroup(ctx context.Context, id int64) error {
	return c.WithTx(ctx, func(ctx context.Context, tx dbtx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM messages WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting group messages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_participants WHERE group_id = $1`, id); err != nil {
			return fmt.Errorf("error deleting group participants: %w", err)
		}

		res, err := tx.ExecContext(ctx, `DELETE FROM chat_groups WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("error deleting group: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("group %d: %w", id, apperrors.ErrNotFound)
		}
		return nil
	})
}

func missingIDs(requested, found []int64) []int64 {
	present := make(map[int64]bool, len(found))
	for _, id := range found {
		present[id] = true
	}
	var missing []int64
	for _, id := range requested {
		if !present[id] {
			missing = append(missing, id)
		}
	}
	return missing
}

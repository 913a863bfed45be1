package db

import (
	"context"
	"fmt"

	"github.com/chartapp/chartapp-services/models"
)

const messageSelect = `
	SELECT m.id, m.group_id, u.id, u.username, u.email, m.content, m.created, m.updated
	FROM messages m
	JOIN users u ON u.id = m.sender_id`

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var m models.Message
	err := row.Scan(&m.ID, &m.Group, &m.Sender.ID, &m.Sender.Username, &m.Sender.Email,
		&m.Content, &m.Created, &m.Updated)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMessage stores content posted by senderID into groupID.
func (c *ChatDB) CreateMessage(ctx context.Context, groupID, senderID int64, content string) (*models.Message, error) {
	row := c.DB.QueryRowContext(ctx, `
		WITH m AS (
			INSERT INTO messages (group_id, sender_id, content)
			VALUES ($1, $2, $3)
			RETURNING id, group_id, sender_id, content, created, updated
		)
		SELECT m.id, m.group_id, u.id, u.username, u.email, m.content, m.created, m.updated
		FROM m JOIN users u ON u.id = m.sender_id`,
		groupID, senderID, content)

	msg, err := scanMessage(row)
	if err != nil {
		return nil, fmt.Errorf("error inserting message: %w", err)
	}
	return msg, nil
}

// ListMessages returns messages newest first, restricted to one group when
// groupID is set.
func (c *ChatDB) ListMessages(ctx context.Context, groupID *int64) ([]models.Message, error) {
	query := messageSelect
	var args []any
	if groupID != nil {
		query += ` WHERE m.group_id = $1`
		args = append(args, *groupID)
	}
	query += ` ORDER BY m.updated DESC, m.created DESC, m.id DESC`

	rows, err := c.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error retrieving messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning messages: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

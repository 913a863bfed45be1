package models

import "time"

// Message is a piece of content posted by Sender into Group.
type Message struct {
	ID      int64       `json:"id"`
	Group   int64       `json:"group"`
	Sender  UserSummary `json:"sender"`
	Content string      `json:"content"`
	Created time.Time   `json:"created"`
	Updated time.Time   `json:"-"`
}

// SendMessageRequest is the payload of POST /groups/{id}/messages/. Sender is
// accepted so it decodes, but it is never used.
type SendMessageRequest struct {
	Content *string `json:"content"`
	Sender  any     `json:"sender,omitempty"`
}

package models

import "time"

// Group is a named conversation owned by its host. Host is nil once the
// hosting user has been deleted.
type Group struct {
	ID           int64     `json:"id"`
	Host         *int64    `json:"host"`
	Name         string    `json:"name"`
	Description  *string   `json:"description"`
	Participants []int64   `json:"participants"`
	Updated      time.Time `json:"updated"`
	Created      time.Time `json:"created"`
}

// CreateGroupRequest is the payload of POST /groups/.
type CreateGroupRequest struct {
	Name         string  `json:"name"`
	Description  *string `json:"description"`
	Participants []int64 `json:"participants"`
}

// AddMembersRequest is the payload of POST /groups/{id}/add-members/.
type AddMembersRequest struct {
	UserIDs []int64 `json:"user_ids"`
}

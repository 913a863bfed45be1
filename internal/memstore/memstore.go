// Package memstore is an in-process chat store with the same semantics as the
// Postgres store. It backs the "memory" database driver and the HTTP tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/chartapp/chartapp-services/internal/apperrors"
	"github.com/chartapp/chartapp-services/models"
)

type Store struct {
	mu sync.RWMutex

	users    map[int64]*models.User
	groups   map[int64]*models.Group
	members  map[int64]map[int64]bool
	messages map[int64]*storedMessage

	nextUser, nextGroup, nextMessage int64

	// Now stamps created and updated times.
	Now func() time.Time
}

type storedMessage struct {
	id, group, sender int64
	content           string
	created, updated  time.Time
}

func New() *Store {
	return &Store{
		users:    make(map[int64]*models.User),
		groups:   make(map[int64]*models.Group),
		members:  make(map[int64]map[int64]bool),
		messages: make(map[int64]*storedMessage),
		Now:      time.Now,
	}
}

func (s *Store) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTaken(user.Email, 0) {
		return nil, apperrors.DuplicateEmail()
	}

	s.nextUser++
	u := *user
	u.ID = s.nextUser
	if u.Role == "" {
		u.Role = models.RoleMember
	}
	u.CreatedAt = s.Now().UTC()
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = &u

	out := u
	return &out, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.emailTaken(email, 0), nil
}

func (s *Store) emailTaken(email string, except int64) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id int64, patch models.UserPatch) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	if patch.Email != nil && s.emailTaken(*patch.Email, id) {
		return nil, apperrors.DuplicateEmail()
	}

	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.Password != nil {
		u.Password = *patch.Password
	}
	if !patch.Empty() {
		u.UpdatedAt = s.Now().UTC()
	}

	out := *u
	return &out, nil
}

// DeleteUser drops the user's messages and memberships and clears the host
// of the groups they host.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return fmt.Errorf("user %d: %w", id, apperrors.ErrNotFound)
	}
	for mid, m := range s.messages {
		if m.sender == id {
			delete(s.messages, mid)
		}
	}
	for gid, set := range s.members {
		delete(set, id)
		if g := s.groups[gid]; g.Host != nil && *g.Host == id {
			g.Host = nil
		}
	}
	delete(s.users, id)
	return nil
}

func (s *Store) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, uid := range group.Participants {
		if _, ok := s.users[uid]; !ok {
			return nil, apperrors.NewValidationError("participants",
				fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", uid))
		}
	}

	s.nextGroup++
	now := s.Now().UTC()
	g := &models.Group{
		ID:      s.nextGroup,
		Name:    group.Name,
		Created: now,
		Updated: now,
	}
	if group.Host != nil {
		host := *group.Host
		g.Host = &host
	}
	if group.Description != nil {
		d := *group.Description
		g.Description = &d
	}
	s.groups[g.ID] = g
	s.members[g.ID] = make(map[int64]bool)
	for _, uid := range group.Participants {
		s.members[g.ID][uid] = true
	}
	return s.group(g.ID), nil
}

func (s *Store) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.groups[id]; !ok {
		return nil, nil
	}
	return s.group(id), nil
}

func (s *Store) ListGroups(ctx context.Context) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]models.Group, 0, len(s.groups))
	for id := range s.groups {
		groups = append(groups, *s.group(id))
	}
	sort.Slice(groups, func(i, j int) bool {
		return newerFirst(groups[i].Updated, groups[j].Updated, groups[i].Created, groups[j].Created, groups[i].ID, groups[j].ID)
	})
	return groups, nil
}

// AddParticipants adds the ids that name existing users and ignores the rest.
func (s *Store) AddParticipants(ctx context.Context, groupID int64, userIDs []int64) (*models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.members[groupID]
	if !ok {
		return nil, fmt.Errorf("group %d: %w", groupID, apperrors.ErrNotFound)
	}
	for _, uid := range userIDs {
		if _, exists := s.users[uid]; exists {
			set[uid] = true
		}
	}
	return s.group(groupID), nil
}

func (s *Store) DeleteGroup(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[id]; !ok {
		return fmt.Errorf("group %d: %w", id, apperrors.ErrNotFound)
	}
	for mid, m := range s.messages {
		if m.group == id {
			delete(s.messages, mid)
		}
	}
	delete(s.members, id)
	delete(s.groups, id)
	return nil
}

func (s *Store) CreateMessage(ctx context.Context, groupID, senderID int64, content string) (*models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.groups[groupID]; !ok {
		return nil, fmt.Errorf("group %d: %w", groupID, apperrors.ErrNotFound)
	}
	if _, ok := s.users[senderID]; !ok {
		return nil, fmt.Errorf("user %d: %w", senderID, apperrors.ErrNotFound)
	}

	s.nextMessage++
	now := s.Now().UTC()
	m := &storedMessage{id: s.nextMessage, group: groupID, sender: senderID, content: content, created: now, updated: now}
	s.messages[m.id] = m
	out := s.message(m)
	return &out, nil
}

func (s *Store) ListMessages(ctx context.Context, groupID *int64) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := []models.Message{}
	for _, m := range s.messages {
		if groupID != nil && m.group != *groupID {
			continue
		}
		messages = append(messages, s.message(m))
	}
	sort.Slice(messages, func(i, j int) bool {
		a, b := messages[i], messages[j]
		return newerFirst(a.Updated, b.Updated, a.Created, b.Created, a.ID, b.ID)
	})
	return messages, nil
}

// group returns a copy of the group with its participants in ascending order.
func (s *Store) group(id int64) *models.Group {
	g := *s.groups[id]
	g.Participants = make([]int64, 0, len(s.members[id]))
	for uid := range s.members[id] {
		g.Participants = append(g.Participants, uid)
	}
	sort.Slice(g.Participants, func(i, j int) bool { return g.Participants[i] < g.Participants[j] })
	return &g
}

func (s *Store) message(m *storedMessage) models.Message {
	return models.Message{
		ID:      m.id,
		Group:   m.group,
		Sender:  s.users[m.sender].Summary(),
		Content: m.content,
		Created: m.created,
		Updated: m.updated,
	}
}

func newerFirst(updA, updB, crA, crB time.Time, idA, idB int64) bool {
	if !updA.Equal(updB) {
		return updA.After(updB)
	}
	if !crA.Equal(crB) {
		return crA.After(crB)
	}
	return idA > idB
}

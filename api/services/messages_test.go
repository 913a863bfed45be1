package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chartapp/chartapp-services/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendMessageService_SenderIsActor(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", "alice", "pw")
	bob := f.user(t, "bob@example.com", "bob", "pw")
	group, _ := f.store.CreateGroup(context.Background(), &models.Group{Host: &alice.ID, Name: "g"})

	w := httptest.NewRecorder()
	SendMessageService(f.svc, w, newRequest(t, http.MethodPost, "/api/groups/1/messages/", map[string]any{
		"content": "hello", "sender": map[string]any{"id": alice.ID},
	}, bob, map[string]string{"id": "1"}))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	sender := decode(t, w).Data.(map[string]any)["sender"].(map[string]any)
	assert.Equal(t, float64(bob.ID), sender["id"])

	msgs, _ := f.store.ListMessages(context.Background(), &group.ID)
	require.Len(t, msgs, 1)
	assert.Equal(t, bob.ID, msgs[0].Sender.ID)
}

func TestSendMessageService_Failures(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", "alice", "pw")
	_, _ = f.store.CreateGroup(context.Background(), &models.Group{Host: &alice.ID, Name: "g"})

	w := httptest.NewRecorder()
	SendMessageService(f.svc, w, newRequest(t, http.MethodPost, "/api/groups/1/messages/", map[string]any{},
		alice, map[string]string{"id": "1"}))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Unable to send the message", decode(t, w).Message)

	w = httptest.NewRecorder()
	SendMessageService(f.svc, w, newRequest(t, http.MethodPost, "/api/groups/5/messages/", map[string]any{"content": "x"},
		alice, map[string]string{"id": "5"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListMessagesService(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice@example.com", "alice", "pw")
	outsider := f.user(t, "eve@example.com", "eve", "pw")
	g1, _ := f.store.CreateGroup(context.Background(), &models.Group{Host: &alice.ID, Name: "one"})
	g2, _ := f.store.CreateGroup(context.Background(), &models.Group{Host: &alice.ID, Name: "two"})
	_, _ = f.store.CreateMessage(context.Background(), g1.ID, alice.ID, "a")
	_, _ = f.store.CreateMessage(context.Background(), g2.ID, alice.ID, "b")

	w := httptest.NewRecorder()
	ListMessagesService(f.svc, w, newRequest(t, http.MethodGet, "/api/messages/", nil, alice, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Data.([]any), 2)

	// Any authenticated actor can read a group's messages.
	w = httptest.NewRecorder()
	ListMessagesService(f.svc, w, newRequest(t, http.MethodGet, "/api/messages/1/", nil, outsider, map[string]string{"group_id": "1"}))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Data.([]any), 1)

	w = httptest.NewRecorder()
	ListMessagesService(f.svc, w, newRequest(t, http.MethodGet, "/api/messages/9/", nil, alice, map[string]string{"group_id": "9"}))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNopNotifier(t *testing.T) {
	var n Notifier = NopNotifier{}
	assert.NoError(t, n.Notify(context.Background(), Event{Type: GroupCreated}))
	n.Close()
}

func TestDecode(t *testing.T) {
	payload, err := json.Marshal(Event{Type: GroupMembersAdded, ActorID: 1, GroupID: 2, UserIDs: []int64{3}, Timestamp: 10})
	require.NoError(t, err)

	event, err := Decode(payload)
	require.NoError(t, err)
	assert.Equal(t, GroupMembersAdded, event.Type)
	assert.Equal(t, []int64{3}, event.UserIDs)
	assert.Equal(t, int64(10), event.Timestamp)

	_, err = Decode([]byte(`{"actorId": 1}`))
	assert.Error(t, err)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestEventOmitsEmptyFields(t *testing.T) {
	payload, err := json.Marshal(Event{Type: SessionRevoked, UserID: 4, Timestamp: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"session.revoked","userId":4,"timestamp":1}`, string(payload))
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
)

const (
	UserCreated       = "user.created"
	UserUpdated       = "user.updated"
	UserDeleted       = "user.deleted"
	GroupCreated      = "group.created"
	GroupMembersAdded = "group.members_added"
	GroupDeleted      = "group.deleted"
	MessageCreated    = "message.created"
	SessionRevoked    = "session.revoked"
	SuperuserLoggedIn = "superuser.logged_in"
)

// Event is an audit record of a state change. It is not a delivery channel
// for message content.
type Event struct {
	Type      string  `json:"type"`
	ActorID   int64   `json:"actorId,omitempty"`
	UserID    int64   `json:"userId,omitempty"`
	GroupID   int64   `json:"groupId,omitempty"`
	MessageID int64   `json:"messageId,omitempty"`
	UserIDs   []int64 `json:"userIds,omitempty"`
	Timestamp int64   `json:"timestamp"`
}

// Notifier publishes audit events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
	Close()
}

// NopNotifier discards every event. It is used when no broker is configured.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Event) error { return nil }
func (NopNotifier) Close()                              {}

type EventPublisher struct {
	client   pulsar.Client
	producer pulsar.Producer
}

// NewEventPublisher initializes the Pulsar client and producer.
func NewEventPublisher(pulsarURL, topic string) (*EventPublisher, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{
		URL: pulsarURL,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	producer, err := client.CreateProducer(pulsar.ProducerOptions{
		Topic: topic,
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar producer: %w", err)
	}

	return &EventPublisher{client: client, producer: producer}, nil
}

// Notify publishes an event to Pulsar
func (p *EventPublisher) Notify(ctx context.Context, event Event) error {
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UTC().Unix()
	}

	message, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("could not serialize event payload: %w", err)
	}

	_, err = p.producer.Send(ctx, &pulsar.ProducerMessage{
		Key:     event.Type,
		Payload: message,
	})
	if err != nil {
		return fmt.Errorf("could not send event to Pulsar: %w", err)
	}
	return nil
}

// Close closes the Pulsar producer and client
func (p *EventPublisher) Close() {
	p.producer.Close()
	p.client.Close()
}

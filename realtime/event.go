// Package realtime carries the websocket fabric for conversation chat: the
// per-connection session, the in-process broadcast hub and the redis-backed
// broker used when the backend runs on more than one instance.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AmmarC10/ContractinGO-BE/models"
)

// Application close codes used by the connection gateway. Each rejection
// reason gets its own code; conversation-not-found and not-a-participant
// share one on purpose so a rejected caller cannot probe for existence.
const (
	CloseAuthRequired  = 4001
	CloseInvalidToken  = 4002
	CloseNotAuthorized = 4003
)

// GroupName is the broadcast group key for a conversation.
func GroupName(conversationID uint) string {
	return fmt.Sprintf("conversation_%d", conversationID)
}

type Kind string

const (
	KindMessage Kind = "message"
	KindTyping  Kind = "typing"
	KindError   Kind = "error"
)

// Event is the unit the broker fans out. Payload is the exact outbound frame;
// SenderID lets each receiving connection decide on delivery-time exclusion
// (typing events are never echoed back to their sender).
type Event struct {
	Kind     Kind            `json:"kind"`
	SenderID uint            `json:"sender_id"`
	Payload  json.RawMessage `json:"payload"`
}

// Broker fans events out to every connection subscribed to a group at
// publish time. At-most-once, no replay; delivery order is preserved per
// subscriber. All methods are safe for concurrent use.
type Broker interface {
	Subscribe(group string, c *Client)
	Unsubscribe(group string, c *Client)
	Publish(ctx context.Context, group string, event Event) error
}

// MessageSender persists a message and broadcasts it to the conversation's
// group. The REST gateway and the websocket session share this operation so
// messages from either path look the same to subscribers.
type MessageSender interface {
	SendMessage(ctx context.Context, conversationID, senderID uint, content, imageURL string) (models.MessageResponse, error)
}

type messageFrame struct {
	Type    string                 `json:"type"`
	Message models.MessageResponse `json:"message"`
}

type typingFrame struct {
	Type     string `json:"type"`
	UserID   uint   `json:"user_id"`
	UserName string `json:"user_name"`
	IsTyping bool   `json:"is_typing"`
}

type errorFrame struct {
	Error string `json:"error"`
}

// NewMessageEvent wraps a serialized message in the outbound envelope.
func NewMessageEvent(message models.MessageResponse) (Event, error) {
	payload, err := json.Marshal(messageFrame{Type: "message", Message: message})
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: KindMessage, SenderID: message.Sender.ID, Payload: payload}, nil
}

// NewTypingEvent builds a typing notification for the group.
func NewTypingEvent(sender models.UserResponse, isTyping bool) (Event, error) {
	payload, err := json.Marshal(typingFrame{
		Type:     "typing",
		UserID:   sender.ID,
		UserName: sender.Name,
		IsTyping: isTyping,
	})
	if err != nil {
		return Event{}, err
	}
	return Event{Kind: KindTyping, SenderID: sender.ID, Payload: payload}, nil
}

func newErrorEvent(message string) Event {
	payload, _ := json.Marshal(errorFrame{Error: message})
	return Event{Kind: KindError, Payload: payload}
}

package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AmmarC10/ContractinGO-BE/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
	sendQueueSize  = 256
)

// Client is the session for one authenticated websocket connection bound to
// one conversation. Inbound frames are handled strictly in arrival order on
// the read loop; outbound events are written by a single writer goroutine
// draining the send queue.
type Client struct {
	broker         Broker
	sender         MessageSender
	conn           *websocket.Conn
	send           chan Event
	user           models.UserResponse
	conversationID uint
	group          string
	logger         *zap.SugaredLogger

	closeOnce sync.Once
	done      chan struct{}
}

func NewClient(conn *websocket.Conn, user models.UserResponse, conversationID uint, broker Broker, sender MessageSender, logger *zap.SugaredLogger) *Client {
	return &Client{
		broker:         broker,
		sender:         sender,
		conn:           conn,
		send:           make(chan Event, sendQueueSize),
		user:           user,
		conversationID: conversationID,
		group:          GroupName(conversationID),
		logger:         logger,
		done:           make(chan struct{}),
	}
}

// Group is the broadcast group key this session belongs to.
func (c *Client) Group() string {
	return c.group
}

// Run pumps the connection until it drops. It blocks for the lifetime of the
// session and always leaves the broadcast group on the way out.
func (c *Client) Run(ctx context.Context) {
	go c.writePump()
	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.broker.Unsubscribe(c.group, c)
		c.close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleFrame(ctx, data)
	}
}

type inboundEvent struct {
	Type     string `json:"type"`
	Content  string `json:"content"`
	ImageURL string `json:"image_url"`
	IsTyping bool   `json:"is_typing"`
}

// handleFrame processes one inbound frame. A bad frame earns an error frame
// on the same connection; the session itself survives.
func (c *Client) handleFrame(ctx context.Context, data []byte) {
	var event inboundEvent
	if err := json.Unmarshal(data, &event); err != nil {
		c.enqueue(newErrorEvent("Invalid JSON format"))
		return
	}

	switch event.Type {
	case "send_message":
		c.handleSendMessage(ctx, event)
	case "typing":
		c.handleTyping(ctx, event)
	}
}

func (c *Client) handleSendMessage(ctx context.Context, event inboundEvent) {
	if event.Content == "" && event.ImageURL == "" {
		c.enqueue(newErrorEvent("Message content or image required"))
		return
	}

	// Persists and broadcasts; the same operation serves the REST path.
	_, err := c.sender.SendMessage(ctx, c.conversationID, c.user.ID, event.Content, event.ImageURL)
	if err != nil {
		c.logger.Errorw("failed to send message",
			"conversation_id", c.conversationID, "user_id", c.user.ID, "error", err)
		c.enqueue(newErrorEvent("Error processing message: " + err.Error()))
	}
}

func (c *Client) handleTyping(ctx context.Context, event inboundEvent) {
	typing, err := NewTypingEvent(c.user, event.IsTyping)
	if err != nil {
		c.enqueue(newErrorEvent("Error processing message: " + err.Error()))
		return
	}
	if err := c.broker.Publish(ctx, c.group, typing); err != nil {
		c.logger.Errorw("failed to publish typing event",
			"conversation_id", c.conversationID, "user_id", c.user.ID, "error", err)
	}
}

// enqueue hands an event to the writer. Returns false when the queue is full;
// the event is dropped rather than blocking the publisher.
func (c *Client) enqueue(event Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- event:
		return true
	default:
		return false
	}
}

// shouldDeliver applies delivery-time exclusion: a typing notification is
// never delivered back to the connection that produced it.
func (c *Client) shouldDeliver(event Event) bool {
	if event.Kind == KindTyping && event.SenderID == c.user.ID {
		return false
	}
	return true
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case event := <-c.send:
			if !c.shouldDeliver(event) {
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, event.Payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

func (c *Client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

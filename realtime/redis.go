package realtime

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const channelPrefix = "ws:"

// RedisBroker routes publishes through redis pub/sub so every backend
// instance sees them, then hands local delivery to the in-process Hub.
// Connections on the publishing instance receive events through the same
// subscription loop as everyone else, so ordering through the fabric is
// uniform.
type RedisBroker struct {
	hub    *Hub
	rdb    *redis.Client
	pubsub *redis.PubSub
	logger *zap.SugaredLogger

	mu   sync.Mutex
	refs map[string]int
}

func NewRedisBroker(ctx context.Context, rdb *redis.Client, hub *Hub, logger *zap.SugaredLogger) *RedisBroker {
	b := &RedisBroker{
		hub:    hub,
		rdb:    rdb,
		pubsub: rdb.Subscribe(ctx),
		logger: logger,
		refs:   make(map[string]int),
	}
	go b.receive(ctx)
	return b
}

func (b *RedisBroker) Subscribe(group string, c *Client) {
	b.hub.Subscribe(group, c)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.refs[group]++
	if b.refs[group] == 1 {
		if err := b.pubsub.Subscribe(context.Background(), channelPrefix+group); err != nil {
			b.logger.Errorw("failed to subscribe redis channel", "group", group, "error", err)
		}
	}
}

func (b *RedisBroker) Unsubscribe(group string, c *Client) {
	b.hub.Unsubscribe(group, c)

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.refs[group] == 0 {
		return
	}
	b.refs[group]--
	if b.refs[group] == 0 {
		delete(b.refs, group)
		if err := b.pubsub.Unsubscribe(context.Background(), channelPrefix+group); err != nil {
			b.logger.Errorw("failed to unsubscribe redis channel", "group", group, "error", err)
		}
	}
}

func (b *RedisBroker) Publish(ctx context.Context, group string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, channelPrefix+group, payload).Err()
}

func (b *RedisBroker) receive(ctx context.Context) {
	for msg := range b.pubsub.Channel() {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			b.logger.Warnw("dropping malformed event from redis", "channel", msg.Channel, "error", err)
			continue
		}
		group := strings.TrimPrefix(msg.Channel, channelPrefix)
		_ = b.hub.Publish(ctx, group, event)
	}
}

// Close tears down the redis subscription.
func (b *RedisBroker) Close() error {
	return b.pubsub.Close()
}

package realtime

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Hub is the in-process Broker: a registry of connections per group with
// fan-out on publish. Delivery to one dead or slow connection never blocks
// the rest of the group; each connection's writer drains its own queue in
// publish order.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]map[*Client]struct{}
	logger *zap.SugaredLogger
}

func NewHub(logger *zap.SugaredLogger) *Hub {
	return &Hub{
		groups: make(map[string]map[*Client]struct{}),
		logger: logger,
	}
}

func (h *Hub) Subscribe(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.groups[group]
	if members == nil {
		members = make(map[*Client]struct{})
		h.groups[group] = members
	}
	members[c] = struct{}{}
}

// Unsubscribe removes the connection from the group. Safe to call for a
// connection that never subscribed or already left.
func (h *Hub) Unsubscribe(group string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	members := h.groups[group]
	if members == nil {
		return
	}
	delete(members, c)
	if len(members) == 0 {
		delete(h.groups, group)
	}
}

// Publish enqueues the event on every connection subscribed at call time.
func (h *Hub) Publish(_ context.Context, group string, event Event) error {
	h.mu.RLock()
	members := make([]*Client, 0, len(h.groups[group]))
	for c := range h.groups[group] {
		members = append(members, c)
	}
	h.mu.RUnlock()

	for _, c := range members {
		if !c.enqueue(event) {
			h.logger.Warnw("dropping event for slow connection",
				"group", group, "user_id", c.user.ID, "kind", event.Kind)
		}
	}
	return nil
}

// GroupSize reports the current number of subscribers in a group.
func (h *Hub) GroupSize(group string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[group])
}

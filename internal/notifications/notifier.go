// Package notifications delivers real-time feed events over Redis pub/sub
// and websocket connections.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"runtime/debug"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Feed event types carried on the broadcast channel.
const (
	EventPostCreated = "post.created"
	EventPostUpdated = "post.updated"
	EventPostDeleted = "post.deleted"
	EventReaction    = "reaction"
	EventFlagUpdated = "flag.updated"
	// EventSnapshot is a local fan-out carrying collection counts after a
	// content snapshot publish; clients use it to refresh stale views.
	EventSnapshot = "snapshot"
)

// FeedEvent is the wire format for a feed change notification.
type FeedEvent struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Notifier provides helpers to publish feed events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishFeed sends a feed event to every connected client.
func (n *Notifier) PublishFeed(ctx context.Context, event FeedEvent) error {
	if n.rdb == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal feed event: %w", err)
	}
	return n.rdb.Publish(ctx, "feed:events", payload).Err()
}

// PublishUser sends a payload to one user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, payload string) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartSubscriber subscribes to the feed broadcast channel and the per-user
// pattern, invoking onMessage for each incoming message.
func (n *Notifier) StartSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, "feed:events", "feed:user:*")
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							log.Printf("PANIC in feed subscriber: %v\n%s", r, debug.Stack())
						}
					}()
					onMessage(msg.Channel, msg.Payload)
				}()
			}
		}
	}()

	return nil
}

// UserChannel derives the Redis channel name for a user.
func UserChannel(userID uint) string {
	return "feed:user:" + strconv.FormatUint(uint64(userID), 10)
}

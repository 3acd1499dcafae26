// Package notifications provides real-time notification delivery and management.
package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"hearth/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "notifications:user:"
	broadcastChannel  = "notifications:broadcast"
)

// Notifier publishes events for users. With Redis every instance's hub receives them
// through pub/sub; without Redis events go straight to the local hub.
type Notifier struct {
	rdb   *redis.Client
	local *Hub
}

// NewNotifier creates a Notifier. Either argument may be nil.
func NewNotifier(rdb *redis.Client, local *Hub) *Notifier {
	return &Notifier{rdb: rdb, local: local}
}

// PublishUser sends ev to every connection of userID.
func (n *Notifier) PublishUser(ctx context.Context, userID string, ev Event) error {
	if n == nil {
		return nil
	}
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	if n.rdb != nil {
		return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
	}
	if n.local != nil {
		n.local.Broadcast(userID, payload)
	}
	return nil
}

// PublishBroadcast sends ev to all connected users.
func (n *Notifier) PublishBroadcast(ctx context.Context, ev Event) error {
	if n == nil {
		return nil
	}
	payload, err := ev.Encode()
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", ev.Type, err)
	}
	if n.rdb != nil {
		return n.rdb.Publish(ctx, broadcastChannel, payload).Err()
	}
	if n.local != nil {
		n.local.BroadcastAll(payload)
	}
	return nil
}

// StartPatternSubscriber subscribes to pattern `notifications:user:*` and calls onMessage
// for each incoming message. onMessage receives channel and payload.
func (n *Notifier) StartPatternSubscriber(
	ctx context.Context, onMessage func(channel string, payload string),
) error {
	if n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*", broadcastChannel)
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
							middleware.Logger.Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
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
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

func userFromChannel(channel string) (string, bool) {
	id, ok := strings.CutPrefix(channel, userChannelPrefix)
	return id, ok && id != ""
}

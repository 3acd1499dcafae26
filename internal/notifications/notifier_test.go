package notifications

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifier_PublishUserWithoutRedisUsesLocalHub(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	n := NewNotifier(nil, hub)
	require.NoError(t, n.PublishUser(context.Background(), "u1", NewEvent(EventBadgeAwarded, map[string]string{"badge_id": "first_topic"})))

	var ev struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-c.Send, &ev))
	assert.Equal(t, EventBadgeAwarded, ev.Type)
	assert.Equal(t, "first_topic", ev.Payload["badge_id"])

	require.NoError(t, NewNotifier(nil, nil).PublishUser(context.Background(), "u1", NewEvent("x", nil)))
	var nilNotifier *Notifier
	assert.NoError(t, nilNotifier.PublishUser(context.Background(), "u1", NewEvent("x", nil)))
}

func TestNotifier_UnencodablePayload(t *testing.T) {
	n := NewNotifier(nil, NewHub())
	err := n.PublishUser(context.Background(), "u1", NewEvent("x", make(chan int)))
	assert.Error(t, err)
}

func TestUserChannel(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "notifications:user:abc", UserChannel("abc"))

	id, ok := userFromChannel("notifications:user:abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", id)

	_, ok = userFromChannel("notifications:user:")
	assert.False(t, ok)
	_, ok = userFromChannel("chat:conv:1")
	assert.False(t, ok)
}

func TestHub_StartWiringDeliversAcrossRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	hub := NewHub()
	c, err := hub.Register("u1", nil)
	require.NoError(t, err)

	n := NewNotifier(rdb, hub)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, hub.StartWiring(ctx, n))

	assert.Eventually(t, func() bool {
		_ = n.PublishUser(context.Background(), "u1", NewEvent(EventReplyCreated, nil))
		return len(c.Send) > 0
	}, testEventuallyTimeout, testPollInterval)

	for len(c.Send) > 0 {
		<-c.Send
	}
	require.NoError(t, n.PublishBroadcast(context.Background(), NewEvent("announcement", nil)))
	assert.Eventually(t, func() bool { return len(c.Send) > 0 }, testEventuallyTimeout, testPollInterval)
}

package channel

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/rs/zerolog/log"
)

// EventNotificationCreated is the only event published on notification
// channels. Clients subscribe against this name.
const EventNotificationCreated = "notification.created"

const channelPrefix = "private-user-notifications."

// ChannelFor returns the pub/sub topic for one recipient. The topic is only
// reachable through the authenticated stream route, which subscribes a session
// to its own id and nothing else.
func ChannelFor(userId int64) string {
	return channelPrefix + strconv.FormatInt(userId, 10)
}

type Event struct {
	Event string           `json:"event"`
	Data  NotificationData `json:"data"`
}

type NotificationData struct {
	Id        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	ActionUrl *string   `json:"action_url,omitempty"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func EventFromNotification(notification *models.Notification) Event {
	return Event{
		Event: EventNotificationCreated,
		Data: NotificationData{
			Id:        notification.Id,
			Type:      notification.Type,
			Title:     notification.Title,
			Message:   notification.Message,
			ActionUrl: notification.Url,
			Read:      notification.Read(),
			CreatedAt: notification.CreatedAt,
		},
	}
}

type RedisChannel struct {
	client *redis.Client
}

func StartRedisChannel(client *redis.Client) *RedisChannel {
	log.Info().Msg("Initialized redis channel!")
	return &RedisChannel{client: client}
}

// PublishNotification pushes an event to the recipient's channel. Best-effort:
// callers log the error and move on, the store row stays authoritative.
func (c *RedisChannel) PublishNotification(ctx context.Context, userId int64, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification event: %w", err)
	}

	if err := c.client.Publish(ctx, ChannelFor(userId), payload).Err(); err != nil {
		return fmt.Errorf("publish notification event: %w", err)
	}

	return nil
}

// SubscribeToUser opens a subscription on the recipient's channel. The caller
// must invoke the returned closer when the client session ends.
func (c *RedisChannel) SubscribeToUser(ctx context.Context, userId int64) (<-chan *redis.Message, func() error) {
	sub := c.client.Subscribe(ctx, ChannelFor(userId))
	return sub.ChannelSize(32), sub.Close
}

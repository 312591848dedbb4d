package controllers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/museum/collection-server/collection-service/channel"
	utils "github.com/museum/collection-server/utils-go"
	"github.com/rs/zerolog/log"
	"go.uber.org/fx"
)

type StreamController struct {
	fx.In

	Channel *channel.RedisChannel
}

// RegisterStreamController wires the live notification stream. The route sits
// behind the same JWT middleware as the rest of the notification surface; a
// session can only ever subscribe to its own channel.
func RegisterStreamController(r *utils.Router, c StreamController) {
	r.Use("/notifications/stream", utils.Protected(standardRoute), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	r.Get("/notifications/stream", websocket.New(c.stream))
}

func (r *StreamController) stream(c *websocket.Conn) {
	user := c.Locals("user").(int64)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	messages, closeSub := r.Channel.SubscribeToUser(ctx, user)
	defer closeSub()

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}
			if err := c.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
				log.Debug().Err(err).Int64("user_id", user).Msg("Notification stream closed")
				return
			}
		case <-closed:
			return
		}
	}
}

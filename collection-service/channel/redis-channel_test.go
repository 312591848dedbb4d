package channel

import (
	"encoding/json"
	"testing"
	"time"

	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelForIsScopedPerRecipient(t *testing.T) {
	assert.Equal(t, "private-user-notifications.7", ChannelFor(7))
	assert.NotEqual(t, ChannelFor(7), ChannelFor(70))
}

func TestEventFromNotification(t *testing.T) {
	url := "/items/5"
	notification := &models.Notification{
		Id:        uuid.New(),
		UserId:    7,
		Type:      models.TypeInfo,
		Title:     "New item",
		Message:   "A new item was added",
		Url:       &url,
		CreatedAt: time.Now().UTC(),
	}

	event := EventFromNotification(notification)

	assert.Equal(t, EventNotificationCreated, event.Event)
	assert.Equal(t, notification.Id, event.Data.Id)
	assert.Equal(t, "New item", event.Data.Title)
	assert.False(t, event.Data.Read)
	require.NotNil(t, event.Data.ActionUrl)
	assert.Equal(t, url, *event.Data.ActionUrl)
}

func TestEventWireFormatIsStable(t *testing.T) {
	notification := &models.Notification{
		Id:        uuid.MustParse("f47ac10b-58cc-4372-a567-0e02b2c3d479"),
		UserId:    7,
		Type:      models.TypeSuccess,
		Title:     "t",
		Message:   "m",
		CreatedAt: time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC),
	}

	payload, err := json.Marshal(EventFromNotification(notification))
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &decoded))

	assert.Equal(t, "notification.created", decoded["event"])

	data := decoded["data"].(map[string]interface{})
	assert.Equal(t, "f47ac10b-58cc-4372-a567-0e02b2c3d479", data["id"])
	assert.Equal(t, "success", data["type"])
	assert.Equal(t, false, data["read"])
	_, hasUrl := data["action_url"]
	assert.False(t, hasUrl)
}

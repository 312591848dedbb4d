package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/museum/collection-server/collection-service/channel"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	created []models.Notification
	fail    error
}

func (f *fakeStore) Create(ctx context.Context, notification *models.Notification) error {
	if f.fail != nil {
		return f.fail
	}
	notification.Id = uuid.New()
	notification.CreatedAt = time.Now().UTC()
	f.created = append(f.created, *notification)
	return nil
}

type capturingPublisher struct {
	events chan publishedEvent
	fail   error
}

type publishedEvent struct {
	userId int64
	event  channel.Event
}

func newCapturingPublisher() *capturingPublisher {
	return &capturingPublisher{events: make(chan publishedEvent, 8)}
}

func (f *capturingPublisher) PublishNotification(ctx context.Context, userId int64, event channel.Event) error {
	if f.fail != nil {
		return f.fail
	}
	f.events <- publishedEvent{userId: userId, event: event}
	return nil
}

func (f *capturingPublisher) await(t *testing.T) publishedEvent {
	t.Helper()
	select {
	case ev := <-f.events:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event published")
		return publishedEvent{}
	}
}

func TestSendRequiresTitleAndMessage(t *testing.T) {
	notifier := NewNotifier(&fakeStore{}, newCapturingPublisher(), nil)

	_, err := notifier.Send(context.Background(), 7, models.TypeInfo, "", "body", nil)
	assert.ErrorIs(t, err, ErrMissingTitle)

	_, err = notifier.Send(context.Background(), 7, models.TypeInfo, "title", "", nil)
	assert.ErrorIs(t, err, ErrMissingMessage)
}

func TestSendRejectsUnknownType(t *testing.T) {
	notifier := NewNotifier(&fakeStore{}, newCapturingPublisher(), nil)

	_, err := notifier.Send(context.Background(), 7, "fancy", "title", "body", nil)
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestSendDefaultsToInfo(t *testing.T) {
	store := &fakeStore{}
	notifier := NewNotifier(store, newCapturingPublisher(), nil)

	notification, err := notifier.Send(context.Background(), 7, "", "title", "body", nil)
	require.NoError(t, err)
	assert.Equal(t, models.TypeInfo, notification.Type)
}

func TestSendPersistsThenPublishes(t *testing.T) {
	store := &fakeStore{}
	publisher := newCapturingPublisher()
	notifier := NewNotifier(store, publisher, nil)
	notifier.Start()
	defer notifier.Stop()

	url := "/items/5"
	notification, err := notifier.Send(context.Background(), 7, models.TypeInfo, "New item", "A new item was added", &url)
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Nil(t, store.created[0].ReadAt)

	published := publisher.await(t)
	assert.Equal(t, int64(7), published.userId)
	assert.Equal(t, channel.EventNotificationCreated, published.event.Event)
	assert.Equal(t, notification.Id, published.event.Data.Id)
	assert.Equal(t, "New item", published.event.Data.Title)
	assert.Equal(t, "A new item was added", published.event.Data.Message)
	require.NotNil(t, published.event.Data.ActionUrl)
	assert.Equal(t, url, *published.event.Data.ActionUrl)
	assert.False(t, published.event.Data.Read)
}

func TestStoreFailurePropagates(t *testing.T) {
	store := &fakeStore{fail: errors.New("connection refused")}
	publisher := newCapturingPublisher()
	notifier := NewNotifier(store, publisher, nil)
	notifier.Start()
	defer notifier.Stop()

	_, err := notifier.Send(context.Background(), 7, models.TypeInfo, "title", "body", nil)
	assert.Error(t, err)
	assert.Empty(t, publisher.events)
}

func TestPublishFailureDoesNotFailSend(t *testing.T) {
	store := &fakeStore{}
	publisher := newCapturingPublisher()
	publisher.fail = errors.New("transport unavailable")

	notifier := NewNotifier(store, publisher, nil)
	notifier.Start()

	_, err := notifier.Send(context.Background(), 7, models.TypeInfo, "title", "body", nil)
	assert.NoError(t, err)

	notifier.Stop()
	assert.Len(t, store.created, 1)
}

type countingMailer struct {
	echoes chan int64
}

func (m *countingMailer) NotificationEcho(ctx context.Context, userId int64, notification *models.Notification) error {
	m.echoes <- userId
	return nil
}

func TestMailEchoReceivesDispatch(t *testing.T) {
	mailer := &countingMailer{echoes: make(chan int64, 1)}
	notifier := NewNotifier(&fakeStore{}, newCapturingPublisher(), mailer)
	notifier.Start()
	defer notifier.Stop()

	_, err := notifier.Send(context.Background(), 7, models.TypeInfo, "title", "body", nil)
	require.NoError(t, err)

	select {
	case userId := <-mailer.echoes:
		assert.Equal(t, int64(7), userId)
	case <-time.After(time.Second):
		t.Fatal("no mail echo dispatched")
	}
}

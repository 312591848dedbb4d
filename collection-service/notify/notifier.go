package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/museum/collection-server/collection-service/channel"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/rs/zerolog/log"
)

var (
	ErrMissingTitle   = errors.New("notification title is required")
	ErrMissingMessage = errors.New("notification message is required")
	ErrUnknownType    = errors.New("unknown notification type")
)

const (
	queueSize      = 64
	publishTimeout = 2 * time.Second
)

type Store interface {
	Create(ctx context.Context, notification *models.Notification) error
}

type Publisher interface {
	PublishNotification(ctx context.Context, userId int64, event channel.Event) error
}

// Mailer mirrors a created notification to the recipient's inbox. Optional;
// a nil Mailer disables the echo.
type Mailer interface {
	NotificationEcho(ctx context.Context, userId int64, notification *models.Notification) error
}

// Notifier is the producer entry point into the notification lifecycle. Send
// persists through the store synchronously, then hands the saved row to a
// dispatch goroutine over a buffered queue. The store write is authoritative;
// a full queue or a failed publish is logged and dropped, never surfaced.
type Notifier struct {
	store     Store
	publisher Publisher
	mailer    Mailer

	queue   chan models.Notification
	stopped chan struct{}
}

func NewNotifier(store Store, publisher Publisher, mailer Mailer) *Notifier {
	return &Notifier{
		store:     store,
		publisher: publisher,
		mailer:    mailer,
		queue:     make(chan models.Notification, queueSize),
		stopped:   make(chan struct{}),
	}
}

func (s *Notifier) Start() {
	go s.dispatch()
}

// Stop drains the queue and waits for the dispatcher to finish. Send must not
// be called after Stop.
func (s *Notifier) Stop() {
	close(s.queue)
	<-s.stopped
}

func (s *Notifier) Send(ctx context.Context, userId int64, notifType, title, message string, url *string) (*models.Notification, error) {
	if title == "" {
		return nil, ErrMissingTitle
	}
	if message == "" {
		return nil, ErrMissingMessage
	}
	if notifType == "" {
		notifType = models.TypeInfo
	}
	if !models.KnownNotificationType(notifType) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, notifType)
	}

	notification := &models.Notification{
		UserId:  userId,
		Type:    notifType,
		Title:   title,
		Message: message,
		Url:     url,
	}

	if err := s.store.Create(ctx, notification); err != nil {
		return nil, err
	}

	select {
	case s.queue <- *notification:
	default:
		log.Error().
			Int64("user_id", userId).
			Str("notification_id", notification.Id.String()).
			Msg("Dispatch queue full, dropping push")
	}

	return notification, nil
}

func (s *Notifier) dispatch() {
	defer close(s.stopped)

	for notification := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := s.publisher.PublishNotification(ctx, notification.UserId, channel.EventFromNotification(&notification)); err != nil {
			log.Error().Err(err).
				Int64("user_id", notification.UserId).
				Str("notification_id", notification.Id.String()).
				Msg("Failed to publish notification")
		}

		if s.mailer != nil {
			if err := s.mailer.NotificationEcho(ctx, notification.UserId, &notification); err != nil {
				log.Error().Err(err).
					Int64("user_id", notification.UserId).
					Str("notification_id", notification.Id.String()).
					Msg("Failed to mail notification")
			}
		}

		cancel()
	}
}

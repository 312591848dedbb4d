package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrNotificationNotFound = errors.New("notification not found")

const defaultPerPage = 15

// NotificationFilter narrows List results. Zero values mean no filtering;
// Status is one of "", "read", "unread".
type NotificationFilter struct {
	Type    string
	Status  string
	Page    int
	PerPage int
}

type NotificationRepo struct {
	db *bun.DB
}

func NewNotificationRepo(db *bun.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

func (c *NotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	if notification.Id == uuid.Nil {
		notification.Id = uuid.New()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now().UTC()
	}

	if _, err := c.db.NewInsert().Model(notification).Exec(ctx); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	return nil
}

func (c *NotificationRepo) List(ctx context.Context, userId int64, filter NotificationFilter) ([]models.Notification, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	notifications := make([]models.Notification, 0)

	q := c.db.NewSelect().Model(&notifications).Where("user_id = ?", userId)

	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}

	switch filter.Status {
	case "read":
		q = q.Where("read_at IS NOT NULL")
	case "unread":
		q = q.Where("read_at IS NULL")
	}

	err := q.OrderExpr("created_at DESC").Limit(perPage).Offset((page - 1) * perPage).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}

	return notifications, nil
}

func (c *NotificationRepo) UnreadCount(ctx context.Context, userId int64) (int, error) {
	count, err := c.db.NewSelect().Model((*models.Notification)(nil)).
		Where("user_id = ? AND read_at IS NULL", userId).
		Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}

	return count, nil
}

// MarkAsRead sets read_at once; an already-read notification is returned
// unchanged. Rows owned by another user are indistinguishable from missing
// rows on purpose.
func (c *NotificationRepo) MarkAsRead(ctx context.Context, userId int64, id uuid.UUID) (*models.Notification, error) {
	notification := new(models.Notification)

	res, err := c.db.NewUpdate().Model(notification).
		Set("read_at = ?", time.Now().UTC()).
		Where("id = ? AND user_id = ? AND read_at IS NULL", id, userId).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("mark notification as read: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows > 0 {
		return notification, nil
	}

	err = c.db.NewSelect().Model(notification).
		Where("id = ? AND user_id = ?", id, userId).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotificationNotFound
		}
		return nil, fmt.Errorf("fetch notification: %w", err)
	}

	return notification, nil
}

func (c *NotificationRepo) MarkAllAsRead(ctx context.Context, userId int64) (int64, error) {
	res, err := c.db.NewUpdate().Model((*models.Notification)(nil)).
		Set("read_at = ?", time.Now().UTC()).
		Where("user_id = ? AND read_at IS NULL", userId).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications as read: %w", err)
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

// MarkBulkAsRead updates the given ids in one statement. Ids that do not
// exist, belong to another user or are already read are skipped, not errors.
func (c *NotificationRepo) MarkBulkAsRead(ctx context.Context, userId int64, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := c.db.NewUpdate().Model((*models.Notification)(nil)).
		Set("read_at = ?", time.Now().UTC()).
		Where("id IN (?) AND user_id = ? AND read_at IS NULL", bun.In(ids), userId).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("mark notifications as read: %w", err)
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

func (c *NotificationRepo) Delete(ctx context.Context, userId int64, id uuid.UUID) error {
	res, err := c.db.NewDelete().Model((*models.Notification)(nil)).
		Where("id = ? AND user_id = ?", id, userId).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotificationNotFound
	}

	return nil
}

func (c *NotificationRepo) DeleteBulk(ctx context.Context, userId int64, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	res, err := c.db.NewDelete().Model((*models.Notification)(nil)).
		Where("id IN (?) AND user_id = ?", bun.In(ids), userId).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete notifications: %w", err)
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

func (c *NotificationRepo) DeleteAll(ctx context.Context, userId int64) (int64, error) {
	res, err := c.db.NewDelete().Model((*models.Notification)(nil)).
		Where("user_id = ?", userId).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all notifications: %w", err)
	}

	rows, _ := res.RowsAffected()
	return rows, nil
}

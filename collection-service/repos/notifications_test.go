package repos

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

var notificationColumns = []string{"id", "user_id", "type", "title", "message", "url", "read_at", "created_at"}

func setupMockDB(t *testing.T) (*NotificationRepo, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, pgdialect.New())
	return NewNotificationRepo(db), mock
}

func TestCreateAssignsIdAndTimestamp(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(`^INSERT INTO "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	notification := &models.Notification{
		UserId:  7,
		Type:    models.TypeInfo,
		Title:   "New item",
		Message: "A new item was added",
	}

	err := repo.Create(context.Background(), notification)
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, notification.Id)
	assert.False(t, notification.CreatedAt.IsZero())
	assert.Nil(t, notification.ReadAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCount(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`^SELECT count\(\*\)`).
		WithArgs().
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.UnreadCount(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestMarkAsReadTransitionsUnreadRow(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	now := time.Now().UTC()

	mock.ExpectQuery(`^UPDATE "userdata"\."notifications"`).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(id.String(), int64(7), models.TypeInfo, "t", "m", nil, now, now.Add(-time.Minute)))

	notification, err := repo.MarkAsRead(context.Background(), 7, id)
	require.NoError(t, err)

	assert.Equal(t, id, notification.Id)
	assert.True(t, notification.Read())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsReadIsIdempotent(t *testing.T) {
	repo, mock := setupMockDB(t)

	id := uuid.New()
	readAt := time.Now().UTC().Add(-time.Hour)

	// Update touches nothing the second time around; the row comes back from
	// the follow-up select with its original read_at.
	mock.ExpectQuery(`^UPDATE "userdata"\."notifications"`).
		WillReturnRows(sqlmock.NewRows(notificationColumns))
	mock.ExpectQuery(`^SELECT`).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(id.String(), int64(7), models.TypeInfo, "t", "m", nil, readAt, readAt.Add(-time.Minute)))

	notification, err := repo.MarkAsRead(context.Background(), 7, id)
	require.NoError(t, err)

	assert.True(t, notification.Read())
	assert.WithinDuration(t, readAt, *notification.ReadAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsReadNotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`^UPDATE "userdata"\."notifications"`).
		WillReturnRows(sqlmock.NewRows(notificationColumns))
	mock.ExpectQuery(`^SELECT`).
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	_, err := repo.MarkAsRead(context.Background(), 7, uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestMarkAllAsReadReturnsAffected(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(`^UPDATE "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	updated, err := repo.MarkAllAsRead(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), updated)

	// Second run has nothing left to touch.
	mock.ExpectExec(`^UPDATE "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	updated, err = repo.MarkAllAsRead(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
}

func TestMarkBulkAsReadSkipsForeignIds(t *testing.T) {
	repo, mock := setupMockDB(t)

	// Two ids submitted, only one owned and unread.
	mock.ExpectExec(`^UPDATE "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	updated, err := repo.MarkBulkAsRead(context.Background(), 7, []uuid.UUID{uuid.New(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)
}

func TestMarkBulkAsReadEmptySetTouchesNothing(t *testing.T) {
	repo, mock := setupMockDB(t)

	updated, err := repo.MarkBulkAsRead(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(`^DELETE FROM "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 7, uuid.New())
	assert.ErrorIs(t, err, ErrNotificationNotFound)
}

func TestDeleteBulkMixedOwnership(t *testing.T) {
	repo, mock := setupMockDB(t)

	// Three ids submitted, one belongs to another recipient.
	mock.ExpectExec(`^DELETE FROM "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteBulk(context.Background(), 7, []uuid.UUID{uuid.New(), uuid.New(), uuid.New()})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
}

func TestDeleteAllReturnsAffected(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectExec(`^DELETE FROM "userdata"\."notifications"`).
		WillReturnResult(sqlmock.NewResult(0, 5))

	deleted, err := repo.DeleteAll(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5), deleted)
}

func TestListOrderedNewestFirst(t *testing.T) {
	repo, mock := setupMockDB(t)

	now := time.Now().UTC()
	first := uuid.New()
	second := uuid.New()

	mock.ExpectQuery(`ORDER BY created_at DESC`).
		WillReturnRows(sqlmock.NewRows(notificationColumns).
			AddRow(first.String(), int64(7), models.TypeInfo, "newest", "m", nil, nil, now).
			AddRow(second.String(), int64(7), models.TypeInfo, "older", "m", nil, nil, now.Add(-time.Hour)))

	notifications, err := repo.List(context.Background(), 7, NotificationFilter{})
	require.NoError(t, err)
	require.Len(t, notifications, 2)

	assert.Equal(t, first, notifications[0].Id)
	assert.True(t, notifications[0].CreatedAt.After(notifications[1].CreatedAt))
}

func TestListEmptyPageIsNotAnError(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(`^SELECT`).
		WillReturnRows(sqlmock.NewRows(notificationColumns))

	notifications, err := repo.List(context.Background(), 7, NotificationFilter{Status: "unread", Page: 99})
	require.NoError(t, err)
	assert.Empty(t, notifications)
}

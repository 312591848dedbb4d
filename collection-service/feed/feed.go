// Package feed holds the client side of the notification lifecycle: an
// in-memory list and unread counter that merges best-effort push events with
// authoritative store state. Push merges are optimistic UI hints; whenever the
// store answers, the store wins.
package feed

import (
	"context"
	"sync"
	"time"

	"github.com/museum/collection-server/collection-service/channel"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	"github.com/google/uuid"
)

// Client is the mutation surface the feed issues against the store. In the
// browser this is the HTTP API; in tests it is a fake.
type Client interface {
	List(ctx context.Context) ([]models.Notification, int, error)
	MarkAsRead(ctx context.Context, id uuid.UUID) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context) (int64, error)
	MarkBulkAsRead(ctx context.Context, ids []uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteBulk(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

type Feed struct {
	mtx    sync.Mutex
	client Client

	items    []models.Notification
	unread   int
	selected map[uuid.UUID]struct{}
}

func New(client Client) *Feed {
	return &Feed{
		client:   client,
		selected: make(map[uuid.UUID]struct{}),
	}
}

// ApplyPush merges a push-delivered notification. Duplicate ids are ignored
// so a push racing a Refresh cannot double-count.
func (f *Feed) ApplyPush(data channel.NotificationData) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.indexOf(data.Id) != -1 {
		return
	}

	notification := models.Notification{
		Id:        data.Id,
		Type:      data.Type,
		Title:     data.Title,
		Message:   data.Message,
		Url:       data.ActionUrl,
		CreatedAt: data.CreatedAt,
	}

	f.items = append([]models.Notification{notification}, f.items...)
	if !data.Read {
		f.unread++
	}
}

// Refresh replaces local state with the store's answer.
func (f *Feed) Refresh(ctx context.Context) error {
	items, unread, err := f.client.List(ctx)
	if err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.items = items
	f.unread = unread
	return nil
}

func (f *Feed) Notifications() []models.Notification {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	out := make([]models.Notification, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) UnreadCount() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.unread
}

func (f *Feed) ToggleSelect(id uuid.UUID) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if _, ok := f.selected[id]; ok {
		delete(f.selected, id)
	} else {
		f.selected[id] = struct{}{}
	}
}

func (f *Feed) Selected() []uuid.UUID {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	return f.selectedLocked()
}

func (f *Feed) MarkRead(ctx context.Context, id uuid.UUID) error {
	updated, err := f.client.MarkAsRead(ctx, id)
	if err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	if i := f.indexOf(id); i != -1 {
		if !f.items[i].Read() && updated.Read() {
			f.decrement(1)
		}
		f.items[i] = *updated
	}
	return nil
}

func (f *Feed) MarkAll(ctx context.Context) error {
	if _, err := f.client.MarkAllAsRead(ctx); err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	now := time.Now().UTC()
	for i := range f.items {
		if !f.items[i].Read() {
			at := now
			f.items[i].ReadAt = &at
		}
	}
	f.unread = 0
	return nil
}

// MarkBulkSelected marks the current selection read and clears it. The
// counter drops by the number of rows the store actually transitioned, not by
// the selection size, so re-selecting already-read rows cannot drive the
// badge negative.
func (f *Feed) MarkBulkSelected(ctx context.Context) error {
	f.mtx.Lock()
	ids := f.selectedLocked()
	f.mtx.Unlock()

	if len(ids) == 0 {
		return nil
	}

	updated, err := f.client.MarkBulkAsRead(ctx, ids)
	if err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	now := time.Now().UTC()
	for _, id := range ids {
		if i := f.indexOf(id); i != -1 && !f.items[i].Read() {
			at := now
			f.items[i].ReadAt = &at
		}
	}
	f.decrement(updated)
	f.selected = make(map[uuid.UUID]struct{})
	return nil
}

func (f *Feed) Delete(ctx context.Context, id uuid.UUID) error {
	if err := f.client.Delete(ctx, id); err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.removeLocked(id)
	delete(f.selected, id)
	return nil
}

func (f *Feed) DeleteBulkSelected(ctx context.Context) error {
	f.mtx.Lock()
	ids := f.selectedLocked()
	f.mtx.Unlock()

	if len(ids) == 0 {
		return nil
	}

	if _, err := f.client.DeleteBulk(ctx, ids); err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	for _, id := range ids {
		f.removeLocked(id)
	}
	f.selected = make(map[uuid.UUID]struct{})
	return nil
}

func (f *Feed) DeleteAll(ctx context.Context) error {
	if _, err := f.client.DeleteAll(ctx); err != nil {
		return err
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.items = nil
	f.unread = 0
	f.selected = make(map[uuid.UUID]struct{})
	return nil
}

func (f *Feed) indexOf(id uuid.UUID) int {
	for i := range f.items {
		if f.items[i].Id == id {
			return i
		}
	}
	return -1
}

func (f *Feed) removeLocked(id uuid.UUID) {
	if i := f.indexOf(id); i != -1 {
		if !f.items[i].Read() {
			f.decrement(1)
		}
		f.items = append(f.items[:i], f.items[i+1:]...)
	}
}

func (f *Feed) decrement(by int64) {
	f.unread -= int(by)
	if f.unread < 0 {
		f.unread = 0
	}
}

func (f *Feed) selectedLocked() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(f.selected))
	for id := range f.selected {
		ids = append(ids, id)
	}
	return ids
}

package userdata

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notification classification tags. Free-form at the storage level, but
// producers are held to this set so the client always has an icon to render.
const (
	TypeInfo    = "info"
	TypeSuccess = "success"
	TypeWarning = "warning"
	TypeError   = "error"
	TypeMessage = "message"
)

type Notification struct {
	bun.BaseModel `bun:"userdata.notifications"`

	Id        uuid.UUID  `bun:",pk,type:uuid" json:"id"`
	UserId    int64      `json:"user_id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Url       *string    `bun:",nullzero" json:"url,omitempty"`
	ReadAt    *time.Time `bun:",nullzero" json:"read_at,omitempty"`
	CreatedAt time.Time  `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}

func (n *Notification) Read() bool {
	return n.ReadAt != nil
}

func KnownNotificationType(t string) bool {
	switch t {
	case TypeInfo, TypeSuccess, TypeWarning, TypeError, TypeMessage:
		return true
	}
	return false
}

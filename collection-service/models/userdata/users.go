package userdata

import (
	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"userdata.users"`

	Id       int64  `bun:",pk,autoincrement" json:"id,omitempty"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Password string `json:"-"`
	Role     string `json:"role,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

const (
	RoleAdmin   = "admin"
	RoleCurator = "curator"
	RoleViewer  = "viewer"
)

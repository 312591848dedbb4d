package collection

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ConditionGood = "good"
	ConditionPoor = "poor"
)

type Artifact struct {
	bun.BaseModel `bun:"collection.artifacts"`

	Id          int64     `bun:",pk,autoincrement" json:"id"`
	Title       string    `json:"title"`
	Condition   string    `json:"condition"`
	Location    *string   `bun:",nullzero" json:"location,omitempty"`
	Description *string   `bun:",nullzero" json:"description,omitempty"`
	Relation    *int64    `bun:",nullzero" json:"relation,omitempty"`
	CategoryId  int64     `json:"category_id"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`

	Category  *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	RelatedTo *Artifact `bun:"rel:belongs-to,join:relation=id" json:"related_to,omitempty"`
}

type Category struct {
	bun.BaseModel `bun:"collection.categories"`

	Id          int64   `bun:",pk,autoincrement" json:"id"`
	Name        string  `json:"name"`
	Description *string `bun:",nullzero" json:"description,omitempty"`
}

type Archive struct {
	bun.BaseModel `bun:"collection.archives"`

	Id          int64     `bun:",pk,autoincrement" json:"id"`
	Title       string    `json:"title"`
	Description *string   `bun:",nullzero" json:"description,omitempty"`
	FilePath    string    `json:"file_path"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
}

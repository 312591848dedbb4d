package collection

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	ProposalPending  = "pending"
	ProposalApproved = "approved"
	ProposalRejected = "rejected"
)

type Donor struct {
	bun.BaseModel `bun:"collection.donors"`

	Id             int64   `bun:",pk,autoincrement" json:"id"`
	FullName       string  `json:"full_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	NextOfKinName  *string `bun:",nullzero" json:"next_of_kin_name,omitempty"`
	NextOfKinEmail *string `bun:",nullzero" json:"next_of_kin_email,omitempty"`
	NextOfKinPhone *string `bun:",nullzero" json:"next_of_kin_phone,omitempty"`
}

type ArtifactProposal struct {
	bun.BaseModel `bun:"collection.artifact_proposals"`

	Id          int64     `bun:",pk,autoincrement" json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Source      string    `json:"source"`
	Status      string    `json:"status"`
	DonorId     int64     `json:"donor_id"`
	CreatedAt   time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`

	Donor *Donor `bun:"rel:belongs-to,join:donor_id=id" json:"donor,omitempty"`
}

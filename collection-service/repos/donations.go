package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	models "github.com/museum/collection-server/collection-service/models/collection"
	"github.com/uptrace/bun"
)

var ErrProposalNotFound = errors.New("artifact proposal not found")

type DonationRepo struct {
	db *bun.DB
}

func NewDonationRepo(db *bun.DB) *DonationRepo {
	return &DonationRepo{db: db}
}

// CreateProposal stores a donation proposal together with its donor in one
// transaction. An existing donor is matched by email and updated in place.
func (c *DonationRepo) CreateProposal(ctx context.Context, donor *models.Donor, proposal *models.ArtifactProposal) error {
	return c.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		existing := new(models.Donor)

		err := tx.NewSelect().Model(existing).Where("email = ?", donor.Email).Scan(ctx)
		switch {
		case err == nil:
			donor.Id = existing.Id
			if _, err := tx.NewUpdate().Model(donor).WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update donor: %w", err)
			}
		case errors.Is(err, sql.ErrNoRows):
			if _, err := tx.NewInsert().Model(donor).Exec(ctx); err != nil {
				return fmt.Errorf("insert donor: %w", err)
			}
		default:
			return fmt.Errorf("find donor: %w", err)
		}

		proposal.DonorId = donor.Id
		proposal.Status = models.ProposalPending

		if _, err := tx.NewInsert().Model(proposal).Exec(ctx); err != nil {
			return fmt.Errorf("insert proposal: %w", err)
		}

		return nil
	})
}

func (c *DonationRepo) ListProposals(ctx context.Context, status string) ([]models.ArtifactProposal, error) {
	proposals := make([]models.ArtifactProposal, 0)

	q := c.db.NewSelect().Model(&proposals).Relation("Donor")

	if status != "" {
		q = q.Where("status = ?", status)
	}

	err := q.OrderExpr("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}

	return proposals, nil
}

func (c *DonationRepo) SetProposalStatus(ctx context.Context, id int64, status string) (*models.ArtifactProposal, error) {
	proposal := new(models.ArtifactProposal)

	res, err := c.db.NewUpdate().Model(proposal).
		Set("status = ?", status).
		Where("id = ?", id).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update proposal status: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return nil, ErrProposalNotFound
	}

	return proposal, nil
}

package repos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	models "github.com/museum/collection-server/collection-service/models/collection"
	"github.com/uptrace/bun"
)

var ErrArtifactNotFound = errors.New("artifact not found")

type ArtifactFilter struct {
	CategoryId int64
	Search     string
	Page       int
	PerPage    int
}

type ArtifactRepo struct {
	db *bun.DB
}

func NewArtifactRepo(db *bun.DB) *ArtifactRepo {
	return &ArtifactRepo{db: db}
}

func (c *ArtifactRepo) ListArtifacts(ctx context.Context, filter ArtifactFilter) ([]models.Artifact, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}

	artifacts := make([]models.Artifact, 0)

	q := c.db.NewSelect().Model(&artifacts).Relation("Category")

	if filter.CategoryId > 0 {
		q = q.Where("category_id = ?", filter.CategoryId)
	}
	if filter.Search != "" {
		q = q.Where("title ILIKE ?", "%"+filter.Search+"%")
	}

	err := q.OrderExpr("created_at DESC").Limit(perPage).Offset((page - 1) * perPage).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}

	return artifacts, nil
}

func (c *ArtifactRepo) GetArtifact(ctx context.Context, id int64) (*models.Artifact, error) {
	artifact := new(models.Artifact)

	err := c.db.NewSelect().Model(artifact).Relation("Category").Where(`"artifact"."id" = ?`, id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtifactNotFound
		}
		return nil, fmt.Errorf("get artifact: %w", err)
	}

	return artifact, nil
}

// RelatedGroup resolves the whole relation group of an artifact: walk the
// self-join up to the root, then collect the root and everything one or two
// hops below it.
func (c *ArtifactRepo) RelatedGroup(ctx context.Context, id int64) ([]models.Artifact, error) {
	root, err := c.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}

	for root.Relation != nil {
		root, err = c.GetArtifact(ctx, *root.Relation)
		if err != nil {
			return nil, err
		}
	}

	group := make([]models.Artifact, 0)

	err = c.db.NewSelect().Model(&group).
		Where("id = ?", root.Id).
		WhereOr("relation = ?", root.Id).
		WhereOr("relation IN (SELECT id FROM collection.artifacts WHERE relation = ?)", root.Id).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve related group: %w", err)
	}

	return group, nil
}

func (c *ArtifactRepo) AddArtifact(ctx context.Context, artifact *models.Artifact) error {
	if artifact.Condition == "" {
		artifact.Condition = models.ConditionGood
	}

	if _, err := c.db.NewInsert().Model(artifact).Exec(ctx); err != nil {
		return fmt.Errorf("insert artifact: %w", err)
	}

	return nil
}

func (c *ArtifactRepo) UpdateCondition(ctx context.Context, id int64, condition string) error {
	res, err := c.db.NewUpdate().Model((*models.Artifact)(nil)).
		Set("condition = ?", condition).
		Set("updated_at = now()").
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update artifact condition: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrArtifactNotFound
	}

	return nil
}

func (c *ArtifactRepo) DeleteArtifact(ctx context.Context, id int64) error {
	res, err := c.db.NewDelete().Model((*models.Artifact)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete artifact: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrArtifactNotFound
	}

	return nil
}

func (c *ArtifactRepo) ListArchives(ctx context.Context) ([]models.Archive, error) {
	archives := make([]models.Archive, 0)

	err := c.db.NewSelect().Model(&archives).OrderExpr("created_at DESC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list archives: %w", err)
	}

	return archives, nil
}

func (c *ArtifactRepo) AddArchive(ctx context.Context, archive *models.Archive) error {
	if _, err := c.db.NewInsert().Model(archive).Exec(ctx); err != nil {
		return fmt.Errorf("insert archive: %w", err)
	}

	return nil
}

func (c *ArtifactRepo) ListCategories(ctx context.Context) ([]models.Category, error) {
	categories := make([]models.Category, 0)

	err := c.db.NewSelect().Model(&categories).OrderExpr("name ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	return categories, nil
}

package repos

import (
	"context"
	"errors"
	"fmt"

	models "github.com/museum/collection-server/collection-service/models/userdata"
	utils "github.com/museum/collection-server/utils-go"
	"github.com/uptrace/bun"
)

var ErrUserNotFound = errors.New("user not found")

type UserFilter struct {
	Search  string
	Page    int
	PerPage int
}

type UserRepo struct {
	db *bun.DB
}

func NewUserRepo(db *bun.DB) *UserRepo {
	return &UserRepo{db: db}
}

func (c *UserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := new(models.User)

	err := c.db.NewSelect().Model(user).Where(`"user"."email" = ?`, email).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (c *UserRepo) UserProfile(ctx context.Context, id int64) (*models.User, error) {
	user := new(models.User)

	err := c.db.NewSelect().Model(user).ExcludeColumn("password").Where(`"user"."id" = ?`, id).Scan(ctx)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (c *UserRepo) Email(ctx context.Context, id int64) (string, error) {
	var email string

	err := c.db.NewSelect().Model((*models.User)(nil)).Column("email").Where("id = ?", id).Scan(ctx, &email)
	if err != nil {
		return "", err
	}

	return email, nil
}

func (c *UserRepo) UpdateRole(ctx context.Context, id int64, role string) error {
	_, err := c.db.NewUpdate().Model((*models.User)(nil)).
		Set("role = ?", role).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

func (c *UserRepo) ListUsers(ctx context.Context, filter UserFilter) ([]models.User, error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage < 1 {
		perPage = 10
	}

	users := make([]models.User, 0)

	q := c.db.NewSelect().Model(&users).ExcludeColumn("password")

	if filter.Search != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Search+"%")
	}

	err := q.OrderExpr("id ASC").Limit(perPage).Offset((page - 1) * perPage).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	return users, nil
}

// CreateUser hashes the plain password before the insert; the model's
// Password field holds the encoded argon2id hash afterwards.
func (c *UserRepo) CreateUser(ctx context.Context, user *models.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.Password = hash

	if _, err := c.db.NewInsert().Model(user).Exec(ctx); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (c *UserRepo) UpdateUser(ctx context.Context, id int64, name, email string) error {
	res, err := c.db.NewUpdate().Model((*models.User)(nil)).
		Set("name = ?", name).
		Set("email = ?", email).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (c *UserRepo) DeleteUser(ctx context.Context, id int64) error {
	res, err := c.db.NewDelete().Model((*models.User)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Curators returns the ids of every user who reviews incoming proposals and
// new artifacts. Admins are included.
func (c *UserRepo) Curators(ctx context.Context) ([]int64, error) {
	var ids []int64

	err := c.db.NewSelect().Model((*models.User)(nil)).Column("id").
		Where("role IN (?)", bun.In([]string{models.RoleCurator, models.RoleAdmin})).
		Scan(ctx, &ids)
	if err != nil {
		return nil, err
	}

	return ids, nil
}

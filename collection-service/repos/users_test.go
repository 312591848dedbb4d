package repos

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	models "github.com/museum/collection-server/collection-service/models/userdata"
	utils "github.com/museum/collection-server/utils-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func setupUserRepo(t *testing.T) (*UserRepo, sqlmock.Sqlmock) {
	sqldb, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })

	db := bun.NewDB(sqldb, pgdialect.New())
	return NewUserRepo(db), mock
}

func TestCreateUserStoresVerifiableHash(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectQuery(`^INSERT INTO "userdata"\."users"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(4)))

	user := &models.User{
		Name:  "Ada",
		Email: "ada@museum.test",
		Role:  models.RoleCurator,
	}

	err := repo.CreateUser(context.Background(), user, "correct horse battery")
	require.NoError(t, err)

	assert.True(t, utils.VerifyHash("correct horse battery", user.Password))
	assert.False(t, utils.VerifyHash("wrong password", user.Password))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUsersExcludesPassword(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectQuery(`^SELECT "user"\."id", "user"\."name", "user"\."email", "user"\."role", "user"\."verified"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "email", "role", "verified"}).
			AddRow(int64(1), "Ada", "ada@museum.test", models.RoleAdmin, true).
			AddRow(int64(2), "Grace", "grace@museum.test", models.RoleViewer, false))

	users, err := repo.ListUsers(context.Background(), UserFilter{})
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Empty(t, users[0].Password)
	assert.Equal(t, "Ada", users[0].Name)
}

func TestUpdateUserNotFound(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec(`^UPDATE "userdata"\."users"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.UpdateUser(context.Background(), 99, "Ada", "ada@museum.test")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteUser(t *testing.T) {
	repo, mock := setupUserRepo(t)

	mock.ExpectExec(`^DELETE FROM "userdata"\."users"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.DeleteUser(context.Background(), 4))

	mock.ExpectExec(`^DELETE FROM "userdata"\."users"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteUser(context.Background(), 4), ErrUserNotFound)
}

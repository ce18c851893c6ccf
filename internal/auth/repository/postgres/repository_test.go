package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crystalafinch/authentication/internal/auth/domain"
	repo "github.com/crystalafinch/authentication/internal/auth/repository/postgres"
	apperrors "github.com/crystalafinch/authentication/internal/errors"
)

var userColumns = []string{"id", "email", "password_hash", "refresh_token_version", "created_at", "updated_at"}

func TestCreate(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	now := time.Now()
	user := &domain.User{
		ID:                  "user-123",
		Email:               "test@example.com",
		PasswordHash:        "hash",
		RefreshTokenVersion: 1,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	t.Run("success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.PasswordHash, user.RefreshTokenVersion, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		err := r.Create(ctx, user)
		require.NoError(t, err)
	})

	t.Run("conflict means email already in use", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.PasswordHash, user.RefreshTokenVersion, user.CreatedAt, user.UpdatedAt).
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		err := r.Create(ctx, user)
		assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyInUse)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO users").
			WithArgs(user.ID, user.Email, user.PasswordHash, user.RefreshTokenVersion, user.CreatedAt, user.UpdatedAt).
			WillReturnError(errors.New("db error"))

		err := r.Create(ctx, user)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, apperrors.ErrEmailAlreadyInUse)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()
	email := "test@example.com"

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(email).
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-123", email, "hash", 2, time.Now(), time.Now()))

		user, err := r.GetByEmail(ctx, email)
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "user-123", user.ID)
		assert.Equal(t, 2, user.RefreshTokenVersion)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(email).
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByEmail(ctx, email)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs(email).
			WillReturnError(errors.New("db error"))

		_, err := r.GetByEmail(ctx, email)
		assert.Error(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows(userColumns).
				AddRow("user-123", "test@example.com", "hash", 1, time.Now(), time.Now()))

		user, err := r.GetByID(ctx, "user-123")
		require.NoError(t, err)
		require.NotNil(t, user)
		assert.Equal(t, "test@example.com", user.Email)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, email").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		user, err := r.GetByID(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestBumpRefreshTokenVersion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	r := repo.NewPostgresRepository(mock)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs("user-123").
			WillReturnRows(pgxmock.NewRows([]string{"refresh_token_version"}).AddRow(3))

		version, err := r.BumpRefreshTokenVersion(ctx, "user-123")
		require.NoError(t, err)
		assert.Equal(t, 3, version)
	})

	t.Run("missing user", func(t *testing.T) {
		mock.ExpectQuery("UPDATE users").
			WithArgs("missing").
			WillReturnError(pgx.ErrNoRows)

		_, err := r.BumpRefreshTokenVersion(ctx, "missing")
		assert.ErrorIs(t, err, apperrors.ErrNoSuchUser)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

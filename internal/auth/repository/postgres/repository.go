package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/crystalafinch/authentication/internal/auth/domain"
	apperrors "github.com/crystalafinch/authentication/internal/errors"
)

// DB is the subset of pgxpool.Pool the repository needs. It is an interface
// so tests can substitute a pgxmock pool.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresRepository struct {
	db DB
}

func NewPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create relies on the unique index on email: ON CONFLICT DO NOTHING makes
// the uniqueness check and the insert a single atomic statement, so
// concurrent registrations for one email cannot both succeed.
func (r *PostgresRepository) Create(ctx context.Context, user *domain.User) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, refresh_token_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO NOTHING
	`, user.ID, user.Email, user.PasswordHash, user.RefreshTokenVersion, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return apperrors.ErrEmailAlreadyInUse
	}

	return nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, refresh_token_version, created_at, updated_at
		FROM users
		WHERE email = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, email, password_hash, refresh_token_version, created_at, updated_at
		FROM users
		WHERE id = $1
		LIMIT 1;
	`
	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) BumpRefreshTokenVersion(ctx context.Context, id string) (int, error) {
	var version int
	err := r.db.QueryRow(ctx, `
		UPDATE users
		SET refresh_token_version = refresh_token_version + 1, updated_at = now()
		WHERE id = $1
		RETURNING refresh_token_version
	`, id).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, apperrors.ErrNoSuchUser
		}
		return 0, fmt.Errorf("failed to bump refresh token version: %w", err)
	}

	return version, nil
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash,
		&user.RefreshTokenVersion, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	return &user, nil
}

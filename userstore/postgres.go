package userstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"authcore"
)

const pgUniqueViolation = "23505"

// Postgres implements [authcore.UserStore] on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// EnsureSchema creates the users table if it does not exist. Intended
// for development and tests; production deployments own their
// migrations.
func (s *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			full_name     TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("ensure users schema: %w", err)
	}
	return nil
}

func (s *Postgres) Create(ctx context.Context, user authcore.UserRecord) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, email, full_name, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		user.UserID, user.Email, user.FullName, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return authcore.ErrAccountExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Postgres) GetByEmail(ctx context.Context, email string) (authcore.UserRecord, error) {
	return s.get(ctx,
		`SELECT id, email, full_name, password_hash, created_at
		 FROM users WHERE email = $1`, email)
}

func (s *Postgres) GetByID(ctx context.Context, id string) (authcore.UserRecord, error) {
	return s.get(ctx,
		`SELECT id, email, full_name, password_hash, created_at
		 FROM users WHERE id = $1`, id)
}

func (s *Postgres) UpdatePasswordHash(ctx context.Context, id, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return authcore.ErrUserNotFound
	}
	return nil
}

func (s *Postgres) get(ctx context.Context, query, arg string) (authcore.UserRecord, error) {
	var user authcore.UserRecord
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&user.UserID, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return authcore.UserRecord{}, authcore.ErrUserNotFound
		}
		return authcore.UserRecord{}, fmt.Errorf("select user: %w", err)
	}
	return user, nil
}

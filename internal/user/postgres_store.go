package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id         TEXT PRIMARY KEY,
	clerk_id   TEXT NOT NULL UNIQUE,
	email      TEXT NOT NULL DEFAULT '',
	username   TEXT NOT NULL DEFAULT '',
	first_name TEXT NOT NULL DEFAULT '',
	last_name  TEXT NOT NULL DEFAULT '',
	photo      TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
)`

const userColumns = `id, clerk_id, email, username, first_name, last_name, photo, created_at, updated_at`

type postgresStore struct {
	db    *sql.DB
	clock Clock
	ids   IDGenerator
}

// OpenPostgres opens a pool through the pgx driver and verifies connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the users table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create users table: %w", err)
	}
	return nil
}

// NewPostgresStore creates a Store backed by the users table.
func NewPostgresStore(db *sql.DB, clock Clock, ids IDGenerator) Store {
	if clock == nil {
		clock = NewSystemClock()
	}
	if ids == nil {
		ids = NewUUIDGenerator()
	}
	return &postgresStore{db: db, clock: clock, ids: ids}
}

func (s *postgresStore) Create(ctx context.Context, input CreateInput) (User, error) {
	if input.ClerkID == "" {
		return User{}, ErrMissingClerkID
	}

	now := s.clock.Now().UTC()
	// On redelivery the existing row keeps its id and created_at.
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (clerk_id) DO UPDATE SET
			email = EXCLUDED.email,
			username = EXCLUDED.username,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			photo = EXCLUDED.photo,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + userColumns

	row := s.db.QueryRowContext(ctx, query,
		s.ids.NewID(), input.ClerkID, input.Email, input.Username,
		input.FirstName, input.LastName, input.Photo, now)
	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("create user %s: %w", input.ClerkID, err)
	}
	return u, nil
}

func (s *postgresStore) Update(ctx context.Context, clerkID string, input UpdateInput) (User, error) {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, username = $4, photo = $5, updated_at = $6
		WHERE clerk_id = $1
		RETURNING ` + userColumns

	row := s.db.QueryRowContext(ctx, query,
		clerkID, input.FirstName, input.LastName, input.Username, input.Photo, s.clock.Now().UTC())
	u, err := scanUser(row)
	if err != nil {
		return User{}, fmt.Errorf("update user %s: %w", clerkID, err)
	}
	return u, nil
}

func (s *postgresStore) Delete(ctx context.Context, clerkID string) (User, error) {
	query := `DELETE FROM users WHERE clerk_id = $1 RETURNING ` + userColumns

	u, err := scanUser(s.db.QueryRowContext(ctx, query, clerkID))
	if err != nil {
		return User{}, fmt.Errorf("delete user %s: %w", clerkID, err)
	}
	return u, nil
}

func (s *postgresStore) GetByClerkID(ctx context.Context, clerkID string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE clerk_id = $1`

	u, err := scanUser(s.db.QueryRowContext(ctx, query, clerkID))
	if err != nil {
		return User{}, fmt.Errorf("get user %s: %w", clerkID, err)
	}
	return u, nil
}

func scanUser(row *sql.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.ClerkID, &u.Email, &u.Username,
		&u.FirstName, &u.LastName, &u.Photo, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	return u, err
}

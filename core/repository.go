package core

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRecord represents the stored projection of a user. PasswordHash never
// leaves the persistence and auth layers.
type UserRecord struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	CreatedAt    time.Time
}

// UserRepository defines persistence operations for users. The store enforces
// email uniqueness; Create surfaces the driver's unique-violation error.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*UserRecord, error)
	Create(ctx context.Context, email, name, passwordHash string) (int64, error)
}

// PgUserRepository implements UserRepository using pgxpool.
type PgUserRepository struct {
	db *pgxpool.Pool
}

func NewPgUserRepository(db *pgxpool.Pool) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) FindByEmail(ctx context.Context, email string) (*UserRecord, error) {
	const q = `SELECT id, email, name, password_hash, created_at FROM users WHERE email=$1`
	var u UserRecord
	if err := r.db.QueryRow(ctx, q, email).Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepository) Create(ctx context.Context, email, name, passwordHash string) (int64, error) {
	const q = `INSERT INTO users (email, name, password_hash) VALUES ($1,$2,$3) RETURNING id`
	var id int64
	if err := r.db.QueryRow(ctx, q, email, name, passwordHash).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

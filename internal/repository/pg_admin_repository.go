package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portfolio/backend/internal/model"
)

// AdminRepository defines the persistence contract for admin identities.
type AdminRepository interface {
	FindByUsername(ctx context.Context, username string) (*model.Admin, error)
	Create(ctx context.Context, admin *model.Admin) error
}

// PgAdminRepository is the PostgreSQL implementation of AdminRepository.
type PgAdminRepository struct {
	pool *pgxpool.Pool
}

// NewPgAdminRepository creates a PgAdminRepository backed by the given pool.
func NewPgAdminRepository(pool *pgxpool.Pool) *PgAdminRepository {
	return &PgAdminRepository{pool: pool}
}

var _ AdminRepository = (*PgAdminRepository)(nil)

// FindByUsername returns the admin with the given username, or ErrNotFound.
func (r *PgAdminRepository) FindByUsername(ctx context.Context, username string) (*model.Admin, error) {
	var a model.Admin
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admins WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new admin row. Fails on a duplicate username; password
// rotation goes through the seed-admin upsert instead.
func (r *PgAdminRepository) Create(ctx context.Context, admin *model.Admin) error {
	if admin.ID == "" {
		admin.ID = uuid.NewString()
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO admins (id, username, password_hash) VALUES ($1, $2, $3)
		 RETURNING created_at`,
		admin.ID, admin.Username, admin.PasswordHash,
	).Scan(&admin.CreatedAt)
}

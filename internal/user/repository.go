package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("user: not found")

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{db: pool}
}

func (r *Repository) Create(ctx context.Context, email, name, passwordHash string, role Role) (*User, error) {
	const q = `
INSERT INTO users (email, name, password_hash, role)
VALUES ($1, $2, $3, $4)
RETURNING id, email, name, password_hash, role, created_at
`
	return r.scan(r.db.QueryRow(ctx, q, email, name, passwordHash, string(role)))
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
SELECT id, email, name, password_hash, role, created_at
FROM users
WHERE email = $1
`
	return r.scan(r.db.QueryRow(ctx, q, email))
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	const q = `
SELECT id, email, name, password_hash, role, created_at
FROM users
WHERE id = $1
`
	return r.scan(r.db.QueryRow(ctx, q, id))
}

func (r *Repository) scan(row pgx.Row) (*User, error) {
	u := &User{}
	var role string
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = Role(role)
	return u, nil
}

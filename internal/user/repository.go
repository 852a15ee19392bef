package user

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Role         string    `json:"role"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, email, fullName, passwordHash string) (*User, error) {
	const q = `
INSERT INTO users (email, full_name, role, active, password_hash)
VALUES ($1, $2, 'user', TRUE, $3)
RETURNING id, email, full_name, role, active, password_hash, created_at, updated_at
`
	var u User
	if err := r.db.QueryRow(ctx, q, email, fullName, passwordHash).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	const q = `
SELECT id, email, full_name, role, active, password_hash, created_at, updated_at
FROM users
WHERE lower(email) = lower($1)
`
	var u User
	if err := r.db.QueryRow(ctx, q, email).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (*User, error) {
	const q = `
SELECT id, email, full_name, role, active, password_hash, created_at, updated_at
FROM users
WHERE id = $1
`
	var u User
	if err := r.db.QueryRow(ctx, q, id).Scan(
		&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *Repository) List(ctx context.Context) ([]User, error) {
	const q = `
SELECT id, email, full_name, role, active, password_hash, created_at, updated_at
FROM users
ORDER BY created_at DESC
`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Email, &u.FullName, &u.Role, &u.Active, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *Repository) UpdateRole(ctx context.Context, id, role string) error {
	const q = `UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, q, role, id)
	return err
}

func (r *Repository) SetActive(ctx context.Context, id string, active bool) error {
	const q = `UPDATE users SET active = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.Exec(ctx, q, active, id)
	return err
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/keymint/keymint/internal/model"
)

// Common errors for admin repository operations.
var (
	ErrAdminNotFound = errors.New("admin not found")
	ErrAdminExists   = errors.New("admin email already exists")
)

// CreateAdmin inserts a new admin account.
func (r *Repository) CreateAdmin(ctx context.Context, admin *model.Admin) error {
	query := `
		INSERT INTO admins (id, email, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query,
		admin.ID,
		admin.Email,
		admin.PasswordHash,
		admin.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "admins_email_key") {
			return ErrAdminExists
		}
		return fmt.Errorf("failed to create admin: %w", err)
	}

	return nil
}

// GetAdminByEmail retrieves an admin by exact email match.
func (r *Repository) GetAdminByEmail(ctx context.Context, email string) (*model.Admin, error) {
	query := `
		SELECT id, email, password_hash, created_at
		FROM admins
		WHERE email = $1
	`

	var admin model.Admin
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.PasswordHash,
		&admin.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	return &admin, nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/keymint/keymint/internal/model"
)

// Common errors for API key repository operations.
var (
	ErrKeyExists     = errors.New("API key already exists")
	ErrOwnerNotFound = errors.New("API key owner does not exist")
)

// CreateUserWithKey inserts a user and its first API key as a single
// transaction. Either both rows are committed or neither is; a failure on
// the key insert rolls back the user insert.
func (r *Repository) CreateUserWithKey(ctx context.Context, user *model.User, key *model.APIKey) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	// Rollback is a no-op once the transaction has committed.
	defer func() { _ = tx.Rollback(ctx) }()

	userInsert := `
		INSERT INTO users (id, first_name, last_name, email, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, userInsert,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.CreatedAt,
	); err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	keyInsert := `
		INSERT INTO api_keys (id, user_id, key, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := tx.Exec(ctx, keyInsert,
		key.ID,
		key.UserID,
		key.Key,
		key.ExpiresAt,
		key.CreatedAt,
	); err != nil {
		if isUniqueViolation(err, "api_keys_key_key") {
			return ErrKeyExists
		}
		if isForeignKeyViolation(err) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to create API key: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit issuance: %w", err)
	}

	return nil
}

// CreateAPIKey inserts a new API key for an existing user.
func (r *Repository) CreateAPIKey(ctx context.Context, key *model.APIKey) error {
	query := `
		INSERT INTO api_keys (id, user_id, key, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		key.ID,
		key.UserID,
		key.Key,
		key.ExpiresAt,
		key.CreatedAt,
	)

	if err != nil {
		if isUniqueViolation(err, "api_keys_key_key") {
			return ErrKeyExists
		}
		if isForeignKeyViolation(err) {
			return ErrOwnerNotFound
		}
		return fmt.Errorf("failed to create API key: %w", err)
	}

	return nil
}

// ListAPIKeysWithOwner retrieves every API key joined with its owner's
// email, in creation order. The join is a LEFT JOIN so a key whose owner
// cannot be resolved still appears, with OwnerEmail set to "N/A".
func (r *Repository) ListAPIKeysWithOwner(ctx context.Context) ([]*model.APIKeyListing, error) {
	query := `
		SELECT k.key, k.expires_at, u.email
		FROM api_keys k
		LEFT JOIN users u ON u.id = k.user_id
		ORDER BY k.created_at, k.id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list API keys: %w", err)
	}
	defer rows.Close()

	listings := make([]*model.APIKeyListing, 0)
	for rows.Next() {
		var listing model.APIKeyListing
		var email sql.NullString
		if err := rows.Scan(&listing.Key, &listing.ExpiresAt, &email); err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		if email.Valid {
			listing.OwnerEmail = email.String
		} else {
			listing.OwnerEmail = model.UnknownOwnerEmail
		}
		listings = append(listings, &listing)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API keys: %w", err)
	}

	return listings, nil
}

// CountAPIKeys returns the number of stored API keys.
func (r *Repository) CountAPIKeys(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM api_keys`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count API keys: %w", err)
	}
	return count, nil
}

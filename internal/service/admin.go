package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keymint/keymint/internal/auth"
	"github.com/keymint/keymint/internal/model"
	"github.com/keymint/keymint/internal/repository"
	"github.com/oklog/ulid/v2"
)

// Admin service errors.
var (
	ErrMissingAdminEmail    = errors.New("admin email is required")
	ErrMissingAdminPassword = errors.New("admin password is required")
	// ErrUnauthorized deliberately carries no detail about which of
	// email or password was wrong.
	ErrUnauthorized = errors.New("invalid email or password")
)

// AdminService handles admin registration and login. Passwords are stored
// as argon2id hashes and verified in constant time; the plaintext is
// never persisted.
type AdminService struct {
	repo *repository.Repository
}

// NewAdminService creates a new AdminService.
func NewAdminService(repo *repository.Repository) *AdminService {
	return &AdminService{repo: repo}
}

// Register creates a new admin account and returns it.
func (s *AdminService) Register(ctx context.Context, email, password string) (*model.Admin, error) {
	if email == "" {
		return nil, ErrMissingAdminEmail
	}
	if password == "" {
		return nil, ErrMissingAdminPassword
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.Admin{
		ID:           ulid.Make().String(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateAdmin(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrAdminExists) {
			return nil, ErrDuplicateCredential
		}
		return nil, fmt.Errorf("failed to register admin: %w", err)
	}

	return admin, nil
}

// Login verifies the supplied credentials against the stored hash.
// Returns ErrUnauthorized on any mismatch, including an unknown email.
func (s *AdminService) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrUnauthorized
	}

	admin, err := s.repo.GetAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrAdminNotFound) {
			return ErrUnauthorized
		}
		return fmt.Errorf("failed to look up admin: %w", err)
	}

	ok, err := auth.VerifyPassword(password, admin.PasswordHash)
	if err != nil {
		return fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		return ErrUnauthorized
	}

	return nil
}

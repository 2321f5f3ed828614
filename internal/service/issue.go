// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/keymint/keymint/internal/model"
	"github.com/keymint/keymint/internal/repository"
	"github.com/oklog/ulid/v2"
)

// Service errors.
var (
	ErrMissingFirstName    = errors.New("first name is required")
	ErrMissingEmail        = errors.New("email is required")
	ErrMissingToken        = errors.New("api key token is required")
	ErrTokenTooLong        = errors.New("api key token exceeds maximum length")
	ErrDuplicateCredential = errors.New("email or API key already registered")
)

// IssueService creates a user together with its first API key. This is
// the sole write path for users and keys.
type IssueService struct {
	repo *repository.Repository
}

// NewIssueService creates a new IssueService.
func NewIssueService(repo *repository.Repository) *IssueService {
	return &IssueService{repo: repo}
}

// IssueInput defines input for issuing a user with an API key.
type IssueInput struct {
	FirstName string
	LastName  string
	Email     string
	Token     string
}

// Issue validates the input, computes the key expiry and writes the user
// and key as one atomic unit. On a uniqueness conflict (email or key) it
// returns ErrDuplicateCredential; validation errors are returned before
// any storage access.
func (s *IssueService) Issue(ctx context.Context, input IssueInput) (*model.User, error) {
	if err := validateIssueInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	user := &model.User{
		ID:        ulid.Make().String(),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		CreatedAt: now,
	}

	key := &model.APIKey{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		Key:       input.Token,
		ExpiresAt: ExpiryFrom(now),
		CreatedAt: now,
	}

	if err := s.repo.CreateUserWithKey(ctx, user, key); err != nil {
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrKeyExists) {
			return nil, ErrDuplicateCredential
		}
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	return user, nil
}

// validateIssueInput enforces the required-field checks. Last name is
// optional.
func validateIssueInput(input IssueInput) error {
	if input.FirstName == "" {
		return ErrMissingFirstName
	}
	if input.Email == "" {
		return ErrMissingEmail
	}
	if input.Token == "" {
		return ErrMissingToken
	}
	if len(input.Token) > model.MaxKeyLength {
		return ErrTokenTooLong
	}
	return nil
}

// IsValidationError reports whether err is a caller-input error rather
// than a storage failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingFirstName) ||
		errors.Is(err, ErrMissingEmail) ||
		errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrTokenTooLong)
}

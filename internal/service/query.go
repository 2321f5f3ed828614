package service

import (
	"context"
	"time"

	"github.com/keymint/keymint/internal/model"
	"github.com/keymint/keymint/internal/repository"
)

// QueryService provides read-only aggregation for back-office
// consumption. Every call re-reads the full set; there is no pagination
// or caching.
type QueryService struct {
	repo *repository.Repository
}

// NewQueryService creates a new QueryService.
func NewQueryService(repo *repository.Repository) *QueryService {
	return &QueryService{repo: repo}
}

// ListUsers returns every registered user in creation order.
func (s *QueryService) ListUsers(ctx context.Context) ([]*model.User, error) {
	return s.repo.ListUsers(ctx)
}

// KeyListing is an API key annotated with its derived status and owner
// email at the time of the call.
type KeyListing struct {
	Key        string          `json:"key"`
	ExpiresAt  time.Time       `json:"expires_at"`
	Status     model.KeyStatus `json:"status"`
	OwnerEmail string          `json:"user_email"`
}

// ListAPIKeys returns every API key with its owner's email and a status
// derived from the clock at the moment of the call. Two calls near an
// expiry boundary may legitimately disagree.
func (s *QueryService) ListAPIKeys(ctx context.Context) ([]KeyListing, error) {
	rows, err := s.repo.ListAPIKeysWithOwner(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	listings := make([]KeyListing, 0, len(rows))
	for _, row := range rows {
		listings = append(listings, KeyListing{
			Key:        row.Key,
			ExpiresAt:  row.ExpiresAt,
			Status:     model.StatusOf(row.ExpiresAt, now),
			OwnerEmail: row.OwnerEmail,
		})
	}

	return listings, nil
}

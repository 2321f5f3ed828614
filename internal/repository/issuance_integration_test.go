//go:build integration

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/keymint/keymint/internal/model"
	"github.com/keymint/keymint/internal/testutil"
)

// ============================================================================
// Issuance Integration Tests
// ============================================================================

func TestIntegrationCreateUserWithKey(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("ana"))
	key := testutil.NewTestAPIKey(t, user.ID)

	if err := repo.CreateUserWithKey(ctx, user, key); err != nil {
		t.Fatalf("CreateUserWithKey failed: %v", err)
	}

	// Exactly one user and one key, with the key pointing at the user.
	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("expected 1 user, got %d", len(users))
	}
	if users[0].Email != user.Email {
		t.Errorf("email mismatch: got %q, want %q", users[0].Email, user.Email)
	}

	listings, err := repo.ListAPIKeysWithOwner(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeysWithOwner failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 key, got %d", len(listings))
	}
	if listings[0].OwnerEmail != user.Email {
		t.Errorf("owner email mismatch: got %q, want %q", listings[0].OwnerEmail, user.Email)
	}
}

func TestIntegrationCreateUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("solo"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("id mismatch: got %q, want %q", got.ID, user.ID)
	}
	if got.FirstName != user.FirstName {
		t.Errorf("first name mismatch: got %q, want %q", got.FirstName, user.FirstName)
	}

	// Reusing the email conflicts.
	dup := testutil.NewTestUser(t, user.Email)
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, testutil.UniqueEmail("missing")); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationEmptyListingsRenderAsArrays(t *testing.T) {
	ctx, repo := newTestEnv(t)

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if users == nil {
		t.Error("ListUsers returned a nil slice for an empty store")
	}
	if out, _ := json.Marshal(users); string(out) != "[]" {
		t.Errorf("empty user listing encodes as %s, want []", out)
	}

	listings, err := repo.ListAPIKeysWithOwner(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeysWithOwner failed: %v", err)
	}
	if listings == nil {
		t.Error("ListAPIKeysWithOwner returned a nil slice for an empty store")
	}
	if out, _ := json.Marshal(listings); string(out) != "[]" {
		t.Errorf("empty key listing encodes as %s, want []", out)
	}
}

func TestIntegrationCreateUserWithKey_DuplicateEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)

	email := testutil.UniqueEmail("ana")

	first := testutil.NewTestUser(t, email)
	firstKey := testutil.NewTestAPIKey(t, first.ID)
	firstKey.Key = "sk-abc"
	if err := repo.CreateUserWithKey(ctx, first, firstKey); err != nil {
		t.Fatalf("first issuance failed: %v", err)
	}

	second := testutil.NewTestUser(t, email)
	secondKey := testutil.NewTestAPIKey(t, second.ID)
	secondKey.Key = "sk-def"
	err := repo.CreateUserWithKey(ctx, second, secondKey)
	if !errors.Is(err, ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	// Store still has exactly one key for the email: sk-abc.
	listings, err := repo.ListAPIKeysWithOwner(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeysWithOwner failed: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("expected 1 key after failed re-issue, got %d", len(listings))
	}
	if listings[0].Key != "sk-abc" {
		t.Errorf("surviving key = %q, want sk-abc", listings[0].Key)
	}
}

func TestIntegrationCreateUserWithKey_DuplicateKeyRollsBackUser(t *testing.T) {
	ctx, repo := newTestEnv(t)

	first := testutil.NewTestUser(t, testutil.UniqueEmail("first"))
	firstKey := testutil.NewTestAPIKey(t, first.ID)
	if err := repo.CreateUserWithKey(ctx, first, firstKey); err != nil {
		t.Fatalf("first issuance failed: %v", err)
	}

	// Second issuance reuses the key string; the key insert fails and
	// the user insert must roll back with it.
	second := testutil.NewTestUser(t, testutil.UniqueEmail("second"))
	secondKey := testutil.NewTestAPIKey(t, second.ID)
	secondKey.Key = firstKey.Key
	err := repo.CreateUserWithKey(ctx, second, secondKey)
	if !errors.Is(err, ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}

	if _, err := repo.GetUserByEmail(ctx, second.Email); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected no user row for rolled-back issuance, got %v", err)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 user after rollback, got %d", len(users))
	}
}

func TestIntegrationCreateUserWithKey_ConcurrentSameEmail(t *testing.T) {
	ctx, repo := newTestEnv(t)

	email := testutil.UniqueEmail("race")

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := testutil.NewTestUser(t, email)
			user.ID = testutil.UniqueID("race-user")
			key := testutil.NewTestAPIKey(t, user.ID)
			key.ID = testutil.UniqueID("race-key")
			errs[i] = repo.CreateUserWithKey(ctx, user, key)
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrEmailExists):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if wins != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one winner and one conflict, got %d/%d", wins, conflicts)
	}

	users, err := repo.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected exactly one user for %s, got %d", email, len(users))
	}
}

func TestIntegrationCreateAPIKey_UnknownOwner(t *testing.T) {
	ctx, repo := newTestEnv(t)

	key := testutil.NewTestAPIKey(t, "no-such-user")
	err := repo.CreateAPIKey(ctx, key)
	if !errors.Is(err, ErrOwnerNotFound) {
		t.Fatalf("expected ErrOwnerNotFound, got %v", err)
	}
}

func TestIntegrationListAPIKeysWithOwner_CountMatches(t *testing.T) {
	ctx, repo := newTestEnv(t)

	for i := 0; i < 3; i++ {
		user := testutil.NewTestUser(t, testutil.UniqueEmail("bulk"))
		key := testutil.NewTestAPIKey(t, user.ID)
		if err := repo.CreateUserWithKey(ctx, user, key); err != nil {
			t.Fatalf("issuance %d failed: %v", i, err)
		}
		// Factory IDs are nanosecond based; keep them distinct.
		time.Sleep(time.Millisecond)
	}

	count, err := repo.CountAPIKeys(ctx)
	if err != nil {
		t.Fatalf("CountAPIKeys failed: %v", err)
	}

	listings, err := repo.ListAPIKeysWithOwner(ctx)
	if err != nil {
		t.Fatalf("ListAPIKeysWithOwner failed: %v", err)
	}

	if int64(len(listings)) != count {
		t.Errorf("listing length %d does not match key count %d", len(listings), count)
	}
	for _, listing := range listings {
		if listing.OwnerEmail == model.UnknownOwnerEmail {
			t.Errorf("key %q has unresolved owner", listing.Key)
		}
	}
}

// ============================================================================
// Test environment
// ============================================================================

func newTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := repo.Rollback(ctx); err != nil {
		t.Fatalf("drop schema: %v", err)
	}
	if err := repo.Migrate(ctx); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return ctx, repo
}

package model

import "time"

// KeyStatus is the derived active/inactive classification of an API key.
// It is computed from the expiry timestamp at read time and never stored.
type KeyStatus string

// Key status values.
const (
	StatusActive   KeyStatus = "active"
	StatusInactive KeyStatus = "inactive"
)

// MaxKeyLength is the schema bound on the stored key string.
const MaxKeyLength = 255

// APIKey is a single issued credential. It is created only alongside its
// owning user inside the issuance transaction and is immutable thereafter.
type APIKey struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// StatusOf derives the status of a key from its expiry timestamp. A key is
// inactive once its expiry lies strictly before now.
func StatusOf(expiresAt, now time.Time) KeyStatus {
	if expiresAt.Before(now) {
		return StatusInactive
	}
	return StatusActive
}

// StatusAt evaluates the key's status at the given instant.
func (k *APIKey) StatusAt(now time.Time) KeyStatus {
	return StatusOf(k.ExpiresAt, now)
}

// APIKeyListing is an API key annotated with its owner's email for
// back-office listings. OwnerEmail is "N/A" when the owner row cannot be
// resolved.
type APIKeyListing struct {
	Key        string    `json:"key"`
	ExpiresAt  time.Time `json:"expires_at"`
	OwnerEmail string    `json:"user_email"`
}

// UnknownOwnerEmail is reported when a key's owner cannot be resolved.
// The foreign key makes this unreachable in practice, but the read path
// tolerates it.
const UnknownOwnerEmail = "N/A"

package model

import (
	"testing"
	"time"
)

func TestStatusOf(t *testing.T) {
	base := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name      string
		expiresAt time.Time
		now       time.Time
		want      KeyStatus
	}{
		{
			name:      "expires in the future",
			expiresAt: base.AddDate(1, 0, 0),
			now:       base,
			want:      StatusActive,
		},
		{
			name:      "one second before expiry",
			expiresAt: base.AddDate(1, 0, 0),
			now:       base.AddDate(1, 0, 0).Add(-time.Second),
			want:      StatusActive,
		},
		{
			name:      "exactly at expiry",
			expiresAt: base,
			now:       base,
			want:      StatusActive,
		},
		{
			name:      "one second after expiry",
			expiresAt: base.AddDate(1, 0, 0),
			now:       base.AddDate(1, 0, 0).Add(time.Second),
			want:      StatusInactive,
		},
		{
			name:      "long expired",
			expiresAt: base.AddDate(-2, 0, 0),
			now:       base,
			want:      StatusInactive,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := StatusOf(tc.expiresAt, tc.now)
			if got != tc.want {
				t.Errorf("StatusOf(%v, %v) = %v, want %v", tc.expiresAt, tc.now, got, tc.want)
			}
		})
	}
}

func TestAPIKey_StatusAt_FlipsWithClock(t *testing.T) {
	expiry := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	key := &APIKey{Key: "sk_test", ExpiresAt: expiry}

	// No write happens between the two evaluations; only the clock moves.
	if got := key.StatusAt(expiry.Add(-time.Second)); got != StatusActive {
		t.Errorf("before expiry: got %v, want %v", got, StatusActive)
	}
	if got := key.StatusAt(expiry.Add(time.Second)); got != StatusInactive {
		t.Errorf("after expiry: got %v, want %v", got, StatusInactive)
	}
}

package service

import (
	"context"
	"errors"
	"testing"
)

func TestAdminRegisterValidationErrors(t *testing.T) {
	svc := &AdminService{}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"missing email", "", "p1", ErrMissingAdminEmail},
		{"missing password", "admin@x.com", "", ErrMissingAdminPassword},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), test.email, test.password)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
		})
	}
}

func TestAdminLogin_EmptyCredentialsUnauthorized(t *testing.T) {
	svc := &AdminService{}

	// Empty fields short-circuit to ErrUnauthorized without touching
	// the store, and without revealing which field was wrong.
	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"both empty", "", ""},
		{"empty password", "admin@x.com", ""},
		{"empty email", "", "p1"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := svc.Login(context.Background(), test.email, test.password)
			if !errors.Is(err, ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}

package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/keymint/keymint/internal/model"
)

func TestIssueValidationErrors(t *testing.T) {
	// Validation runs before any storage access, so a zero-value
	// service is safe here.
	svc := &IssueService{}

	longToken := "sk_" + strings.Repeat("a", model.MaxKeyLength)

	tests := []struct {
		name    string
		input   IssueInput
		wantErr error
	}{
		{
			name:    "missing first name",
			input:   IssueInput{Email: "ana@x.com", Token: "sk-abc"},
			wantErr: ErrMissingFirstName,
		},
		{
			name:    "missing email",
			input:   IssueInput{FirstName: "Ana", Token: "sk-abc"},
			wantErr: ErrMissingEmail,
		},
		{
			name:    "missing token",
			input:   IssueInput{FirstName: "Ana", Email: "ana@x.com"},
			wantErr: ErrMissingToken,
		},
		{
			name:    "token too long",
			input:   IssueInput{FirstName: "Ana", Email: "ana@x.com", Token: longToken},
			wantErr: ErrTokenTooLong,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := svc.Issue(context.Background(), test.input)
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("expected %v, got %v", test.wantErr, err)
			}
			if !IsValidationError(err) {
				t.Errorf("expected %v to be a validation error", err)
			}
		})
	}
}

func TestIssueValidation_LastNameOptional(t *testing.T) {
	err := validateIssueInput(IssueInput{
		FirstName: "Ana",
		Email:     "ana@x.com",
		Token:     "sk-abc",
	})
	if err != nil {
		t.Fatalf("expected no error for missing last name, got %v", err)
	}
}

func TestIsValidationError_DoesNotMatchStorageErrors(t *testing.T) {
	if IsValidationError(ErrDuplicateCredential) {
		t.Error("duplicate credential should not be a validation error")
	}
	if IsValidationError(errors.New("connection refused")) {
		t.Error("arbitrary error should not be a validation error")
	}
}

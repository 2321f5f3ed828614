package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/keymint/keymint/internal/service"
)

// IssueHandler serves the user+key issuance endpoint.
type IssueHandler struct {
	service *service.IssueService
	logger  *slog.Logger
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(svc *service.IssueService, logger *slog.Logger) *IssueHandler {
	return &IssueHandler{service: svc, logger: logger}
}

// IssueRequest is the request body for issuing a user with an API key.
type IssueRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Email     string `json:"email"`
	APIKey    string `json:"api_key"`
}

// IssueResponse confirms a successful issuance.
type IssueResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

// Create handles POST /users.
// Creates a user together with its first API key as one atomic unit.
func (h *IssueHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req IssueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	user, err := h.service.Issue(r.Context(), service.IssueInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Token:     req.APIKey,
	})
	if err != nil {
		switch {
		case service.IsValidationError(err):
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		case errors.Is(err, service.ErrDuplicateCredential):
			writeError(w, http.StatusConflict, "DUPLICATE_CREDENTIAL", "Email or API key already registered")
		default:
			h.logger.Error("failed to issue credential", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to save user and API key")
		}
		return
	}

	h.logger.Info("credential issued",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	writeJSON(w, http.StatusCreated, IssueResponse{
		Message: "User and API key created",
		UserID:  user.ID,
	})
}

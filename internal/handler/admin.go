package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/keymint/keymint/internal/service"
)

// AdminHandler serves admin registration, login and back-office listings.
type AdminHandler struct {
	admins  *service.AdminService
	queries *service.QueryService
	logger  *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(admins *service.AdminService, queries *service.QueryService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		admins:  admins,
		queries: queries,
		logger:  logger,
	}
}

// CredentialsRequest is the request body for register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms a created admin account.
type RegisterResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Register handles POST /admin/register.
func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	admin, err := h.admins.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingAdminEmail), errors.Is(err, service.ErrMissingAdminPassword):
			writeError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		case errors.Is(err, service.ErrDuplicateCredential):
			writeError(w, http.StatusConflict, "DUPLICATE_CREDENTIAL", "Admin email already registered")
		default:
			h.logger.Error("failed to register admin", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create admin")
		}
		return
	}

	h.logger.Info("admin registered", slog.String("admin_id", admin.ID))

	writeJSON(w, http.StatusCreated, RegisterResponse{
		Message: "Admin created",
		ID:      admin.ID,
	})
}

// Login handles POST /admin/login.
// Responds 401 on any mismatch without saying which field was wrong.
func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	if err := h.admins.Login(r.Context(), req.Email, req.Password); err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
			return
		}
		h.logger.Error("failed to log in admin", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful"})
}

// ListUsers handles GET /admin/users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.queries.ListUsers(r.Context())
	if err != nil {
		h.logger.Error("failed to list users", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list users")
		return
	}

	writeJSON(w, http.StatusOK, users)
}

// ListAPIKeys handles GET /admin/apikeys.
// Each row carries the owner's email and a status derived from the clock
// at the moment of this call.
func (h *AdminHandler) ListAPIKeys(w http.ResponseWriter, r *http.Request) {
	keys, err := h.queries.ListAPIKeys(r.Context())
	if err != nil {
		h.logger.Error("failed to list API keys", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list API keys")
		return
	}

	writeJSON(w, http.StatusOK, keys)
}

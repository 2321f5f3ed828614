package handler

import (
	"log/slog"
	"net/http"

	"github.com/keymint/keymint/internal/auth"
)

// TokenHandler serves opaque token generation for the issuance form.
type TokenHandler struct {
	logger *slog.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(logger *slog.Logger) *TokenHandler {
	return &TokenHandler{logger: logger}
}

// TokenResponse carries a freshly generated API key token.
type TokenResponse struct {
	APIKey string `json:"api_key"`
}

// Generate handles POST /generate-key.
// The token is returned to the caller and only persisted if the caller
// submits it through the issuance endpoint.
func (h *TokenHandler) Generate(w http.ResponseWriter, r *http.Request) {
	token, err := auth.GenerateToken()
	if err != nil {
		h.logger.Error("failed to generate token", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate API key")
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{APIKey: token})
}

package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dawsdoon/AutoCare/internal/auth"
	"github.com/dawsdoon/AutoCare/internal/booking"
)

func registerHandler(repo booking.Repository, m *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		req.Email = strings.TrimSpace(strings.ToLower(req.Email))
		if req.Name == "" || req.Email == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "name and email are required")
			return
		}
		if !strings.Contains(req.Email, "@") {
			writeError(w, http.StatusBadRequest, "invalid_email", "email format is invalid")
			return
		}
		if len(req.Password) < 8 {
			writeError(w, http.StatusBadRequest, "weak_password", "password must be at least 8 characters")
			return
		}

		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		u, err := repo.CreateUser(r.Context(), &booking.User{
			Name:         req.Name,
			Email:        req.Email,
			PasswordHash: hash,
			Role:         booking.RoleCustomer,
		})
		if err != nil {
			if errors.Is(err, booking.ErrEmailTaken) {
				writeError(w, http.StatusConflict, "email_taken", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		token, err := m.IssueToken(u.ID, u.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, AuthResponse{
			Token: token,
			User:  toUserResponse(u),
		})
	}
}

func loginHandler(repo booking.Repository, m *auth.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		email := strings.TrimSpace(strings.ToLower(req.Email))

		u, err := repo.GetUserByEmail(r.Context(), email)
		if err != nil {
			// Same response for unknown email and bad password.
			writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials.Error())
			return
		}

		if !auth.CheckPassword(req.Password, u.PasswordHash) {
			writeError(w, http.StatusUnauthorized, "invalid_credentials", auth.ErrInvalidCredentials.Error())
			return
		}

		token, err := m.IssueToken(u.ID, u.Role)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, AuthResponse{
			Token: token,
			User:  toUserResponse(u),
		})
	}
}

func toUserResponse(u *booking.User) UserResponse {
	return UserResponse{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

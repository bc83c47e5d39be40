package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/marketplace-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// SignUpEnvelope wraps the 201 response for a new registration.
type SignUpEnvelope struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	Message string `json:"message,omitempty"`
}

// LoginEnvelope wraps login/refresh responses.
type LoginEnvelope struct {
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresIn    int64     `json:"expiresIn"`
	User         *SafeUser `json:"user,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// SafeUser is the identity payload merged with its profile document, minus
// the credential hash.
type SafeUser struct {
	UID           string          `json:"uid"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	EmailVerified bool            `json:"emailVerified"`
	Profile       *domain.Profile `json:"profile,omitempty"`
}

func toSafeUser(u *domain.User, p *domain.Profile) *SafeUser {
	if u == nil {
		return nil
	}
	return &SafeUser{
		UID:           u.UserID,
		Email:         u.Email,
		Name:          u.Name,
		Role:          u.Role,
		EmailVerified: u.EmailVerified,
		Profile:       p,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP responses. OTP failures are
// deliberately indistinct: missing, expired, and wrong codes all read the
// same to the caller.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidOTP):
		writeError(w, http.StatusBadRequest, "Invalid or expired OTP.")
	case errors.Is(err, domain.ErrBadRequest), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrUnverified):
		writeError(w, http.StatusForbidden, "Account not verified. A new OTP has been sent to your email.")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrDeliveryFailed):
		writeError(w, http.StatusInternalServerError, "Failed to send OTP. Please try again later.")
	default:
		slog.Error("unhandled error", "err", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

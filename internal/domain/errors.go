package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrInvalidOTP is the single error kind the API exposes for a missing,
	// expired, or mismatched code. The OTP engine logs the specific cause;
	// callers must not be able to tell them apart.
	ErrInvalidOTP = errors.New("invalid or expired OTP")

	// ErrUnverified rejects logins and password recovery for accounts that
	// have not completed email verification.
	ErrUnverified = errors.New("account not verified")

	// ErrDeliveryFailed reports a mail send failure after the OTP record was
	// already persisted.
	ErrDeliveryFailed = errors.New("mail delivery failed")
)

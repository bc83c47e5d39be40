package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/marketplace-api/internal/domain"
)

// Validity is how long an issued code stays accepted. A stale record is not
// garbage-collected here; it stays until overwritten or consumed.
const Validity = 10 * time.Minute

const (
	codeMin  = 100000
	codeSpan = 900000
)

// Engine generates, stores, dispatches, and consumes one-time codes for the
// email-verification and password-reset flows.
type Engine interface {
	// Issue writes a fresh code for (flow, email), overwriting any prior
	// record, and mails it. A mail failure surfaces ErrDeliveryFailed with
	// the record already persisted.
	Issue(ctx context.Context, flow, email string) (int, error)
	// Reissue re-sends the existing code when it is still live (age <
	// Validity) and falls back to Issue otherwise.
	Reissue(ctx context.Context, flow, email string) (int, error)
	// Verify accepts submitted iff it equals the stored code and the record
	// is at most Validity old, then deletes the record (single use). Every
	// rejection surfaces domain.ErrInvalidOTP; the specific cause is only
	// logged.
	Verify(ctx context.Context, flow, email, submitted string) error
}

type otpStore interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, flow, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, flow, email string) error
}

type mailer interface {
	SendEmail(to, subject, body string) error
}

var mailTemplates = map[string]struct{ subject, body string }{
	domain.FlowEmailVerification: {
		subject: "Verify Your Email Address",
		body:    "Your OTP for email verification is: %d. It is valid for 10 minutes.",
	},
	domain.FlowPasswordReset: {
		subject: "Your Password Reset OTP",
		body:    "Your OTP for password reset is: %d. It is valid for 10 minutes.",
	},
}

type engine struct {
	repo   otpStore
	mailer mailer
}

func NewEngine(repo otpStore, m mailer) Engine {
	return &engine{repo: repo, mailer: m}
}

// GenerateCode returns a uniform 6-digit code in [100000, 999999].
func GenerateCode() (int, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return 0, fmt.Errorf("generate otp: %w", err)
	}
	return codeMin + int(n.Int64()), nil
}

func (e *engine) Issue(ctx context.Context, flow, email string) (int, error) {
	if _, ok := mailTemplates[flow]; !ok {
		return 0, fmt.Errorf("unknown otp flow %q: %w", flow, domain.ErrBadRequest)
	}
	code, err := GenerateCode()
	if err != nil {
		return 0, err
	}
	now := time.Now()
	rec := &domain.OTPRecord{
		Email:     email,
		Flow:      flow,
		Code:      code,
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(Validity).Unix(),
	}
	if err := e.repo.Put(ctx, rec); err != nil {
		return 0, err
	}
	if err := e.send(flow, email, code); err != nil {
		// The record is already persisted; the caller has to rely on a
		// subsequent resend.
		slog.Error("otp mail dispatch failed", "flow", flow, "email", email, "err", err)
		return code, fmt.Errorf("send otp email: %w", domain.ErrDeliveryFailed)
	}
	return code, nil
}

func (e *engine) Reissue(ctx context.Context, flow, email string) (int, error) {
	rec, err := e.repo.Get(ctx, flow, email)
	if err == nil && time.Now().UnixMilli()-rec.CreatedAt < Validity.Milliseconds() {
		if err := e.send(flow, email, rec.Code); err != nil {
			slog.Error("otp mail re-dispatch failed", "flow", flow, "email", email, "err", err)
			return rec.Code, fmt.Errorf("send otp email: %w", domain.ErrDeliveryFailed)
		}
		return rec.Code, nil
	}
	return e.Issue(ctx, flow, email)
}

func (e *engine) Verify(ctx context.Context, flow, email, submitted string) error {
	code, convErr := strconv.Atoi(strings.TrimSpace(submitted))
	if convErr != nil {
		slog.Info("otp rejected", "flow", flow, "email", email, "cause", "not numeric")
		return fmt.Errorf("code is not numeric: %w", domain.ErrInvalidOTP)
	}

	rec, err := e.repo.Get(ctx, flow, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			slog.Info("otp rejected", "flow", flow, "email", email, "cause", "no record")
			return fmt.Errorf("no active code: %w", domain.ErrInvalidOTP)
		}
		return err
	}

	if time.Now().UnixMilli()-rec.CreatedAt > Validity.Milliseconds() {
		slog.Info("otp rejected", "flow", flow, "email", email, "cause", "expired")
		return fmt.Errorf("code expired: %w", domain.ErrInvalidOTP)
	}

	if rec.Code != code {
		slog.Info("otp rejected", "flow", flow, "email", email, "cause", "mismatch")
		return fmt.Errorf("code mismatch: %w", domain.ErrInvalidOTP)
	}

	// Single-use: the record must be gone before verification succeeds.
	if err := e.repo.Delete(ctx, flow, email); err != nil {
		return err
	}
	return nil
}

func (e *engine) send(flow, email string, code int) error {
	tpl, ok := mailTemplates[flow]
	if !ok {
		return fmt.Errorf("unknown otp flow %q: %w", flow, domain.ErrBadRequest)
	}
	return e.mailer.SendEmail(email, tpl.subject, fmt.Sprintf(tpl.body, code))
}

package http

import (
	"context"
	"io"

	"github.com/marketplace-api/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

// ProfileRepository is the minimal interface the router requires from a profile store.
type ProfileRepository interface {
	Upsert(ctx context.Context, userID string, fields map[string]interface{}) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Scan(ctx context.Context) ([]domain.Profile, error)
}

// ListingRepository is the minimal interface the router requires from a listing store.
type ListingRepository interface {
	Put(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	Scan(ctx context.Context) ([]domain.Listing, error)
	QueryByProvider(ctx context.Context, providerID string) ([]domain.Listing, error)
	Update(ctx context.Context, listingID string, updates map[string]interface{}) error
	Delete(ctx context.Context, listingID string) error
}

// OTPRepository is the minimal interface the router requires from a one-time-code store.
type OTPRepository interface {
	Put(ctx context.Context, rec *domain.OTPRecord) error
	Get(ctx context.Context, flow, email string) (*domain.OTPRecord, error)
	Delete(ctx context.Context, flow, email string) error
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

// ObjectStore is the minimal interface the router requires from an object storage backend.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Download(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

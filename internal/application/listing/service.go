package listing

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/id"
)

type Service interface {
	Create(ctx context.Context, req domain.CreateListingRequest) (*domain.Listing, error)
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	List(ctx context.Context) ([]domain.Listing, error)
	ListByProvider(ctx context.Context, providerID string) ([]domain.Listing, error)
	Update(ctx context.Context, listingID string, req domain.UpdateListingRequest) (*domain.Listing, error)
	Delete(ctx context.Context, listingID string) error
}

type listingStore interface {
	Put(ctx context.Context, l *domain.Listing) error
	Get(ctx context.Context, listingID string) (*domain.Listing, error)
	Scan(ctx context.Context) ([]domain.Listing, error)
	QueryByProvider(ctx context.Context, providerID string) ([]domain.Listing, error)
	Update(ctx context.Context, listingID string, updates map[string]interface{}) error
	Delete(ctx context.Context, listingID string) error
}

type profileStore interface {
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type service struct {
	repo     listingStore
	profiles profileStore
}

func NewService(repo listingStore, profiles profileStore) Service {
	return &service{repo: repo, profiles: profiles}
}

// Create resolves the provider through the profile of the given user; a
// listing cannot exist without one.
func (s *service) Create(ctx context.Context, req domain.CreateListingRequest) (*domain.Listing, error) {
	p, err := s.profiles.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("profile not found for the given userId: %w", domain.ErrNotFound)
	}
	now := time.Now().UTC()
	l := &domain.Listing{
		ListingID:    id.New(),
		ProviderID:   p.UserID,
		Title:        req.Title,
		Description:  req.Description,
		Price:        *req.Price,
		Availability: *req.Availability,
		Location:     req.Location,
		Category:     req.Category,
		Rating:       0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Put(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *service) Get(ctx context.Context, listingID string) (*domain.Listing, error) {
	return s.repo.Get(ctx, listingID)
}

func (s *service) List(ctx context.Context) ([]domain.Listing, error) {
	return s.repo.Scan(ctx)
}

func (s *service) ListByProvider(ctx context.Context, providerID string) ([]domain.Listing, error) {
	listings, err := s.repo.QueryByProvider(ctx, providerID)
	if err != nil {
		return nil, err
	}
	if len(listings) == 0 {
		return nil, fmt.Errorf("no services found for this provider: %w", domain.ErrNotFound)
	}
	return listings, nil
}

func (s *service) Update(ctx context.Context, listingID string, req domain.UpdateListingRequest) (*domain.Listing, error) {
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Availability != nil {
		updates["availability"] = *req.Availability
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if len(updates) == 0 {
		return nil, fmt.Errorf("no data provided for update: %w", domain.ErrBadRequest)
	}
	if err := s.repo.Update(ctx, listingID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, listingID)
}

func (s *service) Delete(ctx context.Context, listingID string) error {
	return s.repo.Delete(ctx, listingID)
}

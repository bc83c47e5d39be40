package profile

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/marketplace-api/internal/domain"
	s3infra "github.com/marketplace-api/internal/infrastructure/s3"
)

// MaxImageSize caps profile image uploads at 2 MB.
const MaxImageSize = 2 << 20

// ImageUpload is an incoming profile image from a multipart request.
type ImageUpload struct {
	Filename string
	Data     io.Reader
}

type Service interface {
	// Update merge-writes the provided fields into the profile document,
	// creating it when absent, and stores the image (if any) in S3.
	Update(ctx context.Context, userID string, req domain.UpdateProfileRequest, image *ImageUpload) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	List(ctx context.Context) ([]domain.Profile, error)
}

type profileStore interface {
	Upsert(ctx context.Context, userID string, fields map[string]interface{}) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
	Scan(ctx context.Context) ([]domain.Profile, error)
}

type objectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
}

type service struct {
	repo    profileStore
	objects objectStore
}

func NewService(repo profileStore, objects objectStore) Service {
	return &service{repo: repo, objects: objects}
}

func (s *service) Update(ctx context.Context, userID string, req domain.UpdateProfileRequest, image *ImageUpload) error {
	fields := map[string]interface{}{"user_id": userID}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}
	if req.ContactInfo != nil {
		fields["contact_info"] = *req.ContactInfo
	}
	if req.Location != nil {
		fields["location"] = *req.Location
	}
	if req.Skills != nil {
		fields["skills"] = splitCSV(*req.Skills)
	}
	if req.ExperienceYears != nil {
		n, err := strconv.Atoi(strings.TrimSpace(*req.ExperienceYears))
		if err != nil {
			return fmt.Errorf("experienceYears must be a number: %w", domain.ErrBadRequest)
		}
		fields["experience_years"] = n
	}
	if req.ServicesOffered != nil {
		fields["services_offered"] = splitCSV(*req.ServicesOffered)
	}
	if req.ServiceArea != nil {
		fields["service_area"] = *req.ServiceArea
	}
	if req.Availability != nil {
		fields["availability"] = *req.Availability
	}
	if req.ServiceNeeds != nil {
		fields["service_needs"] = *req.ServiceNeeds
	}
	if req.PreferredServiceTypes != nil {
		fields["preferred_service_types"] = splitCSV(*req.PreferredServiceTypes)
	}
	if req.LocationPreferences != nil {
		fields["location_preferences"] = *req.LocationPreferences
	}

	if image != nil {
		ext := strings.ToLower(filepath.Ext(image.Filename))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			return fmt.Errorf("only .png, .jpg, and .jpeg formats are allowed: %w", domain.ErrBadRequest)
		}
		key := "uploads/" + userID + ext
		if _, err := s.objects.Upload(ctx, key, image.Data, s3infra.ContentTypeFor(image.Filename)); err != nil {
			return err
		}
		fields["profile_image"] = key
	}

	return s.repo.Upsert(ctx, userID, fields)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.repo.Get(ctx, userID)
}

func (s *service) List(ctx context.Context) ([]domain.Profile, error) {
	return s.repo.Scan(ctx)
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

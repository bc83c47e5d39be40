package profile

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockProfileStore struct{ mock.Mock }

func (m *mockProfileStore) Upsert(ctx context.Context, userID string, fields map[string]interface{}) error {
	return m.Called(ctx, userID, fields).Error(0)
}
func (m *mockProfileStore) Get(ctx context.Context, userID string) (*domain.Profile, error) {
	args := m.Called(ctx, userID)
	if p, _ := args.Get(0).(*domain.Profile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockProfileStore) Scan(ctx context.Context) ([]domain.Profile, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Profile), args.Error(1)
}

type mockObjectStore struct{ mock.Mock }

func (m *mockObjectStore) Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, key, r, contentType)
	return args.String(0), args.Error(1)
}

func strp(v string) *string { return &v }

// --- Update ---

func TestUpdate_BuildsFieldMapFromProvidedValues(t *testing.T) {
	repo := &mockProfileStore{}
	var fields map[string]interface{}
	repo.On("Upsert", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		fields = args.Get(2).(map[string]interface{})
	}).Return(nil)

	svc := NewService(repo, &mockObjectStore{})
	err := svc.Update(context.Background(), "u1", domain.UpdateProfileRequest{
		Name:            strp("Ann"),
		Skills:          strp("plumbing, wiring , carpentry"),
		ExperienceYears: strp("5"),
	}, nil)

	require.NoError(t, err)
	assert.Equal(t, "u1", fields["user_id"])
	assert.Equal(t, "Ann", fields["name"])
	assert.Equal(t, []string{"plumbing", "wiring", "carpentry"}, fields["skills"])
	assert.Equal(t, 5, fields["experience_years"])
	_, hasLocation := fields["location"]
	assert.False(t, hasLocation)
}

func TestUpdate_NonNumericExperienceYears(t *testing.T) {
	svc := NewService(&mockProfileStore{}, &mockObjectStore{})
	err := svc.Update(context.Background(), "u1", domain.UpdateProfileRequest{
		ExperienceYears: strp("five"),
	}, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_RejectsUnsupportedImageFormat(t *testing.T) {
	svc := NewService(&mockProfileStore{}, &mockObjectStore{})
	err := svc.Update(context.Background(), "u1", domain.UpdateProfileRequest{}, &ImageUpload{
		Filename: "avatar.gif",
		Data:     strings.NewReader("gifdata"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_UploadsImageAndRecordsKey(t *testing.T) {
	repo := &mockProfileStore{}
	objects := &mockObjectStore{}
	var fields map[string]interface{}
	repo.On("Upsert", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		fields = args.Get(2).(map[string]interface{})
	}).Return(nil)
	objects.On("Upload", mock.Anything, "uploads/u1.png", mock.Anything, "image/png").
		Return("uploads/u1.png", nil)

	svc := NewService(repo, objects)
	err := svc.Update(context.Background(), "u1", domain.UpdateProfileRequest{}, &ImageUpload{
		Filename: "avatar.PNG",
		Data:     strings.NewReader("pngdata"),
	})

	require.NoError(t, err)
	assert.Equal(t, "uploads/u1.png", fields["profile_image"])
	objects.AssertExpectations(t)
}

func TestUpdate_UploadFailureSkipsUpsert(t *testing.T) {
	repo := &mockProfileStore{}
	objects := &mockObjectStore{}
	objects.On("Upload", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("", errors.New("s3 unavailable"))

	svc := NewService(repo, objects)
	err := svc.Update(context.Background(), "u1", domain.UpdateProfileRequest{}, &ImageUpload{
		Filename: "avatar.jpg",
		Data:     strings.NewReader("jpgdata"),
	})

	require.Error(t, err)
	repo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything, mock.Anything)
}

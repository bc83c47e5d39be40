package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/marketplace-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- mocks ---

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) Get(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockUserStore) Update(ctx context.Context, userID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, updates).Error(0)
}

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

type mockSessionStore struct{ mock.Mock }

func (m *mockSessionStore) Put(ctx context.Context, s *domain.Session) error {
	return m.Called(ctx, s).Error(0)
}
func (m *mockSessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockSessionStore) RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error {
	return m.Called(ctx, sessionID, newToken, newExpiry).Error(0)
}

type mockOTPEngine struct{ mock.Mock }

func (m *mockOTPEngine) Issue(ctx context.Context, flow, email string) (int, error) {
	args := m.Called(ctx, flow, email)
	return args.Int(0), args.Error(1)
}
func (m *mockOTPEngine) Reissue(ctx context.Context, flow, email string) (int, error) {
	args := m.Called(ctx, flow, email)
	return args.Int(0), args.Error(1)
}
func (m *mockOTPEngine) Verify(ctx context.Context, flow, email, submitted string) error {
	return m.Called(ctx, flow, email, submitted).Error(0)
}

type mockJWTSigner struct{ mock.Mock }

func (m *mockJWTSigner) Sign(userID, role, sessionID string) (string, error) {
	args := m.Called(userID, role, sessionID)
	return args.String(0), args.Error(1)
}
func (m *mockJWTSigner) Expiry() time.Duration {
	return time.Hour
}

// --- builder ---

func newService(us *mockUserStore, ps *mockProfileStore, ss *mockSessionStore, eng *mockOTPEngine, jwt *mockJWTSigner) Service {
	return NewService(ServiceDeps{
		UserRepo:        us,
		ProfileRepo:     ps,
		SessionRepo:     ss,
		OTPEngine:       eng,
		JWTProvider:     jwt,
		RefreshTokenDur: 30 * 24 * time.Hour,
	})
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

// --- SignUp ---

func TestSignUp_DuplicateEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)

	svc := newService(us, nil, nil, nil, nil)
	_, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email: "a@b.com", Password: "secret1", Name: "Ann",
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestSignUp_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ps := &mockProfileStore{}
	eng := &mockOTPEngine{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(nil, domain.ErrNotFound)
	var created *domain.User
	us.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		created = args.Get(1).(*domain.User)
	}).Return(nil)
	ps.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	eng.On("Issue", mock.Anything, domain.FlowEmailVerification, "a@b.com").Return(123456, nil)

	svc := newService(us, ps, nil, eng, nil)
	u, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email: "a@b.com", Password: "secret1", Name: "Ann",
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotEmpty(t, u.UserID)
	assert.Equal(t, domain.RoleClient, u.Role) // default when omitted
	assert.False(t, u.EmailVerified)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
	eng.AssertExpectations(t)
}

func TestSignUp_KeepsExplicitRole(t *testing.T) {
	us := &mockUserStore{}
	ps := &mockProfileStore{}
	eng := &mockOTPEngine{}

	us.On("GetByEmail", mock.Anything, "p@b.com").Return(nil, domain.ErrNotFound)
	us.On("Put", mock.Anything, mock.Anything).Return(nil)
	ps.On("Upsert", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	eng.On("Issue", mock.Anything, domain.FlowEmailVerification, "p@b.com").Return(123456, nil)

	svc := newService(us, ps, nil, eng, nil)
	u, err := svc.SignUp(context.Background(), domain.SignUpRequest{
		Email: "p@b.com", Password: "secret1", Name: "Pro", Role: domain.RoleProvider,
	})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleProvider, u.Role)
}

// --- ResendOTP ---

func TestResendOTP_UnregisteredEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "nobody@b.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil)
	err := svc.ResendOTP(context.Background(), "nobody@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestResendOTP_IssuesFreshCode(t *testing.T) {
	us := &mockUserStore{}
	eng := &mockOTPEngine{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	eng.On("Issue", mock.Anything, domain.FlowEmailVerification, "a@b.com").Return(222333, nil)

	svc := newService(us, nil, nil, eng, nil)
	require.NoError(t, svc.ResendOTP(context.Background(), "a@b.com"))
	eng.AssertExpectations(t)
}

// --- VerifyEmailOTP ---

func TestVerifyEmailOTP_FlipsBothStores(t *testing.T) {
	us := &mockUserStore{}
	ps := &mockProfileStore{}
	eng := &mockOTPEngine{}

	eng.On("Verify", mock.Anything, domain.FlowEmailVerification, "a@b.com", "123456").Return(nil)
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	us.On("Update", mock.Anything, "u1", map[string]interface{}{"email_verified": true}).Return(nil)
	ps.On("Upsert", mock.Anything, "u1", map[string]interface{}{"email_verified": true}).Return(nil)

	svc := newService(us, ps, nil, eng, nil)
	require.NoError(t, svc.VerifyEmailOTP(context.Background(), "a@b.com", "123456"))
	us.AssertExpectations(t)
	ps.AssertExpectations(t)
}

func TestVerifyEmailOTP_BadCode(t *testing.T) {
	eng := &mockOTPEngine{}
	eng.On("Verify", mock.Anything, domain.FlowEmailVerification, "a@b.com", "000000").
		Return(domain.ErrInvalidOTP)

	svc := newService(nil, nil, nil, eng, nil)
	err := svc.VerifyEmailOTP(context.Background(), "a@b.com", "000000")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

// --- Login ---

func TestLogin_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "x@x.com", Password: "pw"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_WrongPassword(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", PasswordHash: hashOf(t, "right"),
	}, nil)

	svc := newService(us, nil, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "wrong"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestLogin_UnverifiedAccountGetsNewOTP(t *testing.T) {
	us := &mockUserStore{}
	eng := &mockOTPEngine{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", PasswordHash: hashOf(t, "secret1"), EmailVerified: false,
	}, nil)
	eng.On("Issue", mock.Anything, domain.FlowEmailVerification, "a@b.com").Return(444555, nil)

	svc := newService(us, nil, nil, eng, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "secret1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnverified))
	eng.AssertExpectations(t)
}

func TestLogin_MissingProfile(t *testing.T) {
	us := &mockUserStore{}
	ps := &mockProfileStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", PasswordHash: hashOf(t, "secret1"), EmailVerified: true,
	}, nil)
	ps.On("Get", mock.Anything, "u1").Return(nil, domain.ErrNotFound)

	svc := newService(us, ps, nil, nil, nil)
	_, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "secret1"})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestLogin_HappyPath(t *testing.T) {
	us := &mockUserStore{}
	ps := &mockProfileStore{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}

	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", Role: domain.RoleClient,
		PasswordHash: hashOf(t, "secret1"), EmailVerified: true,
	}, nil)
	ps.On("Get", mock.Anything, "u1").Return(&domain.Profile{UserID: "u1"}, nil)
	var sess *domain.Session
	ss.On("Put", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sess = args.Get(1).(*domain.Session)
	}).Return(nil)
	jwt.On("Sign", "u1", domain.RoleClient, mock.Anything).Return("signed.jwt", nil)

	svc := newService(us, ps, ss, nil, jwt)
	res, err := svc.Login(context.Background(), domain.LoginRequest{Email: "a@b.com", Password: "secret1"})

	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "signed.jwt", res.Token)
	assert.Equal(t, sess.RefreshToken, res.RefreshToken)
	assert.Equal(t, int64(3600), res.ExpiresIn)
	assert.Equal(t, "u1", sess.UserID)
	assert.NotNil(t, res.Profile)
}

// --- ForgotPassword ---

func TestForgotPassword_UnknownEmail(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "x@x.com").Return(nil, domain.ErrNotFound)

	svc := newService(us, nil, nil, nil, nil)
	err := svc.ForgotPassword(context.Background(), "x@x.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestForgotPassword_UnverifiedGetsVerificationOTP(t *testing.T) {
	us := &mockUserStore{}
	eng := &mockOTPEngine{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", EmailVerified: false,
	}, nil)
	eng.On("Issue", mock.Anything, domain.FlowEmailVerification, "a@b.com").Return(111222, nil)

	svc := newService(us, nil, nil, eng, nil)
	err := svc.ForgotPassword(context.Background(), "a@b.com")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnverified))
	eng.AssertNotCalled(t, "Reissue", mock.Anything, mock.Anything, mock.Anything)
}

func TestForgotPassword_VerifiedReissuesResetCode(t *testing.T) {
	us := &mockUserStore{}
	eng := &mockOTPEngine{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{
		UserID: "u1", Email: "a@b.com", EmailVerified: true,
	}, nil)
	eng.On("Reissue", mock.Anything, domain.FlowPasswordReset, "a@b.com").Return(333444, nil)

	svc := newService(us, nil, nil, eng, nil)
	require.NoError(t, svc.ForgotPassword(context.Background(), "a@b.com"))
	eng.AssertExpectations(t)
}

// --- ResetPassword ---

func TestResetPassword_TooShort(t *testing.T) {
	svc := newService(nil, nil, nil, nil, nil)
	err := svc.ResetPassword(context.Background(), "a@b.com", "12345")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestResetPassword_ReplacesHash(t *testing.T) {
	us := &mockUserStore{}
	us.On("GetByEmail", mock.Anything, "a@b.com").Return(&domain.User{UserID: "u1"}, nil)
	var updates map[string]interface{}
	us.On("Update", mock.Anything, "u1", mock.Anything).Run(func(args mock.Arguments) {
		updates = args.Get(2).(map[string]interface{})
	}).Return(nil)

	svc := newService(us, nil, nil, nil, nil)
	require.NoError(t, svc.ResetPassword(context.Background(), "a@b.com", "newsecret"))

	require.Contains(t, updates, "password_hash")
	hash := updates["password_hash"].(string)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("newsecret")))
}

// --- Refresh ---

func TestRefresh_UnknownToken(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "bogus").Return(nil, domain.ErrNotFound)

	svc := newService(nil, nil, ss, nil, nil)
	_, err := svc.Refresh(context.Background(), "bogus")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_ExpiredSession(t *testing.T) {
	ss := &mockSessionStore{}
	ss.On("GetByRefreshToken", mock.Anything, "old").Return(&domain.Session{
		SessionID: "s1", UserID: "u1",
		RefreshExpiresAt: time.Now().Add(-time.Hour).Unix(),
	}, nil)

	svc := newService(nil, nil, ss, nil, nil)
	_, err := svc.Refresh(context.Background(), "old")

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestRefresh_RotatesToken(t *testing.T) {
	us := &mockUserStore{}
	ss := &mockSessionStore{}
	jwt := &mockJWTSigner{}

	ss.On("GetByRefreshToken", mock.Anything, "live").Return(&domain.Session{
		SessionID: "s1", UserID: "u1",
		RefreshExpiresAt: time.Now().Add(time.Hour).Unix(),
	}, nil)
	us.On("Get", mock.Anything, "u1").Return(&domain.User{UserID: "u1", Role: domain.RoleClient}, nil)
	ss.On("RotateRefreshToken", mock.Anything, "s1", mock.Anything, mock.Anything).Return(nil)
	jwt.On("Sign", "u1", domain.RoleClient, "s1").Return("signed.jwt", nil)

	svc := newService(us, nil, ss, nil, jwt)
	res, err := svc.Refresh(context.Background(), "live")

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", res.Token)
	assert.NotEqual(t, "live", res.RefreshToken)
	ss.AssertExpectations(t)
}

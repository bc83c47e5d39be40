package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/domain"
	"github.com/marketplace-api/internal/pkg/id"
	pkgtoken "github.com/marketplace-api/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldEmailVerified = "email_verified"
	fieldPasswordHash  = "password_hash"
)

// LoginResult is what a successful login or refresh hands back to the client.
type LoginResult struct {
	Token        string
	RefreshToken string
	ExpiresIn    int64 // seconds
	User         *domain.User
	Profile      *domain.Profile
}

type Service interface {
	SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error)
	ResendOTP(ctx context.Context, email string) error
	VerifyEmailOTP(ctx context.Context, email, code string) error
	Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyResetOTP(ctx context.Context, email, code string) error
	ResetPassword(ctx context.Context, email, newPassword string) error
	Refresh(ctx context.Context, refreshToken string) (*LoginResult, error)
}

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type profileStore interface {
	Upsert(ctx context.Context, userID string, fields map[string]interface{}) error
	Get(ctx context.Context, userID string) (*domain.Profile, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error)
	RotateRefreshToken(ctx context.Context, sessionID, newToken string, newExpiry int64) error
}

type jwtSigner interface {
	Sign(userID, role, sessionID string) (string, error)
	Expiry() time.Duration
}

type service struct {
	users           userStore
	profiles        profileStore
	sessions        sessionStore
	otp             otp.Engine
	jwt             jwtSigner
	refreshTokenDur time.Duration
}

type ServiceDeps struct {
	UserRepo        userStore
	ProfileRepo     profileStore
	SessionRepo     sessionStore
	OTPEngine       otp.Engine
	JWTProvider     jwtSigner
	RefreshTokenDur time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		users:           deps.UserRepo,
		profiles:        deps.ProfileRepo,
		sessions:        deps.SessionRepo,
		otp:             deps.OTPEngine,
		jwt:             deps.JWTProvider,
		refreshTokenDur: deps.RefreshTokenDur,
	}
}

// SignUp creates the credential record and its profile mirror, then issues a
// verification code. On mail failure the user and the code both exist
// already; the client recovers via resendOTP.
func (s *service) SignUp(ctx context.Context, req domain.SignUpRequest) (*domain.User, error) {
	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("email is already in use: %w", domain.ErrConflict)
	}
	role := req.Role
	if role == "" {
		role = domain.RoleClient
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	u := &domain.User{
		UserID:        id.New(),
		Email:         req.Email,
		Name:          req.Name,
		Role:          role,
		PasswordHash:  string(hash),
		EmailVerified: false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.users.Put(ctx, u); err != nil {
		return nil, err
	}
	if err := s.profiles.Upsert(ctx, u.UserID, map[string]interface{}{
		"user_id":        u.UserID,
		"email":          u.Email,
		"name":           u.Name,
		"role":           u.Role,
		"email_verified": false,
		"created_at":     now.Format(time.RFC3339),
	}); err != nil {
		return nil, err
	}
	if _, err := s.otp.Issue(ctx, domain.FlowEmailVerification, u.Email); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) ResendOTP(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return fmt.Errorf("email is not registered: %w", domain.ErrBadRequest)
	}
	_, err := s.otp.Issue(ctx, domain.FlowEmailVerification, email)
	return err
}

// VerifyEmailOTP consumes the code and flips email_verified in both the
// credential record and the profile mirror. The two writes are independent
// round trips; if the second fails the stores disagree until a retry.
func (s *service) VerifyEmailOTP(ctx context.Context, email, code string) error {
	if err := s.otp.Verify(ctx, domain.FlowEmailVerification, email, code); err != nil {
		return err
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no account for verified email: %w", domain.ErrNotFound)
	}
	if err := s.users.Update(ctx, u.UserID, map[string]interface{}{fieldEmailVerified: true}); err != nil {
		return err
	}
	return s.profiles.Upsert(ctx, u.UserID, map[string]interface{}{fieldEmailVerified: true})
}

// Login authenticates and, for unverified accounts, dispatches a fresh
// verification code instead of a token.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*LoginResult, error) {
	u, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)
	}
	if !u.EmailVerified {
		if _, err := s.otp.Issue(ctx, domain.FlowEmailVerification, u.Email); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("a new OTP has been sent to your email: %w", domain.ErrUnverified)
	}
	p, err := s.profiles.Get(ctx, u.UserID)
	if err != nil {
		// Should not happen under correct dual-write; surfaced as a
		// data-consistency failure.
		return nil, fmt.Errorf("profile missing for user: %w", domain.ErrNotFound)
	}
	return s.openSession(ctx, u, p)
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no account with this email: %w", domain.ErrNotFound)
	}
	if !u.EmailVerified {
		if _, err := s.otp.Issue(ctx, domain.FlowEmailVerification, email); err != nil {
			return err
		}
		return fmt.Errorf("a new OTP has been sent to your email: %w", domain.ErrUnverified)
	}
	// Idempotent within the validity window: a live code is re-sent as is.
	_, err = s.otp.Reissue(ctx, domain.FlowPasswordReset, email)
	return err
}

func (s *service) VerifyResetOTP(ctx context.Context, email, code string) error {
	return s.otp.Verify(ctx, domain.FlowPasswordReset, email, code)
}

// ResetPassword replaces the credential outright. Nothing binds this call to
// a prior successful VerifyResetOTP; any registered email can be targeted.
func (s *service) ResetPassword(ctx context.Context, email, newPassword string) error {
	if len(newPassword) < 6 {
		return fmt.Errorf("password must be at least 6 characters long: %w", domain.ErrBadRequest)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("no account with this email: %w", domain.ErrNotFound)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.users.Update(ctx, u.UserID, map[string]interface{}{fieldPasswordHash: string(hash)})
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	sess, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", domain.ErrUnauthorized)
	}
	now := time.Now().UTC()
	if sess.RefreshExpiresAt < now.Unix() {
		return nil, fmt.Errorf("refresh token expired: %w", domain.ErrUnauthorized)
	}
	u, err := s.users.Get(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	newToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	if err := s.sessions.RotateRefreshToken(ctx, sess.SessionID, newToken, now.Add(s.refreshTokenDur).Unix()); err != nil {
		return nil, err
	}
	bearer, err := s.jwt.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:        bearer,
		RefreshToken: newToken,
		ExpiresIn:    int64(s.jwt.Expiry().Seconds()),
		User:         u,
	}, nil
}

func (s *service) openSession(ctx context.Context, u *domain.User, p *domain.Profile) (*LoginResult, error) {
	refreshToken, err := pkgtoken.NewRefreshToken()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	sess := &domain.Session{
		SessionID:        id.New(),
		UserID:           u.UserID,
		RefreshToken:     refreshToken,
		RefreshExpiresAt: now.Add(s.refreshTokenDur).Unix(),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwt.Sign(u.UserID, u.Role, sess.SessionID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token:        bearer,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.jwt.Expiry().Seconds()),
		User:         u,
		Profile:      p,
	}, nil
}

package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/marketplace-api/internal/application/auth"
	"github.com/marketplace-api/internal/application/listing"
	"github.com/marketplace-api/internal/application/otp"
	"github.com/marketplace-api/internal/application/profile"
	"github.com/marketplace-api/internal/config"
	"github.com/marketplace-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/marketplace-api/internal/infrastructure/jwt"
	s3infra "github.com/marketplace-api/internal/infrastructure/s3"
	"github.com/marketplace-api/internal/infrastructure/smtp"
	"github.com/marketplace-api/internal/transport/http/handler"
	appmiddleware "github.com/marketplace-api/internal/transport/http/middleware"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    *dynamo.UserRepo
	ProfileRepo *dynamo.ProfileRepo
	ListingRepo *dynamo.ListingRepo
	OTPRepo     *dynamo.OTPRepo
	SessionRepo *dynamo.SessionRepo
	S3Store     *s3infra.Store
	Mailer      smtp.Mailer
	JWTProvider *jwtinfra.Provider
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10 — applied to the public auth endpoints.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	otpEngine := otp.NewEngine(deps.OTPRepo, deps.Mailer)
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:        deps.UserRepo,
		ProfileRepo:     deps.ProfileRepo,
		SessionRepo:     deps.SessionRepo,
		OTPEngine:       otpEngine,
		JWTProvider:     deps.JWTProvider,
		RefreshTokenDur: time.Duration(cfg.RefreshTokenExpiryDays) * 24 * time.Hour,
	})
	profileSvc := profile.NewService(deps.ProfileRepo, deps.S3Store)
	listingSvc := listing.NewService(deps.ListingRepo, deps.ProfileRepo)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc)
	profileH := handler.NewProfileHandler(profileSvc)
	listingH := handler.NewListingHandler(listingSvc)

	r.Get("/health-check/ping", healthH.Ping)

	r.Route("/api", func(r chi.Router) {
		// ── Public auth routes ───────────────────────────────────────────────
		r.Route("/auth", func(r chi.Router) {
			r.With(sensitiveRL.Limit).Post("/signUp", authH.SignUp)
			r.With(sensitiveRL.Limit).Post("/login", authH.Login)
			r.With(sensitiveRL.Limit).Post("/resendOTP", authH.ResendOTP)
			r.With(sensitiveRL.Limit).Post("/verifyEmailOTP", authH.VerifyEmailOTP)
			r.With(sensitiveRL.Limit).Post("/forgotPassword", authH.ForgotPassword)
			r.With(sensitiveRL.Limit).Post("/verifyOTP", authH.VerifyOTP)
			r.With(sensitiveRL.Limit).Post("/resetPassword", authH.ResetPassword)
			r.Post("/refresh", authH.Refresh)
		})

		// ── Profiles: reads are public, edits require auth ───────────────────
		r.Route("/profile", func(r chi.Router) {
			r.Get("/getProfile/{userId}", profileH.Get)
			r.Get("/getAllProfiles", profileH.List)
			r.With(authMw).Put("/editProfile/{userId}", profileH.Edit)
		})

		// ── Service listings: reads are public, mutations require auth ───────
		r.Route("/service", func(r chi.Router) {
			r.Get("/getServiceById/{serviceId}", listingH.Get)
			r.Get("/getAllServices", listingH.List)
			r.Get("/getServicesByProviderId/{providerId}", listingH.ListByProvider)
			r.Group(func(r chi.Router) {
				r.Use(authMw)
				r.Post("/postService", listingH.Create)
				r.Put("/updateService/{serviceId}", listingH.Update)
				r.Delete("/deleteService/{serviceId}", listingH.Delete)
			})
		})
	})

	return r
}

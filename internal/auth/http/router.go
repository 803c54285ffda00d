package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/meridianapps/meridian/internal/auth/service"
	"github.com/meridianapps/meridian/internal/auth/store"
	"github.com/meridianapps/meridian/pkg/httpx"
	"github.com/meridianapps/meridian/pkg/jwtx"
	"github.com/meridianapps/meridian/pkg/slogx"

	_ "github.com/meridianapps/meridian/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	signer       *jwtx.Signer
	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store               store.Store
	TokenService        *service.TokenService
	LoginService        *service.LoginService
	MFAService          *service.MFAService
	SignupService       *service.SignupService
	ResetService        *service.PasswordResetService
	VerificationService *service.VerificationService
}

func NewRouter(
	signer *jwtx.Signer,
	verifier *jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		signer:       signer,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerSignup()
	r.registerPasswordReset()
	r.registerVerifyEmail()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Meridian Authentication Service API
//	@version		0.1.0
//	@description	Authentication backend for the Meridian admin application: email/password
//	@description	sign in with TOTP and backup-code MFA, workspace signup, password reset,
//	@description	and email verification. Access tokens are EdDSA-signed JWTs; refresh
//	@description	tokens are opaque and rotated on every use.
//
//	@contact.name				Meridian Platform Team
//	@contact.url				https://github.com/meridianapps/meridian
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// POST /login - strict rate limit by IP (authentication attempts)
	r.Mux.Handle("POST /v1/login",
		httpx.Chain(&LoginHandler{LoginService: r.LoginService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /mfa/verify - strict rate limit by IP (code guessing)
	mfaHandler := &MFAHandler{MFAService: r.MFAService}
	r.Mux.Handle("POST /v1/mfa/verify",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleVerify),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// MFA management - authenticated, limited per user
	r.Mux.Handle("POST /v1/mfa/totp/enroll",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/mfa/totp/activate",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleActivate),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/mfa",
		httpx.Chain(http.HandlerFunc(mfaHandler.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// POST /token/refresh - moderate rate limit (legitimate clients refresh
	// at most every few minutes)
	r.Mux.Handle("POST /v1/token/refresh",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// POST /logout - moderate rate limit
	r.Mux.Handle("POST /v1/logout",
		httpx.Chain(&LogoutHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSignup() {
	// POST /signup - strict rate limit by IP (public account creation)
	r.Mux.Handle("POST /v1/signup",
		httpx.Chain(&SignupHandler{SignupService: r.SignupService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerPasswordReset() {
	h := &PasswordResetHandler{ResetService: r.ResetService}

	// POST /password-reset/request - strict rate limit (sends email)
	r.Mux.Handle("POST /v1/password-reset/request",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// GET /password-reset/validate - lenient (page load on every visit)
	r.Mux.Handle("GET /v1/password-reset/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	// POST /password-reset/confirm - strict rate limit (token guessing)
	r.Mux.Handle("POST /v1/password-reset/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerVerifyEmail() {
	h := &VerifyEmailHandler{VerificationService: r.VerificationService}

	r.Mux.Handle("GET /v1/verify-email/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /v1/verify-email/confirm",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Resend has its own per-account cooldown in the service; the IP limit
	// here only guards against bulk abuse.
	r.Mux.Handle("POST /v1/verify-email/resend",
		httpx.Chain(http.HandlerFunc(h.HandleResend),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.signer),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

package routes

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/domain"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/config"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/handlers"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// ServiceSet groups the services the HTTP layer depends on.
type ServiceSet struct {
	Auth          *usecase.AuthService
	Accounts      *usecase.AccountService
	PasswordReset *usecase.PasswordResetService
	Patients      *usecase.PatientService
	Visits        *usecase.VisitService
	Billing       *usecase.BillingService
	Certificates  *usecase.CertificateService
	Chat          *usecase.ChatService
	Stealth       *usecase.StealthService
}

// Dependencies encapsulates the objects required to register routes.
type Dependencies struct {
	Config      *config.AppConfig
	Logger      *zap.Logger
	RateLimiter *middleware.RateLimiter
	Metrics     *middleware.HTTPMetrics
	Services    ServiceSet
	Database    DatabaseChecker
	Cache       CacheChecker
}

// DatabaseChecker exposes readiness behaviour for database connections.
type DatabaseChecker interface {
	Ping(ctx context.Context) error
}

// CacheChecker exposes readiness behaviour for cache backends.
type CacheChecker interface {
	HealthCheck(ctx context.Context) error
}

// Register configures the Gin engine with routes and middleware.
func Register(deps Dependencies) *gin.Engine {
	if deps.Config.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.EnrichContext())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(deps.Logger))

	if len(deps.Config.App.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(deps.Config.App.AllowedOrigins))
	}

	if deps.Metrics != nil {
		r.Use(deps.Metrics.Handler())
	}

	authMiddleware := middleware.RequireAuth(deps.Services.Auth, deps.Config.Session.CookieName)

	healthOptions := make([]handlers.HealthOption, 0, 2)

	if deps.Database != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("database", deps.Database.Ping))
	}

	if deps.Cache != nil {
		healthOptions = append(healthOptions, handlers.WithReadinessCheck("redis", deps.Cache.HealthCheck))
	}

	healthHandler := handlers.NewHealthHandler(healthOptions...)

	r.GET("/healthz", healthHandler.Status)
	r.GET("/readyz", healthHandler.Readiness)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")
	{
		isDev := deps.Config.App.Env == "development"
		secureCookies := deps.Config.App.TLSEnabled

		authGroup := api.Group("/auth")
		authHandler := handlers.NewAuthHandler(deps.Services.Auth, deps.Services.Accounts, deps.Config.Session.CookieName, secureCookies)
		authHandler.RegisterRoutes(authGroup, authMiddleware, buildLoginMiddlewares(deps)...)

		passwordHandler := handlers.NewPasswordHandler(deps.Services.PasswordReset, deps.Services.Accounts, deps.Logger, isDev)

		passwordGroup := authGroup.Group("/password")
		passwordGroup.POST("/change", authMiddleware, passwordHandler.Change)
		passwordGroup.POST("/strength", passwordHandler.Strength)

		resetMiddlewares := buildPasswordResetMiddlewares(deps)

		forgotChain := append([]gin.HandlerFunc{}, resetMiddlewares...)
		forgotChain = append(forgotChain, passwordHandler.Forgot)
		passwordGroup.POST("/forgot", forgotChain...)

		resetChain := append([]gin.HandlerFunc{}, resetMiddlewares...)
		resetChain = append(resetChain, passwordHandler.Reset)
		passwordGroup.POST("/reset", resetChain...)

		// Account administration belongs to the top role alone.
		accountGroup := api.Group("/accounts")
		accountGroup.Use(authMiddleware, middleware.RequireRole(domain.RoleTopUser))
		handlers.NewAccountHandler(deps.Services.Accounts).RegisterRoutes(accountGroup)

		// Clinical and billing routes require a logged-in staff member.
		patientGroup := api.Group("/patients")
		patientGroup.Use(authMiddleware, middleware.RequireRole(domain.RoleSecretary))
		handlers.NewPatientHandler(deps.Services.Patients).RegisterRoutes(patientGroup)

		visitGroup := api.Group("/visits")
		visitGroup.Use(authMiddleware, middleware.RequireRole(domain.RoleSecretary))
		handlers.NewVisitHandler(deps.Services.Visits).RegisterRoutes(patientGroup, visitGroup)

		serviceGroup := api.Group("/services")
		serviceGroup.Use(authMiddleware, middleware.RequireRole(domain.RoleSecretary))

		invoiceGroup := api.Group("/invoices")
		invoiceGroup.Use(authMiddleware, middleware.RequireRole(domain.RoleSecretary))
		handlers.NewBillingHandler(deps.Services.Billing).RegisterRoutes(serviceGroup, invoiceGroup)

		// Only doctors sign certificates; everyone logged in may verify them.
		certificateGroup := api.Group("/certificates")
		certificateGroup.Use(authMiddleware)
		handlers.NewCertificateHandler(deps.Services.Certificates).RegisterRoutes(certificateGroup, middleware.RequireRole(domain.RoleDoctor))

		chatGroup := api.Group("/chat")
		chatGroup.Use(authMiddleware)
		handlers.NewChatHandler(deps.Services.Chat, deps.Services.Accounts).RegisterRoutes(chatGroup)

		if deps.Services.Stealth != nil {
			stealthGroup := api.Group("/stealth")
			stealthGroup.Use(authMiddleware, middleware.RequireRole(domain.RoleTopUser))
			handlers.NewStealthHandler(deps.Services.Stealth).RegisterRoutes(stealthGroup)
		}
	}

	return r
}

func buildLoginMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.LoginMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Minute
	}

	rule := middleware.RateLimitRule{
		Name:       "auth_login_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}

func buildPasswordResetMiddlewares(deps Dependencies) []gin.HandlerFunc {
	if deps.RateLimiter == nil || deps.Config == nil {
		return nil
	}

	limit := deps.Config.RateLimit.PasswordResetMaxAttempts
	if limit <= 0 {
		return nil
	}

	window := deps.Config.RateLimit.WindowDuration
	if window <= 0 {
		window = time.Hour
	}

	rule := middleware.RateLimitRule{
		Name:       "password_reset_ip",
		Limit:      limit,
		Window:     window,
		Identifier: middleware.ClientIPIdentifier(),
	}

	return []gin.HandlerFunc{deps.RateLimiter.RateLimit(rule)}
}

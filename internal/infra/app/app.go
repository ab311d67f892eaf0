package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Fragarianos1981/Dr.platiPel/internal/core/port"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/config"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/database"
	kafkainfra "github.com/Fragarianos1981/Dr.platiPel/internal/infra/kafka"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/logger"
	redisinfra "github.com/Fragarianos1981/Dr.platiPel/internal/infra/redis"
	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/security"
	postgresrepo "github.com/Fragarianos1981/Dr.platiPel/internal/repository/postgres"
	redisrepo "github.com/Fragarianos1981/Dr.platiPel/internal/repository/redis"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/middleware"
	"github.com/Fragarianos1981/Dr.platiPel/internal/transport/http/routes"
	"github.com/Fragarianos1981/Dr.platiPel/internal/usecase"
)

// Application owns the process-wide resources and the HTTP engine.
type Application struct {
	cfg    *config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	pool   *pgxpool.Pool
	redis  *redisinfra.Client
}

// New builds the full application graph from configuration.
func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	argonCfg := security.Argon2Config{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	}
	if err := security.ConfigureArgon2(argonCfg); err != nil {
		return nil, fmt.Errorf("configure argon2: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)
	sessionStore := redisrepo.NewSessionStore(redisClient.Client(), cfg.Session.KeyPrefix)

	var eventPublisher port.EventPublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaProducer, err := kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(kafkaProducer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	stealthBox, err := security.NewStealthBox(cfg.Stealth.Secret, cfg.Stealth.Salt)
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init stealth box: %w", err)
	}

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), "plati:rate-limit", rateLimitWindow*2)

	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	httpMetrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		_ = redisClient.Close()
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	authService := usecase.NewAuthService(repos.Accounts, sessionStore, eventPublisher, log)
	accountService := usecase.NewAccountService(repos.Accounts, sessionStore, eventPublisher, log)
	passwordResetService := usecase.NewPasswordResetService(repos.Accounts, sessionStore, eventPublisher, log)
	patientService := usecase.NewPatientService(repos.Patients, log)
	visitService := usecase.NewVisitService(repos.Visits, repos.Vaccinations, repos.Patients, log)
	billingService := usecase.NewBillingService(repos.Services, repos.Invoices, repos.Patients, log)
	certificateService := usecase.NewCertificateService(repos.Certificates, repos.Patients, eventPublisher, log)
	chatService := usecase.NewChatService(repos.Chat, log)
	stealthService := usecase.NewStealthService(repos.Stealth, stealthBox, eventPublisher, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     httpMetrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:          authService,
			Accounts:      accountService,
			PasswordReset: passwordResetService,
			Patients:      patientService,
			Visits:        visitService,
			Billing:       billingService,
			Certificates:  certificateService,
			Chat:          chatService,
			Stealth:       stealthService,
		},
	})

	return &Application{
		cfg:    cfg,
		engine: engine,
		logger: log,
		pool:   pool,
		redis:  redisClient,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	defer func() {
		_ = a.logger.Sync()
	}()
	defer func() {
		if a.pool != nil {
			a.pool.Close()
		}
	}()
	defer func() {
		if a.redis != nil {
			_ = a.redis.Close()
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", a.cfg.App.Host, a.cfg.App.Port),
		Handler:           a.engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	a.logger.Info("starting practice API",
		zap.String("env", a.cfg.App.Env),
		zap.String("address", srv.Addr),
	)

	serverErrCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrCh <- fmt.Errorf("run server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown server: %w", err)
		}
		return nil
	case err := <-serverErrCh:
		return err
	}
}

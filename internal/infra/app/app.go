package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/razbensimon/hit-computer-security-project/internal/core/port"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/config"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/database"
	kafkainfra "github.com/razbensimon/hit-computer-security-project/internal/infra/kafka"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/logger"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/notify"
	redisinfra "github.com/razbensimon/hit-computer-security-project/internal/infra/redis"
	"github.com/razbensimon/hit-computer-security-project/internal/infra/security"
	postgresrepo "github.com/razbensimon/hit-computer-security-project/internal/repository/postgres"
	redisrepo "github.com/razbensimon/hit-computer-security-project/internal/repository/redis"
	"github.com/razbensimon/hit-computer-security-project/internal/transport/http/middleware"
	"github.com/razbensimon/hit-computer-security-project/internal/transport/http/routes"
	"github.com/razbensimon/hit-computer-security-project/internal/usecase"
)

type Application struct {
	cfg      *config.AppConfig
	engine   *gin.Engine
	logger   *zap.Logger
	pool     *pgxpool.Pool
	redis    *redisinfra.Client
	producer *kafkainfra.Producer
}

func New(ctx context.Context, cfg *config.AppConfig) (*Application, error) {
	log, err := logger.New(cfg.App.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres, log)
	if err != nil {
		return nil, fmt.Errorf("init postgres: %w", err)
	}

	hasher, err := security.NewHasher(cfg.Auth.SecretSalt, security.HasherConfig{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	if err != nil {
		return nil, fmt.Errorf("init hasher: %w", err)
	}

	codec, err := security.NewSessionTokenCodec(cfg.Session.SigningKey, cfg.App.Name, cfg.Session.TTL)
	if err != nil {
		return nil, fmt.Errorf("init session codec: %w", err)
	}

	redisClient, err := redisinfra.NewClient(cfg.Redis, log)
	if err != nil {
		return nil, fmt.Errorf("init redis: %w", err)
	}

	repos := postgresrepo.NewRepositories(pool)

	var eventPublisher port.EventPublisher
	var producer *kafkainfra.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		producer, err = kafkainfra.NewProducer(cfg.Kafka, log)
		if err != nil {
			log.Warn("failed to init kafka producer, using stub publisher", zap.Error(err))
			eventPublisher = kafkainfra.NewStubPublisher(log)
		} else {
			eventPublisher = kafkainfra.NewEventPublisher(producer, cfg.App, log)
			log.Info("kafka event publisher initialized", zap.Strings("brokers", cfg.Kafka.Brokers))
		}
	} else {
		log.Info("kafka brokers not configured, using stub publisher")
		eventPublisher = kafkainfra.NewStubPublisher(log)
	}

	passwordValidator := security.DefaultPasswordValidator(cfg.Auth.MinPasswordLength)

	rateLimitWindow := cfg.RateLimit.WindowDuration
	if rateLimitWindow <= 0 {
		rateLimitWindow = time.Minute
	}
	rateLimitStore := redisrepo.NewRateLimitRepository(redisClient.Client(), redisrepo.SlidingWindowConfig{
		KeyPrefix: "portal:rate-limit",
		TTL:       rateLimitWindow * 2,
	})

	rateLimiter := middleware.NewRateLimiter(rateLimitStore, log)

	metrics, err := middleware.NewHTTPMetrics(middleware.HTTPMetricsOptions{})
	if err != nil {
		return nil, fmt.Errorf("init http metrics: %w", err)
	}

	notifier := notify.NewLoggingNotifier(log)

	authService := usecase.NewAuthService(repos.Accounts, hasher, codec, eventPublisher, log, cfg.Auth.LockoutThreshold)
	registrationService := usecase.NewRegistrationService(repos.Accounts, hasher, passwordValidator, eventPublisher, log)
	passwordService := usecase.NewPasswordService(repos.Accounts, hasher, passwordValidator, notifier, eventPublisher, log,
		cfg.Auth.PasswordHistorySize, cfg.Auth.TempPasswordLength)
	adminService := usecase.NewAdminService(repos.Accounts, eventPublisher, log)
	customerService := usecase.NewCustomerService(repos.Customers, log)

	engine := routes.Register(routes.Dependencies{
		Config:      cfg,
		Logger:      log,
		RateLimiter: rateLimiter,
		Metrics:     metrics,
		Database:    pool,
		Cache:       redisClient,
		Services: routes.ServiceSet{
			Auth:         authService,
			Registration: registrationService,
			Password:     passwordService,
			Admin:        adminService,
			Customers:    customerService,
		},
	})

	return &Application{
		cfg:      cfg,
		engine:   engine,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
	}, nil
}

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
	defer func() {
		if a.producer != nil {
			_ = a.producer.Close()
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

	a.logger.Info("starting customer portal API",
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

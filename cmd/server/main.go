// @title           socialid API
// @version         1.0
// @description     Headless social account authentication.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialid/internal/auth"
	"socialid/internal/auth/facebook"
	"socialid/internal/auth/github"
	"socialid/internal/auth/google"
	"socialid/internal/auth/oidc"
	"socialid/internal/config"
	"socialid/internal/email/noop"
	"socialid/internal/email/ses"
	"socialid/internal/handler"
	"socialid/internal/logger"
	"socialid/internal/metrics"
	"socialid/internal/port"
	"socialid/internal/repository/postgres"
	"socialid/internal/router"
	"socialid/internal/service"
	"socialid/internal/storage/memory"
	redisstore "socialid/internal/storage/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	env := "dev"
	if cfg.Server.IsProduction() || cfg.Log.Format == "json" {
		env = "prod"
		gin.SetMode(gin.ReleaseMode)
	}
	appLog := logger.Init(logger.Config{Env: env, Level: cfg.Log.Level, ServiceName: "socialid"})
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	checks := map[string]handler.Pinger{"postgres": db.PingContext}

	// Initialize repositories
	userRepo := postgres.NewUserRepo(db)
	accountRepo := postgres.NewSocialAccountRepo(db)

	// Providers
	httpClient := &http.Client{Timeout: cfg.Social.VerifyTimeout}
	registry := auth.NewRegistry(auth.NewStaticAppRepository(cfg.Social.Apps), cfg.Social.ProviderCacheTTL)
	registry.RegisterFactory(google.Kind, google.Factory(google.DefaultEndpoints, oidc.WithHTTPClient(httpClient)))
	registry.RegisterFactory(facebook.Kind, facebook.Factory(facebook.DefaultEndpoints, oidc.WithHTTPClient(httpClient)))
	registry.RegisterFactory(github.Kind, github.Factory)
	registry.RegisterFactory(oidc.Kind, oidc.Factory(oidc.WithHTTPClient(httpClient)))
	appLog.Info("social apps configured", zap.Int("count", len(cfg.Social.Apps)))

	// Pending social logins
	var pending port.PendingLoginStore
	switch cfg.Social.PendingStore {
	case "memory":
		pending = memory.NewPendingLoginStore(cfg.Social.PendingLoginTTL)
	case "redis":
		rdb, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer rdb.Close()
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		pending = redisstore.NewPendingLoginStore(rdb, cfg.Redis.Prefix, cfg.Social.PendingLoginTTL)
	default:
		return fmt.Errorf("unknown social.pending_store %q", cfg.Social.PendingStore)
	}

	// Email
	var emailer port.EmailSender
	switch cfg.Email.Provider {
	case "ses":
		emailer, err = ses.NewSESSender(ctx, &cfg.Email)
		if err != nil {
			return fmt.Errorf("failed to initialize SES sender: %w", err)
		}
	default:
		emailer = noop.NewNoopSender()
	}

	m := metrics.New()

	// Initialize services
	authSvc := service.NewAuthService(userRepo, cfg.JWT)
	socialSvc := service.NewSocialAccountService(
		registry,
		accountRepo,
		userRepo,
		pending,
		service.NewDisconnectPolicy(userRepo, cfg.Signup),
		emailer,
		authSvc,
		cfg.Signup,
		cfg.Social,
		m.ObserveVerification,
	)

	// Initialize handlers
	authH := handler.NewAuthHandler(authSvc)
	socialH := handler.NewSocialHandler(socialSvc)
	configH := handler.NewConfigHandler(socialSvc, cfg.Signup)
	healthH := handler.NewHealthHandler(checks)
	adminH := handler.NewAdminHandler(registry)

	// Setup router
	r := router.Setup(cfg, authSvc, userRepo, m, authH, socialH, configH, healthH, adminH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("server starting", zap.String("addr", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	appLog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	appLog.Info("server stopped cleanly")
	return nil
}

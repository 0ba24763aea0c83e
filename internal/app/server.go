// internal/app/server.go
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"settings-service/internal/config"
	"settings-service/internal/db"
	"settings-service/internal/gateway/razorpay"
	authHandler "settings-service/internal/handlers/auth"
	billingHandler "settings-service/internal/handlers/billing"
	eventsHandler "settings-service/internal/handlers/events"
	plansHandler "settings-service/internal/handlers/plans"
	settingsHandler "settings-service/internal/handlers/settings"
	"settings-service/internal/middleware"
	"settings-service/internal/pkg/jwt"
	"settings-service/internal/pkg/prefcache"
	"settings-service/internal/pkg/ratelimit"
	"settings-service/internal/repository/postgres"
	authService "settings-service/internal/service/auth"
	billingService "settings-service/internal/service/billing"
	plansService "settings-service/internal/service/plans"
	settingsService "settings-service/internal/service/settings"
	"settings-service/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	http   *http.Server
	pool   *pgxpool.Pool
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	s.pool = pool

	// ----- Redis -----
	redisClient, err := db.NewRedisClient(db.RedisConfig{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
		PoolSize: 10,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- JWT Manager -----
	jwtManager, err := jwt.NewManager(s.cfg.JWT)
	if err != nil {
		return fmt.Errorf("failed to build JWT manager: %w", err)
	}

	// ----- Repositories -----
	txRunner := postgres.NewDB(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	subscriptionRepo := postgres.NewSubscriptionRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	settingsRepo := postgres.NewSettingsRepository(pool)

	// ----- WebSocket hub -----
	hub := ws.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	gateway := razorpay.NewGateway(s.cfg.Razorpay, logger)
	stateStore := billingService.NewRedisStateStore(redisClient)
	prefs := prefcache.New(redisClient, logger)

	authSvc := authService.NewService(
		accountRepo,
		jwtManager,
		ratelimit.NewLimiter(redisClient, "login", 5, 15*time.Minute),
		logger,
	)
	planSvc := plansService.NewService(planRepo, logger)
	settingsSvc := settingsService.NewService(settingsRepo, prefs, logger)
	billingSvc := billingService.NewService(
		planRepo,
		subscriptionRepo,
		couponRepo,
		accountRepo,
		gateway,
		txRunner,
		stateStore,
		ratelimit.NewCouponLimiter(redisClient),
		hub,
		s.cfg.GSTPercent,
		logger,
	)

	// ----- Bootstrap admin -----
	if s.cfg.AdminEmail != "" {
		if _, err := authSvc.EnsureAdmin(ctx, s.cfg.AdminEmail, s.cfg.AdminPassword, s.cfg.AdminName); err != nil {
			logger.Error("failed to seed admin account", zap.Error(err))
		}
	}

	// ----- Handlers -----
	handlers := &Handlers{
		AuthHandler:     authHandler.NewAuthHandler(authSvc, logger),
		PlanHandler:     plansHandler.NewPlanHandler(planSvc),
		BillingHandler:  billingHandler.NewBillingHandler(billingSvc, logger),
		SettingsHandler: settingsHandler.NewSettingsHandler(settingsSvc),
		EventsHandler:   eventsHandler.NewEventsHandler(hub, logger),
		AuthMiddleware:  middleware.NewAuthMiddleware(jwtManager),
	}

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(s.cfg.AllowedOrigins),
	)
	SetupRouter(s.engine, handlers)

	s.http = &http.Server{
		Addr:         s.cfg.HTTPAddr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("server listening", zap.String("addr", s.cfg.HTTPAddr))
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and releases the connection pools.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http != nil {
		if err := s.http.Shutdown(ctx); err != nil {
			return err
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	if s.logger != nil {
		s.logger.Sync()
	}
	return nil
}

// Package server wires configuration, storage, services, and routes into a
// running HTTP server with graceful shutdown.
package server

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shashiranjanraj/vastra/app/controllers"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/app/routes"
	"github.com/shashiranjanraj/vastra/app/services"
	"github.com/shashiranjanraj/vastra/config"
	"github.com/shashiranjanraj/vastra/pkg/database"
	"github.com/shashiranjanraj/vastra/pkg/logger"
	"github.com/shashiranjanraj/vastra/pkg/metrics"
	"github.com/shashiranjanraj/vastra/pkg/middleware"
	"github.com/shashiranjanraj/vastra/pkg/payment"
	"github.com/shashiranjanraj/vastra/pkg/reqid"
	"github.com/shashiranjanraj/vastra/pkg/router"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server owns the HTTP listener and the connections it must release on
// shutdown.
type Server struct {
	http    *http.Server
	db      *mongo.Database
	rdb     *redis.Client
	logSink *logger.MongoHandler
	limiter *middleware.RateLimiter
}

// New connects storage, wires every layer, and returns a server ready to Run.
func New(ctx context.Context) (*Server, error) {
	if err := config.Load(); err != nil {
		return nil, err
	}

	db, err := database.Connect(ctx, config.MongoURI(), config.MongoDB())
	if err != nil {
		return nil, err
	}

	s := &Server{db: db}

	if config.LogMongo() {
		s.logSink = logger.NewMongoHandler(db.Collection("logs"))
		logger.SetHandler(logger.NewMultiHandler(logger.L.Handler(), s.logSink))
	}

	// Redis is optional: when it is absent the rate limiter falls back to
	// per-process buckets.
	if addr := config.RedisAddr(); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: config.RedisPassword()})
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := rdb.Ping(pingCtx).Err()
		cancel()
		if err != nil {
			logger.Warn("redis unreachable, rate limiter using in-memory buckets", "addr", addr, "error", err.Error())
			rdb.Close() //nolint:errcheck
		} else {
			s.rdb = rdb
		}
	}

	userRepo := repositories.NewUserRepository(db)
	categoryRepo := repositories.NewCategoryRepository(db)
	productRepo := repositories.NewProductRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	gateway := payment.NewBraintree(
		config.BraintreeEnv(),
		config.BraintreeMerchantID(),
		config.BraintreePublicKey(),
		config.BraintreePrivateKey(),
	)

	authService := services.NewAuthService(userRepo)
	orderService := services.NewOrderService(orderRepo, gateway)

	s.limiter = rateLimiter(s.rdb)

	r := router.New()
	r.Use(
		reqid.Middleware(),
		metrics.Middleware(),
		middleware.Recovery,
		middleware.Logger,
		middleware.CORS(middleware.DefaultCORSOptions()),
		s.limiter.Middleware(),
	)
	routes.RegisterAPI(r, routes.Controllers{
		Auth:     controllers.NewAuthController(authService, orderRepo),
		Category: controllers.NewCategoryController(categoryRepo),
		Product:  controllers.NewProductController(productRepo, categoryRepo, orderService, gateway),
		Users:    userRepo,
	})

	s.http = &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	return s, nil
}

func rateLimiter(rdb *redis.Client) *middleware.RateLimiter {
	max, err := strconv.Atoi(config.Get("RATE_LIMIT_MAX", "120"))
	if err != nil || max <= 0 {
		max = 120
	}
	return middleware.NewRateLimiter(rdb, max, time.Minute)
}

// Run serves until SIGINT/SIGTERM, then drains in-flight requests and
// releases connections.
func (s *Server) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", s.http.Addr, "env", config.AppEnv())
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		s.close()
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.http.Shutdown(shutdownCtx)

	s.close()
	return err
}

func (s *Server) close() {
	if s.limiter != nil {
		s.limiter.Close()
	}
	if s.logSink != nil {
		s.logSink.Close()
	}
	if s.rdb != nil {
		s.rdb.Close() //nolint:errcheck
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := database.Disconnect(ctx, s.db); err != nil {
		logger.Error("mongo disconnect", "error", err.Error())
	}
}

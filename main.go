package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	clerk "github.com/clerk/clerk-sdk-go/v2"
	gorilllaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"dealMintAPI/handlers"
	"dealMintAPI/internal/app"
	"dealMintAPI/internal/config"
	"dealMintAPI/internal/logging"
	"dealMintAPI/internal/workers"
	"dealMintAPI/middleware"

	_ "net/http/pprof"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()
	restoreStdLog := logging.RedirectStdLog(logger)
	defer restoreStdLog()

	if cfg.ClerkSecretKey == "" {
		logger.Warn("CLERK_SECRET_KEY is not set, admin routes will reject every request")
	} else {
		clerk.SetKey(cfg.ClerkSecretKey)
		logger.Info("Clerk initialized successfully")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	a, err := app.New(ctx, cfg, logger, prometheus.DefaultRegisterer)
	cancel()
	if err != nil {
		logger.Fatal("failed to initialize", zap.Error(err))
	}
	defer a.Close()

	middleware.InitPrometheus(prometheus.DefaultRegisterer)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.CleanupVisitors(rootCtx)

	confirmWorker := workers.NewConfirmationWorker(a.Confirmations, cfg.ConfirmInterval, logger)
	confirmWorker.Start(rootCtx)

	server := http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      newRouter(cfg, a, limiter, logger),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 65 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("starting server", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("error starting server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.Info("got signal", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}

	stop()
	confirmWorker.Stop()

	logger.Info("server shutdown complete")
}

func newRouter(cfg *config.Config, a *app.App, limiter *middleware.RateLimiter, logger *zap.Logger) http.Handler {
	dropHandler := handlers.NewDropHandler(a.Drops, a.Claims, a.Cache, logger)
	adminHandler := handlers.NewAdminHandler(a.Drops, a.Confirmations, logger)
	couponHandler := handlers.NewCouponHandler(a.Coupons, logger)

	r := mux.NewRouter()
	r.Use(limiter.Middleware)
	r.Use(middleware.MonitorMiddleware)

	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.MetricsUser, cfg.MetricsPass)(promhttp.Handler()))
	r.PathPrefix("/debug/pprof/").Handler(middleware.PprofSecurityMiddleware(cfg.PprofSecret)(http.DefaultServeMux))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "application/json")
		if err := a.Store.Ping(ctx); err != nil {
			logger.Error("health check failed", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status": "unhealthy", "error": "database connection failed"}`))
			return
		}

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status": "healthy", "service": "dealmint-api"}`))
	}).Methods("GET")

	// -------------------------------------------------------------------------
	// API V1 SUBROUTER
	// -------------------------------------------------------------------------
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/drop-rush/today", dropHandler.GetToday).Methods("GET")
	api.HandleFunc("/drop-rush/claim", dropHandler.Claim).Methods("POST")
	api.HandleFunc("/drop-rush/verify", dropHandler.Verify).Methods("GET")
	api.HandleFunc("/drop-rush/leaderboard", dropHandler.GetLeaderboard).Methods("GET")
	api.HandleFunc("/coupons/transfer", couponHandler.Transfer).Methods("POST")

	// -------------------------------------------------------------------------
	// ADMIN ROUTES (CLERK TOKEN + ADMIN_CLERK_IDS)
	// -------------------------------------------------------------------------
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.ClerkAuthMiddleware)
	admin.Use(middleware.AdminOnly(cfg.IsAdmin))

	admin.HandleFunc("/drop-rush/confirm", adminHandler.ConfirmClaims).Methods("POST")
	admin.HandleFunc("/drop-rush/drops", adminHandler.CreateDrop).Methods("POST")
	admin.HandleFunc("/drop-rush/drops/{id}/cancel", adminHandler.CancelDrop).Methods("POST")

	corsHandler := gorilllaHandlers.CORS(
		gorilllaHandlers.AllowedOrigins([]string{"*"}),
		gorilllaHandlers.AllowedMethods([]string{"GET", "POST", "OPTIONS"}),
		gorilllaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization", "X-Pprof-Secret"}),
		gorilllaHandlers.ExposedHeaders([]string{"Content-Length"}),
	)

	return corsHandler(r)
}

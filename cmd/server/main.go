package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/stitts-dev/hr-parlay/internal/api"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/internal/proxy"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/internal/websocket"
	"github.com/stitts-dev/hr-parlay/pkg/config"
	"github.com/stitts-dev/hr-parlay/pkg/database"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	structuredLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		structuredLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := services.NewParlayStore(db.DB)
	if err := store.AutoMigrate(); err != nil {
		structuredLogger.Fatalf("Failed to migrate saved parlays: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Provider response cache: redis when configured, in-process otherwise
	var cache providers.CacheProvider
	if cfg.RedisURL != "" {
		redisClient, err := services.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			structuredLogger.WithError(err).Warn("Redis unavailable, using in-memory cache")
			cache = services.NewMemoryCache(10 * time.Minute)
		} else {
			defer redisClient.Close()
			cache = services.NewCacheService(redisClient)
		}
	} else {
		cache = services.NewMemoryCache(10 * time.Minute)
	}

	timeout := cfg.ExternalAPITimeout
	mlbStats := providers.NewMLBStatsClient(cfg.MLBStatsBaseURL, timeout, cache, structuredLogger)
	oddsAPI := providers.NewOddsAPIClient(cfg.OddsAPIBaseURL, cfg.OddsAPIKey, cfg.OddsRateLimit, timeout, cache, structuredLogger)
	ballDontLie := providers.NewBallDontLieClient(cfg.BallDontLieBaseURL, cfg.BallDontLieAPIKey, cfg.BallDontLieRPM, timeout, cache, structuredLogger)
	savant := providers.NewSavantClient(cfg.SavantURL, timeout, cache, structuredLogger)

	structuredLogger.WithFields(logrus.Fields{
		"odds_api":    oddsAPI.Configured(),
		"balldontlie": ballDontLie.Configured(),
		"savant":      savant.Configured(),
		"season":      cfg.Season,
	}).Info("Data providers initialized")

	reconciler := services.NewReconciler(services.ReconcilerOptions{
		Schedule: mlbStats,
		Odds:     oddsAPI,
		Live:     ballDontLie,
		Advanced: savant,
		Breakers: services.NewCircuitBreakerService(cfg.CircuitBreakerThreshold, 30*time.Second, structuredLogger),
		Season:   cfg.Season,
		Timeout:  timeout,
	}, structuredLogger)

	slate := services.NewSlateService(reconciler, store, services.SlateOptions{
		LookaheadDays: cfg.LookaheadDays,
		SkipLiveData:  cfg.SkipLiveData,
	}, structuredLogger)

	if current, err := slate.FindNextSlate(ctx, time.Now()); err != nil {
		structuredLogger.WithError(err).Error("Failed to load initial slate")
	} else {
		structuredLogger.WithFields(logrus.Fields{
			"date":   current.Date,
			"games":  len(current.Boards),
			"source": current.Source,
		}).Info("Initial slate loaded")
	}

	hub := websocket.NewHub(structuredLogger)
	hub.SetGreeting(func() interface{} {
		current := slate.Current()
		if current == nil {
			return nil
		}
		return websocket.NewMessage(services.MessageSlate, services.NewSlateUpdate(current))
	})
	go hub.Run(ctx)

	var refresher *services.RefresherService
	if cfg.EnableBackgroundJobs {
		interval, err := time.ParseDuration(cfg.RefreshInterval)
		if err != nil || interval <= 0 {
			structuredLogger.Warnf("Invalid refresh interval %q, using default 60s", cfg.RefreshInterval)
			interval = 60 * time.Second
		}
		refresher = services.NewRefresherService(slate, hub, interval, structuredLogger)
		if err := refresher.Start(); err != nil {
			structuredLogger.Errorf("Failed to start refresher: %v", err)
		}
		defer refresher.Stop()
	}

	var providerProxy *proxy.ProviderProxy
	if cfg.EnableProxy {
		providerProxy = proxy.NewProviderProxy([]proxy.Upstream{
			proxy.OddsUpstream(cfg.OddsAPIBaseURL, cfg.OddsAPIKey),
			proxy.BallDontLieUpstream(cfg.BallDontLieBaseURL, cfg.BallDontLieAPIKey),
		}, timeout, structuredLogger)
	}

	router := api.NewRouter(api.Dependencies{
		Config:    cfg,
		Slate:     slate,
		Refresher: refresher,
		Hub:       hub,
		Proxy:     providerProxy,
		Logger:    structuredLogger,
	})

	if cfg.IsDevelopment() {
		for _, route := range router.Routes() {
			structuredLogger.Debugf("%s %s", route.Method, route.Path)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		structuredLogger.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			structuredLogger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	structuredLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Errorf("Server forced to shutdown: %v", err)
	}

	structuredLogger.Info("Server exited")
}

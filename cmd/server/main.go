package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/shaharavr/flightscout/internal/config"
	"github.com/shaharavr/flightscout/internal/dataset"
	"github.com/shaharavr/flightscout/internal/handler"
	"github.com/shaharavr/flightscout/internal/i18n"
	"github.com/shaharavr/flightscout/internal/notify"
	"github.com/shaharavr/flightscout/internal/ratelimit"
	"github.com/shaharavr/flightscout/internal/search"
	"github.com/shaharavr/flightscout/internal/store"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	provider, err := dataset.NewStaticProvider()
	if err != nil {
		log.Fatalf("Failed to load flight dataset: %v", err)
	}
	log.Printf("Loaded %d candidate itineraries", len(provider.Candidates()))

	catalog, err := dataset.LoadCatalog()
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	translator, err := i18n.New()
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}

	var sessionStore store.Store
	if cfg.Redis.Enabled {
		redisStore, err := store.NewRedisStore(store.RedisConfig{
			Host:     cfg.Redis.Host,
			Port:     cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Search.SessionTTL,
		})
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		sessionStore = redisStore
		log.Printf("Redis session store enabled (host: %s:%s, TTL: %v)", cfg.Redis.Host, cfg.Redis.Port, cfg.Search.SessionTTL)
	} else {
		sessionStore = store.NewMemoryStore(cfg.Search.SessionTTL)
		log.Println("In-memory session store")
	}
	defer sessionStore.Close()

	dispatcher := notify.NewDispatcher(
		&notify.LogSink{Recipient: cfg.Notify.Recipient},
		notify.Config{
			Delay:     cfg.Notify.Delay,
			QueueSize: cfg.Notify.QueueSize,
			RPS:       cfg.Notify.RPS,
			Burst:     cfg.Notify.Burst,
		},
	)
	defer dispatcher.Close()

	searchService := search.NewService(provider, sessionStore, dispatcher, cfg.Search.SimulatedLatency)

	limiter := ratelimit.NewClientLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimit.RPS,
		BurstSize:         cfg.RateLimit.Burst,
	})

	wizardHandler := handler.NewWizardHandler(sessionStore, searchService)
	searchHandler := handler.NewSearchHandler(searchService, sessionStore, dispatcher, limiter)
	metaHandler := handler.NewMetaHandler(translator, catalog)

	api := e.Group("/api/v1")
	api.POST("/wizard", wizardHandler.Create)
	api.GET("/wizard/:id", wizardHandler.Get)
	api.PATCH("/wizard/:id", wizardHandler.Patch)
	api.POST("/wizard/:id/next", wizardHandler.Next)
	api.POST("/wizard/:id/prev", wizardHandler.Prev)
	api.POST("/wizard/:id/destination", wizardHandler.PickDestination)
	api.POST("/wizard/:id/submit", wizardHandler.Submit)
	api.POST("/flights/search", searchHandler.Search)
	api.GET("/search/:id", searchHandler.View)
	api.GET("/search/:id/export", searchHandler.Export)
	api.GET("/translations/:locale", metaHandler.Translations)
	api.GET("/catalog", metaHandler.Catalog)
	e.GET("/health", handler.HealthHandler)

	go func() {
		log.Printf("Starting flight search server on port %s", cfg.Server.Port)
		if err := e.Start(":" + cfg.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"vendmatic-rest-api/internal/cache"
	"vendmatic-rest-api/internal/config"
	"vendmatic-rest-api/internal/handler"
	"vendmatic-rest-api/internal/repository"
	"vendmatic-rest-api/internal/router"
	"vendmatic-rest-api/internal/service"
	"vendmatic-rest-api/pkg/denom"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Vendmatic API...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Validate the denomination set up front; a machine that cannot decide
	// which amounts it accepts must not start.
	denomValues, err := cfg.Machine.DenominationValues()
	if err != nil {
		log.Fatalf("Invalid denomination configuration: %v", err)
	}
	denoms, err := denom.New(denomValues)
	if err != nil {
		log.Fatalf("Invalid denomination configuration: %v", err)
	}
	log.Printf("Accepted denominations: %v", denoms.Values())

	// Initialize vending repository based on config
	var repo repository.VendingRepository
	switch cfg.Database.Type {
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresVendingRepository(cfg.Database.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		repo = pgRepo
		log.Println("PostgreSQL vending repository initialized")
	case "mysql":
		myRepo, err := repository.NewMySQLVendingRepository(cfg.Database.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to initialize MySQL: %v", err)
		}
		repo = myRepo
		log.Println("MySQL vending repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteVendingRepository(cfg.Database.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		repo = sqliteRepo
		log.Println("SQLite vending repository initialized")
	}
	defer repo.Close()

	// Initialize cache
	var listingCache cache.Cache
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis cache unavailable, falling back to memory: %v", err)
			listingCache = cache.NewMemoryCache()
		} else {
			listingCache = redisCache
			log.Println("Redis cache initialized")
		}
	default:
		listingCache = cache.NewMemoryCache()
		log.Println("Memory cache initialized")
	}

	// Initialize services
	inventoryService := service.NewInventoryService(repo, listingCache, cfg.Cache.TTL)
	purchaseService := service.NewPurchaseService(inventoryService, denoms, cfg.Machine.MaxTransaction)
	stockingService := service.NewStockingService(inventoryService)

	// Purchase-log retention
	sweeper := service.NewRetentionSweeper(repo, service.RetentionConfig{
		Retention:     cfg.Machine.PurchaseRetention,
		SweepInterval: cfg.Machine.RetentionInterval,
	})
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize handlers
	healthHandler := handler.New(cfg.App.Version)
	vendingHandler := handler.NewVendingHandler(inventoryService, purchaseService, stockingService)
	adminHandler := handler.NewAdminHandler(repo, purchaseService, cfg.Database.Type)

	// Create router
	r := router.New(router.Config{
		Handler:        healthHandler,
		VendingHandler: vendingHandler,
		AdminHandler:   adminHandler,
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Address())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
	fmt.Println("Goodbye!")
}

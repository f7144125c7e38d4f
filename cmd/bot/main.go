package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bizgifts-bot/internal/bot"
	"bizgifts-bot/internal/cache"
	"bizgifts-bot/internal/config"
	"bizgifts-bot/internal/handler"
	"bizgifts-bot/internal/repository"
	"bizgifts-bot/internal/router"
	"bizgifts-bot/internal/service"
	"bizgifts-bot/internal/telegram"

	_ "github.com/go-sql-driver/mysql"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting bizgifts-bot...")

	// Load configuration
	cfg := config.MustLoad()
	log.Printf("Environment: %s", cfg.App.Environment)

	// Initialize connection repository based on config
	var connRepo repository.ConnectionRepository
	switch cfg.RegistryDB.Type {
	case "postgres", "postgresql":
		pgRepo, err := repository.NewPostgresConnectionRepository(cfg.RegistryDB.PostgresDSN())
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL: %v", err)
		}
		connRepo = pgRepo
		log.Println("PostgreSQL connection repository initialized")
	case "mysql":
		db, err := sql.Open("mysql", cfg.RegistryDB.MySQLDSN())
		if err != nil {
			log.Fatalf("Failed to open MySQL: %v", err)
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to ping MySQL: %v", err)
		}
		defer db.Close()
		myRepo, err := repository.NewMySQLConnectionRepository(db)
		if err != nil {
			log.Fatalf("Failed to initialize MySQL repository: %v", err)
		}
		connRepo = myRepo
		log.Println("MySQL connection repository initialized")
	case "file":
		connRepo = repository.NewFileConnectionRepository(cfg.RegistryDB.FilePath)
		log.Println("File connection repository initialized")
	default: // sqlite
		sqliteRepo, err := repository.NewSQLiteConnectionRepository(cfg.RegistryDB.Path)
		if err != nil {
			log.Fatalf("Failed to initialize SQLite: %v", err)
		}
		connRepo = sqliteRepo
		log.Println("SQLite connection repository initialized")
	}
	defer connRepo.Close()

	// Initialize lookup cache
	var lookupCache cache.Cache
	if cfg.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(cache.RedisCacheConfig{
			Addr:     cfg.Cache.RedisAddress(),
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
		if err != nil {
			log.Printf("Warning: Redis connection failed, falling back to memory cache: %v", err)
		} else {
			defer redisCache.Close()
			lookupCache = redisCache
			log.Println("Redis cache initialized")
		}
	}
	if lookupCache == nil {
		memCache := cache.NewMemoryCache()
		defer memCache.Close()
		lookupCache = memCache
		log.Println("Memory cache initialized")
	}

	// Initialize Telegram client
	client := telegram.NewClient(telegram.ClientConfig{
		Token:   cfg.Telegram.Token,
		BaseURL: cfg.Telegram.BaseURL,
		Timeout: cfg.Telegram.RequestTimeout,
	})

	// Initialize services
	connectionService := service.NewConnectionService(connRepo, lookupCache)
	assetService := service.NewAssetService(client, connectionService)
	adminGate := service.NewAdminGate(cfg.Telegram.AdminID)

	// Initialize bot dispatcher
	handlers := bot.NewHandlers(client, connectionService, assetService, adminGate)
	dispatcher := bot.NewDispatcher(client, handlers, cfg.Telegram.PollTimeout)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go dispatcher.Run(ctx)

	// Ops HTTP server (status, health, admin stats)
	var srv *http.Server
	if cfg.Ops.Enabled {
		r := router.New(router.Config{
			Handler:      handler.New(cfg.App.Version),
			AdminHandler: handler.NewAdminHandler(connRepo, cfg.RegistryDB.Type),
			OpsKey:       cfg.Ops.Key,
		})

		srv = &http.Server{
			Addr:         cfg.Ops.Address(),
			Handler:      r,
			ReadTimeout:  cfg.Ops.ReadTimeout,
			WriteTimeout: cfg.Ops.WriteTimeout,
		}

		go func() {
			log.Printf("Ops server listening on %s", cfg.Ops.Address())
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Ops server error: %v", err)
			}
		}()
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	cancel()

	if srv != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Ops.ShutdownTimeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ops server shutdown error: %v", err)
		}
	}

	log.Println("Stopped")
}

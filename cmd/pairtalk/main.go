package main

import (
	"context"
	"log"
	"os"

	v1 "pairtalk/api/v1"
	"pairtalk/internal/auth"
	"pairtalk/internal/config"
	"pairtalk/internal/db"
	"pairtalk/internal/events"
	"pairtalk/internal/ratelimit"
	"pairtalk/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
		os.Exit(1)
	}
	log.Println("✓ Configuration loaded")

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// 2. Initialize MySQL
	if err := db.InitMySQL(cfg.MySQL.DSN); err != nil {
		log.Fatalf("Failed to initialize MySQL: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	if cfg.Migrate {
		if err := db.Migrate(db.Get()); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
			os.Exit(1)
		}
		log.Println("✓ Migrations applied")
	}
	if err := db.SeedSecurityConfig(db.Get()); err != nil {
		log.Fatalf("Failed to seed security config: %v", err)
		os.Exit(1)
	}

	// 3. Session token signing
	auth.InitJWT(cfg.JWT.Secret)

	// 4. Shared stores. Redis is only dialed when a store backend needs it.
	var rdb *redis.Client
	if cfg.Stores.NeedsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		defer rdb.Close()
		log.Println("✓ Redis connected")
	}

	var tokens validation.Store
	if cfg.Stores.Validation == config.StoreRedis {
		tokens = validation.NewRedisStore(rdb)
	} else {
		memStore := validation.NewMemoryStore()
		defer memStore.Close()
		tokens = memStore
	}

	var limiter ratelimit.Limiter
	if cfg.Stores.RateLimit == config.StoreRedis {
		limiter = ratelimit.NewRedisLimiter(rdb)
	} else {
		limiter = ratelimit.NewMemoryLimiter()
	}

	// 5. Admin event stream
	if err := events.InitServer(); err != nil {
		log.Fatalf("Failed to initialize event server: %v", err)
		os.Exit(1)
	}

	// 6. HTTP router
	gin.SetMode(gin.ReleaseMode)
	r := gin.Default()
	v1.SetupRouter(r, db.Get(), cfg, tokens, limiter, logger)

	log.Printf("✓ Server starting on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}

package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Store backend selectors for process-shared state
const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// Config holds all configuration
type Config struct {
	MySQL    MySQLConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Webhook  WebhookConfig
	Stores   StoresConfig
	Migrate  bool
	HTTPAddr string
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration. Redis is only dialed when one of
// the store backends selects it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds session token configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// WebhookConfig holds inbound payment webhook configuration
type WebhookConfig struct {
	Secret string
}

// StoresConfig selects the backend for cross-request shared state.
// Memory is the default; Redis is for multi-instance deployments.
type StoresConfig struct {
	Validation string
	RateLimit  string
}

// NeedsRedis reports whether any store backend requires a Redis connection
func (s StoresConfig) NeedsRedis() bool {
	return s.Validation == StoreRedis || s.RateLimit == StoreRedis
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 60),
			Issuer:        getEnv("JWT_ISSUER", "pairtalk"),
		},
		Webhook: WebhookConfig{
			Secret: os.Getenv("WEBHOOK_SECRET"),
		},
		Stores: StoresConfig{
			Validation: getEnv("VALIDATION_STORE", StoreMemory),
			RateLimit:  getEnv("RATELIMIT_STORE", StoreMemory),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
	}

	return cfg, validate(cfg)
}

// LoadFromINI loads configuration from INI file with environment variable override
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	// Priority: ENV > INI > default
	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 60),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "pairtalk"),
		},
		Webhook: WebhookConfig{
			Secret: getValue("WEBHOOK_SECRET", "webhook", "secret", ""),
		},
		Stores: StoresConfig{
			Validation: getValue("VALIDATION_STORE", "stores", "validation", StoreMemory),
			RateLimit:  getValue("RATELIMIT_STORE", "stores", "ratelimit", StoreMemory),
		},
		Migrate:  getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
	}

	return cfg, validate(cfg)
}

func validate(cfg *Config) error {
	if cfg.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if cfg.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.Webhook.Secret == "" {
		return fmt.Errorf("WEBHOOK_SECRET is required")
	}
	if s := cfg.Stores.Validation; s != StoreMemory && s != StoreRedis {
		return fmt.Errorf("VALIDATION_STORE must be %q or %q", StoreMemory, StoreRedis)
	}
	if s := cfg.Stores.RateLimit; s != StoreMemory && s != StoreRedis {
		return fmt.Errorf("RATELIMIT_STORE must be %q or %q", StoreMemory, StoreRedis)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

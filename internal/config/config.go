package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Cache   CacheConfig
	Logging LoggingConfig
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  int
	WriteTimeout int
	Environment  string // development, staging, production
}

// MongoDBConfig contains document store connection configuration
type MongoDBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// RedisConfig contains cache backend connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// CacheConfig controls the expiration policy of the cache facade. Every
// entry lives for BaseTTL plus a random offset below Jitter, so entries
// written together never expire together.
type CacheConfig struct {
	BaseTTL time.Duration
	Jitter  time.Duration
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load reads .env if present, then environment variables.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvInt("SERVER_WRITE_TIMEOUT", 15),
			Environment:  getEnv("ENVIRONMENT", "development"),
		},
		MongoDB: MongoDBConfig{
			Host:     getEnv("MONGO_HOST", "localhost"),
			Port:     getEnv("MONGO_PORT", "27017"),
			Username: getEnv("MONGO_USERNAME", ""),
			Password: getEnv("MONGO_PASSWORD", ""),
			Database: getEnv("MONGO_DATABASE", "instafeed"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Cache: CacheConfig{
			BaseTTL: getEnvDuration("CACHE_BASE_TTL", 5*time.Minute),
			Jitter:  getEnvDuration("CACHE_TTL_JITTER", 5*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// GetMongoURI builds the connection string from the MongoDB section.
func (c *Config) GetMongoURI() string {
	if c.MongoDB.Username != "" {
		return fmt.Sprintf("mongodb://%s:%s@%s:%s",
			c.MongoDB.Username,
			c.MongoDB.Password,
			c.MongoDB.Host,
			c.MongoDB.Port,
		)
	}
	return fmt.Sprintf("mongodb://%s:%s", c.MongoDB.Host, c.MongoDB.Port)
}

func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

func (c *Config) ServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

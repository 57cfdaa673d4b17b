package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/Kilat-Pet-Delivery/service-hotel-booking/internal/platform/database"
)

const envPrefix = "BOOKING"

// Storage drivers.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// JWTConfig holds token signing settings.
type JWTConfig struct {
	Secret         string
	AccessTokenTTL time.Duration
}

// KafkaConfig holds broker settings. Events are disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	GroupPrefix string
}

// RedisConfig holds cache settings. The in-process cache is used when Addr is empty.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ServiceConfig holds all configuration for the hotel booking service.
type ServiceConfig struct {
	Port            string
	AppEnv          string
	StorageDriver   string
	AutoMigrate     bool
	RateLimitPerMin int
	ShutdownTimeout time.Duration
	DBConfig        database.PostgresConfig
	JWTConfig       JWTConfig
	KafkaConfig     KafkaConfig
	RedisConfig     RedisConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("STORAGE_DRIVER", StoragePostgres)
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("RATE_LIMIT_PER_MIN", 120)
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "hotel_booking")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_ACCESS_TTL", "15m")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_GROUP_PREFIX", "service-hotel-booking")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
}

// Load reads configuration from a .env file, if present, and environment
// variables prefixed with BOOKING_.
func Load() (*ServiceConfig, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &ServiceConfig{
		Port:            v.GetString("SERVICE_PORT"),
		AppEnv:          v.GetString("APP_ENV"),
		StorageDriver:   strings.ToLower(v.GetString("STORAGE_DRIVER")),
		AutoMigrate:     v.GetBool("AUTO_MIGRATE"),
		RateLimitPerMin: v.GetInt("RATE_LIMIT_PER_MIN"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		DBConfig: database.PostgresConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			DBName:       v.GetString("DB_NAME"),
			SSLMode:      v.GetString("DB_SSLMODE"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		},
		JWTConfig: JWTConfig{
			Secret:         v.GetString("JWT_SECRET"),
			AccessTokenTTL: v.GetDuration("JWT_ACCESS_TTL"),
		},
		KafkaConfig: KafkaConfig{
			Brokers:     splitList(v.GetString("KAFKA_BROKERS")),
			GroupPrefix: v.GetString("KAFKA_GROUP_PREFIX"),
		},
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ServiceConfig) validate() error {
	switch c.StorageDriver {
	case StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("config: unknown %s_STORAGE_DRIVER %q", envPrefix, c.StorageDriver)
	}
	if c.Port == "" {
		return fmt.Errorf("config: %s_SERVICE_PORT is required", envPrefix)
	}
	if c.AppEnv == "production" && c.JWTConfig.Secret == "change-me-in-production" {
		return fmt.Errorf("config: %s_JWT_SECRET must be set in production", envPrefix)
	}
	if c.RateLimitPerMin < 0 {
		return fmt.Errorf("config: %s_RATE_LIMIT_PER_MIN must not be negative", envPrefix)
	}
	return nil
}

// IsProduction reports whether the service runs with production settings.
func (c *ServiceConfig) IsProduction() bool {
	return c.AppEnv == "production"
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

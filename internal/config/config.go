package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/labstack/gommon/random"
)

// Config represents the complete service configuration
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Redis     RedisConfig     `toml:"redis"`
	Minio     MinioConfig     `toml:"minio"`
	Auth      AuthConfig      `toml:"auth"`
	Documents DocumentsConfig `toml:"documents"`
	Jobs      JobsConfig      `toml:"jobs"`
	Log       LogConfig       `toml:"log"`
}

type ServerConfig struct {
	Port            int           `toml:"port"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string `toml:"url"`
	MaxConns       int32  `toml:"max_conns"`
	MigrateOnStart bool   `toml:"migrate_on_start"`
}

// RedisConfig configures the directory cache. An empty Addr disables it.
type RedisConfig struct {
	Addr         string        `toml:"addr"`
	Password     string        `toml:"password"`
	DB           int           `toml:"db"`
	DirectoryTTL time.Duration `toml:"directory_ttl"`
}

// MinioConfig configures the deletion archive. An empty Endpoint disables it.
type MinioConfig struct {
	Endpoint  string `toml:"endpoint"`
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	UseSSL    bool   `toml:"use_ssl"`
	Bucket    string `toml:"bucket"`
}

// AuthConfig selects how bearer tokens are verified: against a JWKS endpoint
// when JWKSURL is set, otherwise with the shared HMAC secret.
type AuthConfig struct {
	JWTSecret string `toml:"jwt_secret"`
	JWKSURL   string `toml:"jwks_url"`
}

type DocumentsConfig struct {
	ReferencePolicy string        `toml:"reference_policy"`
	TxTimeout       time.Duration `toml:"tx_timeout"`
}

type JobsConfig struct {
	DirectoryRefreshInterval time.Duration `toml:"directory_refresh_interval"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns:       10,
			MigrateOnStart: true,
		},
		Redis: RedisConfig{
			DirectoryTTL: 10 * time.Minute,
		},
		Minio: MinioConfig{
			Bucket: "document-archive",
		},
		Documents: DocumentsConfig{
			ReferencePolicy: "strict",
			TxTimeout:       15 * time.Second,
		},
		Jobs: JobsConfig{
			DirectoryRefreshInterval: 5 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, then the TOML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := LoadFile(path, cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	// Development instances without an identity provider get a throwaway
	// secret. Tokens signed with it do not survive a restart.
	if cfg.Log.Development && cfg.Auth.JWTSecret == "" && cfg.Auth.JWKSURL == "" {
		cfg.Auth.JWTSecret = random.String(32)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile decodes a TOML file over cfg.
func LoadFile(filename string, cfg *Config) error {
	if _, err := toml.DecodeFile(filename, cfg); err != nil {
		return fmt.Errorf("failed to load config file: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var err error

	if c.Server.Port, err = getIntOrDefault("PORT", c.Server.Port); err != nil {
		return err
	}
	if c.Server.ShutdownTimeout, err = getDurationOrDefault("SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout); err != nil {
		return err
	}

	c.Database.URL = getEnvOrDefault("DATABASE_URL", c.Database.URL)
	maxConns, err := getIntOrDefault("DATABASE_MAX_CONNS", int(c.Database.MaxConns))
	if err != nil {
		return err
	}
	c.Database.MaxConns = int32(maxConns)
	if c.Database.MigrateOnStart, err = getBoolOrDefault("DATABASE_MIGRATE_ON_START", c.Database.MigrateOnStart); err != nil {
		return err
	}

	c.Redis.Addr = getEnvOrDefault("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnvOrDefault("REDIS_PASSWORD", c.Redis.Password)
	if c.Redis.DB, err = getIntOrDefault("REDIS_DB", c.Redis.DB); err != nil {
		return err
	}
	if c.Redis.DirectoryTTL, err = getDurationOrDefault("REDIS_DIRECTORY_TTL", c.Redis.DirectoryTTL); err != nil {
		return err
	}

	c.Minio.Endpoint = getEnvOrDefault("MINIO_ENDPOINT", c.Minio.Endpoint)
	c.Minio.AccessKey = getEnvOrDefault("MINIO_ACCESS_KEY", c.Minio.AccessKey)
	c.Minio.SecretKey = getEnvOrDefault("MINIO_SECRET_KEY", c.Minio.SecretKey)
	c.Minio.Bucket = getEnvOrDefault("MINIO_BUCKET", c.Minio.Bucket)
	if c.Minio.UseSSL, err = getBoolOrDefault("MINIO_USE_SSL", c.Minio.UseSSL); err != nil {
		return err
	}

	c.Auth.JWTSecret = getEnvOrDefault("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.JWKSURL = getEnvOrDefault("AUTH_JWKS_URL", c.Auth.JWKSURL)

	c.Documents.ReferencePolicy = getEnvOrDefault("DOCUMENTS_REFERENCE_POLICY", c.Documents.ReferencePolicy)
	if c.Documents.TxTimeout, err = getDurationOrDefault("DOCUMENTS_TX_TIMEOUT", c.Documents.TxTimeout); err != nil {
		return err
	}

	if c.Jobs.DirectoryRefreshInterval, err = getDurationOrDefault("JOBS_DIRECTORY_REFRESH_INTERVAL", c.Jobs.DirectoryRefreshInterval); err != nil {
		return err
	}

	c.Log.Level = getEnvOrDefault("LOG_LEVEL", c.Log.Level)
	if c.Log.Development, err = getBoolOrDefault("LOG_DEVELOPMENT", c.Log.Development); err != nil {
		return err
	}
	return nil
}

// Validate checks that all required configuration is present
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" && c.Auth.JWKSURL == "" {
		return errors.New("either JWT_SECRET or AUTH_JWKS_URL is required")
	}
	switch strings.ToLower(c.Documents.ReferencePolicy) {
	case "strict", "fallback":
	default:
		return fmt.Errorf("documents.reference_policy must be strict or fallback, got %q", c.Documents.ReferencePolicy)
	}
	if c.Minio.Endpoint != "" && c.Minio.Bucket == "" {
		return errors.New("minio.bucket is required when minio.endpoint is set")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBoolOrDefault(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDurationOrDefault(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

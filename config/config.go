package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultMaxUploadBytes = 16 << 20

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Upload    UploadConfig
	S3        S3Config
	Redis     RedisConfig
	Tracing   TracingConfig
	Bootstrap BootstrapConfig
	Content   ContentConfig
}

type ServerConfig struct {
	Port           string        `validate:"required,numeric"`
	GinMode        string        `validate:"required,oneof=debug release test"`
	Environment    string        `validate:"required"`
	RequestTimeout time.Duration `validate:"gt=0"`
}

type DatabaseConfig struct {
	Driver     string `validate:"required,oneof=postgres sqlite"`
	URL        string
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type JWTConfig struct {
	Secret            string        `validate:"required"`
	AccessTokenExpiry time.Duration `validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string
}

type UploadConfig struct {
	Driver            string   `validate:"required,oneof=local s3"`
	Dir               string   `validate:"required"`
	AllowedExtensions []string `validate:"required,min=1,dive,required"`
	MaxBytes          int64    `validate:"gt=0"`
	ThumbnailSize     int      `validate:"gte=0"`
}

type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
	Prefix          string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type TracingConfig struct {
	Enabled      bool
	ServiceName  string
	Endpoint     string
	Insecure     bool
	SamplerRatio float64 `validate:"gte=0,lte=1"`
}

// BootstrapConfig seeds a first admin account at startup when both fields are set.
type BootstrapConfig struct {
	AdminName     string
	AdminPassword string
}

type ContentConfig struct {
	DefaultLanguage string `validate:"required,max=5"`
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			GinMode:        getEnv("GIN_MODE", "debug"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			RequestTimeout: parseDuration(getEnv("REQUEST_TIMEOUT", "30s"), 30*time.Second),
		},
		Database: DatabaseConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "postgres")),
			URL:        getEnv("DATABASE_URL", ""),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "admin"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "stories"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "stories.db"),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", ""),
			AccessTokenExpiry: parseDuration(getEnv("JWT_ACCESS_TOKEN_EXPIRY", "1h"), time.Hour),
		},
		CORS: CORSConfig{
			AllowedOrigins: parseSlice(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Upload: UploadConfig{
			Driver:            strings.ToLower(getEnv("UPLOAD_DRIVER", "local")),
			Dir:               getEnv("UPLOAD_DIR", "./uploads"),
			AllowedExtensions: parseSlice(strings.ToLower(getEnv("UPLOAD_ALLOWED_EXTENSIONS", "png,jpg,jpeg,gif,webp"))),
			MaxBytes:          parseInt64(getEnv("UPLOAD_MAX_BYTES", ""), defaultMaxUploadBytes),
			ThumbnailSize:     int(parseInt64(getEnv("UPLOAD_THUMBNAIL_SIZE", ""), 320)),
		},
		S3: S3Config{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Bucket:          getEnv("AWS_S3_BUCKET", ""),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			Prefix:          getEnv("AWS_S3_PREFIX", "uploads"),
		},
		Redis: RedisConfig{
			Enabled:  parseBool(getEnv("REDIS_ENABLED", "false")),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       int(parseInt64(getEnv("REDIS_DB", ""), 0)),
		},
		Tracing: TracingConfig{
			Enabled:      parseBool(getEnv("OTEL_ENABLED", "false")),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "stories-backend"),
			Endpoint:     getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Insecure:     parseBool(getEnv("OTEL_EXPORTER_OTLP_INSECURE", "false")),
			SamplerRatio: parseFloat(getEnv("OTEL_SAMPLER_RATIO", ""), 0.1),
		},
		Bootstrap: BootstrapConfig{
			AdminName:     getEnv("ADMIN_BOOTSTRAP_NAME", ""),
			AdminPassword: getEnv("ADMIN_BOOTSTRAP_PASSWORD", ""),
		},
		Content: ContentConfig{
			DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "es"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks struct tags first, then the rules that span sections.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.Upload.Driver == "s3" && c.S3.Bucket == "" {
		return errors.New("invalid configuration: AWS_S3_BUCKET is required when UPLOAD_DRIVER=s3")
	}
	if c.Database.Driver == "postgres" && c.Database.URL == "" && c.Database.Host == "" {
		return errors.New("invalid configuration: DATABASE_URL or DB_HOST is required for postgres")
	}
	return nil
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	if c.Driver == "sqlite" {
		return c.SQLitePath
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(s)
	if err != nil {
		log.Printf("Invalid duration %s, using default %s", s, fallback)
		return fallback
	}
	return duration
}

func parseInt64(s string, fallback int64) int64 {
	if s == "" {
		return fallback
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		log.Printf("Invalid integer %s, using default %d", s, fallback)
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	if s == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		log.Printf("Invalid number %s, using default %g", s, fallback)
		return fallback
	}
	return f
}

func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func parseSlice(s string) []string {
	result := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}

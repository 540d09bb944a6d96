package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string

	DB         DatabaseConfig
	Redis      RedisConfig
	S3         S3Config
	AWS        AWSConfig
	Nominatim  NominatimConfig
	Moderation ModerationConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains the image bucket configuration.
type S3Config struct {
	Region           string
	Bucket           string
	AccessKeyID      string
	SecretAccessKey  string
	CloudFrontDomain string
}

// AWSConfig contains configuration for the Rekognition image screen.
type AWSConfig struct {
	RekognitionRegion string
	ImageScreening    bool
}

// NominatimConfig contains geocoding client parameters.
type NominatimConfig struct {
	BaseURL   string
	UserAgent string
}

// ModerationConfig contains moderation policy switches.
type ModerationConfig struct {
	// CopyCoordinates controls whether approving an edit proposal also
	// relocates the pin to the proposal's coordinates. Off by default:
	// the original's location is authoritative.
	CopyCoordinates bool
	// CacheTTL bounds staleness of the public map cache.
	CacheTTL time.Duration
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Load .env if present; ignore error if file is missing so that production
	// environments relying solely on real environment variables keep working.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 image bucket
	cfg.S3 = S3Config{
		Region:           getEnv("S3_REGION", "eu-central-1"),
		Bucket:           getEnv("S3_BUCKET", "vaudterroir-images"),
		AccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		CloudFrontDomain: getEnv("CDN_DOMAIN", ""),
	}

	// Rekognition image screening
	cfg.AWS = AWSConfig{
		RekognitionRegion: getEnv("AWS_REKOGNITION_REGION", "eu-west-1"),
		ImageScreening:    getEnvBool("IMAGE_SCREENING", false),
	}

	// Nominatim geocoding
	cfg.Nominatim = NominatimConfig{
		BaseURL:   getEnv("NOMINATIM_BASE_URL", ""),
		UserAgent: getEnv("NOMINATIM_USER_AGENT", "vaudterroir-api/1.0"),
	}

	// Moderation policy
	cfg.Moderation = ModerationConfig{
		CopyCoordinates: getEnvBool("MODERATION_COPY_COORDINATES", false),
	}
	var err error
	if cfg.Moderation.CacheTTL, err = parseDurationEnv("MAP_CACHE_TTL", "10m"); err != nil {
		return nil, fmt.Errorf("invalid MAP_CACHE_TTL: %w", err)
	}

	// Basic validation for DB parameters — keeps messages concise and helpful.
	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	// Validate JWT_SECRET
	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvBool returns the value of an environment variable as a bool or a default if empty/invalid.
func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}

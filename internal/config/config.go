package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/hris-attendance/internal/domain/leave"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"

	StorageLocal = "local"
	StorageMinio = "minio"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Storage    StorageConfig
	Attendance AttendanceConfig
	Leave      LeaveConfig
}

type DatabaseConfig struct {
	Driver      string
	Host        string
	Port        int
	User        string
	Password    string
	Name        string
	SSLMode     string
	AutoMigrate bool
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	Timezone           string
	CORSAllowedOrigins []string
}

// StorageConfig selects where proof photos are kept
type StorageConfig struct {
	Type     string
	BasePath string
	BaseURL  string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

type AttendanceConfig struct {
	// LateAfter is the local time of day after which a clock-in is late.
	// Nil disables late marking.
	LateAfter *time.Duration

	// MarkAbsentInterval is how often yesterday's missing records are filled
	// with absent placeholders. Zero disables the job.
	MarkAbsentInterval time.Duration
}

type LeaveConfig struct {
	Entitlements leave.Entitlements
}

// Load reads the configuration from the environment. A .env file in the
// working directory is loaded first when present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	autoMigrate, err := strconv.ParseBool(getEnv("DB_AUTO_MIGRATE", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_AUTO_MIGRATE: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:      getEnv("DB_DRIVER", DriverPostgres),
		Host:        getEnv("DB_HOST", "localhost"),
		Port:        dbPort,
		User:        getEnv("DB_USER", "postgres"),
		Password:    getEnv("DB_PASSWORD", ""),
		Name:        getEnv("DB_NAME", "hris_attendance"),
		SSLMode:     getEnv("DB_SSL_MODE", "disable"),
		AutoMigrate: autoMigrate,
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:               appPort,
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		Timezone:           getEnv("APP_TIMEZONE", "UTC"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: getEnv("JWT_ACCESS_EXPIRATION_TIME", "1h"),
	}

	// Storage configuration
	minioUseSSL, err := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	if err != nil {
		return nil, fmt.Errorf("invalid MINIO_USE_SSL: %w", err)
	}

	storageType := getEnv("STORAGE_TYPE", StorageLocal)
	// MinIO falls back to the bucket URL
	defaultBaseURL := ""
	if storageType == StorageLocal {
		defaultBaseURL = fmt.Sprintf("http://localhost:%d/uploads", appPort)
	}

	config.Storage = StorageConfig{
		Type:           storageType,
		BasePath:       getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:        getEnv("STORAGE_BASE_URL", defaultBaseURL),
		MinioEndpoint:  getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getEnv("MINIO_BUCKET", "attendance-proofs"),
		MinioUseSSL:    minioUseSSL,
	}

	// Policy configuration
	lateAfter, err := ParseTimeOfDay(getEnv("ATTENDANCE_LATE_AFTER", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid ATTENDANCE_LATE_AFTER: %w", err)
	}
	var markAbsentInterval time.Duration
	if v := getEnv("ATTENDANCE_MARK_ABSENT_INTERVAL", ""); v != "" {
		markAbsentInterval, err = time.ParseDuration(v)
		if err != nil || markAbsentInterval <= 0 {
			return nil, fmt.Errorf("invalid ATTENDANCE_MARK_ABSENT_INTERVAL: %q", v)
		}
	}
	config.Attendance = AttendanceConfig{LateAfter: lateAfter, MarkAbsentInterval: markAbsentInterval}

	entitlements, err := leave.ParseEntitlements(getEnv("LEAVE_ENTITLEMENTS", ""))
	if err != nil {
		return nil, fmt.Errorf("invalid LEAVE_ENTITLEMENTS: %w", err)
	}
	config.Leave = LeaveConfig{Entitlements: entitlements}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be a duration such as 1h: %w", err)
	}

	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("DB_DRIVER must be %s or %s", DriverPostgres, DriverMemory)
	}

	switch c.Storage.Type {
	case StorageLocal:
	case StorageMinio:
		if c.Storage.MinioEndpoint == "" || c.Storage.MinioAccessKey == "" || c.Storage.MinioSecretKey == "" {
			return fmt.Errorf("MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required for minio storage")
		}
	default:
		return fmt.Errorf("STORAGE_TYPE must be %s or %s", StorageLocal, StorageMinio)
	}

	if _, err := c.Location(); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location is the timezone that defines "today".
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.Timezone)
}

// SlogLevel maps LOG_LEVEL to a slog level; unknown values mean info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.App.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseTimeOfDay reads "HH:MM" as an offset from midnight. Empty means unset.
func ParseTimeOfDay(s string) (*time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return nil, fmt.Errorf("want HH:MM, got %q", s)
	}
	d := time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute
	return &d, nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			result = append(result, v)
		}
	}
	return result
}

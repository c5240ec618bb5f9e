package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the API
type Config struct {
	Port string
	Env  string

	DBDriver    string
	DatabaseURL string
	RedisURL    string

	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	PageSize        int
	RoomAdminPolicy string

	AllowedOrigins []string

	StorageDriver          string
	StorageBucket          string
	StorageRegion          string
	StorageEndpoint        string
	StorageAccessKeyID     string
	StorageSecretAccessKey string
	StoragePathStyle       bool
	StoragePublicURL       string
}

// LoadEnv loads environment variables from a .env file. A missing file is
// reported but not fatal; the process environment is used as is.
func LoadEnv() error {
	return godotenv.Load()
}

// GetEnv gets an environment variable or returns a default value if not present
func GetEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads the configuration from the environment.
// Call LoadEnv first when a .env file should be honoured.
func Load() *Config {
	cfg := &Config{
		Port:                   GetEnv("PORT", "8080"),
		Env:                    GetEnv("ENV", "development"),
		DBDriver:               GetEnv("DB_DRIVER", "postgres"),
		DatabaseURL:            GetEnv("DATABASE_URL", ""),
		RedisURL:               GetEnv("REDIS_URL", ""),
		JWTSecret:              GetEnv("JWT_SECRET", ""),
		JWTAccessExpiry:        parseDuration(GetEnv("JWT_ACCESS_EXPIRY", "60m"), 60*time.Minute),
		JWTRefreshExpiry:       parseDuration(GetEnv("JWT_REFRESH_EXPIRY", "24h"), 24*time.Hour),
		PageSize:               parseInt(GetEnv("PAGE_SIZE", "10"), 10),
		RoomAdminPolicy:        GetEnv("ROOM_ADMIN_POLICY", "allow"),
		AllowedOrigins:         splitList(GetEnv("CORS_ALLOWED_ORIGINS", "")),
		StorageDriver:          GetEnv("STORAGE_DRIVER", "memory"),
		StorageBucket:          GetEnv("STORAGE_S3_BUCKET", ""),
		StorageRegion:          GetEnv("STORAGE_S3_REGION", "us-east-1"),
		StorageEndpoint:        GetEnv("STORAGE_S3_ENDPOINT", ""),
		StorageAccessKeyID:     GetEnv("STORAGE_S3_ACCESS_KEY_ID", ""),
		StorageSecretAccessKey: GetEnv("STORAGE_S3_SECRET_ACCESS_KEY", ""),
		StoragePathStyle:       GetEnv("STORAGE_S3_PATH_STYLE", "false") == "true",
		StoragePublicURL:       GetEnv("STORAGE_PUBLIC_URL", ""),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == "sqlite" {
		cfg.DatabaseURL = "taskizy.db"
	}

	return cfg
}

// IsDevelopment reports whether the API runs in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(value string, fallback int) int {
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func splitList(value string) []string {
	var out []string
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		if entry != "" {
			out = append(out, entry)
		}
	}
	return out
}

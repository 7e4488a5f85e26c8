// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ServerConfig holds all server-related settings
type ServerConfig struct {
	Port           int
	Host           string
	MetricsEnabled bool
	RequestTimeout time.Duration
}

// DatabaseConfig holds database configuration settings
type DatabaseConfig struct {
	Type       string // "postgres" or "sqlite"
	URI        string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// Driver returns the database/sql driver name for Type.
func (c *DatabaseConfig) Driver() string {
	if c.Type == "sqlite" {
		return "sqlite3"
	}
	return "postgres"
}

// DSN returns the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Type == "sqlite" {
		return c.SQLitePath
	}
	return c.URI
}

// AuditConfig configures the optional MongoDB moderation audit log.
type AuditConfig struct {
	MongoURI string
	Database string
}

func (c *AuditConfig) Enabled() bool {
	return c.MongoURI != ""
}

// AuthConfig holds token signing settings
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// Config holds the complete application configuration
type Config struct {
	Server         *ServerConfig
	Database       *DatabaseConfig
	Audit          *AuditConfig
	Auth           *AuthConfig
	ViewWindow     time.Duration
	AllowedOrigins []string
	Debug          bool

	// BootstrapModerator is promoted to moderator at startup when set.
	BootstrapModerator string
}

// DefaultConfig provides default server settings
func DefaultConfig() *ServerConfig {
	return &ServerConfig{
		Port:           8080,
		Host:           "0.0.0.0",
		MetricsEnabled: true,
		RequestTimeout: 10 * time.Second,
	}
}

// DefaultDatabaseConfig provides default database settings
func DefaultDatabaseConfig() *DatabaseConfig {
	return &DatabaseConfig{
		Type:       "postgres",
		Port:       5432,
		SSLMode:    "require",
		SQLitePath: "board.db",
	}
}

const devJWTSecret = "board-development-secret"

// LoadConfig loads configuration from environment variables and applies defaults
func LoadConfig() (*Config, error) {
	loadEnvFile()

	serverConfig := DefaultConfig()
	serverConfig.Port = getEnvInt("PORT", serverConfig.Port)
	serverConfig.Host = getEnvOrDefault("HOST", serverConfig.Host)
	if metricsEnabled := os.Getenv("METRICS_ENABLED"); metricsEnabled != "" {
		serverConfig.MetricsEnabled = metricsEnabled == "true"
	}
	serverConfig.RequestTimeout = getEnvDuration("REQUEST_TIMEOUT", serverConfig.RequestTimeout)

	dbConfig, err := loadDatabaseConfig()
	if err != nil {
		return nil, err
	}

	config := &Config{
		Server:   serverConfig,
		Database: dbConfig,
		Audit: &AuditConfig{
			MongoURI: os.Getenv("MONGO_URI"),
			Database: getEnvOrDefault("MONGO_DB", "board"),
		},
		Auth: &AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
		},
		ViewWindow:     getEnvDuration("VIEW_SESSION_TTL", 30*time.Minute),
		AllowedOrigins: []string{"*"}, // Default to allow all origins
		Debug:          os.Getenv("DEBUG") == "true",

		BootstrapModerator: os.Getenv("BOOTSTRAP_MODERATOR"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		config.AllowedOrigins = strings.Split(origins, ",")
	}

	if config.Auth.JWTSecret == "" {
		if !config.Debug {
			return nil, fmt.Errorf("JWT_SECRET environment variable is required unless DEBUG=true")
		}
		slog.Warn("JWT_SECRET not set, using the development secret")
		config.Auth.JWTSecret = devJWTSecret
	}

	return config, nil
}

func loadDatabaseConfig() (*DatabaseConfig, error) {
	dbConfig := DefaultDatabaseConfig()
	dbConfig.Type = getEnvOrDefault("DB_TYPE", dbConfig.Type)

	switch dbConfig.Type {
	case "sqlite":
		dbConfig.SQLitePath = getEnvOrDefault("SQLITE_PATH", dbConfig.SQLitePath)
		return dbConfig, nil

	case "postgres":
		// Prioritize DATABASE_URL if provided
		if uri := os.Getenv("DATABASE_URL"); uri != "" {
			dbConfig.URI = uri
			dbConfig.SSLMode = getSSLModeFromURI(uri)
			return dbConfig, nil
		}

		// Fallback to individual variables if DATABASE_URL is not set
		dbConfig.Host = getEnvOrDefault("DB_HOST", "localhost")
		dbConfig.Port = getEnvInt("DB_PORT", dbConfig.Port)

		dbConfig.User = os.Getenv("DB_USER")
		if dbConfig.User == "" {
			return nil, fmt.Errorf("DB_USER environment variable is required when DB_TYPE is postgres and DATABASE_URL is not set")
		}
		dbConfig.Password = os.Getenv("DB_PASSWORD")
		if dbConfig.Password == "" {
			return nil, fmt.Errorf("DB_PASSWORD environment variable is required when DB_TYPE is postgres and DATABASE_URL is not set")
		}
		dbConfig.Name = getEnvOrDefault("DB_NAME", "postgres")
		dbConfig.SSLMode = getEnvOrDefault("DB_SSL_MODE", "require")

		dbConfig.URI = fmt.Sprintf(
			"postgresql://%s:%s@%s:%d/%s?sslmode=%s",
			dbConfig.User,
			dbConfig.Password,
			dbConfig.Host,
			dbConfig.Port,
			dbConfig.Name,
			dbConfig.SSLMode,
		)
		return dbConfig, nil

	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q (expected postgres or sqlite)", dbConfig.Type)
	}
}

// loadEnvFile tries a .env file from the usual locations. A missing file is fine.
func loadEnvFile() {
	envLocations := []string{
		".env",          // Current directory
		"../../.env",    // Project root when running from cmd/board
		"../../../.env", // Even higher directory
		filepath.Join(os.Getenv("GOPATH"), "src/board/.env"),
	}
	for _, location := range envLocations {
		if err := godotenv.Load(location); err == nil {
			return
		}
	}
}

// Helper function to get environment variable with default fallback
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		slog.Warn("Ignoring invalid integer setting", "key", key, "value", value)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		slog.Warn("Ignoring invalid duration setting", "key", key, "value", value)
	}
	return defaultValue
}

// Helper function to extract sslmode from a DSN, defaults to "require"
func getSSLModeFromURI(uri string) string {
	if _, query, found := strings.Cut(uri, "?"); found {
		for _, param := range strings.Split(query, "&") {
			if key, value, ok := strings.Cut(param, "="); ok && key == "sslmode" {
				return value
			}
		}
	}
	return "require"
}

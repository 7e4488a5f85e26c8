package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigSQLite(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", "/tmp/board-test.db")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("PORT", "9090")
	t.Setenv("VIEW_SESSION_TTL", "10m")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example,http://b.example")
	t.Setenv("MONGO_URI", "")
	t.Setenv("BOOTSTRAP_MODERATOR", "root")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite3", cfg.Database.Driver())
	assert.Equal(t, "/tmp/board-test.db", cfg.Database.DSN())
	assert.Equal(t, 10*time.Minute, cfg.ViewWindow)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, "s3cret", cfg.Auth.JWTSecret)
	assert.False(t, cfg.Audit.Enabled())
	assert.Equal(t, "root", cfg.BootstrapModerator)
}

func TestLoadConfigPostgresFromParts(t *testing.T) {
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_USER", "board")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "boarddb")
	t.Setenv("DB_SSL_MODE", "disable")
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver())
	assert.Equal(t, "postgresql://board:pw@db:5432/boarddb?sslmode=disable", cfg.Database.DSN())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DEBUG", "")

	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("DEBUG", "true")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, devJWTSecret, cfg.Auth.JWTSecret)
}

func TestLoadConfigRejectsUnknownDatabase(t *testing.T) {
	t.Setenv("DB_TYPE", "oracle")
	t.Setenv("JWT_SECRET", "s3cret")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestGetSSLModeFromURI(t *testing.T) {
	assert.Equal(t, "disable", getSSLModeFromURI("postgres://u:p@h/db?sslmode=disable&x=1"))
	assert.Equal(t, "require", getSSLModeFromURI("postgres://u:p@h/db"))
}

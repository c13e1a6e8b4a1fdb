package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a"}, SplitList("a"))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,b"))
	assert.Equal(t, []string{"a", "b"}, SplitList(" a , b "))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,,b,"))
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("CLIENT_ORIGIN", "")
	t.Setenv("MAILER_ENABLED", "")
	t.Setenv("SMTP_USER", "")
	t.Setenv("FROM_EMAIL", "")

	cfg := Load()
	assert.Equal(t, "10000", cfg.Port)
	assert.Equal(t, "data.sqlite", cfg.DBPath)
	assert.Equal(t, "supersecreto123", cfg.JWTSecret)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ClientOrigins)
	assert.False(t, cfg.MailerEnabled)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("MAILER_ENABLED", "TRUE")
	t.Setenv("CLIENT_ORIGIN", "https://a.example,https://b.example")
	t.Setenv("SMTP_USER", "store@example.com")
	t.Setenv("FROM_EMAIL", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.True(t, cfg.MailerEnabled)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.ClientOrigins)
	// FROM_EMAIL falls back to the SMTP account.
	assert.Equal(t, "store@example.com", cfg.FromEmail)
}

func TestInitDBMigrates(t *testing.T) {
	cfg := &Config{DBPath: t.TempDir() + "/test.sqlite"}
	db, err := InitDB(cfg)
	require.NoError(t, err)

	for _, table := range []string{"users", "products", "orders", "order_items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

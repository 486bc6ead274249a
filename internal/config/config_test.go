package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every env var that Load() reads.
var allConfigKeys = []string{
	"PORT",
	"DB_DRIVER",
	"DB_HOST",
	"DB_PORT",
	"DB_USER",
	"DB_NAME",
	"DB_PATH",
	"DB_PASSWORD",
	"DB_PASSWORD_FILE",
	"DB_MAX_CONNS",
	"DB_INIT_ATTEMPTS",
	"DB_INIT_DELAY",
}

// isolateConfigEnv saves and unsets all config env vars so tests don't
// inherit values from the host environment (e.g. a docker-compose shell).
// t.Cleanup restores the previous values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func writeSecret(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db_password")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load(discardLogger())

	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.Equal(t, ":4000", cfg.ListenAddr())
	assert.Equal(t, DriverMySQL, cfg.DBDriver)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 3306, cfg.DBPort)
	assert.Equal(t, "root", cfg.DBUser)
	assert.Equal(t, "gesture_app", cfg.DBName)
	assert.Equal(t, "", cfg.DBPassword)
	assert.Equal(t, 10, cfg.DBMaxConns)
	assert.Equal(t, 5, cfg.InitAttempts)
	assert.Equal(t, 5*time.Second, cfg.InitDelay)
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("PORT", "8081")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_NAME", "clicks")
	t.Setenv("DB_PASSWORD", "plain")
	t.Setenv("DB_MAX_CONNS", "4")
	t.Setenv("DB_INIT_ATTEMPTS", "3")
	t.Setenv("DB_INIT_DELAY", "250ms")

	cfg, err := Load(discardLogger())

	require.NoError(t, err)
	assert.Equal(t, ":8081", cfg.ListenAddr())
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, 3307, cfg.DBPort)
	assert.Equal(t, "app", cfg.DBUser)
	assert.Equal(t, "clicks", cfg.DBName)
	assert.Equal(t, "plain", cfg.DBPassword)
	assert.Equal(t, 4, cfg.DBMaxConns)
	assert.Equal(t, 3, cfg.InitAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.InitDelay)
}

func TestLoad_SQLiteDriver(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/clicks.db")

	cfg, err := Load(discardLogger())

	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "/tmp/clicks.db", cfg.DBPath)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{key: "PORT", value: "http"},
		{key: "DB_PORT", value: "3306x"},
		{key: "DB_MAX_CONNS", value: "0"},
		{key: "DB_INIT_ATTEMPTS", value: "-1"},
		{key: "DB_INIT_DELAY", value: "soon"},
		{key: "DB_DRIVER", value: "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load(discardLogger())

			assert.Nil(t, cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_PasswordFileWins(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("DB_PASSWORD_FILE", writeSecret(t, "secret\n"))
	t.Setenv("DB_PASSWORD", "plain")

	cfg, err := Load(discardLogger())

	require.NoError(t, err)
	assert.Equal(t, "secret", cfg.DBPassword)
}

func TestResolvePassword(t *testing.T) {
	secret := writeSecret(t, "  secret\n")

	tests := []struct {
		name  string
		file  string
		plain string
		want  string
	}{
		{name: "file takes precedence", file: secret, plain: "plain", want: "secret"},
		{name: "plain fallback", file: "", plain: "plain", want: "plain"},
		{name: "nothing set", file: "", plain: "", want: ""},
		{name: "unreadable file does not fall back", file: filepath.Join(t.TempDir(), "missing"), plain: "plain", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePassword(tt.file, tt.plain, discardLogger()))
		})
	}
}

func TestResolvePassword_LogsUnreadableFile(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	missing := filepath.Join(t.TempDir(), "missing")

	got := ResolvePassword(missing, "plain", logger)

	assert.Equal(t, "", got)
	assert.Contains(t, buf.String(), "failed to read database password file")
	assert.Contains(t, buf.String(), missing)
	assert.NotContains(t, buf.String(), "plain")
}

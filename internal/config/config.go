// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported values for DB_DRIVER.
const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	Port int

	DBDriver   string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBPath     string
	DBMaxConns int

	InitAttempts int
	InitDelay    time.Duration
}

// ListenAddr returns the address the HTTP listener binds to.
func (c *Config) ListenAddr() string {
	return ":" + strconv.Itoa(c.Port)
}

// Load reads configuration from environment variables and returns a validated Config.
// Every variable is optional. Defaults: PORT (4000), DB_DRIVER (mysql),
// DB_HOST (localhost), DB_PORT (3306), DB_USER (root), DB_NAME (gesture_app),
// DB_PATH (clickcounter.db), DB_MAX_CONNS (10), DB_INIT_ATTEMPTS (5),
// DB_INIT_DELAY (5s). Logging variables are read by the logging package.
// The database password is resolved once here, see ResolvePassword.
func Load(logger *slog.Logger) (*Config, error) {
	port, err := intEnv("PORT", 4000)
	if err != nil {
		return nil, err
	}

	driver := stringEnv("DB_DRIVER", DriverMySQL)
	if driver != DriverMySQL && driver != DriverSQLite {
		return nil, fmt.Errorf("DB_DRIVER has unsupported value %q: want %q or %q", driver, DriverMySQL, DriverSQLite)
	}

	dbPort, err := intEnv("DB_PORT", 3306)
	if err != nil {
		return nil, err
	}

	maxConns, err := intEnv("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}
	if maxConns < 1 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", maxConns)
	}

	attempts, err := intEnv("DB_INIT_ATTEMPTS", 5)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		return nil, fmt.Errorf("DB_INIT_ATTEMPTS must be at least 1, got %d", attempts)
	}

	delay := 5 * time.Second
	if v, ok := os.LookupEnv("DB_INIT_DELAY"); ok && v != "" {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("DB_INIT_DELAY has invalid duration %q: %w", v, err)
		}
		delay = parsed
	}

	return &Config{
		Port:         port,
		DBDriver:     driver,
		DBHost:       stringEnv("DB_HOST", "localhost"),
		DBPort:       dbPort,
		DBUser:       stringEnv("DB_USER", "root"),
		DBPassword:   ResolvePassword(os.Getenv("DB_PASSWORD_FILE"), os.Getenv("DB_PASSWORD"), logger),
		DBName:       stringEnv("DB_NAME", "gesture_app"),
		DBPath:       stringEnv("DB_PATH", "clickcounter.db"),
		DBMaxConns:   maxConns,
		InitAttempts: attempts,
		InitDelay:    delay,
	}, nil
}

// ResolvePassword picks the database password. A password file (mounted
// container secret) wins over the plain value; if the file is set but cannot
// be read the result is empty and the plain value is NOT used.
func ResolvePassword(file, plain string, logger *slog.Logger) string {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			logger.Error("failed to read database password file", "path", file, "error", err)
			return ""
		}
		return strings.TrimSpace(string(data))
	}
	return plain
}

// stringEnv returns the value of key, or def when it is unset or empty.
func stringEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s has invalid integer %q: %w", key, v, err)
	}
	return n, nil
}

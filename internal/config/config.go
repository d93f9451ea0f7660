package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissingDBPassword = errors.New("DB_PASSWORD not found in environment variables")

type Config struct {
	Port           string
	DBDriver       string // pgx | sqlite
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBPoolSize     int
	DBPoolRecycle  time.Duration
	DBMigrate      bool
	JWTSecret      string
	AllowedOrigins string
	LoginRateLimit int
	LogFile        string
}

// Load reads an optional .env file and then the process environment.
// Values already set in the environment are never overridden by .env.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Printf("[config] could not read %s: %v", f, err)
		}
	}

	cfg := Config{
		Port:           getEnv("PORT", "5000"),
		DBDriver:       strings.ToLower(getEnv("DB_DRIVER", "pgx")),
		DBHost:         getEnv("DB_HOST", "127.0.0.1"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "studio"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "studio"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),
		LogFile:        os.Getenv("LOG_FILE"),
	}

	if cfg.DBPassword == "" {
		return Config{}, ErrMissingDBPassword
	}
	switch cfg.DBDriver {
	case "pgx", "sqlite":
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	var err error
	if cfg.DBPoolSize, err = getEnvInt("DB_POOL_SIZE", 10); err != nil {
		return Config{}, err
	}
	if cfg.DBPoolSize < 1 {
		return Config{}, fmt.Errorf("DB_POOL_SIZE must be positive, got %d", cfg.DBPoolSize)
	}
	if cfg.LoginRateLimit, err = getEnvInt("LOGIN_RATE_LIMIT", 0); err != nil {
		return Config{}, err
	}
	if cfg.DBPoolRecycle, err = getEnvDuration("DB_POOL_RECYCLE", time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.DBMigrate, err = getEnvBool("DB_MIGRATE", false); err != nil {
		return Config{}, err
	}

	if cfg.JWTSecret == "" {
		log.Printf("[config] JWT_SECRET is empty; every bearer token will be rejected")
	}
	log.Printf("[config] %s", cfg)
	return cfg, nil
}

// DSN returns the data source name for the configured driver. For sqlite the
// database name is the file path (":memory:" works too).
func (c Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.DBName
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

func (c Config) String() string {
	return fmt.Sprintf("PORT=%s DB_DRIVER=%s DB_HOST=%s DB_PORT=%s DB_USER=%s DB_NAME=%s DB_POOL_SIZE=%d DB_POOL_RECYCLE=%s DB_MIGRATE=%t LOGIN_RATE_LIMIT=%d LOG_FILE=%s (secrets masked)",
		c.Port, c.DBDriver, c.DBHost, c.DBPort, c.DBUser, c.DBName, c.DBPoolSize, c.DBPoolRecycle, c.DBMigrate, c.LoginRateLimit, c.LogFile)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid duration for %s: %w", key, err)
	}
	return d, nil
}

func getEnvBool(key string, def bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %w", key, err)
	}
	return b, nil
}

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

const minJWTKeyLen = 16

type Config struct {
	AppName string
	APIPort string

	// JWTKey signs tokens. Their lifetime is fixed at security.TokenTTL.
	JWTKey []byte

	BcryptCost int

	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSslMode   string
	DatabaseURL string
	DBMaxConns  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginMaxFailures int
	LoginLockout     time.Duration

	LogFormat string
	LogLevel  string
}

// Load reads an optional .env file and then the process environment.
// The returned Config is immutable for the life of the process.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		AppName:          getEnv("APP_NAME", "Todo Server"),
		APIPort:          getEnv("API_PORT", "8080"),
		JWTKey:           []byte(getEnv("JWT_SECRET", "")),
		BcryptCost:       getEnvAsInt("BCRYPT_COST", bcrypt.DefaultCost),
		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "postgres"),
		DBPassword:       getEnv("DB_PASSWORD", "postgres"),
		DBName:           getEnv("DB_NAME", "todo"),
		DBSslMode:        getEnv("DB_SSLMODE", "disable"),
		DBMaxConns:       getEnvAsInt("DB_MAX_CONNS", 25),
		RedisAddr:        getEnv("REDIS_ADDR", ""),
		RedisPassword:    getEnv("REDIS_PASSWORD", ""),
		RedisDB:          getEnvAsInt("REDIS_DB", 0),
		LoginMaxFailures: getEnvAsInt("LOGIN_MAX_FAILURES", 7),
		LoginLockout:     time.Duration(getEnvAsInt("LOGIN_LOCKOUT_MINUTES", 15)) * time.Minute,
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
			cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSslMode)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if len(c.JWTKey) < minJWTKeyLen {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes", minJWTKeyLen)
	}
	if c.BcryptCost < bcrypt.MinCost || c.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
	}
	if c.DBMaxConns < 1 || c.DBMaxConns > 1000 {
		return errors.New("DB_MAX_CONNS must be between 1 and 1000")
	}
	if c.LoginMaxFailures < 1 {
		return errors.New("LOGIN_MAX_FAILURES must be positive")
	}
	if c.LoginLockout <= 0 {
		return errors.New("LOGIN_LOCKOUT_MINUTES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

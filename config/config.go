package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	Host           string
	Port           string
	FrontendOrigin string

	// DBURL is optional: when empty the service runs on the in-memory store.
	DBURL string

	AccessTokenSecret  string
	RefreshTokenSecret string
	AccessExpiryMin    int
	RefreshExpiryMin   int

	// CookieDomain scopes session cookies to the apex domain in production so
	// subdomains share the session. Left empty in development.
	CookieDomain string
}

// Load reads configuration from a .env file (when present) and the process
// environment. Both token secrets are required and must differ: compromise
// of one class of token must not compromise the other.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:                getEnv("ENV", "development"),
		Host:               getEnv("API_URL", "localhost"),
		Port:               getEnv("API_PORT", "3000"),
		FrontendOrigin:     getEnv("FE_ORIGIN", "http://localhost:4200"),
		DBURL:              getEnv("DB_URL", ""),
		AccessTokenSecret:  os.Getenv("ACCESS_TOKEN_SECRET"),
		RefreshTokenSecret: os.Getenv("REFRESH_TOKEN_SECRET"),
		AccessExpiryMin:    getEnvAsInt("ACCESS_TOKEN_EXPIRY", 15),
		RefreshExpiryMin:   getEnvAsInt("REFRESH_TOKEN_EXPIRY", 43200),
		CookieDomain:       getEnv("COOKIE_DOMAIN", ""),
	}

	if cfg.AccessTokenSecret == "" {
		return nil, errors.New("missing required environment variable: ACCESS_TOKEN_SECRET")
	}
	if cfg.RefreshTokenSecret == "" {
		return nil, errors.New("missing required environment variable: REFRESH_TOKEN_SECRET")
	}
	if cfg.AccessTokenSecret == cfg.RefreshTokenSecret {
		return nil, errors.New("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessExpiryMin) * time.Minute
}

func (c *Config) RefreshTokenTTL() time.Duration {
	return time.Duration(c.RefreshExpiryMin) * time.Minute
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}
	return val
}

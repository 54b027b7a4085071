package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Tickets  TicketsConfig
	Log      LogConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver     string // "sqlite3" or "postgres"
	URL        string // Full database URL
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type AuthConfig struct {
	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	// LoginRateLimit is the number of login attempts allowed per client IP
	// within LoginRateWindow. Zero disables the limiter.
	LoginRateLimit  int
	LoginRateWindow time.Duration
}

type TicketsConfig struct {
	MaxPerPurchase int
}

type LogConfig struct {
	Level string
}

// Load reads configuration from the environment, optionally seeded from
// .env.local and .env files.
func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Host:           getEnv("HOST", "localhost"),
			Env:            getEnv("ENV", "development"),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: parseDatabaseConfig(),
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", 5*time.Minute),
			RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", 24*time.Hour),
			LoginRateLimit:  getEnvAsInt("LOGIN_RATE_LIMIT", 0),
			LoginRateWindow: getEnvAsDuration("LOGIN_RATE_WINDOW", 15*time.Minute),
		},
		Tickets: TicketsConfig{
			MaxPerPurchase: getEnvAsInt("MAX_TICKETS_PER_PURCHASE", 10),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	return config, nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

func parseDatabaseConfig() DatabaseConfig {
	driver := getEnv("DB_DRIVER", "sqlite3")

	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		config := parseDatabaseURL(databaseURL)
		config.Driver = driver
		if strings.HasPrefix(databaseURL, "postgres") {
			config.Driver = "postgres"
		}
		return config
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Driver:     driver,
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       getEnvAsInt("DB_PORT", 5432),
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "event_ticketing"),
		SSLMode:    getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "event_ticketing.db"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	// Parse the URL
	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	// Extract components
	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	config.DBName = strings.TrimPrefix(u.Path, "/")

	// Parse query parameters for SSL mode
	query := u.Query()
	config.SSLMode = query.Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

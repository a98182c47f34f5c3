package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// JWT
	JWTSecret        string
	JWTExpirationDur time.Duration
	JWTRefreshExpDur time.Duration

	// Calendar
	CalendarTZ string

	// Calendar client
	APIURL         string
	APIEmail       string
	APIPassword    string
	RequestTimeout time.Duration
}

var appConfig *Config

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if not already loaded
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	config := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		DBDriver:   getEnv("DB_DRIVER", "postgres"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "paisa"),
		DBPassword: getEnv("DB_PASSWORD", "paisa"),
		DBName:     getEnv("DB_NAME", "paisa"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "paisa.db"),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "fallback-secret-key-for-dev-only"),

		// Calendar
		CalendarTZ: getEnv("CALENDAR_TZ", ""),

		// Calendar client
		APIURL:      getEnv("PAISA_API_URL", "http://localhost:8080"),
		APIEmail:    getEnv("PAISA_EMAIL", ""),
		APIPassword: getEnv("PAISA_PASSWORD", ""),
	}

	config.JWTExpirationDur = getDuration("JWT_EXPIRES_IN", 15*time.Minute)
	config.JWTRefreshExpDur = getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour)
	config.RequestTimeout = getDuration("REQUEST_TIMEOUT", 10*time.Second)

	appConfig = config
	return config, nil
}

// Get returns the application configuration
func Get() *Config {
	if appConfig == nil {
		var err error
		appConfig, err = Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	return appConfig
}

// Set replaces the active configuration. Tests use it to avoid reading the environment.
func Set(c *Config) {
	appConfig = c
}

// Location resolves CalendarTZ, falling back to the local zone when unset or unknown.
func (c *Config) Location() *time.Location {
	if c.CalendarTZ == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.CalendarTZ)
	if err != nil {
		log.Printf("Warning: unknown CALENDAR_TZ '%s', using local time\n", c.CalendarTZ)
		return time.Local
	}
	return loc
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: invalid %s value '%s', falling back to %s\n", key, raw, defaultValue)
		return defaultValue
	}
	return d
}

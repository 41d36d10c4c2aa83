package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	Port        string
	GinMode     string
	CORSOrigins []string

	DBType     string // postgres | sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite file
	DBMigrate  bool

	JWTSecret string

	LogLevel  string
	LogFormat string
}

// Load reads configs/.env when present, then the process environment.
func Load() (Config, bool) {
	envLoaded := godotenv.Load("configs/.env") == nil

	cfg := Config{
		AppName:     getenv("APP_NAME", "portfee"),
		Port:        getenv("PORT", "8080"),
		GinMode:     getenv("GIN_MODE", "debug"),
		CORSOrigins: splitList(getenv("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173")),
		DBType:      strings.ToLower(getenv("DB_TYPE", "postgres")),
		DBHost:      getenv("DB_HOST", "localhost"),
		DBPort:      getenv("DB_PORT", "5432"),
		DBUser:      getenv("DB_USER", "postgres"),
		DBPassword:  getenv("DB_PASSWORD", "postgres"),
		DBName:      getenv("DB_NAME", "postgres"),
		DBSSLMode:   getenv("DB_SSLMODE", "disable"),
		DBPath:      getenv("DB_PATH", "portfee.db"),
		DBMigrate:   getenvBool("DB_AUTO_MIGRATE", true),
		JWTSecret:   getenv("JWT_SECRET", ""),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		LogFormat:   getenv("LOG_FORMAT", "json"),
	}
	return cfg, envLoaded
}

// PostgresDSN builds the connection URL from the DB_* settings.
func (c Config) PostgresDSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort + "/" + c.DBName + "?sslmode=" + c.DBSSLMode
}

func (c Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

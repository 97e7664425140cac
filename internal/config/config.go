package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port         string
	AllowOrigins string
	TZDefault    string
	LogLevel     string

	DBDriver   string
	DBPath     string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBLog      bool

	DefaultChargePct float64
	SessionCookie    string
	SessionTTL       time.Duration
	RedisAddr        string
	ReportDir        string
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" { return v }
	return def
}

func atoi(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil { return i }
	}
	return def
}

func atof(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil { return f }
	}
	return def
}

func atob(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil { return b }
	}
	return def
}

func Load() *Config {
	return &Config{
		Port:             getenv("PORT", "8080"),
		AllowOrigins:     getenv("ALLOW_ORIGINS", "*"),
		TZDefault:        getenv("TZ_DEFAULT", "Asia/Kolkata"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		DBDriver:         strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBPath:           getenv("DB_PATH", "store.db"),
		DBHost:           getenv("DB_HOST", "127.0.0.1"),
		DBPort:           getenv("DB_PORT", ""),
		DBUser:           getenv("DB_USER", ""),
		DBPassword:       getenv("DB_PASSWORD", ""),
		DBName:           getenv("DB_NAME", "store"),
		DBSSLMode:        getenv("DB_SSLMODE", "disable"),
		DBLog:            atob("DB_LOG", false),
		DefaultChargePct: atof("DEFAULT_CHARGE_PCT", 0.5),
		SessionCookie:    getenv("SESSION_COOKIE", "store_session"),
		SessionTTL:       time.Duration(atoi("SESSION_TTL_MINUTES", 720)) * time.Minute,
		RedisAddr:        getenv("REDIS_ADDR", ""),
		ReportDir:        getenv("REPORT_DIR", "."),
	}
}

// Location resolves TZDefault, falling back to India Standard Time when the
// zone database does not know the name.
func (c *Config) Location() *time.Location {
	requested := strings.TrimSpace(c.TZDefault)
	if requested == "" {
		requested = "Asia/Kolkata"
	}
	if loc, err := time.LoadLocation(requested); err == nil {
		return loc
	}
	if loc, err := time.LoadLocation("Asia/Kolkata"); err == nil {
		return loc
	}
	return time.FixedZone("IST", 5*3600+1800)
}

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

type Config struct {
	AppPort  string
	Timezone string

	DBDriver      string
	DBAutoMigrate bool

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	SQLitePath string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs       int
	PolicyCacheTTLSecs int

	JWTSecret string

	LogLevel  string
	LogFormat string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func Load() *Config {
	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		Timezone: getenv("APP_TIMEZONE", "Local"),

		DBDriver:      strings.ToLower(getenv("DB_DRIVER", DriverMySQL)),
		DBAutoMigrate: getbool("DB_AUTO_MIGRATE", false),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "geofence"),
		MySQLUser: getenv("MYSQL_USER", "geofence"),
		MySQLPass: getenv("MYSQL_PASS", "geofence"),

		SQLitePath: getenv("SQLITE_PATH", "geofence.db"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:   getint("REDIS_DB", 0),

		IdempTTLSecs:       getint("IDEMPOTENCY_TTL_SECONDS", 300),
		PolicyCacheTTLSecs: getint("POLICY_CACHE_TTL_SECONDS", 60),

		JWTSecret: os.Getenv("JWT_SECRET"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		LogFormat: getenv("LOG_FORMAT", "json"),
	}
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	if c.IdempTTLSecs <= 0 || c.PolicyCacheTTLSecs <= 0 {
		return errors.New("IDEMPOTENCY_TTL_SECONDS and POLICY_CACHE_TTL_SECONDS must be positive")
	}
	return nil
}

// Location is the zone work hours are evaluated in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) PolicyCacheTTL() time.Duration {
	return time.Duration(c.PolicyCacheTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps stored timestamps zone-free
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

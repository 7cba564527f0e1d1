package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMySQL  = "mysql"
	BackendSQLite = "sqlite"
	BackendMongo  = "mongo"
)

type Config struct {
	AppPort  string
	LogLevel string

	StoreBackend string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	SQLitePath string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdempTTLSecs       int
	ReportCacheTTLSecs int

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ConflictRetries   int
	ConflictBackoffMS int

	ReminderIntervalSecs int
	ReminderWindowDays   int
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// Load reads .env (when present) and then the process environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		StoreBackend: strings.ToLower(getenv("STORE_BACKEND", BackendMySQL)),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "chama"),
		MySQLUser: getenv("MYSQL_USER", "chama"),
		MySQLPass: getenv("MYSQL_PASS", "chama"),

		SQLitePath: getenv("SQLITE_PATH", "./data/chama.db"),

		MongoURI: getenv("MONGO_URI", "mongodb://mongo:27017"),
		MongoDB:  getenv("MONGO_DB", "chama"),

		RedisAddr:     getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getenvInt("REDIS_DB", 0),

		IdempTTLSecs:       getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),
		ReportCacheTTLSecs: getenvInt("REPORT_CACHE_TTL_SECONDS", 30),

		AMQPURL:      os.Getenv("AMQP_URL"),
		AMQPExchange: getenv("AMQP_EXCHANGE", "chama"),
		AMQPQueue:    getenv("AMQP_QUEUE", "loan_events"),

		ConflictRetries:   getenvInt("CONFLICT_RETRIES", 3),
		ConflictBackoffMS: getenvInt("CONFLICT_BACKOFF_MS", 20),

		ReminderIntervalSecs: getenvInt("REMINDER_INTERVAL_SECONDS", 3600),
		ReminderWindowDays:   getenvInt("REMINDER_WINDOW_DAYS", 3),
	}
}

func (c *Config) Validate() error {
	var errs []error
	if c.AppPort == "" {
		errs = append(errs, errors.New("missing APP_PORT"))
	} else if _, err := net.LookupPort("tcp", c.AppPort); err != nil {
		errs = append(errs, fmt.Errorf("invalid APP_PORT %q: %w", c.AppPort, err))
	}

	switch c.StoreBackend {
	case BackendMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			errs = append(errs, errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)"))
		} else if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			// ensure port is valid
			errs = append(errs, fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("missing SQLITE_PATH"))
		}
	case BackendMongo:
		if c.MongoURI == "" || c.MongoDB == "" {
			errs = append(errs, errors.New("missing Mongo config (MONGO_URI/MONGO_DB)"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORE_BACKEND %q (want mysql, sqlite or mongo)", c.StoreBackend))
	}

	if c.ConflictRetries < 0 {
		errs = append(errs, errors.New("CONFLICT_RETRIES must not be negative"))
	}
	if c.ReminderIntervalSecs <= 0 {
		errs = append(errs, errors.New("REMINDER_INTERVAL_SECONDS must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) ReportCacheTTL() time.Duration {
	return time.Duration(c.ReportCacheTTLSecs) * time.Second
}

func (c *Config) ConflictBackoff() time.Duration {
	return time.Duration(c.ConflictBackoffMS) * time.Millisecond
}

func (c *Config) ReminderInterval() time.Duration {
	return time.Duration(c.ReminderIntervalSecs) * time.Second
}

func (c *Config) ReminderWindow() time.Duration {
	return time.Duration(c.ReminderWindowDays) * 24 * time.Hour
}

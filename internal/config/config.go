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
	"github.com/shopspring/decimal"
)

type Config struct {
	AppPort  string
	LogLevel string

	DBDriver   string
	SQLitePath string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs   int
	HistoryTTLHrs  int
	StatsCacheSecs int
	PollEverySecs  int

	CreditBudget decimal.Decimal
	CreditPolicy string

	DatasetPath string
	// local imports must stay under this directory
	DatasetDir string
	// DatasetAnyPath lifts the DatasetDir confinement; it is the only way an
	// empty DatasetDir validates
	DatasetAnyPath bool
	// DatasetRemote enables http(s) dataset URLs
	DatasetRemote bool

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// Load reads the environment, after merging a .env file from the working
// directory when one exists. Variables already set win over the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := &Config{
		AppPort:  getenv("APP_PORT", "8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		DBDriver:   strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		SQLitePath: getenv("SQLITE_PATH", "credapp.db"),

		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "credapp"),
		MySQLUser: getenv("MYSQL_USER", "credapp"),
		MySQLPass: getenv("MYSQL_PASS", "credapp"),

		RedisAddr: getenv("REDIS_ADDR", "redis:6379"),

		CreditPolicy: getenv("CREDIT_POLICY", "institution"),
		DatasetPath:  getenv("DATASET_PATH", ""),
		DatasetDir:   getenv("DATASET_DIR", "dataset"),

		S3Endpoint:  getenv("S3_ENDPOINT", ""),
		S3AccessKey: getenv("S3_ACCESS_KEY", ""),
		S3SecretKey: getenv("S3_SECRET_KEY", ""),
		S3Bucket:    getenv("S3_BUCKET", ""),
	}

	var errs []error
	intVar := func(dst *int, key string, def int) {
		*dst = def
		v := os.Getenv(key)
		if v == "" {
			return
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
			return
		}
		*dst = n
	}
	intVar(&c.RedisDB, "REDIS_DB", 0)
	intVar(&c.IdempTTLSecs, "IDEMPOTENCY_TTL_SECONDS", 300)
	intVar(&c.HistoryTTLHrs, "HISTORY_TTL_HOURS", 24)
	intVar(&c.StatsCacheSecs, "STATS_CACHE_SECONDS", 60)
	intVar(&c.PollEverySecs, "POLL_INTERVAL_SECONDS", 10)

	budget, err := decimal.NewFromString(getenv("CREDIT_BUDGET", "10000000"))
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid CREDIT_BUDGET: %w", err))
	}
	c.CreditBudget = budget

	boolVar := func(dst *bool, key string) {
		v := os.Getenv(key)
		if v == "" {
			return
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("invalid %s %q: %w", key, v, err))
			return
		}
		*dst = b
	}
	boolVar(&c.S3UseSSL, "S3_USE_SSL")
	boolVar(&c.DatasetAnyPath, "DATASET_ALLOW_ANY_PATH")
	boolVar(&c.DatasetRemote, "DATASET_ALLOW_REMOTE")
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (sqlite or mysql)", c.DBDriver)
	}
	if c.RedisAddr == "" {
		return errors.New("missing REDIS_ADDR")
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	if c.HistoryTTLHrs <= 0 {
		return fmt.Errorf("HISTORY_TTL_HOURS must be positive, got %d", c.HistoryTTLHrs)
	}
	if c.StatsCacheSecs < 0 || c.PollEverySecs < 0 {
		return errors.New("STATS_CACHE_SECONDS and POLL_INTERVAL_SECONDS must not be negative")
	}
	if !c.CreditBudget.IsPositive() {
		return fmt.Errorf("CREDIT_BUDGET must be positive, got %s", c.CreditBudget)
	}
	if c.CreditPolicy == "" {
		return errors.New("missing CREDIT_POLICY")
	}
	if c.DatasetDir == "" && !c.DatasetAnyPath {
		return errors.New("missing DATASET_DIR (set DATASET_ALLOW_ANY_PATH=true to import from any local path)")
	}
	if c.S3Endpoint != "" && (c.S3AccessKey == "" || c.S3SecretKey == "") {
		return errors.New("S3_ENDPOINT requires S3_ACCESS_KEY and S3_SECRET_KEY")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&charset=utf8mb4",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN is the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "mysql" {
		return c.MySQLDSN()
	}
	return c.SQLitePath
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }
func (c *Config) HistoryTTL() time.Duration     { return time.Duration(c.HistoryTTLHrs) * time.Hour }
func (c *Config) StatsCacheTTL() time.Duration  { return time.Duration(c.StatsCacheSecs) * time.Second }
func (c *Config) PollInterval() time.Duration   { return time.Duration(c.PollEverySecs) * time.Second }

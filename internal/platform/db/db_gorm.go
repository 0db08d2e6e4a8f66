// Package db opens and migrates the relational store shared by every feature.
package db

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	gmysql "gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Supported values for Config.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// retryInterval is the pause between connection attempts in ConnectWithRetry.
var retryInterval = 3 * time.Second

// Config holds the database connection parameters.
type Config struct {
	Driver       string
	User         string
	Password     string
	Name         string
	Host         string
	Port         string
	InstanceName string // Cloud SQL instance; MySQL connects over its unix socket when set
	SSLMode      string // postgres only
	Path         string // sqlite only
	MaxOpenConns int
	ConnectWait  time.Duration
	Migrate      bool
}

// Opener opens a gorm connection for a DSN. It is swapped out in tests.
type Opener func(dsn string) (*gorm.DB, error)

// LoadConfigFromEnv reads the database configuration from environment variables.
func LoadConfigFromEnv() Config {
	cfg := Config{
		Driver:       strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		User:         os.Getenv("DB_USER"),
		Password:     os.Getenv("DB_PASSWORD"),
		Name:         os.Getenv("DB_NAME"),
		Host:         os.Getenv("DB_HOST"),
		Port:         os.Getenv("DB_PORT"),
		InstanceName: os.Getenv("INSTANCE_CONNECTION_NAME"),
		SSLMode:      getEnv("DB_SSLMODE", "disable"),
		Path:         getEnv("DB_PATH", "blog.db"),
		MaxOpenConns: 25,
		ConnectWait:  60 * time.Second,
		Migrate:      getEnv("RUN_MIGRATIONS", "true") == "true",
	}
	if v, err := strconv.Atoi(os.Getenv("DB_MAX_OPEN_CONNS")); err == nil && v > 0 {
		cfg.MaxOpenConns = v
	}
	if v, err := time.ParseDuration(os.Getenv("DB_CONNECT_TIMEOUT")); err == nil && v > 0 {
		cfg.ConnectWait = v
	}
	return cfg
}

// BuildDSN composes the connection parameters into the DSN format of cfg.Driver.
func BuildDSN(cfg Config) string {
	switch cfg.Driver {
	case DriverPostgres:
		port := cfg.Port
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, port, cfg.SSLMode)
	case DriverSQLite:
		sep := "?"
		if strings.Contains(cfg.Path, "?") {
			sep = "&"
		}
		// SQLite only enforces ON DELETE CASCADE with foreign keys switched on per connection.
		return cfg.Path + sep + "_foreign_keys=on"
	default:
		if cfg.InstanceName != "" {
			return fmt.Sprintf("%s:%s@unix(/cloudsql/%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
				cfg.User, cfg.Password, cfg.InstanceName, cfg.Name)
		}
		port := cfg.Port
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, port, cfg.Name)
	}
}

// NewOpener returns the Opener for the configured driver.
func NewOpener(driver string) (Opener, error) {
	var dialect func(string) gorm.Dialector
	switch driver {
	case DriverMySQL:
		dialect = gmysql.Open
	case DriverPostgres:
		dialect = postgres.Open
	case DriverSQLite:
		dialect = sqlite.Open
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	return func(dsn string) (*gorm.DB, error) {
		return gorm.Open(dialect(dsn), &gorm.Config{TranslateError: true})
	}, nil
}

// ConnectWithRetry calls open until it succeeds or timeout elapses.
// Containerised databases often accept connections some seconds after the app starts.
func ConnectWithRetry(dsn string, timeout time.Duration, open Opener) (*gorm.DB, error) {
	deadline := time.Now().Add(timeout)
	for {
		db, err := open(dsn)
		if err == nil {
			return db, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("db connect failed after %s: %w", timeout, err)
		}
		slog.Warn("db connect failed, retrying", "error", err)
		time.Sleep(min(retryInterval, remaining))
	}
}

// OpenDB connects using cfg, tunes the pool and, when cfg.Migrate is set,
// creates the given models' tables if they are missing.
func OpenDB(cfg Config, models ...any) (*gorm.DB, error) {
	open, err := NewOpener(cfg.Driver)
	if err != nil {
		return nil, err
	}
	db, err := ConnectWithRetry(BuildDSN(cfg), cfg.ConnectWait, open)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.Driver == DriverSQLite && strings.Contains(cfg.Path, ":memory:") {
		// every connection to :memory: is a separate database
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	if cfg.Migrate {
		if err := Migrate(db, models...); err != nil {
			return nil, err
		}
	}
	slog.Info("database ready", "driver", cfg.Driver, "migrated", cfg.Migrate)
	return db, nil
}

// Migrate creates missing tables, columns, indexes and foreign keys. It is idempotent.
// Models are migrated in order, so parents must precede children.
func Migrate(db *gorm.DB, models ...any) error {
	if err := migrationSession(db).AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}

// mysqlTableOptions makes string columns of new MySQL tables compare byte by byte,
// matching PostgreSQL and SQLite. The server default collation is case-insensitive.
const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_bin"

// migrationSession adds dialect specific table options used by CREATE TABLE.
// Tables that already exist keep their collation.
func migrationSession(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == DriverMySQL {
		return db.Set("gorm:table_options", mysqlTableOptions)
	}
	return db
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

package data

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/redis/go-redis/v9"
	"github.com/taskhive/taskhive/config"
	"github.com/taskhive/taskhive/logging/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
)

// Supported drivers
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

// Data holds the relational store and the optional redis client
type Data struct {
	DB     *sqlx.DB
	Redis  *redis.Client
	driver string
	logger *logger.Logger

	mu     sync.RWMutex
	closed bool
}

// New opens the configured connections and returns a cleanup function
func New(cfg *config.Data, l *logger.Logger) (*Data, func(), error) {
	if cfg == nil || cfg.Database == nil {
		return nil, nil, errors.New("database configuration is required")
	}
	if l == nil {
		l = logger.Nop()
	}

	db, err := Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	d := &Data{DB: db, driver: cfg.Database.Driver, logger: l}

	if cfg.Redis != nil && cfg.Redis.Addr != "" {
		d.Redis, err = newRedisClient(cfg.Redis)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
	}

	cleanup := func() {
		if err := d.Close(); err != nil {
			l.Error(context.Background(), "failed to close data layer", "error", err)
		}
	}
	return d, cleanup, nil
}

// NewWithDB wraps an open database, used by tools and tests
func NewWithDB(db *sqlx.DB, driver string, l *logger.Logger) *Data {
	if l == nil {
		l = logger.Nop()
	}
	return &Data{DB: db, driver: driver, logger: l}
}

// Open opens and pings a database with the configured pool settings
func Open(cfg *config.Database) (*sqlx.DB, error) {
	driverName, err := sqlDriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if cfg.Source == "" {
		return nil, fmt.Errorf("%s: connection source is empty", cfg.Driver)
	}

	db, err := sqlx.Open(driverName, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", cfg.Driver, err)
	}

	if cfg.Driver == DriverSQLite {
		// one writer; transactions and plain queries share the connection
		db.SetMaxOpenConns(1)
	} else if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Driver, err)
	}
	return db, nil
}

func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverSQLite:
		return "sqlite3", nil
	case DriverPostgres:
		return "pgx", nil
	case DriverMySQL:
		return "mysql", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func newRedisClient(conf *config.Redis) (*redis.Client, error) {
	rc := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Username: conf.Username,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("redis connect error: %w", err)
	}
	return rc, nil
}

// Driver returns the configured driver name
func (d *Data) Driver() string {
	return d.driver
}

// Rebind converts '?' placeholders to the driver's bind type
func (d *Data) Rebind(query string) string {
	return d.DB.Rebind(query)
}

// Close closes all connections
func (d *Data) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true

	var errs []error
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := d.DB.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Now returns the current time in the storage precision: UTC, microseconds.
func Now() time.Time {
	return Timestamp(time.Now())
}

// Timestamp normalises t to the storage precision.
func Timestamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

// IsUniqueViolation reports whether err is a unique or primary key violation
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	return false
}

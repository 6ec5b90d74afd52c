package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"finance-tracker/internal/config"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

var (
	ErrDuplicate = errors.New("duplicate record")
	ErrNotFound  = errors.New("record not found")
)

// DB wraps a sql.DB connection for one SQL dialect.
type DB struct {
	conn   *sql.DB
	driver string
}

// Open connects to the configured database and runs migrations.
func Open(ctx context.Context, cfg config.Database) (*DB, error) {
	dsn, err := DSN(cfg, false)
	if err != nil {
		return nil, err
	}
	migrationDSN, err := DSN(cfg, true)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	if cfg.Driver == DriverSQLite {
		// SQLite allows a single writer; serialize through one connection.
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxLifetime(5 * time.Minute)
	}

	if err := RunMigrations(cfg.Driver, migrationDSN); err != nil {
		conn.Close()
		return nil, err
	}
	return &DB{conn: conn, driver: cfg.Driver}, nil
}

// NewDB opens a SQLite database file at path.
func NewDB(path string) (*DB, error) {
	return Open(context.Background(), config.Database{Driver: DriverSQLite, Path: path})
}

// DSN builds the driver-specific connection string. Migration connections
// need multi-statement support on MySQL.
func DSN(cfg config.Database, migrations bool) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.Path == "" {
			return "", errors.New("sqlite: empty database path")
		}
		q := url.Values{}
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout(5000)")
		return cfg.Path + "?" + q.Encode(), nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.Loc = time.UTC
		// RowsAffected must count matched rows; an UPDATE writing the
		// same value is still a hit.
		mc.ClientFoundRows = true
		mc.MultiStatements = migrations
		return mc.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}

// Driver returns the SQL dialect in use.
func (db *DB) Driver() string {
	return db.driver
}

// Ping checks the connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// mapError translates driver errors into package sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %v", ErrDuplicate, err)
		}
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

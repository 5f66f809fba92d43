package database

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// Supported values of Options.Driver.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Options describes how to reach the database.  URL, when set, is used
// verbatim as the DSN (a Supabase connection string for example);
// otherwise the DSN is assembled from the individual fields.
type Options struct {
	Driver     string
	URL        string
	User       string
	Pass       string
	Host       string
	Port       string
	Name       string
	SSLMode    string
	SQLitePath string
}

// Dialect maps a driver to the goqu dialect used to build its SQL.
func Dialect(driver string) string {
	switch driver {
	case DriverPostgres:
		return "postgres"
	case DriverSQLite:
		return "sqlite3"
	default:
		return "mysql"
	}
}

// sqlDriverName is the name the driver registered with database/sql.
func sqlDriverName(driver string) (string, error) {
	switch driver {
	case DriverMySQL:
		return "mysql", nil
	case DriverPostgres:
		return "pgx", nil
	case DriverSQLite:
		return "sqlite", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", driver)
}

// DSN builds the connection string for o.Driver.
func (o Options) DSN() (string, error) {
	if o.URL != "" {
		return o.URL, nil
	}
	switch o.Driver {
	case DriverMySQL:
		cfg := mysql.NewConfig()
		cfg.User = o.User
		cfg.Passwd = o.Pass
		cfg.Net = "tcp"
		cfg.Addr = net.JoinHostPort(o.Host, orDefault(o.Port, "3306"))
		cfg.DBName = o.Name
		// parseTime=true -> DATETIME -> time.Time | loc=UTC keeps times consistent
		cfg.ParseTime = true
		cfg.Loc = time.UTC
		cfg.Params = map[string]string{"charset": "utf8mb4"}
		return cfg.FormatDSN(), nil
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   net.JoinHostPort(o.Host, orDefault(o.Port, "5432")),
			Path:   "/" + o.Name,
		}
		if o.Pass != "" {
			u.User = url.UserPassword(o.User, o.Pass)
		} else {
			u.User = url.User(o.User)
		}
		sslMode := o.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		u.RawQuery = url.Values{"sslmode": {sslMode}}.Encode()
		return u.String(), nil
	case DriverSQLite:
		path := o.SQLitePath
		if path == "" {
			path = "villa.db"
		}
		if path == ":memory:" {
			return path, nil
		}
		return path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", nil
	}
	return "", fmt.Errorf("unsupported database driver %q", o.Driver)
}

// Open connects to the configured database and verifies the connection.
func Open(o Options) (*sqlx.DB, error) {
	name, err := sqlDriverName(o.Driver)
	if err != nil {
		return nil, err
	}
	dsn, err := o.DSN()
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	if o.Driver == DriverSQLite {
		// a single connection keeps ":memory:" databases shared and
		// serialises writers the way SQLite wants anyway
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", o.Driver, err)
	}
	return db, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

package repository

import (
	"context"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // mysql dialect
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // postgres dialect
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // sqlite dialect
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/iliyamo/villa-booking/internal/database"
)

const (
	tableVillas       = "villas"
	tableBookings     = "bookings"
	tableTransactions = "transactions"
)

// SQLStore is the relational store.  Queries are built with goqu for the
// configured dialect and scanned into the model structs with sqlx.
type SQLStore struct {
	db      *sqlx.DB
	driver  string
	dialect goqu.DialectWrapper
	logger  *zap.Logger
	now     func() time.Time
}

// NewSQLStore wraps an open connection.  driver is one of the
// database.Driver* constants and selects the SQL dialect.
func NewSQLStore(db *sqlx.DB, driver string, logger *zap.Logger) *SQLStore {
	if db == nil {
		panic("nil db passed to NewSQLStore")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{
		db:      db,
		driver:  driver,
		dialect: goqu.Dialect(database.Dialect(driver)),
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// DB exposes the underlying connection for callers that need to run
// migrations or close it on shutdown.
func (s *SQLStore) DB() *sqlx.DB { return s.db }

// Driver reports the backend name for health output.
func (s *SQLStore) Driver() string { return s.driver }

// Ping checks the connection.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// supportsRowLocks is false for SQLite, which has no SELECT ... FOR UPDATE
// and serialises writers on its own.
func (s *SQLStore) supportsRowLocks() bool {
	return s.driver != database.DriverSQLite
}

// withTx runs fn inside a transaction, committing on success and rolling
// back on any error.
func (s *SQLStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

type sqlBuilder interface {
	ToSQL() (string, []interface{}, error)
}

// build renders a goqu dataset and logs it at debug level.
func (s *SQLStore) build(ds sqlBuilder) (string, []interface{}, error) {
	q, args, err := ds.ToSQL()
	if err != nil {
		s.logger.Error("failed to build query", zap.Error(err))
		return "", nil, err
	}
	s.logger.Debug("sql", zap.String("query", q), zap.Int("args", len(args)))
	return q, args, nil
}

// isUniqueViolation recognises duplicate-key errors from each driver.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return false
}

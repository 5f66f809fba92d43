package database

import (
	"context"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name string
		o    Options
		want string
	}{
		{
			name: "url wins",
			o:    Options{Driver: DriverPostgres, URL: "postgres://u:p@db.supabase.co:5432/postgres", Host: "ignored"},
			want: "postgres://u:p@db.supabase.co:5432/postgres",
		},
		{
			name: "postgres default port and sslmode",
			o:    Options{Driver: DriverPostgres, User: "villa", Pass: "pw", Host: "db", Name: "villa"},
			want: "postgres://villa:pw@db:5432/villa?sslmode=require",
		},
		{
			name: "postgres without password",
			o:    Options{Driver: DriverPostgres, User: "villa", Host: "db", Port: "6543", Name: "villa", SSLMode: "disable"},
			want: "postgres://villa@db:6543/villa?sslmode=disable",
		},
		{
			name: "sqlite memory",
			o:    Options{Driver: DriverSQLite, SQLitePath: ":memory:"},
			want: ":memory:",
		},
		{
			name: "sqlite file",
			o:    Options{Driver: DriverSQLite},
			want: "villa.db?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.o.DSN()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Options{Driver: "oracle"}.DSN()
	assert.Error(t, err)
}

func TestMySQLDSN(t *testing.T) {
	dsn, err := Options{Driver: DriverMySQL, User: "villa", Pass: "pw", Host: "127.0.0.1", Name: "villa"}.DSN()
	require.NoError(t, err)

	cfg, err := mysql.ParseDSN(dsn)
	require.NoError(t, err)
	assert.Equal(t, "villa", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "127.0.0.1:3306", cfg.Addr)
	assert.Equal(t, "villa", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, time.UTC, cfg.Loc)
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "mysql", Dialect(DriverMySQL))
	assert.Equal(t, "postgres", Dialect(DriverPostgres))
	assert.Equal(t, "sqlite3", Dialect(DriverSQLite))
}

func TestMigrateSQLiteIsIdempotent(t *testing.T) {
	db, err := Open(Options{Driver: DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()
	require.NoError(t, Migrate(ctx, db, DriverSQLite))
	require.NoError(t, Migrate(ctx, db, DriverSQLite))

	var tables []string
	require.NoError(t, db.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"bookings", "transactions", "villas"}, tables)

	assert.Error(t, Migrate(ctx, db, "oracle"))
}

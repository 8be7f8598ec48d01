package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	"github.com/goliatone/go-autotranslate/internal/runtimeconfig"
	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/internal/translationconfig"
)

var (
	// ErrUnsupportedDriver is returned for drivers other than sqlite3,
	// postgres and mysql.
	ErrUnsupportedDriver = errors.New("storage: unsupported driver")
	// ErrDSNRequired is returned when no connection string is configured.
	ErrDSNRequired = errors.New("storage: dsn required")
)

// Open connects to the configured database and wraps it with the matching
// bun dialect. The connection is pinged before it is returned.
func Open(ctx context.Context, cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}

	driver := runtimeconfig.NormalizeDriver(cfg.Driver)
	sqlDriver, dialect, err := dialectFor(driver)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, cfg.Driver)
	}

	sqlDB, err := sql.Open(sqlDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", driver, err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("storage: ping %s: %w", driver, err)
	}
	return bun.NewDB(sqlDB, dialect), nil
}

func dialectFor(driver string) (string, schema.Dialect, error) {
	switch driver {
	case "sqlite3":
		return "sqlite3", sqlitedialect.New(), nil
	case "postgres":
		return "pgx", pgdialect.New(), nil
	case "mysql":
		return "mysql", mysqldialect.New(), nil
	default:
		return "", nil, ErrUnsupportedDriver
	}
}

// EnsureSchema creates the staleness and settings tables when they do not
// exist. Hosts running their own migrations can use the embedded SQL files
// instead.
func EnsureSchema(ctx context.Context, db bun.IDB) error {
	if db == nil {
		return errors.New("storage: nil database")
	}
	models := []any{
		(*staleness.Record)(nil),
		(*translationconfig.SettingsModel)(nil),
	}
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table for %T: %w", model, err)
		}
	}
	return nil
}

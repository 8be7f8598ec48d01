package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBSeq atomic.Uint64

// NewSQLiteMemoryDB opens a private in-memory sqlite database. Each call gets
// its own named database so tests never share tables.
func NewSQLiteMemoryDB() (*sql.DB, error) {
	name := fmt.Sprintf("autotranslate_%d", memoryDBSeq.Add(1))
	return sql.Open("sqlite3", "file:"+name+"?mode=memory&cache=shared")
}

// NewBunSQLite returns a bun handle over a private in-memory database and
// creates the tables for the given models.
func NewBunSQLite(tb testing.TB, models ...any) *bun.DB {
	tb.Helper()
	sqlDB, err := NewSQLiteMemoryDB()
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqlDB, sqlitedialect.New())
	db.SetMaxOpenConns(1)
	tb.Cleanup(func() {
		_ = db.Close()
	})
	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(tb.Context()); err != nil {
			tb.Fatalf("create table for %T: %v", model, err)
		}
	}
	return db
}

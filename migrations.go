package autotranslate

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-autotranslate/internal/runtimeconfig"
)

//go:embed data/sql/migrations
var migrationsFS embed.FS

// GetMigrationsFS returns the embedded migration files for this package,
// one directory per dialect.
func GetMigrationsFS() embed.FS {
	return migrationsFS
}

// MigrationsFor returns the migrations of one driver (sqlite3, postgres or
// mysql, aliases accepted) rooted at their directory.
func MigrationsFor(driver string) (fs.FS, error) {
	dir := ""
	switch runtimeconfig.NormalizeDriver(driver) {
	case "sqlite3":
		dir = "sqlite"
	case "postgres":
		dir = "postgres"
	case "mysql":
		dir = "mysql"
	default:
		return nil, fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
	return fs.Sub(migrationsFS, "data/sql/migrations/"+dir)
}

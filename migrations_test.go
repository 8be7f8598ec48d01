package autotranslate_test

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	autotranslate "github.com/goliatone/go-autotranslate"
)

func TestMigrationsForEveryDialect(t *testing.T) {
	for _, driver := range []string{"sqlite", "sqlite3", "postgres", "pgx", "mysql"} {
		fsys, err := autotranslate.MigrationsFor(driver)
		if err != nil {
			t.Fatalf("MigrationsFor(%q): %v", driver, err)
		}
		ups, err := fs.Glob(fsys, "*.up.sql")
		if err != nil {
			t.Fatalf("glob %q: %v", driver, err)
		}
		if len(ups) != 2 {
			t.Fatalf("expected two up migrations for %q, got %v", driver, ups)
		}
		for _, name := range ups {
			down := strings.TrimSuffix(name, ".up.sql") + ".down.sql"
			if _, err := fs.Stat(fsys, down); err != nil {
				t.Fatalf("missing %s for %q: %v", down, driver, err)
			}
		}
		body, err := fs.ReadFile(fsys, ups[0])
		if err != nil {
			t.Fatalf("read %s: %v", ups[0], err)
		}
		if !strings.Contains(string(body), "autotranslate_staleness") {
			t.Fatalf("expected staleness table first for %q", driver)
		}
	}
}

func TestMigrationsForUnknownDriver(t *testing.T) {
	if _, err := autotranslate.MigrationsFor("oracle"); !errors.Is(err, autotranslate.ErrStorageDriverUnknown) {
		t.Fatalf("expected ErrStorageDriverUnknown, got %v", err)
	}
}

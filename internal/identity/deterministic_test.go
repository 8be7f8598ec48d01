package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsStable(t *testing.T) {
	first := UUID("autotranslate:test:key")
	second := UUID("  autotranslate:test:key ")
	if first == uuid.Nil {
		t.Fatal("expected non-nil uuid")
	}
	if first != second {
		t.Fatalf("expected trimmed keys to match: %s vs %s", first, second)
	}
	if UUID("   ") != uuid.Nil {
		t.Fatal("expected blank key to map to uuid.Nil")
	}
}

func TestStalenessUUIDSeparatesKeys(t *testing.T) {
	base := StalenessUUID("quiz", 7, "intro", "de")
	if base != StalenessUUID("quiz", 7, "intro", "DE") {
		t.Fatal("expected target language to be case insensitive")
	}
	others := []uuid.UUID{
		StalenessUUID("quiz", 8, "intro", "de"),
		StalenessUUID("quiz", 7, "name", "de"),
		StalenessUUID("quiz", 7, "intro", "fr"),
		StalenessUUID("book", 7, "intro", "de"),
	}
	for i, other := range others {
		if other == base {
			t.Fatalf("case %d: expected distinct uuid", i)
		}
	}
}

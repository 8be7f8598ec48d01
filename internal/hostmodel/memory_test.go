package hostmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

func TestMemoryListRecordsOrdersByID(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.DefineTable("book_chapters",
		interfaces.Column{Name: "id", Kind: interfaces.ColumnInteger},
		interfaces.Column{Name: "bookid", Kind: interfaces.ColumnInteger},
		interfaces.Column{Name: "title", Kind: interfaces.ColumnChar, MaxLength: 255},
	)
	for _, row := range []interfaces.ContentRecord{
		{"id": int64(3), "bookid": int64(1), "title": "Third"},
		{"id": int64(1), "bookid": int64(1), "title": "First"},
		{"id": int64(2), "bookid": int64(9), "title": "Other book"},
	} {
		if err := m.Put("book_chapters", row); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}

	rows, err := m.ListRecords(ctx, "book_chapters", "bookid", 1)
	if err != nil {
		t.Fatalf("ListRecords: %v", err)
	}
	if len(rows) != 2 || rows[0].String("title") != "First" || rows[1].String("title") != "Third" {
		t.Fatalf("unexpected rows %v", rows)
	}

	if _, err := m.GetRecord(ctx, "book_chapters", 42); !errors.Is(err, interfaces.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
	if _, err := m.GetColumns(ctx, "missing"); !errors.Is(err, ErrUnknownTable) {
		t.Fatalf("expected ErrUnknownTable, got %v", err)
	}
}

func TestMemoryUpdateFieldEnforcesLength(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.DefineTable("label",
		interfaces.Column{Name: "id", Kind: interfaces.ColumnInteger},
		interfaces.Column{Name: "name", Kind: interfaces.ColumnChar, MaxLength: 5},
	)
	if err := m.Put("label", interfaces.ContentRecord{"id": int64(1), "name": "abc"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	err := m.UpdateField(ctx, "label", 1, "name", "ñandúes")
	var writeErr *interfaces.WriteError
	if !errors.As(err, &writeErr) {
		t.Fatalf("expected *WriteError, got %v", err)
	}
	if writeErr.Actual != 7 || writeErr.Max != 5 {
		t.Fatalf("unexpected lengths %+v", writeErr)
	}
	if !errors.Is(err, interfaces.ErrWriteFailed) {
		t.Fatal("expected WriteError to match ErrWriteFailed")
	}

	if err := m.UpdateField(ctx, "label", 1, "name", "ñandú"); err != nil {
		t.Fatalf("UpdateField within limit: %v", err)
	}
	record, _ := m.GetRecord(ctx, "label", 1)
	if record.String("name") != "ñandú" {
		t.Fatalf("unexpected stored value %q", record.String("name"))
	}

	if err := m.UpdateField(ctx, "label", 1, "intro", "x"); !errors.Is(err, ErrUnknownColumn) {
		t.Fatalf("expected ErrUnknownColumn, got %v", err)
	}
	if err := m.UpdateField(ctx, "label", 2, "name", "x"); !errors.Is(err, interfaces.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestParseColumnType(t *testing.T) {
	cases := []struct {
		declared string
		length   int
		kind     interfaces.ColumnKind
		size     int
	}{
		{"VARCHAR(1333)", 0, interfaces.ColumnChar, 1333},
		{"character varying", 255, interfaces.ColumnChar, 255},
		{"longtext", 0, interfaces.ColumnText, 0},
		{"TEXT", 0, interfaces.ColumnText, 0},
		{"BIGINT", 0, interfaces.ColumnInteger, 0},
		{"decimal(10,5)", 0, interfaces.ColumnNumber, 0},
		{"bytea", 0, interfaces.ColumnBinary, 0},
		{"timestamp", 0, interfaces.ColumnOther, 0},
	}
	for _, tc := range cases {
		kind, size := ParseColumnType(tc.declared, tc.length)
		if kind != tc.kind || size != tc.size {
			t.Fatalf("ParseColumnType(%q) = %s/%d, want %s/%d", tc.declared, kind, size, tc.kind, tc.size)
		}
	}
}

func TestLayoutValidate(t *testing.T) {
	if err := DefaultLayout().Validate(); err != nil {
		t.Fatalf("default layout invalid: %v", err)
	}
	layout := DefaultLayout()
	layout.LeafTable = ""
	if err := layout.Validate(); !errors.Is(err, ErrLayoutInvalid) {
		t.Fatalf("expected ErrLayoutInvalid, got %v", err)
	}
}

func TestOrderBySequence(t *testing.T) {
	rows := []interfaces.ContentRecord{{"id": int64(1)}, {"id": int64(2)}, {"id": int64(3)}, {"id": int64(4)}}
	ordered := orderBySequence(rows, "3, 1,,x,3")
	got := []int64{ordered[0].ID(), ordered[1].ID(), ordered[2].ID(), ordered[3].ID()}
	want := []int64{3, 1, 2, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected order %v", got)
		}
	}
}

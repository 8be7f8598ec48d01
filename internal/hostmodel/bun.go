package hostmodel

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Bun reads the content hierarchy from SQL tables described by a Layout.
type Bun struct {
	db     *bun.DB
	layout Layout
	logger interfaces.Logger

	mu      sync.RWMutex
	columns map[string][]interfaces.Column
	modules map[int64]string
}

var _ interfaces.ContentModel = (*Bun)(nil)

// BunOption customises a Bun content model.
type BunOption func(*Bun)

// WithLogger sets the logger that reports skipped content.
func WithLogger(logger interfaces.Logger) BunOption {
	return func(b *Bun) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBun builds a content model over db.
func NewBun(db *bun.DB, layout Layout, opts ...BunOption) (*Bun, error) {
	if db == nil {
		return nil, errors.New("hostmodel: bun content model requires a database")
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	model := &Bun{
		db:      db,
		layout:  layout,
		logger:  logging.NoOp(),
		columns: make(map[string][]interfaces.Column),
		modules: make(map[int64]string),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(model)
		}
	}
	return model, nil
}

func (b *Bun) ListContainers(ctx context.Context, root interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	l := b.layout
	q := b.selectFrom(l.ContainerTable).Where("? = ?", bun.Ident(l.ContainerParentColumn), root.ID)
	if l.ContainerOrderColumn != "" {
		q = q.OrderExpr("? ASC", bun.Ident(l.ContainerOrderColumn))
	}
	rows, err := b.scanRows(ctx, q.OrderExpr("? ASC", bun.Ident("id")))
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.ContentNode, 0, len(rows))
	for _, row := range rows {
		out = append(out, interfaces.ContentNode{
			SourceType:  l.ContainerTable,
			ID:          row.ID(),
			SubType:     l.ContainerTable,
			ContainerID: root.ID,
			Section:     int(row.Int64(l.ContainerOrderColumn)),
		})
	}
	return out, nil
}

func (b *Bun) ListLeaves(ctx context.Context, container interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	l := b.layout
	rows, err := b.scanRows(ctx, b.selectFrom(l.LeafTable).
		Where("? = ?", bun.Ident(l.LeafContainerColumn), container.ID).
		OrderExpr("? ASC", bun.Ident("id")))
	if err != nil {
		return nil, err
	}
	if l.SequenceColumn != "" {
		record, err := b.GetRecord(ctx, l.ContainerTable, container.ID)
		switch {
		case err == nil:
			rows = orderBySequence(rows, record.String(l.SequenceColumn))
		case errors.Is(err, interfaces.ErrRecordNotFound):
			// Without the container row the leaves keep id order.
			logging.WithContainer(b.logger, container.ID).Warn("hostmodel.container.missing", "table", l.ContainerTable)
		default:
			return nil, err
		}
	}

	out := make([]interfaces.ContentNode, 0, len(rows))
	for _, row := range rows {
		moduleID := row.Int64(l.LeafModuleColumn)
		name, err := b.moduleName(ctx, moduleID)
		if err != nil {
			if errors.Is(err, interfaces.ErrRecordNotFound) {
				logging.WithContainer(b.logger, row.ID()).Warn("hostmodel.leaf.skipped",
					"reason", "module not found", "module_id", moduleID)
				continue
			}
			return nil, err
		}
		out = append(out, interfaces.ContentNode{
			SourceType:  name,
			ID:          row.Int64(l.LeafInstanceColumn),
			SubType:     name,
			ContainerID: row.ID(),
			Section:     container.Section,
		})
	}
	return out, nil
}

func (b *Bun) ListSubItems(ctx context.Context, leaf interfaces.ContentNode) ([]interfaces.ContentNode, error) {
	src, ok := b.layout.SubItems[leaf.SubType]
	if !ok {
		return nil, nil
	}
	q := b.selectFrom(src.LinkTable).Where("? = ?", bun.Ident(src.LinkParentColumn), leaf.ID)
	if src.LinkOrderColumn != "" {
		q = q.OrderExpr("? ASC", bun.Ident(src.LinkOrderColumn))
	}
	links, err := b.scanRows(ctx, q.OrderExpr("? ASC", bun.Ident("id")))
	if err != nil {
		return nil, err
	}
	out := make([]interfaces.ContentNode, 0, len(links))
	for _, link := range links {
		targetID := link.Int64(src.LinkRefColumn)
		subType := ""
		if src.TypeColumn != "" {
			target, err := b.GetRecord(ctx, src.TargetTable, targetID)
			if err != nil {
				if errors.Is(err, interfaces.ErrRecordNotFound) {
					continue
				}
				return nil, err
			}
			subType = target.String(src.TypeColumn)
		}
		out = append(out, interfaces.ContentNode{
			SourceType:  src.TargetTable,
			ID:          targetID,
			SubType:     subType,
			ContainerID: leaf.ContainerID,
			Section:     leaf.Section,
		})
	}
	return out, nil
}

func (b *Bun) ListRecords(ctx context.Context, sourceType, parentColumn string, parentID int64) ([]interfaces.ContentRecord, error) {
	return b.scanRows(ctx, b.selectFrom(sourceType).
		Where("? = ?", bun.Ident(parentColumn), parentID).
		OrderExpr("? ASC", bun.Ident("id")))
}

func (b *Bun) GetRecord(ctx context.Context, sourceType string, id int64) (interfaces.ContentRecord, error) {
	row := map[string]any{}
	err := b.selectFrom(sourceType).Where("? = ?", bun.Ident("id"), id).Limit(1).Scan(ctx, &row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s id=%d", interfaces.ErrRecordNotFound, sourceType, id)
		}
		return nil, fmt.Errorf("hostmodel: get %s id=%d: %w", sourceType, id, err)
	}
	if len(row) == 0 {
		return nil, fmt.Errorf("%w: %s id=%d", interfaces.ErrRecordNotFound, sourceType, id)
	}
	return interfaces.ContentRecord(row), nil
}

// GetColumns introspects the table once and caches the result.
func (b *Bun) GetColumns(ctx context.Context, sourceType string) ([]interfaces.Column, error) {
	b.mu.RLock()
	cached, ok := b.columns[sourceType]
	b.mu.RUnlock()
	if ok {
		return slices.Clone(cached), nil
	}

	var (
		columns []interfaces.Column
		err     error
	)
	table := b.layout.table(sourceType)
	switch b.db.Dialect().Name() {
	case dialect.SQLite:
		columns, err = b.sqliteColumns(ctx, table)
	case dialect.PG, dialect.MySQL:
		columns, err = b.informationSchemaColumns(ctx, table)
	default:
		err = fmt.Errorf("hostmodel: unsupported dialect %s", b.db.Dialect().Name())
	}
	if err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, sourceType)
	}

	b.mu.Lock()
	b.columns[sourceType] = columns
	b.mu.Unlock()
	return slices.Clone(columns), nil
}

// UpdateField writes one column after checking it exists and fits.
func (b *Bun) UpdateField(ctx context.Context, sourceType string, id int64, column, value string) error {
	columns, err := b.GetColumns(ctx, sourceType)
	if err != nil {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: err}
	}
	idx := slices.IndexFunc(columns, func(c interfaces.Column) bool { return c.Name == column })
	if idx < 0 {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: ErrUnknownColumn}
	}
	if limit := columns[idx].MaxLength; limit > 0 {
		if n := utf8.RuneCountInString(value); n > limit {
			return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Actual: n, Max: limit}
		}
	}

	res, err := b.db.NewUpdate().
		TableExpr("?", bun.Ident(b.layout.table(sourceType))).
		Set("? = ?", bun.Ident(column), value).
		Where("? = ?", bun.Ident("id"), id).
		Exec(ctx)
	if err != nil {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: err}
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &interfaces.WriteError{SourceType: sourceType, ID: id, Column: column, Err: interfaces.ErrRecordNotFound}
	}
	return nil
}

func (b *Bun) selectFrom(sourceType string) *bun.SelectQuery {
	return b.db.NewSelect().TableExpr("?", bun.Ident(b.layout.table(sourceType)))
}

func (b *Bun) scanRows(ctx context.Context, q *bun.SelectQuery) ([]interfaces.ContentRecord, error) {
	var rows []map[string]any
	if err := q.Scan(ctx, &rows); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("hostmodel: list: %w", err)
	}
	out := make([]interfaces.ContentRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, interfaces.ContentRecord(row))
	}
	return out, nil
}

func (b *Bun) moduleName(ctx context.Context, moduleID int64) (string, error) {
	b.mu.RLock()
	name, ok := b.modules[moduleID]
	b.mu.RUnlock()
	if ok {
		return name, nil
	}
	record, err := b.GetRecord(ctx, b.layout.ModuleTable, moduleID)
	if err != nil {
		return "", err
	}
	name = record.String(b.layout.ModuleNameColumn)
	b.mu.Lock()
	b.modules[moduleID] = name
	b.mu.Unlock()
	return name, nil
}

type sqliteColumn struct {
	CID        int64          `bun:"cid"`
	Name       string         `bun:"name"`
	Type       string         `bun:"type"`
	NotNull    int64          `bun:"column:notnull"`
	Default    sql.NullString `bun:"dflt_value"`
	PrimaryKey int64          `bun:"column:pk"`
}

func (b *Bun) sqliteColumns(ctx context.Context, table string) ([]interfaces.Column, error) {
	var rows []sqliteColumn
	if err := b.db.NewRaw("SELECT * FROM pragma_table_info(?)", table).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("hostmodel: table info %s: %w", table, err)
	}
	out := make([]interfaces.Column, 0, len(rows))
	for _, row := range rows {
		kind, size := ParseColumnType(row.Type, 0)
		out = append(out, interfaces.Column{Name: row.Name, Kind: kind, MaxLength: size})
	}
	return out, nil
}

type schemaColumn struct {
	Name      string        `bun:"column_name"`
	DataType  string        `bun:"data_type"`
	MaxLength sql.NullInt64 `bun:"character_maximum_length"`
}

func (b *Bun) informationSchemaColumns(ctx context.Context, table string) ([]interfaces.Column, error) {
	schema := "current_schema()"
	if b.db.Dialect().Name() == dialect.MySQL {
		schema = "DATABASE()"
	}
	var rows []schemaColumn
	query := "SELECT column_name AS column_name, data_type AS data_type, character_maximum_length AS character_maximum_length " +
		"FROM information_schema.columns WHERE table_name = ? AND table_schema = " + schema + " ORDER BY ordinal_position"
	if err := b.db.NewRaw(query, table).Scan(ctx, &rows); err != nil {
		return nil, fmt.Errorf("hostmodel: columns %s: %w", table, err)
	}
	out := make([]interfaces.Column, 0, len(rows))
	for _, row := range rows {
		kind, size := ParseColumnType(row.DataType, int(row.MaxLength.Int64))
		out = append(out, interfaces.Column{Name: row.Name, Kind: kind, MaxLength: size})
	}
	return out, nil
}

func orderBySequence(rows []interfaces.ContentRecord, sequence string) []interfaces.ContentRecord {
	if strings.TrimSpace(sequence) == "" {
		return rows
	}
	position := map[int64]int{}
	for i, part := range strings.Split(sequence, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			if _, seen := position[id]; !seen {
				position[id] = i
			}
		}
	}
	ordered := slices.Clone(rows)
	slices.SortStableFunc(ordered, func(a, c interfaces.ContentRecord) int {
		pa, okA := position[a.ID()]
		pc, okC := position[c.ID()]
		switch {
		case okA && okC:
			return pa - pc
		case okA:
			return -1
		case okC:
			return 1
		default:
			return 0
		}
	})
	return ordered
}

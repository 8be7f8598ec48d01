package collector

import (
	"context"
	"strings"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Walker carries the state of one collection run and is handed to visitors.
type Walker struct {
	c           *Collector
	eligibility *Eligibility
	cache       *DisplayCache
	targetLang  string
	columns     map[string][]interfaces.Column
	fields      []Field
}

// Model returns the content model being walked.
func (w *Walker) Model() interfaces.ContentModel {
	return w.c.model
}

// TargetLanguage returns the language staleness is evaluated for.
func (w *Walker) TargetLanguage() string {
	return w.targetLang
}

// Columns returns the columns of sourceType, cached for the run.
func (w *Walker) Columns(ctx context.Context, sourceType string) ([]interfaces.Column, error) {
	if cols, ok := w.columns[sourceType]; ok {
		return cols, nil
	}
	cols, err := w.c.model.GetColumns(ctx, sourceType)
	if err != nil {
		return nil, err
	}
	w.columns[sourceType] = cols
	return cols, nil
}

// ExtractRecord emits a field for every eligible, non-blank column of record.
func (w *Walker) ExtractRecord(ctx context.Context, node interfaces.ContentNode, record interfaces.ContentRecord, depth int) error {
	cols, err := w.Columns(ctx, node.SourceType)
	if err != nil {
		return err
	}
	for _, col := range w.eligibility.Filter(node.SourceType, cols) {
		w.emit(ctx, node, col, record, depth)
	}
	return nil
}

// ExtractColumns emits the named columns of record when they are non-blank.
// The size threshold does not apply but skip lists do.
func (w *Walker) ExtractColumns(ctx context.Context, node interfaces.ContentNode, record interfaces.ContentRecord, depth int, names ...string) error {
	cols, err := w.Columns(ctx, node.SourceType)
	if err != nil {
		return err
	}
	for _, name := range names {
		for _, col := range cols {
			if col.Name != name || w.eligibility.Skipped(node.SourceType, name) {
				continue
			}
			w.emit(ctx, node, col, record, depth)
		}
	}
	return nil
}

// ExtractTable runs ExtractRecord over the rows of sourceType whose
// parentColumn equals parent.ID.
func (w *Walker) ExtractTable(ctx context.Context, sourceType, parentColumn string, parent interfaces.ContentNode, depth int) error {
	rows, err := w.c.model.ListRecords(ctx, sourceType, parentColumn, parent.ID)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.ExtractRecord(ctx, ChildNode(parent, sourceType, row), row, depth); err != nil {
			return err
		}
	}
	return nil
}

// VisitQuestion dispatches node to the question visitor of its subtype.
// Unknown subtypes are ignored.
func (w *Walker) VisitQuestion(ctx context.Context, node interfaces.ContentNode, depth int) error {
	visitor, ok := w.c.questions.Lookup(node.SubType)
	if !ok {
		return nil
	}
	return visitor.Visit(ctx, w, node, depth)
}

// Skip logs a sub-item that could not be read.
func (w *Walker) Skip(node interfaces.ContentNode, err error) {
	logger := logging.WithFieldContext(w.c.logger, node.SourceType, node.ID, "", w.targetLang)
	logging.WithContainer(logger, node.ContainerID).Warn("collector.sub_item.skipped", "subtype", node.SubType, "error", err)
}

// Fields returns what has been collected so far.
func (w *Walker) Fields() []Field {
	return w.fields
}

// ChildNode describes a row of sourceType that belongs to parent.
func ChildNode(parent interfaces.ContentNode, sourceType string, row interfaces.ContentRecord) interfaces.ContentNode {
	return interfaces.ContentNode{
		SourceType:  sourceType,
		ID:          row.ID(),
		SubType:     sourceType,
		ContainerID: parent.ContainerID,
		Section:     parent.Section,
	}
}

func (w *Walker) emit(ctx context.Context, node interfaces.ContentNode, col interfaces.Column, record interfaces.ContentRecord, depth int) {
	raw := record.String(col.Name)
	if strings.TrimSpace(raw) == "" {
		return
	}
	key := FieldKey{
		SourceType:  node.SourceType,
		ItemID:      node.ID,
		FieldName:   col.Name,
		ContainerID: node.ContainerID,
	}
	format := formatOf(record, col)
	field := Field{
		Key:     key,
		Column:  col,
		Raw:     raw,
		Display: w.resolveDisplay(ctx, node, key, raw, format),
		Format:  format,
		Depth:   depth,
		Section: node.Section,
	}
	if w.c.tracker != nil {
		status, err := w.c.tracker.Lookup(ctx, key.StalenessKey(w.targetLang))
		if err != nil {
			w.fieldLogger(key).Warn("collector.staleness.lookup_failed", "error", err)
		} else {
			field.Status = status
		}
	}
	w.fields = append(w.fields, field)
}

func (w *Walker) fieldLogger(key FieldKey) interfaces.Logger {
	logger := logging.WithFieldContext(w.c.logger, key.SourceType, key.ItemID, key.FieldName, w.targetLang)
	return logging.WithContainer(logger, key.ContainerID)
}

package interfaces

import (
	"context"
	"errors"
)

// ErrRecordNotFound is returned by content models when a record is missing.
var ErrRecordNotFound = errors.New("content model: record not found")

// ColumnKind classifies a column as reported by the host schema.
type ColumnKind string

const (
	// ColumnChar is a bounded character column (varchar).
	ColumnChar ColumnKind = "char"
	// ColumnText is an unbounded long text column.
	ColumnText ColumnKind = "text"
	// ColumnInteger covers integer columns.
	ColumnInteger ColumnKind = "int"
	// ColumnNumber covers decimal and float columns.
	ColumnNumber ColumnKind = "number"
	// ColumnBinary covers blobs.
	ColumnBinary ColumnKind = "binary"
	// ColumnOther is anything the host could not classify.
	ColumnOther ColumnKind = "other"
)

// Column describes one column of a host content table. MaxLength is zero for
// unbounded columns.
type Column struct {
	Name      string
	Kind      ColumnKind
	MaxLength int
}

// ContentNode identifies one node of the host hierarchy.
//
// SourceType names the table/kind the node's columns live in. SubType is the
// dispatch key for visitors (module name for leaves, question type for
// questions). ContainerID is the parent module id used for grouping and links.
type ContentNode struct {
	SourceType  string
	ID          int64
	SubType     string
	ContainerID int64
	Section     int
}

// ContentRecord is a raw row keyed by column name.
type ContentRecord map[string]any

// ContentModel is the read side of the host content store plus the single
// write call used by the save workflow.
type ContentModel interface {
	// ListContainers returns the ordered child containers of root.
	ListContainers(ctx context.Context, root ContentNode) ([]ContentNode, error)
	// ListLeaves returns the ordered content leaves of a container.
	ListLeaves(ctx context.Context, container ContentNode) ([]ContentNode, error)
	// ListSubItems returns subtype dependent children of a leaf (quiz questions).
	ListSubItems(ctx context.Context, leaf ContentNode) ([]ContentNode, error)
	// ListRecords returns rows of sourceType whose parentColumn equals parentID,
	// ordered by id.
	ListRecords(ctx context.Context, sourceType, parentColumn string, parentID int64) ([]ContentRecord, error)
	// GetColumns returns the declared columns of sourceType in declaration order.
	GetColumns(ctx context.Context, sourceType string) ([]Column, error)
	// GetRecord returns a single row. Missing rows return ErrRecordNotFound.
	GetRecord(ctx context.Context, sourceType string, id int64) (ContentRecord, error)
	// UpdateField writes a single column value.
	UpdateField(ctx context.Context, sourceType string, id int64, column, value string) error
}

// DisplayRewriter rewrites embedded file references inside a stored text so it
// can be displayed outside the host.
type DisplayRewriter interface {
	RewriteFileURLs(ctx context.Context, node ContentNode, column, text string) (string, error)
}

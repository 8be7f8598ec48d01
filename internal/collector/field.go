package collector

import (
	"strconv"

	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Format is the stored text format, using the host's numeric codes.
type Format int

const (
	FormatAuto     Format = 0
	FormatHTML     Format = 1
	FormatPlain    Format = 2
	FormatMarkdown Format = 4
)

func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatHTML:
		return "html"
	case FormatPlain:
		return "plain"
	case FormatMarkdown:
		return "markdown"
	default:
		return "format(" + strconv.Itoa(int(f)) + ")"
	}
}

// IsRich reports whether the text may carry markup.
func (f Format) IsRich() bool {
	return f != FormatPlain
}

// FieldKey identifies a field. ContainerID is zero for fields outside a leaf.
type FieldKey struct {
	SourceType  string
	ItemID      int64
	FieldName   string
	ContainerID int64
}

func (k FieldKey) String() string {
	return k.SourceType + ":" + strconv.FormatInt(k.ItemID, 10) + ":" + k.FieldName + ":" + strconv.FormatInt(k.ContainerID, 10)
}

// StalenessKey returns the tracker key for targetLang.
func (k FieldKey) StalenessKey(targetLang string) staleness.Key {
	return staleness.Key{
		ItemID:         k.ItemID,
		SourceType:     k.SourceType,
		FieldName:      k.FieldName,
		TargetLanguage: targetLang,
	}
}

// Field is one translatable text found during a collection run.
type Field struct {
	Key     FieldKey
	Column  interfaces.Column
	Raw     string
	Display string
	Format  Format
	// Depth is 1 for the root, 2 for containers, 3 for leaves and 4 or more
	// for sub-items.
	Depth   int
	Section int
	Status  *staleness.Record
}

// NeedsUpdate reports whether the tracked translation is stale. Fields without
// a status never need an update.
func (f Field) NeedsUpdate() bool {
	return f.Status != nil && f.Status.Ready() && f.Status.NeedsUpdate()
}

func formatOf(record interfaces.ContentRecord, column interfaces.Column) Format {
	sibling := column.Name + "format"
	if record.Has(sibling) && record[sibling] != nil {
		return Format(record.Int64(sibling))
	}
	if column.Kind == interfaces.ColumnText {
		return FormatHTML
	}
	return FormatPlain
}

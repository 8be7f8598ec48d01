package staleness

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Key identifies one translated field in one target language.
type Key struct {
	ItemID         int64
	SourceType     string
	FieldName      string
	TargetLanguage string
}

// String renders the key for logs and errors.
func (k Key) String() string {
	return k.SourceType + ":" + strconv.FormatInt(k.ItemID, 10) + ":" + k.FieldName + ":" + k.TargetLanguage
}

func (k Key) normalized() Key {
	k.SourceType = strings.TrimSpace(k.SourceType)
	k.FieldName = strings.TrimSpace(k.FieldName)
	k.TargetLanguage = strings.ToLower(strings.TrimSpace(k.TargetLanguage))
	return k
}

// Record stores the last source edit and the last saved translation of a
// field, as unix seconds.
type Record struct {
	bun.BaseModel `bun:"table:autotranslate_staleness,alias:ats"`

	ID                      uuid.UUID `bun:",pk,type:varchar(36)" json:"id"`
	ItemID                  int64     `bun:"item_id,notnull,unique:autotranslate_staleness_key" json:"item_id"`
	SourceType              string    `bun:"source_type,notnull,unique:autotranslate_staleness_key" json:"source_type"`
	FieldName               string    `bun:"field_name,notnull,unique:autotranslate_staleness_key" json:"field_name"`
	TargetLanguage          string    `bun:"target_language,notnull,unique:autotranslate_staleness_key" json:"target_language"`
	SourceLastModified      int64     `bun:"source_last_modified,notnull,default:0" json:"source_last_modified"`
	TranslationLastModified int64     `bun:"translation_last_modified,notnull,default:0" json:"translation_last_modified"`
	CreatedAt               time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at"`
	UpdatedAt               time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at"`
}

// Key returns the identity tuple of the record.
func (r *Record) Key() Key {
	if r == nil {
		return Key{}
	}
	return Key{
		ItemID:         r.ItemID,
		SourceType:     r.SourceType,
		FieldName:      r.FieldName,
		TargetLanguage: r.TargetLanguage,
	}
}

// Ready is false for the placeholder returned when no target language is set.
func (r *Record) Ready() bool {
	return r != nil && r.ID != uuid.Nil
}

// NeedsUpdate reports whether the source was edited at or after the last
// saved translation. Equal timestamps count as stale, so a record fresh from
// Lookup needs an update.
func (r *Record) NeedsUpdate() bool {
	if r == nil {
		return false
	}
	return r.SourceLastModified >= r.TranslationLastModified
}

func cloneRecord(r *Record) *Record {
	if r == nil {
		return nil
	}
	cloned := *r
	return &cloned
}

package translationcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/goliatone/go-autotranslate/internal/mlang"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

const (
	translateFieldsMessageType  = "autotranslate.translations.translate"
	saveTranslationsMessageType = "autotranslate.translations.save"
	sourceModifiedMessageType   = "autotranslate.translations.source_modified"
)

// TranslateFieldsCommand collects the fields under a root node, translates
// the selected ones in one provider batch and saves every successful result.
type TranslateFieldsCommand struct {
	// RootType and RootID identify the hierarchy root, e.g. a course.
	RootType string `json:"root_type"`
	RootID   int64  `json:"root_id"`
	// SourceLanguage overrides the default source region code.
	SourceLanguage string `json:"source_language,omitempty"`
	TargetLanguage string `json:"target_language"`
	// Fields limits the run to "sourceType:itemID:field" references. Empty
	// selects every collected field.
	Fields []string `json:"fields,omitempty"`
	// StaleOnly skips fields whose translation is newer than the source.
	StaleOnly bool `json:"stale_only,omitempty"`
	// DryRun translates without writing anything back.
	DryRun  bool                          `json:"dry_run,omitempty"`
	Options interfaces.TranslationOptions `json:"options"`
}

// Type implements command.Message.
func (TranslateFieldsCommand) Type() string { return translateFieldsMessageType }

// Validate implements command.Message.
func (cmd TranslateFieldsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.RootType, validation.Required, validation.By(notBlank("root_type"))),
		validation.Field(&cmd.RootID, validation.Required, validation.Min(int64(1))),
		validation.Field(&cmd.SourceLanguage, validation.By(optionalSourceCode)),
		validation.Field(&cmd.TargetLanguage, validation.Required, validation.By(targetCode)),
		validation.Field(&cmd.Fields, validation.Each(validation.By(fieldReference))),
	)
}

// SaveItem is one translation to merge into a stored field.
type SaveItem struct {
	SourceType     string `json:"source_type"`
	ItemID         int64  `json:"item_id"`
	FieldName      string `json:"field"`
	ContainerID    int64  `json:"container_id,omitempty"`
	TargetLanguage string `json:"target_language"`
	Text           string `json:"text"`
	SourceCode     string `json:"source_code,omitempty"`
	SourceText     string `json:"source_text,omitempty"`
	ExpectedSource string `json:"expected_source,omitempty"`
}

// Validate checks the item identity and language codes.
func (item SaveItem) Validate() error {
	return validation.ValidateStruct(&item,
		validation.Field(&item.SourceType, validation.Required, validation.By(notBlank("source_type"))),
		validation.Field(&item.ItemID, validation.Required, validation.Min(int64(1))),
		validation.Field(&item.FieldName, validation.Required, validation.By(notBlank("field"))),
		validation.Field(&item.TargetLanguage, validation.Required, validation.By(targetCode)),
		validation.Field(&item.SourceCode, validation.By(optionalSourceCode)),
	)
}

// SaveTranslationsCommand saves edited or reviewed translations.
type SaveTranslationsCommand struct {
	Items []SaveItem `json:"items"`
}

// Type implements command.Message.
func (SaveTranslationsCommand) Type() string { return saveTranslationsMessageType }

// Validate implements command.Message.
func (cmd SaveTranslationsCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Items, validation.Required),
	)
}

// MarkSourceModifiedCommand records that a source field was edited outside
// the translation workflow.
type MarkSourceModifiedCommand struct {
	SourceType string `json:"source_type"`
	ItemID     int64  `json:"item_id"`
	FieldName  string `json:"field"`
}

// Type implements command.Message.
func (MarkSourceModifiedCommand) Type() string { return sourceModifiedMessageType }

// Validate implements command.Message.
func (cmd MarkSourceModifiedCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.SourceType, validation.Required, validation.By(notBlank("source_type"))),
		validation.Field(&cmd.ItemID, validation.Required, validation.Min(int64(1))),
		validation.Field(&cmd.FieldName, validation.Required, validation.By(notBlank("field"))),
	)
}

func notBlank(name string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("autotranslate."+name+"_required", name+" is required")
		}
		return nil
	}
}

func targetCode(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if !mlang.ValidCode(s) || s == mlang.OtherCode {
		return validation.NewError("autotranslate.language_invalid", "must be a language code such as en or pt_br")
	}
	return nil
}

func optionalSourceCode(value any) error {
	s, _ := value.(string)
	s = strings.TrimSpace(s)
	if s == "" || mlang.ValidCode(s) {
		return nil
	}
	return validation.NewError("autotranslate.language_invalid", "must be a language code or other")
}

func fieldReference(value any) error {
	s, _ := value.(string)
	if _, ok := parseReference(s); !ok {
		return validation.NewError("autotranslate.field_reference_invalid", "must look like sourceType:itemID:field")
	}
	return nil
}

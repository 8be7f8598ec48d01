package interfaces

import (
	"context"
	"errors"
	"fmt"
)

// ErrProviderFailed is the sentinel behind every *ProviderError.
var ErrProviderFailed = errors.New("translation provider: request failed")

// ProviderError reports a failed translation for one request key. Status is
// the transport status code when one was received.
type ProviderError struct {
	Provider string
	Key      string
	Status   int
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status > 0 {
		return fmt.Sprintf("translation provider %s: key %s: status %d: %s", e.Provider, e.Key, e.Status, msg)
	}
	return fmt.Sprintf("translation provider %s: key %s: %s", e.Provider, e.Key, msg)
}

func (e *ProviderError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProviderFailed, e.Err}
	}
	return []error{ErrProviderFailed}
}

// TranslationRequest is a single item of a provider batch.
type TranslationRequest struct {
	Key        string
	Text       string
	SourceLang string
}

// TranslationResult is the provider outcome for one request key. Err is set
// when the provider failed for that item only.
type TranslationResult struct {
	Key            string
	TranslatedText string
	Err            error
}

// TranslationOptions mirrors the flat option set understood by providers.
// Values are passed through without interpretation. Nil booleans leave the
// provider default in place.
type TranslationOptions struct {
	Formality          string   `toml:"formality" json:"formality,omitempty"`
	GlossaryID         string   `toml:"glossary_id" json:"glossary_id,omitempty"`
	TagHandling        string   `toml:"tag_handling" json:"tag_handling,omitempty"`
	SplitSentences     string   `toml:"split_sentences" json:"split_sentences,omitempty"`
	Context            string   `toml:"context" json:"context,omitempty"`
	PreserveFormatting *bool    `toml:"preserve_formatting" json:"preserve_formatting,omitempty"`
	OutlineDetection   *bool    `toml:"outline_detection" json:"outline_detection,omitempty"`
	NonSplittingTags   []string `toml:"non_splitting_tags" json:"non_splitting_tags,omitempty"`
	SplittingTags      []string `toml:"splitting_tags" json:"splitting_tags,omitempty"`
	IgnoreTags         []string `toml:"ignore_tags" json:"ignore_tags,omitempty"`
	ModelType          string   `toml:"model_type" json:"model_type,omitempty"`
}

// TranslationProvider is the remote translation service. Implementations issue
// the batch synchronously and report item failures through TranslationResult.Err;
// a returned error means the whole batch could not be attempted.
type TranslationProvider interface {
	Translate(ctx context.Context, items []TranslationRequest, targetLang string, opts TranslationOptions) ([]TranslationResult, error)
}

// Package translate runs the translate and save workflow over collected
// fields: source selection, token protection, one provider batch, and the
// multilang merge written back to the host.
package translate

import (
	"context"
	"errors"
	"reflect"
	"strings"

	"github.com/goliatone/go-autotranslate/internal/collector"
	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/internal/mlang"
	"github.com/goliatone/go-autotranslate/internal/provider"
	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/internal/tokenguard"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

var (
	// ErrModelRequired is returned when the service has no content model.
	ErrModelRequired = errors.New("translate: content model required")
	// ErrProviderRequired is returned when translating without a provider.
	ErrProviderRequired = errors.New("translate: provider required")
	// ErrInvalidLanguage is returned for target codes that cannot tag a region.
	ErrInvalidLanguage = errors.New("translate: invalid target language")
	// ErrEmptySource is reported for fields whose selected source text is blank.
	ErrEmptySource = errors.New("translate: empty source text")
	// ErrMissingResult is reported when the provider skipped a request key.
	ErrMissingResult = errors.New("translate: provider returned no result")
)

// Option configures a Service.
type Option func(*Service)

// WithTracker enables staleness stamping after successful saves.
func WithTracker(tracker *staleness.Tracker) Option {
	return func(s *Service) {
		s.tracker = tracker
	}
}

// WithProvider sets the translation provider and the name used in errors.
func WithProvider(name string, p interfaces.TranslationProvider) Option {
	return func(s *Service) {
		s.provider = p
		s.providerName = strings.TrimSpace(name)
	}
}

// WithGuard sets the token guard applied around provider calls.
func WithGuard(guard *tokenguard.Guard) Option {
	return func(s *Service) {
		if guard != nil {
			s.guard = guard
		}
	}
}

// WithLogger overrides the service logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDefaultSourceLanguage sets the language assumed for untagged text.
func WithDefaultSourceLanguage(code string) Option {
	return func(s *Service) {
		s.defaultSource = strings.ToLower(strings.TrimSpace(code))
	}
}

// WithDefaultOptions sets the provider options used when a request carries
// none.
func WithDefaultOptions(opts interfaces.TranslationOptions) Option {
	return func(s *Service) {
		s.defaultOptions = opts
	}
}

// Service translates and saves fields.
type Service struct {
	model          interfaces.ContentModel
	tracker        *staleness.Tracker
	provider       interfaces.TranslationProvider
	providerName   string
	guard          *tokenguard.Guard
	defaultSource  string
	defaultOptions interfaces.TranslationOptions
	logger         interfaces.Logger
}

// New builds a service writing through model.
func New(model interfaces.ContentModel, opts ...Option) (*Service, error) {
	if model == nil {
		return nil, ErrModelRequired
	}
	s := &Service{
		model:  model,
		guard:  tokenguard.New(tokenguard.Options{}),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.providerName == "" {
		s.providerName = "provider"
	}
	return s, nil
}

// BatchRequest scopes one Translate call. SourceLanguage overrides the
// default source language for region selection and untagged text.
type BatchRequest struct {
	SourceLanguage string
	TargetLanguage string
	Options        interfaces.TranslationOptions
}

// Result is the outcome of translating one field. Err holds a
// *interfaces.ProviderError for provider failures.
type Result struct {
	Key        collector.FieldKey
	SourceText string
	SourceCode string
	Text       string
	Err        error
}

// OK reports whether the field was translated.
func (r Result) OK() bool {
	return r.Err == nil
}

type pending struct {
	index int
	pairs []tokenguard.Pair
}

// Translate sends every field in one provider batch and returns one result
// per field in input order. A batch that cannot be sent is reported on each
// field rather than returned.
func (s *Service) Translate(ctx context.Context, fields []collector.Field, req BatchRequest) ([]Result, error) {
	if s.provider == nil {
		return nil, ErrProviderRequired
	}
	target := strings.TrimSpace(req.TargetLanguage)
	if !mlang.ValidCode(target) || target == mlang.OtherCode {
		return nil, ErrInvalidLanguage
	}
	sourceLang := strings.ToLower(strings.TrimSpace(req.SourceLanguage))
	if sourceLang == "" {
		sourceLang = s.defaultSource
	}

	results := make([]Result, len(fields))
	requests := make([]interfaces.TranslationRequest, 0, len(fields))
	byKey := make(map[string]pending, len(fields))
	for i, field := range fields {
		text, code := SourceText(field.Raw, sourceLang)
		results[i] = Result{Key: field.Key, SourceText: text, SourceCode: code}
		if strings.TrimSpace(text) == "" {
			results[i].Err = ErrEmptySource
			continue
		}
		lang := code
		if lang == "" {
			lang = sourceLang
		}
		protected, pairs := s.guard.Preprocess(text)
		key := field.Key.String()
		byKey[key] = pending{index: i, pairs: pairs}
		requests = append(requests, interfaces.TranslationRequest{Key: key, Text: protected, SourceLang: lang})
	}
	if len(requests) == 0 {
		return results, nil
	}

	logger := logging.WithFields(s.logger, map[string]any{"target_lang": target, "provider": s.providerName})
	opts := req.Options
	if reflect.ValueOf(opts).IsZero() {
		opts = s.defaultOptions
	}
	translated, err := s.provider.Translate(ctx, requests, target, opts)
	if err != nil {
		logger.Warn("translate.batch.failed", "items", len(requests), "error", err)
		translated = provider.FailAll(s.providerName, requests, err)
	}

	seen := make(map[string]bool, len(translated))
	for _, res := range translated {
		p, ok := byKey[res.Key]
		if !ok {
			continue
		}
		seen[res.Key] = true
		if res.Err != nil {
			results[p.index].Err = asProviderError(s.providerName, res.Key, res.Err)
			continue
		}
		results[p.index].Text = tokenguard.Postprocess(res.TranslatedText, p.pairs)
	}
	for key, p := range byKey {
		if !seen[key] {
			results[p.index].Err = &interfaces.ProviderError{Provider: s.providerName, Key: key, Err: ErrMissingResult}
		}
	}

	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
		}
	}
	logger.Info("translate.batch.completed", "items", len(fields), "failed", failed)
	return results, nil
}

func asProviderError(name, key string, err error) error {
	var perr *interfaces.ProviderError
	if errors.As(err, &perr) {
		return err
	}
	return &interfaces.ProviderError{Provider: name, Key: key, Err: err}
}

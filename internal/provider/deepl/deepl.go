package deepl

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Name is the registry name of this provider.
const Name = "deepl"

const (
	// DefaultBaseURL is the free tier endpoint.
	DefaultBaseURL = "https://api-free.deepl.com"
	translatePath  = "/v2/translate"
	defaultTimeout = 30 * time.Second
)

var (
	// ErrAPIKeyRequired is returned when no authentication key is configured.
	ErrAPIKeyRequired = errors.New("deepl: api key required")
	// ErrTargetRequired is returned when the target language is blank.
	ErrTargetRequired = errors.New("deepl: target language required")
	// ErrResponseMismatch is reported when the response does not hold one
	// translation per submitted text.
	ErrResponseMismatch = errors.New("deepl: response does not match request")
)

// Config configures the client.
type Config struct {
	APIKey  string        `toml:"api_key" json:"api_key"`
	BaseURL string        `toml:"base_url" json:"base_url"`
	Timeout time.Duration `toml:"timeout" json:"timeout"`
}

// Option mutates the client during construction.
type Option func(*Client)

// WithLogger overrides the logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRestyClient replaces the underlying HTTP client.
func WithRestyClient(client *resty.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// Client translates batches against a DeepL compatible /v2/translate endpoint.
type Client struct {
	http   *resty.Client
	logger interfaces.Logger
}

var _ interfaces.TranslationProvider = (*Client)(nil)

// New builds a client from cfg.
func New(cfg Config, opts ...Option) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrAPIKeyRequired
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		http:   resty.New(),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.http.SetBaseURL(base).
		SetTimeout(timeout).
		SetHeader("Authorization", "DeepL-Auth-Key "+key).
		SetHeader("Content-Type", "application/json")
	return c, nil
}

type translateRequest struct {
	Text               []string `json:"text"`
	TargetLang         string   `json:"target_lang"`
	SourceLang         string   `json:"source_lang,omitempty"`
	Formality          string   `json:"formality,omitempty"`
	GlossaryID         string   `json:"glossary_id,omitempty"`
	TagHandling        string   `json:"tag_handling,omitempty"`
	SplitSentences     string   `json:"split_sentences,omitempty"`
	Context            string   `json:"context,omitempty"`
	PreserveFormatting *bool    `json:"preserve_formatting,omitempty"`
	OutlineDetection   *bool    `json:"outline_detection,omitempty"`
	NonSplittingTags   []string `json:"non_splitting_tags,omitempty"`
	SplittingTags      []string `json:"splitting_tags,omitempty"`
	IgnoreTags         []string `json:"ignore_tags,omitempty"`
	ModelType          string   `json:"model_type,omitempty"`
}

type translateResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Translate sends one request per source language, in first appearance
// order. Failures of a request are reported on each of its items.
func (c *Client) Translate(ctx context.Context, items []interfaces.TranslationRequest, targetLang string, opts interfaces.TranslationOptions) ([]interfaces.TranslationResult, error) {
	target := LanguageCode(targetLang)
	if target == "" {
		return nil, ErrTargetRequired
	}
	if len(items) == 0 {
		return nil, nil
	}

	results := make([]interfaces.TranslationResult, len(items))
	for _, group := range groupBySource(items) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c.translateGroup(ctx, items, group, target, opts, results)
	}
	return results, nil
}

type sourceGroup struct {
	source  string
	indexes []int
}

func groupBySource(items []interfaces.TranslationRequest) []sourceGroup {
	var groups []sourceGroup
	positions := map[string]int{}
	for i, item := range items {
		source := LanguageCode(item.SourceLang)
		pos, ok := positions[source]
		if !ok {
			pos = len(groups)
			positions[source] = pos
			groups = append(groups, sourceGroup{source: source})
		}
		groups[pos].indexes = append(groups[pos].indexes, i)
	}
	return groups
}

func (c *Client) translateGroup(ctx context.Context, items []interfaces.TranslationRequest, group sourceGroup, target string, opts interfaces.TranslationOptions, results []interfaces.TranslationResult) {
	body := translateRequest{
		TargetLang:         target,
		SourceLang:         group.source,
		Formality:          opts.Formality,
		GlossaryID:         opts.GlossaryID,
		TagHandling:        opts.TagHandling,
		SplitSentences:     opts.SplitSentences,
		Context:            opts.Context,
		PreserveFormatting: opts.PreserveFormatting,
		OutlineDetection:   opts.OutlineDetection,
		NonSplittingTags:   opts.NonSplittingTags,
		SplittingTags:      opts.SplittingTags,
		IgnoreTags:         opts.IgnoreTags,
		ModelType:          opts.ModelType,
	}
	for _, idx := range group.indexes {
		body.Text = append(body.Text, items[idx].Text)
	}

	fail := func(status int, message string, err error) {
		for _, idx := range group.indexes {
			key := items[idx].Key
			results[idx] = interfaces.TranslationResult{
				Key: key,
				Err: &interfaces.ProviderError{Provider: Name, Key: key, Status: status, Message: message, Err: err},
			}
		}
	}

	var out translateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&apiErr).
		Post(translatePath)
	if err != nil {
		c.logger.Warn("deepl.translate.request_failed", "source_lang", group.source, "target_lang", target, "error", err)
		fail(0, "", err)
		return
	}
	if resp.IsError() {
		message := strings.TrimSpace(apiErr.Message)
		if message == "" {
			message = resp.Status()
		}
		c.logger.Warn("deepl.translate.rejected", "source_lang", group.source, "target_lang", target, "status", resp.StatusCode(), "message", message)
		fail(resp.StatusCode(), message, nil)
		return
	}
	if len(out.Translations) != len(group.indexes) {
		fail(resp.StatusCode(), fmt.Sprintf("expected %d translations, got %d", len(group.indexes), len(out.Translations)), ErrResponseMismatch)
		return
	}
	for i, idx := range group.indexes {
		results[idx] = interfaces.TranslationResult{Key: items[idx].Key, TranslatedText: out.Translations[i].Text}
	}
	c.logger.Debug("deepl.translate.completed", "source_lang", group.source, "target_lang", target, "items", len(group.indexes))
}

// LanguageCode converts a host language code such as "pt_br" to the upper
// case form the API expects. "other" and blank codes map to "" so the
// service detects the source language.
func LanguageCode(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "other") {
		return ""
	}
	return strings.ToUpper(strings.ReplaceAll(code, "_", "-"))
}

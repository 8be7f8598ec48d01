package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "google.golang.org/genai"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// Name is the registry name of this provider.
const Name = "gemini"

// DefaultModel is used when the configuration names none.
const DefaultModel = "gemini-2.5-flash"

var (
	// ErrTargetRequired is returned when the target language is blank.
	ErrTargetRequired = errors.New("gemini: target language required")
	// ErrEmptyResponse is reported when the model returns no text.
	ErrEmptyResponse = errors.New("gemini: empty response")
)

// Config configures the client. A blank APIKey lets the SDK read
// GEMINI_API_KEY or GOOGLE_API_KEY from the environment.
type Config struct {
	APIKey string `toml:"api_key" json:"api_key"`
	Model  string `toml:"model" json:"model"`
}

// Generator is the part of the SDK used by the client. *genai.Models
// satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
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

// Client translates each request with one prompt to a Gemini model.
type Client struct {
	models Generator
	model  string
	logger interfaces.Logger
}

var _ interfaces.TranslationProvider = (*Client)(nil)

// New creates the SDK client and wraps it.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return NewWithGenerator(cli.Models, cfg.Model, opts...), nil
}

// NewWithGenerator wraps an existing generator.
func NewWithGenerator(models Generator, model string, opts ...Option) *Client {
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	c := &Client{models: models, model: model, logger: logging.NoOp()}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Translate issues one request per item. Item failures are reported on the
// item; only cancellation aborts the batch.
func (c *Client) Translate(ctx context.Context, items []interfaces.TranslationRequest, targetLang string, opts interfaces.TranslationOptions) ([]interfaces.TranslationResult, error) {
	targetLang = strings.TrimSpace(targetLang)
	if targetLang == "" {
		return nil, ErrTargetRequired
	}
	system := &genai.Content{Parts: []*genai.Part{{Text: systemPrompt(targetLang, opts)}}}
	config := &genai.GenerateContentConfig{SystemInstruction: system, ResponseMIMEType: "text/plain"}

	results := make([]interfaces.TranslationResult, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, err := c.translateOne(ctx, item, config)
		if err != nil {
			c.logger.Warn("gemini.translate.failed", "key", item.Key, "target_lang", targetLang, "error", err)
			results = append(results, interfaces.TranslationResult{
				Key: item.Key,
				Err: &interfaces.ProviderError{Provider: Name, Key: item.Key, Err: err},
			})
			continue
		}
		results = append(results, interfaces.TranslationResult{Key: item.Key, TranslatedText: text})
	}
	return results, nil
}

func (c *Client) translateOne(ctx context.Context, item interfaces.TranslationRequest, config *genai.GenerateContentConfig) (string, error) {
	prompt := item.Text
	if source := strings.TrimSpace(item.SourceLang); source != "" && !strings.EqualFold(source, "other") {
		prompt = "Source language: " + source + "\n\n" + item.Text
	}
	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}},
		config,
	)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil {
			out.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", ErrEmptyResponse
	}
	return out.String(), nil
}

func systemPrompt(targetLang string, opts interfaces.TranslationOptions) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Translate the user message into the language with code %q. Reply with the translation only.\n", targetLang)
	b.WriteString("Copy placeholders of the form __NAME_N__ unchanged.\n")
	switch strings.ToLower(opts.TagHandling) {
	case "html", "xml":
		fmt.Fprintf(&b, "The text is %s. Keep every tag and attribute unchanged and translate only text content.\n", strings.ToUpper(opts.TagHandling))
	}
	if len(opts.IgnoreTags) > 0 {
		fmt.Fprintf(&b, "Do not translate the content of these tags: %s.\n", strings.Join(opts.IgnoreTags, ", "))
	}
	switch strings.ToLower(opts.Formality) {
	case "more", "prefer_more":
		b.WriteString("Use a formal register.\n")
	case "less", "prefer_less":
		b.WriteString("Use an informal register.\n")
	}
	if opts.PreserveFormatting != nil && *opts.PreserveFormatting {
		b.WriteString("Preserve punctuation, casing and whitespace.\n")
	}
	if ctx := strings.TrimSpace(opts.Context); ctx != "" {
		b.WriteString("Context (do not translate): " + ctx + "\n")
	}
	return b.String()
}

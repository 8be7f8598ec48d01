// Package collector walks a content hierarchy and lists the text fields that
// can be translated, each with its staleness status.
package collector

import (
	"context"
	"errors"

	"github.com/yuin/goldmark"

	"github.com/goliatone/go-autotranslate/internal/logging"
	"github.com/goliatone/go-autotranslate/internal/staleness"
	"github.com/goliatone/go-autotranslate/internal/translationconfig"
	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// ErrModelRequired is returned when no content model is configured.
var ErrModelRequired = errors.New("collector: content model required")

// SettingsSource supplies user overrides for each run.
type SettingsSource interface {
	Current() translationconfig.Settings
}

// Option configures a Collector.
type Option func(*Collector)

// WithTracker attaches staleness status to collected fields.
func WithTracker(tracker *staleness.Tracker) Option {
	return func(c *Collector) {
		c.tracker = tracker
	}
}

// WithDisplayRewriter sets the collaborator rewriting embedded file links.
func WithDisplayRewriter(rewriter interfaces.DisplayRewriter) Option {
	return func(c *Collector) {
		c.rewriter = rewriter
	}
}

// WithLogger sets the collector logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLeafVisitors replaces the leaf visitor registry.
func WithLeafVisitors(registry *Registry) Option {
	return func(c *Collector) {
		if registry != nil {
			c.leaves = registry
		}
	}
}

// WithQuestionVisitors replaces the question visitor registry.
func WithQuestionVisitors(registry *Registry) Option {
	return func(c *Collector) {
		if registry != nil {
			c.questions = registry
		}
	}
}

// WithEligibility replaces the default column eligibility.
func WithEligibility(eligibility *Eligibility) Option {
	return func(c *Collector) {
		if eligibility != nil {
			c.eligibility = eligibility
		}
	}
}

// WithSettingsSource applies user settings at the start of each run.
func WithSettingsSource(source SettingsSource) Option {
	return func(c *Collector) {
		c.settings = source
	}
}

// WithMarkdown replaces the markdown renderer used for display text.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(c *Collector) {
		if md != nil {
			c.markdown = md
		}
	}
}

// WithDisplayCacheSize bounds the display cache created for runs that do not
// pass their own.
func WithDisplayCacheSize(size int) Option {
	return func(c *Collector) {
		c.cacheSize = size
	}
}

// Collector lists translatable fields.
type Collector struct {
	cacheSize   int
	model       interfaces.ContentModel
	tracker     *staleness.Tracker
	rewriter    interfaces.DisplayRewriter
	eligibility *Eligibility
	settings    SettingsSource
	leaves      *Registry
	questions   *Registry
	markdown    goldmark.Markdown
	logger      interfaces.Logger
}

// New builds a collector with the built-in visitors and skip lists.
func New(model interfaces.ContentModel, opts ...Option) (*Collector, error) {
	if model == nil {
		return nil, ErrModelRequired
	}
	eligibility, err := NewEligibility(DefaultEligibilityConfig())
	if err != nil {
		return nil, err
	}
	c := &Collector{
		model:       model,
		eligibility: eligibility,
		leaves:      DefaultLeafVisitors(),
		questions:   DefaultQuestionVisitors(),
		markdown:    newMarkdown(),
		logger:      logging.NoOp(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// LeafVisitors exposes the leaf registry for runtime registration.
func (c *Collector) LeafVisitors() *Registry {
	return c.leaves
}

// QuestionVisitors exposes the question registry for runtime registration.
func (c *Collector) QuestionVisitors() *Registry {
	return c.questions
}

// RunOptions scope a single Collect call.
type RunOptions struct {
	// TargetLanguage selects the staleness records. Blank yields placeholder
	// statuses.
	TargetLanguage string
	// Cache is created per run when nil.
	Cache *DisplayCache
}

// Collect walks root, its containers and their leaves in order. Listing
// failures abort the walk; failures below a leaf only skip that part.
func (c *Collector) Collect(ctx context.Context, root interfaces.ContentNode, opts RunOptions) ([]Field, error) {
	w, err := c.newWalker(opts)
	if err != nil {
		return nil, err
	}
	logger := logging.WithFieldContext(c.logger, root.SourceType, root.ID, "", opts.TargetLanguage)

	record, err := c.model.GetRecord(ctx, root.SourceType, root.ID)
	if err != nil {
		return nil, err
	}
	if err := w.ExtractRecord(ctx, root, record, 1); err != nil {
		return nil, err
	}

	containers, err := c.model.ListContainers(ctx, root)
	if err != nil {
		return nil, err
	}
	for _, container := range containers {
		if record, err := c.model.GetRecord(ctx, container.SourceType, container.ID); err != nil {
			w.Skip(container, err)
		} else if err := w.ExtractRecord(ctx, container, record, 2); err != nil {
			w.Skip(container, err)
		}

		leaves, err := c.model.ListLeaves(ctx, container)
		if err != nil {
			return nil, err
		}
		for _, leaf := range leaves {
			c.collectLeaf(ctx, w, leaf)
		}
	}

	logger.Debug("collector.run.completed", "fields", len(w.fields), "containers", len(containers))
	return w.fields, nil
}

// CollectLeaf collects a single leaf and its sub-items.
func (c *Collector) CollectLeaf(ctx context.Context, leaf interfaces.ContentNode, opts RunOptions) ([]Field, error) {
	w, err := c.newWalker(opts)
	if err != nil {
		return nil, err
	}
	c.collectLeaf(ctx, w, leaf)
	return w.fields, nil
}

func (c *Collector) collectLeaf(ctx context.Context, w *Walker, leaf interfaces.ContentNode) {
	record, err := c.model.GetRecord(ctx, leaf.SourceType, leaf.ID)
	if err != nil {
		w.Skip(leaf, err)
		return
	}
	if err := w.ExtractRecord(ctx, leaf, record, 3); err != nil {
		w.Skip(leaf, err)
		return
	}
	visitor, ok := c.leaves.Lookup(leaf.SubType)
	if !ok {
		return
	}
	if err := visitor.Visit(ctx, w, leaf, 4); err != nil {
		w.Skip(leaf, err)
	}
}

func (c *Collector) newWalker(opts RunOptions) (*Walker, error) {
	eligibility := c.eligibility
	if c.settings != nil {
		settings := c.settings.Current()
		if settings.MinColumnSize > 0 || len(settings.SkipColumns) > 0 {
			overridden, err := eligibility.WithOverrides(settings.MinColumnSize, settings.SkipColumns)
			if err != nil {
				return nil, err
			}
			eligibility = overridden
		}
	}
	cache := opts.Cache
	if cache == nil {
		var err error
		if cache, err = NewDisplayCache(c.cacheSize); err != nil {
			return nil, err
		}
	}
	return &Walker{
		c:           c,
		eligibility: eligibility,
		cache:       cache,
		targetLang:  opts.TargetLanguage,
		columns:     make(map[string][]interfaces.Column),
	}, nil
}

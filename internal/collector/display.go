package collector

import (
	"bytes"
	"context"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// DefaultDisplayCacheSize bounds a run's display cache.
const DefaultDisplayCacheSize = 4096

// DisplayCache holds resolved display strings for one collection run. Pass
// the same cache to related runs to reuse resolutions; never share it across
// unrelated requests.
type DisplayCache struct {
	entries *lru.Cache[FieldKey, string]
}

// NewDisplayCache returns a cache holding up to size entries.
func NewDisplayCache(size int) (*DisplayCache, error) {
	if size <= 0 {
		size = DefaultDisplayCacheSize
	}
	entries, err := lru.New[FieldKey, string](size)
	if err != nil {
		return nil, err
	}
	return &DisplayCache{entries: entries}, nil
}

// Get returns the cached display text for key.
func (c *DisplayCache) Get(key FieldKey) (string, bool) {
	if c == nil {
		return "", false
	}
	return c.entries.Get(key)
}

// Put stores display text for key.
func (c *DisplayCache) Put(key FieldKey, display string) {
	if c == nil {
		return
	}
	c.entries.Add(key, display)
}

// Len reports the number of cached entries.
func (c *DisplayCache) Len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}

func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
}

// resolveDisplay rewrites embedded file references and renders markdown.
func (w *Walker) resolveDisplay(ctx context.Context, node interfaces.ContentNode, key FieldKey, raw string, format Format) string {
	if cached, ok := w.cache.Get(key); ok {
		return cached
	}
	display := raw
	if w.c.rewriter != nil {
		rewritten, err := w.c.rewriter.RewriteFileURLs(ctx, node, key.FieldName, raw)
		if err != nil {
			w.fieldLogger(key).Warn("collector.display.rewrite_failed", "error", err)
		} else {
			display = rewritten
		}
	}
	if format == FormatMarkdown {
		var buf bytes.Buffer
		if err := w.c.markdown.Convert([]byte(display), &buf); err != nil {
			w.fieldLogger(key).Warn("collector.display.markdown_failed", "error", err)
		} else {
			display = buf.String()
		}
	}
	w.cache.Put(key, display)
	return display
}

// Package tokenguard hides spans that must survive an external text rewrite
// (machine translation) byte for byte and restores them afterwards.
package tokenguard

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind names a class of protected spans.
type Kind struct {
	Name    string
	Pattern *regexp.Regexp
}

var (
	// Pretag protects <pre> blocks.
	Pretag = Kind{Name: "PRETAG", Pattern: regexp.MustCompile(`(?is)<pre[^>]*>.*?</pre>`)}
	// Latex protects $$...$$ and \[...\] display math.
	Latex = Kind{Name: "LATEX", Pattern: regexp.MustCompile(`(?s)\$\$.+?\$\$|\\\[.+?\\\]`)}
)

// Pair links a token to the text it replaced.
type Pair struct {
	Token    string
	Original string
}

// Options toggles the built-in kinds.
type Options struct {
	Pretag bool `toml:"pretag" json:"pretag"`
	Latex  bool `toml:"latex" json:"latex"`
}

// Guard applies its kinds in the order they were given.
type Guard struct {
	kinds []Kind
}

// New returns a guard for the enabled built-in kinds, PRETAG before LATEX.
func New(opts Options) *Guard {
	var kinds []Kind
	if opts.Pretag {
		kinds = append(kinds, Pretag)
	}
	if opts.Latex {
		kinds = append(kinds, Latex)
	}
	return &Guard{kinds: kinds}
}

// NewWithKinds builds a guard from custom kinds.
func NewWithKinds(kinds ...Kind) *Guard {
	filtered := make([]Kind, 0, len(kinds))
	for _, kind := range kinds {
		if kind.Pattern == nil || strings.TrimSpace(kind.Name) == "" {
			continue
		}
		filtered = append(filtered, kind)
	}
	return &Guard{kinds: filtered}
}

// Enabled reports whether any kind is active.
func (g *Guard) Enabled() bool {
	return g != nil && len(g.kinds) > 0
}

// Preprocess replaces every protected span with a __KIND_N__ token. Kinds run
// in order over the already tokenized text; N increases across all kinds of
// one call.
func (g *Guard) Preprocess(text string) (string, []Pair) {
	if !g.Enabled() {
		return text, nil
	}
	var pairs []Pair
	counter := 0
	for _, kind := range g.kinds {
		text = kind.Pattern.ReplaceAllStringFunc(text, func(match string) string {
			token := "__" + kind.Name + "_" + strconv.Itoa(counter) + "__"
			counter++
			pairs = append(pairs, Pair{Token: token, Original: match})
			return token
		})
	}
	return text, pairs
}

// Postprocess restores tokens with literal substitution. Pairs are applied
// last to first so a span captured inside a later match is restored after
// its container.
func Postprocess(text string, pairs []Pair) string {
	for i := len(pairs) - 1; i >= 0; i-- {
		text = strings.ReplaceAll(text, pairs[i].Token, pairs[i].Original)
	}
	return text
}

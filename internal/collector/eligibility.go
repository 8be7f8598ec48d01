package collector

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/goliatone/go-autotranslate/pkg/interfaces"
)

// DefaultMinColumnSize is the length a char column must exceed to be collected.
const DefaultMinColumnSize = 254

// DefaultCommonSkips lists columns never collected for any subtype.
var DefaultCommonSkips = []string{
	"displayoptions",
	"parameters",
	"configdata",
	"stamp",
	"version",
	"path",
	"hash",
}

// DefaultSubtypeSkips lists columns skipped for one subtype.
var DefaultSubtypeSkips = map[string][]string{
	"url":      {"externalurl"},
	"scorm":    {"reference", "sha1hash", "md5hash", "packageurl"},
	"lti":      {"toolurl", "securetoolurl", "resourcekey", "password", "servicesalt"},
	"quiz":     {"password", "subnet"},
	"lesson":   {"password"},
	"resource": {"filterfiles"},
}

// EligibilityConfig configures an Eligibility. Patterns use glob syntax with
// '.' as separator; Common entries apply to every subtype and User entries
// may be "subtype.column" or a bare column.
type EligibilityConfig struct {
	MinColumnSize int
	Common        []string
	PerSubtype    map[string][]string
	User          []string
}

// DefaultEligibilityConfig returns the built-in skip lists.
func DefaultEligibilityConfig() EligibilityConfig {
	return EligibilityConfig{
		MinColumnSize: DefaultMinColumnSize,
		Common:        append([]string(nil), DefaultCommonSkips...),
		PerSubtype:    DefaultSubtypeSkips,
	}
}

// Eligibility decides which columns hold long, translatable text.
type Eligibility struct {
	cfg        EligibilityConfig
	minSize    int
	common     []glob.Glob
	perSubtype map[string][]glob.Glob
	user       []glob.Glob
}

// NewEligibility compiles the skip lists.
func NewEligibility(cfg EligibilityConfig) (*Eligibility, error) {
	e := &Eligibility{
		cfg:        cfg,
		minSize:    cfg.MinColumnSize,
		perSubtype: make(map[string][]glob.Glob, len(cfg.PerSubtype)),
	}
	if e.minSize <= 0 {
		e.minSize = DefaultMinColumnSize
	}
	var err error
	if e.common, err = compileAll(cfg.Common, func(p string) string { return "*." + p }); err != nil {
		return nil, err
	}
	for subtype, columns := range cfg.PerSubtype {
		prefix := strings.TrimSpace(subtype) + "."
		compiled, err := compileAll(columns, func(p string) string { return prefix + p })
		if err != nil {
			return nil, err
		}
		e.perSubtype[strings.TrimSpace(subtype)] = compiled
	}
	if e.user, err = compileAll(cfg.User, userPattern); err != nil {
		return nil, err
	}
	return e, nil
}

// WithOverrides returns a copy using minSize when positive and with user
// appended to the configured user patterns.
func (e *Eligibility) WithOverrides(minSize int, user []string) (*Eligibility, error) {
	cfg := e.cfg
	if minSize > 0 {
		cfg.MinColumnSize = minSize
	}
	cfg.User = append(append([]string(nil), e.cfg.User...), user...)
	return NewEligibility(cfg)
}

// MinColumnSize returns the active threshold.
func (e *Eligibility) MinColumnSize() int {
	return e.minSize
}

// Skipped reports whether a skip list names the column.
func (e *Eligibility) Skipped(subtype, column string) bool {
	name := subtype + "." + column
	for _, g := range e.common {
		if g.Match(name) {
			return true
		}
	}
	for _, g := range e.perSubtype[subtype] {
		if g.Match(name) {
			return true
		}
	}
	for _, g := range e.user {
		if g.Match(name) {
			return true
		}
	}
	return false
}

// Eligible reports whether column holds long text and is not skipped.
func (e *Eligibility) Eligible(subtype string, column interfaces.Column) bool {
	long := (column.Kind == interfaces.ColumnChar && column.MaxLength > e.minSize) ||
		column.Kind == interfaces.ColumnText
	return long && !e.Skipped(subtype, column.Name)
}

// Filter keeps eligible columns in declaration order.
func (e *Eligibility) Filter(subtype string, columns []interfaces.Column) []interfaces.Column {
	var out []interfaces.Column
	for _, column := range columns {
		if e.Eligible(subtype, column) {
			out = append(out, column)
		}
	}
	return out
}

func userPattern(p string) string {
	if strings.Contains(p, ".") {
		return p
	}
	return "*." + p
}

func compileAll(patterns []string, expand func(string) string) ([]glob.Glob, error) {
	var out []glob.Glob
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(expand(p), '.')
		if err != nil {
			return nil, fmt.Errorf("collector: invalid skip pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// SPDX-License-Identifier: Apache-2.0

// Package catalog loads the pattern catalog that drives event matching.
//
// A catalog is an ordered list of rules. Each rule names the event type it
// detects, the keywords or regular expression that trigger it, and the base
// confidence of a match. Catalogs are validated against a closed CUE schema
// and compiled once; a loaded *Catalog is read-only and safe to share
// between goroutines.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/sofproj/sof-mcp/internal/errors"
	"github.com/sofproj/sof-mcp/internal/sof"
)

//go:embed default.yaml
var defaultCatalog []byte

// Phase places a rule's trigger within a duration event.
type Phase string

const (
	PhaseStart Phase = "start"
	PhaseEnd   Phase = "end"
	PhasePoint Phase = "point"
)

// RequiredContext is an optional co-occurrence constraint. A match that
// satisfies it earns a confidence bonus.
type RequiredContext struct {
	// TimeWithin is the distance in characters within which a time
	// expression must appear. Zero means anywhere in the context window.
	TimeWithin int `json:"time_within,omitempty" yaml:"time_within,omitempty"`
	// AnyOf lists words of which at least one must appear in the window.
	AnyOf []string `json:"any_of,omitempty" yaml:"any_of,omitempty"`
}

// Rule is a single pattern catalog entry.
type Rule struct {
	Name            string           `json:"name" yaml:"name"`
	Type            sof.EventType    `json:"event_type" yaml:"event_type"`
	Label           string           `json:"label" yaml:"label"`
	Phase           Phase            `json:"phase,omitempty" yaml:"phase,omitempty"`
	Keywords        []string         `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Pattern         string           `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	RequiredContext *RequiredContext `json:"required_context,omitempty" yaml:"required_context,omitempty"`
	BaseConfidence  float64          `json:"base_confidence" yaml:"base_confidence"`
	Priority        int              `json:"priority,omitempty" yaml:"priority,omitempty"`

	trigger *regexp.Regexp
	anyOf   *regexp.Regexp
}

// Trigger returns the compiled trigger, or nil if the rule was never
// compiled.
func (r *Rule) Trigger() *regexp.Regexp {
	return r.trigger
}

// ContextSatisfied reports whether window contains one of the rule's
// required context words. Rules without such words are satisfied by default.
func (r *Rule) ContextSatisfied(window string) bool {
	if r.anyOf == nil {
		return true
	}
	return r.anyOf.MatchString(window)
}

// HasRequiredContext reports whether the rule declares any constraint.
func (r *Rule) HasRequiredContext() bool {
	return r.RequiredContext != nil && (r.RequiredContext.TimeWithin > 0 || len(r.RequiredContext.AnyOf) > 0)
}

// Compile builds the rule's trigger from its keywords and pattern.
func (r *Rule) Compile() error {
	if r.Phase == "" {
		r.Phase = PhasePoint
	}
	if len(r.Keywords) == 0 && r.Pattern == "" {
		return errors.NewCatalogError("rule %q has neither keywords nor pattern", r.Name)
	}

	alts := make([]string, 0, len(r.Keywords)+1)
	if r.Pattern != "" {
		if _, err := regexp.Compile(r.Pattern); err != nil {
			return errors.WithHint(
				errors.WrapCatalog(err, fmt.Sprintf("rule %q", r.Name)),
				"patterns use Go RE2 syntax; lookarounds and backreferences are not supported",
			)
		}
		alts = append(alts, "(?:"+r.Pattern+")")
	}
	alts = append(alts, keywordAlternatives(r.Keywords)...)

	re, err := regexp.Compile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	if err != nil {
		return errors.WrapCatalog(err, fmt.Sprintf("rule %q", r.Name))
	}
	r.trigger = re

	if r.RequiredContext != nil && len(r.RequiredContext.AnyOf) > 0 {
		r.anyOf = regexp.MustCompile(`(?i)(?:` + strings.Join(keywordAlternatives(r.RequiredContext.AnyOf), "|") + `)`)
	}
	return nil
}

// keywordAlternatives turns phrases into word-bounded, whitespace-tolerant
// regexp alternatives, longest first.
func keywordAlternatives(keywords []string) []string {
	sorted := append([]string(nil), keywords...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })

	out := make([]string, 0, len(sorted))
	for _, kw := range sorted {
		words := strings.Fields(kw)
		if len(words) == 0 {
			continue
		}
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		alt := strings.Join(words, `\s+`)
		if isWordByte(kw[0]) {
			alt = `\b` + alt
		}
		if isWordByte(kw[len(kw)-1]) {
			alt += `\b`
		}
		out = append(out, alt)
	}
	return out
}

func isWordByte(c byte) bool {
	return c == '_' || (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Catalog is an ordered, read-only set of rules.
type Catalog struct {
	Version         string                     `json:"version" yaml:"version"`
	Rules           []Rule                     `json:"rules" yaml:"rules"`
	ContextKeywords map[sof.EventType][]string `json:"context_keywords,omitempty" yaml:"context_keywords,omitempty"`
	Ports           []string                   `json:"ports,omitempty" yaml:"ports,omitempty"`

	context map[sof.EventType]*regexp.Regexp
}

// Context returns the compiled context keywords for the sweep pass, keyed by
// event type.
func (c *Catalog) Context() map[sof.EventType]*regexp.Regexp {
	return c.context
}

// Rule returns the rule with the given name.
func (c *Catalog) Rule(name string) (*Rule, bool) {
	for i := range c.Rules {
		if c.Rules[i].Name == name {
			return &c.Rules[i], true
		}
	}
	return nil, false
}

// Compile checks rule names and event types and compiles every trigger.
func (c *Catalog) Compile() error {
	if len(c.Rules) == 0 {
		return errors.NewCatalogError("catalog %q has no rules", c.Version)
	}
	seen := make(map[string]bool, len(c.Rules))
	for i := range c.Rules {
		r := &c.Rules[i]
		if seen[r.Name] {
			return errors.NewCatalogError("duplicate rule name %q", r.Name)
		}
		seen[r.Name] = true
		if !r.Type.Valid() {
			return errors.NewCatalogError("rule %q has unknown event type %q", r.Name, r.Type)
		}
		if r.BaseConfidence < 0 || r.BaseConfidence > 1 {
			return errors.NewCatalogError("rule %q base_confidence %v outside [0,1]", r.Name, r.BaseConfidence)
		}
		if err := r.Compile(); err != nil {
			return err
		}
	}

	c.context = make(map[sof.EventType]*regexp.Regexp, len(c.ContextKeywords))
	for t, words := range c.ContextKeywords {
		if !t.Valid() {
			return errors.NewCatalogError("context keywords for unknown event type %q", t)
		}
		alts := keywordAlternatives(words)
		if len(alts) == 0 {
			continue
		}
		c.context[t] = regexp.MustCompile(`(?i)(?:` + strings.Join(alts, "|") + `)`)
	}
	return nil
}

// Load decodes, validates and compiles a YAML or JSON catalog document.
func Load(data []byte) (*Catalog, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, errors.WrapCatalog(err, "decode catalog")
	}
	if err := validateSchema(doc); err != nil {
		return nil, err
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapCatalog(err, "decode catalog")
	}
	if err := c.Compile(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile loads a catalog from a .yaml, .yml or .json file.
func LoadFile(path string) (*Catalog, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, errors.NewCatalogError("unsupported catalog file %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapCatalog(err, "read catalog file")
	}
	c, err := Load(data)
	if err != nil {
		return nil, errors.Wrapf(err, "catalog %s", path)
	}
	return c, nil
}

// Default returns the built-in maritime catalog. Each call returns a fresh
// copy.
func Default() (*Catalog, error) {
	return Load(defaultCatalog)
}

// MustDefault is Default for package initialization and tests.
func MustDefault() *Catalog {
	c, err := Default()
	if err != nil {
		panic(err)
	}
	return c
}

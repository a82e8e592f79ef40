package desensitize

import (
	"fmt"
	"regexp"
	"sync/atomic"
)

// Rule rewrites sensitive parts of a serialized log line
type Rule interface {
	Name() string
	Enabled() bool
	SetEnabled(enabled bool)
	Process(s string) string
}

type toggle struct {
	disabled atomic.Bool
}

func (t *toggle) Enabled() bool {
	return !t.disabled.Load()
}

func (t *toggle) SetEnabled(enabled bool) {
	t.disabled.Store(!enabled)
}

// ContentRule replaces every match of a pattern anywhere in the line
type ContentRule struct {
	toggle
	name        string
	pattern     *regexp.Regexp
	replacement string
}

// NewContentRule creates a rule matching free text
func NewContentRule(name, pattern, replacement string) (*ContentRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if pattern == "" {
		return nil, fmt.Errorf("pattern cannot be empty")
	}

	regex, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern '%s': %w", pattern, err)
	}

	return &ContentRule{
		name:        name,
		pattern:     regex,
		replacement: replacement,
	}, nil
}

// MustNewContentRule is NewContentRule for package-level rules
func MustNewContentRule(name, pattern, replacement string) *ContentRule {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *ContentRule) Name() string {
	return r.name
}

func (r *ContentRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, r.replacement)
}

// FieldRule masks the string value of a JSON field. The field name is matched
// case-insensitively since header names arrive in canonical or raw form.
type FieldRule struct {
	toggle
	name        string
	replacement string
	pattern     *regexp.Regexp
}

// NewFieldRule creates a rule masking the value of the given JSON field
func NewFieldRule(name, field, replacement string) (*FieldRule, error) {
	if name == "" {
		return nil, fmt.Errorf("rule name cannot be empty")
	}
	if field == "" {
		return nil, fmt.Errorf("field name cannot be empty")
	}

	pattern, err := regexp.Compile(fmt.Sprintf(`(?i)("%s"\s*:\s*")((?:[^"\\]|\\.)*)(")`, regexp.QuoteMeta(field)))
	if err != nil {
		return nil, fmt.Errorf("failed to compile field pattern: %w", err)
	}

	return &FieldRule{
		name:        name,
		replacement: replacement,
		pattern:     pattern,
	}, nil
}

// MustNewFieldRule is NewFieldRule for package-level rules
func MustNewFieldRule(name, field, replacement string) *FieldRule {
	rule, err := NewFieldRule(name, field, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

func (r *FieldRule) Name() string {
	return r.name
}

func (r *FieldRule) Process(s string) string {
	if !r.Enabled() {
		return s
	}
	return r.pattern.ReplaceAllString(s, "${1}"+r.replacement+"${3}")
}

package desensitize

import (
	"slices"
	"sync"
)

// Hook applies an ordered set of rules to serialized log lines
type Hook struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewHook creates a hook with the given rules
func NewHook(rules ...Rule) *Hook {
	h := &Hook{}
	h.AddRule(rules...)
	return h
}

// AddRule appends rules, replacing any existing rule with the same name
func (h *Hook) AddRule(rules ...Rule) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, rule := range rules {
		if rule == nil {
			continue
		}
		idx := slices.IndexFunc(h.rules, func(r Rule) bool { return r.Name() == rule.Name() })
		if idx >= 0 {
			h.rules[idx] = rule
			continue
		}
		h.rules = append(h.rules, rule)
	}
}

// AddContentRule adds a free-text rule
func (h *Hook) AddContentRule(name, pattern, replacement string) error {
	rule, err := NewContentRule(name, pattern, replacement)
	if err != nil {
		return err
	}
	h.AddRule(rule)
	return nil
}

// AddFieldRule adds a JSON field rule
func (h *Hook) AddFieldRule(name, field, replacement string) error {
	rule, err := NewFieldRule(name, field, replacement)
	if err != nil {
		return err
	}
	h.AddRule(rule)
	return nil
}

// RemoveRule removes a rule by name
func (h *Hook) RemoveRule(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	before := len(h.rules)
	h.rules = slices.DeleteFunc(h.rules, func(r Rule) bool { return r.Name() == name })
	return len(h.rules) != before
}

// RuleCount returns the number of registered rules
func (h *Hook) RuleCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rules)
}

// Desensitize runs every enabled rule over s, in registration order
func (h *Hook) Desensitize(s string) string {
	if s == "" {
		return s
	}

	h.mu.RLock()
	rules := slices.Clone(h.rules)
	h.mu.RUnlock()

	for _, rule := range rules {
		if rule.Enabled() {
			s = rule.Process(s)
		}
	}
	return s
}

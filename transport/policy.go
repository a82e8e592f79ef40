package transport

import (
	"fmt"
	"strings"
)

// CachePolicy decides whether a request may be answered from cache
type CachePolicy int

const (
	// UseProtocolCachePolicy serves fresh cached responses and stores cacheable ones
	UseProtocolCachePolicy CachePolicy = iota
	// ReloadIgnoringLocalCacheData always loads from the origin
	ReloadIgnoringLocalCacheData
	// ReturnCacheDataElseLoad serves any cached response regardless of age, else loads
	ReturnCacheDataElseLoad
	// ReturnCacheDataDontLoad serves any cached response and never loads
	ReturnCacheDataDontLoad
)

var policyNames = map[CachePolicy]string{
	UseProtocolCachePolicy:       "protocol",
	ReloadIgnoringLocalCacheData: "reload",
	ReturnCacheDataElseLoad:      "cache-else-load",
	ReturnCacheDataDontLoad:      "cache-only",
}

func (p CachePolicy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("CachePolicy(%d)", int(p))
}

// Valid reports whether p is one of the declared policies
func (p CachePolicy) Valid() bool {
	_, ok := policyNames[p]
	return ok
}

func (p CachePolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("invalid cache policy %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *CachePolicy) UnmarshalText(text []byte) error {
	policy, err := ParseCachePolicy(string(text))
	if err != nil {
		return err
	}
	*p = policy
	return nil
}

// ParseCachePolicy parses a policy name; the empty string is UseProtocolCachePolicy
func ParseCachePolicy(s string) (CachePolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return UseProtocolCachePolicy, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown cache policy %q", s)
}

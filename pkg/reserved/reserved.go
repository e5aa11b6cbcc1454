// Package reserved holds the reserved route and word sets.
//
// Both sets are loaded once at process start from an embedded document and
// are immutable afterwards; nothing else in the codebase hardcodes reserved
// names.
package reserved

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed reserved.yaml
var reservedYAML []byte

// Sets contains the reserved route prefixes and reserved handle words.
type Sets struct {
	prefixes []string
	words    map[string]struct{}
}

type fileFormat struct {
	RoutePrefixes []string `yaml:"route_prefixes"`
	Words         []string `yaml:"words"`
}

// Load parses the embedded reserved-set document.
func Load() (*Sets, error) {
	var f fileFormat
	if err := yaml.Unmarshal(reservedYAML, &f); err != nil {
		return nil, fmt.Errorf("failed to parse reserved sets: %w", err)
	}

	s := &Sets{
		prefixes: make([]string, 0, len(f.RoutePrefixes)),
		words:    make(map[string]struct{}, len(f.Words)),
	}
	for _, p := range f.RoutePrefixes {
		p = strings.TrimSuffix(strings.ToLower(p), "/")
		if p == "" || !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("invalid reserved route prefix %q", p)
		}
		s.prefixes = append(s.prefixes, p)
	}
	for _, w := range f.Words {
		s.words[strings.ToLower(w)] = struct{}{}
	}
	return s, nil
}

// MustLoad is Load for process start, where a broken embedded document is fatal.
func MustLoad() *Sets {
	s, err := Load()
	if err != nil {
		panic(err)
	}
	return s
}

// MatchesRoute reports whether the path equals or lives under a reserved
// route prefix. Matching is segment-aware: /walletx does not match /wallet.
func (s *Sets) MatchesRoute(path string) bool {
	lower := strings.ToLower(path)
	for _, p := range s.prefixes {
		if lower == p || strings.HasPrefix(lower, p+"/") {
			return true
		}
	}
	return false
}

// IsWord reports whether the given word is reserved (case-insensitive).
func (s *Sets) IsWord(word string) bool {
	_, ok := s.words[strings.ToLower(word)]
	return ok
}

package lexicon

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Lexicon folds marketplace vocabulary variants onto one canonical token.
// Plural folding is handled by the normalizer; the lexicon covers what suffix
// rules cannot, such as irregular plurals and shopper spellings:
//
//	"leaves" -> "leaf", "crisps" -> "chip", "dehydrated" -> "dried"
//
// Entries are single tokens. Lookups are case-insensitive.
type Lexicon struct {
	// canonical -> all variants (canonical first)
	synonyms map[string][]string

	// variant -> canonical
	reverseIndex map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		synonyms:     make(map[string][]string),
		reverseIndex: make(map[string]string),
	}
}

// LoadFromYAML loads synonym groups from a YAML file.
//
// Expected format:
//
//	synonyms:
//	  - canonical: leaf
//	    variants: [leaves]
//	  - canonical: dried
//	    variants: [dehydrated]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse builds a lexicon from YAML bytes in the LoadFromYAML format.
func Parse(data []byte) (*Lexicon, error) {
	var config struct {
		Synonyms []struct {
			Canonical string   `yaml:"canonical"`
			Variants  []string `yaml:"variants"`
		} `yaml:"synonyms"`
	}

	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	lex := New()
	for i, entry := range config.Synonyms {
		canonical := strings.TrimSpace(entry.Canonical)
		if canonical == "" {
			return nil, fmt.Errorf("synonym group %d: canonical is required", i)
		}
		for _, v := range entry.Variants {
			if len(strings.Fields(v)) != 1 {
				return nil, fmt.Errorf("synonym group %q: variant %q must be a single token", canonical, v)
			}
		}
		lex.AddSynonymGroup(canonical, entry.Variants)
	}

	return lex, nil
}

// AddSynonymGroup adds a synonym group with a canonical form and its variants.
// If the group already exists, old reverse index entries are cleaned up first.
func (l *Lexicon) AddSynonymGroup(canonical string, variants []string) {
	canonical = strings.ToLower(strings.TrimSpace(canonical))

	if oldVariants, exists := l.synonyms[canonical]; exists {
		for _, oldV := range oldVariants {
			delete(l.reverseIndex, oldV)
		}
	}

	normalized := make([]string, 0, len(variants)+1)
	seen := make(map[string]bool)

	normalized = append(normalized, canonical)
	seen[canonical] = true

	for _, v := range variants {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" && !seen[v] {
			normalized = append(normalized, v)
			seen[v] = true
		}
	}

	l.synonyms[canonical] = normalized

	for _, v := range normalized {
		l.reverseIndex[v] = canonical
	}
}

// Normalize returns the canonical form of a token.
// If the token is not in the lexicon, returns the token itself.
func (l *Lexicon) Normalize(token string) string {
	token = strings.ToLower(token)
	if canonical, ok := l.reverseIndex[token]; ok {
		return canonical
	}
	return token
}

// Variants returns all known variants of a token (including the canonical form).
// If the token is not in the lexicon, returns a slice containing only the token itself.
func (l *Lexicon) Variants(token string) []string {
	token = strings.ToLower(token)

	if variants, ok := l.synonyms[token]; ok {
		return variants
	}
	if canonical, ok := l.reverseIndex[token]; ok {
		return l.synonyms[canonical]
	}
	return []string{token}
}

// HasSynonyms returns true if the token has synonyms/variants in the lexicon.
func (l *Lexicon) HasSynonyms(token string) bool {
	_, exists := l.reverseIndex[strings.ToLower(token)]
	return exists
}

// Canonicals returns every canonical token, sorted.
func (l *Lexicon) Canonicals() []string {
	out := make([]string, 0, len(l.synonyms))
	for c := range l.synonyms {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	total := 0
	for _, variants := range l.synonyms {
		total += len(variants)
	}
	return Stats{
		SynonymGroups: len(l.synonyms),
		TotalVariants: total,
	}
}

// Stats holds statistics about lexicon contents.
type Stats struct {
	SynonymGroups int // Number of canonical forms
	TotalVariants int // Total number of variants across all groups
}

package match

import (
	"fmt"

	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
)

// DefaultMaxDistance bounds the character span of a sub-phrase match.
// Some research tooling uses 80; see Options.MaxDistance.
const DefaultMaxDistance = 50

// Kind identifies how a keyword was found in content.
type Kind int

const (
	KindNone Kind = iota
	KindExact
	KindHyphen
	KindSubPhrase
)

var kindNames = [...]string{"none", "exact", "hyphen-variant", "sub-phrase"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	for i, name := range kindNames {
		if name == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown match kind %q", b)
}

// Options configures a Matcher.
type Options struct {
	// MaxDistance is the largest character span from the first to the last
	// matched token for a sub-phrase match. Zero means DefaultMaxDistance.
	MaxDistance int
}

// Result is the outcome of testing one keyword against one content string.
type Result struct {
	Keyword  string `json:"keyword"`
	Found    bool   `json:"found"`
	Kind     Kind   `json:"match_kind"`
	Position int    `json:"position"` // character offset, -1 when not found
	Span     int    `json:"span,omitempty"`
	Tokens   []int  `json:"-"` // indices of the matched content tokens
}

// Matcher decides whether keyword phrases are present in content.
type Matcher struct {
	norm        *normalize.Normalizer
	maxDistance int
}

// New creates a matcher. A nil normalizer means normalize.New().
func New(norm *normalize.Normalizer, opts Options) *Matcher {
	if norm == nil {
		norm = normalize.New()
	}
	if opts.MaxDistance <= 0 {
		opts.MaxDistance = DefaultMaxDistance
	}
	return &Matcher{norm: norm, maxDistance: opts.MaxDistance}
}

// MaxDistance returns the configured sub-phrase span bound.
func (m *Matcher) MaxDistance() int {
	return m.maxDistance
}

// Normalizer returns the normalizer used for tokenization.
func (m *Matcher) Normalizer() *normalize.Normalizer {
	return m.norm
}

// Match tests one keyword phrase against one content string.
func (m *Matcher) Match(phrase, content string) Result {
	res := m.MatchTokens(m.norm.Tokenize(phrase), m.norm.Tokenize(content))
	res.Keyword = phrase
	return res
}

// MatchAll tests every record against content, tokenizing content once.
func (m *Matcher) MatchAll(content string, records []keyword.Record) []Result {
	ctoks := m.norm.Tokenize(content)
	out := make([]Result, len(records))
	for i, r := range records {
		out[i] = m.MatchTokens(m.norm.Tokenize(r.Phrase), ctoks)
		out[i].Keyword = r.Phrase
	}
	return out
}

// MatchTokens tests pre-tokenized input. Kinds are tried in priority order:
// exact, hyphen-variant, sub-phrase.
func (m *Matcher) MatchTokens(kw, content []normalize.Token) Result {
	miss := Result{Position: -1}
	if len(kw) == 0 || len(content) < len(kw) {
		return miss
	}

	hyphenAt := -1
	for i := 0; i+len(kw) <= len(content); i++ {
		ok, sepMismatch := contiguous(kw, content[i:])
		if !ok {
			continue
		}
		if !sepMismatch {
			return found(KindExact, content, span(i, len(kw)))
		}
		if hyphenAt < 0 {
			hyphenAt = i
		}
	}
	if hyphenAt >= 0 {
		return found(KindHyphen, content, span(hyphenAt, len(kw)))
	}

	if idx, ok := m.SubPhrase(kw, content); ok {
		return found(KindSubPhrase, content, idx)
	}
	return miss
}

// SubPhrase finds every keyword token in content, in order, with plural and
// synonym folding. The first-to-last character span must not exceed the
// configured distance unless the matched tokens are adjacent.
// It returns the matched content token indices.
func (m *Matcher) SubPhrase(kw, content []normalize.Token) ([]int, bool) {
	if len(kw) == 0 {
		return nil, false
	}
	for i := range content {
		if !m.norm.Same(kw[0], content[i]) {
			continue
		}
		idx := []int{i}
		next := i + 1
		for _, want := range kw[1:] {
			for next < len(content) && !m.norm.Same(want, content[next]) {
				next++
			}
			if next == len(content) {
				break
			}
			idx = append(idx, next)
			next++
		}
		if len(idx) < len(kw) {
			// later starts cannot complete either
			return nil, false
		}
		last := idx[len(idx)-1]
		if last-i == len(idx)-1 || endOffset(content[last])-content[i].Offset <= m.maxDistance {
			return idx, true
		}
	}
	return nil, false
}

// contiguous reports whether kw matches the head of content word for word.
// sepMismatch is set when a hyphen joins words on one side only.
func contiguous(kw, content []normalize.Token) (ok, sepMismatch bool) {
	for j, want := range kw {
		got := content[j]
		if got.Text != want.Text {
			return false, false
		}
		if j > 0 && got.Hyphenated() != want.Hyphenated() {
			sepMismatch = true
		}
	}
	return true, sepMismatch
}

func span(start, n int) []int {
	idx := make([]int, n)
	for j := range idx {
		idx[j] = start + j
	}
	return idx
}

func found(kind Kind, content []normalize.Token, idx []int) Result {
	first, last := content[idx[0]], content[idx[len(idx)-1]]
	return Result{
		Found:    true,
		Kind:     kind,
		Position: first.Offset,
		Span:     endOffset(last) - first.Offset,
		Tokens:   idx,
	}
}

func endOffset(t normalize.Token) int {
	return t.Offset + normalize.Len(t.Text)
}

package normalize

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cognicore/keyroot/pkg/keyroot/lexicon"
)

// Token is one comparable word of a keyword phrase or content string.
type Token struct {
	Text   string // lower-cased surface form
	Norm   string // singular (and lexicon-canonical) form
	Start  int    // byte offset of the first byte in the source string
	End    int    // byte offset one past the last byte
	Offset int    // character (rune) offset of Start
	Gap    string // raw source text between the previous token and this one
}

// Hyphenated reports whether the token was joined to its predecessor by a hyphen.
func (t Token) Hyphenated() bool {
	return strings.ContainsRune(t.Gap, '-')
}

// Normalizer maps surface text to canonical tokens.
// Hyphens are token boundaries, so "freeze-dried" and "freeze dried"
// produce the same two tokens.
type Normalizer struct {
	lexicon *lexicon.Lexicon // Optional: for synonym folding
}

// New creates a normalizer without a lexicon.
func New() *Normalizer {
	return &Normalizer{}
}

// SetLexicon assigns a lexicon for synonym folding.
// When set, token norms are mapped to their canonical forms.
func (n *Normalizer) SetLexicon(lex *lexicon.Lexicon) {
	n.lexicon = lex
}

// Tokenize splits text into tokens with offsets into text.
// Fragments with no letters or digits are dropped; empty input yields nil.
func (n *Normalizer) Tokenize(text string) []Token {
	var tokens []Token
	start := -1
	startRune := 0
	runeIdx := 0
	prevEnd := 0

	flush := func(end int) {
		raw := text[start:end]
		left := strings.TrimLeft(raw, "'’")
		startRune += utf8.RuneCountInString(raw[:len(raw)-len(left)])
		start += len(raw) - len(left)
		end -= len(left) - len(strings.TrimRight(left, "'’"))
		word := strings.ToLower(text[start:end])
		if word != "" {
			tokens = append(tokens, Token{
				Text:   word,
				Norm:   n.Fold(word),
				Start:  start,
				End:    end,
				Offset: startRune,
				Gap:    text[prevEnd:start],
			})
			prevEnd = end
		}
		start = -1
	}

	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
				startRune = runeIdx
			}
		} else if start >= 0 {
			flush(i)
		}
		runeIdx++
	}
	if start >= 0 {
		flush(len(text))
	}

	return tokens
}

// Forms returns only the normalized forms of the tokens in text.
func (n *Normalizer) Forms(text string) []string {
	toks := n.Tokenize(text)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Norm
	}
	return out
}

// Fold returns the normalized form of a single lower-cased word.
func (n *Normalizer) Fold(word string) string {
	word = strings.ToLower(word)
	word = strings.TrimSuffix(strings.TrimSuffix(word, "'s"), "’s")
	if n != nil && n.lexicon != nil && n.lexicon.HasSynonyms(word) {
		return n.lexicon.Normalize(word)
	}
	s := Singular(word)
	if n != nil && n.lexicon != nil {
		return n.lexicon.Normalize(s)
	}
	return s
}

// Same reports whether two tokens are equal for matching purposes.
func (n *Normalizer) Same(a, b Token) bool {
	return a.Norm == b.Norm || Equivalent(a.Text, b.Text)
}

// Singular strips a plural suffix using a small fixed rule set:
// "ies" -> "y", sibilant + "es" -> drop "es", otherwise a trailing "s".
// Irregular plurals are left alone.
func Singular(w string) string {
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case n > 4 && hasAnySuffix(w, "sses", "xes", "zes", "ches", "shes"):
		return w[:n-2]
	case n > 3 && strings.HasSuffix(w, "s") && !hasAnySuffix(w, "ss", "us", "is"):
		return w[:n-1]
	}
	return w
}

// Equivalent reports whether two lower-cased words are equal up to
// the +s, +es and y/ies plural rules.
func Equivalent(a, b string) bool {
	if a == b || Singular(a) == Singular(b) {
		return true
	}
	return pluralOf(a, b) || pluralOf(b, a)
}

func pluralOf(single, plural string) bool {
	if plural == single+"s" || plural == single+"es" {
		return true
	}
	return strings.HasSuffix(single, "y") && plural == single[:len(single)-1]+"ies"
}

// Key returns the identity of a keyword phrase: its lower-cased surface
// words joined by single spaces. Phrases differing only in case, spacing
// or hyphenation share a key.
func Key(phrase string) string {
	return strings.Join(Words(phrase), " ")
}

// Words returns the lower-cased surface words of text.
func Words(text string) []string {
	toks := (*Normalizer)(nil).Tokenize(text)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Text
	}
	return out
}

// Len returns the length of s in characters.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r) || r == '\'' || r == '’'
}

func hasAnySuffix(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

package taxonomy

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
)

// Category is the semantic class of a root token. The set is closed.
type Category string

const (
	Ingredient Category = "ingredient"
	Processing Category = "processing"
	Quality    Category = "quality"
	Quantity   Category = "quantity"
	Brand      Category = "brand"
	Other      Category = "other"
)

// byPriority lists categories from most to least specific.
var byPriority = []Category{Ingredient, Processing, Quality, Quantity, Brand, Other}

var defaultWeights = map[Category]float64{
	Ingredient: 1.0,
	Processing: 0.9,
	Quality:    0.8,
	Quantity:   0.6,
	Brand:      0.5,
	Other:      0.4,
}

// Categories returns every category, most specific first.
func Categories() []Category {
	return append([]Category(nil), byPriority...)
}

// ParseCategory validates a label, typically one produced by an external
// categorizer. Unknown labels are rejected with ErrUnknownCategory.
func ParseCategory(label string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(label)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", internalerr.ErrUnknownCategory, label)
	}
	return c, nil
}

// Valid reports whether c is one of the closed set.
func (c Category) Valid() bool {
	return c.Rank() < len(byPriority)
}

// Rank is the category's position in priority order; 0 is most specific.
// Unknown categories rank after Other.
func (c Category) Rank() int {
	for i, p := range byPriority {
		if p == c {
			return i
		}
	}
	return len(byPriority)
}

// Taxonomy maps tokens to categories using explicit word lists.
type Taxonomy struct {
	words          map[string]Category // word (surface and singular) -> category
	labels         map[string]Category // externally supplied labels, win over lists
	weights        map[Category]float64
	brandHeuristic bool
}

// New creates an empty taxonomy with default weights and the
// capitalization brand heuristic enabled.
func New() *Taxonomy {
	weights := make(map[Category]float64, len(defaultWeights))
	for c, w := range defaultWeights {
		weights[c] = w
	}
	return &Taxonomy{
		words:          make(map[string]Category),
		labels:         make(map[string]Category),
		weights:        weights,
		brandHeuristic: true,
	}
}

// AddWords registers words under a category. A word already registered
// keeps the more specific of its categories.
func (t *Taxonomy) AddWords(c Category, words []string) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", internalerr.ErrUnknownCategory, c)
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		for _, key := range []string{w, normalize.Singular(w)} {
			if prev, ok := t.words[key]; !ok || c.Rank() < prev.Rank() {
				t.words[key] = c
			}
		}
	}
	return nil
}

// SetLabel records an external category label for a token.
func (t *Taxonomy) SetLabel(token, label string) error {
	c, err := ParseCategory(label)
	if err != nil {
		return fmt.Errorf("label for %q: %w", token, err)
	}
	token = strings.ToLower(strings.TrimSpace(token))
	t.labels[token] = c
	t.labels[normalize.Singular(token)] = c
	return nil
}

// SetWeight sets the ranking weight of a category.
func (t *Taxonomy) SetWeight(c Category, w float64) error {
	if !c.Valid() {
		return fmt.Errorf("%w: %q", internalerr.ErrUnknownCategory, c)
	}
	if w < 0 {
		return fmt.Errorf("%w: weight for %s must be non-negative", internalerr.ErrInvalidConfig, c)
	}
	t.weights[c] = w
	return nil
}

// Weight returns the ranking weight of a category.
func (t *Taxonomy) Weight(c Category) float64 {
	return t.weights[c]
}

// SetBrandHeuristic toggles treating capitalized non-leading words as brands.
func (t *Taxonomy) SetBrandHeuristic(on bool) {
	t.brandHeuristic = on
}

// Categorize returns the category of tok, a token of phrase.
func (t *Taxonomy) Categorize(tok normalize.Token, phrase string) Category {
	for _, key := range []string{tok.Norm, tok.Text} {
		if c, ok := t.labels[key]; ok {
			return c
		}
	}
	for _, key := range []string{tok.Norm, tok.Text} {
		if c, ok := t.words[key]; ok {
			return c
		}
	}
	if t.brandHeuristic && tok.Start <= tok.End && tok.End <= len(phrase) && looksLikeBrand(phrase, tok) {
		return Brand
	}
	return Other
}

// Size returns the number of registered words and labels.
func (t *Taxonomy) Size() (words, labels int) {
	return len(t.words), len(t.labels)
}

// looksLikeBrand flags ALL-CAPS words and capitalized words that do not
// start the phrase. Research exports are mostly lower case, so
// capitalization there is deliberate.
func looksLikeBrand(phrase string, tok normalize.Token) bool {
	surface := phrase[tok.Start:tok.End]
	if surface == "" {
		return false
	}
	letters, upper := 0, 0
	for _, r := range surface {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters >= 2 && upper == letters {
		return true
	}
	first := []rune(surface)[0]
	return unicode.IsUpper(first) && len(normalize.Words(phrase[:tok.Start])) > 0
}

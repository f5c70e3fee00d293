package stoplist

import "strings"

// Builtin lists semantically empty keyword tokens: articles, prepositions
// and marketplace filler that never make a useful root.
var Builtin = []string{
	"a", "an", "the",
	"and", "or", "but", "nor",
	"of", "in", "on", "at", "to", "for", "with", "without", "by", "from", "into", "per", "vs",
	"is", "are", "be", "it", "its", "this", "that", "these", "those",
	"i", "me", "my", "you", "your", "our", "we",
	"best", "top", "good", "great", "new", "cheap", "buy", "sale", "deal", "deals",
	"item", "items", "product", "products", "online", "near", "amazon",
}

// Manager holds the stop-list used when reducing keywords to roots.
type Manager struct {
	stops map[string]struct{}
}

// NewManager creates a stop-list from the given terms (case-insensitive).
func NewManager(initialStops []string) *Manager {
	m := &Manager{stops: make(map[string]struct{}, len(initialStops))}
	for _, s := range initialStops {
		m.Add(s)
	}
	return m
}

// Default returns a manager seeded with Builtin.
func Default() *Manager {
	return NewManager(Builtin)
}

// IsStop checks if a token is a stopword. A nil manager stops nothing.
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	_, ok := m.stops[strings.ToLower(token)]
	return ok
}

// Add adds a token to the stoplist
func (m *Manager) Add(token string) {
	token = strings.ToLower(strings.TrimSpace(token))
	if token != "" {
		m.stops[token] = struct{}{}
	}
}

// Remove removes a token from the stoplist
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// Len returns the number of stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

package roots

import (
	"sort"
	"strings"

	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
	"github.com/cognicore/keyroot/pkg/keyroot/stoplist"
	"github.com/cognicore/keyroot/pkg/keyroot/taxonomy"
)

// Group is a cluster of keywords sharing one root token.
type Group struct {
	Root            string
	Category        taxonomy.Category
	Members         []keyword.Record
	AggregateVolume int64 // sum over distinct member phrases
	Score           float64
}

// Phrases returns the member phrases.
func (g Group) Phrases() []string {
	return keyword.Phrases(g.Members)
}

// Summary is the reporting view of a Group.
type Summary struct {
	Root            string            `json:"root"`
	Category        taxonomy.Category `json:"category"`
	MemberCount     int               `json:"member_count"`
	AggregateVolume int64             `json:"aggregate_volume"`
	Score           float64           `json:"score"`
}

// Summary returns the reporting view of g.
func (g Group) Summary() Summary {
	return Summary{
		Root:            g.Root,
		Category:        g.Category,
		MemberCount:     len(g.Members),
		AggregateVolume: g.AggregateVolume,
		Score:           g.Score,
	}
}

// Result is a ranked partition of a keyword set.
type Result struct {
	Groups  []Group          // ranked, highest score first
	Records []keyword.Record // input records in order, with Root assigned
}

// Priority returns the top n groups. n <= 0 returns all of them.
func (r Result) Priority(n int) []Group {
	if n <= 0 || n > len(r.Groups) {
		n = len(r.Groups)
	}
	return append([]Group(nil), r.Groups[:n]...)
}

// Summaries returns the reporting view of every group, in rank order.
func (r Result) Summaries() []Summary {
	out := make([]Summary, len(r.Groups))
	for i, g := range r.Groups {
		out[i] = g.Summary()
	}
	return out
}

// Extractor reduces a keyword set to category-tagged roots.
type Extractor struct {
	norm  *normalize.Normalizer
	stops *stoplist.Manager
	tax   *taxonomy.Taxonomy
}

// NewExtractor creates an extractor. Nil arguments fall back to
// normalize.New(), stoplist.Default() and taxonomy.Default().
func NewExtractor(norm *normalize.Normalizer, stops *stoplist.Manager, tax *taxonomy.Taxonomy) *Extractor {
	if norm == nil {
		norm = normalize.New()
	}
	if stops == nil {
		stops = stoplist.Default()
	}
	if tax == nil {
		tax = taxonomy.Default()
	}
	return &Extractor{norm: norm, stops: stops, tax: tax}
}

type candidate struct {
	norm string
	cat  taxonomy.Category
}

// Extract assigns every record to exactly one root and ranks the groups.
// Records are copied; the input slice is not modified.
func (e *Extractor) Extract(records []keyword.Record) Result {
	cands := make([][]candidate, len(records))
	freq := make(map[string]int)
	category := make(map[string]taxonomy.Category)
	counted := make(map[string]map[string]bool) // token -> phrase keys seen

	toks := make([][]normalize.Token, len(records))
	for i, r := range records {
		toks[i] = e.norm.Tokenize(r.Phrase)
	}
	classes := e.norm.Classes(toks...)

	for i, r := range records {
		classes.Apply(toks[i])
		cands[i] = e.candidates(r.Phrase, toks[i])
		key := r.Key()
		for _, c := range cands[i] {
			if prev, ok := category[c.norm]; !ok || c.cat.Rank() < prev.Rank() {
				category[c.norm] = c.cat
			}
			if counted[c.norm] == nil {
				counted[c.norm] = make(map[string]bool)
			}
			if !counted[c.norm][key] {
				counted[c.norm][key] = true
				freq[c.norm]++
			}
		}
	}

	groups := make(map[string]*Group)
	var order []string
	seen := make(map[string]map[string]bool) // root -> member phrase keys
	assigned := make([]keyword.Record, len(records))

	for i, r := range records {
		root, cat := "", taxonomy.Other
		for _, c := range cands[i] {
			if root == "" || better(c.norm, root, category, freq) {
				root, cat = c.norm, category[c.norm]
			}
		}
		if root == "" {
			root = fallbackRoot(r.Phrase)
		}

		g, ok := groups[root]
		if !ok {
			g = &Group{Root: root, Category: cat}
			groups[root] = g
			seen[root] = make(map[string]bool)
			order = append(order, root)
		}
		r.Root = root
		assigned[i] = r
		g.Members = append(g.Members, r)
		if key := r.Key(); !seen[root][key] {
			seen[root][key] = true
			g.AggregateVolume += r.Volume()
		}
	}

	ranked := make([]Group, 0, len(order))
	for _, root := range order {
		g := groups[root]
		g.Score = e.tax.Weight(g.Category) * float64(g.AggregateVolume)
		ranked = append(ranked, *g)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		if a.AggregateVolume != b.AggregateVolume {
			return a.AggregateVolume > b.AggregateVolume
		}
		return a.Root < b.Root
	})

	return Result{Groups: ranked, Records: assigned}
}

// candidates returns the distinct non-stop tokens of phrase.
func (e *Extractor) candidates(phrase string, toks []normalize.Token) []candidate {
	var out []candidate
	dup := make(map[string]bool)
	for _, tok := range toks {
		if e.stops.IsStop(tok.Text) || e.stops.IsStop(tok.Norm) || dup[tok.Norm] {
			continue
		}
		dup[tok.Norm] = true
		out = append(out, candidate{norm: tok.Norm, cat: e.tax.Categorize(tok, phrase)})
	}
	return out
}

// better reports whether token tok should replace cur as a keyword's root:
// more specific category first, then higher frequency, then lexical order.
func better(tok, cur string, category map[string]taxonomy.Category, freq map[string]int) bool {
	if r1, r2 := category[tok].Rank(), category[cur].Rank(); r1 != r2 {
		return r1 < r2
	}
	if freq[tok] != freq[cur] {
		return freq[tok] > freq[cur]
	}
	return tok < cur
}

// fallbackRoot keys a keyword with no usable tokens by its literal phrase.
func fallbackRoot(phrase string) string {
	if key := normalize.Key(phrase); key != "" {
		return key
	}
	return strings.ToLower(strings.TrimSpace(phrase))
}

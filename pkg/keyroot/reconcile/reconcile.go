package reconcile

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
	"github.com/cognicore/keyroot/pkg/keyroot/match"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
	"github.com/cognicore/keyroot/pkg/keyroot/stoplist"
)

// Outcome classifies a reconciliation.
type Outcome int

const (
	// OutcomeUnchanged means the draft had no duplicate roots.
	OutcomeUnchanged Outcome = iota
	// OutcomeRepaired means the content was edited and meets MinLen.
	OutcomeRepaired
	// OutcomePartial means the best achievable content is still shorter
	// than MinLen. The caller decides whether to accept it.
	OutcomePartial
)

var outcomeNames = [...]string{"unchanged", "repaired", "partial"}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
	return outcomeNames[o]
}

// MarshalText encodes the outcome by name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Options configures a Reconciler.
type Options struct {
	MinLen    int    // pad up to this many characters; 0 disables padding
	MaxLen    int    // hard upper bound on content length; 0 means unbounded
	Separator string // joins padding keywords to the content; default " "

	// Stoplist tokens are ignored when looking for duplicates.
	// Nil treats every token as significant.
	Stoplist *stoplist.Manager
}

// Result is the outcome of reconciling one drafted content string.
type Result struct {
	Content          string   `json:"content"`
	KeywordsIncluded []string `json:"keywords_included"`
	Removed          []string `json:"removed_keywords,omitempty"`
	RemovedTokens    []string `json:"removed_tokens,omitempty"`
	Added            []string `json:"added_keywords,omitempty"`
	Duplicates       []string `json:"duplicate_tokens,omitempty"`
	Length           int      `json:"length"`
	Shortfall        int      `json:"shortfall,omitempty"`
	Truncated        bool     `json:"truncated,omitempty"`
	Outcome          Outcome  `json:"outcome"`
}

// Partial reports whether the result fell short of MinLen after repair.
func (r Result) Partial() bool {
	return r.Outcome == OutcomePartial
}

// Reconciler repairs drafted copy that repeats keyword roots.
type Reconciler struct {
	norm    *normalize.Normalizer
	matcher *match.Matcher
	opts    Options
}

// New creates a reconciler. A nil matcher means match.New(nil, match.Options{}).
func New(m *match.Matcher, opts Options) (*Reconciler, error) {
	if opts.MinLen < 0 || opts.MaxLen < 0 {
		return nil, fmt.Errorf("%w: length bounds must be non-negative", internalerr.ErrInvalidConfig)
	}
	if opts.MaxLen > 0 && opts.MinLen > opts.MaxLen {
		return nil, fmt.Errorf("%w: min length %d exceeds max length %d", internalerr.ErrInvalidConfig, opts.MinLen, opts.MaxLen)
	}
	if opts.Separator == "" {
		opts.Separator = " "
	}
	if m == nil {
		m = match.New(nil, match.Options{})
	}
	return &Reconciler{norm: m.Normalizer(), matcher: m, opts: opts}, nil
}

// Options returns the reconciler's configuration.
func (r *Reconciler) Options() Options {
	return r.opts
}

// Reconcile checks draft for repeated keyword roots. When it finds any, it
// keeps the claimed keywords that add new tokens, cuts the text of the rest,
// and pads from pool when the result drops below MinLen.
func (r *Reconciler) Reconcile(draft string, claimed []string, pool []keyword.Record) Result {
	toks := r.norm.Tokenize(draft)
	batch := [][]normalize.Token{toks}
	for _, c := range claimed {
		batch = append(batch, r.norm.Tokenize(c))
	}
	for _, rec := range pool {
		batch = append(batch, r.norm.Tokenize(rec.Phrase))
	}
	cls := r.norm.Classes(batch...)
	cls.Apply(toks)
	dups := r.duplicates(toks)

	if len(dups) == 0 {
		res := Result{
			Content:          draft,
			KeywordsIncluded: append([]string(nil), claimed...),
			Outcome:          OutcomeUnchanged,
		}
		r.enforceMax(&res)
		if res.Truncated {
			res.Outcome = OutcomeRepaired
		}
		r.finish(&res, res.Truncated)
		return res
	}

	kept, discarded, seen := r.selectKeywords(claimed, cls)
	content, removedTokens := r.cut(draft, toks, kept, discarded, cls)

	res := Result{
		Content:          content,
		KeywordsIncluded: kept,
		Removed:          discarded,
		RemovedTokens:    removedTokens,
		Duplicates:       dups,
		Outcome:          OutcomeRepaired,
	}

	if r.opts.MinLen > 0 && normalize.Len(res.Content) < r.opts.MinLen {
		r.pad(&res, claimed, pool, seen, cls)
	}
	r.enforceMax(&res)
	r.finish(&res, true)
	return res
}

// duplicates returns the sorted normalized tokens occurring more than once.
func (r *Reconciler) duplicates(toks []normalize.Token) []string {
	counts := make(map[string]int)
	for _, t := range toks {
		if r.opts.Stoplist.IsStop(t.Text) || r.opts.Stoplist.IsStop(t.Norm) {
			continue
		}
		counts[t.Norm]++
	}
	var dups []string
	for norm, n := range counts {
		if n > 1 {
			dups = append(dups, norm)
		}
	}
	sort.Strings(dups)
	return dups
}

// selectKeywords walks the claimed keywords longest first and keeps those
// that add at least two new tokens. The first is always kept, and a second
// is kept for a single new token so the list never collapses.
func (r *Reconciler) selectKeywords(claimed []string, cls *normalize.Classes) (kept, discarded []string, seen map[string]bool) {
	ordered := distinctPhrases(claimed)
	sort.SliceStable(ordered, func(i, j int) bool {
		return normalize.Len(ordered[i]) > normalize.Len(ordered[j])
	})

	seen = make(map[string]bool)
	for _, kw := range ordered {
		forms := r.forms(kw, cls)
		fresh := 0
		for _, f := range uniq(forms) {
			if !seen[f] {
				fresh++
			}
		}
		if len(seen) == 0 || fresh >= 2 || (len(kept) < 2 && fresh >= 1) {
			kept = append(kept, kw)
			for _, f := range forms {
				seen[f] = true
			}
			continue
		}
		discarded = append(discarded, kw)
	}
	return kept, discarded, seen
}

// cut removes the text of discarded keywords from draft. Tokens matched by
// kept keywords are never cut. A discarded keyword loses every further
// occurrence whose tokens all repeat elsewhere in the draft.
func (r *Reconciler) cut(draft string, toks []normalize.Token, kept, discarded []string, cls *normalize.Classes) (string, []string) {
	protected := make(map[int]bool)
	removed := make(map[int]bool)

	for _, kw := range kept {
		idx := r.locate(kw, toks, protected, cls)
		if idx == nil {
			idx = r.firstOccurrences(kw, toks, protected, cls)
		}
		for _, i := range idx {
			protected[i] = true
		}
	}

	for _, kw := range discarded {
		idx := r.locate(kw, toks, union(protected, removed), cls)
		if idx == nil {
			idx = r.redundantCopies(kw, toks, union(protected, removed), removed, cls)
		}
		for len(idx) > 0 {
			for _, i := range idx {
				removed[i] = true
			}
			idx = r.locate(kw, toks, union(protected, removed), cls)
			if !redundant(idx, toks, removed) {
				idx = nil
			}
		}
	}

	if len(removed) == 0 {
		return tidy(draft), nil
	}

	var b strings.Builder
	last := 0
	normSet := make(map[string]bool)
	for i, t := range toks {
		if !removed[i] {
			continue
		}
		b.WriteString(draft[last:t.Start])
		last = t.End
		normSet[t.Norm] = true
	}
	b.WriteString(draft[last:])

	return tidy(b.String()), sortedKeys(normSet)
}

// locate finds kw among the tokens not in blocked and returns the matched
// token indices, or nil.
func (r *Reconciler) locate(kw string, toks []normalize.Token, blocked map[int]bool, cls *normalize.Classes) []int {
	var avail []normalize.Token
	var index []int
	for i, t := range toks {
		if !blocked[i] {
			avail = append(avail, t)
			index = append(index, i)
		}
	}
	res := r.matcher.MatchTokens(r.tokens(kw, cls), avail)
	if !res.Found {
		return nil
	}
	out := make([]int, len(res.Tokens))
	for j, k := range res.Tokens {
		out[j] = index[k]
	}
	return out
}

// firstOccurrences protects a kept keyword that the draft does not contain
// as a phrase by its earliest free token of each form.
func (r *Reconciler) firstOccurrences(kw string, toks []normalize.Token, blocked map[int]bool, cls *normalize.Classes) []int {
	var out []int
	for _, form := range uniq(r.forms(kw, cls)) {
		for i, t := range toks {
			if !blocked[i] && t.Norm == form {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// redundantCopies picks, for each token of kw, one unblocked occurrence
// whose normalized form also appears elsewhere among the tokens not yet
// removed.
func (r *Reconciler) redundantCopies(kw string, toks []normalize.Token, blocked, removed map[int]bool, cls *normalize.Classes) []int {
	counts := make(map[string]int)
	for i, t := range toks {
		if !removed[i] {
			counts[t.Norm]++
		}
	}
	var out []int
	taken := make(map[int]bool)
	for _, form := range uniq(r.forms(kw, cls)) {
		for i := len(toks) - 1; i >= 0; i-- {
			t := toks[i]
			if blocked[i] || taken[i] || t.Norm != form || counts[form] < 2 {
				continue
			}
			taken[i] = true
			counts[form]--
			out = append(out, i)
			break
		}
	}
	sort.Ints(out)
	return out
}

// pad appends pool keywords, most valuable first, that add at least two
// new tokens and fit under MaxLen, until the content reaches MinLen.
func (r *Reconciler) pad(res *Result, claimed []string, pool []keyword.Record, seen map[string]bool, cls *normalize.Classes) {
	exclude := make(map[string]bool)
	for _, c := range claimed {
		exclude[normalize.Key(c)] = true
	}
	for _, f := range r.forms(res.Content, cls) {
		seen[f] = true
	}

	candidates := make([]keyword.Record, 0, len(pool))
	for _, rec := range pool {
		if rec.Validate() == nil && !exclude[rec.Key()] {
			candidates = append(candidates, rec)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Value() != b.Value() {
			return a.Value() > b.Value()
		}
		if a.Volume() != b.Volume() {
			return a.Volume() > b.Volume()
		}
		return a.Phrase < b.Phrase
	})

	length := normalize.Len(res.Content)
	for _, rec := range candidates {
		if length >= r.opts.MinLen {
			break
		}
		key := rec.Key()
		if exclude[key] {
			continue
		}
		forms := uniq(r.forms(rec.Phrase, cls))
		fresh := 0
		for _, f := range forms {
			if !seen[f] {
				fresh++
			}
		}
		if fresh < 2 {
			continue
		}

		phrase := strings.TrimSpace(rec.Phrase)
		next := phrase
		if res.Content != "" {
			next = res.Content + r.opts.Separator + phrase
		}
		if r.opts.MaxLen > 0 && normalize.Len(next) > r.opts.MaxLen {
			continue
		}

		res.Content = next
		res.Added = append(res.Added, phrase)
		res.KeywordsIncluded = append(res.KeywordsIncluded, phrase)
		exclude[key] = true
		for _, f := range forms {
			seen[f] = true
		}
		length = normalize.Len(next)
	}
}

// enforceMax trims trailing words until the content fits MaxLen.
// Keywords no longer present are moved to Removed.
func (r *Reconciler) enforceMax(res *Result) {
	if r.opts.MaxLen <= 0 || normalize.Len(res.Content) <= r.opts.MaxLen {
		return
	}
	runes := []rune(res.Content)
	cut := string(runes[:r.opts.MaxLen])
	if r.opts.MaxLen < len(runes) && runes[r.opts.MaxLen] != ' ' {
		if i := strings.LastIndexAny(cut, " \t"); i > 0 {
			cut = cut[:i]
		}
	}
	res.Content = tidy(cut)
	res.Truncated = true

	var still []string
	for _, kw := range res.KeywordsIncluded {
		if r.matcher.Match(kw, res.Content).Found {
			still = append(still, kw)
		} else {
			res.Removed = append(res.Removed, kw)
		}
	}
	res.KeywordsIncluded = still
}

// finish sets the length fields and, for repaired content, the outcome.
func (r *Reconciler) finish(res *Result, repaired bool) {
	res.Length = normalize.Len(res.Content)
	if r.opts.MinLen > 0 && res.Length < r.opts.MinLen {
		res.Shortfall = r.opts.MinLen - res.Length
		if repaired {
			res.Outcome = OutcomePartial
		}
	}
}

// tokens tokenizes text with norms folded through cls.
func (r *Reconciler) tokens(text string, cls *normalize.Classes) []normalize.Token {
	toks := r.norm.Tokenize(text)
	cls.Apply(toks)
	return toks
}

func (r *Reconciler) forms(text string, cls *normalize.Classes) []string {
	toks := r.tokens(text, cls)
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Norm
	}
	return out
}

// redundant reports whether idx is non-empty and every token it names has
// another occurrence among the tokens not yet removed.
func redundant(idx []int, toks []normalize.Token, removed map[int]bool) bool {
	if len(idx) == 0 {
		return false
	}
	counts := make(map[string]int)
	for i, t := range toks {
		if !removed[i] {
			counts[t.Norm]++
		}
	}
	for _, i := range idx {
		if counts[toks[i].Norm] < 2 {
			return false
		}
	}
	return true
}

func distinctPhrases(phrases []string) []string {
	seen := make(map[string]bool, len(phrases))
	out := make([]string, 0, len(phrases))
	for _, p := range phrases {
		k := normalize.Key(p)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func uniq(forms []string) []string {
	seen := make(map[string]bool, len(forms))
	out := make([]string, 0, len(forms))
	for _, f := range forms {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func union(a, b map[int]bool) map[int]bool {
	out := make(map[int]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

package volume

import (
	"sort"

	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
	"github.com/cognicore/keyroot/pkg/keyroot/match"
)

// Summary is the keyword coverage of one content unit, or of several units
// after Merge.
type Summary struct {
	Matched     []keyword.Record // distinct matched keywords, in input order
	Results     []match.Result   // one result per distinct input phrase
	TotalVolume int64
}

// Phrases returns the matched phrases.
func (s Summary) Phrases() []string {
	return keyword.Phrases(s.Matched)
}

// Aggregator sums the search volume a content string already covers.
type Aggregator struct {
	matcher *match.Matcher
}

// New creates an aggregator backed by the given matcher.
func New(m *match.Matcher) *Aggregator {
	if m == nil {
		m = match.New(nil, match.Options{})
	}
	return &Aggregator{matcher: m}
}

// Aggregate matches every distinct keyword against content and sums the
// volumes of those found. Records sharing a phrase key are counted once,
// using the first record's volume.
func (a *Aggregator) Aggregate(content string, records []keyword.Record) Summary {
	distinct := Distinct(records)
	results := a.matcher.MatchAll(content, distinct)

	var s Summary
	s.Results = results
	for i, res := range results {
		if !res.Found {
			continue
		}
		s.Matched = append(s.Matched, distinct[i])
		s.TotalVolume += distinct[i].Volume()
	}
	return s
}

// Merge combines single-unit summaries into a listing-level summary in
// which a phrase matched by several units is counted once. The merge is
// order-independent for TotalVolume.
func Merge(summaries ...Summary) Summary {
	var out Summary
	seen := make(map[string]bool)
	for _, s := range summaries {
		for _, r := range s.Matched {
			k := r.Key()
			if seen[k] {
				continue
			}
			seen[k] = true
			out.Matched = append(out.Matched, r)
			out.TotalVolume += r.Volume()
		}
	}
	sort.SliceStable(out.Matched, func(i, j int) bool {
		return out.Matched[i].Volume() > out.Matched[j].Volume()
	})
	return out
}

// Distinct drops records whose phrase key was already seen.
func Distinct(records []keyword.Record) []keyword.Record {
	seen := make(map[string]bool, len(records))
	out := make([]keyword.Record, 0, len(records))
	for _, r := range records {
		k := r.Key()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, r)
	}
	return out
}

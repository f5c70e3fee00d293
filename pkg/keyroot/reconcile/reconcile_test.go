package reconcile

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
	"github.com/cognicore/keyroot/pkg/keyroot/stoplist"
)

func newReconciler(t *testing.T, opts Options) *Reconciler {
	t.Helper()
	r, err := New(nil, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNewValidatesBounds(t *testing.T) {
	for _, opts := range []Options{
		{MinLen: 100, MaxLen: 50},
		{MinLen: -1},
		{MaxLen: -5},
	} {
		if _, err := New(nil, opts); !errors.Is(err, internalerr.ErrInvalidConfig) {
			t.Errorf("New(%+v) error = %v, want ErrInvalidConfig", opts, err)
		}
	}
	r := newReconciler(t, Options{MinLen: 100})
	if r.Options().Separator != " " {
		t.Errorf("default separator = %q", r.Options().Separator)
	}
}

func TestReconcileDropsRedundantKeyword(t *testing.T) {
	r := newReconciler(t, Options{})
	res := r.Reconcile("Organic Strawberry Strawberries Slices",
		[]string{"organic strawberry slices", "strawberries"}, nil)

	if res.Content != "Organic Strawberry Slices" {
		t.Errorf("Content = %q", res.Content)
	}
	if !reflect.DeepEqual(res.KeywordsIncluded, []string{"organic strawberry slices"}) {
		t.Errorf("KeywordsIncluded = %v", res.KeywordsIncluded)
	}
	if !reflect.DeepEqual(res.Removed, []string{"strawberries"}) {
		t.Errorf("Removed = %v", res.Removed)
	}
	if !reflect.DeepEqual(res.RemovedTokens, []string{"strawberry"}) {
		t.Errorf("RemovedTokens = %v", res.RemovedTokens)
	}
	if !reflect.DeepEqual(res.Duplicates, []string{"strawberry"}) {
		t.Errorf("Duplicates = %v", res.Duplicates)
	}
	if res.Outcome != OutcomeRepaired || res.Length != 25 {
		t.Errorf("Outcome = %v, Length = %d", res.Outcome, res.Length)
	}
}

func TestReconcileFloorKeepsTwoKeywords(t *testing.T) {
	draft := "Freeze Dried Strawberry Slices - Freeze Strawberry Crisps, Dried Strawberry Snack, Strawberry Slices Bulk"
	claimed := []string{
		"strawberry slices bulk",
		"freeze dried strawberry slices",
		"dried strawberry snack",
		"freeze strawberry crisps",
	}
	res := newReconciler(t, Options{}).Reconcile(draft, claimed, nil)

	wantKept := []string{"freeze dried strawberry slices", "freeze strawberry crisps"}
	if !reflect.DeepEqual(res.KeywordsIncluded, wantKept) {
		t.Errorf("KeywordsIncluded = %v, want %v", res.KeywordsIncluded, wantKept)
	}
	wantRemoved := []string{"strawberry slices bulk", "dried strawberry snack"}
	if !reflect.DeepEqual(res.Removed, wantRemoved) {
		t.Errorf("Removed = %v, want %v", res.Removed, wantRemoved)
	}
	if res.Content != "Freeze Dried Strawberry Slices - Freeze Strawberry Crisps" {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestReconcileKeepsKeywordsAddingTwoTokens(t *testing.T) {
	draft := "Freeze Dried Strawberry Slices, Organic Strawberry Snack Pack, Strawberry Slices"
	claimed := []string{"freeze dried strawberry slices", "organic strawberry snack pack", "strawberry slices"}
	res := newReconciler(t, Options{}).Reconcile(draft, claimed, nil)

	want := []string{"freeze dried strawberry slices", "organic strawberry snack pack"}
	if !reflect.DeepEqual(res.KeywordsIncluded, want) {
		t.Errorf("KeywordsIncluded = %v, want %v", res.KeywordsIncluded, want)
	}
	if res.Content != "Freeze Dried Strawberry Slices, Organic Strawberry Snack Pack" {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestReconcileNoDuplicatesIsUnchanged(t *testing.T) {
	draft := "Freeze-Dried Strawberry Slices,  Crunchy Snack"
	claimed := []string{"freeze dried strawberry slices"}
	res := newReconciler(t, Options{MinLen: 10, MaxLen: 200}).Reconcile(draft, claimed, nil)

	if res.Content != draft {
		t.Errorf("content should be untouched, got %q", res.Content)
	}
	if res.Outcome != OutcomeUnchanged || res.Truncated {
		t.Errorf("Outcome = %v, Truncated = %v", res.Outcome, res.Truncated)
	}
	if !reflect.DeepEqual(res.KeywordsIncluded, claimed) {
		t.Errorf("KeywordsIncluded = %v", res.KeywordsIncluded)
	}
}

func TestReconcileIgnoresStopwordRepeats(t *testing.T) {
	draft := "Strawberry Snacks for Kids and for Adults"
	claimed := []string{"strawberry snacks for kids", "snacks for adults"}

	withStops := newReconciler(t, Options{Stoplist: stoplist.Default()}).Reconcile(draft, claimed, nil)
	if withStops.Outcome != OutcomeUnchanged {
		t.Errorf("stopword repeats should not trigger repair, got %v", withStops.Outcome)
	}

	withoutStops := newReconciler(t, Options{}).Reconcile(draft, claimed, nil)
	if len(withoutStops.Duplicates) == 0 {
		t.Error("without a stoplist 'for' is a duplicate token")
	}
}

func TestReconcileFallsBackToRedundantCopies(t *testing.T) {
	res := newReconciler(t, Options{}).Reconcile("Strawberry Slices, Organic Strawberry",
		[]string{"organic strawberry slices", "strawberry slices"}, nil)

	if res.Content != "Strawberry Slices, Organic" {
		t.Errorf("Content = %q", res.Content)
	}
	if !reflect.DeepEqual(res.RemovedTokens, []string{"strawberry"}) {
		t.Errorf("RemovedTokens = %v", res.RemovedTokens)
	}
}

func TestReconcileFoldsIrregularPlurals(t *testing.T) {
	r := newReconciler(t, Options{})
	res := r.Reconcile("Oatmeal Cookie Cookies Gift Box",
		[]string{"oatmeal cookie gift box", "cookies"}, nil)

	if res.Content != "Oatmeal Cookie Gift Box" {
		t.Errorf("Content = %q", res.Content)
	}
	if !reflect.DeepEqual(res.Duplicates, []string{"cookie"}) {
		t.Errorf("Duplicates = %v", res.Duplicates)
	}
	if !reflect.DeepEqual(res.RemovedTokens, []string{"cookie"}) {
		t.Errorf("RemovedTokens = %v", res.RemovedTokens)
	}
	if res.Outcome != OutcomeRepaired {
		t.Errorf("Outcome = %v", res.Outcome)
	}

	res = r.Reconcile("Dried Mango Mangoes Chips", []string{"dried mango chips", "mangoes"}, nil)
	if res.Content != "Dried Mango Chips" {
		t.Errorf("Content = %q", res.Content)
	}
}

func TestReconcileRemovesEveryRepeatOfDiscardedKeyword(t *testing.T) {
	res := newReconciler(t, Options{}).Reconcile("Strawberry Strawberry Strawberry Slices",
		[]string{"strawberry slices", "strawberry"}, nil)

	if res.Content != "Strawberry Slices" {
		t.Errorf("Content = %q", res.Content)
	}
	if !reflect.DeepEqual(res.Removed, []string{"strawberry"}) {
		t.Errorf("Removed = %v", res.Removed)
	}
	if !reflect.DeepEqual(res.RemovedTokens, []string{"strawberry"}) {
		t.Errorf("RemovedTokens = %v", res.RemovedTokens)
	}
}

func pool() []keyword.Record {
	return []keyword.Record{
		keyword.New("strawberry slice", 5000, 1),
		keyword.New("strawberries", 9000, 1),
		keyword.New("freeze dried strawberries", 1000, 1),
		keyword.New("healthy fruit snack for kids", 800, 1),
		keyword.New("bulk pack", 10000, 0.01),
		{Phrase: ""},
	}
}

func TestReconcilePadsToMinLen(t *testing.T) {
	r := newReconciler(t, Options{MinLen: 40, MaxLen: 60})
	res := r.Reconcile("Organic Strawberry Strawberries Slices",
		[]string{"organic strawberry slices", "strawberries"}, pool())

	if res.Content != "Organic Strawberry Slices freeze dried strawberries" {
		t.Errorf("Content = %q", res.Content)
	}
	if !reflect.DeepEqual(res.Added, []string{"freeze dried strawberries"}) {
		t.Errorf("Added = %v", res.Added)
	}
	if res.Outcome != OutcomeRepaired || res.Length != 51 || res.Shortfall != 0 {
		t.Errorf("Outcome = %v, Length = %d, Shortfall = %d", res.Outcome, res.Length, res.Shortfall)
	}
	last := res.KeywordsIncluded[len(res.KeywordsIncluded)-1]
	if last != "freeze dried strawberries" {
		t.Errorf("padding keyword should be included, got %v", res.KeywordsIncluded)
	}
}

func TestReconcileReportsPartial(t *testing.T) {
	r := newReconciler(t, Options{MinLen: 40, MaxLen: 45})
	res := r.Reconcile("Organic Strawberry Strawberries Slices",
		[]string{"organic strawberry slices", "strawberries"}, pool())

	if res.Content != "Organic Strawberry Slices bulk pack" {
		t.Errorf("Content = %q", res.Content)
	}
	if !res.Partial() || res.Shortfall != 5 {
		t.Errorf("expected partial with shortfall 5, got %v / %d", res.Outcome, res.Shortfall)
	}
}

func TestReconcileTruncatesToMaxLen(t *testing.T) {
	draft := "Freeze Dried Strawberry Slices Crunchy Healthy Snack for Kids and Adults"
	res := newReconciler(t, Options{MaxLen: 40}).Reconcile(draft,
		[]string{"freeze dried strawberry slices", "snack for kids"}, nil)

	if res.Content != "Freeze Dried Strawberry Slices Crunchy" {
		t.Errorf("Content = %q", res.Content)
	}
	if !res.Truncated || res.Outcome != OutcomeRepaired {
		t.Errorf("Truncated = %v, Outcome = %v", res.Truncated, res.Outcome)
	}
	if !reflect.DeepEqual(res.KeywordsIncluded, []string{"freeze dried strawberry slices"}) {
		t.Errorf("KeywordsIncluded = %v", res.KeywordsIncluded)
	}
	if !reflect.DeepEqual(res.Removed, []string{"snack for kids"}) {
		t.Errorf("Removed = %v", res.Removed)
	}
}

func TestReconcileLengthBound(t *testing.T) {
	drafts := []string{
		"",
		"Strawberry",
		"Organic Strawberry Strawberries Slices",
		"Freeze Dried Strawberry Slices - Freeze Strawberry Crisps, Dried Strawberry Snack, Strawberry Slices Bulk",
		strings.Repeat("strawberry ", 30),
		"Supercalifragilisticexpialidocious strawberries strawberries",
	}
	claimed := []string{"freeze dried strawberry slices", "strawberries", "strawberry slices bulk", "strawberry"}

	for _, maxLen := range []int{5, 20, 45, 80} {
		r := newReconciler(t, Options{MinLen: maxLen / 2, MaxLen: maxLen})
		for _, d := range drafts {
			res := r.Reconcile(d, claimed, pool())
			if normalize.Len(res.Content) > maxLen {
				t.Errorf("max %d: %q -> %q exceeds bound", maxLen, d, res.Content)
			}
			if res.Length != normalize.Len(res.Content) {
				t.Errorf("Length %d does not match content %q", res.Length, res.Content)
			}
		}
	}
}

// Every kept keyword after the first adds two new tokens, except that a
// second keyword may add one.
func TestReconcileKeepRule(t *testing.T) {
	n := normalize.New()
	draft := "Freeze Dried Strawberry Slices, Organic Strawberry Chips, Strawberry Snack, Dried Fruit Snack Pack, Strawberry"
	claimed := []string{
		"strawberry", "freeze dried strawberry slices", "organic strawberry chips",
		"strawberry snack", "dried fruit snack pack", "organic chips",
	}
	res := newReconciler(t, Options{}).Reconcile(draft, claimed, nil)
	if len(res.KeywordsIncluded) < 2 {
		t.Fatalf("at least two keywords must survive, got %v", res.KeywordsIncluded)
	}

	seen := map[string]bool{}
	for i, kw := range res.KeywordsIncluded {
		fresh := 0
		for _, f := range uniq(n.Forms(kw)) {
			if !seen[f] {
				fresh++
			}
			seen[f] = true
		}
		switch {
		case i == 0:
		case i == 1 && fresh >= 1:
		case fresh >= 2:
		default:
			t.Errorf("keyword %q added only %d new tokens", kw, fresh)
		}
	}
}

func TestOutcomeJSONName(t *testing.T) {
	b, _ := OutcomePartial.MarshalText()
	if string(b) != "partial" {
		t.Errorf("MarshalText = %s", b)
	}
}

package keyword

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
)

// Record is a candidate search phrase from keyword research.
type Record struct {
	Phrase       string
	SearchVolume *int64 // nil when the research source had no estimate
	Relevancy    float64
	Root         string // assigned by the root extractor
}

// New returns a record with a known search volume.
func New(phrase string, volume int64, relevancy float64) Record {
	return Record{Phrase: phrase, SearchVolume: &volume, Relevancy: relevancy}
}

// Volume returns the search volume, or 0 when unknown.
func (r Record) Volume() int64 {
	if r.SearchVolume == nil {
		return 0
	}
	return *r.SearchVolume
}

// HasVolume reports whether the source provided a search volume.
func (r Record) HasVolume() bool {
	return r.SearchVolume != nil
}

// Value ranks records for padding: relevancy × volume.
func (r Record) Value() float64 {
	return r.Relevancy * float64(r.Volume())
}

// Key returns the phrase identity used for de-duplication.
func (r Record) Key() string {
	return normalize.Key(r.Phrase)
}

// Validate checks the record's fields. Negative volumes are rejected,
// never coerced.
func (r Record) Validate() error {
	if len(normalize.Words(r.Phrase)) == 0 {
		return &internalerr.ValidationError{Field: "phrase", Value: r.Phrase, Reason: "phrase has no words"}
	}
	if r.SearchVolume != nil && *r.SearchVolume < 0 {
		return &internalerr.ValidationError{
			Field:  "search_volume",
			Value:  strconv.FormatInt(*r.SearchVolume, 10),
			Reason: "must be non-negative",
		}
	}
	if r.Relevancy < 0 || math.IsNaN(r.Relevancy) || math.IsInf(r.Relevancy, 0) {
		return &internalerr.ValidationError{
			Field:  "relevancy",
			Value:  strconv.FormatFloat(r.Relevancy, 'g', -1, 64),
			Reason: "must be a non-negative number",
		}
	}
	return nil
}

// Validate checks every record and joins the failures.
// The result is nil when all records are valid.
func Validate(records []Record) error {
	var errs []error
	for _, r := range records {
		if err := r.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// TotalVolume sums the volumes of records, counting unknown volumes as 0.
func TotalVolume(records []Record) int64 {
	var total int64
	for _, r := range records {
		total += r.Volume()
	}
	return total
}

// Phrases returns the phrases of records in order.
func Phrases(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Phrase
	}
	return out
}

// ContentUnit is one piece of listing copy, such as the title or a bullet.
type ContentUnit struct {
	Name string
	Text string
}

// Len returns the text length in characters.
func (u ContentUnit) Len() int {
	return normalize.Len(u.Text)
}

// Blank reports whether the unit has no visible text.
func (u ContentUnit) Blank() bool {
	return strings.TrimSpace(u.Text) == ""
}

// Package research loads keyword research exports into keyword records.
//
// Two formats are read: CSV exports from the usual marketplace research
// tools, and JSONL with one record per line. Rows that fail validation are
// reported as *internalerr.ValidationError values carrying the source line.
package research

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
)

// Header aliases, compared after lowercasing and dropping non-alphanumerics.
var (
	phraseHeaders    = []string{"keywordphrase", "keyword", "phrase", "searchterm", "searchterms", "query"}
	volumeHeaders    = []string{"searchvolume", "volume", "monthlysearchvolume", "msv", "searchvol"}
	relevancyHeaders = []string{"relevancy", "relevance", "relevancyscore", "relevancescore"}
)

// Loader reads research files.
type Loader struct {
	// Strict makes any invalid row fail the whole load.
	Strict bool
	Log    *logrus.Entry
}

// Result is the outcome of loading one file.
type Result struct {
	Records []keyword.Record
	// Problems holds one error per rejected row.
	Problems []error
}

// NewLoader creates a loader. A nil logger falls back to the standard one.
func NewLoader(strict bool, log *logrus.Entry) *Loader {
	if log == nil {
		log = logrus.WithField("component", "research")
	}
	return &Loader{Strict: strict, Log: log}
}

// LoadFile reads a .csv, .tsv, .jsonl or .ndjson file.
func (l *Loader) LoadFile(path string) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var res Result
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		res, err = l.ReadCSV(f, ',')
	case ".tsv":
		res, err = l.ReadCSV(f, '\t')
	case ".jsonl", ".ndjson":
		res, err = l.ReadJSONL(f)
	default:
		return Result{}, fmt.Errorf("%w: unsupported research file type %q", internalerr.ErrInvalidInput, ext)
	}
	if err != nil {
		return res, fmt.Errorf("load %s: %w", path, err)
	}

	l.logger().WithFields(logrus.Fields{
		"path":     path,
		"records":  len(res.Records),
		"rejected": len(res.Problems),
	}).Info("loaded keyword research")
	return res, nil
}

// ReadCSV reads a delimited export with a header row.
func (l *Loader) ReadCSV(r io.Reader, comma rune) (Result, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return Result{}, fmt.Errorf("%w: empty research file", internalerr.ErrInvalidInput)
	}
	if err != nil {
		return Result{}, err
	}
	cols := mapColumns(header)
	if cols.phrase < 0 {
		return Result{}, fmt.Errorf("%w: no keyword column in header %v", internalerr.ErrInvalidInput, header)
	}

	var res Result
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				l.reject(&res, &internalerr.ValidationError{Line: perr.Line, Field: "row", Reason: perr.Err.Error()})
				continue
			}
			return res, err
		}
		if blankRow(row) {
			continue
		}
		line, _ := cr.FieldPos(0)
		rec, err := parseRow(row, cols)
		if err == nil {
			err = rec.Validate()
		}
		if err != nil {
			setLine(err, line)
			l.reject(&res, err)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	return res, l.finish(res)
}

type jsonRecord struct {
	Phrase       string   `json:"phrase"`
	Keyword      string   `json:"keyword"`
	SearchVolume *int64   `json:"search_volume"`
	Volume       *int64   `json:"volume"`
	Relevancy    *float64 `json:"relevancy"`
}

// ReadJSONL reads one JSON object per line.
func (l *Loader) ReadJSONL(r io.Reader) (Result, error) {
	var res Result
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		var jr jsonRecord
		if err := json.Unmarshal([]byte(text), &jr); err != nil {
			l.reject(&res, &internalerr.ValidationError{Line: line, Field: "json", Value: abbreviate(text), Reason: err.Error()})
			continue
		}
		rec := keyword.Record{Phrase: jr.Phrase, SearchVolume: jr.SearchVolume}
		if rec.Phrase == "" {
			rec.Phrase = jr.Keyword
		}
		if rec.SearchVolume == nil {
			rec.SearchVolume = jr.Volume
		}
		if jr.Relevancy != nil {
			rec.Relevancy = *jr.Relevancy
		}
		if err := rec.Validate(); err != nil {
			setLine(err, line)
			l.reject(&res, err)
			continue
		}
		res.Records = append(res.Records, rec)
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	return res, l.finish(res)
}

func (l *Loader) reject(res *Result, err error) {
	res.Problems = append(res.Problems, err)
	if !l.Strict {
		l.logger().WithError(err).Warn("skipping keyword row")
	}
}

func (l *Loader) finish(res Result) error {
	if l.Strict && len(res.Problems) > 0 {
		return errors.Join(res.Problems...)
	}
	return nil
}

func (l *Loader) logger() *logrus.Entry {
	if l.Log == nil {
		l.Log = logrus.WithField("component", "research")
	}
	return l.Log
}

type columns struct {
	phrase, volume, relevancy int
}

func mapColumns(header []string) columns {
	cols := columns{phrase: -1, volume: -1, relevancy: -1}
	for _, set := range []struct {
		idx     *int
		aliases []string
	}{
		{&cols.phrase, phraseHeaders},
		{&cols.volume, volumeHeaders},
		{&cols.relevancy, relevancyHeaders},
	} {
	alias:
		for _, alias := range set.aliases {
			for i, h := range header {
				if headerKey(h) == alias {
					*set.idx = i
					break alias
				}
			}
		}
	}
	return cols
}

func headerKey(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseRow(row []string, cols columns) (keyword.Record, error) {
	rec := keyword.Record{Phrase: strings.TrimSpace(field(row, cols.phrase))}

	if raw := field(row, cols.volume); !unknownValue(raw) {
		v, err := strconv.ParseInt(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 10, 64)
		if err != nil {
			return rec, &internalerr.ValidationError{Field: "search_volume", Value: raw, Reason: "not an integer"}
		}
		rec.SearchVolume = &v
	}

	if raw := strings.TrimSpace(field(row, cols.relevancy)); !unknownValue(raw) {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rec, &internalerr.ValidationError{Field: "relevancy", Value: raw, Reason: "not a number"}
		}
		rec.Relevancy = v
	}
	return rec, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

// unknownValue reports the placeholders research tools print for missing
// estimates.
func unknownValue(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "-", "n/a", "na", "null":
		return true
	}
	return false
}

func blankRow(row []string) bool {
	for _, f := range row {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func setLine(err error, line int) {
	var verr *internalerr.ValidationError
	if errors.As(err, &verr) {
		verr.Line = line
	}
}

func abbreviate(s string) string {
	if r := []rune(s); len(r) > 40 {
		return string(r[:40]) + "..."
	}
	return s
}

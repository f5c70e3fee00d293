package keyroot

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/cognicore/keyroot/pkg/keyroot/config"
	"github.com/cognicore/keyroot/pkg/keyroot/internalerr"
	"github.com/cognicore/keyroot/pkg/keyroot/keyword"
	"github.com/cognicore/keyroot/pkg/keyroot/match"
	"github.com/cognicore/keyroot/pkg/keyroot/normalize"
	"github.com/cognicore/keyroot/pkg/keyroot/reconcile"
	"github.com/cognicore/keyroot/pkg/keyroot/roots"
	"github.com/cognicore/keyroot/pkg/keyroot/stoplist"
	"github.com/cognicore/keyroot/pkg/keyroot/store"
	"github.com/cognicore/keyroot/pkg/keyroot/taxonomy"
	"github.com/cognicore/keyroot/pkg/keyroot/volume"
)

// DefaultTopN is the number of priority roots reported when Options.TopN is 0.
const DefaultTopN = 30

// Engine is the keyword analysis facade
type Engine struct {
	matcher    *match.Matcher
	aggregator *volume.Aggregator
	extractor  *roots.Extractor
	reconciler *reconcile.Reconciler
	store      store.Store
	reports    *ReportBuilder
	topN       int
	log        *logrus.Entry
}

// Options configures an Engine. Nil components fall back to the built-in
// defaults; a nil Store disables persistence.
type Options struct {
	Normalizer *normalize.Normalizer
	Stoplist   *stoplist.Manager
	Taxonomy   *taxonomy.Taxonomy
	Match      match.Options
	Reconcile  reconcile.Options
	TopN       int
	Store      store.Store
	Logger     *logrus.Entry
}

// New creates an Engine with the given dependencies
func New(opts Options) (*Engine, error) {
	if opts.Logger == nil {
		opts.Logger = logrus.WithField("component", "engine")
	}
	if opts.Normalizer == nil {
		opts.Normalizer = normalize.New()
	}
	if opts.Stoplist == nil {
		opts.Stoplist = stoplist.Default()
	}
	if opts.TopN < 0 {
		return nil, fmt.Errorf("%w: top N must be non-negative", internalerr.ErrInvalidConfig)
	}
	if opts.TopN == 0 {
		opts.TopN = DefaultTopN
	}
	if opts.Reconcile.Stoplist == nil {
		opts.Reconcile.Stoplist = opts.Stoplist
	}

	m := match.New(opts.Normalizer, opts.Match)
	rec, err := reconcile.New(m, opts.Reconcile)
	if err != nil {
		return nil, err
	}

	return &Engine{
		matcher:    m,
		aggregator: volume.New(m),
		extractor:  roots.NewExtractor(opts.Normalizer, opts.Stoplist, opts.Taxonomy),
		reconciler: rec,
		store:      opts.Store,
		reports:    NewReportBuilder(),
		topN:       opts.TopN,
		log:        opts.Logger,
	}, nil
}

// FromComponents creates an Engine from loaded configuration.
func FromComponents(c *config.Components, st store.Store, log *logrus.Entry) (*Engine, error) {
	return New(Options{
		Normalizer: c.Normalizer,
		Stoplist:   c.Stoplist,
		Taxonomy:   c.Taxonomy,
		Match:      match.Options{MaxDistance: c.Settings.Match.MaxDistance},
		Reconcile: reconcile.Options{
			MinLen:    c.Settings.Reconcile.MinLen,
			MaxLen:    c.Settings.Reconcile.MaxLen,
			Separator: c.Settings.Reconcile.Separator,
		},
		TopN:   c.Settings.Roots.TopN,
		Store:  st,
		Logger: log,
	})
}

// Close closes the report store, if any
func (e *Engine) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

// Matcher returns the engine's content matcher.
func (e *Engine) Matcher() *match.Matcher {
	return e.matcher
}

// Analyze matches records against every unit of a listing, groups the
// records into roots, and saves the report when a store is configured.
// Invalid records fail the whole call.
func (e *Engine) Analyze(ctx context.Context, listing string, units []keyword.ContentUnit, records []keyword.Record) (store.Report, error) {
	if err := keyword.Validate(records); err != nil {
		return store.Report{}, err
	}
	distinct := volume.Distinct(records)

	id, created := e.reports.Next()
	report := store.Report{
		ID:           id,
		Listing:      listing,
		CreatedAt:    created,
		KeywordCount: len(distinct),
		Units:        make([]store.UnitReport, 0, len(units)),
	}

	summaries := make([]volume.Summary, 0, len(units))
	for _, u := range units {
		if err := ctx.Err(); err != nil {
			return store.Report{}, err
		}
		s := e.aggregator.Aggregate(u.Text, distinct)
		summaries = append(summaries, s)
		report.Units = append(report.Units, store.UnitReport{
			Name:    u.Name,
			Length:  u.Len(),
			Volume:  s.TotalVolume,
			Matched: len(s.Matched),
			Results: s.Results,
		})
	}

	merged := volume.Merge(summaries...)
	report.ListingVolume = merged.TotalVolume
	report.Matched = merged.Phrases()

	rr := e.extractor.Extract(records)
	report.Roots = rr.Summaries()
	for _, g := range rr.Priority(e.topN) {
		report.PriorityRoots = append(report.PriorityRoots, g.Root)
	}

	e.log.WithFields(logrus.Fields{
		"report":  report.ID,
		"listing": listing,
		"units":   len(units),
		"matched": len(report.Matched),
		"volume":  report.ListingVolume,
		"roots":   len(report.Roots),
	}).Info("analyzed listing")

	if e.store != nil {
		if err := e.store.SaveReport(ctx, report); err != nil {
			return report, fmt.Errorf("save report: %w", err)
		}
	}
	return report, nil
}

// Roots groups records by root without matching them against any copy.
func (e *Engine) Roots(records []keyword.Record) (roots.Result, error) {
	if err := keyword.Validate(records); err != nil {
		return roots.Result{}, err
	}
	return e.extractor.Extract(records), nil
}

// Reconcile repairs a drafted title, padding from pool when needed.
func (e *Engine) Reconcile(draft string, claimed []string, pool []keyword.Record) (reconcile.Result, error) {
	if err := keyword.Validate(pool); err != nil {
		return reconcile.Result{}, err
	}
	res := e.reconciler.Reconcile(draft, claimed, pool)
	e.log.WithFields(logrus.Fields{
		"outcome": res.Outcome.String(),
		"length":  res.Length,
		"removed": len(res.Removed),
		"added":   len(res.Added),
	}).Debug("reconciled draft")
	return res, nil
}

// Report loads a stored report.
func (e *Engine) Report(ctx context.Context, id string) (store.Report, error) {
	if e.store == nil {
		return store.Report{}, fmt.Errorf("%w: no report store", internalerr.ErrInvalidConfig)
	}
	return e.store.GetReport(ctx, id)
}

// Reports lists stored reports, newest first.
func (e *Engine) Reports(ctx context.Context, listing string, limit int) ([]store.ReportInfo, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: no report store", internalerr.ErrInvalidConfig)
	}
	return e.store.ListReports(ctx, listing, limit)
}

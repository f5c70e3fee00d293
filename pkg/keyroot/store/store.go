package store

import (
	"context"
	"time"

	"github.com/cognicore/keyroot/pkg/keyroot/match"
	"github.com/cognicore/keyroot/pkg/keyroot/roots"
)

// Store persists analysis reports.
type Store interface {
	Close() error

	SaveReport(ctx context.Context, r Report) error
	// GetReport returns internalerr.ErrNotFound for unknown IDs.
	GetReport(ctx context.Context, id string) (Report, error)
	// ListReports returns the newest reports first. An empty listing
	// matches every listing; limit <= 0 means 20.
	ListReports(ctx context.Context, listing string, limit int) ([]ReportInfo, error)
}

// Report is the result of analyzing one listing against a keyword set.
type Report struct {
	ID        string    `json:"id"`
	Listing   string    `json:"listing"`
	CreatedAt time.Time `json:"created_at"`

	KeywordCount int `json:"keyword_count"`
	// ListingVolume counts each keyword once across all units.
	ListingVolume int64           `json:"listing_volume"`
	Matched       []string        `json:"matched"`
	Units         []UnitReport    `json:"units"`
	Roots         []roots.Summary `json:"roots"`
	PriorityRoots []string        `json:"priority_roots"`
}

// UnitReport holds the match results for one content unit.
type UnitReport struct {
	Name    string         `json:"name"`
	Length  int            `json:"length"`
	Volume  int64          `json:"volume"`
	Matched int            `json:"matched"`
	Results []match.Result `json:"results"`
}

// ReportInfo is the listing view of a stored report.
type ReportInfo struct {
	ID            string    `json:"id"`
	Listing       string    `json:"listing"`
	CreatedAt     time.Time `json:"created_at"`
	KeywordCount  int       `json:"keyword_count"`
	ListingVolume int64     `json:"listing_volume"`
}

// Info returns the listing view of r.
func (r Report) Info() ReportInfo {
	return ReportInfo{
		ID:            r.ID,
		Listing:       r.Listing,
		CreatedAt:     r.CreatedAt,
		KeywordCount:  r.KeywordCount,
		ListingVolume: r.ListingVolume,
	}
}

// DefaultListLimit applies when ListReports is called with limit <= 0.
const DefaultListLimit = 20

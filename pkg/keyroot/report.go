package keyroot

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// ReportBuilder issues time-ordered report IDs.
type ReportBuilder struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// NewReportBuilder creates a builder using the wall clock.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Next returns a new report ID and its creation time. IDs from one builder
// sort in creation order even within the same millisecond.
func (b *ReportBuilder) Next() (string, time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	t := b.now().UTC()
	return ulid.MustNew(ulid.Timestamp(t), b.entropy).String(), t
}

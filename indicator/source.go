package indicator

import (
	"context"
	"sync"
)

// Source yields indicators one at a time from a feed.
//
// Next returns ErrSourceDrained when the feed has no further records, or
// the context's error when the caller cancels. Implementations decide
// whether "no further records" means a closed file, an empty queue, or a
// block timeout on a live stream.
//
// Implementations must be safe for concurrent use: worker.Ingest drains a
// single Source from multiple goroutines.
type Source interface {
	// Next returns the next indicator from the feed.
	Next(ctx context.Context) (*Indicator, error)

	// Close releases any resources held by the source.
	Close() error
}

// SliceSource serves a fixed in-memory indicator list. It is the simplest
// Source, useful for tests and for callers that already hold the records.
type SliceSource struct {
	mu         sync.Mutex
	indicators []*Indicator
	pos        int
}

// NewSliceSource creates a source over the given indicators.
func NewSliceSource(indicators ...*Indicator) *SliceSource {
	return &SliceSource{indicators: indicators}
}

// Next returns the next indicator or ErrSourceDrained at the end.
func (s *SliceSource) Next(ctx context.Context) (*Indicator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.indicators) {
		return nil, ErrSourceDrained
	}
	ind := s.indicators[s.pos]
	s.pos++
	return ind, nil
}

// Close is a no-op for slice-backed sources.
func (s *SliceSource) Close() error {
	return nil
}

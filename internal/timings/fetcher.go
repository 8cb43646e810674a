package timings

import (
	"context"
	"time"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

// Fetcher retrieves one day's timings for a location from a remote source.
type Fetcher interface {
	FetchTimings(ctx context.Context, loc model.Location, date time.Time) (*model.TimingsResponse, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, loc model.Location, date time.Time) (*model.TimingsResponse, error)

func (f FetcherFunc) FetchTimings(ctx context.Context, loc model.Location, date time.Time) (*model.TimingsResponse, error) {
	return f(ctx, loc, date)
}

// Recorder receives orchestrator outcomes, typically for metrics.
type Recorder interface {
	RecordCacheHit()
	RecordFetchSuccess(latency time.Duration)
	RecordFetchFailure(reason string)
	RecordIncomplete()
	RecordStaleFallback()
	RecordEmpty()
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit()                  {}
func (nopRecorder) RecordFetchSuccess(time.Duration) {}
func (nopRecorder) RecordFetchFailure(string)        {}
func (nopRecorder) RecordIncomplete()                {}
func (nopRecorder) RecordStaleFallback()             {}
func (nopRecorder) RecordEmpty()                     {}

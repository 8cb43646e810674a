// Package timings resolves a location's prayer timings for today, preferring a
// fresh cached record, then a live fetch, then any stale record.
package timings

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/Nixie-Tech-LLC/athan/internal/clock"
	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

// Source tells where a Result came from.
type Source string

const (
	SourceEmpty      Source = "empty"
	SourceCache      Source = "cache"
	SourceRemote     Source = "remote"
	SourceIncomplete Source = "remote_incomplete"
	SourceStale      Source = "stale"
)

// Result is the outcome of one resolution. TimeZone is only set for data that
// came from a live fetch.
type Result struct {
	Items    model.RawTiming
	TimeZone string
	Source   Source
}

type Manager struct {
	store   Store
	fetcher Fetcher
	clock   clock.Clock
	zone    *time.Location
	rec     Recorder

	group singleflight.Group

	mu         sync.Mutex
	selected   *model.Location
	selCtx     context.Context
	cancel     context.CancelFunc
	current    Result
	hasCurrent bool
}

type Option func(*Manager)

func WithClock(c clock.Clock) Option {
	return func(m *Manager) { m.clock = c }
}

// WithZone sets the calendar used for the same-day freshness check.
func WithZone(z *time.Location) Option {
	return func(m *Manager) {
		if z != nil {
			m.zone = z
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) {
		if r != nil {
			m.rec = r
		}
	}
}

func NewManager(store Store, fetcher Fetcher, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		fetcher: fetcher,
		clock:   clock.System{},
		zone:    time.Local,
		rec:     nopRecorder{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Today resolves timings for loc. Concurrent calls for the same location share
// one resolution. The only error is ctx's own, when the caller stops waiting.
func (m *Manager) Today(ctx context.Context, loc model.Location) (Result, error) {
	return m.coalesced(ctx, context.WithoutCancel(ctx), loc)
}

// Select makes loc the current selection and resolves it. Selecting a
// different location cancels the previous selection's fetch; a result that
// returns after its selection was replaced yields ErrSuperseded.
func (m *Manager) Select(ctx context.Context, loc model.Location) (Result, error) {
	fetchCtx := m.beginSelection(loc)

	res, err := m.coalesced(ctx, fetchCtx, loc)
	if err != nil {
		return Result{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// a newer request owns the selection, even when it chose loc again
	if m.selected == nil || *m.selected != loc || m.selCtx != fetchCtx {
		log.Info().Str("location", loc.ID()).Msg("discarding timings for superseded location")
		return Result{}, ErrSuperseded
	}
	m.current = res
	m.hasCurrent = true
	return res, nil
}

func (m *Manager) beginSelection(loc model.Location) context.Context {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected != nil && *m.selected == loc && m.selCtx != nil && m.selCtx.Err() == nil {
		return m.selCtx
	}
	if m.cancel != nil {
		m.cancel()
	}
	if m.selected != nil {
		// later callers must not join the canceled resolution
		m.group.Forget(m.selected.ID())
	}
	m.selCtx, m.cancel = context.WithCancel(context.Background())
	l := loc
	m.selected = &l
	m.hasCurrent = false
	return m.selCtx
}

// Current returns the last applied selection.
func (m *Manager) Current() (model.Location, Result, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil || !m.hasCurrent {
		return model.Location{}, Result{}, false
	}
	res := m.current
	res.Items = res.Items.Clone()
	return *m.selected, res, true
}

// Selected returns the selected location even if it is still resolving.
func (m *Manager) Selected() (model.Location, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.selected == nil {
		return model.Location{}, false
	}
	return *m.selected, true
}

func (m *Manager) ClearCache(ctx context.Context) error {
	if err := m.store.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear timings cache")
		return err
	}
	log.Info().Msg("timings cache cleared")
	return nil
}

func (m *Manager) coalesced(waitCtx, fetchCtx context.Context, loc model.Location) (Result, error) {
	ch := m.group.DoChan(loc.ID(), func() (interface{}, error) {
		return m.resolve(fetchCtx, loc), nil
	})
	select {
	case r := <-ch:
		res := r.Val.(Result)
		res.Items = res.Items.Clone()
		return res, nil
	case <-waitCtx.Done():
		return Result{}, waitCtx.Err()
	}
}

func (m *Manager) resolve(ctx context.Context, loc model.Location) Result {
	now := m.clock.Now()
	logger := log.With().Str("location", loc.ID()).Logger()

	cached, err := m.store.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load cached timings")
	}
	if cached != nil && cached.IsFresh(loc, now, m.zone) {
		m.rec.RecordCacheHit()
		logger.Debug().Msg("using cached timings")
		return Result{Items: cached.Items, Source: SourceCache}
	}

	start := time.Now()
	resp, err := m.fetcher.FetchTimings(ctx, loc, now)
	if err != nil {
		reason := failureReason(err)
		m.rec.RecordFetchFailure(reason)
		logger.Warn().Err(err).Str("reason", reason).Msg("timings fetch failed, falling back to stored timings")
		return m.fallback(context.WithoutCancel(ctx), loc)
	}
	if resp == nil {
		m.rec.RecordFetchFailure("empty_response")
		logger.Warn().Msg("timings fetch returned no data, falling back to stored timings")
		return m.fallback(context.WithoutCancel(ctx), loc)
	}

	if !resp.Items.HasAll() {
		m.rec.RecordIncomplete()
		logger.Warn().Int("entries", len(resp.Items)).Msg("fetched timings are incomplete, not caching")
		return Result{Items: resp.Items, TimeZone: resp.TimeZone, Source: SourceIncomplete}
	}

	m.rec.RecordFetchSuccess(time.Since(start))
	if ctx.Err() != nil {
		logger.Info().Msg("fetch finished after cancellation, not caching")
		return Result{Items: resp.Items, TimeZone: resp.TimeZone, Source: SourceRemote}
	}

	stored := model.StoredTimings{Location: loc, Items: resp.Items.Clone(), LastUpdated: now}
	if err := m.store.Save(ctx, stored); err != nil {
		logger.Error().Err(err).Msg("failed to cache fetched timings")
	}
	return Result{Items: resp.Items, TimeZone: resp.TimeZone, Source: SourceRemote}
}

// fallback returns whatever record is stored, regardless of location or age.
func (m *Manager) fallback(ctx context.Context, loc model.Location) Result {
	stale, err := m.store.Load(ctx)
	if err != nil {
		log.Warn().Err(err).Str("location", loc.ID()).Msg("failed to load stale timings")
	}
	if stale == nil {
		m.rec.RecordEmpty()
		return Result{Items: model.RawTiming{}, Source: SourceEmpty}
	}
	m.rec.RecordStaleFallback()
	return Result{Items: stale.Items, Source: SourceStale}
}

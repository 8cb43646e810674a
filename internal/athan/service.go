// Package athan ties timings resolution, evaluation and alert scheduling
// together for the currently selected location.
package athan

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/alerts"
	"github.com/Nixie-Tech-LLC/athan/internal/clock"
	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/notify"
	"github.com/Nixie-Tech-LLC/athan/internal/schedule"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

var ErrNoSelection = errors.New("no location selected")

const (
	DefaultTick        = 30 * time.Second
	DefaultRefreshCron = "1 0 * * *"
)

// StatePublisher pushes the current state to paired screens.
type StatePublisher interface {
	PublishState(ctx context.Context, st alerts.State) error
}

// Snapshot is the selected location's day evaluated at one instant.
type Snapshot struct {
	Location   model.Location   `json:"location"`
	TimeZone   string           `json:"time_zone"`
	Source     timings.Source   `json:"source"`
	Prayers    []model.Prayer   `json:"prayers"`
	Evaluation model.Evaluation `json:"evaluation"`
	At         time.Time        `json:"at"`
}

type selection struct {
	loc      model.Location
	result   timings.Result
	zone     *time.Location
	schedule schedule.Schedule
	day      string
}

type Options struct {
	Clock       clock.Clock
	LocalZone   *time.Location
	Default     *model.Location
	Publisher   StatePublisher
	Tick        time.Duration
	RefreshCron string
}

type Service struct {
	manager   *timings.Manager
	notifier  *notify.Notifier
	publisher StatePublisher
	clock     clock.Clock
	local     *time.Location
	def       *model.Location
	tick      time.Duration
	refresh   string

	mu            sync.RWMutex
	current       *selection
	lastPublished *model.Evaluation
}

func NewService(manager *timings.Manager, notifier *notify.Notifier, opts Options) *Service {
	s := &Service{
		manager:   manager,
		notifier:  notifier,
		publisher: opts.Publisher,
		clock:     opts.Clock,
		local:     opts.LocalZone,
		def:       opts.Default,
		tick:      opts.Tick,
		refresh:   opts.RefreshCron,
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	if s.local == nil {
		s.local = time.Local
	}
	if s.tick <= 0 {
		s.tick = DefaultTick
	}
	if s.refresh == "" {
		s.refresh = DefaultRefreshCron
	}
	return s
}

// SelectLocation resolves loc's timings and makes it the current selection.
// Alerts are reinstalled only when the resolved day differs from the one
// already selected.
func (s *Service) SelectLocation(ctx context.Context, loc model.Location) (Snapshot, error) {
	res, err := s.manager.Select(ctx, loc)
	if err != nil {
		return Snapshot{}, err
	}

	s.mu.RLock()
	prev := s.current
	s.mu.RUnlock()

	now := s.clock.Now()
	zone := s.zoneFor(res.TimeZone)
	if res.TimeZone == "" && prev != nil && prev.loc == loc {
		// cache hits carry no zone; keep the one last fetched for loc
		zone = prev.zone
	}
	sel := &selection{
		loc:      loc,
		result:   res,
		zone:     zone,
		schedule: schedule.Build(res.Items, zone, now),
		day:      dayKey(now, zone),
	}
	changed := !sel.sameDay(prev)

	s.mu.Lock()
	if cur, ok := s.manager.Selected(); !ok || cur != loc {
		s.mu.Unlock()
		return Snapshot{}, timings.ErrSuperseded
	}
	s.current = sel
	if changed {
		s.lastPublished = nil
	}
	s.mu.Unlock()

	log.Info().
		Str("location", loc.DisplayName()).
		Str("source", string(res.Source)).
		Str("zone", zone.String()).
		Bool("changed", changed).
		Msg("location selected")

	if changed && s.notifier != nil {
		s.notifier.Rebuild(ctx, sel.schedule, now)
	}
	return snapshotOf(sel, now), nil
}

// sameDay reports whether prev resolves to the same schedule as sel.
func (sel *selection) sameDay(prev *selection) bool {
	return prev != nil &&
		prev.loc == sel.loc &&
		prev.day == sel.day &&
		prev.zone.String() == sel.zone.String() &&
		maps.Equal(prev.result.Items, sel.result.Items)
}

// zoneFor loads the fetched timezone, falling back to the local zone when it
// is missing or unknown.
func (s *Service) zoneFor(name string) *time.Location {
	if name == "" {
		return s.local
	}
	zone, err := time.LoadLocation(name)
	if err != nil {
		log.Warn().Err(err).Str("zone", name).Msg("unknown timezone, using local zone")
		return s.local
	}
	return zone
}

// Snapshot evaluates the current selection at now.
func (s *Service) Snapshot(now time.Time) (Snapshot, error) {
	s.mu.RLock()
	sel := s.current
	s.mu.RUnlock()
	if sel == nil {
		return Snapshot{}, ErrNoSelection
	}
	return snapshotOf(sel, now), nil
}

func snapshotOf(sel *selection, now time.Time) Snapshot {
	return Snapshot{
		Location:   sel.loc,
		TimeZone:   sel.zone.String(),
		Source:     sel.result.Source,
		Prayers:    model.PrayersFrom(sel.result.Items),
		Evaluation: schedule.Evaluate(now, sel.schedule),
		At:         now,
	}
}

// Notifications lists the alerts a rebuild would install at now.
func (s *Service) Notifications(now time.Time) ([]model.NotificationTrigger, error) {
	s.mu.RLock()
	sel := s.current
	s.mu.RUnlock()
	if sel == nil {
		return nil, ErrNoSelection
	}
	return notify.BuildTriggers(sel.schedule, now), nil
}

// RebuildNotifications reinstalls the current selection's alerts.
func (s *Service) RebuildNotifications(ctx context.Context) (notify.Report, error) {
	s.mu.RLock()
	sel := s.current
	s.mu.RUnlock()
	if sel == nil {
		return notify.Report{}, ErrNoSelection
	}
	if s.notifier == nil {
		return notify.Report{}, nil
	}
	return s.notifier.Rebuild(ctx, sel.schedule, s.clock.Now()), nil
}

// Refresh re-resolves the selected location, or the default one when nothing
// was selected yet.
func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	loc, ok := s.manager.Selected()
	if !ok {
		if s.def == nil {
			return Snapshot{}, ErrNoSelection
		}
		loc = *s.def
	}
	return s.SelectLocation(ctx, loc)
}

func (s *Service) ClearCache(ctx context.Context) error {
	return s.manager.ClearCache(ctx)
}

// Tick evaluates at the clock's instant and publishes the state when it
// changed since the last publish. A calendar day change triggers a refresh.
func (s *Service) Tick(ctx context.Context) error {
	now := s.clock.Now()

	s.mu.RLock()
	sel := s.current
	s.mu.RUnlock()
	if sel == nil {
		return ErrNoSelection
	}
	if dayKey(now, sel.zone) != sel.day {
		if _, err := s.Refresh(ctx); err != nil {
			return fmt.Errorf("day rollover refresh: %w", err)
		}
	}

	snap, err := s.Snapshot(now)
	if err != nil {
		return err
	}

	s.mu.Lock()
	changed := s.lastPublished == nil || *s.lastPublished != snap.Evaluation
	s.mu.Unlock()
	if !changed || s.publisher == nil {
		return nil
	}

	st := alerts.State{
		Location:   snap.Location.DisplayName(),
		Evaluation: snap.Evaluation,
		Prayers:    snap.Prayers,
		At:         now,
	}
	if err := s.publisher.PublishState(ctx, st); err != nil {
		return fmt.Errorf("publish state: %w", err)
	}

	s.mu.Lock()
	ev := snap.Evaluation
	s.lastPublished = &ev
	s.mu.Unlock()
	return nil
}

// Run drives ticks and the daily refresh until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(s.local))
	if _, err := c.AddFunc(s.refresh, func() {
		if _, err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrNoSelection) {
			log.Error().Err(err).Msg("scheduled refresh failed")
		}
	}); err != nil {
		return fmt.Errorf("invalid refresh schedule %q: %w", s.refresh, err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	log.Info().Dur("tick", s.tick).Str("refresh", s.refresh).Msg("athan loop started")
	for range clock.Ticks(ctx, s.clock, s.tick) {
		if err := s.Tick(ctx); err != nil && !errors.Is(err, ErrNoSelection) && ctx.Err() == nil {
			log.Error().Err(err).Msg("tick failed")
		}
	}
	log.Info().Msg("athan loop stopped")
	return nil
}

func dayKey(t time.Time, zone *time.Location) string {
	return t.In(zone).Format("2006-01-02")
}

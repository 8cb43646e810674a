// Package schedule turns a day's "HH:mm" timings into absolute instants and
// evaluates which prayer is current, highlighted and next at a given instant.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

// Schedule holds today's anchors in one zone. It is never mutated after Build.
type Schedule struct {
	zone  *time.Location
	items map[model.PrayerName]time.Time
}

// Build anchors every well-formed entry of raw to the calendar day of now in
// zone (the system zone when nil). Malformed entries are left out.
func Build(raw model.RawTiming, zone *time.Location, now time.Time) Schedule {
	if zone == nil {
		zone = time.Local
	}
	y, m, d := now.In(zone).Date()

	items := make(map[model.PrayerName]time.Time, len(model.Prayers))
	for _, p := range model.Prayers {
		s, ok := raw[p]
		if !ok {
			continue
		}
		hour, minute, ok := parseClock(s)
		if !ok {
			continue
		}
		items[p] = time.Date(y, m, d, hour, minute, 0, 0, zone)
	}
	return Schedule{zone: zone, items: items}
}

// parseClock accepts "H:mm"-like strings of one or two digits per field.
// Ranges are not checked; time.Date normalizes overflow.
func parseClock(s string) (int, int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, false
	}
	hour, ok := parseField(parts[0])
	if !ok {
		return 0, 0, false
	}
	minute, ok := parseField(parts[1])
	if !ok {
		return 0, 0, false
	}
	return hour, minute, true
}

// parseField takes one or two ASCII digits, so "5:3" reads as 05:03.
func parseField(s string) (int, bool) {
	if len(s) == 0 || len(s) > 2 {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// At returns the instant of p, or false when the entry is missing.
func (s Schedule) At(p model.PrayerName) (time.Time, bool) {
	t, ok := s.items[p]
	return t, ok
}

func (s Schedule) Zone() *time.Location {
	if s.zone == nil {
		return time.Local
	}
	return s.zone
}

func (s Schedule) Len() int { return len(s.items) }

// Complete reports whether all six anchors resolved.
func (s Schedule) Complete() bool {
	for _, p := range model.Prayers {
		if _, ok := s.items[p]; !ok {
			return false
		}
	}
	return true
}

// NoonOf is 12:00:00 on t's calendar day in the schedule zone.
func (s Schedule) NoonOf(t time.Time) time.Time {
	zone := s.Zone()
	y, m, d := t.In(zone).Date()
	return time.Date(y, m, d, 12, 0, 0, 0, zone)
}

// NextDay is the same wall-clock time one calendar day after t, so it stays
// correct across DST changes.
func (s Schedule) NextDay(t time.Time) time.Time {
	return t.In(s.Zone()).AddDate(0, 0, 1)
}

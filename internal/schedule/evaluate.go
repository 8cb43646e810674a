package schedule

import (
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

// SunriseWindow is how long after Sunrise the Sunrise state lasts.
const SunriseWindow = 20 * time.Minute

// Anchors are the resolved instants one evaluation works from.
type Anchors struct {
	Fajr, Sunrise, Dhuhr, Asr, Maghrib, Isha time.Time

	SunriseEnd time.Time
	Noon       time.Time
	NextFajr   time.Time
}

// Degraded is returned whenever an anchor is missing.
var Degraded = model.Evaluation{
	Background:  model.Sunrise,
	Visual:      model.Sunrise,
	Highlighted: model.None,
	Next:        model.Dhuhr,
	Remaining:   "",
}

// AnchorsAt resolves the six anchors and derived bounds for now. It returns
// false if the schedule is incomplete.
func AnchorsAt(now time.Time, s Schedule) (Anchors, bool) {
	var a Anchors
	targets := map[model.PrayerName]*time.Time{
		model.Fajr:    &a.Fajr,
		model.Sunrise: &a.Sunrise,
		model.Dhuhr:   &a.Dhuhr,
		model.Asr:     &a.Asr,
		model.Maghrib: &a.Maghrib,
		model.Isha:    &a.Isha,
	}
	for p, dst := range targets {
		t, ok := s.At(p)
		if !ok {
			return Anchors{}, false
		}
		*dst = t
	}
	a.SunriseEnd = a.Sunrise.Add(SunriseWindow)
	a.Noon = s.NoonOf(now)
	a.NextFajr = s.NextDay(a.Fajr)
	return a, true
}

// Evaluate maps an instant and a schedule to the current/next state.
func Evaluate(now time.Time, s Schedule) model.Evaluation {
	a, ok := AnchorsAt(now, s)
	if !ok {
		return Degraded
	}

	visual := Visual(now, a)
	next, at := NextPrayer(now, a, visual)
	remaining := ""
	if next != model.None {
		remaining = RemainingText(at.Sub(now))
	}

	return model.Evaluation{
		Background:  Background(now, a),
		Visual:      visual,
		Highlighted: Highlight(now, a),
		Next:        next,
		Remaining:   remaining,
	}
}

// within reports start <= t < end.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// Highlight picks the list row to emphasize. Between sunriseEnd and Dhuhr, and
// from noon until tomorrow's Fajr, nothing is highlighted; the second gap
// starts at noon, not at the end of Isha.
func Highlight(now time.Time, a Anchors) model.PrayerName {
	switch {
	case within(now, a.Sunrise, a.SunriseEnd):
		return model.Sunrise
	case within(now, a.SunriseEnd, a.Dhuhr), within(now, a.Noon, a.NextFajr):
		return model.None
	case within(now, a.Fajr, a.Sunrise):
		return model.Fajr
	case within(now, a.Dhuhr, a.Asr):
		return model.Dhuhr
	case within(now, a.Asr, a.Maghrib):
		return model.Asr
	case within(now, a.Maghrib, a.Isha):
		return model.Maghrib
	case within(now, a.Isha, a.Noon):
		return model.Isha
	default:
		return model.None
	}
}

// Visual picks the prayer for the center symbol. Anything unmatched,
// including the gap after sunriseEnd and before Dhuhr, falls back to Isha.
func Visual(now time.Time, a Anchors) model.PrayerName {
	switch {
	case within(now, a.Sunrise, a.SunriseEnd):
		return model.Sunrise
	case within(now, a.Fajr, a.Sunrise):
		return model.Fajr
	case within(now, a.Dhuhr, a.Asr):
		return model.Dhuhr
	case within(now, a.Asr, a.Maghrib):
		return model.Asr
	case within(now, a.Maghrib, a.Isha):
		return model.Maghrib
	default:
		return model.Isha
	}
}

// Background is Visual except that [sunriseEnd, Dhuhr) already shows Dhuhr.
func Background(now time.Time, a Anchors) model.PrayerName {
	if within(now, a.Sunrise, a.SunriseEnd) {
		return model.Sunrise
	}
	if within(now, a.SunriseEnd, a.Dhuhr) {
		return model.Dhuhr
	}
	return Visual(now, a)
}

// NextPrayer finds the next anchor strictly after now. During the Sunrise
// state the next prayer is always Dhuhr.
func NextPrayer(now time.Time, a Anchors, visual model.PrayerName) (model.PrayerName, time.Time) {
	if visual == model.Sunrise {
		return model.Dhuhr, a.Dhuhr
	}
	cycle := []struct {
		name model.PrayerName
		at   time.Time
	}{
		{model.Fajr, a.Fajr},
		{model.Sunrise, a.Sunrise},
		{model.Dhuhr, a.Dhuhr},
		{model.Asr, a.Asr},
		{model.Maghrib, a.Maghrib},
		{model.Isha, a.Isha},
		{model.Fajr, a.NextFajr},
	}
	for _, c := range cycle {
		if c.at.After(now) {
			return c.name, c.at
		}
	}
	return model.None, time.Time{}
}

// RemainingText renders whole hours and minutes of d.
func RemainingText(d time.Duration) string {
	h := int(d / time.Hour)
	m := int((d % time.Hour) / time.Minute)
	switch {
	case h <= 0:
		return fmt.Sprintf("in %d minutes", m)
	case m == 0:
		return fmt.Sprintf("in %d hours", h)
	default:
		return fmt.Sprintf("in %d hours %d minutes", h, m)
	}
}

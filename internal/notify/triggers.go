// Package notify turns a day's schedule into future alerts and installs them
// through an AlertScheduler.
package notify

import (
	"fmt"
	"time"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/schedule"
)

// TriggerID is stable for a prayer on a calendar day, so rebuilding the same
// day twice yields the same identifiers.
func TriggerID(p model.PrayerName, at time.Time) string {
	y, m, d := at.Date()
	return fmt.Sprintf("prayer.%s.%d-%d-%d", p, y, int(m), d)
}

func content(p model.PrayerName) (title, body string) {
	if p == model.Sunrise {
		return "Sunrise", "It's sunrise time."
	}
	return fmt.Sprintf("%s time", p), fmt.Sprintf("It's time for %s.", p)
}

// BuildTriggers returns one trigger per anchor strictly after now, in
// canonical order. Passed anchors get no catch-up alert.
func BuildTriggers(s schedule.Schedule, now time.Time) []model.NotificationTrigger {
	out := make([]model.NotificationTrigger, 0, len(model.Prayers))
	for _, p := range model.Prayers {
		at, ok := s.At(p)
		if !ok || !at.After(now) {
			continue
		}
		title, body := content(p)
		out = append(out, model.NotificationTrigger{
			ID:     TriggerID(p, at),
			Prayer: p,
			FireAt: at,
			Title:  title,
			Body:   body,
		})
	}
	return out
}

package endpoints

import (
	"time"

	"github.com/Nixie-Tech-LLC/athan/internal/athan"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api/athan/packets"
	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

func prayerName(p model.PrayerName) string {
	if p == model.None {
		return ""
	}
	return p.String()
}

func SnapshotResponse(s athan.Snapshot) packets.SnapshotResponse {
	prayers := make([]packets.PrayerResponse, 0, len(s.Prayers))
	for _, p := range s.Prayers {
		prayers = append(prayers, packets.PrayerResponse{Name: p.Name.String(), Time: p.Time})
	}
	return packets.SnapshotResponse{
		Location: packets.LocationResponse{
			Name:        s.Location.Name,
			Admin:       s.Location.Admin,
			Country:     s.Location.Country,
			Latitude:    s.Location.Latitude,
			Longitude:   s.Location.Longitude,
			DisplayName: s.Location.DisplayName(),
		},
		TimeZone: s.TimeZone,
		Source:   string(s.Source),
		Prayers:  prayers,
		Evaluation: packets.EvaluationResponse{
			Background:  prayerName(s.Evaluation.Background),
			Visual:      prayerName(s.Evaluation.Visual),
			Highlighted: prayerName(s.Evaluation.Highlighted),
			Next:        prayerName(s.Evaluation.Next),
			Remaining:   s.Evaluation.Remaining,
		},
		At: s.At.Format(time.RFC3339),
	}
}

func TriggerResponses(triggers []model.NotificationTrigger) []packets.TriggerResponse {
	out := make([]packets.TriggerResponse, 0, len(triggers))
	for _, t := range triggers {
		out = append(out, packets.TriggerResponse{
			ID:     t.ID,
			Prayer: t.Prayer.String(),
			FireAt: t.FireAt.Format(time.RFC3339),
			Title:  t.Title,
			Body:   t.Body,
		})
	}
	return out
}

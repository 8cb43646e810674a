package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/schedule"
)

// AlertScheduler installs alerts on a device.
type AlertScheduler interface {
	CancelAll(ctx context.Context) error
	Install(ctx context.Context, t model.NotificationTrigger) error
}

// Report summarizes one rebuild.
type Report struct {
	Triggers  []model.NotificationTrigger
	Installed int
	Failed    int
}

// InstallRecorder is told how many installs succeeded and failed.
type InstallRecorder interface {
	RecordAlertInstalls(installed, failed int)
}

type Notifier struct {
	alerts   AlertScheduler
	recorder InstallRecorder
}

func NewNotifier(alerts AlertScheduler, recorder InstallRecorder) *Notifier {
	return &Notifier{alerts: alerts, recorder: recorder}
}

// Rebuild clears every installed alert, then installs the schedule's future
// triggers. A failed install is logged and skipped.
func (n *Notifier) Rebuild(ctx context.Context, s schedule.Schedule, now time.Time) Report {
	if err := n.alerts.CancelAll(ctx); err != nil {
		log.Error().Err(err).Msg("failed to cancel installed alerts")
	}

	report := Report{Triggers: BuildTriggers(s, now)}
	for _, t := range report.Triggers {
		if err := n.alerts.Install(ctx, t); err != nil {
			report.Failed++
			log.Error().Err(err).Str("trigger", t.ID).Time("fire_at", t.FireAt).Msg("failed to install alert")
			continue
		}
		report.Installed++
	}

	if n.recorder != nil {
		n.recorder.RecordAlertInstalls(report.Installed, report.Failed)
	}
	log.Info().Int("installed", report.Installed).Int("failed", report.Failed).Msg("alerts rebuilt")
	return report
}

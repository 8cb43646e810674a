package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/schedule"
)

var day = time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

func at(hour, minute int) time.Time {
	return time.Date(2025, 1, 15, hour, minute, 0, 0, time.UTC)
}

func sampleSchedule() schedule.Schedule {
	return schedule.Build(model.RawTiming{
		model.Fajr:    "06:00",
		model.Sunrise: "07:10",
		model.Dhuhr:   "12:35",
		model.Asr:     "15:36",
		model.Maghrib: "17:59",
		model.Isha:    "19:10",
	}, time.UTC, day)
}

type fakeAlerts struct {
	mu        sync.Mutex
	calls     []string
	installed map[string]model.NotificationTrigger
	failIDs   map[string]bool
	cancelErr error
}

func newFakeAlerts() *fakeAlerts {
	return &fakeAlerts{installed: map[string]model.NotificationTrigger{}, failIDs: map[string]bool{}}
}

func (f *fakeAlerts) CancelAll(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "cancel")
	f.installed = map[string]model.NotificationTrigger{}
	return f.cancelErr
}

func (f *fakeAlerts) Install(ctx context.Context, t model.NotificationTrigger) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "install:"+t.ID)
	if f.failIDs[t.ID] {
		return errors.New("device rejected alert")
	}
	f.installed[t.ID] = t
	return nil
}

func (f *fakeAlerts) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.installed))
	for _, p := range model.Prayers {
		for id, t := range f.installed {
			if t.Prayer == p {
				out = append(out, id)
			}
		}
	}
	return out
}

type countRecorder struct{ installed, failed int }

func (c *countRecorder) RecordAlertInstalls(installed, failed int) {
	c.installed += installed
	c.failed += failed
}

func TestBuildTriggersOnlyFutureInCanonicalOrder(t *testing.T) {
	triggers := BuildTriggers(sampleSchedule(), at(12, 35))

	require.Len(t, triggers, 3)
	assert.Equal(t, model.Asr, triggers[0].Prayer)
	assert.Equal(t, model.Maghrib, triggers[1].Prayer)
	assert.Equal(t, model.Isha, triggers[2].Prayer)

	assert.Equal(t, "prayer.Asr.2025-1-15", triggers[0].ID)
	assert.Equal(t, at(15, 36), triggers[0].FireAt)
	assert.Equal(t, "Asr time", triggers[0].Title)
	assert.Equal(t, "It's time for Asr.", triggers[0].Body)
}

func TestBuildTriggersSunriseContent(t *testing.T) {
	triggers := BuildTriggers(sampleSchedule(), at(6, 30))
	require.NotEmpty(t, triggers)
	assert.Equal(t, model.Sunrise, triggers[0].Prayer)
	assert.Equal(t, "Sunrise", triggers[0].Title)
	assert.Equal(t, "It's sunrise time.", triggers[0].Body)
}

func TestBuildTriggersAllPassed(t *testing.T) {
	assert.Empty(t, BuildTriggers(sampleSchedule(), at(23, 0)))
}

func TestBuildTriggersSkipsMissingEntries(t *testing.T) {
	s := schedule.Build(model.RawTiming{model.Fajr: "06:00", model.Isha: "bad"}, time.UTC, day)
	triggers := BuildTriggers(s, at(0, 0))
	require.Len(t, triggers, 1)
	assert.Equal(t, model.Fajr, triggers[0].Prayer)
}

func TestTriggerIDDiffersByDay(t *testing.T) {
	a := TriggerID(model.Fajr, at(6, 0))
	b := TriggerID(model.Fajr, at(6, 0).AddDate(0, 0, 1))
	assert.Equal(t, "prayer.Fajr.2025-1-15", a)
	assert.Equal(t, "prayer.Fajr.2025-1-16", b)
}

func TestRebuildIsIdempotent(t *testing.T) {
	alerts := newFakeAlerts()
	rec := &countRecorder{}
	n := NewNotifier(alerts, rec)

	first := n.Rebuild(context.Background(), sampleSchedule(), at(5, 0))
	firstIDs := alerts.ids()
	second := n.Rebuild(context.Background(), sampleSchedule(), at(5, 0))
	secondIDs := alerts.ids()

	assert.Equal(t, 6, first.Installed)
	assert.Equal(t, firstIDs, secondIDs)
	assert.Len(t, secondIDs, 6)
	assert.Equal(t, first.Triggers, second.Triggers)
	assert.Equal(t, 12, rec.installed)

	// every batch starts with a cancel
	require.Len(t, alerts.calls, 14)
	assert.Equal(t, "cancel", alerts.calls[0])
	assert.Equal(t, "cancel", alerts.calls[7])
}

func TestRebuildContinuesPastFailedInstall(t *testing.T) {
	alerts := newFakeAlerts()
	alerts.failIDs["prayer.Dhuhr.2025-1-15"] = true
	rec := &countRecorder{}

	report := NewNotifier(alerts, rec).Rebuild(context.Background(), sampleSchedule(), at(7, 0))

	assert.Equal(t, 4, report.Installed)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, rec.failed)
	assert.NotContains(t, alerts.ids(), "prayer.Dhuhr.2025-1-15")
	assert.Contains(t, alerts.ids(), "prayer.Isha.2025-1-15")
}

func TestRebuildInstallsEvenIfCancelFails(t *testing.T) {
	alerts := newFakeAlerts()
	alerts.cancelErr = errors.New("broker unavailable")

	report := NewNotifier(alerts, nil).Rebuild(context.Background(), sampleSchedule(), at(18, 0))
	assert.Equal(t, 1, report.Installed)
	assert.Equal(t, []string{"cancel", "install:prayer.Isha.2025-1-15"}, alerts.calls)
}

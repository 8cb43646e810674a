package endpoints

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/athan/internal/athan"
	"github.com/Nixie-Tech-LLC/athan/internal/clock"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api/athan/packets"
	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

var now = time.Date(2025, 1, 15, 7, 15, 0, 0, time.UTC)

type fakeService struct {
	selected  model.Location
	selectErr error
	snapAt    time.Time
	snapErr   error
	triggers  []model.NotificationTrigger
}

func (f *fakeService) snapshot(at time.Time) athan.Snapshot {
	return athan.Snapshot{
		Location: f.selected,
		TimeZone: "UTC",
		Source:   timings.SourceRemote,
		Prayers:  model.PrayersFrom(model.RawTiming{model.Fajr: "06:00", model.Sunrise: "07:10"}),
		Evaluation: model.Evaluation{
			Background: model.Sunrise, Visual: model.Sunrise, Highlighted: model.Sunrise,
			Next: model.Dhuhr, Remaining: "in 5 hours 20 minutes",
		},
		At: at,
	}
}

func (f *fakeService) SelectLocation(ctx context.Context, loc model.Location) (athan.Snapshot, error) {
	if f.selectErr != nil {
		return athan.Snapshot{}, f.selectErr
	}
	f.selected = loc
	return f.snapshot(now), nil
}

func (f *fakeService) Snapshot(at time.Time) (athan.Snapshot, error) {
	if f.snapErr != nil {
		return athan.Snapshot{}, f.snapErr
	}
	f.snapAt = at
	return f.snapshot(at), nil
}

func (f *fakeService) Notifications(at time.Time) ([]model.NotificationTrigger, error) {
	if f.snapErr != nil {
		return nil, f.snapErr
	}
	return f.triggers, nil
}

func router(svc Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/athan"}, AthanModule(svc, clock.NewFixed(now)))
	return r
}

func do(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestTodaySelectsLocation(t *testing.T) {
	svc := &fakeService{}
	w := do(router(svc), "/api/athan/today?city=Toronto&admin=Ontario&country=CA&lat=43.65&lon=-79.38")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, model.Location{Name: "Toronto", Admin: "Ontario", Country: "CA", Latitude: 43.65, Longitude: -79.38}, svc.selected)

	var resp packets.SnapshotResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Toronto, Ontario, CA", resp.Location.DisplayName)
	assert.Equal(t, "remote", resp.Source)
	assert.Equal(t, "Sunrise", resp.Evaluation.Visual)
	assert.Equal(t, "Dhuhr", resp.Evaluation.Next)
	assert.Equal(t, "in 5 hours 20 minutes", resp.Evaluation.Remaining)
	require.Len(t, resp.Prayers, 6)
	assert.Equal(t, packets.PrayerResponse{Name: "Dhuhr", Time: "--:--"}, resp.Prayers[2])
}

func TestTodayRequiresCityAndCountry(t *testing.T) {
	w := do(router(&fakeService{}), "/api/athan/today?city=Toronto")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTodaySuperseded(t *testing.T) {
	w := do(router(&fakeService{selectErr: timings.ErrSuperseded}), "/api/athan/today?city=Toronto&country=CA")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestEvaluationAtInstant(t *testing.T) {
	svc := &fakeService{}
	w := do(router(svc), "/api/athan/evaluation?at=2025-01-15T20:00:00Z")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC), svc.snapAt.UTC())

	w = do(router(svc), "/api/athan/evaluation")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, now, svc.snapAt)
}

func TestEvaluationErrors(t *testing.T) {
	w := do(router(&fakeService{}), "/api/athan/evaluation?at=yesterday")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(router(&fakeService{snapErr: athan.ErrNoSelection}), "/api/athan/evaluation")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestNotifications(t *testing.T) {
	svc := &fakeService{triggers: []model.NotificationTrigger{{
		ID:     "prayer.Dhuhr.2025-1-15",
		Prayer: model.Dhuhr,
		FireAt: time.Date(2025, 1, 15, 12, 35, 0, 0, time.UTC),
		Title:  "Dhuhr time",
		Body:   "It's time for Dhuhr.",
	}}}
	w := do(router(svc), "/api/athan/schedule/notifications")
	require.Equal(t, http.StatusOK, w.Code)

	var resp []packets.TriggerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "prayer.Dhuhr.2025-1-15", resp[0].ID)
	assert.Equal(t, "2025-01-15T12:35:00Z", resp[0].FireAt)
}

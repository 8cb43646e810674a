package endpoints

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/athan"
	"github.com/Nixie-Tech-LLC/athan/internal/clock"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api/athan/packets"
	"github.com/Nixie-Tech-LLC/athan/internal/model"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

// Service is what the public athan endpoints need from the application.
type Service interface {
	SelectLocation(ctx context.Context, loc model.Location) (athan.Snapshot, error)
	Snapshot(now time.Time) (athan.Snapshot, error)
	Notifications(now time.Time) ([]model.NotificationTrigger, error)
}

// AthanModule mounts the public schedule endpoints (/today, /evaluation, /schedule/notifications)
func AthanModule(svc Service, clk clock.Clock) api.Module {
	ctl := &AthanController{svc: svc, clock: clk}
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_GET("/today", ctl.today)
		c.PUBLIC_GET("/evaluation", ctl.evaluation)
		c.PUBLIC_GET("/schedule/notifications", ctl.notifications)
	})
}

type AthanController struct {
	svc   Service
	clock clock.Clock
}

// GET /api/athan/today
func (a *AthanController) today(ctx *gin.Context) (any, *api.APIError) {
	var request packets.TodayRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	loc := model.Location{
		Name:      request.City,
		Admin:     request.Admin,
		Country:   request.Country,
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
	}
	snap, err := a.svc.SelectLocation(ctx.Request.Context(), loc)
	switch {
	case err == nil:
		return SnapshotResponse(snap), nil
	case errors.Is(err, timings.ErrSuperseded):
		return nil, &api.APIError{Code: http.StatusConflict, Message: "location selection changed"}
	case errors.Is(err, context.Canceled):
		return nil, &api.APIError{Code: http.StatusRequestTimeout, Message: "request canceled"}
	default:
		log.Error().Err(err).Str("location", loc.ID()).Msg("select location failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not resolve timings"}
	}
}

// GET /api/athan/evaluation
func (a *AthanController) evaluation(ctx *gin.Context) (any, *api.APIError) {
	var request packets.EvaluationRequest
	if err := ctx.ShouldBindQuery(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	now := a.clock.Now()
	if request.At != "" {
		at, err := time.Parse(time.RFC3339, request.At)
		if err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "at must be RFC3339"}
		}
		now = at
	}

	snap, err := a.svc.Snapshot(now)
	if errors.Is(err, athan.ErrNoSelection) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "no location selected"}
	} else if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not evaluate schedule"}
	}
	return SnapshotResponse(snap), nil
}

// GET /api/athan/schedule/notifications
func (a *AthanController) notifications(ctx *gin.Context) (any, *api.APIError) {
	triggers, err := a.svc.Notifications(a.clock.Now())
	if errors.Is(err, athan.ErrNoSelection) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "no location selected"}
	} else if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not build notifications"}
	}
	return TriggerResponses(triggers), nil
}

package endpoints

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/athan"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api/admin/control/packets"
	athanendpoints "github.com/Nixie-Tech-LLC/athan/internal/http/api/athan/endpoints"
	"github.com/Nixie-Tech-LLC/athan/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/athan/internal/notify"
)

// Maintenance is what the admin endpoints need from the application.
type Maintenance interface {
	ClearCache(ctx context.Context) error
	RebuildNotifications(ctx context.Context) (notify.Report, error)
	Refresh(ctx context.Context) (athan.Snapshot, error)
}

type MaintenanceController struct {
	svc Maintenance
}

func NewMaintenanceController(svc Maintenance) *MaintenanceController {
	return &MaintenanceController{svc: svc}
}

func MaintenanceModule(svc Maintenance) api.Module {
	ctl := NewMaintenanceController(svc)
	return api.ModuleFunc(func(c *api.Controller) {
		c.DELETE("/cache", ctl.clearCache)
		c.POST("/notifications/rebuild", ctl.rebuildNotifications)
		c.POST("/refresh", ctl.refresh)
	})
}

// DELETE /api/admin/cache
func (m *MaintenanceController) clearCache(ctx *gin.Context, admin *middleware.Admin) (any, *api.APIError) {
	if err := m.svc.ClearCache(ctx.Request.Context()); err != nil {
		log.Error().Err(err).Msg("failed to clear timings cache")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not clear cache"}
	}
	log.Info().Str("admin", admin.Subject).Msg("timings cache cleared")
	return packets.ClearCacheResponse{Cleared: true}, nil
}

// POST /api/admin/notifications/rebuild
func (m *MaintenanceController) rebuildNotifications(ctx *gin.Context, admin *middleware.Admin) (any, *api.APIError) {
	report, err := m.svc.RebuildNotifications(ctx.Request.Context())
	if errors.Is(err, athan.ErrNoSelection) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "no location selected"}
	} else if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not rebuild notifications"}
	}
	return packets.RebuildResponse{Installed: report.Installed, Failed: report.Failed}, nil
}

// POST /api/admin/refresh
func (m *MaintenanceController) refresh(ctx *gin.Context, admin *middleware.Admin) (any, *api.APIError) {
	snap, err := m.svc.Refresh(ctx.Request.Context())
	if errors.Is(err, athan.ErrNoSelection) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "no location selected"}
	} else if err != nil {
		log.Error().Err(err).Msg("manual refresh failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not refresh timings"}
	}
	return athanendpoints.SnapshotResponse(snap), nil
}

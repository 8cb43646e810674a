package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Nixie-Tech-LLC/athan/internal/athan"
	"github.com/Nixie-Tech-LLC/athan/internal/clock"
	"github.com/Nixie-Tech-LLC/athan/internal/config"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api"
	authapi "github.com/Nixie-Tech-LLC/athan/internal/http/api/admin/auth/endpoints"
	adminapi "github.com/Nixie-Tech-LLC/athan/internal/http/api/admin/control/endpoints"
	athanapi "github.com/Nixie-Tech-LLC/athan/internal/http/api/athan/endpoints"
	"github.com/Nixie-Tech-LLC/athan/internal/metrics"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(r *gin.Engine, cfg *config.Config, svc *athan.Service, clk clock.Clock, gatherer prometheus.Gatherer) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		ExposeHeaders: []string{
			"Content-Length",
		},
		AllowCredentials: false,
	}))

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/athan",
	},
		athanapi.AthanModule(svc, clk),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		authapi.AuthPublicModule(cfg.JWTSecret, cfg.AdminPasswordHash),
	)

	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.JWTSecret,
	},
		authapi.AuthSessionModule(cfg.JWTSecret, cfg.AdminPasswordHash),
		adminapi.MaintenanceModule(svc),
	)

	r.GET("/metrics", gin.WrapH(metrics.Handler(gatherer)))
}

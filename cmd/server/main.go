package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/aladhan"
	"github.com/Nixie-Tech-LLC/athan/internal/alerts"
	"github.com/Nixie-Tech-LLC/athan/internal/athan"
	"github.com/Nixie-Tech-LLC/athan/internal/clock"
	"github.com/Nixie-Tech-LLC/athan/internal/metrics"
	"github.com/Nixie-Tech-LLC/athan/internal/notify"
	"github.com/Nixie-Tech-LLC/athan/internal/timings"
)

func main() {
	cfg := LoadEnvironment()
	SetupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zone, err := cfg.Zone()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	store, closeStore := InitStore(ctx, cfg)
	defer closeStore()

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)
	clk := clock.System{}

	fetcher := aladhan.NewClient(nil, aladhan.Config{
		BaseURL:    cfg.AladhanBaseURL,
		Method:     cfg.Method,
		School:     cfg.School,
		Zone:       zone,
		RatePerSec: cfg.FetchRate,
		Burst:      cfg.FetchBurst,
	})
	manager := timings.NewManager(store, fetcher,
		timings.WithClock(clk),
		timings.WithZone(zone),
		timings.WithRecorder(collector),
	)

	opts := athan.Options{
		Clock:       clk,
		LocalZone:   zone,
		Default:     cfg.DefaultLocation,
		Tick:        cfg.TickInterval,
		RefreshCron: cfg.RefreshCron,
	}
	var notifier *notify.Notifier
	var mqttClient mqtt.Client
	if cfg.MQTTBrokerURL != "" {
		mqttClient, err = alerts.Connect(cfg.MQTTBrokerURL, "athan-"+cfg.DeviceID)
		if err != nil {
			log.Fatal().Err(err).Msg("mqtt init")
		}
		defer alerts.Disconnect(mqttClient)
		notifier = notify.NewNotifier(alerts.NewScheduler(mqttClient, cfg.DeviceID), collector)
		opts.Publisher = alerts.NewStatePublisher(mqttClient, cfg.DeviceID)
	} else {
		log.Warn().Msg("MQTT_BROKER_URL not set, alerts and screen updates are disabled")
	}

	svc := athan.NewService(manager, notifier, opts)
	if cfg.DefaultLocation != nil {
		if _, err := svc.SelectLocation(ctx, *cfg.DefaultLocation); err != nil {
			log.Error().Err(err).Str("location", cfg.DefaultLocation.DisplayName()).Msg("failed to select default location")
		}
	}

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	RegisterRoutes(r, cfg, svc, clk, registry)

	srv := &http.Server{
		Addr:              cfg.ServerAddress,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := svc.Run(ctx); err != nil {
			log.Error().Err(err).Msg("athan loop exited")
			stop()
		}
	}()

	go func() {
		log.Info().Str("address", cfg.ServerAddress).Msg("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("server error")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/do"
	"github.com/supabase-community/auth-go"
	"go.uber.org/zap"

	"github.com/ashwath129/DayMap/internal/bootstrap"
	"github.com/ashwath129/DayMap/internal/config"
	"github.com/ashwath129/DayMap/internal/modules/handler"
	"github.com/ashwath129/DayMap/internal/modules/service"
	"github.com/ashwath129/DayMap/internal/router"
	"github.com/ashwath129/DayMap/internal/telemetry"
)

func main() {
	inj := bootstrap.BuildContainer()

	cfg, err := do.Invoke[*config.Config](inj)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}
	logger, err := do.Invoke[*zap.Logger](inj)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	tp, err := telemetry.SetupTracing(cfg)
	if err != nil {
		logger.Fatal("tracing setup failed", zap.Error(err))
	}
	mp, err := telemetry.SetupMetrics(cfg)
	if err != nil {
		logger.Fatal("metrics setup failed", zap.Error(err))
	}
	if mp != nil {
		if err := telemetry.InitLiveMetrics(); err != nil {
			logger.Fatal("live metrics init failed", zap.Error(err))
		}
	}

	liveSvc := do.MustInvoke[service.LiveSessionService](inj)

	r := router.NewRouter(router.RouterDeps{
		Config:              cfg,
		Log:                 logger,
		AuthClient:          do.MustInvoke[auth.Client](inj),
		GroupHandler:        do.MustInvoke[*handler.GroupHandler](inj),
		MessageHandler:      do.MustInvoke[*handler.MessageHandler](inj),
		SessionHandler:      do.MustInvoke[*handler.SessionHandler](inj),
		ItineraryHandler:    do.MustInvoke[*handler.ItineraryHandler](inj),
		PlanChatHandler:     do.MustInvoke[*handler.PlanChatHandler](inj),
		NotificationHandler: do.MustInvoke[*handler.NotificationHandler](inj),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.App.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", zap.Error(err))
	}

	// Flush pending coalesced writes before the process exits.
	liveSvc.Shutdown(shutdownCtx)

	if tp != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer shutdown failed", zap.Error(err))
		}
	}
	if mp != nil {
		if err := telemetry.ShutdownMetrics(shutdownCtx); err != nil {
			logger.Error("meter shutdown failed", zap.Error(err))
		}
	}

	if err := inj.Shutdown(); err != nil {
		logger.Error("container shutdown failed", zap.Error(err))
	}
}

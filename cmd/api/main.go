package main

import (
	"context"
	"log"
	"time"

	"shipment-sentinel/internal/core/cache"
	"shipment-sentinel/internal/core/config"
	"shipment-sentinel/internal/core/logger"
	"shipment-sentinel/internal/core/server"
	alertadapters "shipment-sentinel/internal/features/alerts/adapters"
	alertports "shipment-sentinel/internal/features/alerts/ports"
	alertservice "shipment-sentinel/internal/features/alerts/service"
	classifieradapters "shipment-sentinel/internal/features/classification/adapters"
	classifierservice "shipment-sentinel/internal/features/classification/service"
	monitoradapters "shipment-sentinel/internal/features/monitor/adapters"
	monitorhandler "shipment-sentinel/internal/features/monitor/handler"
	monitorservice "shipment-sentinel/internal/features/monitor/service"
	stalenessservice "shipment-sentinel/internal/features/staleness/service"

	"go.uber.org/zap"
)

// @title Shipment Sentinel API
// @version 1.0
// @description Webhook-driven shipment status monitor with carrier text classification and alert routing.
// @contact.name API Support
// @contact.email support@shipmentsentinel.com
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	boards, err := config.LoadBoards(cfg.BoardsFile)
	if err != nil {
		l.Fatal("Failed to load board configuration", zap.Error(err))
	}
	l.Info("Board configuration loaded", zap.Int("boards", len(boards)))

	// Initialize Board Adapter and run Health Check
	boardAdapter := monitoradapters.NewBoardAdapter(cfg.Board)
	if err := boardAdapter.HealthCheck(context.Background()); err != nil {
		l.Fatal("Board API Health Check Failed", zap.Error(err))
	}
	l.Info("Board API connection verified")

	// Initialize Classification: rule engine plus optional model assistance
	rules := classifierservice.NewRuleClassifier()
	gemini, err := classifieradapters.NewGeminiAdapter(context.Background(), cfg.Gemini)
	if err != nil {
		l.Fatal("Failed to create Gemini client", zap.Error(err))
	}

	classifier := classifierservice.NewClassifier(rules, nil)
	if gemini != nil {
		classifier = classifierservice.NewClassifier(rules, gemini)
	}

	// Initialize Staleness Tracker and its eviction sweep
	repeatPolicy, err := stalenessservice.ParseRepeatPolicy(cfg.Thresholds.StaleRepeatPolicy)
	if err != nil {
		l.Fatal("Invalid staleness configuration", zap.Error(err))
	}
	tracker := stalenessservice.NewTracker(
		time.Duration(cfg.Thresholds.StaleAfterHours)*time.Hour,
		repeatPolicy,
	)

	sweepIdle := time.Duration(cfg.Thresholds.SweepIdleHours) * time.Hour
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for range ticker.C {
			tracker.Sweep(sweepIdle, time.Now())
		}
	}()

	// Initialize Duplicate Suppression (in-process or shared via Redis)
	var store alertports.SuppressionStore
	if cfg.RedisURL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.RedisURL)
		if err != nil {
			l.Fatal("Failed to create Redis adapter", zap.Error(err))
		}
		defer redisCache.Close()

		if err := redisCache.Ping(context.Background()); err != nil {
			l.Fatal("Redis Health Check Failed", zap.Error(err))
		}
		store = alertadapters.NewRedisStore(redisCache)
		l.Info("Using Redis-backed alert suppression")
	} else {
		store = alertadapters.NewMemoryStore()
		l.Info("Using in-process alert suppression")
	}
	suppressor := alertservice.NewSuppressor(store,
		time.Duration(cfg.Thresholds.SuppressWindowMinutes)*time.Minute)

	// Initialize Notification Router
	slackSink := alertadapters.NewSlackAdapter(cfg.Slack.BotToken)
	mailSink, err := alertadapters.NewSMTPAdapter(cfg.SMTP)
	if err != nil {
		l.Fatal("Failed to create SMTP client", zap.Error(err))
	}
	crm := alertadapters.NewCRMAdapter(cfg.Contacts)

	var mailPort alertports.MailSink
	if mailSink != nil {
		mailPort = mailSink
	}
	var contactsPort alertports.ContactDirectory
	if crm != nil {
		contactsPort = crm
	}

	notifier := alertservice.NewNotifier(slackSink, mailPort, contactsPort, cfg.Slack.AlertChannel)

	// Initialize Monitor Service & Handlers
	monitorSvc := monitorservice.NewMonitorService(
		boardAdapter, classifier, tracker, suppressor, notifier, boards,
	)
	webhookHdl := monitorhandler.NewWebhookHandler(monitorSvc)
	shipmentHdl := monitorhandler.NewShipmentHandler(monitorSvc)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Post("/webhook/board", webhookHdl.Handle)
	srv.App.Get("/shipments/:id", shipmentHdl.GetShipment)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

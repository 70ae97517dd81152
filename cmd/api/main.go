package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"FCCMonitorAPI/internal/causality"
	"FCCMonitorAPI/internal/config"
	"FCCMonitorAPI/internal/database"
	"FCCMonitorAPI/internal/handler"
	"FCCMonitorAPI/internal/logger"
	"FCCMonitorAPI/internal/metrics"
	"FCCMonitorAPI/internal/mqtt"
	"FCCMonitorAPI/internal/plant"
	"FCCMonitorAPI/internal/repository"
	"FCCMonitorAPI/internal/server"
	"FCCMonitorAPI/internal/service"
	"FCCMonitorAPI/internal/websocket"
)

func main() {
	// 1. Load Config
	cfg, err := config.Load()
	if err != nil {
		// Fallback logger since main logger isn't ready
		panic("Failed to load configuration: " + err.Error())
	}

	// 2. Initialize Logger
	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Mode:        cfg.Logging.Mode,
		LogFilePath: cfg.Logging.FilePath,
		UseColors:   cfg.Logging.UseColors,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer log.Close()

	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: %v", err)
	}

	cfg.Print()
	log.Info("Starting FCC Alarm Monitor API Server")

	if cfg.Metrics.Enabled {
		metrics.Init()
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// 3. Database Connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal("Database health check failed: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		log.Fatal("Database migration failed: %v", err)
	}
	log.Info("Database connected and migrated")

	// 4. Plant catalog and repositories
	catalog, err := plant.LoadCatalog(cfg.Plant.CatalogPath)
	if err != nil {
		log.Fatal("Failed to load tag catalog: %v", err)
	}

	alarmRepo := repository.NewAlarmRepository(db.DB)
	settingsRepo := repository.NewSettingsRepository(db.DB)
	handoverRepo := repository.NewHandoverRepository(db.DB)

	graphStore := causality.NewStore(settingsRepo, log.Named("causality"))
	graphStore.Load(ctx)

	// 5. Initialize MQTT Client
	mqttClient, err := mqtt.NewClient(mqtt.ClientConfig{
		MQTT:   &cfg.MQTT,
		Logger: log.Named("mqtt"),
	})
	if err != nil {
		log.Fatal("Failed to create MQTT client: %v", err)
	}
	defer func(mqttClient *mqtt.Client) {
		err := mqttClient.Disconnect()
		if err != nil {
			log.Error("Failed to disconnect MQTT: %v", err)
		}
	}(mqttClient)

	if err := mqttClient.Connect(); err != nil {
		log.Fatal("Failed to connect to MQTT broker: %v", err)
	}

	// 6. Live push: websocket hub plus MQTT alarm event relay
	hub := websocket.NewHub(log.Named("ws"))
	go hub.Run(ctx)

	relay := mqtt.NewEventRelay(mqttClient, cfg.MQTT.EventTopic, log.Named("relay"))
	go relay.Run(ctx)

	broadcaster := service.MultiBroadcaster{hub, relay}

	// 7. Initialize Services
	alarmService := service.NewAlarmService(alarmRepo, graphStore, broadcaster, log.Named("alarms"), service.AlarmOptions{
		ListLimit:       cfg.Alarm.ListLimit,
		Retention:       cfg.Alarm.Retention,
		CleanupInterval: cfg.Alarm.CleanupInterval,
	})
	tagService := service.NewTagService(catalog, alarmService, broadcaster, log.Named("tags"))
	causalityService := service.NewCausalityService(graphStore, tagService, broadcaster, log.Named("causality"))
	handoverService := service.NewHandoverService(handoverRepo, alarmService, catalog.Unit, log.Named("handover"))

	go alarmService.Run(ctx, cfg.Alarm.RecomputeInterval)

	// 8. MQTT Subscriptions
	if err := mqttClient.SubscribeTagStream(handleTagMessage(tagService)); err != nil {
		log.Fatal("Failed to subscribe to tag topics: %v", err)
	}
	log.Info("MQTT subscriptions active")

	var simulator *service.Simulator
	if cfg.Plant.SimulatorEnabled {
		simulator = service.NewSimulator(tagService, cfg.Plant.SimulatorInterval, time.Now().UnixNano(), log.Named("simulator"))
		simulator.Start()
	}

	// 9. Initialize Handlers
	healthHandler := handler.NewHealthHandler(db, mqttClient, log)

	// 10. Start HTTP Server
	srv := server.New(cfg, log)
	srv.RegisterHandlers(healthHandler,
		handler.NewTagHandler(tagService, log),
		handler.NewAlarmHandler(alarmService, log),
		handler.NewCausalityHandler(causalityService, log),
		handler.NewHandoverHandler(handoverService, log),
		handler.NewWSHandler(hub, log.Named("ws")),
	)

	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal("Server failed: %v", err)
		}
	}()

	log.Info("API server ready on http://%s:%d", cfg.Server.Host, cfg.Server.Port)

	// 11. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Warn("Shutdown signal received")

	if simulator != nil {
		simulator.Shutdown()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error: %v", err)
	}

	stop()
	log.Info("Shutdown complete")
}

// handleTagMessage gives each sampler message its own 5s deadline.
func handleTagMessage(tags *service.TagService) mqtt.MessageHandler {
	return func(ctx context.Context, topic string, payload []byte) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		return tags.ProcessMessage(ctx, topic, payload)
	}
}

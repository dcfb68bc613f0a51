package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"rigor-logistics/internal/config"
	"rigor-logistics/internal/database"
	domainLocation "rigor-logistics/internal/domain/location"
	"rigor-logistics/internal/ingestion"
	"rigor-logistics/internal/livefeed"
	"rigor-logistics/internal/logger"
	"rigor-logistics/internal/notification"
	"rigor-logistics/internal/routes"
	pkgmqtt "rigor-logistics/pkg/mqtt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const hubBufferSize = 256

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("Failed to load configuration: " + err.Error() + "\n")
		os.Exit(1)
	}

	env := cfg.Server.Environment
	if env == "" {
		env = "development"
	}
	if err := logger.Init(env, logger.FileOptions{
		Path:       cfg.Log.FilePath,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}); err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("environment", env),
		zap.String("db_driver", cfg.Database.Driver),
	)

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, err := database.NewDatabase(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := repos.Close(); err != nil {
			logger.Error("Failed to close database connection", zap.Error(err))
		}
	}()

	dispatcher := notification.NewDispatcher(notification.NewSender(&cfg.SMTP), cfg.Notification.Workers, cfg.Notification.QueueSize)
	dispatcher.Start()
	defer dispatcher.Stop()

	// Background goroutines below stop when feedCtx is cancelled.
	feedCtx, cancelFeed := context.WithCancel(context.Background())
	var background sync.WaitGroup
	defer func() {
		cancelFeed()
		background.Wait()
	}()

	hub := livefeed.NewHub(hubBufferSize)
	background.Add(1)
	go func() {
		defer background.Done()
		hub.Run(feedCtx)
	}()

	var publisher domainLocation.Publisher = hub
	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		relay := livefeed.NewRedisRelay(rdb, cfg.Redis.Channel, hub)
		publisher = relay
		background.Add(1)
		go func() {
			defer background.Done()
			defer rdb.Close()
			if err := relay.Run(feedCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Live feed relay stopped", zap.Error(err))
			}
		}()
	}

	services := routes.NewServices(cfg, repos, dispatcher, publisher)

	stats := map[string]func() any{
		"notifications": func() any { return dispatcher.Stats() },
		"live_feed":     func() any { return hub.Stats() },
	}

	if cfg.MQTT.Enabled {
		processor := ingestion.NewProcessor(services.Tracking, cfg.MQTT.Workers, cfg.MQTT.BufferSize)
		processor.Start()
		defer processor.Stop()

		mqttClient, err := ingestion.NewMQTTIngestionClient(&ingestion.MQTTIngestionConfig{
			ClientConfig: &pkgmqtt.Config{
				Broker:               cfg.MQTT.Broker,
				ClientID:             cfg.MQTT.ClientID,
				Username:             cfg.MQTT.Username,
				Password:             cfg.MQTT.Password,
				CleanSession:         true,
				KeepAlive:            30,
				ConnectTimeout:       10,
				AutoReconnect:        true,
				MaxReconnectInterval: time.Minute,
				Logger:               logger.Logger,
			},
			LocationTopic: cfg.MQTT.LocationTopic,
			QoS:           cfg.MQTT.QoS,
		}, processor)
		if err != nil {
			logger.Fatal("Failed to configure MQTT ingestion", zap.Error(err))
		}
		if err := mqttClient.Start(); err != nil {
			logger.Fatal("Failed to start MQTT ingestion", zap.Error(err))
		}
		defer mqttClient.Stop()

		stats["ingestion"] = func() any { return processor.GetMetrics() }
	}

	router := routes.SetupRoutes(cfg, repos, services, routes.Options{
		Hub:      hub,
		Notifier: dispatcher,
		Stats:    stats,
	})

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.String("address", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case err := <-serverErr:
		logger.Error("Server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Failed to shutdown server", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

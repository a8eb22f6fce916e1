package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/dataprobe/dataprobe/internal/server"
	"github.com/dataprobe/dataprobe/internal/storage"
)

func main() {
	config := ParseFlags()

	logger := setupLogger(config.LogLevel, config.LogFormat)

	logger.WithFields(logrus.Fields{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
	}).Info("Starting data quality validation server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storageConfig := storage.DefaultConfig()
	storageConfig.Backend = config.StorageBackend
	storageConfig.Postgres.DSN = config.PostgresDSN
	storageConfig.Redis.Addr = config.RedisAddr

	store, err := storage.NewSessionStore(ctx, storageConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize session store")
	}
	defer store.Close()

	serverConfig := server.DefaultConfig()
	serverConfig.Host = config.Host
	serverConfig.Port = config.Port
	serverConfig.EnableCORS = config.EnableCORS
	serverConfig.Version = Version

	srv := server.NewServer(serverConfig, store, logger)

	go func() {
		if err := srv.Start(ctx); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	<-sigChan
	logger.Info("Shutdown signal received")

	if err := srv.Stop(context.Background()); err != nil {
		logger.WithError(err).Error("Server shutdown failed")
	}

	logger.Info("Server stopped")
}

func setupLogger(level, format string) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

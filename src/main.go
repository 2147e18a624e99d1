package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"walkforward/src/config"
	"walkforward/src/database"
	"walkforward/src/pricedata"
	"walkforward/src/runs"
	"walkforward/src/server"
	"walkforward/src/version"
)

func main() {
	initializeLogging()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	walkforwardConfig, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	slog.Info("Ramping up Walkforward", "buildInfo", version.GetBuildInfo())

	runsDir := walkforwardConfig.RunsConfig.Dir
	if runsDir == "" {
		runsDir = "runs"
	}
	store, err := runs.NewFileRunStore(runsDir)
	if err != nil {
		slog.Error("Failed to create run store", "error", err)
		os.Exit(1)
	}

	dataDir := walkforwardConfig.DataConfig.Dir
	if dataDir == "" {
		dataDir = "data"
	}
	source := pricedata.NewCsvDirSource(dataDir)

	runner := runs.NewRunner(store, source)

	// database persistence is optional
	var db database.WalkforwardDatabase
	if walkforwardConfig.DatabaseConfig != nil {
		db, err = database.NewDBConnection(*walkforwardConfig.DatabaseConfig)
		if err != nil {
			slog.Error("Failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		runner = runner.WithDatabase(db)
	}

	port := walkforwardConfig.ServerConfig.Port
	if port == "" {
		port = "8080"
	}
	srv := server.NewServer(":" + port).
		WithRunStore(store).
		WithRunner(runner)

	runner = runner.WithStatusListener(srv.Hub().Broadcast)

	// relay transitions published by other replicas into the websocket hub;
	// this replica's own transitions reach it via the status listener and are
	// filtered out of the relay by origin ID
	if db != nil {
		events := db.Notifier().Subscribe("status-hub")
		go func() {
			for event := range events {
				srv.Hub().Broadcast(event)
			}
		}()
	}

	go func() {
		slog.Info("Starting server")
		if err := srv.Start(ctx); err != nil {
			slog.Error("Server failed", "error", err)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

func initializeLogging() {
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "INFO"
	}
	switch strings.ToLower(logLevel) {
	case "debug":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelDebug, AddSource: true})))
	case "info":
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelInfo})))
	default:
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout,
			&slog.HandlerOptions{Level: slog.LevelInfo})))
	}
}

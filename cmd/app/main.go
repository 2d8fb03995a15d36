package main

import (
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"

	"PriceWatch/internal/di"
	"PriceWatch/pkg/config"

	"github.com/joho/godotenv"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	envPath := flag.String("env", ".env", "dotenv file loaded before env overrides")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s settings=%s feed=%s", cfg.Environment, cfg.Settings.Backend, cfg.Feed.WebSocketURL)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if cfg.Notify.Kafka.Enabled {
		log.Printf("kafka: brokers=%v topic=%s", cfg.Notify.Kafka.Brokers, cfg.Notify.Kafka.Topic)
	}

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

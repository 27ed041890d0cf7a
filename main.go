package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/georgewallace/claytargettracker-sub002/app"
	"github.com/georgewallace/claytargettracker-sub002/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	application, err := app.NewApp(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("error during shutdown: %v", err)
		}
	}()

	if err := application.Start(ctx); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

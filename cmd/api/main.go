package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"lifestream/internal/gateway/app"
	"lifestream/internal/gateway/config"
)

func main() {
	configPath := flag.String("config", "", "path to config.yaml (default $LIFESTREAM_CONFIG or ./config.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("failed to initialize app: %v", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := a.Run(ctx); err != nil {
		log.Printf("server error: %v", err)
	}
}

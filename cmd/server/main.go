package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cardsnipe/engine/internal/api"
	"github.com/cardsnipe/engine/internal/api/handlers"
	"github.com/cardsnipe/engine/internal/api/ws"
	"github.com/cardsnipe/engine/internal/config"
	"github.com/cardsnipe/engine/internal/services"
	"github.com/cardsnipe/engine/internal/upstream"
)

func main() {
	cfg := config.Load()
	log.Printf("Engine starting: upstream %s, listening on %s", cfg.UpstreamURL, cfg.ListenAddr)

	client := upstream.New(cfg.UpstreamURL)
	store := services.NewStore()

	hub := ws.NewHub()
	go hub.Run()

	scheduler := services.NewScheduler(client, store, nil, services.SchedulerConfig{
		RefreshInterval:  cfg.RefreshInterval,
		TickInterval:     cfg.TickInterval,
		ScanPollInterval: cfg.ScanPollInterval,
	})
	scheduler.OnUpdate(func() {
		hub.Broadcast(handlers.BuildState(store.Snapshot(), time.Now()))
	})

	gateway := services.NewGateway(client, store, scheduler)

	router := api.NewRouter(store, scheduler, gateway, client, hub, cfg.AdminKey)
	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	scheduler.Start()

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Engine: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Engine shutting down...")

	// Timers first so nothing commits state during teardown.
	scheduler.Stop()
	hub.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Engine: forced shutdown: %v", err)
	}

	log.Println("Engine stopped")
}

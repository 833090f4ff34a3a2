package main

import (
	"context"
	"log"
	"time"

	"paper-grading-be/internal/bootstrap"
	"paper-grading-be/internal/config"
	"paper-grading-be/internal/server"
	"paper-grading-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	// Note: In a larger app, we might use an errgroup or supervisor here
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 4. Restore believed session and keep it fresh
	container.AuthService.Init(context.Background())
	container.AuthService.StartRevalidation(
		context.Background(),
		time.Duration(cfg.Session.RevalidateSeconds)*time.Second,
	)

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}

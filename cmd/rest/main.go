package main

import (
	"context"
	"log"

	"school-concierge-be/internal/bootstrap"
	"school-concierge-be/internal/config"
	"school-concierge-be/internal/server"
	"school-concierge-be/internal/tracer"
	"school-concierge-be/pkg/database"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)
	defer container.StopAnswersWatch()

	// 4. Warm the retrieval index from Postgres
	if err := container.KbService.LoadIndex(context.Background()); err != nil {
		log.Printf("Warning: failed to load vector index: %v", err)
	}

	// 5. Start Background Services
	go func() {
		log.Println("Background: Starting Consumer Service...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	if container.EscalationWorker != nil {
		go func() {
			log.Println("Background: Starting Escalation Worker...")
			if err := container.EscalationWorker.Start(); err != nil {
				log.Printf("Background Escalation Worker Error: %v", err)
			}
		}()
	}

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}

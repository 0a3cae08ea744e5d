package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"adsight/adapters/postgres"
	"adsight/adapters/report"
	"adsight/app"
	"adsight/internal/api"
	"adsight/internal/config"
	"adsight/internal/engine"
	"adsight/internal/stattest"
	"adsight/internal/testkit"
	"adsight/ports"
)

func main() {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("[api] loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[api] %v", err)
	}

	repo, cleanup, err := buildRepository(cfg)
	if err != nil {
		log.Fatalf("[api] %v", err)
	}
	defer cleanup()

	eng := engine.NewWithConfig(engine.Config{
		Compare:     cfg.EngineCompare(),
		ChangePoint: cfg.EngineChangePoint(),
		Calibration: stattest.DefaultCalibrationConfig(),
	})
	server := api.NewServer(app.NewRunService(eng), repo, report.NewRenderer())

	addr := ":" + cfg.Server.Port
	log.Printf("[api] listening on %s", addr)
	if err := http.ListenAndServe(addr, server.Handler()); err != nil {
		log.Fatalf("[api] server stopped: %v", err)
	}
}

// buildRepository picks PostgreSQL when DATABASE_URL is set and falls
// back to the in-memory store otherwise, so the API can run without a
// database for local use.
func buildRepository(cfg *config.Config) (ports.ResultRepositoryPort, func(), error) {
	if cfg.Database.URL == "" {
		log.Println("[api] DATABASE_URL not set, using in-memory result store")
		return testkit.NewInMemoryResultRepository(), func() {}, nil
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	repo := postgres.NewResultRepository(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	log.Println("[api] connected to PostgreSQL")
	return repo, func() { db.Close() }, nil
}

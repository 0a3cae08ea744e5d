package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"adsight/adapters/dataset"
	"adsight/adapters/postgres"
	"adsight/adapters/report"
	"adsight/app"
	"adsight/domain/core"
	"adsight/domain/hypothesis"
	"adsight/domain/run"
	"adsight/internal/config"
	"adsight/internal/engine"
	"adsight/internal/stattest"
)

func main() {
	dataPath := flag.String("data", "", "path to the ad-performance dataset (csv or xlsx)")
	hypothesesPath := flag.String("hypotheses", "", "path to the hypotheses JSON file")
	outPath := flag.String("out", "", "write the Markdown report here instead of stdout")
	htmlOut := flag.String("html", "", "optionally write an HTML report here")
	flag.Parse()

	if err := execute(*dataPath, *hypothesesPath, *outPath, *htmlOut); err != nil {
		log.Fatalf("[validate] %v", err)
	}
}

func execute(dataPath, hypothesesPath, outPath, htmlOut string) error {
	// .env is optional; environment variables win either way.
	if err := godotenv.Load(); err == nil {
		log.Println("[validate] loaded environment from .env")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if dataPath == "" {
		dataPath = cfg.Data.CSVFile
		if dataPath == "" {
			dataPath = cfg.Data.ExcelFile
		}
	}
	if dataPath == "" {
		return fmt.Errorf("no dataset: pass -data or set DATA_CSV_FILE / DATA_EXCEL_FILE")
	}
	if hypothesesPath == "" {
		return fmt.Errorf("no hypotheses: pass -hypotheses with a JSON file")
	}

	hypotheses, err := loadHypotheses(hypothesesPath)
	if err != nil {
		return err
	}

	metrics := targetMetrics(hypotheses)
	ctx := context.Background()

	source := dataset.NewAdapter(dataPath, cfg.Data.Sheet)
	ev, err := source.Evidence(ctx, metrics)
	if err != nil {
		return err
	}

	eng := engine.NewWithConfig(engine.Config{
		Compare:     cfg.EngineCompare(),
		ChangePoint: cfg.EngineChangePoint(),
		Calibration: stattest.DefaultCalibrationConfig(),
	})
	summary := app.NewRunService(eng).Execute(ctx, hypotheses, ev)

	if cfg.Database.URL != "" {
		if err := persist(ctx, cfg.Database.URL, summary); err != nil {
			return err
		}
	}

	renderer := report.NewRenderer()
	md, err := renderer.RenderMarkdown(summary)
	if err != nil {
		return err
	}
	if outPath != "" {
		if err := os.WriteFile(outPath, md, 0o644); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		log.Printf("[validate] report written to %s", outPath)
	} else {
		fmt.Print(string(md))
	}

	if htmlOut != "" {
		html, err := renderer.RenderHTML(summary)
		if err != nil {
			return err
		}
		if err := os.WriteFile(htmlOut, html, 0o644); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		log.Printf("[validate] HTML report written to %s", htmlOut)
	}

	return nil
}

func loadHypotheses(path string) ([]hypothesis.Hypothesis, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read hypotheses file: %w", err)
	}

	var hypotheses []hypothesis.Hypothesis
	if err := json.Unmarshal(raw, &hypotheses); err != nil {
		return nil, fmt.Errorf("failed to parse hypotheses file: %w", err)
	}
	if len(hypotheses) == 0 {
		return nil, fmt.Errorf("hypotheses file %s contains no hypotheses", path)
	}
	return hypotheses, nil
}

// targetMetrics collects the distinct metrics the batch needs
func targetMetrics(hypotheses []hypothesis.Hypothesis) []core.MetricKey {
	seen := make(map[core.MetricKey]bool)
	var metrics []core.MetricKey
	for _, hyp := range hypotheses {
		if hyp.TargetMetric != "" && !seen[hyp.TargetMetric] {
			seen[hyp.TargetMetric] = true
			metrics = append(metrics, hyp.TargetMetric)
		}
	}
	return metrics
}

// persist stores the run in PostgreSQL when DATABASE_URL is configured
func persist(ctx context.Context, databaseURL string, summary run.Summary) error {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewResultRepository(db)
	if err := repo.Migrate(ctx); err != nil {
		return err
	}
	if err := repo.SaveRun(ctx, summary); err != nil {
		return err
	}
	log.Printf("[validate] run %s persisted", summary.RunID)
	return nil
}

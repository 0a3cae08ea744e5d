package ports

import (
	"context"

	"adsight/domain/core"
	"adsight/domain/run"
)

// ResultRepositoryPort persists validation runs for downstream reporting
type ResultRepositoryPort interface {
	SaveRun(ctx context.Context, summary run.Summary) error
	GetRun(ctx context.Context, id core.RunID) (run.Summary, error)
	ListRuns(ctx context.Context, limit int) ([]run.Summary, error)
}

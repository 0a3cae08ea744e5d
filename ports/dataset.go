package ports

import (
	"context"

	"adsight/domain/core"
	"adsight/domain/evidence"
)

// DatasetPort supplies already-validated numeric evidence for the
// requested metrics: a baseline/test sample pair per metric and,
// where available, an ordered daily time series. The engine never
// parses raw records itself.
type DatasetPort interface {
	// Evidence materializes sample pairs and series for the given metrics.
	// Metrics absent from the underlying dataset are simply omitted from
	// the returned maps; the engine reports them as missing input.
	Evidence(ctx context.Context, metrics []core.MetricKey) (evidence.Evidence, error)
}

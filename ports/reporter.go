package ports

import (
	"adsight/domain/run"
)

// ReporterPort renders a finished run for human consumption
type ReporterPort interface {
	// RenderMarkdown produces the canonical Markdown run report.
	RenderMarkdown(summary run.Summary) ([]byte, error)
	// RenderHTML produces an HTML rendition of the same report.
	RenderHTML(summary run.Summary) ([]byte, error)
}

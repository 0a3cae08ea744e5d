package report

import (
	"bytes"
	"fmt"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"adsight/domain/evidence"
	"adsight/domain/run"
	"adsight/ports"
)

// Renderer turns a run summary into Markdown and HTML reports. It only
// consumes the published result contract; nothing here feeds back into
// validation.
type Renderer struct{}

var _ ports.ReporterPort = (*Renderer)(nil)

// NewRenderer creates a report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderMarkdown produces the canonical Markdown run report
func (r *Renderer) RenderMarkdown(summary run.Summary) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Validation Run %s\n\n", summary.RunID)
	fmt.Fprintf(&buf, "Started %s, finished %s.\n\n",
		summary.StartedAt.Format("2006-01-02 15:04:05 MST"),
		summary.FinishedAt.Format("2006-01-02 15:04:05 MST"))

	buf.WriteString("| Hypothesis | Metric | Status | Confidence | p-value | Effect | Change (%) |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")
	for _, result := range summary.Results {
		fmt.Fprintf(&buf, "| %s | %s | %s %s | %.2f | %.4g | %.2f | %s |\n",
			result.HypothesisID,
			result.Validation.Metric,
			statusBadge(result.Status), result.Status,
			result.ConfidenceFinal,
			result.Validation.PValue,
			result.Validation.EffectSize,
			formatRelativeChange(result.Validation.RelativeChangePct),
		)
	}
	buf.WriteString("\n")

	for _, result := range summary.Results {
		fmt.Fprintf(&buf, "## %s: %s\n\n", result.HypothesisID, result.Status)
		fmt.Fprintf(&buf, "- Baseline mean %.6g (n=%d), test mean %.6g (n=%d)\n",
			result.Validation.BaselineMean, result.Validation.SampleSizeBaseline,
			result.Validation.TestMean, result.Validation.SampleSizeTest)
		if result.Validation.ChangePoint != nil {
			fmt.Fprintf(&buf, "- Regime shift localized at series index %d\n", *result.Validation.ChangePoint)
		}
		fmt.Fprintf(&buf, "- %s\n", result.Notes)
		for _, ref := range result.EvidenceRefs {
			fmt.Fprintf(&buf, "- Evidence: %s\n", ref)
		}
		buf.WriteString("\n")
	}

	if len(summary.Failures) > 0 {
		buf.WriteString("## Failures\n\n")
		for _, failure := range summary.Failures {
			fmt.Fprintf(&buf, "- %s: %s\n", failure.HypothesisID, failure.Error)
		}
		buf.WriteString("\n")
	}

	return buf.Bytes(), nil
}

// RenderHTML renders the Markdown report to HTML
func (r *Renderer) RenderHTML(summary run.Summary) ([]byte, error) {
	md, err := r.RenderMarkdown(summary)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML(md, p, renderer), nil
}

func formatRelativeChange(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f", *pct)
}

// statusBadge maps a status to a short marker for compact listings
func statusBadge(status evidence.Status) string {
	switch status {
	case evidence.StatusValidated:
		return "[+]"
	case evidence.StatusRefuted:
		return "[-]"
	default:
		return "[?]"
	}
}

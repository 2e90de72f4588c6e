package report

import (
	"fmt"
	"strings"

	"costwise/domain/run"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Renderer turns a completed run into the human-readable artifacts the
// analysis reports are built from: a markdown summary and its HTML form.
type Renderer struct{}

// NewRenderer creates a report renderer.
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Markdown renders the run as a markdown document.
func (r *Renderer) Markdown(rec *run.Run) string {
	var b strings.Builder
	rep := rec.Report
	cm := rec.Confusion

	fmt.Fprintf(&b, "# Targeting run %s\n\n", rec.ID.String())
	fmt.Fprintf(&b, "Dataset: **%s** — target intervention rate %.2f%% (±%.2f%%), converged in %d iterations.\n\n",
		rec.Dataset, rec.TargetRate*100, rec.Tolerance*100, rec.Iterations)

	b.WriteString("## Cost model\n\n")
	fmt.Fprintf(&b, "| | Amount |\n|---|---|\n")
	fmt.Fprintf(&b, "| Intervention cost | $%.2f |\n", rec.Economics.InterventionCost)
	fmt.Fprintf(&b, "| Outcome cost | $%.2f |\n", rec.Economics.OutcomeCost)
	fmt.Fprintf(&b, "| Assumed efficacy | %.0f%% |\n", rec.Economics.EfficacyRate*100)
	fmt.Fprintf(&b, "| Loss matrix FP / FN | $%.2f / $%.2f |\n\n",
		rec.CostModel.FalsePositive, rec.CostModel.FalseNegative)

	b.WriteString("## Out-of-sample confusion\n\n")
	b.WriteString("| | Predicted 0 | Predicted 1 |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Actual 0 | %d | %d |\n", cm.TrueNegative, cm.FalsePositive)
	fmt.Fprintf(&b, "| Actual 1 | %d | %d |\n\n", cm.FalseNegative, cm.TruePositive)

	b.WriteString("## Operating point\n\n")
	fmt.Fprintf(&b, "- Interventions: %d of %d (%.2f%%, 95%% CI %.2f%%–%.2f%%)\n",
		rep.InterventionCount, cm.Total(), rep.InterventionRate*100,
		rep.RateInterval.Lower*100, rep.RateInterval.Upper*100)
	fmt.Fprintf(&b, "- Accuracy: %.1f%%\n", rep.Accuracy*100)
	fmt.Fprintf(&b, "- True positive rate: %.1f%%\n", rep.TruePositiveRate*100)
	fmt.Fprintf(&b, "- False positive rate: %.1f%%\n", rep.FalsePositiveRate*100)
	fmt.Fprintf(&b, "- Total cost: $%.2f\n", rep.TotalCost)
	fmt.Fprintf(&b, "- Do-nothing baseline: $%.2f\n", rep.BaselineCost)
	fmt.Fprintf(&b, "- Net value vs baseline: $%.2f\n", rep.NetValueVsBaseline)

	return b.String()
}

// HTML renders the run summary as an HTML fragment.
func (r *Renderer) HTML(rec *run.Run) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	opts := html.RendererOptions{Flags: html.CommonFlags}
	return markdown.ToHTML([]byte(r.Markdown(rec)), p, html.NewRenderer(opts))
}

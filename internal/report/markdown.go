package report

import (
	"fmt"
	"strings"

	"budget-impact/internal/analysis"
	"budget-impact/internal/projection"
	"budget-impact/internal/sensitivity"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/shopspring/decimal"
)

// Meta carries the narrative parts of a report and the optional sensitivity
// results to append.
type Meta struct {
	Title   string
	Summary string
	DSA     []sensitivity.DSARow
	PSA     *analysis.PSASummary
}

const defaultTitle = "Budget Impact Report"

// Money rounds to cents for display.
func Money(x float64) string {
	return decimal.NewFromFloat(x).Round(2).StringFixed(2)
}

func ratio(x float64) string {
	return decimal.NewFromFloat(x).Round(4).String()
}

// Markdown renders the report as Markdown.
func Markdown(meta Meta, res *projection.Result) string {
	title := meta.Title
	if title == "" {
		title = defaultTitle
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	if meta.Summary != "" {
		b.WriteString(meta.Summary)
		b.WriteString("\n\n")
	}

	b.WriteString("## Results\n\n")
	if res.CaseName != "" {
		fmt.Fprintf(&b, "- Case: %s\n", res.CaseName)
	}
	fmt.Fprintf(&b, "- Model: %s\n", res.ModelID.Label())
	fmt.Fprintf(&b, "- Cumulative budget impact: %s\n", Money(res.TotalImpact))
	fmt.Fprintf(&b, "- Final balance: %s\n\n", Money(res.FinalBalance))

	b.WriteString("## Projection\n\n")
	b.WriteString("| Period | Population | Coverage (current) | Coverage (new) | Cost/patient (current) | Cost/patient (new) | Aggregate (current) | Aggregate (new) | Impact | Balance |\n")
	b.WriteString("|---:|---:|---:|---:|---:|---:|---:|---:|---:|---:|\n")
	for _, r := range res.Table {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s | %s | %s | %s |\n",
			r.Period, ratio(r.Population), ratio(r.CoverageCurrent), ratio(r.CoverageNew),
			Money(r.CostPerPatientCurrent), Money(r.CostPerPatientNew),
			Money(r.AggregateCurrent), Money(r.AggregateNew),
			Money(r.Impact), Money(r.Balance))
	}

	if len(meta.DSA) > 0 {
		b.WriteString("\n## Deterministic sensitivity\n\n")
		b.WriteString("| Parameter | Impact at min | Impact at max | Delta |\n")
		b.WriteString("|---|---:|---:|---:|\n")
		for _, d := range meta.DSA {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", d.Parameter, Money(d.ImpactAtMin), Money(d.ImpactAtMax), Money(d.Delta))
		}
	}

	if s := meta.PSA; s != nil {
		fmt.Fprintf(&b, "\n## Probabilistic sensitivity (%d trials)\n\n", s.Trials)
		b.WriteString("| Output | Mean | Std dev | P2.5 | Median | P97.5 |\n")
		b.WriteString("|---|---:|---:|---:|---:|---:|\n")
		for _, d := range []struct {
			name string
			dist analysis.Distribution
		}{
			{"Total impact", s.TotalImpact},
			{"Final balance", s.FinalBalance},
		} {
			fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", d.name,
				Money(d.dist.Mean), Money(d.dist.StdDev), Money(d.dist.P025), Money(d.dist.P50), Money(d.dist.P975))
		}
		fmt.Fprintf(&b, "\nProbability of a positive budget impact: %s\n", ratio(s.ProbPositiveImpact))
	}
	return b.String()
}

// HTML renders the Markdown report as a standalone page.
func HTML(meta Meta, res *projection.Result) []byte {
	title := meta.Title
	if title == "" {
		title = defaultTitle
	}
	p := parser.NewWithExtensions(parser.CommonExtensions)
	r := html.NewRenderer(html.RendererOptions{
		Title: title,
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.ToHTML([]byte(Markdown(meta, res)), p, r)
}

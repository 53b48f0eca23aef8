package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/score"
)

// Renderer writes reports as JSON, Markdown and a console summary
type Renderer struct {
	includeFooter bool
	maxTableRows  int // 0 renders every material
}

// NewRenderer creates a new renderer
func NewRenderer(includeFooter bool, maxTableRows int) *Renderer {
	return &Renderer{includeFooter: includeFooter, maxTableRows: maxTableRows}
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the human-readable report
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderLLMMarkdown writes an already rendered narrative
func (r *Renderer) RenderLLMMarkdown(markdown string, path string) error {
	if markdown == "" {
		return nil
	}
	return writeFile(path, []byte(markdown))
}

// Markdown renders the report body
func (r *Renderer) Markdown(report *model.Report) string {
	res := report.Result
	var b strings.Builder

	fmt.Fprintf(&b, "# Lightship GWP Report: %s\n\n", model.SubjectFromReport(report))
	fmt.Fprintf(&b, "- **Report ID:** %s\n", report.ID)
	fmt.Fprintf(&b, "- **Generated:** %s\n", report.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))
	fmt.Fprintf(&b, "- **Catalog version:** %s\n", report.CatalogVersion)
	if p := report.Project; p.Name != "" || p.VesselType != "" || p.Shipyard != "" || p.Owner != "" {
		for _, kv := range [][2]string{{"Project", p.Name}, {"Vessel type", p.VesselType}, {"Shipyard", p.Shipyard}, {"Owner", p.Owner}} {
			if kv[1] != "" {
				fmt.Fprintf(&b, "- **%s:** %s\n", kv[0], kv[1])
			}
		}
	}
	b.WriteString("\n")

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Total GWP | %s kg CO2e (%s t) |\n", num(res.TotalGWP), num(res.TotalGWP/1000))
	fmt.Fprintf(&b, "| Total weight | %s kg |\n", num(res.TotalWeight))
	fmt.Fprintf(&b, "| GWP per tonne | %s t CO2e/t |\n", num(res.GWPPerTonne))
	fmt.Fprintf(&b, "| Status | %s |\n", statusLabel(res.Status))
	fmt.Fprintf(&b, "| Identified materials | %s of %s (%.1f%%) |\n",
		humanize.Comma(int64(res.Stats.IdentifiedMaterials)), humanize.Comma(int64(res.Stats.TotalMaterials)), res.Stats.IdentificationRate)
	if res.ExceedsRegulatoryLimit {
		b.WriteString("\n> **Exceeds the regulatory limit.**\n")
	}
	b.WriteString("\n")

	b.WriteString("## Benchmarks\n\n| Benchmark | kg CO2e |\n|---|---|\n")
	fmt.Fprintf(&b, "| Best practice | %s |\n", num(res.Benchmarks.BestPractice))
	fmt.Fprintf(&b, "| Industry average | %s |\n", num(res.Benchmarks.IndustryAverage))
	fmt.Fprintf(&b, "| Regulatory limit | %s |\n\n", num(res.Benchmarks.RegulatoryLimit))

	b.WriteString("## Lifecycle Phases\n\n| Phase | kg CO2e | Ratio |\n|---|---|---|\n")
	fmt.Fprintf(&b, "| Production | %s | %.0f%% |\n", num(res.Breakdown.Production), report.Policy.ProductionRatio*100)
	fmt.Fprintf(&b, "| Transport | %s | %.0f%% |\n", num(res.Breakdown.Transport), report.Policy.TransportRatio*100)
	fmt.Fprintf(&b, "| Processing | %s | %.0f%% |\n\n", num(res.Breakdown.Processing), report.Policy.ProcessingRatio*100)

	if len(res.Categories) > 0 {
		b.WriteString("## Macro-groups\n\n| Code | Name | Items | Weight (kg) | kg CO2e | Share |\n|---|---|---|---|---|---|\n")
		for _, c := range res.Categories {
			code := c.Code
			if code == "" {
				code = "-"
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %s | %s | %.1f%% |\n", code, c.Name, c.Items, num(c.Weight), num(c.GWP), c.Percentage)
		}
		b.WriteString("\n")
	}

	if len(res.Materials) > 0 {
		b.WriteString("## Materials\n\n| # | Line | Material | Category | Quantity (kg) | Factor | kg CO2e | Share | Confidence |\n|---|---|---|---|---|---|---|---|---|\n")
		rows := res.Materials
		if r.maxTableRows > 0 && len(rows) > r.maxTableRows {
			rows = rows[:r.maxTableRows]
		}
		for i, m := range rows {
			name := "_unidentified:_ " + escapeCell(m.Item.OriginalText)
			if m.Item.Material != nil {
				name = escapeCell(m.Item.Material.Name)
			}
			category := score.UncategorizedName
			if m.Item.Category != nil {
				category = m.Item.Category.Code
			}
			factor := num(m.GWPFactor)
			if m.DefaultFactor {
				factor += "*"
			}
			fmt.Fprintf(&b, "| %d | %d | %s | %s | %s | %s | %s | %.1f%% | %.2f |\n",
				i+1, m.Item.LineNumber, name, category, num(m.Item.Quantity), factor, num(m.GWPTotal), m.Percentage, m.Item.Confidence)
		}
		if len(rows) < len(res.Materials) {
			fmt.Fprintf(&b, "\n_%d more materials omitted; see the JSON report._\n", len(res.Materials)-len(rows))
		}
		b.WriteString("\n_* default factor applied to an unidentified material._\n\n")
	}

	if len(report.Parsing) > 0 {
		b.WriteString("## Parsing\n\n| Document | Lines | Identified | Categorized | High confidence | Avg. confidence |\n|---|---|---|---|---|---|\n")
		for _, s := range report.Parsing {
			fmt.Fprintf(&b, "| %s | %d | %.1f%% | %.1f%% | %.1f%% | %.2f |\n",
				escapeCell(s.FileName), s.TotalMaterials, s.IdentificationRate, s.CategorizationRate, s.HighConfidenceRate, s.AverageConfidence)
		}
		b.WriteString("\n")
	}

	if len(report.Signals) > 0 {
		b.WriteString("## Signals\n\n")
		for _, s := range report.Signals {
			fmt.Fprintf(&b, "- %s **%s**: %s\n", severityIcon(s.Severity), s.Type, s.Description)
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("_Generated by lightship. Totals are quantity × catalog GWP factor; unidentified lines use the policy default factor. ")
		b.WriteString("Phase shares and benchmarks are fixed policy constants, not measurements._\n")
	}
	return b.String()
}

// RenderSummary prints a short console summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	res := report.Result
	fmt.Fprintf(w, "\n%s\n", model.SubjectFromReport(report))
	fmt.Fprintf(w, "  Total GWP:      %s kg CO2e\n", num(res.TotalGWP))
	fmt.Fprintf(w, "  Total weight:   %s kg\n", num(res.TotalWeight))
	fmt.Fprintf(w, "  GWP per tonne:  %s\n", num(res.GWPPerTonne))
	fmt.Fprintf(w, "  Status:         %s\n", statusLabel(res.Status))
	fmt.Fprintf(w, "  Identified:     %d/%d (%.1f%%)\n", res.Stats.IdentifiedMaterials, res.Stats.TotalMaterials, res.Stats.IdentificationRate)

	var warnings []model.Signal
	for _, s := range report.Signals {
		if s.Severity != model.SeverityInfo {
			warnings = append(warnings, s)
		}
	}
	if len(warnings) > 0 {
		fmt.Fprintln(w, "  Signals:")
		for _, s := range warnings {
			fmt.Fprintf(w, "    %s %s\n", severityIcon(s.Severity), s.Description)
		}
	}
	if report.LLM != nil {
		for _, warn := range report.LLM.Warnings {
			fmt.Fprintf(w, "  LLM: %s\n", warn)
		}
	}
}

func num(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

func statusLabel(s model.BenchmarkStatus) string {
	switch s {
	case model.StatusExcellent:
		return "excellent (below best practice)"
	case model.StatusGood:
		return "good (below industry average)"
	case model.StatusNeedsImprovement:
		return "needs improvement"
	default:
		return "unknown"
	}
}

func severityIcon(s model.SignalSeverity) string {
	switch s {
	case model.SeverityCritical:
		return "✗"
	case model.SeverityWarning:
		return "⚠"
	default:
		return "•"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

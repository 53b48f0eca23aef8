package llm

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/lightship/internal/logging"
	"github.com/ppiankov/lightship/internal/model"
)

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Summarize generates a narrative for the report in strict sources mode
	Summarize(ctx context.Context, req SummarizeRequest) (*SummarizeResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// SummarizeRequest contains the input for LLM summarization
type SummarizeRequest struct {
	// Report is the computed GWP report; the narrative may not change its numbers
	Report model.Report

	// SourceURLs is the allowlist of URLs the LLM may cite.
	// Built from the origins of the parsed documents.
	SourceURLs []string

	// Prompt is an optional custom prompt (if empty, use default)
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// SummarizeResponse contains the LLM's summary output
type SummarizeResponse struct {
	Summary    string
	CitedURLs  []string // URLs found in the summary, verified against the allowlist
	Model      string
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	Provider string // "openai", "anthropic", "ollama", "" (disabled)
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  int // seconds

	// StrictSources rejects summaries citing URLs outside the allowlist
	StrictSources bool

	MaxTokens int

	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string

	Logger *logging.Logger
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:       30,
		StrictSources: true,
		MaxTokens:     1000,
	}
}

// ErrCitationLeak is returned when a strict-mode summary cites a URL outside the allowlist
var ErrCitationLeak = errors.New("citation leak")

const systemPrompt = "You summarize lightship vessel GWP reports. You never change, round differently or recompute the reported numbers, and you cite only allowed sources."

// BuildPrompt constructs the default prompt for a GWP report
func BuildPrompt(report model.Report, sourceURLs []string) string {
	r := report.Result

	var b strings.Builder
	fmt.Fprintf(&b, `You are summarizing a lightship report: the embodied carbon (GWP, kg CO2e) of a vessel's material inventory.
The figures below were computed deterministically. Treat them as final.

RULES:
1. You may ONLY cite URLs from this list:
%s

2. Do not invent materials, factors or totals. Quote numbers exactly as given.
3. Point out data quality issues (unidentified lines, default factors) plainly.
4. Never claim regulatory compliance; only restate the benchmark comparison.

Report:
- Subject: %s
- Documents: %d
- Total GWP: %.2f kg CO2e
- Total weight: %.2f kg
- GWP per tonne: %.4f
- Benchmark status: %s (best practice %.0f, industry average %.0f, regulatory limit %.0f)
- Identified materials: %d of %d

Top contributors:
`, joinURLs(sourceURLs), model.SubjectFromReport(&report), len(report.Documents),
		r.TotalGWP, r.TotalWeight, r.GWPPerTonne, r.Status,
		r.Benchmarks.BestPractice, r.Benchmarks.IndustryAverage, r.Benchmarks.RegulatoryLimit,
		r.Stats.IdentifiedMaterials, r.Stats.TotalMaterials)

	for i, m := range r.Materials {
		if i >= 5 {
			break
		}
		name := "unidentified: " + m.Item.OriginalText
		if m.Item.Material != nil {
			name = m.Item.Material.Name
		}
		fmt.Fprintf(&b, "- %s: %.2f kg CO2e (%.1f%%)\n", name, m.GWPTotal, m.Percentage)
	}

	if len(report.Signals) > 0 {
		b.WriteString("\nSignals:\n")
		for i, s := range report.Signals {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s: %s\n", s.Severity, s.Type, s.Description)
		}
	}

	b.WriteString("\nProvide a 3-4 sentence summary of where the emissions come from and how reliable the inventory is.")
	return b.String()
}

func joinURLs(urls []string) string {
	if len(urls) == 0 {
		return "(No source URLs available)"
	}
	var b strings.Builder
	for i, u := range urls {
		if i >= 20 {
			fmt.Fprintf(&b, "\n... and %d more URLs", len(urls)-20)
			break
		}
		b.WriteString("\n- ")
		b.WriteString(u)
	}
	return b.String()
}

// resolveRequest fills prompt, model and token limit from request then config
func resolveRequest(req SummarizeRequest, cfg Config, defaultModel string) (prompt, modelName string, maxTokens int) {
	prompt = req.Prompt
	if prompt == "" {
		prompt = BuildPrompt(req.Report, req.SourceURLs)
	}

	modelName = req.Model
	if modelName == "" {
		modelName = cfg.Model
	}
	if modelName == "" {
		modelName = defaultModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 1000
	}
	return prompt, modelName, maxTokens
}

// checkCitations extracts URLs from the summary and, in strict mode,
// rejects any that are not on the allowlist
func checkCitations(summary string, allowed []string, strict bool) ([]string, error) {
	cited := extractURLs(summary)
	if !strict {
		return cited, nil
	}
	for _, u := range cited {
		if !contains(allowed, u) {
			return nil, fmt.Errorf("%w: LLM cited disallowed URL: %s", ErrCitationLeak, u)
		}
	}
	return cited, nil
}

var urlPattern = regexp.MustCompile(`https?://[^\s\)\]>"]+`)

// extractURLs returns the unique http(s) URLs in text
func extractURLs(text string) []string {
	seen := make(map[string]bool)
	var unique []string
	for _, u := range urlPattern.FindAllString(text, -1) {
		u = strings.TrimRight(u, ".,;:!?")
		if !seen[u] {
			seen[u] = true
			unique = append(unique, u)
		}
	}
	return unique
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}

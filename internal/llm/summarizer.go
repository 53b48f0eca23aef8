package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/lightship/internal/logging"
	"github.com/ppiankov/lightship/internal/model"
)

// Summarizer produces the optional narrative for a finished report.
// It runs after the calculation and its output never feeds back into it.
type Summarizer struct {
	provider Provider
	config   Config
	log      *logging.Logger
}

// NewSummarizer creates a summarizer; an empty provider yields a disabled one
func NewSummarizer(config Config) (*Summarizer, error) {
	provider, err := NewProvider(config)
	if err != nil {
		return nil, err
	}
	return &Summarizer{
		provider: provider,
		config:   config,
		log:      logging.OrNop(config.Logger),
	}, nil
}

// IsEnabled reports whether a provider is configured
func (s *Summarizer) IsEnabled() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (s *Summarizer) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.Name()
}

// GenerateSummary asks the provider for a narrative.
// Provider failures are reported as warnings on the summary, not as errors,
// so a broken LLM never fails a report. Returns nil, nil when disabled.
func (s *Summarizer) GenerateSummary(ctx context.Context, report model.Report) (*model.LLMSummary, error) {
	if s.provider == nil {
		return nil, nil
	}
	log := logging.OrNop(s.log).With("provider", s.provider.Name())

	if !s.provider.IsAvailable(ctx) {
		log.Warn("provider not available, skipping summary")
		return &model.LLMSummary{
			Enabled:       false,
			Provider:      s.provider.Name(),
			StrictSources: s.config.StrictSources,
			Warnings:      []string{fmt.Sprintf("LLM provider %s is not available", s.provider.Name())},
		}, nil
	}

	sources := SourceURLs(report)
	resp, err := s.provider.Summarize(ctx, SummarizeRequest{
		Report:     report,
		SourceURLs: sources,
		Model:      s.config.Model,
		MaxTokens:  s.config.MaxTokens,
	})
	if err != nil {
		log.Warn("summary generation failed", "error", err)
		return &model.LLMSummary{
			Enabled:       true,
			Provider:      s.provider.Name(),
			Model:         s.config.Model,
			StrictSources: s.config.StrictSources,
			Warnings:      []string{fmt.Sprintf("LLM summary generation failed: %v", err)},
		}, nil
	}

	log.Debug("summary generated", "model", resp.Model, "tokens", resp.TokensUsed, "citations", len(resp.CitedURLs))
	return &model.LLMSummary{
		Enabled:       true,
		Provider:      s.provider.Name(),
		Model:         resp.Model,
		StrictSources: s.config.StrictSources,
		SummaryMD:     resp.Summary,
		Warnings: []string{
			fmt.Sprintf("Tokens used: %d", resp.TokensUsed),
			fmt.Sprintf("Verified %d citations against %d allowed sources", len(resp.CitedURLs), len(sources)),
		},
	}, nil
}

// SourceURLs returns the unique remote origins of the report's documents
func SourceURLs(report model.Report) []string {
	seen := make(map[string]bool)
	var urls []string
	for _, doc := range report.Documents {
		origin := doc.Metadata.Origin
		if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			continue
		}
		if !seen[origin] {
			seen[origin] = true
			urls = append(urls, origin)
		}
	}
	return urls
}

// RenderSeparateMarkdown renders the narrative as its own document,
// kept apart from the computed report
func RenderSeparateMarkdown(summary *model.LLMSummary) string {
	if summary == nil || !summary.Enabled {
		return ""
	}

	var b strings.Builder
	b.WriteString("# LLM Summary\n\n")
	b.WriteString("> **GENERATED CONTENT.** This narrative was written by a language model from the computed report.\n")
	b.WriteString("> All totals, factors and benchmark statuses were determined independently of it.\n\n")

	fmt.Fprintf(&b, "- **Provider:** %s\n", summary.Provider)
	if summary.Model != "" {
		fmt.Fprintf(&b, "- **Model:** %s\n", summary.Model)
	}
	fmt.Fprintf(&b, "- **Strict Sources Mode:** %t\n\n", summary.StrictSources)

	b.WriteString("## Summary\n\n")
	if summary.SummaryMD == "" {
		b.WriteString("_No summary generated._\n")
	} else {
		b.WriteString(summary.SummaryMD)
		b.WriteString("\n")
	}

	if len(summary.Warnings) > 0 {
		b.WriteString("\n## Notes\n\n")
		for _, w := range summary.Warnings {
			fmt.Fprintf(&b, "- %s\n", w)
		}
	}
	return b.String()
}

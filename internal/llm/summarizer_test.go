package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/ppiankov/lightship/internal/model"
)

func TestNewSummarizer_DisabledProvider(t *testing.T) {
	summarizer, err := NewSummarizer(Config{Provider: ""})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if summarizer.IsEnabled() {
		t.Error("Expected summarizer to be disabled")
	}
	if summarizer.ProviderName() != "" {
		t.Error("Expected empty provider name when disabled")
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil || summary != nil {
		t.Errorf("Expected nil summary and no error when disabled, got %v, %v", summary, err)
	}
}

func TestNewSummarizer_UnknownProvider(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "watson"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}

func TestNewSummarizer_MissingKey(t *testing.T) {
	if _, err := NewSummarizer(Config{Provider: "openai"}); err == nil {
		t.Error("Expected error when the OpenAI key is missing")
	}
}

func TestSummarizer_GenerateSummary_ProviderUnavailable(t *testing.T) {
	summarizer := &Summarizer{
		provider: &mockProvider{name: "test-provider", available: false},
		config:   Config{StrictSources: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil {
		t.Fatal("Expected summary object with warnings")
	}
	if summary.Enabled {
		t.Error("Expected summary to be marked as disabled")
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "not available") {
		t.Errorf("Expected unavailability warning, got %v", summary.Warnings)
	}
}

func TestSummarizer_GenerateSummary_Success(t *testing.T) {
	provider := &mockProvider{
		name:      "test-provider",
		available: true,
		response: &SummarizeResponse{
			Summary:    "Steel dominates. Source: https://yard.example.com/fincantieri.csv",
			CitedURLs:  []string{"https://yard.example.com/fincantieri.csv"},
			Model:      "test-model",
			TokensUsed: 150,
		},
	}
	summarizer := &Summarizer{
		provider: provider,
		config:   Config{Model: "test-model", StrictSources: true, MaxTokens: 400},
	}

	report := testReport()
	summary, err := summarizer.GenerateSummary(context.Background(), report)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !summary.Enabled || summary.Provider != "test-provider" || summary.Model != "test-model" {
		t.Errorf("Unexpected summary header: %+v", summary)
	}
	if !summary.StrictSources {
		t.Error("Expected strict sources mode recorded")
	}
	if summary.SummaryMD != provider.response.Summary {
		t.Errorf("Expected summary text to match, got %q", summary.SummaryMD)
	}

	if len(provider.lastReq.SourceURLs) != 1 || provider.lastReq.SourceURLs[0] != "https://yard.example.com/fincantieri.csv" {
		t.Errorf("Expected deduplicated remote origins as allowlist, got %v", provider.lastReq.SourceURLs)
	}
	if provider.lastReq.MaxTokens != 400 {
		t.Errorf("Expected max tokens 400, got %d", provider.lastReq.MaxTokens)
	}

	joined := strings.Join(summary.Warnings, "\n")
	if !strings.Contains(joined, "Tokens used: 150") {
		t.Errorf("Expected token usage note, got %v", summary.Warnings)
	}
	if !strings.Contains(joined, "Verified 1 citations") {
		t.Errorf("Expected citation verification note, got %v", summary.Warnings)
	}

	// The narrative must not alter the computed result
	if report.Result.TotalGWP != 185000 {
		t.Errorf("Expected total untouched, got %v", report.Result.TotalGWP)
	}
}

func TestSummarizer_GenerateSummary_ProviderError(t *testing.T) {
	summarizer := &Summarizer{
		provider: &mockProvider{name: "test-provider", available: true, err: &mockError{msg: "API rate limit exceeded"}},
		config:   Config{Model: "test-model", StrictSources: true},
	}

	summary, err := summarizer.GenerateSummary(context.Background(), testReport())
	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if summary == nil || !summary.Enabled {
		t.Fatal("Expected enabled summary carrying the failure")
	}
	if len(summary.Warnings) != 1 || !strings.Contains(summary.Warnings[0], "failed") || !strings.Contains(summary.Warnings[0], "rate limit") {
		t.Errorf("Expected warning to mention error: %v", summary.Warnings)
	}
	if summary.SummaryMD != "" {
		t.Errorf("Expected no summary text, got %q", summary.SummaryMD)
	}
}

func TestRenderSeparateMarkdown_DisabledOrNil(t *testing.T) {
	if md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: false}); md != "" {
		t.Error("Expected empty markdown when disabled")
	}
	if md := RenderSeparateMarkdown(nil); md != "" {
		t.Error("Expected empty markdown when nil")
	}
}

func TestRenderSeparateMarkdown_Success(t *testing.T) {
	md := RenderSeparateMarkdown(&model.LLMSummary{
		Enabled:       true,
		Provider:      "openai",
		Model:         "gpt-4o-mini",
		StrictSources: true,
		SummaryMD:     "Steel accounts for most of the footprint.",
		Warnings:      []string{"Tokens used: 150", "Verified 1 citations against 1 allowed sources"},
	})

	for _, section := range []string{
		"# LLM Summary",
		"GENERATED CONTENT",
		"**Provider:** openai",
		"**Model:** gpt-4o-mini",
		"**Strict Sources Mode:** true",
		"Steel accounts for most of the footprint.",
		"## Notes",
		"Tokens used: 150",
		"determined independently",
	} {
		if !strings.Contains(md, section) {
			t.Errorf("Expected markdown to contain %q", section)
		}
	}
}

func TestRenderSeparateMarkdown_NoSummary(t *testing.T) {
	md := RenderSeparateMarkdown(&model.LLMSummary{Enabled: true, Provider: "test-provider"})
	if !strings.Contains(md, "No summary generated") {
		t.Error("Expected message about no summary")
	}
	if strings.Contains(md, "## Notes") {
		t.Error("Expected no notes section without warnings")
	}
}

func TestBuildPrompt_BasicStructure(t *testing.T) {
	prompt := BuildPrompt(testReport(), []string{"https://yard.example.com/fincantieri.csv"})

	for _, expected := range []string{
		"MV Aurora",
		"Documents: 3",
		"Total GWP: 185000.00 kg CO2e",
		"Benchmark status: excellent",
		"- https://yard.example.com/fincantieri.csv",
		"Acciaio al carbonio: 185000.00 kg CO2e (100.0%)",
		"[info] identification_rate",
	} {
		if !strings.Contains(prompt, expected) {
			t.Errorf("Expected prompt to contain %q", expected)
		}
	}
}

func TestBuildPrompt_UnidentifiedContributor(t *testing.T) {
	report := testReport()
	report.Result.Materials[0].Item.Material = nil
	prompt := BuildPrompt(report, nil)

	if !strings.Contains(prompt, "unidentified: Acciaio 100 t") {
		t.Error("Expected unidentified lines quoted by original text")
	}
	if !strings.Contains(prompt, "No source URLs available") {
		t.Error("Expected note about missing sources")
	}
}

func TestJoinURLs_Truncates(t *testing.T) {
	urls := make([]string, 25)
	for i := range urls {
		urls[i] = "https://yard.example.com/x"
	}
	if !strings.Contains(joinURLs(urls), "... and 5 more URLs") {
		t.Error("Expected truncation note after 20 URLs")
	}
}

func TestCheckCitations(t *testing.T) {
	allowed := []string{"https://yard.example.com/a.csv"}

	cited, err := checkCitations("See https://yard.example.com/a.csv.", allowed, true)
	if err != nil || len(cited) != 1 {
		t.Errorf("Expected allowed citation, got %v (err %v)", cited, err)
	}

	if _, err := checkCitations("See https://elsewhere.example.org/x", allowed, true); err == nil {
		t.Error("Expected citation leak in strict mode")
	}

	if cited, err := checkCitations("See https://elsewhere.example.org/x", allowed, false); err != nil || len(cited) != 1 {
		t.Errorf("Expected leak tolerated outside strict mode, got %v (err %v)", cited, err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Provider != "" {
		t.Errorf("Expected disabled provider by default, got %q", cfg.Provider)
	}
	if !cfg.StrictSources {
		t.Error("Expected strict sources by default")
	}
	if cfg.Timeout != 30 || cfg.MaxTokens != 1000 {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(
		model.LLMConfig{Provider: "ollama", Model: "llama3.1", StrictSources: true, Timeout: 10},
		model.HTTPConfig{HTTPSProxy: "http://proxy:3128", NoProxy: "localhost"},
	)
	if cfg.Provider != "ollama" || cfg.Model != "llama3.1" || !cfg.StrictSources || cfg.Timeout != 10 {
		t.Errorf("Unexpected conversion: %+v", cfg)
	}
	if cfg.HTTPSProxy != "http://proxy:3128" || cfg.NoProxy != "localhost" {
		t.Errorf("Expected proxy settings carried over, got %+v", cfg)
	}
}

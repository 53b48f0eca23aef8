package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/lightship/internal/cache"
	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/extract/adapters"
	"github.com/ppiankov/lightship/internal/llm"
	"github.com/ppiankov/lightship/internal/logging"
	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/util"
	"github.com/ppiankov/lightship/internal/worker"
)

// Pipeline holds the long-lived collaborators shared by every session:
// the catalog manager, source adapters, fetcher, renderer and the optional summarizer.
type Pipeline struct {
	config     *model.Config
	catalog    *catalog.Manager
	adapters   *adapters.Registry
	fetcher    *Fetcher
	docCache   cache.Cache
	renderer   *Renderer
	summarizer *llm.Summarizer // nil when disabled
	log        *logging.Logger
	clock      func() time.Time
	out        io.Writer
}

// NewPipeline wires a pipeline from configuration
func NewPipeline(cfg *model.Config, mgr *catalog.Manager, log *logging.Logger) *Pipeline {
	log = logging.OrNop(log)
	c := cache.FromConfig(cfg.Cache)

	fetcher := NewFetcher(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.HTTP.InsecureTLS,
		cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy).
		WithLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)).
		WithLogger(log)
	if c != nil {
		fetcher.WithCache(c)
	}
	if cfg.HTTP.RespectRobots {
		fetcher.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout,
			util.NewProxyFunc(cfg.HTTP.HTTPProxy, cfg.HTTP.HTTPSProxy, cfg.HTTP.NoProxy)))
	}

	var summarizer *llm.Summarizer
	if cfg.LLM.Provider != "" {
		llmConfig := llm.ConfigFromModel(cfg.LLM, cfg.HTTP)
		llmConfig.Logger = log
		s, err := llm.NewSummarizer(llmConfig)
		if err != nil {
			log.Warn("failed to initialize LLM provider", "provider", cfg.LLM.Provider, "error", err)
		} else {
			summarizer = s
		}
	}

	return &Pipeline{
		config:     cfg,
		catalog:    mgr,
		adapters:   adapters.NewRegistry(),
		fetcher:    fetcher,
		docCache:   c,
		renderer:   NewRenderer(cfg.Output.IncludeFooter, cfg.Output.MaxTableRows),
		summarizer: summarizer,
		log:        log,
		clock:      time.Now,
		out:        os.Stdout,
	}
}

// SetClock replaces the clock used for parse and report timestamps
func (p *Pipeline) SetClock(clock func() time.Time) {
	if clock != nil {
		p.clock = clock
	}
}

// SetOutput redirects the console summary
func (p *Pipeline) SetOutput(w io.Writer) {
	p.out = w
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() *model.Config {
	return p.config
}

// Catalog returns the catalog manager
func (p *Pipeline) Catalog() *catalog.Manager {
	return p.catalog
}

// Fetcher returns the remote export fetcher
func (p *Pipeline) Fetcher() *Fetcher {
	return p.fetcher
}

// NewSession captures the current catalog snapshot. The session keeps using it
// until a new session is created after an explicit catalog refresh.
func (p *Pipeline) NewSession(ctx context.Context) (*Session, error) {
	snap, err := p.catalog.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return newSession(p, snap), nil
}

// Summarize attaches the optional narrative. It runs after the calculation
// and never changes the result.
func (p *Pipeline) Summarize(ctx context.Context, report *model.Report) {
	if p.summarizer == nil || !p.summarizer.IsEnabled() {
		return
	}
	summary, err := p.summarizer.GenerateSummary(ctx, *report)
	if err != nil {
		p.log.Warn("LLM summary generation failed", "error", err)
		return
	}
	if summary != nil {
		report.LLM = summary
	}
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if report.LLM != nil && report.LLM.Enabled && mdPath != "" {
		llmPath := strings.TrimSuffix(mdPath, ".md") + ".llm.md"
		if err := p.renderer.RenderLLMMarkdown(llm.RenderSeparateMarkdown(report.LLM), llmPath); err != nil {
			p.log.Warn("failed to write LLM summary", "path", llmPath, "error", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote LLM Summary: %s\n", llmPath)
		}
	}

	p.renderer.RenderSummary(p.out, report)
	return nil
}

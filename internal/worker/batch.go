package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/lightship/internal/logging"
	"github.com/ppiankov/lightship/internal/model"
)

// DocumentParser parses one source (file path or URL) into a document
type DocumentParser interface {
	ParseSource(ctx context.Context, source string) (*model.ParsedDocument, error)
}

// ParseJob parses a single source
type ParseJob struct {
	Index  int
	Source string
	Parser DocumentParser
}

// Execute executes the parse job
func (j *ParseJob) Execute(ctx context.Context) Result {
	start := time.Now()
	doc, err := j.Parser.ParseSource(ctx, j.Source)
	return &ParseResult{
		Index:    j.Index,
		Source:   j.Source,
		Document: doc,
		Error:    err,
		Duration: time.Since(start),
	}
}

// ParseResult is the outcome of one parse job
type ParseResult struct {
	Index    int
	Source   string
	Document *model.ParsedDocument
	Error    error
	Duration time.Duration
}

// GetError returns the error from the parse result
func (r *ParseResult) GetError() error {
	return r.Error
}

// BatchProcessor parses many sources concurrently
type BatchProcessor struct {
	parser      DocumentParser
	concurrency int
	log         *logging.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(parser DocumentParser, concurrency int, log *logging.Logger) *BatchProcessor {
	return &BatchProcessor{
		parser:      parser,
		concurrency: concurrency,
		log:         logging.OrNop(log),
	}
}

// ProcessSources parses every source and returns one result per source, in input order.
// A failing source does not stop the others; sources skipped by cancellation carry ctx.Err().
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*ParseResult {
	out := make([]*ParseResult, len(sources))
	if len(sources) == 0 {
		return out
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for i, src := range sources {
		if !pool.Submit(&ParseJob{Index: i, Source: src, Parser: b.parser}) {
			break
		}
	}

	for _, r := range pool.Wait() {
		pr := r.(*ParseResult)
		out[pr.Index] = pr
		if pr.Error != nil {
			b.log.Warn("parse failed", "source", pr.Source, "error", pr.Error)
		} else {
			b.log.Debug("parsed", "source", pr.Source, "materials", len(pr.Document.Materials), "duration", pr.Duration)
		}
	}

	for i, src := range sources {
		if out[i] == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			out[i] = &ParseResult{Index: i, Source: src, Error: err}
		}
	}
	return out
}

// ProcessFile reads a source list and parses every entry
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*ParseResult, error) {
	sources, err := ReadSourcesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}
	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads one source per line, skipping blanks and # comments.
// Relative file paths are resolved against the list's directory; duplicates are dropped.
func ReadSourcesFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	baseDir := filepath.Dir(listPath)
	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.Contains(line, "://") && !filepath.IsAbs(line) {
			line = filepath.Join(baseDir, line)
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return sources, nil
}

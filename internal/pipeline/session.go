package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/lightship/internal/assemble"
	"github.com/ppiankov/lightship/internal/cache"
	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/extract"
	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/score"
	"github.com/ppiankov/lightship/internal/validate"
)

// Session parses documents against one immutable catalog snapshot.
// It is safe for concurrent use by batch workers.
type Session struct {
	p         *Pipeline
	snap      *catalog.Snapshot
	opts      extract.ParserOptions
	parser    *extract.LineParser
	assembler *assemble.Assembler
	cacheSalt string
}

func newSession(p *Pipeline, snap *catalog.Snapshot) *Session {
	opts := extract.ParserOptionsFromConfig(p.config.Parser)
	return &Session{
		p:         p,
		snap:      snap,
		opts:      opts,
		parser:    snap.NewParser(opts),
		assembler: assemble.NewAssembler(p.clock),
		cacheSalt: fmt.Sprintf("%s|%d|%d|%g", snap.Version(), opts.MinLineLength, opts.ContextWindow, opts.CategoryConfidence),
	}
}

// Snapshot returns the catalog snapshot this session matches against
func (s *Session) Snapshot() *catalog.Snapshot {
	return s.snap
}

// ParseText parses already-decoded inventory text. It never fails:
// unrecognized lines are skipped and empty text yields an empty document.
func (s *Session) ParseText(text, name string) model.ParsedDocument {
	return s.parse(text, name, model.DocumentMetadata{Source: "text"})
}

// ParseFile reads a local export and decodes it with the matching adapter
func (s *Session) ParseFile(ctx context.Context, path string) (*model.ParsedDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	adapter := s.p.adapters.FindAdapter(path, "")
	text, err := adapter.ExtractText(data)
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", path, adapter.Name(), err)
	}

	doc := s.parse(text, filepath.Base(path), model.DocumentMetadata{Source: adapter.Name(), Origin: path})
	return &doc, nil
}

// ParseURL fetches a remote export and decodes it with the matching adapter
func (s *Session) ParseURL(ctx context.Context, rawURL string) (*model.ParsedDocument, error) {
	result, err := s.p.fetcher.FetchWithRetry(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	adapter := s.p.adapters.FindAdapter(result.Name, result.Meta.ContentType)
	text, err := adapter.ExtractText(result.Body)
	if err != nil {
		return nil, fmt.Errorf("extract %s (%s): %w", rawURL, adapter.Name(), err)
	}

	s.p.log.Debug("fetched export", "url", result.FinalURL, "adapter", adapter.Name(), "bytes", len(result.Body), "from_cache", result.Meta.FromCache)
	doc := s.parse(text, result.Name, model.DocumentMetadata{Source: adapter.Name(), Origin: result.FinalURL})
	return &doc, nil
}

// ParseSource parses a file path or an http(s) URL
func (s *Session) ParseSource(ctx context.Context, source string) (*model.ParsedDocument, error) {
	if IsRemote(source) {
		return s.ParseURL(ctx, source)
	}
	return s.ParseFile(ctx, source)
}

// Review lists the items of doc that need human review
func (s *Session) Review(doc model.ParsedDocument) []validate.Item {
	return validate.NewReviewer(s.p.config.Matcher, s.opts).Queue(doc, s.snap)
}

// ApplyCorrections applies reviewed corrections and reassembles the document
func (s *Session) ApplyCorrections(doc model.ParsedDocument, c *validate.Corrections) (model.ParsedDocument, validate.ApplyResult, error) {
	return validate.Apply(doc, s.snap, c)
}

// BuildReport aggregates the documents into a report. The optional LLM
// narrative is attached last and does not influence the computed result.
func (s *Session) BuildReport(ctx context.Context, docs []model.ParsedDocument, project model.Project) *model.Report {
	if docs == nil {
		docs = []model.ParsedDocument{}
	}
	if project.Shipyard == "" && len(docs) == 1 {
		project.Shipyard = docs[0].Metadata.Shipyard
	}

	aggregator := score.NewAggregator(s.p.config.GWP)
	result := aggregator.AggregateDocuments(docs)

	parsing := make([]model.ParsingStats, 0, len(docs))
	for _, d := range docs {
		parsing = append(parsing, assemble.Stats(d))
	}

	signals := score.NewScorer(s.p.config.Matcher.ReviewThreshold).Signals(docs, result)
	if signals == nil {
		signals = []model.Signal{}
	}

	report := &model.Report{
		ID:             uuid.NewString(),
		GeneratedAt:    s.p.clock().UTC(),
		Project:        project,
		CatalogVersion: s.snap.Version(),
		Documents:      docs,
		Parsing:        parsing,
		Result:         result,
		Signals:        signals,
		Policy:         aggregator.Policy(),
	}

	s.p.Summarize(ctx, report)
	return report
}

// parse runs the line parser (or reuses a cached run for identical text
// and catalog) and assembles the document
func (s *Session) parse(text, name string, meta model.DocumentMetadata) model.ParsedDocument {
	meta.CatalogVersion = s.snap.Version()
	return s.assembler.Assemble(name, s.parseLines(text), meta)
}

func (s *Session) parseLines(text string) []model.ParsedMaterial {
	c := s.p.docCache
	if c == nil {
		return s.parser.Parse(text)
	}

	key := cache.DocumentKey([]byte(text), s.cacheSalt)
	if data, ok := c.Get(key); ok {
		var cached []model.ParsedMaterial
		if err := json.Unmarshal(data, &cached); err == nil && cached != nil {
			return cached
		}
	}

	materials := s.parser.Parse(text)
	if data, err := json.Marshal(materials); err == nil {
		if err := c.Set(key, data, 0); err != nil {
			s.p.log.Warn("document cache write failed", "error", err)
		}
	}
	return materials
}

// IsRemote reports whether source is an http(s) URL
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

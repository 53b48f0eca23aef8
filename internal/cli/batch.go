package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/pipeline"
	"github.com/ppiankov/lightship/internal/watch"
	"github.com/ppiankov/lightship/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	combined     bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <list-file|dir>",
	Short: "Parse many material exports in parallel",
	Long: `Batch parses multiple exports concurrently:
- Read sources from a list file (one path or URL per line, # comments)
  or take every export file in a directory
- Parse sources in parallel with configurable worker count
- Generate an individual report for each source
- Optionally aggregate all documents into one combined report

Example:
  lightship batch exports.txt
  lightship batch ./exports --concurrency 8 --output-dir ./reports
  lightship batch exports.txt --combined --project "MV Aurora"`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./lightship-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&combined, "combined", false, "also write one report across all documents")
	batchCmd.Flags().StringVar(&projectName, "project", "", "project name recorded on the combined report")
	batchCmd.Flags().StringVar(&vesselType, "vessel-type", "", "vessel type recorded on the reports")

	addSourceFlags(batchCmd)
	addLLMFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	e, err := newEnv(ctx, func(cfg *model.Config) {
		applySourceFlags(cfg)
		if cmd.Flags().Changed("concurrency") || cfg.Concurrency.Workers <= 0 {
			cfg.Concurrency.Workers = concurrency
		}
	})
	if err != nil {
		return err
	}
	defer e.Close()

	workers := e.cfg.Concurrency.Workers

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Lightship Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input:        %s\n", input)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	if e.cfg.LLM.Provider != "" {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", e.cfg.LLM.Provider, e.cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	sources, err := collectSources(input)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		return fmt.Errorf("no sources found in %s", input)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One session for the whole batch so every document sees the same catalog
	session, err := e.pipeline.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	fmt.Fprintf(os.Stderr, "✓ Loaded %d sources\n", len(sources))
	fmt.Fprintf(os.Stderr, "⚙️  Parsing with %d workers...\n\n", workers)

	processor := worker.NewBatchProcessor(session, workers, e.log)
	results := processor.ProcessSources(ctx, sources)

	successCount, failureCount := 0, 0
	docs := make([]model.ParsedDocument, 0, len(results))
	usedNames := make(map[string]int)

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, result.Error)
			continue
		}

		doc := *result.Document
		docs = append(docs, doc)

		report := session.BuildReport(ctx, []model.ParsedDocument{doc}, model.Project{VesselType: vesselType})
		slug := uniqueSlug(usedNames, sanitizeFilename(doc.FileName))
		if err := writeReports(e.pipeline, report, outputDir, slug); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Source, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (%s kg CO2e, %s)\n", doc.FileName, formatKg(report.Result.TotalGWP), report.Result.Status)
	}

	if combined && len(docs) > 0 {
		report := session.BuildReport(ctx, docs, model.Project{Name: projectName, VesselType: vesselType})
		if err := writeReports(e.pipeline, report, outputDir, "combined"); err != nil {
			fmt.Fprintf(os.Stderr, "✗ combined report: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "✓ combined (%d documents, %s kg CO2e)\n", len(docs), formatKg(report.Result.TotalGWP))
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d sources\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if successCount == 0 {
		return fmt.Errorf("all %d sources failed", len(results))
	}
	return nil
}

// collectSources reads a source list file, or lists export files when
// input is a directory
func collectSources(input string) ([]string, error) {
	info, err := os.Stat(input)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	if !info.IsDir() {
		return worker.ReadSourcesFromFile(input)
	}

	entries, err := os.ReadDir(input)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	exts := make(map[string]bool, len(watch.DefaultExtensions))
	for _, ext := range watch.DefaultExtensions {
		exts[ext] = true
	}

	var sources []string
	for _, entry := range entries {
		if entry.IsDir() || !exts[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		sources = append(sources, filepath.Join(input, entry.Name()))
	}
	sort.Strings(sources)
	return sources, nil
}

// writeReports renders <slug>.json and <slug>.md into dir
func writeReports(p *pipeline.Pipeline, report *model.Report, dir, slug string) error {
	jsonPath := filepath.Join(dir, slug+".json")
	mdPath := filepath.Join(dir, slug+".md")
	if err := p.RenderReport(report, jsonPath, mdPath, verbose); err != nil {
		return err
	}
	return nil
}

// sanitizeFilename turns a document name into a safe report file stem
func sanitizeFilename(s string) string {
	s = strings.TrimSuffix(s, filepath.Ext(s))

	replacer := strings.NewReplacer(
		"/", "_",
		"\\", "_",
		":", "_",
		"*", "_",
		"?", "_",
		"\"", "_",
		"<", "_",
		">", "_",
		"|", "_",
		" ", "-",
	)
	s = replacer.Replace(strings.TrimSpace(s))

	// Limit length
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" || s == "." || s == ".." {
		s = "document"
	}
	return s
}

// uniqueSlug suffixes repeated stems so reports never overwrite each other
func uniqueSlug(used map[string]int, slug string) string {
	n := used[slug]
	used[slug] = n + 1
	if n == 0 {
		return slug
	}
	return fmt.Sprintf("%s-%d", slug, n+1)
}

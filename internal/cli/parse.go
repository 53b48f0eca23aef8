package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/validate"
)

var (
	outJSON         string
	outMD           string
	parseTimeout    time.Duration
	userAgent       string
	maxBytes        int64
	noCache         bool
	noFooter        bool
	insecureTLS     bool
	catalogPath     string
	correctionsPath string
	projectName     string
	vesselType      string
	shipyard        string
	owner           string
	llmProvider     string
	llmModel        string
)

// parseCmd represents the parse command
var parseCmd = &cobra.Command{
	Use:   "parse <file|url>",
	Short: "Parse one material export and estimate its GWP",
	Long: `Parse reads a single material inventory export and:
- Recognizes materials, quantities and macro-group markers line by line
- Matches materials against the catalog and flags unidentified lines
- Computes per-material, per-phase and per-macro-group GWP
- Classifies the total against the configured benchmarks
- Writes JSON and optional Markdown reports

Example:
  lightship parse fincantieri.txt
  lightship parse export.csv --json report.json --md report.md
  lightship parse https://yard.example.com/exports/hull.html --project "MV Aurora"
  lightship parse export.csv --corrections reviewed.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)

	// Output flags
	parseCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	parseCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	parseCmd.Flags().StringVar(&correctionsPath, "corrections", "", "YAML corrections file from a review (optional)")

	// Project flags
	parseCmd.Flags().StringVar(&projectName, "project", "", "project name recorded on the report")
	parseCmd.Flags().StringVar(&vesselType, "vessel-type", "", "vessel type recorded on the report")
	parseCmd.Flags().StringVar(&shipyard, "shipyard", "", "shipyard (default: derived from the file name)")
	parseCmd.Flags().StringVar(&owner, "owner", "", "owner recorded on the report")

	addSourceFlags(parseCmd)
	parseCmd.Flags().DurationVar(&parseTimeout, "timeout", time.Minute, "overall timeout")
	addLLMFlags(parseCmd)
}

// addSourceFlags registers the catalog and fetch flags shared by processing commands
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "catalog file (.yaml/.yml or .db/.sqlite) overriding the configured store")
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent for URL sources")
	cmd.Flags().Int64Var(&maxBytes, "max-bytes", 0, "max response bytes to read from URL sources")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetch and parse)")
	cmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	cmd.Flags().BoolVar(&insecureTLS, "insecure", false, "skip TLS certificate verification (use for self-signed certs)")
}

// addLLMFlags registers the optional narrative summary flags
func addLLMFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider for a narrative summary (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

// applySourceFlags overlays flag values on the loaded configuration
func applySourceFlags(cfg *model.Config) {
	applyCatalogFlag(cfg)
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if maxBytes > 0 {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if insecureTLS {
		cfg.HTTP.InsecureTLS = true
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.StrictSources = true // Always enforce from the CLI
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
}

func runParse(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), parseTimeout)
	defer cancel()

	e, err := newEnv(ctx, applySourceFlags)
	if err != nil {
		return err
	}
	defer e.Close()

	if verbose {
		fmt.Fprintf(os.Stderr, "Parsing: %s\n", source)
		fmt.Fprintf(os.Stderr, "Catalog: %s\n", storeLabel(e.cfg.Catalog))
		fmt.Fprintf(os.Stderr, "Cache: %v\n", e.cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	session, err := e.pipeline.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	doc, err := session.ParseSource(ctx, source)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	if correctionsPath != "" {
		corrections, err := validate.LoadCorrections(correctionsPath)
		if err != nil {
			return err
		}
		corrected, res, err := session.ApplyCorrections(*doc, corrections)
		if err != nil {
			return fmt.Errorf("apply corrections: %w", err)
		}
		doc = &corrected
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Applied corrections: %d materials, %d categories, %d quantities, %d removed\n",
				res.Materials, res.Categories, res.Quantities, res.Removed)
		}
	}

	project := model.Project{
		Name:       projectName,
		VesselType: vesselType,
		Shipyard:   shipyard,
		Owner:      owner,
	}
	report := session.BuildReport(ctx, []model.ParsedDocument{*doc}, project)

	if verbose {
		stats := report.Parsing[0]
		fmt.Fprintf(os.Stderr, "✓ Parsed %d material lines (%d identified, %d categorized)\n",
			stats.TotalMaterials, stats.IdentifiedMaterials, stats.CategorizedMaterials)
		if report.LLM != nil && report.LLM.Enabled {
			fmt.Fprintf(os.Stderr, "✓ Generated LLM summary using %s/%s\n", report.LLM.Provider, report.LLM.Model)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := e.pipeline.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}

// applyCatalogFlag picks the store from the --catalog file extension
func applyCatalogFlag(cfg *model.Config) {
	if catalogPath == "" {
		return
	}
	cfg.Catalog.Path = catalogPath
	switch strings.ToLower(filepath.Ext(catalogPath)) {
	case ".db", ".sqlite", ".sqlite3":
		cfg.Catalog.Store = "sqlite"
	default:
		cfg.Catalog.Store = "yaml"
	}
}

func storeLabel(c model.CatalogConfig) string {
	if c.Path == "" {
		return "builtin"
	}
	return c.Store + " (" + c.Path + ")"
}

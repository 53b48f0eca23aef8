package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/lightship/internal/model"
	"github.com/ppiankov/lightship/internal/watch"
)

var (
	watchOutputDir string
	watchDebounce  time.Duration
	watchExts      []string
	watchInitial   bool
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Parse exports as they appear in a directory",
	Long: `Watch monitors a directory and parses every export that is created or
changed, writing a JSON and Markdown report per file. Each event opens a
fresh catalog session, so catalog edits made while watching apply to the
next file.

Example:
  lightship watch ./inbox
  lightship watch ./inbox --output-dir ./reports --ext .csv --ext .txt`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOutputDir, "output-dir", "./lightship-reports", "output directory for reports")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "wait for a file to be quiet this long before parsing")
	watchCmd.Flags().StringSliceVar(&watchExts, "ext", nil, "file extensions to watch (default: .txt .csv .tsv .html .htm)")
	watchCmd.Flags().BoolVar(&watchInitial, "initial", false, "parse files already in the directory before watching")
	addSourceFlags(watchCmd)
	addLLMFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir := args[0]
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e, err := newEnv(ctx, applySourceFlags)
	if err != nil {
		return err
	}
	defer e.Close()

	if err := os.MkdirAll(watchOutputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	w, err := watch.NewWatcher(watchExts, watchDebounce, e.log)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Stop() }()

	events, err := w.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	handle := func(path string) {
		if err := processWatched(ctx, e, path); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", path, err)
		}
	}

	if watchInitial {
		sources, err := collectSources(dir)
		if err != nil {
			return err
		}
		for _, src := range sources {
			if w.IsWatched(src) {
				handle(src)
			}
		}
	}

	fmt.Fprintf(os.Stderr, "👀 Watching %s (Ctrl+C to stop)\n", dir)

	for ev := range events {
		switch ev.Operation {
		case watch.Created, watch.Modified:
			handle(ev.Path)
		case watch.Deleted:
			e.log.Info("export removed", "path", ev.Path)
		}
	}
	return nil
}

// processWatched parses one file against a fresh catalog snapshot and
// writes its reports
func processWatched(ctx context.Context, e *env, path string) error {
	if _, err := e.catalog.Refresh(ctx); err != nil {
		return fmt.Errorf("refresh catalog: %w", err)
	}
	session, err := e.pipeline.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	doc, err := session.ParseFile(ctx, path)
	if err != nil {
		return err
	}
	report := session.BuildReport(ctx, []model.ParsedDocument{*doc}, model.Project{})

	// A changed file overwrites its own earlier report
	slug := sanitizeFilename(filepath.Base(path))
	if err := writeReports(e.pipeline, report, watchOutputDir, slug); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "✓ %s (%s kg CO2e, %s)\n", doc.FileName, formatKg(report.Result.TotalGWP), report.Result.Status)
	return nil
}

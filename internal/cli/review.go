package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/lightship/internal/validate"
)

var (
	reviewJSON     string
	reviewTemplate string
	reviewTimeout  time.Duration
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <file|url>",
	Short: "List the lines of an export that need a human decision",
	Long: `Review parses an export and prints every line that is unidentified,
uncategorized or matched with low confidence, together with suggested
catalog materials.

Decisions go into a YAML corrections file that parse --corrections applies.
Use --template to write a starting file listing every queued line.

Example:
  lightship review export.csv
  lightship review export.csv --template reviewed.yaml
  lightship parse export.csv --corrections reviewed.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewJSON, "json", "", "write the review queue as JSON to this path")
	reviewCmd.Flags().StringVar(&reviewTemplate, "template", "", "write a corrections file template to this path")
	reviewCmd.Flags().DurationVar(&reviewTimeout, "timeout", time.Minute, "overall timeout")
	addSourceFlags(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	source := args[0]
	ctx, cancel := context.WithTimeout(cmd.Context(), reviewTimeout)
	defer cancel()

	e, err := newEnv(ctx, applySourceFlags)
	if err != nil {
		return err
	}
	defer e.Close()

	session, err := e.pipeline.NewSession(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	doc, err := session.ParseSource(ctx, source)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	items := session.Review(*doc)
	printQueue(cmd.OutOrStdout(), doc.FileName, len(doc.Materials), items)

	if reviewJSON != "" {
		data, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal review queue: %w", err)
		}
		if err := os.WriteFile(reviewJSON, append(data, '\n'), 0644); err != nil {
			return fmt.Errorf("write review queue: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", reviewJSON)
		}
	}

	if reviewTemplate != "" {
		if _, err := os.Stat(reviewTemplate); err == nil {
			return fmt.Errorf("template already exists: %s", reviewTemplate)
		}
		if err := os.WriteFile(reviewTemplate, []byte(correctionsTemplate(doc.FileName, items)), 0644); err != nil {
			return fmt.Errorf("write template: %w", err)
		}
		fmt.Fprintf(os.Stderr, "✓ Wrote corrections template: %s\n", reviewTemplate)
	}

	return nil
}

// printQueue writes the review queue as a readable list
func printQueue(w io.Writer, name string, total int, items []validate.Item) {
	fmt.Fprintf(w, "Review queue for %s: %d of %d lines\n\n", name, len(items), total)
	if len(items) == 0 {
		fmt.Fprintln(w, "Nothing to review.")
		return
	}

	for _, it := range items {
		reasons := make([]string, len(it.Reasons))
		for i, r := range it.Reasons {
			reasons[i] = string(r)
		}

		fmt.Fprintf(w, "Line %d: %s\n", it.LineNumber, it.OriginalText)
		fmt.Fprintf(w, "  reasons:    %s\n", strings.Join(reasons, ", "))
		fmt.Fprintf(w, "  quantity:   %s kg\n", formatKg(it.Quantity))
		if it.MaterialID != "" {
			fmt.Fprintf(w, "  matched:    %s (confidence %.2f)\n", it.MaterialID, it.Confidence)
		}
		if it.CategoryCode != "" {
			fmt.Fprintf(w, "  category:   %s\n", it.CategoryCode)
		}
		for i, s := range it.Suggestions {
			fmt.Fprintf(w, "  %d. %-24s %-14s %.2f kg CO2e/kg (%.2f)\n", i+1, s.Name, s.MaterialID, s.GWPFactor, s.Confidence)
		}
		fmt.Fprintln(w)
	}
}

// correctionsTemplate lists every queued line with its options commented out
func correctionsTemplate(name string, items []validate.Item) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Corrections for %s\n", name)
	b.WriteString("# Uncomment one decision per line; material and category take catalog IDs.\n")
	fmt.Fprintf(&b, "document: %q\n", name)
	b.WriteString("corrections:\n")
	if len(items) == 0 {
		b.WriteString("  []\n")
		return b.String()
	}
	for _, it := range items {
		fmt.Fprintf(&b, "  # %s\n", strings.ReplaceAll(it.OriginalText, "\n", " "))
		fmt.Fprintf(&b, "  - line: %d\n", it.LineNumber)
		if len(it.Suggestions) > 0 {
			fmt.Fprintf(&b, "    # material: %s\n", it.Suggestions[0].MaterialID)
		} else {
			b.WriteString("    # material: \n")
		}
		b.WriteString("    # category: \n")
		fmt.Fprintf(&b, "    # quantity_kg: %g\n", it.Quantity)
		b.WriteString("    # remove: true\n")
	}
	return b.String()
}

func formatKg(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/model"
)

var (
	listCategory string
	listJSON     bool
	addName      string
	addID        string
	addAliases   []string
	addFactor    float64
	addCategory  string
	addDensity   float64
	addDesc      string
	exportFormat string
	resetConfirm bool
)

// errReadOnlyCatalog is returned when a write targets the builtin catalog
var errReadOnlyCatalog = errors.New("the builtin catalog is read-only; pass --catalog <file.yaml|file.db> or set catalog.store in the config")

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the material catalog",
	Long: `Manage the material catalog used to identify materials and price them
in kg CO2e per kg.

The builtin store ships the default materials and macro-groups. Custom
materials need a persistent store: a YAML file or a SQLite database,
selected with --catalog or catalog.store/catalog.path in the config.

Example:
  lightship catalog list
  lightship catalog show steel_carbon
  lightship catalog add --catalog yard.yaml --name "Kevlar" --alias aramide --factor 14
  lightship catalog import --catalog yard.db materials.yaml
  lightship catalog export --catalog yard.db > catalog.yaml`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog materials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
			snap, err := mgr.Snapshot(ctx)
			if err != nil {
				return err
			}

			materials := snap.Materials()
			if listCategory != "" {
				materials = snap.MaterialsByLegacyCategory(listCategory)
			}

			if listJSON {
				return writeJSON(cmd.OutOrStdout(), materials)
			}
			printMaterials(cmd.OutOrStdout(), materials)
			return nil
		})
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one material",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
			snap, err := mgr.Snapshot(ctx)
			if err != nil {
				return err
			}
			m, ok := snap.MaterialByID(args[0])
			if !ok {
				return fmt.Errorf("%w: material %s", catalog.ErrNotFound, args[0])
			}
			data, err := yaml.Marshal(m)
			if err != nil {
				return fmt.Errorf("marshal material: %w", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		})
	},
}

var catalogAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a custom material",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withWritableCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
			m := model.Material{
				ID:          addID,
				Name:        addName,
				Aliases:     addAliases,
				Category:    addCategory,
				GWPFactor:   addFactor,
				Unit:        model.CanonicalUnit,
				Description: addDesc,
			}
			if cmd.Flags().Changed("density") {
				d := addDensity
				m.Density = &d
			}

			added, err := mgr.AddMaterial(ctx, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s (%s, %.2f kg CO2e/kg)\n", added.ID, added.Name, added.GWPFactor)
			return nil
		})
	},
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import materials from a YAML or JSON file",
	Long: `Import adds materials from a file. Entries whose ID already exists replace
the stored material; entries without an ID get a new one. Invalid entries
are skipped and reported, the rest are imported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		materials, err := readMaterialsFile(args[0])
		if err != nil {
			return err
		}
		return withWritableCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
			res, err := mgr.Import(ctx, materials)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Imported %d, updated %d, skipped %d\n", res.Imported, res.Updated, len(res.Skipped))
			for _, reason := range res.Skipped {
				fmt.Fprintf(out, "  - %s\n", reason)
			}
			return nil
		})
	},
}

var catalogExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the catalog as YAML or JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
			snap, err := mgr.Snapshot(ctx)
			if err != nil {
				return err
			}

			var data []byte
			switch exportFormat {
			case "yaml", "yml":
				data, err = catalog.WriteYAML(snap.Materials(), snap.Categories())
			case "json":
				data, err = json.MarshalIndent(map[string]interface{}{
					"materials":  snap.Materials(),
					"categories": snap.Categories(),
				}, "", "  ")
				data = append(data, '\n')
			default:
				return fmt.Errorf("unknown export format: %s (supported: yaml, json)", exportFormat)
			}
			if err != nil {
				return fmt.Errorf("encode catalog: %w", err)
			}

			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(os.Stderr, "✓ Exported %d materials to %s\n", len(snap.Materials()), args[0])
			return nil
		})
	},
}

var catalogResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Restore the default materials and macro-groups",
	Long:  `Reset discards every custom material and restores the built-in defaults.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetConfirm {
			return fmt.Errorf("reset discards all custom materials; rerun with --yes to confirm")
		}
		return withWritableCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
			if err := mgr.Store().Reset(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Catalog reset to defaults")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "catalog file (.yaml/.yml or .db/.sqlite) overriding the configured store")

	catalogListCmd.Flags().StringVar(&listCategory, "category", "", "only materials with this legacy category label (e.g. Metalli)")
	catalogListCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON instead of a table")

	catalogAddCmd.Flags().StringVar(&addName, "name", "", "display name (required)")
	catalogAddCmd.Flags().StringVar(&addID, "id", "", "material ID (default: generated)")
	catalogAddCmd.Flags().StringSliceVar(&addAliases, "alias", nil, "alternate name matched in exports (repeatable)")
	catalogAddCmd.Flags().Float64Var(&addFactor, "factor", 0, "GWP factor in kg CO2e per kg (required)")
	catalogAddCmd.Flags().StringVar(&addCategory, "category", "", "legacy category label")
	catalogAddCmd.Flags().Float64Var(&addDensity, "density", 0, "density in kg/m³")
	catalogAddCmd.Flags().StringVar(&addDesc, "description", "", "free-form description")
	_ = catalogAddCmd.MarkFlagRequired("name")
	_ = catalogAddCmd.MarkFlagRequired("factor")

	catalogExportCmd.Flags().StringVar(&exportFormat, "format", "yaml", "export format (yaml, json)")
	catalogResetCmd.Flags().BoolVar(&resetConfirm, "yes", false, "confirm the reset")

	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogAddCmd)
	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogExportCmd)
	catalogCmd.AddCommand(catalogResetCmd)
}

// withCatalog opens the configured store for the duration of fn
func withCatalog(cmd *cobra.Command, fn func(ctx context.Context, mgr *catalog.Manager) error) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyCatalogFlag(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := catalog.Open(ctx, cfg.Catalog)
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	mgr := catalog.NewManager(store, cfg.Matcher.MinFragmentLength)
	defer func() { _ = mgr.Close() }()

	return fn(ctx, mgr)
}

// withWritableCatalog is withCatalog for commands that persist changes
func withWritableCatalog(cmd *cobra.Command, fn func(ctx context.Context, mgr *catalog.Manager) error) error {
	return withCatalog(cmd, func(ctx context.Context, mgr *catalog.Manager) error {
		if _, ok := mgr.Store().(*catalog.MemoryStore); ok {
			return errReadOnlyCatalog
		}
		return fn(ctx, mgr)
	})
}

// readMaterialsFile accepts a YAML catalog document, a YAML list of
// materials, or the JSON equivalents
func readMaterialsFile(path string) ([]model.Material, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		var doc struct {
			Materials []model.Material `json:"materials"`
		}
		if err := json.Unmarshal(data, &doc); err == nil && len(doc.Materials) > 0 {
			return doc.Materials, nil
		}
		var list []model.Material
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("parse import file: %w", err)
		}
		return list, nil
	}

	materials, _, err := catalog.ReadYAML(data)
	if err != nil {
		return nil, err
	}
	return materials, nil
}

func printMaterials(w io.Writer, materials []model.Material) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGWP (kg CO2e/kg)\tCATEGORY\tALIASES")
	for _, m := range materials {
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\t%s\n", m.ID, m.Name, m.GWPFactor, m.Category, strings.Join(m.Aliases, ", "))
	}
	_ = tw.Flush()
	fmt.Fprintf(w, "\n%d materials\n", len(materials))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

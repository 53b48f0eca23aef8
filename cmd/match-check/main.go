// Program to show how material names resolve against the default catalog.
// Useful when tuning aliases: prints the match, its rule confidence and the
// review suggestions for every name given on the command line.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/lightship/internal/catalog"
	"github.com/ppiankov/lightship/internal/extract"
)

func main() {
	names := os.Args[1:]
	if len(names) == 0 {
		names = []string{
			"Acciaio",
			"Acciaio inox AISI",
			"Alluminio 5083",
			"Rame cavi",
			"Misterium",
		}
	}

	snap, err := catalog.NewSnapshot(catalog.DefaultMaterials(), catalog.DefaultCategories(), extract.DefaultMinFragmentLength)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("=== Material Match Check (catalog %s) ===\n\n", snap.Version())

	for _, name := range names {
		fmt.Printf("%s\n", name)
		fmt.Println(strings.Repeat("-", 60))

		if m, ok := snap.FindMaterial(name); ok {
			fmt.Printf("  ✓ %s (%s) via %s on %q, confidence %.2f, %.2f kg CO2e/kg\n",
				m.Material.Name, m.Material.ID, m.Rule, m.Matched, m.Confidence, m.Material.GWPFactor)
		} else {
			fmt.Println("  ✗ no match (default factor applies)")
		}

		for i, s := range snap.Suggest(name, 3) {
			fmt.Printf("    %d. %s (%.2f)\n", i+1, s.Material.Name, s.Confidence)
		}
		fmt.Println()
	}
}

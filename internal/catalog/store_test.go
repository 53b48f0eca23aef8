package catalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/lightship/internal/model"
)

type storeFactory struct {
	name string
	open func(t *testing.T) Store
}

func storeFactories() []storeFactory {
	return []storeFactory{
		{"memory", func(t *testing.T) Store { return NewMemoryStore() }},
		{"yaml", func(t *testing.T) Store {
			s, err := OpenYAML(filepath.Join(t.TempDir(), "catalog.yaml"))
			if err != nil {
				t.Fatalf("OpenYAML: %v", err)
			}
			return s
		}},
		{"sqlite", func(t *testing.T) Store {
			s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "test.db"))
			if err != nil {
				t.Fatalf("OpenSQLite: %v", err)
			}
			return s
		}},
	}
}

func TestStores_SeedDefaults(t *testing.T) {
	ctx := context.Background()
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			defer s.Close()

			materials, err := s.Materials(ctx)
			if err != nil {
				t.Fatalf("Materials: %v", err)
			}
			if len(materials) != len(DefaultMaterials()) {
				t.Fatalf("Expected %d materials, got %d", len(DefaultMaterials()), len(materials))
			}
			if materials[0].ID != "steel_carbon" {
				t.Errorf("Expected steel_carbon first, got %s", materials[0].ID)
			}
			if materials[0].Density == nil || *materials[0].Density != 7850 {
				t.Errorf("Expected density 7850, got %v", materials[0].Density)
			}

			categories, err := s.Categories(ctx)
			if err != nil {
				t.Fatalf("Categories: %v", err)
			}
			if len(categories) != 7 {
				t.Errorf("Expected 7 categories, got %d", len(categories))
			}
		})
	}
}

func TestStores_AddMaterial(t *testing.T) {
	ctx := context.Background()
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			defer s.Close()

			added, err := s.AddMaterial(ctx, model.Material{
				Name:      "Titanio",
				Aliases:   []string{"titanio", " titanium ", ""},
				Category:  "Metalli",
				GWPFactor: 35,
			})
			if err != nil {
				t.Fatalf("AddMaterial: %v", err)
			}
			if !strings.HasPrefix(added.ID, CustomIDPrefix) {
				t.Errorf("Expected minted id with prefix %s, got %s", CustomIDPrefix, added.ID)
			}
			if added.Unit != "kg" {
				t.Errorf("Expected default unit kg, got %s", added.Unit)
			}
			if len(added.Aliases) != 2 || added.Aliases[1] != "titanium" {
				t.Errorf("Expected cleaned aliases, got %v", added.Aliases)
			}

			materials, _ := s.Materials(ctx)
			last := materials[len(materials)-1]
			if last.ID != added.ID {
				t.Errorf("Expected new material appended last, got %s", last.ID)
			}

			_, err = s.AddMaterial(ctx, model.Material{ID: "copper", Name: "Rame bis", GWPFactor: 1})
			if !errors.Is(err, ErrDuplicate) {
				t.Errorf("Expected ErrDuplicate, got %v", err)
			}

			_, err = s.AddMaterial(ctx, model.Material{Name: "Bad", GWPFactor: -1})
			if !errors.Is(err, ErrInvalidMaterial) {
				t.Errorf("Expected ErrInvalidMaterial, got %v", err)
			}
		})
	}
}

func TestStores_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			defer s.Close()

			err := s.UpdateMaterial(ctx, model.Material{ID: "copper", Name: "Rame", Aliases: []string{"rame"}, GWPFactor: 3.5})
			if err != nil {
				t.Fatalf("UpdateMaterial: %v", err)
			}
			materials, _ := s.Materials(ctx)
			var found bool
			for i, m := range materials {
				if m.ID == "copper" {
					found = true
					if m.GWPFactor != 3.5 {
						t.Errorf("Expected factor 3.5, got %v", m.GWPFactor)
					}
					if i != 5 {
						t.Errorf("Expected copper to keep position 5, got %d", i)
					}
				}
			}
			if !found {
				t.Fatal("Expected copper after update")
			}

			if err := s.UpdateMaterial(ctx, model.Material{ID: "missing", Name: "x"}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound on update, got %v", err)
			}

			if err := s.RemoveMaterial(ctx, "copper"); err != nil {
				t.Fatalf("RemoveMaterial: %v", err)
			}
			if err := s.RemoveMaterial(ctx, "copper"); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound on second remove, got %v", err)
			}
			materials, _ = s.Materials(ctx)
			if len(materials) != len(DefaultMaterials())-1 {
				t.Errorf("Expected %d materials, got %d", len(DefaultMaterials())-1, len(materials))
			}
		})
	}
}

func TestStores_Import(t *testing.T) {
	ctx := context.Background()
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			defer s.Close()

			result, err := s.Import(ctx, []model.Material{
				{ID: "copper", Name: "Rame", Category: "Metalli", GWPFactor: 4.0},
				{Name: "Sughero", Category: "Isolanti", GWPFactor: 0.2},
				{Name: "No category", GWPFactor: 1},
				{Name: "Negative", Category: "Metalli", GWPFactor: -2},
			})
			if err != nil {
				t.Fatalf("Import: %v", err)
			}
			if result.Updated != 1 {
				t.Errorf("Expected 1 updated, got %d", result.Updated)
			}
			if result.Imported != 1 {
				t.Errorf("Expected 1 imported, got %d", result.Imported)
			}
			if len(result.Skipped) != 2 {
				t.Errorf("Expected 2 skipped, got %v", result.Skipped)
			}

			materials, _ := s.Materials(ctx)
			if len(materials) != len(DefaultMaterials())+1 {
				t.Errorf("Expected %d materials, got %d", len(DefaultMaterials())+1, len(materials))
			}
		})
	}
}

func TestStores_Reset(t *testing.T) {
	ctx := context.Background()
	for _, f := range storeFactories() {
		t.Run(f.name, func(t *testing.T) {
			s := f.open(t)
			defer s.Close()

			if _, err := s.AddMaterial(ctx, model.Material{Name: "Titanio", GWPFactor: 35}); err != nil {
				t.Fatalf("AddMaterial: %v", err)
			}
			if err := s.Reset(ctx); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			materials, _ := s.Materials(ctx)
			if len(materials) != len(DefaultMaterials()) {
				t.Errorf("Expected defaults after reset, got %d materials", len(materials))
			}
		})
	}
}

func TestYAMLStore_Persists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "catalog.yaml")

	s, err := OpenYAML(path)
	if err != nil {
		t.Fatalf("OpenYAML: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("Expected no file before first write, got %v", err)
	}
	added, err := s.AddMaterial(ctx, model.Material{ID: "titanium", Name: "Titanio", GWPFactor: 35})
	if err != nil {
		t.Fatalf("AddMaterial: %v", err)
	}

	reopened, err := OpenYAML(path)
	if err != nil {
		t.Fatalf("OpenYAML reopen: %v", err)
	}
	materials, _ := reopened.Materials(ctx)
	last := materials[len(materials)-1]
	if last.ID != added.ID || last.GWPFactor != 35 {
		t.Errorf("Expected titanium persisted, got %+v", last)
	}
	categories, _ := reopened.Categories(ctx)
	if len(categories) != 7 {
		t.Errorf("Expected 7 categories persisted, got %d", len(categories))
	}
}

func TestYAMLStore_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte("materials: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenYAML(path); err == nil {
		t.Error("Expected parse error for malformed yaml")
	}
}

func TestSQLiteStore_PersistsAndStaysEmpty(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	for _, m := range DefaultMaterials() {
		if err := s.RemoveMaterial(ctx, m.ID); err != nil {
			t.Fatalf("RemoveMaterial %s: %v", m.ID, err)
		}
	}
	s.Close()

	reopened, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite reopen: %v", err)
	}
	defer reopened.Close()

	materials, err := reopened.Materials(ctx)
	if err != nil {
		t.Fatalf("Materials: %v", err)
	}
	if len(materials) != 0 {
		t.Errorf("Expected emptied catalog to stay empty, got %d materials", len(materials))
	}
}

func TestSchemaCreationIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := OpenSQLite(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer s.Close()

	for i := 0; i < 3; i++ {
		if err := initSchema(ctx, s.db); err != nil {
			t.Fatalf("initSchema iteration %d: %v", i, err)
		}
	}
}

func TestOpen_Dispatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	cases := []struct {
		cfg     model.CatalogConfig
		wantErr bool
	}{
		{model.CatalogConfig{Store: "builtin"}, false},
		{model.CatalogConfig{Store: ""}, false},
		{model.CatalogConfig{Store: "yaml", Path: filepath.Join(dir, "c.yaml")}, false},
		{model.CatalogConfig{Store: "sqlite", Path: filepath.Join(dir, "c.db")}, false},
		{model.CatalogConfig{Store: "yaml"}, true},
		{model.CatalogConfig{Store: "postgres"}, true},
	}
	for _, c := range cases {
		s, err := Open(ctx, c.cfg)
		if (err != nil) != c.wantErr {
			t.Errorf("Open(%+v): expected error %v, got %v", c.cfg, c.wantErr, err)
			continue
		}
		if s != nil {
			s.Close()
		}
	}
}

func TestReadYAML_AcceptsBareList(t *testing.T) {
	materials, categories, err := ReadYAML([]byte("- id: cork\n  name: Sughero\n  category: Isolanti\n  gwp_factor: 0.2\n"))
	if err != nil {
		t.Fatalf("ReadYAML: %v", err)
	}
	if len(materials) != 1 || materials[0].ID != "cork" {
		t.Errorf("Expected cork, got %+v", materials)
	}
	if categories != nil {
		t.Errorf("Expected no categories, got %v", categories)
	}

	data, err := WriteYAML(DefaultMaterials()[:2], DefaultCategories())
	if err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	materials, categories, err = ReadYAML(data)
	if err != nil {
		t.Fatalf("ReadYAML document: %v", err)
	}
	if len(materials) != 2 || len(categories) != 7 {
		t.Errorf("Expected 2 materials and 7 categories, got %d and %d", len(materials), len(categories))
	}
}

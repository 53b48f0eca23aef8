package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/lightship/internal/model"
)

// yamlCatalog is the on-disk layout of a YAML catalog file
type yamlCatalog struct {
	Materials  []model.Material `yaml:"materials"`
	Categories []model.Category `yaml:"categories,omitempty"`
}

// YAMLStore persists the catalog to a single YAML file.
// A missing file starts from the defaults and is created on the first write.
type YAMLStore struct {
	path string
	mem  *MemoryStore
}

// OpenYAML loads a catalog file, falling back to the defaults if it does not exist
func OpenYAML(path string) (*YAMLStore, error) {
	if path == "" {
		return nil, fmt.Errorf("yaml catalog path is required")
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &YAMLStore{path: path, mem: NewMemoryStore()}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}
	if len(doc.Categories) == 0 {
		doc.Categories = DefaultCategories()
	}

	return &YAMLStore{path: path, mem: NewMemoryStoreWith(doc.Materials, doc.Categories)}, nil
}

// Path returns the backing file path
func (s *YAMLStore) Path() string {
	return s.path
}

// Materials returns all materials in file order
func (s *YAMLStore) Materials(ctx context.Context) ([]model.Material, error) {
	return s.mem.Materials(ctx)
}

// Categories returns the category taxonomy
func (s *YAMLStore) Categories(ctx context.Context) ([]model.Category, error) {
	return s.mem.Categories(ctx)
}

// AddMaterial appends a material and rewrites the file
func (s *YAMLStore) AddMaterial(ctx context.Context, m model.Material) (model.Material, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	added, err := s.mem.addLocked(m)
	if err != nil {
		return model.Material{}, err
	}
	if err := s.saveLocked(); err != nil {
		_ = s.mem.removeLocked(added.ID)
		return model.Material{}, err
	}
	return added, nil
}

// UpdateMaterial replaces a material and rewrites the file
func (s *YAMLStore) UpdateMaterial(ctx context.Context, m model.Material) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	if err := s.mem.updateLocked(m); err != nil {
		return err
	}
	return s.saveLocked()
}

// RemoveMaterial deletes a material and rewrites the file
func (s *YAMLStore) RemoveMaterial(ctx context.Context, id string) error {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	if err := s.mem.removeLocked(id); err != nil {
		return err
	}
	return s.saveLocked()
}

// Import adds or replaces materials and rewrites the file once
func (s *YAMLStore) Import(ctx context.Context, materials []model.Material) (ImportResult, error) {
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()

	result := s.mem.importLocked(materials)
	if result.Imported+result.Updated == 0 {
		return result, nil
	}
	return result, s.saveLocked()
}

// Reset restores the defaults and rewrites the file
func (s *YAMLStore) Reset(ctx context.Context) error {
	if err := s.mem.Reset(ctx); err != nil {
		return err
	}
	s.mem.mu.Lock()
	defer s.mem.mu.Unlock()
	return s.saveLocked()
}

// Close is a no-op; every write is flushed immediately
func (s *YAMLStore) Close() error {
	return nil
}

// saveLocked writes the catalog atomically through a temp file and rename
func (s *YAMLStore) saveLocked() error {
	data, err := yaml.Marshal(yamlCatalog{
		Materials:  s.mem.materials,
		Categories: s.mem.categories,
	})
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create catalog dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close catalog: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}

// WriteYAML exports materials and categories to w-compatible bytes
func WriteYAML(materials []model.Material, categories []model.Category) ([]byte, error) {
	return yaml.Marshal(yamlCatalog{Materials: materials, Categories: categories})
}

// ReadYAML parses a catalog document; a bare list of materials is also accepted
func ReadYAML(data []byte) ([]model.Material, []model.Category, error) {
	var doc yamlCatalog
	if err := yaml.Unmarshal(data, &doc); err == nil && (len(doc.Materials) > 0 || len(doc.Categories) > 0) {
		return doc.Materials, doc.Categories, nil
	}

	var list []model.Material
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, nil, fmt.Errorf("parse catalog: %w", err)
	}
	return list, nil, nil
}

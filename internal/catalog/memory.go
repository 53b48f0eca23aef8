package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/ppiankov/lightship/internal/model"
)

// MemoryStore keeps the catalog in process memory, seeded with the defaults
type MemoryStore struct {
	mu         sync.RWMutex
	materials  []model.Material
	categories []model.Category
}

// NewMemoryStore creates a store holding the built-in defaults
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreWith(DefaultMaterials(), DefaultCategories())
}

// NewMemoryStoreWith creates a store holding the given data
func NewMemoryStoreWith(materials []model.Material, categories []model.Category) *MemoryStore {
	return &MemoryStore{
		materials:  cloneMaterials(materials),
		categories: cloneCategories(categories),
	}
}

// Materials returns all materials in catalog order
func (s *MemoryStore) Materials(ctx context.Context) ([]model.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMaterials(s.materials), nil
}

// Categories returns the category taxonomy
func (s *MemoryStore) Categories(ctx context.Context) ([]model.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategories(s.categories), nil
}

// AddMaterial appends a new material
func (s *MemoryStore) AddMaterial(ctx context.Context, m model.Material) (model.Material, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(m)
}

func (s *MemoryStore) addLocked(m model.Material) (model.Material, error) {
	m = prepareMaterial(m)
	if err := ValidateMaterial(m); err != nil {
		return model.Material{}, err
	}
	if s.indexLocked(m.ID) >= 0 {
		return model.Material{}, fmt.Errorf("%w: material id %q", ErrDuplicate, m.ID)
	}
	s.materials = append(s.materials, m)
	return cloneMaterial(m), nil
}

// UpdateMaterial replaces an existing material in place
func (s *MemoryStore) UpdateMaterial(ctx context.Context, m model.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateLocked(m)
}

func (s *MemoryStore) updateLocked(m model.Material) error {
	i := s.indexLocked(m.ID)
	if i < 0 {
		return fmt.Errorf("%w: material %q", ErrNotFound, m.ID)
	}
	m = prepareMaterial(m)
	if err := ValidateMaterial(m); err != nil {
		return err
	}
	s.materials[i] = m
	return nil
}

// RemoveMaterial deletes a material by ID
func (s *MemoryStore) RemoveMaterial(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *MemoryStore) removeLocked(id string) error {
	i := s.indexLocked(id)
	if i < 0 {
		return fmt.Errorf("%w: material %q", ErrNotFound, id)
	}
	s.materials = append(s.materials[:i], s.materials[i+1:]...)
	return nil
}

// Import adds new materials and replaces those whose ID already exists
func (s *MemoryStore) Import(ctx context.Context, materials []model.Material) (ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.importLocked(materials), nil
}

func (s *MemoryStore) importLocked(materials []model.Material) ImportResult {
	valid, skipped := prepareImport(materials)
	result := ImportResult{Skipped: skipped}
	for _, m := range valid {
		if i := s.indexLocked(m.ID); i >= 0 {
			s.materials[i] = m
			result.Updated++
			continue
		}
		s.materials = append(s.materials, m)
		result.Imported++
	}
	return result
}

// Reset restores the built-in defaults
func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.materials = DefaultMaterials()
	s.categories = DefaultCategories()
	return nil
}

// Close is a no-op for the memory store
func (s *MemoryStore) Close() error {
	return nil
}

func (s *MemoryStore) indexLocked(id string) int {
	for i, m := range s.materials {
		if m.ID == id {
			return i
		}
	}
	return -1
}

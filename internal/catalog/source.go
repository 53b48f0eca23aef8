package catalog

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/lightship/internal/model"
)

// Source is the read side of a catalog store
type Source interface {
	// Materials returns all materials in catalog order
	Materials(ctx context.Context) ([]model.Material, error)

	// Categories returns the category taxonomy in catalog order
	Categories(ctx context.Context) ([]model.Category, error)
}

// Writer persists custom materials
type Writer interface {
	// AddMaterial stores a new material, minting an ID when empty.
	// Returns ErrDuplicate if the ID already exists.
	AddMaterial(ctx context.Context, m model.Material) (model.Material, error)
}

// Store is a full read/write catalog backend
type Store interface {
	Source
	Writer

	// UpdateMaterial replaces an existing material; ErrNotFound if missing
	UpdateMaterial(ctx context.Context, m model.Material) error

	// RemoveMaterial deletes a material by ID; ErrNotFound if missing
	RemoveMaterial(ctx context.Context, id string) error

	// Import adds or replaces materials in bulk, skipping invalid entries
	Import(ctx context.Context, materials []model.Material) (ImportResult, error)

	// Reset restores the built-in defaults
	Reset(ctx context.Context) error

	// Close releases resources held by the store
	Close() error
}

// Load fetches materials and categories concurrently and builds a snapshot
func Load(ctx context.Context, src Source, minFragmentLength int) (*Snapshot, error) {
	var (
		materials  []model.Material
		categories []model.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		materials, err = src.Materials(gctx)
		if err != nil {
			return fmt.Errorf("load materials: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		categories, err = src.Categories(gctx)
		if err != nil {
			return fmt.Errorf("load categories: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap, err := NewSnapshot(materials, categories, minFragmentLength)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return snap, nil
}

// Open opens the store selected by configuration
func Open(ctx context.Context, cfg model.CatalogConfig) (Store, error) {
	switch cfg.Store {
	case "", "builtin":
		return NewMemoryStore(), nil
	case "yaml":
		s, err := OpenYAML(cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "sqlite":
		s, err := OpenSQLite(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown catalog store: %s (supported: builtin, yaml, sqlite)", cfg.Store)
	}
}

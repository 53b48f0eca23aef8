package catalog

import (
	"context"
	"sync"

	"github.com/ppiankov/lightship/internal/model"
)

// Manager hands out catalog snapshots and routes writes to the store.
// Writes are not visible to parsing until Refresh is called, so a running
// session keeps matching against the snapshot it started with.
type Manager struct {
	store       Store
	minFragment int

	mu   sync.Mutex
	snap *Snapshot
}

// NewManager wraps a store
func NewManager(store Store, minFragmentLength int) *Manager {
	return &Manager{store: store, minFragment: minFragmentLength}
}

// Store returns the underlying store
func (m *Manager) Store() Store {
	return m.store
}

// Snapshot returns the current snapshot, loading it on first use
func (m *Manager) Snapshot(ctx context.Context) (*Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.snap != nil {
		return m.snap, nil
	}
	snap, err := Load(ctx, m.store, m.minFragment)
	if err != nil {
		return nil, err
	}
	m.snap = snap
	return snap, nil
}

// Refresh reloads the snapshot from the store
func (m *Manager) Refresh(ctx context.Context) (*Snapshot, error) {
	snap, err := Load(ctx, m.store, m.minFragment)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.snap = snap
	m.mu.Unlock()
	return snap, nil
}

// AddMaterial persists a custom material; call Refresh to make it matchable
func (m *Manager) AddMaterial(ctx context.Context, mat model.Material) (model.Material, error) {
	return m.store.AddMaterial(ctx, mat)
}

// Import persists materials in bulk; call Refresh to make them matchable
func (m *Manager) Import(ctx context.Context, materials []model.Material) (ImportResult, error) {
	return m.store.Import(ctx, materials)
}

// Close closes the underlying store
func (m *Manager) Close() error {
	return m.store.Close()
}

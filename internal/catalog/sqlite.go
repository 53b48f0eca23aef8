package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/ppiankov/lightship/internal/model"
)

// SQLiteStore keeps the catalog in a SQLite database.
// Rows are ordered by insertion position so catalog order survives restarts.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite database with WAL mode enabled and seeds the
// built-in defaults on first use.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite catalog path is required")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Serialize writers; SQLite allows one at a time anyway
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, err
	}
	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.seedIfNew(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS materials (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	aliases TEXT NOT NULL DEFAULT '[]',
	category TEXT,
	gwp_factor REAL NOT NULL,
	unit TEXT NOT NULL DEFAULT 'kg',
	density REAL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS categories (
	position INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT UNIQUE NOT NULL,
	code TEXT UNIQUE NOT NULL,
	name TEXT NOT NULL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS catalog_meta (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// seedIfNew writes the defaults once; a catalog emptied by the user stays empty
func (s *SQLiteStore) seedIfNew(ctx context.Context) error {
	var seeded string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM catalog_meta WHERE key = 'seeded'").Scan(&seeded)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("read catalog meta: %w", err)
	}
	return s.replaceAll(ctx, DefaultMaterials(), DefaultCategories())
}

// replaceAll wipes both tables and writes the given data in order
func (s *SQLiteStore) replaceAll(ctx context.Context, materials []model.Material, categories []model.Category) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		"DELETE FROM materials",
		"DELETE FROM categories",
		"DELETE FROM sqlite_sequence WHERE name IN ('materials', 'categories')",
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
	}

	for _, c := range categories {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO categories (id, code, name, description) VALUES (?, ?, ?, ?)",
			c.ID, c.Code, c.Name, c.Description,
		); err != nil {
			return fmt.Errorf("insert category %s: %w", c.ID, err)
		}
	}
	for _, m := range materials {
		if err := upsertMaterial(ctx, tx, m); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO catalog_meta (key, value) VALUES ('seeded', '1') ON CONFLICT(key) DO NOTHING",
	); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertMaterial(ctx context.Context, tx *sql.Tx, m model.Material) error {
	const stmt = `
INSERT INTO materials (id, name, aliases, category, gwp_factor, unit, density, description)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	name=excluded.name,
	aliases=excluded.aliases,
	category=excluded.category,
	gwp_factor=excluded.gwp_factor,
	unit=excluded.unit,
	density=excluded.density,
	description=excluded.description;
`
	aliases := m.Aliases
	if aliases == nil {
		aliases = []string{}
	}
	aliasJSON, err := json.Marshal(aliases)
	if err != nil {
		return err
	}

	var density sql.NullFloat64
	if m.Density != nil {
		density = sql.NullFloat64{Float64: *m.Density, Valid: true}
	}

	if _, err := tx.ExecContext(ctx, stmt,
		m.ID, m.Name, string(aliasJSON), m.Category, m.GWPFactor, m.Unit, density, m.Description,
	); err != nil {
		return fmt.Errorf("upsert material %s: %w", m.ID, err)
	}
	return nil
}

// Materials returns all materials in insertion order
func (s *SQLiteStore) Materials(ctx context.Context) ([]model.Material, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, name, aliases, category, gwp_factor, unit, density, description
FROM materials
ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	materials := []model.Material{}
	for rows.Next() {
		var (
			m           model.Material
			aliasJSON   string
			category    sql.NullString
			density     sql.NullFloat64
			description sql.NullString
		)
		if err := rows.Scan(&m.ID, &m.Name, &aliasJSON, &category, &m.GWPFactor, &m.Unit, &density, &description); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(aliasJSON), &m.Aliases); err != nil {
			return nil, fmt.Errorf("decode aliases for %s: %w", m.ID, err)
		}
		if len(m.Aliases) == 0 {
			m.Aliases = nil
		}
		m.Category = category.String
		m.Description = description.String
		if density.Valid {
			d := density.Float64
			m.Density = &d
		}
		materials = append(materials, m)
	}
	return materials, rows.Err()
}

// Categories returns the taxonomy in insertion order
func (s *SQLiteStore) Categories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, code, name, description FROM categories ORDER BY position")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []model.Category{}
	for rows.Next() {
		var (
			c           model.Category
			description sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &description); err != nil {
			return nil, err
		}
		c.Description = description.String
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func materialExists(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	var n int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM materials WHERE id = ?", id).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// AddMaterial inserts a new material; ErrDuplicate if the ID exists
func (s *SQLiteStore) AddMaterial(ctx context.Context, m model.Material) (model.Material, error) {
	m = prepareMaterial(m)
	if err := ValidateMaterial(m); err != nil {
		return model.Material{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Material{}, err
	}
	defer tx.Rollback()

	found, err := materialExists(ctx, tx, m.ID)
	if err != nil {
		return model.Material{}, err
	}
	if found {
		return model.Material{}, fmt.Errorf("%w: material id %q", ErrDuplicate, m.ID)
	}
	if err := upsertMaterial(ctx, tx, m); err != nil {
		return model.Material{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Material{}, err
	}
	return m, nil
}

// UpdateMaterial replaces an existing material, keeping its position
func (s *SQLiteStore) UpdateMaterial(ctx context.Context, m model.Material) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	found, err := materialExists(ctx, tx, m.ID)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: material %q", ErrNotFound, m.ID)
	}

	m = prepareMaterial(m)
	if err := ValidateMaterial(m); err != nil {
		return err
	}
	if err := upsertMaterial(ctx, tx, m); err != nil {
		return err
	}
	return tx.Commit()
}

// RemoveMaterial deletes a material by ID
func (s *SQLiteStore) RemoveMaterial(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM materials WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: material %q", ErrNotFound, id)
	}
	return nil
}

// Import adds or replaces materials in one transaction
func (s *SQLiteStore) Import(ctx context.Context, materials []model.Material) (ImportResult, error) {
	valid, skipped := prepareImport(materials)
	result := ImportResult{Skipped: skipped}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return result, err
	}
	defer tx.Rollback()

	for _, m := range valid {
		found, err := materialExists(ctx, tx, m.ID)
		if err != nil {
			return ImportResult{}, err
		}
		if err := upsertMaterial(ctx, tx, m); err != nil {
			return ImportResult{}, err
		}
		if found {
			result.Updated++
		} else {
			result.Imported++
		}
	}

	if err := tx.Commit(); err != nil {
		return ImportResult{}, err
	}
	return result, nil
}

// Reset restores the built-in defaults
func (s *SQLiteStore) Reset(ctx context.Context) error {
	return s.replaceAll(ctx, DefaultMaterials(), DefaultCategories())
}

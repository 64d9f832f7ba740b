package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// ErrNotFound is returned when a material does not exist.
var ErrNotFound = errors.New("not found")

// MaterialRepo reads and writes the materials table.
type MaterialRepo struct {
	db DBTX
}

// NewMaterialRepo creates a MaterialRepo on a database or transaction.
func NewMaterialRepo(conn DBTX) *MaterialRepo {
	return &MaterialRepo{db: conn}
}

func scanMaterial(row interface{ Scan(...any) error }) (model.StockMaterial, error) {
	var m model.StockMaterial
	err := row.Scan(&m.Name, &m.Width, &m.Height, &m.Price, &m.Supplier, &m.Notes)
	return m, err
}

// List returns all materials ordered by name.
func (r *MaterialRepo) List(ctx context.Context) ([]model.StockMaterial, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name, width, height, price, supplier, notes FROM materials ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}
	defer rows.Close()

	var out []model.StockMaterial
	for rows.Next() {
		m, err := scanMaterial(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning material: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Get returns one material by name.
func (r *MaterialRepo) Get(ctx context.Context, name string) (model.StockMaterial, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT name, width, height, price, supplier, notes FROM materials WHERE name = ?`, name)
	m, err := scanMaterial(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.StockMaterial{}, fmt.Errorf("material %q: %w", name, ErrNotFound)
		}
		return model.StockMaterial{}, fmt.Errorf("scanning material: %w", err)
	}
	return m, nil
}

// Upsert inserts or replaces a material after validating it.
func (r *MaterialRepo) Upsert(ctx context.Context, m model.StockMaterial) error {
	if m.Name == "" {
		return fmt.Errorf("upserting material: name is required")
	}
	if err := m.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO materials (name, width, height, price, supplier, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			width = excluded.width,
			height = excluded.height,
			price = excluded.price,
			supplier = excluded.supplier,
			notes = excluded.notes,
			updated_at = excluded.updated_at`,
		m.Name, m.Width, m.Height, m.Price, m.Supplier, m.Notes, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upserting material %q: %w", m.Name, err)
	}
	return nil
}

// Delete removes a material by name.
func (r *MaterialRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM materials WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting material %q: %w", name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting material %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("material %q: %w", name, ErrNotFound)
	}
	return nil
}

// Seed inserts the built-in catalog entries that are not present yet and
// returns how many were added. Existing rows are left alone.
func (r *MaterialRepo) Seed(ctx context.Context) (int, error) {
	added := 0
	for _, m := range model.DefaultMaterials() {
		res, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO materials (name, width, height, price, supplier, notes, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.Name, m.Width, m.Height, m.Price, m.Supplier, m.Notes, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return added, fmt.Errorf("seeding material %q: %w", m.Name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			added++
		}
	}
	return added, nil
}

// ImportMaterials upserts all materials in one transaction. Nothing is
// written when any material is invalid.
func ImportMaterials(ctx context.Context, db *sql.DB, materials []model.StockMaterial) error {
	return WithinTx(ctx, db, func(ctx context.Context, tx DBTX) error {
		repo := NewMaterialRepo(tx)
		for _, m := range materials {
			if err := repo.Upsert(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
}

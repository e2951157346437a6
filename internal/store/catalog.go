package store

import (
	"database/sql"
	"fmt"

	"github.com/mbrandolfi/specchio/internal/catalog"
)

// CatalogRepository provides access to the persisted garment catalog.
type CatalogRepository struct {
	db *sql.DB
}

// Catalog returns the catalog repository for this store.
func (s *Store) Catalog() *CatalogRepository {
	return &CatalogRepository{db: s.db}
}

// Count returns the number of catalog items.
func (r *CatalogRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM catalog_items`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Seed replaces the stored catalog with the given items, preserving their
// order. Used at startup to install the built-in catalog when the store is
// empty.
func (r *CatalogRepository) Seed(items []catalog.Item) error {
	if err := catalog.Validate(items); err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM catalog_items`); err != nil {
		return err
	}

	for pos, it := range items {
		if _, err := tx.Exec(
			`INSERT INTO catalog_items (id, name, description, garment_url, position)
			 VALUES (?, ?, ?, ?, ?)`,
			it.ID, it.Name, it.Description, it.GarmentURL, pos,
		); err != nil {
			return err
		}
		for spos, sc := range it.Scenes {
			if _, err := tx.Exec(
				`INSERT INTO scenes (id, item_id, label, prompt, position)
				 VALUES (?, ?, ?, ?, ?)`,
				sc.ID, it.ID, sc.Label, sc.Prompt, spos,
			); err != nil {
				return err
			}
		}
	}

	return tx.Commit()
}

// List returns the full catalog in stored order, scenes attached.
func (r *CatalogRepository) List() ([]catalog.Item, error) {
	rows, err := r.db.Query(
		`SELECT id, name, description, garment_url
		 FROM catalog_items ORDER BY position`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []catalog.Item
	for rows.Next() {
		var it catalog.Item
		if err := rows.Scan(&it.ID, &it.Name, &it.Description, &it.GarmentURL); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		scenes, err := r.scenesFor(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Scenes = scenes
	}
	return items, nil
}

func (r *CatalogRepository) scenesFor(itemID string) ([]catalog.Scene, error) {
	rows, err := r.db.Query(
		`SELECT id, label, prompt FROM scenes
		 WHERE item_id = ? ORDER BY position`,
		itemID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scenes []catalog.Scene
	for rows.Next() {
		var sc catalog.Scene
		if err := rows.Scan(&sc.ID, &sc.Label, &sc.Prompt); err != nil {
			return nil, err
		}
		scenes = append(scenes, sc)
	}
	return scenes, rows.Err()
}

package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Catalog items - garments the fitting room can browse
		`CREATE TABLE IF NOT EXISTS catalog_items (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			garment_url TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,

		// Scenes - backdrops/style prompts attached to a catalog item
		`CREATE TABLE IF NOT EXISTS scenes (
			id TEXT PRIMARY KEY,
			item_id TEXT NOT NULL REFERENCES catalog_items(id) ON DELETE CASCADE,
			label TEXT NOT NULL,
			prompt TEXT NOT NULL,
			position INTEGER NOT NULL
		)`,

		// Looks - history of generated results, one row per settled slot
		`CREATE TABLE IF NOT EXISTS looks (
			id TEXT PRIMARY KEY,
			epoch INTEGER NOT NULL,
			item_id TEXT NOT NULL,
			scene_id TEXT NOT NULL,
			image BLOB,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes for query performance
		`CREATE INDEX IF NOT EXISTS idx_scenes_item_id ON scenes(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_looks_epoch ON looks(epoch)`,
		`CREATE INDEX IF NOT EXISTS idx_looks_created_at ON looks(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}
	return nil
}

package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/bmgr/internal/model"
)

const currentSchemaVersion = 2

// SQLiteStorage implements Storage and LocalStore using a SQLite database.
type SQLiteStorage struct {
	db   *sql.DB
	path string
}

// NewSQLiteStorage creates a new SQLiteStorage with the given database path.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// SchemaVersion returns the migrated schema version.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	version, err := s.SchemaVersion()
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < currentSchemaVersion {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the node table.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL,
			url TEXT,
			is_folder INTEGER NOT NULL DEFAULT 0,
			date_added TEXT NOT NULL,
			date_group_modified TEXT,
			unmodifiable INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_position ON nodes(parent_id, position);
		CREATE INDEX IF NOT EXISTS idx_nodes_url ON nodes(url);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the key/value table backing LocalStore.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		CREATE TABLE IF NOT EXISTS local_storage (
			key TEXT PRIMARY KEY NOT NULL,
			value TEXT NOT NULL
		);
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

type nodeRow struct {
	node     *model.TreeNode
	parentID sql.NullString
	position int
}

// Load reads the tree from the SQLite database. An empty database yields the
// default tree with the permanent folders.
func (s *SQLiteStorage) Load() (*model.TreeNode, error) {
	rows, err := s.db.Query(`
		SELECT id, parent_id, position, title, url, is_folder,
		       date_added, date_group_modified, unmodifiable
		FROM nodes
		ORDER BY parent_id, position
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loaded []nodeRow
	byID := map[string]*model.TreeNode{}

	for rows.Next() {
		var r nodeRow
		var url, dateGroupModified sql.NullString
		var dateAdded string
		var isFolder, unmodifiable int
		t := &model.TreeNode{}

		if err := rows.Scan(
			&t.ID, &r.parentID, &r.position, &t.Title, &url, &isFolder,
			&dateAdded, &dateGroupModified, &unmodifiable,
		); err != nil {
			return nil, err
		}

		t.URL = url.String
		t.DateAdded, _ = time.Parse(time.RFC3339Nano, dateAdded)
		if dateGroupModified.Valid {
			t.DateGroupModified, _ = time.Parse(time.RFC3339Nano, dateGroupModified.String)
		}
		t.Unmodifiable = unmodifiable == 1
		if isFolder == 1 {
			t.Folder = true
			t.Children = []*model.TreeNode{}
		}

		r.node = t
		loaded = append(loaded, r)
		byID[t.ID] = t
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	root, ok := byID[model.RootID]
	if !ok {
		return model.NewEmptyTree(), nil
	}

	// Rows are ordered by position within each parent.
	for _, r := range loaded {
		if !r.parentID.Valid {
			continue
		}
		parent, ok := byID[r.parentID.String]
		if !ok {
			continue
		}
		r.node.ParentID = parent.ID
		r.node.Index = len(parent.Children)
		parent.Children = append(parent.Children, r.node)
	}

	return root, nil
}

// Save writes the tree to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Save(tree *model.TreeNode) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Clear existing data
	if _, err := tx.Exec("DELETE FROM nodes"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, parent_id, position, title, url, is_folder,
		                   date_added, date_group_modified, unmodifiable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Pre-order, so parents exist before their children.
	var insert func(t *model.TreeNode, parentID *string, position int) error
	insert = func(t *model.TreeNode, parentID *string, position int) error {
		var url *string
		isFolder := 0
		if t.IsFolder() {
			isFolder = 1
		} else {
			url = &t.URL
		}

		var dateGroupModified *string
		if !t.DateGroupModified.IsZero() {
			v := t.DateGroupModified.Format(time.RFC3339Nano)
			dateGroupModified = &v
		}

		unmodifiable := 0
		if t.Unmodifiable {
			unmodifiable = 1
		}

		if _, err := stmt.Exec(
			t.ID, parentID, position, t.Title, url, isFolder,
			t.DateAdded.Format(time.RFC3339Nano), dateGroupModified, unmodifiable,
		); err != nil {
			return err
		}

		id := t.ID
		for i, c := range t.Children {
			if err := insert(c, &id, i); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insert(tree, nil, 0); err != nil {
		return err
	}

	return tx.Commit()
}

// GetItem implements LocalStore.
func (s *SQLiteStorage) GetItem(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM local_storage WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetItem implements LocalStore.
func (s *SQLiteStorage) SetItem(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO local_storage (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// DefaultSQLitePath returns the default SQLite database path: ~/.config/bmgr/bookmarks.db
func DefaultSQLitePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "bmgr", "bookmarks.db"), nil
}

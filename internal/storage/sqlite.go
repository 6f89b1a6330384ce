package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/nikbrunner/burst/internal/logger"
	"github.com/nikbrunner/burst/internal/model"
)

// CurrentSchemaVersion is the schema version written by migrate.
const CurrentSchemaVersion = 2

// SQLiteStorage implements Storage using a SQLite database.
type SQLiteStorage struct {
	broker
	db   *sql.DB
	path string
}

var _ Storage = (*SQLiteStorage)(nil)

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

	// Pragmas are per connection
	db.SetMaxOpenConns(1)

	// Enable foreign keys and set pragmas for performance
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

// SchemaVersion returns the applied schema version.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version)
	return version, err
}

// migrate runs database migrations.
func (s *SQLiteStorage) migrate() error {
	// Check current schema version
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

	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the initial schema.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			url TEXT,
			date_added INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_nodes_parent_id ON nodes(parent_id, position);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the separator type marker and the unmodifiable flag.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		ALTER TABLE nodes ADD COLUMN type TEXT NOT NULL DEFAULT '';
		ALTER TABLE nodes ADD COLUMN unmodifiable INTEGER NOT NULL DEFAULT 0;
		CREATE INDEX IF NOT EXISTS idx_nodes_url ON nodes(url) WHERE url IS NOT NULL;
		INSERT OR REPLACE INTO schema_version (version) VALUES (2);
	`
	_, err := s.db.Exec(migration)
	return err
}

// GetTree loads every row and rebuilds the tree in sibling order.
func (s *SQLiteStorage) GetTree(ctx context.Context) ([]*model.RawNode, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, parent_id, title, url, date_added, type, unmodifiable
		FROM nodes
		ORDER BY position, rowid
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type row struct {
		node     *model.RawNode
		parentID sql.NullString
	}
	var all []row
	byID := make(map[string]*model.RawNode)

	for rows.Next() {
		var (
			n            model.RawNode
			parentID     sql.NullString
			url          sql.NullString
			unmodifiable int
		)
		if err := rows.Scan(&n.ID, &parentID, &n.Title, &url, &n.DateAdded, &n.Type, &unmodifiable); err != nil {
			return nil, err
		}
		if url.Valid {
			n.URL = &url.String
		}
		n.Unmodifiable = model.Flag(unmodifiable == 1)

		all = append(all, row{node: &n, parentID: parentID})
		byID[n.ID] = &n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tree := []*model.RawNode{}
	for _, r := range all {
		if r.parentID.Valid {
			if parent, ok := byID[r.parentID.String]; ok {
				parent.Children = append(parent.Children, r.node)
				continue
			}
		}
		tree = append(tree, r.node)
	}
	return tree, nil
}

// UpdateNode implements Storage.
func (s *SQLiteStorage) UpdateNode(ctx context.Context, id string, fields model.Fields) (*model.RawNode, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	node, err := s.lookup(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, rejected("update", id, ErrNotFound)
		}
		return nil, err
	}
	if err := applyFields(node, fields); err != nil {
		return nil, rejected("update", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE nodes SET title = ?, url = ? WHERE id = ?",
		node.Title, node.URL, id,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"id": id, "backend": "sqlite"}).Debug("node updated")
	s.publish(model.Event{Kind: model.EventChanged, ID: id, Fields: fields})
	return node, nil
}

func (s *SQLiteStorage) lookup(ctx context.Context, tx *sql.Tx, id string) (*model.RawNode, error) {
	var (
		n            model.RawNode
		url          sql.NullString
		unmodifiable int
	)
	err := tx.QueryRowContext(ctx,
		"SELECT id, title, url, date_added, type, unmodifiable FROM nodes WHERE id = ?", id,
	).Scan(&n.ID, &n.Title, &url, &n.DateAdded, &n.Type, &unmodifiable)
	if err != nil {
		return nil, err
	}
	if url.Valid {
		n.URL = &url.String
	}
	n.Unmodifiable = model.Flag(unmodifiable == 1)
	return &n, nil
}

// RemoveNode implements Storage. Descendants go with it through the
// cascading foreign key.
func (s *SQLiteStorage) RemoveNode(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	node, err := s.lookup(ctx, tx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return rejected("remove", id, ErrNotFound)
		}
		return err
	}
	if node.Unmodifiable {
		return rejected("remove", id, ErrUnmodifiable)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes WHERE id = ?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{"id": id, "backend": "sqlite"}).Debug("node removed")
	s.publish(model.Event{Kind: model.EventRemoved, ID: id})
	return nil
}

// Replace writes the tree to the SQLite database.
// Uses a transaction for atomicity - all or nothing.
func (s *SQLiteStorage) Replace(ctx context.Context, tree []*model.RawNode) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Clear existing data
	if _, err := tx.ExecContext(ctx, "DELETE FROM nodes"); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO nodes (id, parent_id, position, title, url, date_added, type, unmodifiable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	// Pre-order so parents exist before their children
	var insert func(nodes []*model.RawNode, parentID *string) error
	insert = func(nodes []*model.RawNode, parentID *string) error {
		for pos, n := range nodes {
			if n == nil {
				continue
			}
			unmodifiable := 0
			if n.Unmodifiable {
				unmodifiable = 1
			}
			if _, err := stmt.ExecContext(ctx,
				n.ID, parentID, pos, n.Title, n.URL, n.DateAdded, n.Type, unmodifiable,
			); err != nil {
				return err
			}
			id := n.ID
			if err := insert(n.Children, &id); err != nil {
				return err
			}
		}
		return nil
	}
	if err := insert(tree, nil); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.publish(model.Event{Kind: model.EventReloaded})
	return nil
}

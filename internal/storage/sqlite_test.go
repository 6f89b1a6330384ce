package storage_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nikbrunner/burst/internal/exporter"
	"github.com/nikbrunner/burst/internal/importer"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/storage"
)

func TestSQLiteStorage_EmptyDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "empty.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	raw, err := s.GetTree(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	if len(raw) != 0 {
		t.Errorf("expected empty tree, got %d nodes", len(raw))
	}
}

func TestSQLiteStorage_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "dir", "bookmarks.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage with nested dir: %v", err)
	}
	defer s.Close()

	if s.Path() != dbPath {
		t.Errorf("expected path %q, got %q", dbPath, s.Path())
	}
}

func TestSQLiteStorage_MigratesToCurrentVersion(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	version, err := s.SchemaVersion()
	if err != nil {
		t.Fatalf("failed to read version: %v", err)
	}
	if version != storage.CurrentSchemaVersion {
		t.Errorf("expected schema version %d, got %d", storage.CurrentSchemaVersion, version)
	}
	s.Close()

	// Reopening an up-to-date database must not re-run migrations
	s, err = storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen storage: %v", err)
	}
	s.Close()
}

func TestSQLiteStorage_UpgradesV1Database(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "v1.db")

	// Hand-build a v1 database with one row
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE schema_version (version INTEGER PRIMARY KEY);
		CREATE TABLE nodes (
			id TEXT PRIMARY KEY NOT NULL,
			parent_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			title TEXT NOT NULL DEFAULT '',
			url TEXT,
			date_added INTEGER NOT NULL DEFAULT 0,
			FOREIGN KEY (parent_id) REFERENCES nodes(id) ON DELETE CASCADE
		);
		INSERT INTO schema_version (version) VALUES (1);
		INSERT INTO nodes (id, title, url) VALUES ('b1', 'Old', 'https://old.example');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("failed to build v1 schema: %v", err)
	}

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	defer s.Close()

	raw, err := s.GetTree(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(raw) != 1 || raw[0].Title != "Old" || bool(raw[0].Unmodifiable) {
		t.Errorf("existing row not carried through migration: %+v", raw)
	}
}

func TestSQLiteStorage_ReplaceIsAtomic(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "atomic.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	if err := s.Replace(ctx, sampleRaw()); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}

	// Duplicate primary keys make the second insert fail
	bad := []*model.RawNode{
		{ID: "dup", Title: "A", URL: stringPtr("https://a")},
		{ID: "dup", Title: "B", URL: stringPtr("https://b")},
	}
	if err := s.Replace(ctx, bad); err == nil {
		t.Fatal("expected replace to fail on duplicate ids")
	}

	raw, err := s.GetTree(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	if len(raw) != 2 || raw[0].ID != "1" {
		t.Error("failed replace should leave the previous tree intact")
	}
}

// Integration tests for import/export with SQLite storage

func TestSQLiteStorage_ImportHTML(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "import.db")

	s, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	html := `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<TITLE>Bookmarks</TITLE>
<DL><p>
    <DT><H3>Development</H3>
    <DL><p>
        <DT><A HREF="https://github.com" ADD_DATE="1700000000">GitHub</A>
        <DT><A HREF="https://go.dev" ADD_DATE="1700000000">Go Dev</A>
    </DL><p>
    <DT><A HREF="https://example.com" ADD_DATE="1700000000">Example</A>
</DL><p>`

	raw, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse HTML: %v", err)
	}

	if err := s.Replace(context.Background(), raw); err != nil {
		t.Fatalf("failed to save: %v", err)
	}

	loaded, err := s.GetTree(context.Background())
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}

	tree := model.Normalize(loaded)
	folders, bookmarks := tree.Count()
	if folders != 1 {
		t.Errorf("expected 1 folder, got %d", folders)
	}
	if bookmarks != 3 {
		t.Errorf("expected 3 bookmarks, got %d", bookmarks)
	}
	if tree[0].Title != "Development" {
		t.Errorf("expected folder 'Development', got %q", tree[0].Title)
	}

	// Verify bookmark URLs exist
	urls := make(map[string]bool)
	for _, leaf := range model.FlattenLeaves(tree, nil) {
		urls[leaf.Node.URLString()] = true
	}
	expectedURLs := []string{"https://github.com", "https://go.dev", "https://example.com"}
	for _, url := range expectedURLs {
		if !urls[url] {
			t.Errorf("missing bookmark URL: %s", url)
		}
	}
}

func TestSQLiteStorage_ImportExportRoundtrip(t *testing.T) {
	tmpDir := t.TempDir()
	ctx := context.Background()

	s, err := storage.NewSQLiteStorage(filepath.Join(tmpDir, "roundtrip.db"))
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	defer s.Close()

	if err := s.Replace(ctx, sampleRaw()); err != nil {
		t.Fatalf("failed to save original: %v", err)
	}

	// Load and export to HTML
	loaded, err := s.GetTree(ctx)
	if err != nil {
		t.Fatalf("failed to load: %v", err)
	}
	original := model.Normalize(loaded)
	html := exporter.ExportHTML(original)

	// Create new storage and import from HTML
	s2, err := storage.NewSQLiteStorage(filepath.Join(tmpDir, "roundtrip2.db"))
	if err != nil {
		t.Fatalf("failed to create second storage: %v", err)
	}
	defer s2.Close()

	raw, err := importer.ParseHTMLBookmarks(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse exported HTML: %v", err)
	}
	if err := s2.Replace(ctx, raw); err != nil {
		t.Fatalf("failed to save imported: %v", err)
	}

	reloaded, err := s2.GetTree(ctx)
	if err != nil {
		t.Fatalf("failed to reload: %v", err)
	}
	roundTripped := model.Normalize(reloaded)

	// Counts match (the separator was already dropped on export)
	wantFolders, wantBookmarks := original.Count()
	gotFolders, gotBookmarks := roundTripped.Count()
	if gotFolders != wantFolders || gotBookmarks != wantBookmarks {
		t.Errorf("count mismatch: expected %d/%d, got %d/%d",
			wantFolders, wantBookmarks, gotFolders, gotBookmarks)
	}

	// Paths and dates survive
	want := model.FlattenLeaves(original, nil)
	got := model.FlattenLeaves(roundTripped, nil)
	for i := range want {
		if strings.Join(got[i].Path, "/") != strings.Join(want[i].Path, "/") {
			t.Errorf("leaf %d: expected path %v, got %v", i, want[i].Path, got[i].Path)
		}
		if got[i].Node.DateAdded != want[i].Node.DateAdded {
			t.Errorf("leaf %d: expected date %d, got %d", i, want[i].Node.DateAdded, got[i].Node.DateAdded)
		}
	}
}

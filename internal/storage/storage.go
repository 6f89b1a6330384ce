// Package storage persists the bookmark tree and acts as the tree source
// and mutation sink for the burst service.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/burst/internal/logger"
	"github.com/nikbrunner/burst/internal/model"
)

// Storage defines the interface for persisting bookmarks.
type Storage interface {
	// GetTree returns the full raw tree.
	GetTree(ctx context.Context) ([]*model.RawNode, error)
	// UpdateNode changes a node's title and/or url and returns it.
	UpdateNode(ctx context.Context, id string, fields model.Fields) (*model.RawNode, error)
	// RemoveNode removes a node and its subtree.
	RemoveNode(ctx context.Context, id string) error
	// Replace overwrites the whole tree.
	Replace(ctx context.Context, tree []*model.RawNode) error
	// Subscribe delivers change notifications for every mutation.
	Subscribe() (<-chan model.Event, func())
	Path() string
	Close() error
}

// JSONStorage implements Storage using a JSON file holding the raw tree.
type JSONStorage struct {
	broker
	mu   sync.Mutex
	path string
}

var _ Storage = (*JSONStorage)(nil)

// NewJSONStorage creates a new JSONStorage with the given file path.
func NewJSONStorage(path string) *JSONStorage {
	return &JSONStorage{path: path}
}

// Path returns the storage file path.
func (s *JSONStorage) Path() string {
	return s.path
}

// Close is a no-op.
func (s *JSONStorage) Close() error {
	return nil
}

// GetTree reads the tree from the JSON file.
// Returns an empty tree if the file doesn't exist.
func (s *JSONStorage) GetTree(ctx context.Context) ([]*model.RawNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *JSONStorage) load() ([]*model.RawNode, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*model.RawNode{}, nil
		}
		return nil, err
	}

	var tree []*model.RawNode
	if err := json.Unmarshal(data, &tree); err != nil {
		// Browser exports are a single root object
		var root model.RawNode
		if rootErr := json.Unmarshal(data, &root); rootErr != nil {
			return nil, fmt.Errorf("decode %s: %w", s.path, err)
		}
		tree = []*model.RawNode{&root}
	}
	if tree == nil {
		tree = []*model.RawNode{}
	}
	return tree, nil
}

// save writes the tree to the JSON file.
// Creates the directory if it doesn't exist.
func (s *JSONStorage) save(tree []*model.RawNode) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(s.path, data, 0644)
}

// UpdateNode implements Storage.
func (s *JSONStorage) UpdateNode(ctx context.Context, id string, fields model.Fields) (*model.RawNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	updated, err := s.update(id, fields)
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{"id": id, "backend": "json"}).Debug("node updated")
	s.publish(model.Event{Kind: model.EventChanged, ID: id, Fields: fields})
	return updated, nil
}

func (s *JSONStorage) update(id string, fields model.Fields) (*model.RawNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return nil, err
	}
	node := findRaw(tree, id)
	if node == nil {
		return nil, rejected("update", id, ErrNotFound)
	}
	if err := applyFields(node, fields); err != nil {
		return nil, rejected("update", id, err)
	}
	if err := s.save(tree); err != nil {
		return nil, err
	}
	return detached(node), nil
}

// RemoveNode implements Storage.
func (s *JSONStorage) RemoveNode(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.remove(id); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{"id": id, "backend": "json"}).Debug("node removed")
	s.publish(model.Event{Kind: model.EventRemoved, ID: id})
	return nil
}

func (s *JSONStorage) remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tree, err := s.load()
	if err != nil {
		return err
	}
	node := findRaw(tree, id)
	if node == nil {
		return rejected("remove", id, ErrNotFound)
	}
	if node.Unmodifiable {
		return rejected("remove", id, ErrUnmodifiable)
	}
	tree, _ = removeRaw(tree, id)
	return s.save(tree)
}

// Replace implements Storage.
func (s *JSONStorage) Replace(ctx context.Context, tree []*model.RawNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	err := s.save(tree)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(model.Event{Kind: model.EventReloaded})
	return nil
}

// Backend names.
const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Open opens the storage backend named by backend.
func Open(backend, path string) (Storage, error) {
	switch backend {
	case BackendSQLite:
		return NewSQLiteStorage(path)
	case BackendJSON, "":
		return NewJSONStorage(path), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q", backend)
}

// DefaultPath returns the data file for backend inside dir:
// bookmarks.db for sqlite, bookmarks.json otherwise.
func DefaultPath(dir, backend string) string {
	if backend == BackendSQLite {
		return filepath.Join(dir, "bookmarks.db")
	}
	return filepath.Join(dir, "bookmarks.json")
}

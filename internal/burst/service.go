// Package burst owns the normalized bookmark tree. It loads the tree from a
// TreeSource, keeps it in step with change notifications, and hands out
// duplicate groups, search results and sorted views as snapshots.
package burst

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/burst/internal/duplicates"
	"github.com/nikbrunner/burst/internal/logger"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/search"
	"github.com/nikbrunner/burst/internal/sorter"
)

var (
	// ErrSourceUnavailable wraps a failed tree fetch.
	ErrSourceUnavailable = errors.New("tree source unavailable")
	// ErrNotFound means the id is not in the current tree.
	ErrNotFound = errors.New("bookmark not found")
)

// TreeSource supplies the raw bookmark tree.
type TreeSource interface {
	GetTree(ctx context.Context) ([]*model.RawNode, error)
}

// MutationSink applies edits and removals. Its errors are surfaced to the
// caller unchanged.
type MutationSink interface {
	UpdateNode(ctx context.Context, id string, fields model.Fields) (*model.RawNode, error)
	RemoveNode(ctx context.Context, id string) error
}

// Options configures a Service.
type Options struct {
	// SortMode is applied recursively after every full load.
	SortMode sorter.Mode
	Strategy search.Strategy
	Search   search.Options
}

// DefaultOptions returns Folders First ordering and the score strategy.
func DefaultOptions() Options {
	return Options{
		SortMode: sorter.FoldersFirst,
		Strategy: search.StrategyScore,
		Search:   search.DefaultOptions(),
	}
}

// Service is the single owner of the tree. All reads and notification
// handling go through its lock; nothing it returns aliases the live tree.
type Service struct {
	source TreeSource
	sink   MutationSink
	opts   Options

	mu     sync.RWMutex
	tree   model.Tree
	dupKey model.Key // non-empty while the duplicate view is active
	dupes  duplicates.Set
}

// New creates a Service. Call Refresh before reading.
func New(source TreeSource, sink MutationSink, opts Options) *Service {
	return &Service{
		source: source,
		sink:   sink,
		opts:   opts,
		tree:   model.Tree{},
	}
}

// Refresh fetches the whole tree from the source and replaces the owned
// tree. On failure the previous tree is kept.
func (s *Service) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshLocked(ctx)
}

func (s *Service) refreshLocked(ctx context.Context) error {
	raw, err := s.source.GetTree(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSourceUnavailable, err)
	}

	tree := model.Normalize(model.RootChildren(raw))
	sorter.Sort(tree, s.opts.SortMode, true)
	s.tree = tree

	folders, bookmarks := tree.Count()
	logger.Log.WithFields(logrus.Fields{
		"folders":   folders,
		"bookmarks": bookmarks,
	}).Debug("tree loaded")

	return s.recomputeLocked(ctx)
}

// recomputeLocked rebuilds the duplicate view from scratch when it is active.
// Grouping runs over an alphabetically sorted copy so the owned tree keeps
// the caller's order.
func (s *Service) recomputeLocked(ctx context.Context) error {
	if s.dupKey == "" {
		return nil
	}
	view := s.tree.Clone()
	sorter.Sort(view, sorter.Alphabetical, true)
	set, err := duplicates.FindDuplicatesContext(ctx, view, s.dupKey)
	if err != nil {
		return err
	}
	s.dupes = set
	return nil
}

// Tree returns a snapshot of the current tree.
func (s *Service) Tree() model.Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tree.Clone()
}

// Sort reorders the owned tree and returns a snapshot.
func (s *Service) Sort(mode sorter.Mode, recursive bool) model.Tree {
	s.mu.Lock()
	defer s.mu.Unlock()
	sorter.Sort(s.tree, mode, recursive)
	return s.tree.Clone()
}

// Duplicates activates the duplicate view for key: an alphabetically sorted
// copy of the tree is grouped and the groups are returned as a snapshot.
// Later notifications keep the view current until CloseDuplicates.
func (s *Service) Duplicates(ctx context.Context, key model.Key) (duplicates.Set, error) {
	if _, err := model.ParseKey(string(key)); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.dupKey
	s.dupKey = key
	if err := s.recomputeLocked(ctx); err != nil {
		s.dupKey = previous
		return nil, err
	}
	return snapshotSet(s.dupes), nil
}

// DuplicateView returns the active view's key and groups.
func (s *Service) DuplicateView() (model.Key, duplicates.Set, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.dupKey == "" {
		return "", nil, false
	}
	return s.dupKey, snapshotSet(s.dupes), true
}

// CloseDuplicates deactivates the duplicate view.
func (s *Service) CloseDuplicates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dupKey = ""
	s.dupes = nil
}

func snapshotSet(set duplicates.Set) duplicates.Set {
	out := make(duplicates.Set, len(set))
	for i, g := range set {
		nodes := make([]*model.Node, len(g.Nodes))
		for j, n := range g.Nodes {
			nodes[j] = n.Clone()
		}
		out[i] = duplicates.Group{Key: g.Key, Nodes: nodes}
	}
	return out
}

// SearchRequest describes a search. Zero values fall back to the service
// options.
type SearchRequest struct {
	Key      model.Key
	Query    string
	Strategy search.Strategy
	// Threshold overrides the score threshold or edit distance when > 0.
	Threshold int
}

func (s *Service) matcher(req SearchRequest) (search.Matcher, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = s.opts.Strategy
	}
	opts := s.opts.Search
	if req.Threshold > 0 {
		opts.ScoreThreshold = req.Threshold
		opts.TitleDistance = req.Threshold
		opts.URLDistance = req.Threshold
	}
	return search.NewMatcher(strategy, req.Key, opts)
}

// Search returns ranked matches over every bookmark.
func (s *Service) Search(ctx context.Context, req SearchRequest) ([]search.SearchResult, error) {
	m, err := s.matcher(req)
	if err != nil {
		return nil, err
	}

	// Flattening refreshes Node.Path, so this is a write.
	s.mu.Lock()
	defer s.mu.Unlock()

	results, err := search.Tree(ctx, s.tree, req.Key, req.Query, m)
	if err != nil {
		return nil, err
	}
	for i := range results {
		results[i].Node = results[i].Node.Clone()
	}
	return results, nil
}

// Filter returns the tree pruned to matching bookmarks and their folders.
func (s *Service) Filter(req SearchRequest) (model.Tree, error) {
	m, err := s.matcher(req)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return search.Filter(s.tree, req.Key, req.Query, m)
}

// Toggle flips the checked state of a node. Folders toggle their direct
// bookmarks too.
func (s *Service) Toggle(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	checked, ok := s.tree.Toggle(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return checked, nil
}

// Checked returns snapshots of every checked node.
func (s *Service) Checked() []*model.Node {
	s.mu.RLock()
	defer s.mu.RUnlock()
	nodes := model.CheckedNodes(s.tree)
	out := make([]*model.Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// ClearChecked unchecks everything and returns how many nodes were checked.
func (s *Service) ClearChecked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return model.ClearChecked(s.tree)
}

// CheckedURLs returns the URLs of the checked bookmarks, ready to open.
func (s *Service) CheckedURLs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CheckedURLs(s.tree)
}

// Node returns a snapshot of one node with its path filled in.
func (s *Service) Node(id string) (*model.Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := s.tree.Find(id)
	if n == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	out := n.Clone()
	out.Path = s.tree.PathOf(id)
	return out, nil
}

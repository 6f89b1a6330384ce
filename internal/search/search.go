package search

import (
	"context"
	"slices"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/nikbrunner/burst/internal/model"
)

// SearchResult represents a bookmark matching a query.
type SearchResult struct {
	Node           *model.Node `json:"node"`
	Path           []string    `json:"path"`
	Score          float64     `json:"score"`
	MatchedIndexes []int       `json:"matchedIndexes,omitempty"` // subsequence strategy only
}

// leafValues implements fuzzy.Source over flattened bookmarks.
type leafValues struct {
	leaves []model.Leaf
	key    model.Key
}

func (lv leafValues) String(i int) string {
	return lv.key.Value(lv.leaves[i].Node)
}

func (lv leafValues) Len() int {
	return len(lv.leaves)
}

// Tree searches every bookmark's key field and returns the matches, best
// first. Equal scores keep tree order. An empty or blank query returns
// nothing.
func Tree(ctx context.Context, tree model.Tree, key model.Key, query string, m Matcher) ([]SearchResult, error) {
	if _, err := model.ParseKey(string(key)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	leaves := model.FlattenLeaves(tree, nil)

	if _, ok := m.(SubsequenceMatcher); ok {
		return subsequenceSearch(leaves, key, query), nil
	}

	var results []SearchResult
	for _, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		candidate := key.Value(leaf.Node)
		if candidate == "" {
			continue
		}
		score, ok := m.Match(query, candidate)
		if !ok {
			continue
		}
		results = append(results, SearchResult{Node: leaf.Node, Path: leaf.Path, Score: score})
	}

	slices.SortStableFunc(results, func(a, b SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	return results, nil
}

// subsequenceSearch runs one fuzzy pass over all leaves; fuzzy.FindFrom
// already sorts by score.
func subsequenceSearch(leaves []model.Leaf, key model.Key, query string) []SearchResult {
	source := leafValues{leaves: leaves, key: key}
	matches := fuzzy.FindFrom(query, source)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		leaf := leaves[m.Index]
		results[i] = SearchResult{
			Node:           leaf.Node,
			Path:           leaf.Path,
			Score:          float64(m.Score),
			MatchedIndexes: m.MatchedIndexes,
		}
	}
	return results
}

// Filter returns a pruned copy of the tree that keeps matching bookmarks and
// every folder that contains one, preserving structure for display.
// Folders themselves are never matched.
func Filter(tree model.Tree, key model.Key, query string, m Matcher) (model.Tree, error) {
	if _, err := model.ParseKey(string(key)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return model.Tree{}, nil
	}
	return filterNodes(tree, key, query, m), nil
}

func filterNodes(nodes []*model.Node, key model.Key, query string, m Matcher) model.Tree {
	out := model.Tree{}
	for _, n := range nodes {
		if n.IsFolder() {
			children := filterNodes(n.Children, key, query, m)
			if len(children) == 0 {
				continue
			}
			folder := *n
			folder.Children = children
			out = append(out, &folder)
			continue
		}
		candidate := key.Value(n)
		if candidate == "" {
			continue
		}
		if _, ok := m.Match(query, candidate); ok {
			out = append(out, n.Clone())
		}
	}
	return out
}

// Package duplicates groups bookmarks that share a URL or a title.
//
// Grouping is exact string equality on the raw field value.
//
// Groups hold references into the tree they were computed from, not copies.
// They are ephemeral: recompute them whenever the tree changes.
//
// Bookmarks with an empty value for the key are grouped under "" like any
// other value, so every pair of untitled bookmarks is reported as a title
// duplicate.
package duplicates

import (
	"context"

	"github.com/nikbrunner/burst/internal/model"
)

// Group is a set of two or more bookmarks sharing the same key value.
type Group struct {
	Key   string        `json:"key"`
	Nodes []*model.Node `json:"nodes"`
}

// Set holds duplicate groups in first-seen order.
type Set []Group

// Map returns the groups keyed by value.
func (s Set) Map() map[string][]*model.Node {
	m := make(map[string][]*model.Node, len(s))
	for _, g := range s {
		m[g.Key] = g.Nodes
	}
	return m
}

// Get returns the group for a value.
func (s Set) Get(value string) (Group, bool) {
	for _, g := range s {
		if g.Key == value {
			return g, true
		}
	}
	return Group{}, false
}

// Members returns the total number of bookmarks across all groups.
func (s Set) Members() int {
	total := 0
	for _, g := range s {
		total += len(g.Nodes)
	}
	return total
}

// FindDuplicates flattens the tree and buckets bookmarks by the key's value.
// Only buckets with more than one member are returned. Folders never take part.
func FindDuplicates(tree model.Tree, key model.Key) (Set, error) {
	return FindDuplicatesContext(context.Background(), tree, key)
}

// FindDuplicatesContext is FindDuplicates with cancellation between leaves.
func FindDuplicatesContext(ctx context.Context, tree model.Tree, key model.Key) (Set, error) {
	if _, err := model.ParseKey(string(key)); err != nil {
		return nil, err
	}

	leaves := model.FlattenLeaves(tree, nil)

	buckets := make(map[string][]*model.Node)
	var order []string
	for _, leaf := range leaves {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		value := key.Value(leaf.Node)
		if _, seen := buckets[value]; !seen {
			order = append(order, value)
		}
		buckets[value] = append(buckets[value], leaf.Node)
	}

	var set Set
	for _, value := range order {
		nodes := buckets[value]
		// Only report values with at least one other duplicate.
		if len(nodes) < 2 {
			continue
		}
		set = append(set, Group{Key: value, Nodes: nodes})
	}
	return set, nil
}

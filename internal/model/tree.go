package model

// Tree is the normalized bookmark tree: the root-level nodes in sibling order.
type Tree []*Node

// Leaf is a flattened bookmark together with the path it was found under.
type Leaf struct {
	Node *Node
	Path []string
}

// FlattenLeaves walks the tree in current sibling order and returns every
// bookmark. Each leaf's path is prefix + ancestor folder titles + its own
// title; the node's Path field is updated to match.
func FlattenLeaves(tree Tree, prefix []string) []Leaf {
	var out []Leaf
	flattenLeaves(tree, prefix, &out)
	return out
}

func flattenLeaves(nodes []*Node, prefix []string, out *[]Leaf) {
	for _, n := range nodes {
		if n.IsFolder() {
			if len(n.Children) > 0 {
				flattenLeaves(n.Children, extend(prefix, n.Title), out)
			}
			continue
		}
		path := extend(prefix, n.Title)
		n.Path = path
		*out = append(*out, Leaf{Node: n, Path: path})
	}
}

// extend returns a fresh slice so sibling paths never share a backing array.
func extend(prefix []string, title string) []string {
	path := make([]string, len(prefix), len(prefix)+1)
	copy(path, prefix)
	return append(path, title)
}

// FlattenAll returns every node, folders included, in pre-order.
func FlattenAll(tree Tree) []*Node {
	var out []*Node
	var walk func([]*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			out = append(out, n)
			if len(n.Children) > 0 {
				walk(n.Children)
			}
		}
	}
	walk(tree)
	return out
}

// Find locates a node by ID with a depth-first search. Returns nil if not found.
func (t Tree) Find(id string) *Node {
	n, _ := t.locate(id)
	return n
}

// Parent returns the folder containing the node with the given ID.
// Root-level nodes and unknown IDs return nil.
func (t Tree) Parent(id string) *Node {
	_, parent := t.locate(id)
	return parent
}

// PathOf returns the titles from the root down to and including the node
// with the given ID, the same path FlattenLeaves assigns. Unknown IDs
// return nil.
func (t Tree) PathOf(id string) []string {
	n := t.Find(id)
	if n == nil {
		return nil
	}
	path := []string{n.Title}
	for p := t.Parent(id); p != nil; p = t.Parent(p.ID) {
		path = append([]string{p.Title}, path...)
	}
	return path
}

// locate returns the node and its parent folder (nil at root level).
func (t Tree) locate(id string) (*Node, *Node) {
	var search func(nodes []*Node, parent *Node) (*Node, *Node)
	search = func(nodes []*Node, parent *Node) (*Node, *Node) {
		for _, n := range nodes {
			if n.ID == id {
				return n, parent
			}
			if len(n.Children) > 0 {
				if found, p := search(n.Children, n); found != nil {
					return found, p
				}
			}
		}
		return nil, nil
	}
	return search(t, nil)
}

// Update merges changed fields into the node with the given ID in place.
// Path is left alone; it is recomputed on the next flatten.
// Returns false if the ID is not in the tree.
func (t Tree) Update(id string, fields Fields) bool {
	n := t.Find(id)
	if n == nil {
		return false
	}
	if fields.Title != nil {
		n.Title = *fields.Title
	}
	if fields.URL != nil {
		url := *fields.URL
		n.URL = &url
	}
	return true
}

// Remove splices the node with the given ID out of its parent's children.
// Returns the updated tree and whether the node was found.
func (t Tree) Remove(id string) (Tree, bool) {
	n, parent := t.locate(id)
	if n == nil {
		return t, false
	}
	if parent == nil {
		return without(t, id), true
	}
	parent.Children = without(parent.Children, id)
	return t, true
}

// without returns a new slice of nodes minus the one with the given ID.
func without(nodes []*Node, id string) []*Node {
	out := make([]*Node, 0, len(nodes))
	for _, n := range nodes {
		if n.ID != id {
			out = append(out, n)
		}
	}
	return out
}

// Clone returns a deep copy of the tree.
func (t Tree) Clone() Tree {
	if t == nil {
		return nil
	}
	out := make(Tree, len(t))
	for i, n := range t {
		out[i] = n.Clone()
	}
	return out
}

// Count returns the number of folders and bookmarks in the tree.
func (t Tree) Count() (folders, bookmarks int) {
	for _, n := range FlattenAll(t) {
		if n.IsFolder() {
			folders++
		} else {
			bookmarks++
		}
	}
	return folders, bookmarks
}

package model

// Node is a normalized bookmark tree entry.
// A node with a URL is a bookmark, a node without one is a folder.
type Node struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	URL          *string  `json:"url,omitempty"` // nil = folder
	DateAdded    int64    `json:"dateAdded"`     // epoch milliseconds
	Unmodifiable bool     `json:"unmodifiable,omitempty"`
	Checked      bool     `json:"checked,omitempty"`
	Children     []*Node  `json:"children,omitempty"`
	Path         []string `json:"path,omitempty"` // derived, see FlattenLeaves
}

// NewBookmarkParams holds parameters for creating a bookmark node.
type NewBookmarkParams struct {
	ID        string
	Title     string
	URL       string
	DateAdded int64
}

// NewBookmark creates a bookmark node.
func NewBookmark(params NewBookmarkParams) *Node {
	url := params.URL
	return &Node{
		ID:        params.ID,
		Title:     params.Title,
		URL:       &url,
		DateAdded: params.DateAdded,
	}
}

// NewFolderParams holds parameters for creating a folder node.
type NewFolderParams struct {
	ID        string
	Title     string
	DateAdded int64
	Children  []*Node
}

// NewFolder creates a folder node.
func NewFolder(params NewFolderParams) *Node {
	children := params.Children
	if children == nil {
		children = []*Node{}
	}
	return &Node{
		ID:        params.ID,
		Title:     params.Title,
		DateAdded: params.DateAdded,
		Children:  children,
	}
}

// IsFolder reports whether the node is a folder. URL presence is authoritative.
func (n *Node) IsFolder() bool {
	return n.URL == nil
}

// URLString returns the URL or "" for folders.
func (n *Node) URLString() string {
	if n.URL == nil {
		return ""
	}
	return *n.URL
}

// Folder returns the ancestor folder titles, i.e. Path without the node's own title.
func (n *Node) Folder() []string {
	if len(n.Path) == 0 {
		return nil
	}
	out := make([]string, len(n.Path)-1)
	copy(out, n.Path[:len(n.Path)-1])
	return out
}

// Clone returns a deep copy of the node and its subtree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.URL != nil {
		url := *n.URL
		c.URL = &url
	}
	if n.Path != nil {
		c.Path = append([]string(nil), n.Path...)
	}
	if n.Children != nil {
		c.Children = make([]*Node, len(n.Children))
		for i, child := range n.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Fields holds the mutable fields of a change notification or edit.
// Nil means "unchanged".
type Fields struct {
	Title *string `json:"title,omitempty"`
	URL   *string `json:"url,omitempty"`
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Title == nil && f.URL == nil
}

// EventKind distinguishes change notifications.
type EventKind int

const (
	EventChanged EventKind = iota
	EventRemoved
	// EventReloaded means the whole tree was replaced (import).
	EventReloaded
)

func (k EventKind) String() string {
	switch k {
	case EventChanged:
		return "changed"
	case EventRemoved:
		return "removed"
	case EventReloaded:
		return "reloaded"
	default:
		return "unknown"
	}
}

// Event is a change notification delivered by the bookmark store.
type Event struct {
	Kind   EventKind
	ID     string
	Fields Fields // only for EventChanged
}

package model

// SetChecked sets the checked state of a node. For a folder the state is
// propagated to its children; with skipFolders only the folder's direct
// bookmarks follow, sub-folders are left alone.
func SetChecked(n *Node, checked, skipFolders bool) {
	n.Checked = checked
	for _, child := range n.Children {
		if child.IsFolder() && skipFolders {
			continue
		}
		SetChecked(child, checked, skipFolders)
	}
}

// Toggle flips the selection of the node with the given ID. Toggling a
// folder checks or unchecks its direct bookmarks along with it.
// Returns the new state and false if the ID is unknown.
func (t Tree) Toggle(id string) (bool, bool) {
	n := t.Find(id)
	if n == nil {
		return false, false
	}
	if n.IsFolder() {
		SetChecked(n, !n.Checked, true)
	} else {
		n.Checked = !n.Checked
	}
	return n.Checked, true
}

// CheckedNodes returns every checked node, children before their folder.
func CheckedNodes(tree Tree) []*Node {
	var out []*Node
	for _, n := range tree {
		if n.IsFolder() && len(n.Children) > 0 {
			out = append(out, CheckedNodes(n.Children)...)
		}
		if n.Checked {
			out = append(out, n)
		}
	}
	return out
}

// ClearChecked unchecks every node and returns how many were checked.
func ClearChecked(tree Tree) int {
	cleared := 0
	for _, n := range FlattenAll(tree) {
		if n.Checked {
			n.Checked = false
			cleared++
		}
	}
	return cleared
}

// CheckedURLs returns the URLs of checked bookmarks in CheckedNodes order.
// Checked folders contribute nothing themselves.
func CheckedURLs(tree Tree) []string {
	urls := []string{}
	for _, n := range CheckedNodes(tree) {
		if !n.IsFolder() {
			urls = append(urls, n.URLString())
		}
	}
	return urls
}

// Package report renders trees, duplicate groups and search results for the
// terminal with pterm.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"

	"github.com/nikbrunner/burst/internal/duplicates"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/search"
)

// rootSeparator is shown for bookmarks at the top level.
const rootSeparator = "/"

// DuplicateLevels lists each group's key at level 0 and its members at
// level 1.
func DuplicateLevels(set duplicates.Set, key model.Key) pterm.LeveledList {
	var list pterm.LeveledList
	for _, g := range set {
		list = append(list, pterm.LeveledListItem{Level: 0, Text: groupLabel(g, key)})
		for _, n := range g.Nodes {
			list = append(list, pterm.LeveledListItem{Level: 1, Text: memberLabel(n, key)})
		}
	}
	return list
}

func groupLabel(g duplicates.Group, key model.Key) string {
	label := g.Key
	if label == "" {
		label = fmt.Sprintf("(empty %s)", key)
	}
	return fmt.Sprintf("%s %s", pterm.Cyan(label), pterm.FgGray.Sprintf("x%d", len(g.Nodes)))
}

// memberLabel shows the other field and the folder path.
func memberLabel(n *model.Node, key model.Key) string {
	other := n.Title
	if key == model.KeyTitle {
		other = n.URLString()
	}
	if other == "" {
		other = "(untitled)"
	}
	return fmt.Sprintf("%s  %s  %s", other, pterm.FgGray.Sprint(FolderPath(n)), pterm.FgGray.Sprint("#"+n.ID))
}

// FolderPath joins a node's ancestor titles.
func FolderPath(n *model.Node) string {
	folder := n.Folder()
	if len(folder) == 0 {
		return rootSeparator
	}
	return strings.Join(folder, rootSeparator)
}

// Duplicates writes the groups as a pterm tree.
func Duplicates(w io.Writer, set duplicates.Set, key model.Key) error {
	if len(set) == 0 {
		_, err := io.WriteString(w, pterm.Success.Sprintln("No duplicates by", key))
		return err
	}

	root := putils.TreeFromLeveledList(DuplicateLevels(set, key))
	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(w, out); err != nil {
		return err
	}
	summary := fmt.Sprintf("%d groups, %d bookmarks share a %s", len(set), set.Members(), key)
	_, err = io.WriteString(w, pterm.Info.Sprintln(summary))
	return err
}

// TreeLevels lists every node by depth. Folders get a trailing slash.
func TreeLevels(tree model.Tree) pterm.LeveledList {
	var list pterm.LeveledList
	var walk func(nodes []*model.Node, level int)
	walk = func(nodes []*model.Node, level int) {
		for _, n := range nodes {
			list = append(list, pterm.LeveledListItem{Level: level, Text: nodeLabel(n)})
			if n.IsFolder() {
				walk(n.Children, level+1)
			}
		}
	}
	walk(tree, 0)
	return list
}

func nodeLabel(n *model.Node) string {
	if n.IsFolder() {
		label := pterm.Cyan(n.Title + "/")
		if n.Unmodifiable {
			label += pterm.FgGray.Sprint(" (locked)")
		}
		return label
	}
	title := n.Title
	if title == "" {
		title = "(untitled)"
	}
	return fmt.Sprintf("%s  %s", title, pterm.FgGray.Sprint(n.URLString()))
}

// Tree writes the bookmark tree.
func Tree(w io.Writer, tree model.Tree) error {
	if len(tree) == 0 {
		_, err := io.WriteString(w, pterm.Warning.Sprintln("No bookmarks"))
		return err
	}
	root := putils.TreeFromLeveledList(TreeLevels(tree))
	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// SearchResults writes ranked matches as a table.
func SearchResults(w io.Writer, results []search.SearchResult) error {
	if len(results) == 0 {
		_, err := io.WriteString(w, pterm.Warning.Sprintln("No matches"))
		return err
	}

	data := pterm.TableData{{"Score", "Title", "URL", "Folder", "ID"}}
	for _, r := range results {
		data = append(data, []string{
			strconv.FormatFloat(r.Score, 'f', 0, 64),
			r.Node.Title,
			r.Node.URLString(),
			FolderPath(r.Node),
			r.Node.ID,
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out+"\n")
	return err
}

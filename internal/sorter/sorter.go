// Package sorter orders sibling bookmark nodes.
package sorter

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nikbrunner/burst/internal/model"
)

// Mode selects the comparator used to order siblings.
type Mode int

const (
	FoldersFirst Mode = iota
	DateAddedNewestLast
	DateAddedNewestFirst
	Alphabetical
)

var modeNames = map[Mode]string{
	FoldersFirst:         "Folders First",
	DateAddedNewestLast:  "Date Added Newest Last",
	DateAddedNewestFirst: "Date Added Newest First",
	Alphabetical:         "Alphabetical",
}

// Modes lists every sort mode in display order.
func Modes() []Mode {
	return []Mode{FoldersFirst, DateAddedNewestFirst, DateAddedNewestLast, Alphabetical}
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts the display name ("Folders First") or a short slug
// ("folders", "newest", "oldest", "alpha"), case-insensitive.
func ParseMode(s string) (Mode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if norm == strings.ToLower(name) {
			return m, nil
		}
	}
	switch norm {
	case "folders", "folders-first":
		return FoldersFirst, nil
	case "oldest", "date", "date-asc", "newest-last":
		return DateAddedNewestLast, nil
	case "newest", "date-desc", "newest-first":
		return DateAddedNewestFirst, nil
	case "alpha", "alphabetical", "title":
		return Alphabetical, nil
	}
	return FoldersFirst, fmt.Errorf("unknown sort mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// Comparator returns a three-way comparison function for the mode.
// Title comparisons use Unicode collation, so they are locale-aware; a
// missing title compares as the empty string.
func Comparator(m Mode) func(a, b *model.Node) int {
	col := collate.New(language.Und)
	byTitle := func(a, b *model.Node) int {
		return col.CompareString(a.Title, b.Title)
	}

	switch m {
	case FoldersFirst:
		return func(a, b *model.Node) int {
			aFolder, bFolder := a.IsFolder(), b.IsFolder()
			switch {
			case aFolder && !bFolder:
				return -1
			case !aFolder && bFolder:
				return 1
			}
			return byTitle(a, b)
		}
	case DateAddedNewestLast:
		return func(a, b *model.Node) int {
			return cmp.Compare(a.DateAdded, b.DateAdded)
		}
	case DateAddedNewestFirst:
		return func(a, b *model.Node) int {
			return cmp.Compare(b.DateAdded, a.DateAdded)
		}
	case Alphabetical:
		return byTitle
	default:
		return func(a, b *model.Node) int { return 0 }
	}
}

// Sort orders nodes in place with a stable sort. With recursive, every
// folder's children are sorted as well; otherwise only this level is.
func Sort(nodes []*model.Node, m Mode, recursive bool) {
	sortLevel(nodes, Comparator(m), recursive)
}

func sortLevel(nodes []*model.Node, compare func(a, b *model.Node) int, recursive bool) {
	slices.SortStableFunc(nodes, compare)
	if !recursive {
		return
	}
	for _, n := range nodes {
		if len(n.Children) > 0 {
			sortLevel(n.Children, compare, recursive)
		}
	}
}

// IsSorted reports whether nodes are in the order the mode produces.
func IsSorted(nodes []*model.Node, m Mode) bool {
	return slices.IsSortedFunc(nodes, Comparator(m))
}

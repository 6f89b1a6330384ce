package picker

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/report"
	"github.com/nikbrunner/burst/internal/search"
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))
)

// copiedMsg reports the outcome of a clipboard copy.
type copiedMsg struct {
	url string
	err error
}

// Picker is a simple TUI for selecting from search results.
type Picker struct {
	results   []search.SearchResult
	key       model.Key
	query     string
	keys      KeyMap
	copy      func(string) error
	cursor    int
	checked   map[int]bool
	status    string
	selected  bool
	cancelled bool
	width     int
	height    int
}

// New creates a new Picker over results for a search of key.
func New(results []search.SearchResult, key model.Key, query string) Picker {
	return Picker{
		results: results,
		key:     key,
		query:   query,
		keys:    DefaultKeyMap(),
		copy:    clipboard.WriteAll,
		checked: make(map[int]bool),
		width:   80,
		height:  24,
	}
}

// WithClipboard replaces the clipboard writer.
func (p Picker) WithClipboard(write func(string) error) Picker {
	p.copy = write
	return p
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case copiedMsg:
		if msg.err != nil {
			p.status = "copy failed: " + msg.err.Error()
		} else {
			p.status = "copied " + msg.url
		}
		return p, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, p.keys.Cancel):
			p.cancelled = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Open):
			p.selected = true
			return p, tea.Quit

		case key.Matches(msg, p.keys.Down):
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
			return p, nil

		case key.Matches(msg, p.keys.Up):
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil

		case key.Matches(msg, p.keys.Toggle):
			if p.cursor < len(p.results) {
				p.checked[p.cursor] = !p.checked[p.cursor]
			}
			return p, nil

		case key.Matches(msg, p.keys.Yank):
			if p.cursor >= len(p.results) {
				return p, nil
			}
			url := p.results[p.cursor].Node.URLString()
			write := p.copy
			return p, func() tea.Msg {
				return copiedMsg{url: url, err: write(url)}
			}
		}
	}

	return p, nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	// Header
	b.WriteString(headerStyle.Render(fmt.Sprintf("Search %s: %s (%d results)", p.key, p.query, len(p.results))))
	b.WriteString("\n\n")

	// List items
	for i, result := range p.results {
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}
		mark := "[ ] "
		if p.checked[i] {
			mark = "[x] "
		}

		title := result.Node.Title
		url := result.Node.URLString()
		if p.key == model.KeyTitle {
			title = highlight(title, result.MatchedIndexes, style)
			url = urlStyle.Render(url)
		} else {
			title = style.Render(title)
			url = highlight(url, result.MatchedIndexes, urlStyle)
		}

		fmt.Fprintf(&b, "%s%s%s\n", cursor, mark, title)
		fmt.Fprintf(&b, "       %s  %s\n", url, urlStyle.Render(report.FolderPath(result.Node)))
	}

	// Footer
	b.WriteString("\n")
	if p.status != "" {
		b.WriteString(footerStyle.Render(p.status))
		b.WriteString("\n")
	}
	var help []string
	for _, binding := range p.keys.ShortHelp() {
		h := binding.Help()
		help = append(help, h.Key+": "+h.Desc)
	}
	b.WriteString(footerStyle.Render(strings.Join(help, "  ")))

	return b.String()
}

// highlight renders the runes at matched indexes with matchStyle.
func highlight(s string, matched []int, base lipgloss.Style) string {
	if len(matched) == 0 {
		return base.Render(s)
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}
	var b strings.Builder
	for i, r := range s {
		if hit[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// Selected returns the nodes to open: every checked result, or the one
// under the cursor. It is nil if the picker was cancelled.
func (p Picker) Selected() []*model.Node {
	if p.cancelled || !p.selected {
		return nil
	}
	var out []*model.Node
	for i, r := range p.results {
		if p.checked[i] {
			out = append(out, r.Node)
		}
	}
	if len(out) > 0 {
		return out
	}
	if p.cursor < len(p.results) {
		return []*model.Node{p.results[p.cursor].Node}
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

package cmd

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/burst"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/picker"
	"github.com/nikbrunner/burst/internal/report"
	"github.com/nikbrunner/burst/internal/search"
)

var (
	searchBy        string
	searchStrategy  string
	searchThreshold int
	searchPick      bool
	searchFilter    bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Fuzzy search bookmark titles or URLs",
	Long: `Search bookmarks by title or URL. The default strategy scores prefix,
substring and token similarity; "distance" uses a plain edit-distance
cutoff and "subsequence" matches characters in order.

Examples:
  burst search github
  burst search "go docs" --strategy distance
  burst search ycomb --by url --pick`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := model.ParseKey(searchBy)
		if err != nil {
			return err
		}
		strategy, err := parseStrategyFlag(searchStrategy)
		if err != nil {
			return err
		}
		req := burst.SearchRequest{
			Key:       key,
			Query:     strings.Join(args, " "),
			Strategy:  strategy,
			Threshold: searchThreshold,
		}

		if searchFilter {
			tree, err := svc.Filter(req)
			if err != nil {
				return err
			}
			return report.Tree(cmd.OutOrStdout(), tree)
		}

		results, err := svc.Search(cmd.Context(), req)
		if err != nil {
			return err
		}
		if !searchPick {
			return report.SearchResults(cmd.OutOrStdout(), results)
		}
		return pick(cmd, results, req)
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchBy, "by", "b", string(model.KeyTitle), "search title or url")
	searchCmd.Flags().StringVar(&searchStrategy, "strategy", "", "score, distance or subsequence (default from config)")
	searchCmd.Flags().IntVarP(&searchThreshold, "threshold", "t", 0, "override the score threshold or edit distance")
	searchCmd.Flags().BoolVarP(&searchPick, "pick", "p", false, "choose results interactively and open them")
	searchCmd.Flags().BoolVarP(&searchFilter, "filter", "f", false, "print the tree pruned to matching bookmarks")
	searchCmd.MarkFlagsMutuallyExclusive("pick", "filter")
	rootCmd.AddCommand(searchCmd)
}

func parseStrategyFlag(s string) (search.Strategy, error) {
	if s == "" {
		return "", nil
	}
	return search.ParseStrategy(s)
}

// pick opens the picker unless there is a single match, then opens every
// selected URL.
func pick(cmd *cobra.Command, results []search.SearchResult, req burst.SearchRequest) error {
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintf(out, "No bookmarks found for '%s'\n", req.Query)
		return nil
	}

	var selected []*model.Node
	if len(results) == 1 {
		selected = []*model.Node{results[0].Node}
	} else {
		program := tea.NewProgram(picker.New(results, req.Key, req.Query), tea.WithContext(cmd.Context()))
		finalModel, err := program.Run()
		if err != nil {
			return fmt.Errorf("run picker: %w", err)
		}
		finalPicker := finalModel.(picker.Picker)
		if finalPicker.Cancelled() {
			return nil
		}
		selected = finalPicker.Selected()
	}

	for _, n := range selected {
		fmt.Fprintf(out, "Opening: %s\n", n.Title)
		if err := openURL(n.URLString()); err != nil {
			return err
		}
	}
	return nil
}

// openURL opens a URL in the default browser.
func openURL(url string) error {
	var c *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		c = exec.Command("open", url)
	case "linux":
		c = exec.Command("xdg-open", url)
	case "windows":
		c = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("opening urls is not supported on %s", runtime.GOOS)
	}
	if err := c.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	return nil
}

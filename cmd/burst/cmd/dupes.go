package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/report"
)

var dupesBy string

var dupesCmd = &cobra.Command{
	Use:   "dupes",
	Short: "List bookmarks sharing a URL or title",
	Long: `Group bookmarks by exact URL or title and list every group with two
or more members, along with the folder each member lives in.

Examples:
  burst dupes
  burst dupes --by title`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := model.ParseKey(dupesBy)
		if err != nil {
			return err
		}
		set, err := svc.Duplicates(cmd.Context(), key)
		if err != nil {
			return err
		}
		return report.Duplicates(cmd.OutOrStdout(), set, key)
	},
}

func init() {
	dupesCmd.Flags().StringVarP(&dupesBy, "by", "b", string(model.KeyURL), "group by url or title")
	rootCmd.AddCommand(dupesCmd)
}

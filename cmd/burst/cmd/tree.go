package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/report"
	"github.com/nikbrunner/burst/internal/sorter"
)

var treeSort string

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the bookmark tree",
	Long: `Print the normalized bookmark tree. Separators are dropped.

Examples:
  burst tree
  burst tree --sort newest`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		tree := svc.Tree()
		if treeSort != "" {
			mode, err := sorter.ParseMode(treeSort)
			if err != nil {
				return err
			}
			tree = svc.Sort(mode, true)
		}
		return report.Tree(cmd.OutOrStdout(), tree)
	},
}

func init() {
	treeCmd.Flags().StringVarP(&treeSort, "sort", "s", "", "sort mode: folders, alpha, newest, oldest")
	rootCmd.AddCommand(treeCmd)
}

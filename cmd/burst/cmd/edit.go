package cmd

import (
	"errors"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/report"
)

var (
	editTitle string
	editURL   string
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a bookmark's title or URL",
	Long: `Change the title and/or URL of a node. Folders only accept a title.

Examples:
  burst edit 42 --title "Go Documentation"
  burst edit 42 --url https://go.dev/doc/`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields model.Fields
		if cmd.Flags().Changed("title") {
			fields.Title = &editTitle
		}
		if cmd.Flags().Changed("url") {
			fields.URL = &editURL
		}
		if fields.Empty() {
			return errors.New("nothing to change: pass --title and/or --url")
		}

		if _, err := modifiable(args[0]); err != nil {
			return err
		}
		n, err := svc.Edit(cmd.Context(), args[0], fields)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("%s  %s  %s", n.Title, n.URLString(), report.FolderPath(n)))
		return nil
	},
}

func init() {
	editCmd.Flags().StringVar(&editTitle, "title", "", "new title")
	editCmd.Flags().StringVar(&editURL, "url", "", "new URL")
	rootCmd.AddCommand(editCmd)
}

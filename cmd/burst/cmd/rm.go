package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rmYes bool

var rmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete"},
	Short:   "Remove a bookmark or folder",
	Long: `Remove a node by id. Removing a folder removes everything inside it.

Asks for confirmation unless confirmDelete is off in the config or --yes
is given.

Examples:
  burst rm 42
  burst rm 7 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := args[0]
		n, err := modifiable(id)
		if err != nil {
			return err
		}

		if cfg.ShouldConfirmDelete() && !rmYes {
			what := "bookmark"
			if n.IsFolder() {
				what = "folder and its contents"
			}
			ok, err := pterm.DefaultInteractiveConfirm.
				WithDefaultValue(false).
				Show(fmt.Sprintf("Remove %s %q?", what, n.Title))
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
		}

		if err := svc.Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Removed %q", n.Title))
		return nil
	},
}

func init() {
	rmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "do not ask for confirmation")
	rootCmd.AddCommand(rmCmd)
}

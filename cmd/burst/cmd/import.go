package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/importer"
	"github.com/nikbrunner/burst/internal/model"
)

var importAppend bool

var importCmd = &cobra.Command{
	Use:   "import <file.html>",
	Short: "Import bookmarks from a browser HTML export",
	Long: `Import a Netscape bookmark file as exported by Chrome, Firefox or
Safari. By default the stored tree is replaced; --append adds the
imported folders after the existing ones. Duplicates are kept so that
"burst dupes" can find them.

Examples:
  burst import ~/Downloads/bookmarks.html
  burst import other.html --append`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		file, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer file.Close()

		imported, err := importer.ParseHTMLBookmarks(file)
		if err != nil {
			return fmt.Errorf("parse %s: %w", args[0], err)
		}

		raw := imported
		if importAppend {
			current, err := store.GetTree(ctx)
			if err != nil {
				return err
			}
			raw = append(model.RootChildren(current), imported...)
		}
		if err := store.Replace(ctx, raw); err != nil {
			return err
		}

		folders, bookmarks := model.Normalize(imported).Count()
		fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Imported %d bookmarks, %d folders", bookmarks, folders))
		return nil
	},
}

func init() {
	importCmd.Flags().BoolVarP(&importAppend, "append", "a", false, "keep the existing tree and add the imported one")
	rootCmd.AddCommand(importCmd)
}

package cmd

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/burst/internal/exporter"
	"github.com/nikbrunner/burst/internal/model"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export bookmarks to a browser HTML file",
	Long: `Write the stored tree as a Netscape bookmark file that browsers can
import. Without a path the file goes to the Downloads folder.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath := ""
		if len(args) == 1 {
			outputPath = args[0]
		}
		if outputPath == "" {
			var err error
			if outputPath, err = exporter.DefaultExportPath(); err != nil {
				return fmt.Errorf("default export path: %w", err)
			}
		}

		// Export in stored order, not display order
		raw, err := store.GetTree(cmd.Context())
		if err != nil {
			return err
		}
		tree := model.Normalize(model.RootChildren(raw))
		if err := os.WriteFile(outputPath, []byte(exporter.ExportHTML(tree)), 0644); err != nil {
			return fmt.Errorf("write %s: %w", outputPath, err)
		}

		folders, bookmarks := tree.Count()
		fmt.Fprint(cmd.OutOrStdout(), pterm.Success.Sprintfln("Exported %d bookmarks, %d folders to %s", bookmarks, folders, outputPath))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}

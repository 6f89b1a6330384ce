package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/burst/internal/httpapi"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API",
	Long: `Serve the bookmark tree, duplicate groups and search over HTTP. Edits
made through the API are written to storage and folded back into the
served tree as change notifications arrive.

Examples:
  burst serve
  burst serve --listen :8080`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := serveListen
		if addr == "" {
			addr = cfg.Listen
		}

		events, cancel := store.Subscribe()
		defer cancel()

		g, ctx := errgroup.WithContext(cmd.Context())
		g.Go(func() error {
			err := svc.Run(ctx, events)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		g.Go(func() error {
			return httpapi.New(svc).ListenAndServe(ctx, addr)
		})
		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "address to listen on (default from config)")
	rootCmd.AddCommand(serveCmd)
}

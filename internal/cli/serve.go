package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/petstats/internal/httpapi"
)

func (a *app) newServeCmd() *cobra.Command {
	var addr string
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the render API over HTTP",
		Long: `Serve starts the read-only HTTP API:

  GET  /health
  GET  /api/v1/pets/{id}/sheet?style=wide|compact|mini
  POST /api/v1/display
  GET  /api/v1/breeds/{name}

The server stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.GetString(cfgKeyHTTPAddr)
			}
			style, err := a.barStyle("")
			if err != nil {
				return err
			}
			store, err := a.attachStore()
			if err != nil {
				return err
			}
			defer store.Detach()

			svc, err := a.sheetService(store, style)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			opts := httpapi.Options{Addr: addr, AllowedOrigins: origins}
			if err := httpapi.Serve(ctx, httpapi.NewHandler(svc, a.logger), opts); err != nil {
				return sysError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config http_addr)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origins")
	return cmd
}

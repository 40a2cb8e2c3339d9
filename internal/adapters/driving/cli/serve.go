package cli

import (
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/docqa/internal/adapters/driving/httpapi"
	"github.com/custodia-labs/docqa/internal/logger"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API used by the web client.

The listen address, CORS origins, request timeout and development routes
come from the [server] section of the config file or the DOCQA_* environment
variables. Prompt files are reloaded while the server runs.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer app.Close() //nolint:errcheck

	addr := app.Settings.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := httpapi.NewServer(httpapi.Services{
		Retrieval: app.Retrieval,
		Chat:      app.Chat,
		Auth:      app.Auth,
		Health:    app.Health,
		Prompts:   app.Prompts,
	}, httpapi.Config{
		DevMode:        app.Settings.Server.DevMode,
		AllowedOrigins: app.Settings.Server.AllowedOrigins,
		RequestTimeout: app.Settings.Server.RequestTimeout,
		Verbose:        logger.IsVerbose(),
	})

	g, ctx := errgroup.WithContext(cmd.Context())
	for _, task := range app.Background {
		g.Go(func() error { return task(ctx) })
	}
	g.Go(func() error { return srv.Run(ctx, addr) })

	cmd.Printf("docqa listening on %s\n", addr)
	return g.Wait()
}

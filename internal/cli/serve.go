package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/authorsite/internal/shared/middleware"
	"github.com/emiliopalmerini/authorsite/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start the HTTP API server.

Examples:
  authorsite serve              # Port from AUTHORSITE_PORT (default 8080)
  authorsite serve --port 3000  # Start on port 3000`,
	RunE: runServe,
}

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides AUTHORSITE_PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// Create context that cancels on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(a *AppContext) error {
		port := a.Config.Server.Port
		if servePort != 0 {
			port = servePort
		}

		proxies, err := middleware.ParseTrustedProxies(a.Config.Server.TrustedProxies)
		if err != nil {
			return err
		}

		server := web.NewServer(port, a.Services(), a.Limiter, a.Logger).WithTrustedProxies(proxies)
		err = server.Start(ctx)
		a.Logger.Info("server stopped")
		return err
	})
}

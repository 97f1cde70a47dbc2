package cli

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	pagekit "github.com/pagekit-dev/pagekit"
	"github.com/pagekit-dev/pagekit/pkg/middleware"
)

// reloadMounter is implemented by the dev server; in production the
// global's DevServer is nil and no reload endpoint is mounted.
type reloadMounter interface {
	Mount(mux *http.ServeMux)
}

func serveCmd(global *pagekit.GlobalContext) *cobra.Command {
	var (
		port    int
		host    string
		metrics bool
		tracing bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site",
		RunE: func(cmd *cobra.Command, args []string) error {
			if port == 0 {
				port = global.Config.Dev.Port
			}
			if host == "" {
				host = global.Config.Dev.Host
			}
			return runServe(cmd.Context(), global, host, port, metrics, tracing)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from pagekit.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from pagekit.json)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "Expose Prometheus metrics at /metrics")
	cmd.Flags().BoolVar(&tracing, "tracing", false, "Trace requests with OpenTelemetry")

	return cmd
}

func runServe(ctx context.Context, global *pagekit.GlobalContext, host string, port int, metrics, tracing bool) error {
	var handler http.Handler = pagekit.NewApp(global)
	if tracing {
		handler = middleware.OpenTelemetry()(handler)
	}
	if metrics {
		handler = middleware.Prometheus()(handler)
	}

	mux := http.NewServeMux()
	mux.Handle("/", handler)
	if metrics {
		mux.Handle("/metrics", promhttp.Handler())
	}
	if rm, ok := global.DevServer.(reloadMounter); ok {
		rm.Mount(mux)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", host, port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		global.Logger.Info("listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

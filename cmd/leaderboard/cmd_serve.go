package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/models"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/webapi"
	"github.com/richardzhuang0412/dcagents-leaderboard-replit/internal/webserver"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port int
	var host string
	var allowRemote bool
	var title string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the leaderboard API and page over HTTP",
		Long: `Fetch results from the configured source and serve them over HTTP.

Endpoints:
  GET  /                              rendered leaderboard page
  GET  /api/health                    health check
  GET  /api/benchmark-results         flat results
  GET  /api/benchmark-results/{id}    one flat result
  GET  /api/leaderboard-pivoted       one row per (model, agent)
  GET  /api/leaderboard               filtered, sorted, curated rows
  GET  /api/facets                    filter options
  GET  /api/summary                   aggregate counts
  POST /api/refresh                   re-fetch from the source

Results are fetched once at startup and again on POST /api/refresh. A failed
fetch keeps the previous results. The server binds to loopback unless
--allow-remote is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}

			logger := slog.Default()
			holder, src, err := opts.openHolder(cfg, logger)
			if err != nil {
				return err
			}
			defer src.Close() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := holder.Refresh(ctx); err != nil {
				if errors.Is(err, models.ErrInvalidResult) {
					logger.Error("initial results rejected; fix the source and POST /api/refresh", "error", err)
				} else {
					logger.Warn("initial fetch failed; serving without results until a refresh succeeds", "error", err)
				}
			}

			webapi.Version = version
			srv, err := webserver.New(webserver.Config{
				Host:           resolveHost(host, allowRemote, logger),
				Port:           cfg.Server.Port,
				AllowedOrigins: cfg.Server.AllowedOrigins,
				Logger:         logger,
				Store:          holder,
				Leaderboard:    cfg.Leaderboard(),
				View:           cfg.ViewMode(),
				Title:          title,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "leaderboard: http://%s\n", srv.Addr()) //nolint:errcheck
			return srv.ListenAndServe(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from configuration, 5000)")
	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host interface to bind")
	cmd.Flags().BoolVar(&allowRemote, "allow-remote", false,
		"Allow binding to non-loopback addresses (WARNING: exposes the server to the network with no authentication)")
	cmd.Flags().StringVar(&title, "title", "", "Title of the HTML page")

	return cmd
}

// resolveHost keeps the server on loopback unless --allow-remote is set.
func resolveHost(host string, allowRemote bool, logger *slog.Logger) string {
	ip := net.ParseIP(host)
	loopback := host == "localhost" || (ip != nil && ip.IsLoopback())
	if allowRemote {
		if !loopback {
			logger.Warn("HTTP server reachable from the network, no authentication is provided", "host", host)
		}
		return host
	}

	if host == "" || host == "0.0.0.0" || host == "::" {
		return "127.0.0.1"
	}
	if !loopback {
		logger.Warn("ignoring non-loopback host without --allow-remote", "host", host)
		return "127.0.0.1"
	}
	return host
}

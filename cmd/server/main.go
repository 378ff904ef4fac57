package main

import (
	"context"
	"fmt"
	"net/http"

	"master-or-disaster/internal/config"
	"master-or-disaster/internal/constants"
	fxmodules "master-or-disaster/internal/fx"
	"master-or-disaster/internal/jobs"
	"master-or-disaster/internal/middleware"
	"master-or-disaster/internal/proxy"
	"master-or-disaster/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	dashboard *server.Dashboard,
	riotProxy *proxy.RiotProxy,
	cdnProxy *proxy.CDNProxy,
	_ *jobs.Scheduler,
	cfg *config.Config,
	logger zerolog.Logger,
) {
	mux := http.NewServeMux()

	proxyCORS := proxy.CORS(cfg, false, http.MethodGet, http.MethodOptions)
	dashboardCORS := proxy.CORS(cfg, true, http.MethodGet, http.MethodPut, http.MethodOptions)

	mux.Handle("/api/riotgames", proxyCORS.Handler(http.HandlerFunc(riotProxy.ServeQuery)))
	mux.Handle(proxy.RiotPathPrefix+"{region}/{path...}", proxyCORS.Handler(http.HandlerFunc(riotProxy.ServePath)))
	mux.Handle("GET "+proxy.CDNPathPrefix+"{path...}", proxyCORS.Handler(cdnProxy))
	mux.HandleFunc("GET /ping", proxy.Ping)
	mux.HandleFunc("GET /api/ping", proxy.Ping)

	api := http.NewServeMux()
	dashboard.Register(api)
	mux.Handle("/api/", dashboardCORS.Handler(api))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.RequestID(logger)(mux),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

package fx

import (
	"master-or-disaster/internal/api"
	"master-or-disaster/internal/cache"
	"master-or-disaster/internal/config"
	"master-or-disaster/internal/jobs"
	"master-or-disaster/internal/logger"
	"master-or-disaster/internal/proxy"
	"master-or-disaster/internal/roster"
	"master-or-disaster/internal/server"
	"master-or-disaster/internal/service"

	"go.uber.org/fx"
)

func ProvideSessionSweeper(svc *service.CommonMatchService) jobs.SessionSweeper {
	return svc
}

var Module = fx.Options(
	logger.Module,
	config.Module,
	// upstream
	fx.Provide(api.NewUpstreamClient),
	fx.Provide(api.NewRiotClient),
	fx.Provide(cache.New),
	fx.Provide(roster.New),
	// svc
	fx.Provide(service.NewMatchDetailService),
	fx.Provide(service.NewPlayerService),
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewCommonMatchService),
	// jobs
	fx.Provide(ProvideSessionSweeper),
	fx.Provide(jobs.NewScheduler),
	// server
	fx.Provide(proxy.NewRiotProxy),
	fx.Provide(proxy.NewCDNProxy),
	fx.Provide(server.NewDashboard),
)

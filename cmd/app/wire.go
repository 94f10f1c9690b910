//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/accessroute/internal/bootstrap"
	"github.com/yanqian/accessroute/internal/domain/hazard"
	"github.com/yanqian/accessroute/internal/domain/report"
	"github.com/yanqian/accessroute/internal/domain/route"
	"github.com/yanqian/accessroute/internal/domain/search"
	"github.com/yanqian/accessroute/internal/infra/config"
	httpiface "github.com/yanqian/accessroute/internal/interface/http"
	"github.com/yanqian/accessroute/pkg/logger"
	"github.com/yanqian/accessroute/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRegistry,
		wire.Bind(new(prometheus.Registerer), new(*prometheus.Registry)),
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		metrics.New,
		provideReportConfig,
		provideReportRepository,
		provideDeletePolicy,
		providePhotoSigner,
		report.NewService,
		provideHazardCatalog,
		wire.Bind(new(route.HazardSource), new(*hazard.Catalog)),
		wire.Bind(new(httpiface.HazardLister), new(*hazard.Catalog)),
		provideRouteConfig,
		provideRoutingProvider,
		route.NewService,
		provideSearchConfig,
		provideGeocoder,
		provideGeocodeCache,
		provideReverseLimiter,
		search.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}

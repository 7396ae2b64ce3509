package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/frwrd/internal/analytics"
	"github.com/serroba/frwrd/internal/handlers"
	"github.com/serroba/frwrd/internal/health"
	"github.com/serroba/frwrd/internal/messaging"
	"github.com/serroba/frwrd/internal/middleware"
	"github.com/serroba/frwrd/internal/shortener"
	"github.com/serroba/frwrd/internal/version"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the API with every route registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		router := chi.NewMux()
		router.Use(middleware.CORS(), middleware.Options)
		router.MethodNotAllowed(handlers.MethodNotAllowed)
		router.NotFound(handlers.NotFound)

		return router, nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)

		info := version.Current()
		api := humachi.New(router, huma.DefaultConfig(info.Name, info.Version))
		api.UseMiddleware(middleware.RequestMeta(api))

		urlHandler := handlers.NewURLHandler(
			do.MustInvoke[*shortener.Service](i),
			do.MustInvoke[*shortener.Redirector](i),
			do.MustInvoke[messaging.Publish[analytics.URLCreatedEvent]](i),
			do.MustInvoke[messaging.Publish[analytics.URLAccessedEvent]](i),
			logger,
		)
		statsHandler := handlers.NewStatsHandler(do.MustInvoke[*Repositories](i).Stats, logger)

		handlers.RegisterRoutes(api, urlHandler, statsHandler)
		health.RegisterRoutes(api, healthHandler(i, opts))

		return api, nil
	})
}

func healthHandler(i *do.Injector, opts *Options) *health.Handler {
	var redisChecker, postgresChecker health.Checker

	if opts.UsesRedis() {
		redisChecker = health.NewRedisChecker(do.MustInvoke[*Redis](i).Client)
	}

	if opts.Store == StorePostgres {
		postgresChecker = health.NewPostgresChecker(do.MustInvoke[*Postgres](i).Pool)
	}

	return health.NewHandler(redisChecker, postgresChecker)
}

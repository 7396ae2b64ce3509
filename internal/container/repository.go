package container

import (
	"time"

	"github.com/samber/do"
	"github.com/serroba/frwrd/internal/cache"
	"github.com/serroba/frwrd/internal/clicks"
	"github.com/serroba/frwrd/internal/hostname"
	"github.com/serroba/frwrd/internal/shortener"
	"github.com/serroba/frwrd/internal/store"
	"go.uber.org/zap"
)

// Repositories groups the views of the mapping store.
type Repositories struct {
	URLs   shortener.Repository
	Stats  shortener.StatsRepository
	Clicks shortener.ClickSessions
}

// RepositoryPackage provides the store, the read-through cache and the
// shortener services.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*Repositories, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.Store == StoreMemory {
			memory := store.NewMemoryStore()

			return &Repositories{URLs: memory, Stats: memory, Clicks: memory}, nil
		}

		pg, err := do.Invoke[*Postgres](i)
		if err != nil {
			return nil, err
		}

		postgres := store.NewPostgresStore(pg.Pool)

		return &Repositories{URLs: postgres, Stats: postgres, Clicks: postgres}, nil
	})

	do.Provide(injector, func(i *do.Injector) (*cache.ReadThrough, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		var backing cache.Store = cache.Nop{}

		if opts.Cache {
			r, err := do.Invoke[*Redis](i)
			if err != nil {
				return nil, err
			}

			backing = store.NewRedisCache(r.Client, time.Duration(opts.CacheTTL)*time.Second)
		}

		return cache.NewReadThrough(backing, logger), nil
	})

	do.Provide(injector, func(i *do.Injector) (shortener.FastStore, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedirectSource != RedirectFromFast {
			return nil, nil
		}

		r, err := do.Invoke[*Redis](i)
		if err != nil {
			return nil, err
		}

		return store.NewRedisStore(r.Client, opts.FastNamespace), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Service, error) {
		opts := do.MustInvoke[*Options](i)
		repos := do.MustInvoke[*Repositories](i)

		return shortener.NewService(
			repos.URLs,
			do.MustInvoke[*cache.ReadThrough](i),
			do.MustInvoke[shortener.FastStore](i),
			shortener.NewCodeGenerator(opts.CodeLength),
			opts.ShortURLBase(),
			int64(opts.DefaultUserID),
			do.MustInvoke[*zap.Logger](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*shortener.Redirector, error) {
		if fast := do.MustInvoke[shortener.FastStore](i); fast != nil {
			return shortener.NewRedirector(shortener.NewFastResolver(fast)), nil
		}

		repos := do.MustInvoke[*Repositories](i)

		return shortener.NewRedirector(
			shortener.NewCachedResolver(repos.URLs, do.MustInvoke[*cache.ReadThrough](i)),
		), nil
	})
}

// ClicksPackage provides the click logger and, when enabled, the reverse
// DNS resolver it uses.
func ClicksPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*clicks.Logger, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		cfg := opts.ClicksConfig()

		var hostnames clicks.HostnameResolver
		if cfg.ResolveHostname {
			hostnames = hostname.NewResolver(time.Duration(opts.DNSTimeout)*time.Millisecond, logger)
		}

		return clicks.NewLogger(
			cfg,
			do.MustInvoke[*Repositories](i).Clicks,
			do.MustInvoke[*cache.ReadThrough](i),
			hostnames,
			logger,
		), nil
	})
}

// Package app builds the services shared by the HTTP server and dropctl.
package app

import (
	"context"
	"fmt"

	"dealMintAPI/internal/cache"
	"dealMintAPI/internal/config"
	"dealMintAPI/internal/metrics"
	"dealMintAPI/internal/solanapay"
	"dealMintAPI/internal/store"
	"dealMintAPI/internal/store/memory"
	"dealMintAPI/internal/store/postgres"
	"dealMintAPI/services"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type App struct {
	Store   store.Store
	Cache   *cache.Cache
	Metrics *metrics.Drop
	Finder  *solanapay.RPCFinder

	Drops         *services.DropService
	Claims        *services.ClaimService
	Confirmations *services.ConfirmationService
	Coupons       *services.CouponService

	log *zap.Logger
}

// OpenStore connects the configured store. Postgres schemas are migrated
// when migrate is set.
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMemory:
		log.Warn("using in-memory store, data is lost on exit")
		return memory.New(), nil
	case config.DriverPostgres:
		pg, err := postgres.Connect(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := pg.Migrate(); err != nil {
				pg.Close()
				return nil, err
			}
		}
		log.Info("successfully connected to postgres")
		return pg, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}

// New opens the store and wires every service. reg receives the domain
// metrics; pass a fresh registry when nothing scrapes it.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (*App, error) {
	st, err := OpenStore(ctx, cfg, log, true)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, st, log, reg)
	if err != nil {
		st.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, st store.Store, log *zap.Logger, reg prometheus.Registerer) (*App, error) {
	c, err := cache.New(cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	m := metrics.NewDrop(reg)

	finder, err := solanapay.Dial(ctx, cfg.SolanaRPCURL, log)
	if err != nil {
		return nil, err
	}

	claims, err := services.NewClaimService(st, c, m, log, cfg.SolanaPayRecipient)
	if err != nil {
		finder.Close()
		return nil, err
	}
	if cfg.SolanaPayRecipient == "" {
		log.Info("SOLANA_PAY_RECIPIENT not set, claims confirm without payment")
	}

	return &App{
		Store:         st,
		Cache:         c,
		Metrics:       m,
		Finder:        finder,
		Drops:         services.NewDropService(st, c, log),
		Claims:        claims,
		Confirmations: services.NewConfirmationService(st, finder, c, m, log, cfg.ConfirmBatch, cfg.ConfirmConcurrency),
		Coupons:       services.NewCouponService(st, log),
		log:           log,
	}, nil
}

func (a *App) Close() {
	a.Finder.Close()
	a.Store.Close()
}

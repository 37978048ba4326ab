package main

import (
	"context"
	"fmt"

	"github.com/quotewise/quotewise-backend/api/controllers"
	"github.com/quotewise/quotewise-backend/internal/bindings"
	"github.com/quotewise/quotewise-backend/internal/inventory"
	"github.com/quotewise/quotewise-backend/internal/quotations"
	"github.com/quotewise/quotewise-backend/internal/ratios"
	"github.com/quotewise/quotewise-backend/internal/suppliers"
	"github.com/quotewise/quotewise-backend/internal/upstream"
	"github.com/quotewise/quotewise-backend/pkg/config"
	"github.com/quotewise/quotewise-backend/pkg/db"
	"github.com/quotewise/quotewise-backend/pkg/logger"
	"github.com/quotewise/quotewise-backend/pkg/migrate"
)

// sources holds the stores behind every domain service, either the local
// database or the upstream backend.
type sources struct {
	quotations quotations.Store
	inventory  inventory.Store
	bindings   bindings.Store
	ratios     ratios.Store
	suppliers  suppliers.Store
	refresher  ratios.Refresher
	check      controllers.ReadinessCheck
	close      func()
}

func openSources(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*sources, error) {
	if cfg.Source.IsRemote() {
		client, err := upstream.New(cfg.Upstream, logg)
		if err != nil {
			return nil, fmt.Errorf("upstream client: %w", err)
		}
		logg.Info(logg.WithField(ctx, "upstream", cfg.Upstream.BaseURL), "using upstream data source")
		return &sources{
			quotations: client.Quotations(),
			inventory:  client.Inventory(),
			bindings:   client.Bindings(),
			ratios:     client.Ratios(),
			suppliers:  client.Suppliers(),
			refresher:  client.Quotations(),
			check:      controllers.ReadinessCheck{Name: "upstream", Pinger: client},
			close:      func() {},
		}, nil
	}

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		return nil, fmt.Errorf("bootstrap database: %w", err)
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		_ = dbClient.Close()
		return nil, fmt.Errorf("run dev migrations: %w", err)
	}

	conn := dbClient.DB()
	quoteRepo := quotations.NewRepository(conn)
	return &sources{
		quotations: quoteRepo,
		inventory:  inventory.NewRepository(conn),
		bindings:   bindings.NewRepository(conn),
		ratios:     ratios.NewRepository(conn),
		suppliers:  suppliers.NewRepository(conn),
		refresher:  quoteRepo,
		check:      controllers.ReadinessCheck{Name: "db", Pinger: dbClient},
		close: func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		},
	}, nil
}

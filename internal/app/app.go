// Package app wires configuration, logging, repositories and services into
// one value. It is the only place stores and services are constructed.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/homedash/internal/backup"
	"github.com/dukerupert/homedash/internal/config"
	"github.com/dukerupert/homedash/internal/jsonstore"
	"github.com/dukerupert/homedash/internal/password"
	"github.com/dukerupert/homedash/internal/service"
	"github.com/dukerupert/homedash/internal/store"
)

type App struct {
	Config  config.Config
	Logger  *slog.Logger
	Metrics *jsonstore.Metrics
	Deps    service.Deps

	Auth       *service.AuthService
	Households *service.HouseholdService
	Chores     *service.ChoreService
	Shopping   *service.ShoppingService
	Users      *service.UserService
	Backups    *backup.Manager
}

// Open builds the application. Nothing is read from disk until a
// collection is first used or Warm is called.
func Open(cfg config.Config, logger *slog.Logger, now func() time.Time) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if now == nil {
		now = time.Now
	}
	metrics := jsonstore.NewMetrics()
	opts := []jsonstore.Option{
		jsonstore.WithClock(now),
		jsonstore.WithLogger(logger),
		jsonstore.WithMetrics(metrics),
	}

	d := service.Deps{
		Users:      store.NewUserStore(cfg.DataDir, opts...),
		Households: store.NewHouseholdStore(cfg.DataDir, opts...),
		Chores:     store.NewChoreStore(cfg.DataDir, opts...),
		Shopping:   store.NewShoppingStore(cfg.DataDir, opts...),
		Hasher:     password.New(cfg.BcryptCost),
		Logger:     logger,
		Now:        now,
	}

	backups := backup.NewManager(backup.Config{DataDir: cfg.DataDir, BackupDir: cfg.BackupDir}, logger, nil, opts...)
	backups.SetClock(now)

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Deps:       d,
		Auth:       service.NewAuthService(d),
		Households: service.NewHouseholdService(d),
		Chores:     service.NewChoreService(d),
		Shopping:   service.NewShoppingService(d),
		Users:      service.NewUserService(d),
		Backups:    backups,
	}
}

// Warm loads every collection concurrently so that file problems surface
// at startup instead of in the middle of a command.
func (a *App) Warm(ctx context.Context) error {
	loaders := []func() error{
		a.Deps.Users.Load,
		a.Deps.Households.Load,
		a.Deps.Chores.Load,
		a.Deps.Shopping.Load,
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, load := range loaders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return load()
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("load collections: %w", err)
	}
	a.Logger.Debug("collections loaded", "data_dir", a.Config.DataDir)
	return nil
}

// Close writes the store metrics to the configured textfile, if any.
func (a *App) Close() error {
	if a.Config.MetricsFile == "" {
		return nil
	}
	if err := a.Metrics.WriteToTextfile(a.Config.MetricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/yusapedia/jimpitan/internal/cache"
	"github.com/yusapedia/jimpitan/internal/config"
	"github.com/yusapedia/jimpitan/internal/database"
	"github.com/yusapedia/jimpitan/internal/remote"
	"github.com/yusapedia/jimpitan/internal/store"
	"github.com/yusapedia/jimpitan/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logging.Setup(cfg.App.Env, cfg.App.LogLevel)

	local, err := cache.Open(cfg.Cache.Path)
	if err != nil {
		slog.Error("failed to open local cache", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = local.Close() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var backend store.Backend
	var db database.Database
	if cfg.RemoteConfigured() {
		sdb := database.NewSurrealDB(database.Config{
			Host:      cfg.Remote.Host,
			Port:      cfg.Remote.Port,
			User:      cfg.Remote.User,
			Password:  cfg.Remote.Password,
			Namespace: cfg.Remote.Namespace,
			Database:  cfg.Remote.Database,
		})
		if err := sdb.Connect(ctx); err != nil {
			slog.Error("failed to connect to remote store", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer func() { _ = sdb.Close() }()
		slog.Info("connected to remote store",
			slog.String("host", cfg.Remote.Host),
			slog.String("database", cfg.Remote.Database),
		)
		db = sdb
		backend = remote.NewAdapter(sdb)
	} else {
		slog.Info("remote store not configured, running offline",
			slog.String("cache", cfg.Cache.Path),
		)
		backend = cache.NewBackend(local)
	}

	st := store.New(backend,
		store.WithSessionCache(local),
		store.WithResetHook(func() {
			slog.Info("full reset completed, sessions must log in again")
		}),
	)

	if err := st.Bootstrap(ctx); err != nil {
		slog.Error("failed to load working copy", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("working copy loaded",
		slog.Int("citizens", len(st.Citizens())),
		slog.Int("accounts", len(st.Accounts())),
		slog.Int("jimpitan", len(st.Jimpitan())),
	)

	if db != nil {
		inv := store.NewInvalidator(db, st)
		if err := inv.Start(ctx); err != nil {
			slog.Error("failed to subscribe to change feed", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer inv.Stop()
		slog.Info("realtime invalidation active")
	}

	<-ctx.Done()
	slog.Info("shutting down, draining pending writes")
	st.Wait()
}

package store

import (
	"context"
	"log/slog"

	"github.com/yusapedia/jimpitan/internal/database"
	"github.com/yusapedia/jimpitan/internal/model"
)

// Invalidator watches the remote change feed and refreshes the store.
//
// Invalidation is coarse on purpose: any insert, update or delete on any
// watched collection triggers a full reload of all of them. That guarantees
// eventual agreement with the remote store without per-row conflict
// resolution, at the cost of redundant transfer. A reload racing an in-flight
// optimistic mutation may transiently show stale data until the event for
// that mutation's own upsert arrives.
type Invalidator struct {
	db    database.Database
	store *Store

	cancel context.CancelFunc
	done   chan struct{}
}

// NewInvalidator creates an invalidator in the unsubscribed state.
func NewInvalidator(db database.Database, store *Store) *Invalidator {
	return &Invalidator{db: db, store: store}
}

// Start subscribes to the change feed and begins reloading on events. It
// returns once the subscription is established.
func (inv *Invalidator) Start(ctx context.Context) error {
	ctx, inv.cancel = context.WithCancel(ctx)

	collections := model.Collections()
	tables := make([]string, 0, len(collections))
	for _, c := range collections {
		tables = append(tables, string(c))
	}

	events, err := inv.db.Subscribe(ctx, tables)
	if err != nil {
		inv.cancel()
		inv.cancel = nil
		return err
	}

	inv.done = make(chan struct{})
	go func() {
		defer close(inv.done)
		for event := range events {
			slog.Debug("change event, reloading", slog.String("table", event.Table))
			if err := inv.store.Reload(ctx); err != nil {
				slog.Warn("reload after change event failed", slog.String("error", err.Error()))
			}
		}
	}()
	return nil
}

// Stop unsubscribes and waits for the reload loop to drain. Safe to call
// when never started.
func (inv *Invalidator) Stop() {
	if inv.cancel == nil {
		return
	}
	inv.cancel()
	<-inv.done
	inv.cancel = nil
	inv.done = nil
}

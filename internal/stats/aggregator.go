// Package stats derives the per-day order statistics from each placed
// order. Updates go through the store's atomic field increments, so two
// orders placed at the same moment both land in the totals.
package stats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roboburger/internal/models"
	"roboburger/internal/store"
)

// Aggregator maintains the statistics/daily/<date> records.
type Aggregator struct {
	store store.Store
	now   func() time.Time
}

// NewAggregator creates an aggregator writing through st.
func NewAggregator(st store.Store) *Aggregator {
	return &Aggregator{store: st, now: time.Now}
}

// TodayKey returns the current calendar date in YYYY-MM-DD form, from the
// local clock at call time.
func (a *Aggregator) TodayKey() string {
	return a.now().Format("2006-01-02")
}

// Record folds one placed order into today's record. The record is
// created implicitly by the first increment of the day.
func (a *Aggregator) Record(ctx context.Context, burger models.Burger) error {
	path := store.DailyStatsPath(a.TodayKey())
	price := int64(burger.Price)

	if _, err := a.store.IncrBy(ctx, path, "total_orders", 1); err != nil {
		return fmt.Errorf("update statistics: %w", err)
	}
	if _, err := a.store.IncrBy(ctx, path, "total_revenue", price); err != nil {
		return fmt.Errorf("update statistics: %w", err)
	}
	menu := "by_menu." + burger.Name
	if _, err := a.store.IncrBy(ctx, path, menu+".count", 1); err != nil {
		return fmt.Errorf("update statistics: %w", err)
	}
	if _, err := a.store.IncrBy(ctx, path, menu+".revenue", price); err != nil {
		return fmt.Errorf("update statistics: %w", err)
	}
	// Price is a plain overwrite; the catalog price at the time of the
	// last sale wins.
	if err := a.store.Update(ctx, path, map[string]any{menu + ".price": price}); err != nil {
		return fmt.Errorf("update statistics: %w", err)
	}
	return nil
}

// Today reads the current day's record, returning the zero-valued record
// when no order has been placed yet.
func (a *Aggregator) Today(ctx context.Context) (models.DailyStats, error) {
	data, err := a.store.Get(ctx, store.DailyStatsPath(a.TodayKey()))
	if errors.Is(err, store.ErrNotFound) {
		return models.EmptyDailyStats(), nil
	}
	if err != nil {
		return models.DailyStats{}, err
	}
	return decode(data)
}

// Watch subscribes to today's record. The callback receives the
// zero-valued record for absent snapshots.
func (a *Aggregator) Watch(fn func(models.DailyStats)) (store.Subscription, error) {
	return a.store.Watch(store.DailyStatsPath(a.TodayKey()), func(snap store.Snapshot) {
		if !snap.Exists {
			fn(models.EmptyDailyStats())
			return
		}
		ds, err := decode(snap.Data)
		if err != nil {
			return
		}
		fn(ds)
	})
}

func decode(data []byte) (models.DailyStats, error) {
	var ds models.DailyStats
	if err := json.Unmarshal(data, &ds); err != nil {
		return models.DailyStats{}, fmt.Errorf("decode statistics: %w", err)
	}
	if ds.ByMenu == nil {
		ds.ByMenu = map[string]models.MenuStats{}
	}
	return ds, nil
}

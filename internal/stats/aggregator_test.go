package stats

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roboburger/internal/models"
	"roboburger/internal/store"
)

var classic = models.Burger{ID: 1, Name: "클래식 치즈버거", Price: 8500, Emoji: "🍔"}
var bacon = models.Burger{ID: 2, Name: "베이컨 디럭스", Price: 10500, Emoji: "🥓"}

func TestTodayEmptyBeforeFirstOrder(t *testing.T) {
	agg := NewAggregator(store.NewMemory())

	ds, err := agg.Today(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 0, ds.TotalOrders)
	assert.EqualValues(t, 0, ds.TotalRevenue)
	assert.Empty(t, ds.ByMenu)
}

func TestRecordCreatesAndIncrements(t *testing.T) {
	agg := NewAggregator(store.NewMemory())
	ctx := context.Background()

	require.NoError(t, agg.Record(ctx, classic))
	require.NoError(t, agg.Record(ctx, classic))
	require.NoError(t, agg.Record(ctx, bacon))

	ds, err := agg.Today(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, ds.TotalOrders)
	assert.EqualValues(t, 2*8500+10500, ds.TotalRevenue)

	assert.EqualValues(t, 2, ds.ByMenu["클래식 치즈버거"].Count)
	assert.EqualValues(t, 17000, ds.ByMenu["클래식 치즈버거"].Revenue)
	assert.EqualValues(t, 8500, ds.ByMenu["클래식 치즈버거"].Price)
	assert.EqualValues(t, 1, ds.ByMenu["베이컨 디럭스"].Count)
}

// Concurrent recordings must not lose increments; the aggregator goes
// through the store's atomic field increments rather than a
// read-modify-write cycle.
func TestRecordConcurrentNoLostUpdates(t *testing.T) {
	agg := NewAggregator(store.NewMemory())
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = agg.Record(ctx, classic)
		}()
	}
	wg.Wait()

	ds, err := agg.Today(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, n, ds.TotalOrders)
	assert.EqualValues(t, n*8500, ds.TotalRevenue)
	assert.EqualValues(t, n, ds.ByMenu["클래식 치즈버거"].Count)
}

func TestWatchDeliversZeroValueThenUpdates(t *testing.T) {
	agg := NewAggregator(store.NewMemory())
	ctx := context.Background()

	var got []models.DailyStats
	sub, err := agg.Watch(func(ds models.DailyStats) { got = append(got, ds) })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.NotEmpty(t, got)
	assert.EqualValues(t, 0, got[0].TotalOrders)

	require.NoError(t, agg.Record(ctx, classic))
	last := got[len(got)-1]
	assert.EqualValues(t, 1, last.TotalOrders)
	assert.EqualValues(t, 8500, last.TotalRevenue)
}

func TestTodayKeyFormat(t *testing.T) {
	agg := NewAggregator(store.NewMemory())
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, agg.TodayKey())
}

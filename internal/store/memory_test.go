package store

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySetGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, PathRobotStatus, "cooking"))

	data, err := m.Get(ctx, PathRobotStatus)
	require.NoError(t, err)
	assert.JSONEq(t, `"cooking"`, string(data))
}

func TestMemoryGetAbsent(t *testing.T) {
	m := NewMemory()

	_, err := m.Get(context.Background(), "nothing/here")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryPushAssignsIDs(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id1, err := m.Push(ctx, PathOrders, map[string]any{"status": "waiting"})
	require.NoError(t, err)
	id2, err := m.Push(ctx, PathOrders, map[string]any{"status": "waiting"})
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)

	data, err := m.Get(ctx, PathOrders)
	require.NoError(t, err)

	var byID map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &byID))
	assert.Len(t, byID, 2)
	assert.Contains(t, byID, id1)
	assert.Contains(t, byID, id2)
}

func TestMemoryUpdateMergesFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	id, err := m.Push(ctx, PathOrders, map[string]any{"status": "waiting", "orderNumber": 3})
	require.NoError(t, err)
	require.NoError(t, m.Update(ctx, OrderPath(id), map[string]any{"status": "cooking"}))

	data, err := m.Get(ctx, OrderPath(id))
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "cooking", doc["status"])
	assert.EqualValues(t, 3, doc["orderNumber"])
}

// Update on an absent path creates the document, the same upsert
// semantics as every backend.
func TestMemoryUpdateCreatesMissingDocument(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Update(ctx, OrderPath("ghost"), map[string]any{"status": "cooking"}))

	data, err := m.Get(ctx, OrderPath("ghost"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"cooking"}`, string(data))
}

func TestMemoryIncrByCreatesNestedFields(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	path := DailyStatsPath("2026-08-31")

	n, err := m.IncrBy(ctx, path, "total_orders", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.IncrBy(ctx, path, "by_menu.클래식 치즈버거.count", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = m.IncrBy(ctx, path, "by_menu.클래식 치즈버거.count", 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	data, err := m.Get(ctx, path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"total_orders":1,"by_menu":{"클래식 치즈버거":{"count":2}}}`, string(data))
}

func TestMemoryNextSequenceIsMonotonic(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		n, err := m.NextSequence(ctx, OrderNumberSequence)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}
}

func TestMemoryWatchDeliversInitialSnapshot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	require.NoError(t, m.Set(ctx, PathRobotStatus, "idle"))

	var got []Snapshot
	sub, err := m.Watch(PathRobotStatus, func(s Snapshot) { got = append(got, s) })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Len(t, got, 1)
	assert.True(t, got[0].Exists)
	assert.JSONEq(t, `"idle"`, string(got[0].Data))
}

func TestMemoryWatchAbsentPath(t *testing.T) {
	m := NewMemory()

	var got []Snapshot
	sub, err := m.Watch(PathEmergencyStop, func(s Snapshot) { got = append(got, s) })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	require.Len(t, got, 1)
	assert.False(t, got[0].Exists)
	assert.Nil(t, got[0].Data)
}

func TestMemoryChildWriteNotifiesCollectionWatcher(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var snaps []Snapshot
	sub, err := m.Watch(PathOrders, func(s Snapshot) { snaps = append(snaps, s) })
	require.NoError(t, err)
	defer sub.Unsubscribe()

	id, err := m.Push(ctx, PathOrders, map[string]any{"status": "waiting"})
	require.NoError(t, err)
	require.NoError(t, m.Update(ctx, OrderPath(id), map[string]any{"status": "cooking"}))

	// initial (absent) + push + update
	require.Len(t, snaps, 3)
	assert.False(t, snaps[0].Exists)
	assert.True(t, snaps[2].Exists)

	var byID map[string]map[string]any
	require.NoError(t, json.Unmarshal(snaps[2].Data, &byID))
	assert.Equal(t, "cooking", byID[id]["status"])
}

func TestMemoryUnsubscribeStopsDelivery(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	count := 0
	sub, err := m.Watch(PathRobotStatus, func(Snapshot) { count++ })
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, PathRobotStatus, "ready"))
	sub.Unsubscribe()
	sub.Unsubscribe() // idempotent
	require.NoError(t, m.Set(ctx, PathRobotStatus, "cooking"))

	assert.Equal(t, 2, count) // initial + first write only
}

func TestMemoryWatchInitialSnapshotNotOvertaken(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Set(ctx, PathRobotStatus, float64(0)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= 200; i++ {
			_ = m.Set(ctx, PathRobotStatus, float64(i))
		}
	}()

	var seen []float64
	sub, err := m.Watch(PathRobotStatus, func(snap Snapshot) {
		var v float64
		if json.Unmarshal(snap.Data, &v) == nil {
			seen = append(seen, v)
		}
	})
	require.NoError(t, err)
	<-done
	sub.Unsubscribe()

	require.NotEmpty(t, seen)
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("delivery %d went backwards: %v after %v", i, seen[i], seen[i-1])
		}
	}
}

func TestRelated(t *testing.T) {
	cases := []struct {
		watched, written string
		want             bool
	}{
		{"orders", "orders/abc", true},
		{"orders/abc", "orders", true},
		{"orders", "orders", true},
		{"orders", "ordersabc", false},
		{"robot_status", "orders/abc", false},
	}
	for _, tc := range cases {
		if got := related(tc.watched, tc.written); got != tc.want {
			t.Errorf("related(%q, %q) = %v, want %v", tc.watched, tc.written, got, tc.want)
		}
	}
}

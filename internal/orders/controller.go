// Package orders implements the order lifecycle: placement, status
// transitions and the three admin-view buckets.
package orders

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"roboburger/internal/models"
	"roboburger/internal/stats"
	"roboburger/internal/store"
)

// completedBucketCap limits how many completed orders the admin view
// shows; waiting and cooking are unbounded.
const completedBucketCap = 5

// Buckets is the partition of the subscribed order list by status.
type Buckets struct {
	Waiting   []models.Order `json:"waiting"`
	Cooking   []models.Order `json:"cooking"`
	Completed []models.Order `json:"completed"`
}

// Controller creates orders and transitions their status. The store is
// the sole durable owner of order records; the controller never caches.
type Controller struct {
	store store.Store
	stats *stats.Aggregator
	now   func() time.Time
}

// NewController wires a controller to the store and the statistics
// aggregator it triggers on each placement.
func NewController(st store.Store, agg *stats.Aggregator) *Controller {
	return &Controller{store: st, stats: agg, now: time.Now}
}

// Place creates an order for burger with status waiting, appends it to
// the order collection and folds it into today's statistics. The order
// number comes from the store's monotonic counter, so it is unique and
// dense even with several kiosks placing orders at once.
func (c *Controller) Place(ctx context.Context, burger models.Burger) (models.Order, error) {
	number, err := c.store.NextSequence(ctx, store.OrderNumberSequence)
	if err != nil {
		return models.Order{}, fmt.Errorf("assign order number: %w", err)
	}

	now := c.now()
	order := models.Order{
		Burger:      burger,
		Status:      models.OrderStatusWaiting,
		Timestamp:   now,
		TimeDisplay: models.KoreanTimeDisplay(now),
		OrderNumber: number,
	}

	id, err := c.store.Push(ctx, store.PathOrders, order)
	if err != nil {
		return models.Order{}, fmt.Errorf("place order: %w", err)
	}
	order.ID = id

	if err := c.stats.Record(ctx, burger); err != nil {
		// The order itself went through; a statistics failure only
		// costs the admin dashboard a tick.
		log.Printf("orders: statistics update failed for %s: %v", id, err)
	}
	return order, nil
}

// UpdateStatus overwrites the status field of an order. The transition is
// not validated beyond enum membership: which transitions are offered is
// the UI's policy, enforced by which buttons each bucket renders.
func (c *Controller) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	if !status.Valid() {
		return fmt.Errorf("invalid order status %q", status)
	}
	if err := c.store.Update(ctx, store.OrderPath(id), map[string]any{"status": status}); err != nil {
		return fmt.Errorf("update order %s: %w", id, err)
	}
	return nil
}

// List returns all orders sorted by timestamp descending.
func (c *Controller) List(ctx context.Context) ([]models.Order, error) {
	data, err := c.store.Get(ctx, store.PathOrders)
	if err == store.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decodeList(data)
}

// Watch subscribes the order collection, delivering the sorted list on
// every change.
func (c *Controller) Watch(fn func([]models.Order)) (store.Subscription, error) {
	return c.store.Watch(store.PathOrders, func(snap store.Snapshot) {
		if !snap.Exists {
			fn(nil)
			return
		}
		list, err := decodeList(snap.Data)
		if err != nil {
			log.Printf("orders: bad snapshot: %v", err)
			return
		}
		fn(list)
	})
}

// Bucketize partitions a sorted order list into the three status buckets,
// capping completed to the most recent entries.
func Bucketize(orders []models.Order) Buckets {
	var b Buckets
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusWaiting:
			b.Waiting = append(b.Waiting, o)
		case models.OrderStatusCooking:
			b.Cooking = append(b.Cooking, o)
		case models.OrderStatusCompleted:
			if len(b.Completed) < completedBucketCap {
				b.Completed = append(b.Completed, o)
			}
		}
	}
	return b
}

func decodeList(data []byte) ([]models.Order, error) {
	byID := map[string]models.Order{}
	if err := json.Unmarshal(data, &byID); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	list := make([]models.Order, 0, len(byID))
	for id, o := range byID {
		o.ID = id
		list = append(list, o)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Timestamp.Equal(list[j].Timestamp) {
			return list[i].ID < list[j].ID
		}
		return list[i].Timestamp.After(list[j].Timestamp)
	})
	return list, nil
}

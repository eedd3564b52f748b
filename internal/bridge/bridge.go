// Package bridge mirrors between the realtime store and the robot's
// ROS2 side: new waiting orders, emergency stops and recovery commands
// flow out to rosbridge topics, robot status updates flow back into the
// store. The store is checked on a fixed polling interval; command slots
// are single records distinguished by timestamp, so the bridge tracks the
// last timestamp it forwarded.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"roboburger/internal/models"
	"roboburger/internal/monitoring"
	"roboburger/internal/store"
)

// ROS2 topics the bridge publishes and subscribes.
const (
	TopicOrder        = "/burger_order"
	TopicStop         = "/robot_stop"
	TopicRecovery     = "/robot_recovery"
	TopicStatusUpdate = "/robot_status_update"
)

// DefaultPollInterval matches the original one-second store check.
const DefaultPollInterval = time.Second

// RosLink is the rosbridge surface the bridge needs; satisfied by
// rosbridge.Client.
type RosLink interface {
	Publish(topic, data string) error
	PublishJSON(topic string, payload any) error
	Subscribe(topic string, fn func(data string)) error
	Connected() bool
}

// orderPayload is what the robot receives for each new order.
type orderPayload struct {
	CommandID string        `json:"command_id"`
	OrderID   string        `json:"order_id"`
	Burger    models.Burger `json:"burger"`
	Status    string        `json:"status"`
	Timestamp time.Time     `json:"timestamp"`
}

// statusUpdate is what the robot reports on TopicStatusUpdate.
type statusUpdate struct {
	Status  string `json:"status"`
	OrderID string `json:"order_id,omitempty"`
}

// Bridge is the store-to-ROS2 mirror process.
type Bridge struct {
	store    store.Store
	ros      RosLink
	metrics  *monitoring.Metrics
	interval time.Duration

	mu               sync.Mutex
	processed        map[string]bool
	lastStopStamp    string
	lastRecoverStamp string
}

// New creates a bridge polling st every interval; interval <= 0 selects
// the default.
func New(st store.Store, ros RosLink, m *monitoring.Metrics, interval time.Duration) *Bridge {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Bridge{
		store:     st,
		ros:       ros,
		metrics:   m,
		interval:  interval,
		processed: map[string]bool{},
	}
}

// Run subscribes the status topic and polls until ctx is cancelled.
func (b *Bridge) Run(ctx context.Context) error {
	if err := b.ros.Subscribe(TopicStatusUpdate, func(data string) {
		b.handleStatusUpdate(ctx, data)
	}); err != nil {
		return err
	}

	log.Printf("bridge: running, checking store every %s", b.interval)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			b.Tick(ctx)
		}
	}
}

// Tick performs one polling pass: new orders, stop slot, recovery slot.
func (b *Bridge) Tick(ctx context.Context) {
	if err := b.checkOrders(ctx); err != nil {
		log.Printf("bridge: order check failed: %v", err)
	}
	if err := b.checkStop(ctx); err != nil {
		log.Printf("bridge: emergency stop check failed: %v", err)
	}
	if err := b.checkRecovery(ctx); err != nil {
		log.Printf("bridge: recovery check failed: %v", err)
	}
}

// checkOrders forwards each waiting order exactly once.
func (b *Bridge) checkOrders(ctx context.Context) error {
	data, err := b.store.Get(ctx, store.PathOrders)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	byID := map[string]models.Order{}
	if err := json.Unmarshal(data, &byID); err != nil {
		return err
	}

	for id, order := range byID {
		if order.Status != models.OrderStatusWaiting {
			continue
		}
		b.mu.Lock()
		seen := b.processed[id]
		b.mu.Unlock()
		if seen {
			continue
		}

		payload := orderPayload{
			CommandID: uuid.New().String(),
			OrderID:   id,
			Burger:    order.Burger,
			Status:    string(order.Status),
			Timestamp: order.Timestamp,
		}
		if err := b.ros.PublishJSON(TopicOrder, payload); err != nil {
			// Leave the order unprocessed; the next pass retries once
			// the link is back.
			log.Printf("bridge: publish order %s failed: %v", id, err)
			continue
		}

		b.mu.Lock()
		b.processed[id] = true
		b.mu.Unlock()
		b.metrics.BridgeForwarded("order")
		log.Printf("bridge: forwarded order %s (%s) as %s", id, order.Burger.Name, payload.CommandID)
	}
	return nil
}

// checkStop forwards a stop command when the slot holds a timestamp we
// have not forwarded yet.
func (b *Bridge) checkStop(ctx context.Context) error {
	cmd, stamp, err := b.readCommand(ctx, store.PathEmergencyStop)
	if err != nil || stamp == "" {
		return err
	}

	b.mu.Lock()
	stale := stamp == b.lastStopStamp
	b.mu.Unlock()
	if stale || cmd != models.StopCommand {
		return nil
	}

	if err := b.ros.Publish(TopicStop, models.StopCommand); err != nil {
		return err
	}
	b.mu.Lock()
	b.lastStopStamp = stamp
	b.mu.Unlock()
	b.metrics.BridgeForwarded("stop")
	log.Printf("bridge: emergency stop forwarded (timestamp %s)", stamp)
	return nil
}

// checkRecovery forwards home/resume commands, deduplicated by timestamp.
func (b *Bridge) checkRecovery(ctx context.Context) error {
	cmd, stamp, err := b.readCommand(ctx, store.PathRecoveryCommand)
	if err != nil || stamp == "" {
		return err
	}

	b.mu.Lock()
	stale := stamp == b.lastRecoverStamp
	b.mu.Unlock()
	if stale {
		return nil
	}

	if err := b.ros.Publish(TopicRecovery, cmd); err != nil {
		return err
	}
	b.mu.Lock()
	b.lastRecoverStamp = stamp
	b.mu.Unlock()
	b.metrics.BridgeForwarded("recovery")
	log.Printf("bridge: recovery command %q forwarded (timestamp %s)", cmd, stamp)
	return nil
}

func (b *Bridge) readCommand(ctx context.Context, path string) (command, stamp string, err error) {
	data, err := b.store.Get(ctx, path)
	if errors.Is(err, store.ErrNotFound) {
		return "", "", nil
	}
	if err != nil {
		return "", "", err
	}
	var cmd models.ControlCommand
	if err := json.Unmarshal(data, &cmd); err != nil {
		return "", "", err
	}
	return cmd.Command, cmd.Timestamp.Format(time.RFC3339Nano), nil
}

// handleStatusUpdate mirrors a robot status report into the store: the
// status scalar always, the named order's status when one is attached.
func (b *Bridge) handleStatusUpdate(ctx context.Context, data string) {
	var upd statusUpdate
	if err := json.Unmarshal([]byte(data), &upd); err != nil {
		log.Printf("bridge: bad status update: %v", err)
		return
	}
	if upd.Status == "" {
		upd.Status = string(models.RobotStatusIdle)
	}

	if err := b.store.Set(ctx, store.PathRobotStatus, upd.Status); err != nil {
		log.Printf("bridge: mirror robot status failed: %v", err)
		return
	}
	b.metrics.BridgeForwarded("status")

	if upd.OrderID != "" {
		err := b.store.Update(ctx, store.OrderPath(upd.OrderID), map[string]any{"status": upd.Status})
		if err != nil {
			log.Printf("bridge: mirror order %s status failed: %v", upd.OrderID, err)
			return
		}
		log.Printf("bridge: order %s status now %s", upd.OrderID, upd.Status)
	}
}

package robot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"roboburger/internal/models"
	"roboburger/internal/store"
)

// ErrRobotIdle is returned when an emergency stop is requested while no
// robot is working; the guard performs no store write.
var ErrRobotIdle = errors.New("현재 작동 중인 로봇이 없습니다")

// ErrBadRecoveryAction is returned for recovery actions outside
// {home, resume}.
var ErrBadRecoveryAction = errors.New("unknown recovery action")

// Controller watches the robot status scalar and writes the emergency
// stop and recovery command slots. Commands are fire-and-forget: the slot
// is overwritten on each send and nothing waits for the external consumer
// to acknowledge.
type Controller struct {
	store store.Store
	now   func() time.Time

	mu       sync.RWMutex
	status   models.RobotStatus
	attached bool // a bridge has written the status key at least once
}

// NewController creates a controller with status unknown until the first
// snapshot arrives.
func NewController(st store.Store) *Controller {
	return &Controller{store: st, now: time.Now, status: models.RobotStatusUnknown}
}

// Watch subscribes the status scalar. The callback gets the mapped status
// and whether an external writer is attached (absent key means none).
func (c *Controller) Watch(fn func(status models.RobotStatus, attached bool)) (store.Subscription, error) {
	return c.store.Watch(store.PathRobotStatus, func(snap store.Snapshot) {
		status := models.RobotStatusUnknown
		attached := false
		if snap.Exists {
			var raw string
			if err := json.Unmarshal(snap.Data, &raw); err == nil {
				status = models.RobotStatus(raw)
				attached = true
			}
		}
		c.mu.Lock()
		c.status = status
		c.attached = attached
		c.mu.Unlock()
		fn(status, attached)
	})
}

// Status returns the last observed status.
func (c *Controller) Status() models.RobotStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status
}

// Attached reports whether the status key has an external writer.
func (c *Controller) Attached() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.attached
}

// EmergencyStop writes the stop command slot. It refuses without writing
// when the current status is idle.
func (c *Controller) EmergencyStop(ctx context.Context) error {
	if c.Status() == models.RobotStatusIdle {
		return ErrRobotIdle
	}
	cmd := models.ControlCommand{Command: models.StopCommand, Timestamp: c.now()}
	if err := c.store.Set(ctx, store.PathEmergencyStop, cmd); err != nil {
		return fmt.Errorf("send emergency stop: %w", err)
	}
	return nil
}

// Recover writes the recovery command slot with action home or resume.
// No check is made that the current status actually permits the action;
// the command is advisory to the external consumer.
func (c *Controller) Recover(ctx context.Context, action string) error {
	if action != models.RecoveryActionHome && action != models.RecoveryActionResume {
		return fmt.Errorf("%w: %q", ErrBadRecoveryAction, action)
	}
	cmd := models.ControlCommand{Command: action, Timestamp: c.now()}
	if err := c.store.Set(ctx, store.PathRecoveryCommand, cmd); err != nil {
		return fmt.Errorf("send recovery command: %w", err)
	}
	return nil
}

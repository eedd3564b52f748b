// Package store abstracts the hosted realtime database the kiosk mirrors
// its records to. Values are JSON documents addressed by slash-separated
// key paths; subscribers receive a full-value snapshot on every change to
// a watched path, starting with the current value at subscribe time.
package store

import (
	"context"
	"errors"
)

// Well-known key paths shared by the kiosk and the robot bridge.
const (
	PathOrders          = "orders"
	PathRobotStatus     = "robot_status"
	PathEmergencyStop   = "emergency_stop"
	PathRecoveryCommand = "recovery_command"

	// PathConnected is the connectivity sentinel. Watchers receive a JSON
	// boolean reflecting the client's connection state.
	PathConnected = ".info/connected"

	// OrderNumberSequence names the monotonic counter that assigns
	// customer-facing order numbers.
	OrderNumberSequence = "order_number"
)

// ErrNotFound is returned by Get when nothing has been written at a path.
var ErrNotFound = errors.New("store: path not found")

// OrderPath returns the key path of a single order record.
func OrderPath(id string) string { return PathOrders + "/" + id }

// DailyStatsPath returns the key path of the statistics record for a
// calendar date in YYYY-MM-DD form.
func DailyStatsPath(date string) string { return "statistics/daily/" + date }

// Snapshot is a full current value delivered to a watcher whenever the
// watched path changes.
type Snapshot struct {
	Path   string
	Data   []byte // JSON value at Path; nil when the path is absent
	Exists bool
}

// Subscription is the explicit lifetime handle of a watch. Unsubscribe is
// idempotent.
type Subscription interface {
	Unsubscribe()
}

// Store is the realtime store client surface the kiosk depends on.
//
// Get/Set/Update address single key paths. Push appends a value under a
// collection path and returns the store-assigned id. IncrBy and
// NextSequence are the atomic primitives that replace read-modify-write
// cycles for counters. Watch registers a snapshot callback with explicit
// subscription lifetime; callbacks also fire for writes below the watched
// path (a write to orders/<id> notifies a watcher of orders).
type Store interface {
	Get(ctx context.Context, path string) ([]byte, error)
	Set(ctx context.Context, path string, value any) error
	Update(ctx context.Context, path string, fields map[string]any) error
	Push(ctx context.Context, path string, value any) (string, error)

	// IncrBy atomically adds delta to a numeric field of the document at
	// path, creating the document and the field as needed. The field name
	// is a dotted path into the document ("by_menu.<name>.count").
	IncrBy(ctx context.Context, path, field string, delta int64) (int64, error)

	// NextSequence atomically increments the named counter and returns
	// the new value. The first call returns 1.
	NextSequence(ctx context.Context, name string) (int64, error)

	Watch(path string, fn func(Snapshot)) (Subscription, error)

	Connected() bool
	Close() error
}

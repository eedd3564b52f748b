// Package app holds the kiosk's application state. All mutation goes
// through Reduce with a typed event, replacing the scattered mutable
// fields of an ad hoc UI with one explicit transition function.
package app

import (
	"roboburger/internal/models"
	"roboburger/internal/orders"
	"roboburger/internal/robot"
)

// View is one of the two top-level surfaces.
type View string

const (
	ViewCustomer View = "customer"
	ViewAdmin    View = "admin"
)

// State is the full UI-facing state, derived read-only from store
// snapshots plus the process-local session flags. It is treated as
// immutable: Reduce returns a new value.
type State struct {
	View               View                `json:"view"`
	AdminAuthenticated bool                `json:"isAdminAuthenticated"`
	ShowJog            bool                `json:"showJog"`
	Orders             []models.Order      `json:"orders"`
	Buckets            orders.Buckets      `json:"buckets"`
	RobotStatus        models.RobotStatus  `json:"robotStatus"`
	RobotDisplay       robot.StatusDisplay `json:"robotDisplay"`
	Prompt             robot.Prompt        `json:"prompt"`
	StopDisabled       bool                `json:"stopDisabled"`
	BridgeAttached     bool                `json:"bridgeAttached"`
	StoreConnected     bool                `json:"storeConnected"`
	Stats              models.DailyStats   `json:"dailyStats"`
}

// Initial is the state before any snapshot has arrived. The robot fields
// are derived from the unknown status, so the pre-snapshot state matches
// what reducing a RobotStatusChanged{unknown} event would produce.
func Initial() State {
	return State{
		View:         ViewCustomer,
		RobotStatus:  models.RobotStatusUnknown,
		RobotDisplay: robot.Display(models.RobotStatusUnknown),
		Prompt:       robot.PromptFor(models.RobotStatusUnknown),
		StopDisabled: robot.StopDisabled(models.RobotStatusUnknown),
		Stats:        models.EmptyDailyStats(),
	}
}

// Event is a state transition trigger.
type Event interface{ isEvent() }

// OrdersSnapshot carries the sorted order list of a store snapshot.
type OrdersSnapshot struct{ Orders []models.Order }

// RobotStatusChanged carries the mapped status of a status snapshot plus
// whether an external writer is attached.
type RobotStatusChanged struct {
	Status   models.RobotStatus
	Attached bool
}

// StatsSnapshot carries today's statistics record.
type StatsSnapshot struct{ Stats models.DailyStats }

// ConnectionChanged reflects the store connectivity sentinel.
type ConnectionChanged struct{ Connected bool }

// LoggedIn flips the admin session flag and switches to the admin view.
type LoggedIn struct{}

// LoggedOut drops the session and returns to the customer view.
type LoggedOut struct{}

// ViewSelected switches the top-level view. Selecting admin without an
// authenticated session is ignored.
type ViewSelected struct{ View View }

// JogToggled opens or closes the manual control panel.
type JogToggled struct{ Open bool }

func (OrdersSnapshot) isEvent()     {}
func (RobotStatusChanged) isEvent() {}
func (StatsSnapshot) isEvent()      {}
func (ConnectionChanged) isEvent()  {}
func (LoggedIn) isEvent()           {}
func (LoggedOut) isEvent()          {}
func (ViewSelected) isEvent()       {}
func (JogToggled) isEvent()         {}

// Reduce applies one event to the state and returns the next state.
func Reduce(s State, ev Event) State {
	switch e := ev.(type) {
	case OrdersSnapshot:
		s.Orders = e.Orders
		s.Buckets = orders.Bucketize(e.Orders)
	case RobotStatusChanged:
		s.RobotStatus = e.Status
		s.RobotDisplay = robot.Display(e.Status)
		s.Prompt = robot.PromptFor(e.Status)
		s.StopDisabled = robot.StopDisabled(e.Status)
		s.BridgeAttached = e.Attached
	case StatsSnapshot:
		s.Stats = e.Stats
	case ConnectionChanged:
		s.StoreConnected = e.Connected
	case LoggedIn:
		s.AdminAuthenticated = true
		s.View = ViewAdmin
	case LoggedOut:
		s.AdminAuthenticated = false
		s.View = ViewCustomer
		s.ShowJog = false
	case ViewSelected:
		if e.View == ViewAdmin && !s.AdminAuthenticated {
			break
		}
		if e.View == ViewAdmin || e.View == ViewCustomer {
			s.View = e.View
		}
	case JogToggled:
		s.ShowJog = e.Open && s.AdminAuthenticated
	}
	return s
}

package models

import "time"

// RobotStatus represents the scalar status value written by the external
// robot controller. The kiosk never writes this value itself.
type RobotStatus string

const (
	RobotStatusIdle       RobotStatus = "idle"
	RobotStatusReady      RobotStatus = "ready"
	RobotStatusCooking    RobotStatus = "cooking"
	RobotStatusPaused     RobotStatus = "paused"
	RobotStatusStopped    RobotStatus = "stopped"
	RobotStatusCollision  RobotStatus = "error_collision"
	RobotStatusRecovering RobotStatus = "recovering"
	RobotStatusProcessing RobotStatus = "processing"

	// RobotStatusUnknown stands in for any value outside the enumeration,
	// including the absent case when no bridge has ever written the key.
	RobotStatusUnknown RobotStatus = "unknown"
)

// ControlCommand is the single-slot command record written to the
// emergency_stop and recovery_command paths. Each send overwrites the
// previous record; consumers distinguish new commands by timestamp.
type ControlCommand struct {
	Command   string    `json:"command"`
	Timestamp time.Time `json:"timestamp"`
}

// Recovery actions accepted by the robot bridge.
const (
	RecoveryActionHome   = "home"
	RecoveryActionResume = "resume"
)

// StopCommand is the only command ever written to the emergency_stop slot.
const StopCommand = "stop"

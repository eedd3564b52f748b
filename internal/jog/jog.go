// Package jog is the manual robot control panel: discrete motion and
// gripper commands published on a single rosbridge topic, independent of
// the realtime store.
package jog

import (
	"errors"
	"fmt"
)

// Topic carries every jog command as a JSON-encoded std_msgs/String.
const Topic = "/burger_jog"

// Command types.
const (
	TypeGrip  = "grip"
	TypeJoint = "joint"
	TypeTask  = "task"
	TypeAlign = "align"
)

// Gripper commands.
const (
	GripCatch   = "catch"
	GripRelease = "release"
)

// ModeRelative is the only motion mode the panel issues; every move is a
// step relative to the current pose.
const ModeRelative = "rel"

// axisCount covers J1..J6 for joint moves and X,Y,Z,Rx,Ry,Rz for task
// moves.
const axisCount = 6

// ErrInvalidCommand rejects command shapes the robot side would not
// understand.
var ErrInvalidCommand = errors.New("invalid jog command")

// Command is the wire shape published on the jog topic. Value is a step
// in degrees for joint moves and millimeters for task moves; the step
// sizes are whatever the operator dialed in.
type Command struct {
	Type  string   `json:"type"`
	Cmd   string   `json:"cmd,omitempty"`
	Index *int     `json:"index,omitempty"`
	Value *float64 `json:"value,omitempty"`
	Mode  string   `json:"mode,omitempty"`
}

// Grip builds a gripper command.
func Grip(cmd string) Command {
	return Command{Type: TypeGrip, Cmd: cmd}
}

// Joint builds a relative joint move on axis index (0..5) by value
// degrees.
func Joint(index int, value float64) Command {
	return Command{Type: TypeJoint, Index: &index, Value: &value, Mode: ModeRelative}
}

// Task builds a relative linear/task move on axis index (0..5) by value
// millimeters.
func Task(index int, value float64) Command {
	return Command{Type: TypeTask, Index: &index, Value: &value, Mode: ModeRelative}
}

// Align builds the Z-axis vertical alignment command.
func Align() Command {
	return Command{Type: TypeAlign}
}

// Validate checks the command shape before it goes on the wire.
func (c Command) Validate() error {
	switch c.Type {
	case TypeGrip:
		if c.Cmd != GripCatch && c.Cmd != GripRelease {
			return fmt.Errorf("%w: grip cmd %q", ErrInvalidCommand, c.Cmd)
		}
	case TypeJoint, TypeTask:
		if c.Index == nil || *c.Index < 0 || *c.Index >= axisCount {
			return fmt.Errorf("%w: axis index out of range", ErrInvalidCommand)
		}
		if c.Value == nil {
			return fmt.Errorf("%w: missing step value", ErrInvalidCommand)
		}
		if c.Mode != ModeRelative {
			return fmt.Errorf("%w: mode %q", ErrInvalidCommand, c.Mode)
		}
	case TypeAlign:
		// no fields
	default:
		return fmt.Errorf("%w: type %q", ErrInvalidCommand, c.Type)
	}
	return nil
}

// Publisher is the channel a panel publishes on; satisfied by
// rosbridge.Client.
type Publisher interface {
	PublishJSON(topic string, payload any) error
	Connected() bool
}

// Panel validates and publishes jog commands on the control channel.
type Panel struct {
	pub Publisher
}

// NewPanel wires the panel to an already-dialed control channel.
func NewPanel(pub Publisher) *Panel {
	return &Panel{pub: pub}
}

// Connected mirrors the channel's connection flag for the UI indicator.
func (p *Panel) Connected() bool { return p.pub.Connected() }

// Send validates cmd and publishes it. Publishing is refused when the
// channel is down; nothing is queued or retried.
func (p *Panel) Send(cmd Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return p.pub.PublishJSON(Topic, cmd)
}

// Package robot tracks the external robot controller's status value and
// issues the two side-channel commands (emergency stop, recovery) as
// store writes. The status itself is read-only from the kiosk's side.
package robot

import "roboburger/internal/models"

// StatusDisplay is what the UI renders for a robot status.
type StatusDisplay struct {
	Label string `json:"label"`
	Emoji string `json:"emoji"`
	Color string `json:"color"`
}

var statusDisplays = map[models.RobotStatus]StatusDisplay{
	models.RobotStatusIdle:       {Label: "유휴 상태", Emoji: "💤", Color: "#64748b"},
	models.RobotStatusReady:      {Label: "대기 중", Emoji: "⚡", Color: "#3b82f6"},
	models.RobotStatusCooking:    {Label: "조리 중", Emoji: "🤖", Color: "#10b981"},
	models.RobotStatusPaused:     {Label: "⚠️ 일시 정지 (복구 대기)", Emoji: "⏸️", Color: "#f59e0b"},
	models.RobotStatusStopped:    {Label: "🚨 정지됨", Emoji: "🛑", Color: "#ef4444"},
	models.RobotStatusCollision:  {Label: "💥 충돌 감지됨", Emoji: "🚨", Color: "#ef4444"},
	models.RobotStatusRecovering: {Label: "🏠 홈 위치로 이동 중...", Emoji: "🚑", Color: "#8b5cf6"},
	models.RobotStatusProcessing: {Label: "▶️ 작업 재개 중...", Emoji: "🍳", Color: "#10b981"},
}

// unknownDisplay is the fallback for absent or unrecognized status values.
var unknownDisplay = StatusDisplay{Label: "알 수 없음", Emoji: "❓", Color: "#94a3b8"}

// Display maps a status to its label/emoji/color triple. The mapping is
// total: anything outside the enumeration gets the unknown triple.
func Display(status models.RobotStatus) StatusDisplay {
	if d, ok := statusDisplays[status]; ok {
		return d
	}
	return unknownDisplay
}

// StopDisabled reports whether the emergency-stop control should be
// disabled for the given status.
func StopDisabled(status models.RobotStatus) bool {
	return status == models.RobotStatusIdle || status == models.RobotStatusPaused
}

// Prompt identifies which blocking modal, if any, a status demands.
type Prompt struct {
	Kind    PromptKind `json:"kind"`
	Actions []string   `json:"actions,omitempty"`
}

// PromptKind enumerates the modal variants of the admin view.
type PromptKind string

const (
	// PromptNone: no modal for this status.
	PromptNone PromptKind = ""
	// PromptRecovery: binary choice between homing and resuming.
	PromptRecovery PromptKind = "recovery"
	// PromptSafety: blocking safety modal after a collision; offers the
	// home action only while the status is still error_collision.
	PromptSafety PromptKind = "safety"
)

// PromptFor returns the modal a status demands. paused asks the operator
// to choose between home and resume; error_collision blocks with a home
// action; recovering blocks with no action until the robot reports back.
func PromptFor(status models.RobotStatus) Prompt {
	switch status {
	case models.RobotStatusPaused:
		return Prompt{Kind: PromptRecovery, Actions: []string{models.RecoveryActionHome, models.RecoveryActionResume}}
	case models.RobotStatusCollision:
		return Prompt{Kind: PromptSafety, Actions: []string{models.RecoveryActionHome}}
	case models.RobotStatusRecovering:
		return Prompt{Kind: PromptSafety}
	default:
		return Prompt{Kind: PromptNone}
	}
}

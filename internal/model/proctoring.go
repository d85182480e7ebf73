package model

import (
	"encoding/json"
	"time"
)

// EventKind enumerates proctoring event types. Unknown kinds are still
// appended to the log; they just never touch the session counters.
type EventKind string

const (
	EventTabSwitch      EventKind = "tab_switch"
	EventCopyAttempt    EventKind = "copy_attempt"
	EventPasteAttempt   EventKind = "paste_attempt"
	EventFullscreenExit EventKind = "fullscreen_exit"
)

// CountsTabSwitch reports whether the event increments the tab-switch counter.
func (k EventKind) CountsTabSwitch() bool {
	return k == EventTabSwitch
}

// CountsViolation reports whether the event increments the generic violation
// counter. Tab switches count as violations too.
func (k EventKind) CountsViolation() bool {
	switch k {
	case EventTabSwitch, EventCopyAttempt, EventPasteAttempt, EventFullscreenExit:
		return true
	}
	return false
}

// ProctoringEvent is an append-only integrity log entry. CandidateID always
// comes from the authenticated principal, never from the client payload.
type ProctoringEvent struct {
	ID             int64           `json:"id"`
	CandidateID    int             `json:"candidate_id"`
	TestID         int             `json:"test_id"`
	EventType      EventKind       `json:"event_type"`
	EventData      json.RawMessage `json:"event_data,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CandidateName  string          `json:"candidate_name,omitempty"`
	CandidateEmail string          `json:"candidate_email,omitempty"`
}

// ViolationCounters is the post-update counter state returned after logging
// an event, and the payload published to the live monitor channel.
type ViolationCounters struct {
	TabSwitchCount int  `json:"tab_switch_count"`
	ViolationCount int  `json:"violation_count"`
	Flagged        bool `json:"flagged"`
}

// EventSummary aggregates a candidate's events for the review UI.
type EventSummary struct {
	TabSwitches     int `json:"tab_switches"`
	CopyAttempts    int `json:"copy_attempts"`
	PasteAttempts   int `json:"paste_attempts"`
	FullscreenExits int `json:"fullscreen_exits"`
	TotalEvents     int `json:"total_events"`
}

// LogEventRequest is the payload for logging a proctoring event.
type LogEventRequest struct {
	TestID    int             `json:"test_id" binding:"required"`
	EventType string          `json:"event_type" binding:"required"`
	EventData json.RawMessage `json:"event_data" binding:"omitempty"`
}

// MonitorUpdate is the message fanned out to live proctor monitor streams
// after a committed proctoring event.
type MonitorUpdate struct {
	CandidateID int               `json:"candidate_id"`
	TestID      int               `json:"test_id"`
	EventType   EventKind         `json:"event_type"`
	Counters    ViolationCounters `json:"counters"`
	At          time.Time         `json:"at"`
}

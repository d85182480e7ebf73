package model

import (
	"encoding/json"
	"time"
)

// SessionStatus enumerates test session states. Absence of a row means
// not_started; there is no transition out of completed.
type SessionStatus string

const (
	SessionStatusNotStarted SessionStatus = "not_started"
	SessionStatusInProgress SessionStatus = "in_progress"
	SessionStatusCompleted  SessionStatus = "completed"
)

// Session is the mutable record of one candidate attempting one test.
// At most one row exists per (candidate, test); the storage layer enforces
// this with a unique constraint so concurrent writers cannot fork it.
type Session struct {
	ID             int             `json:"id"`
	CandidateID    int             `json:"candidate_id"`
	TestID         int             `json:"test_id"`
	Status         SessionStatus   `json:"status"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        *time.Time      `json:"end_time,omitempty"`
	Score          *int            `json:"score,omitempty"`
	SavedAnswers   json.RawMessage `json:"saved_answers,omitempty"`
	TimeRemaining  *int            `json:"time_remaining,omitempty"` // seconds
	TabSwitchCount int             `json:"tab_switch_count"`
	ViolationCount int             `json:"violation_count"`
	Flagged        bool            `json:"flagged"`
}

// SessionState is the resume payload returned by the status endpoint.
type SessionState struct {
	Status        SessionStatus   `json:"status"`
	Result        *Result         `json:"result,omitempty"`
	SavedAnswers  json.RawMessage `json:"saved_answers,omitempty"`
	TimeRemaining *int            `json:"time_remaining,omitempty"`
	StartTime     *time.Time      `json:"start_time,omitempty"`
}

// SaveProgressRequest is the periodic autosave payload. TimeRemaining is
// required and must not be negative; pointer so that absence is detectable.
type SaveProgressRequest struct {
	Answers       map[string]string `json:"answers" binding:"required"`
	TimeRemaining *int              `json:"time_remaining" binding:"required"`
}

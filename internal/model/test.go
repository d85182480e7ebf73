package model

import "time"

// Test represents an assessment authored by an employer or admin.
// Proctoring policy lives on the test so that every session against it
// shares the same thresholds.
type Test struct {
	ID                int       `json:"id"`
	Title             string    `json:"title"`
	Description       string    `json:"description,omitempty"`
	TimeLimit         int       `json:"time_limit"` // minutes
	EnableProctoring  bool      `json:"enable_proctoring"`
	MaxTabSwitches    int       `json:"max_tab_switches"`
	AllowCopyPaste    bool      `json:"allow_copy_paste"`
	RequireFullscreen bool      `json:"require_fullscreen"`
	CreatedBy         int       `json:"created_by"`
	CreatedByName     string    `json:"created_by_name,omitempty"`
	QuestionCount     int       `json:"question_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// ProctoringSettings is the subset of Test a candidate's client needs to
// enforce the proctoring policy.
type ProctoringSettings struct {
	EnableProctoring  bool `json:"enable_proctoring"`
	MaxTabSwitches    int  `json:"max_tab_switches"`
	AllowCopyPaste    bool `json:"allow_copy_paste"`
	RequireFullscreen bool `json:"require_fullscreen"`
}

// CreateTestRequest is the payload for creating a test with its questions.
type CreateTestRequest struct {
	Title       string                  `json:"title" binding:"required,min=3,max=255"`
	Description string                  `json:"description" binding:"omitempty"`
	TimeLimit   int                     `json:"time_limit" binding:"omitempty,min=1,max=480"`
	Proctoring  *ProctoringSettings     `json:"proctoring" binding:"omitempty"`
	Questions   []CreateQuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// UpdateTestRequest is the payload for updating a test. When Questions is
// non-empty the question set is replaced wholesale.
type UpdateTestRequest struct {
	Title       string                  `json:"title" binding:"required,min=3,max=255"`
	Description string                  `json:"description" binding:"omitempty"`
	TimeLimit   int                     `json:"time_limit" binding:"omitempty,min=1,max=480"`
	Proctoring  *ProctoringSettings     `json:"proctoring" binding:"omitempty"`
	Questions   []CreateQuestionRequest `json:"questions" binding:"omitempty,dive"`
}

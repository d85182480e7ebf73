package model

import "time"

// Result is the immutable terminal summary of a completed session. Its
// existence is the sole source of truth for "already completed".
type Result struct {
	ID             int       `json:"id"`
	CandidateID    int       `json:"candidate_id"`
	TestID         int       `json:"test_id"`
	TotalQuestions int       `json:"total_questions"` // auto-graded denominator
	CorrectAnswers int       `json:"correct_answers"`
	Score          int       `json:"score"`
	Remarks        string    `json:"remarks"`
	TakenAt        time.Time `json:"taken_at"`

	// Denormalized joins for listing endpoints.
	TestTitle      string `json:"test_title,omitempty"`
	CandidateName  string `json:"candidate_name,omitempty"`
	CandidateEmail string `json:"candidate_email,omitempty"`
}

// Answer is one durable record per (candidate, question) submission attempt,
// immutable after grading. Correctness is denormalized for audit.
type Answer struct {
	ID          int       `json:"id"`
	CandidateID int       `json:"candidate_id"`
	QuestionID  int       `json:"question_id"`
	Answer      string    `json:"answer,omitempty"`
	IsCorrect   bool      `json:"is_correct"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// Submission is the response payload of a graded submit.
type Submission struct {
	Score          int    `json:"score"`
	TotalQuestions int    `json:"total_questions"`
	CorrectAnswers int    `json:"correct_answers"`
	Remarks        string `json:"remarks"`
}

// CompletionNotice is the queue payload for the post-submission email.
type CompletionNotice struct {
	CandidateEmail string `json:"candidate_email"`
	CandidateName  string `json:"candidate_name"`
	TestTitle      string `json:"test_title"`
	Score          int    `json:"score"`
	Remarks        string `json:"remarks"`
}

// SubmitTestRequest carries the candidate's answers keyed by question ID.
type SubmitTestRequest struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

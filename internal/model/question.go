package model

import (
	"encoding/json"
	"strings"
)

// QuestionType tags a question with its grading strategy.
type QuestionType string

const (
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeTrueFalse      QuestionType = "true_false"
	QuestionTypeShortAnswer    QuestionType = "short_answer"
	QuestionTypeEssay          QuestionType = "essay"
)

// AutoGraded reports whether answers of this type are graded by exact
// equality against the stored key. Free-form types are never auto-graded.
func (t QuestionType) AutoGraded() bool {
	return t == QuestionTypeMultipleChoice || t == QuestionTypeTrueFalse
}

// QuestionTypes is the closed set of supported types, in display order.
var QuestionTypes = []QuestionTypeInfo{
	{Type: QuestionTypeMultipleChoice, Label: "Multiple Choice", AutoGraded: true},
	{Type: QuestionTypeTrueFalse, Label: "True / False", AutoGraded: true},
	{Type: QuestionTypeShortAnswer, Label: "Short Answer", AutoGraded: false},
	{Type: QuestionTypeEssay, Label: "Essay", AutoGraded: false},
}

// QuestionTypeInfo describes one supported question type.
type QuestionTypeInfo struct {
	Type       QuestionType `json:"type"`
	Label      string       `json:"label"`
	AutoGraded bool         `json:"auto_graded"`
}

// Question belongs to exactly one Test. CorrectAnswer is populated only for
// auto-graded types and is never serialized to candidates.
type Question struct {
	ID            int          `json:"id"`
	TestID        int          `json:"test_id"`
	QuestionText  string       `json:"question_text"`
	QuestionType  QuestionType `json:"question_type"`
	Options       []string     `json:"options"`
	CorrectAnswer string       `json:"correct_answer,omitempty"`
}

// ForCandidate returns a copy with the answer key stripped.
func (q Question) ForCandidate() Question {
	q.CorrectAnswer = ""
	return q
}

// CreateQuestionRequest is the payload for one question inside a test.
type CreateQuestionRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	QuestionType  string   `json:"question_type" binding:"required,oneof=multiple_choice true_false short_answer essay"`
	Options       []string `json:"options" binding:"omitempty"`
	CorrectAnswer string   `json:"correct_answer" binding:"omitempty,max=2000"`
}

// ParseOptions normalizes a stored options value into an ordered list of
// choice strings. Historical rows hold either a JSON array, a comma-separated
// string, or nothing; this is the single place that interprets them, and it
// never fails: unparseable input yields an empty list.
func ParseOptions(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}

	if strings.HasPrefix(raw, "[") {
		var opts []string
		if err := json.Unmarshal([]byte(raw), &opts); err == nil {
			return opts
		}
		return []string{}
	}

	parts := strings.Split(raw, ",")
	opts := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			opts = append(opts, trimmed)
		}
	}
	return opts
}

// EncodeOptions serializes an option list for storage as a JSON array.
func EncodeOptions(opts []string) string {
	if len(opts) == 0 {
		return ""
	}
	b, err := json.Marshal(opts)
	if err != nil {
		return ""
	}
	return string(b)
}

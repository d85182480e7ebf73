package model

import (
	"reflect"
	"testing"
)

func TestParseOptions(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"json array", `["A","B","C"]`, []string{"A", "B", "C"}},
		{"comma separated", "A, B, C", []string{"A", "B", "C"}},
		{"comma with blanks", "A,,C", []string{"A", "C"}},
		{"empty", "", []string{}},
		{"whitespace only", "   ", []string{}},
		{"malformed json", `["A","B"`, []string{}},
		{"single value", "True", []string{"True"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseOptions(tc.raw)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseOptions(%q) = %v, want %v", tc.raw, got, tc.want)
			}
		})
	}
}

func TestEncodeOptionsRoundTrip(t *testing.T) {
	opts := []string{"Paris", "London", "Berlin"}
	encoded := EncodeOptions(opts)
	if got := ParseOptions(encoded); !reflect.DeepEqual(got, opts) {
		t.Errorf("round trip = %v, want %v", got, opts)
	}

	if EncodeOptions(nil) != "" {
		t.Error("EncodeOptions(nil) should be empty")
	}
}

func TestQuestionTypeAutoGraded(t *testing.T) {
	if !QuestionTypeMultipleChoice.AutoGraded() || !QuestionTypeTrueFalse.AutoGraded() {
		t.Error("multiple_choice and true_false must be auto-graded")
	}
	if QuestionTypeShortAnswer.AutoGraded() || QuestionTypeEssay.AutoGraded() {
		t.Error("short_answer and essay must not be auto-graded")
	}
}

func TestForCandidateStripsKey(t *testing.T) {
	q := Question{ID: 1, QuestionText: "2+2?", QuestionType: QuestionTypeMultipleChoice, CorrectAnswer: "4"}
	if stripped := q.ForCandidate(); stripped.CorrectAnswer != "" {
		t.Error("ForCandidate must strip the answer key")
	}
	if q.CorrectAnswer != "4" {
		t.Error("ForCandidate must not mutate the receiver")
	}
}

func TestEventKindCounters(t *testing.T) {
	cases := []struct {
		kind      EventKind
		tab       bool
		violation bool
	}{
		{EventTabSwitch, true, true},
		{EventCopyAttempt, false, true},
		{EventPasteAttempt, false, true},
		{EventFullscreenExit, false, true},
		{EventKind("mouse_leave"), false, false},
	}

	for _, tc := range cases {
		if got := tc.kind.CountsTabSwitch(); got != tc.tab {
			t.Errorf("%s CountsTabSwitch = %v, want %v", tc.kind, got, tc.tab)
		}
		if got := tc.kind.CountsViolation(); got != tc.violation {
			t.Errorf("%s CountsViolation = %v, want %v", tc.kind, got, tc.violation)
		}
	}
}

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmmllrs/test-app-backend/internal/model"
)

func TestBuildQuestionsValidation(t *testing.T) {
	t.Run("auto-graded without key", func(t *testing.T) {
		_, err := buildQuestions([]model.CreateQuestionRequest{
			{QuestionText: "2+2?", QuestionType: "multiple_choice", Options: []string{"3", "4"}},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("multiple choice needs two options", func(t *testing.T) {
		_, err := buildQuestions([]model.CreateQuestionRequest{
			{QuestionText: "2+2?", QuestionType: "multiple_choice", Options: []string{"4"}, CorrectAnswer: "4"},
		})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("true_false gets default options", func(t *testing.T) {
		qs, err := buildQuestions([]model.CreateQuestionRequest{
			{QuestionText: "Go has generics.", QuestionType: "true_false", CorrectAnswer: "True"},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"True", "False"}, qs[0].Options)
	})

	t.Run("essay needs no key", func(t *testing.T) {
		qs, err := buildQuestions([]model.CreateQuestionRequest{
			{QuestionText: "Explain interfaces.", QuestionType: "essay"},
		})
		require.NoError(t, err)
		assert.Equal(t, model.QuestionTypeEssay, qs[0].QuestionType)
	})
}

func TestForTakingRequiresCandidateRole(t *testing.T) {
	svc := NewTestService(nil, nil, nil)

	for _, role := range []model.Role{model.RoleEmployer, model.RoleAdmin} {
		_, err := svc.ForTaking(context.Background(), Principal{ID: 7, Role: role}, 1)
		assert.ErrorIs(t, err, ErrForbidden, "role %s must not take tests", role)
	}
}

func TestCanManage(t *testing.T) {
	admin := Principal{ID: 1, Role: model.RoleAdmin}
	owner := Principal{ID: 7, Role: model.RoleEmployer}
	other := Principal{ID: 8, Role: model.RoleEmployer}

	assert.True(t, admin.CanManage(7), "admins manage everything")
	assert.True(t, owner.CanManage(7))
	assert.False(t, other.CanManage(7))
}

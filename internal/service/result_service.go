package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jrmmllrs/test-app-backend/internal/model"
	"github.com/jrmmllrs/test-app-backend/internal/repository"
)

// ResultService serves read-only result views.
type ResultService struct {
	results *repository.ResultRepository
	tests   *repository.TestRepository
}

// NewResultService creates a new ResultService.
func NewResultService(results *repository.ResultRepository, tests *repository.TestRepository) *ResultService {
	return &ResultService{results: results, tests: tests}
}

// Mine lists the principal's own results.
func (s *ResultService) Mine(ctx context.Context, p Principal) ([]model.Result, error) {
	return s.results.ListByCandidate(ctx, p.ID)
}

// ByTest lists candidate results for a test, for its owner or an admin.
func (s *ResultService) ByTest(ctx context.Context, p Principal, testID int) ([]model.Result, error) {
	test, err := s.tests.GetByID(ctx, testID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("test %d: %w", testID, ErrNotFound)
		}
		return nil, fmt.Errorf("get test: %w", err)
	}
	if !p.CanManage(test.CreatedBy) {
		return nil, fmt.Errorf("test %d not owned by caller: %w", testID, ErrForbidden)
	}
	return s.results.ListByTest(ctx, testID)
}

// All lists every result on the platform. Admin only, enforced upstream.
func (s *ResultService) All(ctx context.Context) ([]model.Result, error) {
	return s.results.ListAll(ctx)
}

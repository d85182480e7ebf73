package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jrmmllrs/test-app-backend/internal/middleware"
	"github.com/jrmmllrs/test-app-backend/internal/model"
	"github.com/jrmmllrs/test-app-backend/internal/response"
	"github.com/jrmmllrs/test-app-backend/internal/service"
	"github.com/jrmmllrs/test-app-backend/internal/validator"
)

// TestHandler handles test authoring and test taking endpoints.
type TestHandler struct {
	testService    *service.TestService
	sessionService *service.SessionService
	gradingService *service.GradingService
	resultService  *service.ResultService
}

// NewTestHandler creates a new TestHandler.
func NewTestHandler(testService *service.TestService, sessionService *service.SessionService, gradingService *service.GradingService, resultService *service.ResultService) *TestHandler {
	return &TestHandler{
		testService:    testService,
		sessionService: sessionService,
		gradingService: gradingService,
		resultService:  resultService,
	}
}

// Create godoc
// POST /api/v1/tests
func (h *TestHandler) Create(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req model.CreateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Create(c.Request.Context(), p, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusCreated, "Test created.", gin.H{"test": test})
}

// MyTests godoc
// GET /api/v1/tests/my-tests
func (h *TestHandler) MyTests(c *gin.Context) {
	p, _ := middleware.Principal(c)

	tests, err := h.testService.MyTests(c.Request.Context(), p)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Available godoc
// GET /api/v1/tests/available
func (h *TestHandler) Available(c *gin.Context) {
	tests, err := h.testService.Available(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"tests": tests})
}

// Get godoc
// GET /api/v1/tests/:id
// Owner view with answer keys included.
func (h *TestHandler) Get(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payload, err := h.testService.Get(c.Request.Context(), p, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, payload)
}

// Update godoc
// PUT /api/v1/tests/:id
func (h *TestHandler) Update(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.UpdateTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	test, err := h.testService.Update(c.Request.Context(), p, id, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Test updated.", gin.H{"test": test})
}

// Delete godoc
// DELETE /api/v1/tests/:id
func (h *TestHandler) Delete(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.testService.Delete(c.Request.Context(), p, id); err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Test deleted.", nil)
}

// Take godoc
// GET /api/v1/tests/:id/take
// Candidate view with answer keys stripped.
func (h *TestHandler) Take(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	payload, err := h.testService.ForTaking(c.Request.Context(), p, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, payload)
}

// Status godoc
// GET /api/v1/tests/:id/status
func (h *TestHandler) Status(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	state, err := h.sessionService.GetStatus(c.Request.Context(), p.ID, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, state)
}

// SaveProgress godoc
// POST /api/v1/tests/:id/save-progress
func (h *TestHandler) SaveProgress(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.SaveProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.SaveProgress(c.Request.Context(), p.ID, id, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": sess})
}

// Submit godoc
// POST /api/v1/tests/:id/submit
// Grades the submission and commits it atomically. Repeat submissions are
// rejected whether sequential or concurrent.
func (h *TestHandler) Submit(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req model.SubmitTestRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	submission, err := h.gradingService.Submit(c.Request.Context(), p, id, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Test submitted.", submission)
}

// Results godoc
// GET /api/v1/tests/:id/results
// Candidate results for a test, for its owner or an admin.
func (h *TestHandler) Results(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	results, err := h.resultService.ByTest(c.Request.Context(), p, id)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

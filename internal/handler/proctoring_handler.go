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

// ProctoringHandler handles integrity event logging and review endpoints.
type ProctoringHandler struct {
	proctoringService *service.ProctoringService
}

// NewProctoringHandler creates a new ProctoringHandler.
func NewProctoringHandler(proctoringService *service.ProctoringService) *ProctoringHandler {
	return &ProctoringHandler{proctoringService: proctoringService}
}

// LogEvent godoc
// POST /api/v1/proctoring/events
// The candidate identity comes from the JWT, never the payload.
func (h *ProctoringHandler) LogEvent(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req model.LogEventRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	counters, err := h.proctoringService.LogEvent(c.Request.Context(), p, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, counters)
}

// Settings godoc
// GET /api/v1/proctoring/settings/:testId
func (h *ProctoringHandler) Settings(c *gin.Context) {
	testID, ok := paramID(c, "testId")
	if !ok {
		return
	}

	settings, err := h.proctoringService.Settings(c.Request.Context(), testID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, settings)
}

// TestEvents godoc
// GET /api/v1/proctoring/test/:testId/events
func (h *ProctoringHandler) TestEvents(c *gin.Context) {
	p, _ := middleware.Principal(c)
	testID, ok := paramID(c, "testId")
	if !ok {
		return
	}

	events, err := h.proctoringService.ListTestEvents(c.Request.Context(), p, testID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"events": events})
}

// CandidateReport godoc
// GET /api/v1/proctoring/test/:testId/candidate/:candidateId
func (h *ProctoringHandler) CandidateReport(c *gin.Context) {
	p, _ := middleware.Principal(c)
	testID, ok := paramID(c, "testId")
	if !ok {
		return
	}
	candidateID, ok := paramID(c, "candidateId")
	if !ok {
		return
	}

	report, err := h.proctoringService.Report(c.Request.Context(), p, candidateID, testID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, report)
}

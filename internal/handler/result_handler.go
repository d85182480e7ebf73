package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jrmmllrs/test-app-backend/internal/middleware"
	"github.com/jrmmllrs/test-app-backend/internal/response"
	"github.com/jrmmllrs/test-app-backend/internal/service"
)

// ResultHandler handles result listing endpoints.
type ResultHandler struct {
	resultService *service.ResultService
}

// NewResultHandler creates a new ResultHandler.
func NewResultHandler(resultService *service.ResultService) *ResultHandler {
	return &ResultHandler{resultService: resultService}
}

// Mine godoc
// GET /api/v1/results/my-results
func (h *ResultHandler) Mine(c *gin.Context) {
	p, _ := middleware.Principal(c)

	results, err := h.resultService.Mine(c.Request.Context(), p)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

// All godoc
// GET /api/v1/results/all
// Admin only.
func (h *ResultHandler) All(c *gin.Context) {
	results, err := h.resultService.All(c.Request.Context())
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"results": results})
}

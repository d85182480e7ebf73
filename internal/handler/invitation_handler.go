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

// InvitationHandler handles invitation issuance and the candidate-facing
// token flow.
type InvitationHandler struct {
	invitationService *service.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(invitationService *service.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Send godoc
// POST /api/v1/invitations
// Issues invitations in a batch, one outcome per candidate.
func (h *InvitationHandler) Send(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req model.SendInvitationsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	outcomes, err := h.invitationService.Send(c.Request.Context(), p, &req)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invitations": outcomes})
}

// ListByTest godoc
// GET /api/v1/invitations/test/:testId
func (h *InvitationHandler) ListByTest(c *gin.Context) {
	p, _ := middleware.Principal(c)
	testID, ok := paramID(c, "testId")
	if !ok {
		return
	}

	invitations, err := h.invitationService.ListByTest(c.Request.Context(), p, testID)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invitations": invitations})
}

// Remind godoc
// POST /api/v1/invitations/:id/remind
func (h *InvitationHandler) Remind(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invitationService.Remind(c.Request.Context(), p, id); err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Reminder sent.", nil)
}

// Delete godoc
// DELETE /api/v1/invitations/:id
func (h *InvitationHandler) Delete(c *gin.Context) {
	p, _ := middleware.Principal(c)
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.invitationService.Delete(c.Request.Context(), p, id); err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Invitation deleted.", nil)
}

// Resolve godoc
// GET /api/v1/invitations/:token
// Public: resolves a token into the landing-page payload. Expiry is applied
// lazily on this read.
func (h *InvitationHandler) Resolve(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	view, err := h.invitationService.Resolve(c.Request.Context(), token)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"invitation": view})
}

// Accept godoc
// POST /api/v1/invitations/:token/accept
// Requires the authenticated candidate's email to match the invitation.
func (h *InvitationHandler) Accept(c *gin.Context) {
	p, _ := middleware.Principal(c)
	token := c.Param("token")
	if token == "" {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
		return
	}

	inv, err := h.invitationService.Accept(c.Request.Context(), p, token)
	if err != nil {
		failFromError(c, err)
		return
	}
	response.SuccessWithMessage(c, http.StatusOK, "Invitation accepted.", gin.H{"invitation": inv})
}

// VerifyAccess godoc
// POST /api/v1/invitations/verify-access
// Checks whether the principal may start a test via the supplied token.
func (h *InvitationHandler) VerifyAccess(c *gin.Context) {
	p, _ := middleware.Principal(c)

	var req model.VerifyAccessRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.invitationService.VerifyAccess(c.Request.Context(), p, &req); err != nil {
		failFromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"access": true})
}

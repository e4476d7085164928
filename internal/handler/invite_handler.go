package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type inviteService interface {
	Issue(ctx context.Context, claims *models.JWTClaims, req service.IssueInviteRequest) (*models.InviteCode, error)
	List(ctx context.Context, claims *models.JWTClaims, activeOnly bool) ([]models.InviteCode, error)
	Check(ctx context.Context, code string) (*models.InviteCheck, error)
	Redeem(ctx context.Context, claims *models.JWTClaims, code string) (*models.InviteRedemption, error)
	Deactivate(ctx context.Context, claims *models.JWTClaims, code string) error
}

// InviteHandler exposes the invite code lifecycle.
type InviteHandler struct {
	service inviteService
}

// NewInviteHandler constructs the handler.
func NewInviteHandler(service inviteService) *InviteHandler {
	return &InviteHandler{service: service}
}

// Issue godoc
// @Summary Issue an invite code
// @Tags Invite Codes
// @Accept json
// @Produce json
// @Param payload body service.IssueInviteRequest true "Invite payload"
// @Success 201 {object} response.Envelope
// @Router /invite-codes [post]
func (h *InviteHandler) Issue(c *gin.Context) {
	var req service.IssueInviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	invite, err := h.service.Issue(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, invite)
}

// List godoc
// @Summary List the school's invite codes
// @Tags Invite Codes
// @Produce json
// @Param active query bool false "Only active codes"
// @Success 200 {object} response.Envelope
// @Router /invite-codes [get]
func (h *InviteHandler) List(c *gin.Context) {
	activeOnly := false
	if raw := c.Query("active"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "active must be a boolean"))
			return
		}
		activeOnly = parsed
	}
	invites, err := h.service.List(c.Request.Context(), claimsFromContext(c), activeOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, invites, map[string]interface{}{"count": len(invites)})
}

// Check godoc
// @Summary Check an invite code
// @Tags Invite Codes
// @Produce json
// @Param code path string true "Invite code"
// @Success 200 {object} response.Envelope
// @Router /invite-codes/{code} [get]
func (h *InviteHandler) Check(c *gin.Context) {
	check, err := h.service.Check(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, check)
}

// Redeem godoc
// @Summary Redeem an invite code for the caller
// @Tags Invite Codes
// @Produce json
// @Param code path string true "Invite code"
// @Success 200 {object} response.Envelope
// @Router /invite-codes/{code}/redeem [post]
func (h *InviteHandler) Redeem(c *gin.Context) {
	redemption, err := h.service.Redeem(c.Request.Context(), claimsFromContext(c), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, redemption)
}

// Deactivate godoc
// @Summary Deactivate an invite code
// @Tags Invite Codes
// @Param code path string true "Invite code"
// @Success 204
// @Router /invite-codes/{code} [delete]
func (h *InviteHandler) Deactivate(c *gin.Context) {
	if err := h.service.Deactivate(c.Request.Context(), claimsFromContext(c), c.Param("code")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

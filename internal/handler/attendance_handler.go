package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	"github.com/noah-isme/school-portal-api/internal/service"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type attendanceWriteService interface {
	Record(ctx context.Context, claims *models.JWTClaims, req service.RecordAttendanceRequest) (*models.Attendance, error)
	SubmitExcuse(ctx context.Context, claims *models.JWTClaims, attendanceID string, req service.SubmitExcuseRequest) (*models.Attendance, error)
	ReviewExcuse(ctx context.Context, claims *models.JWTClaims, attendanceID string, req service.ReviewExcuseRequest) (*models.Attendance, error)
}

// AttendanceHandler serves attendance writes and the excuse workflow.
type AttendanceHandler struct {
	service attendanceWriteService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceWriteService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// Record godoc
// @Summary Record attendance for a lesson
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	record, err := h.service.Record(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// SubmitExcuse godoc
// @Summary Submit an excuse for a child's absence
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body service.SubmitExcuseRequest true "Excuse payload"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/excuse [post]
func (h *AttendanceHandler) SubmitExcuse(c *gin.Context) {
	var req service.SubmitExcuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	record, err := h.service.SubmitExcuse(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// ReviewExcuse godoc
// @Summary Approve or reject a pending excuse
// @Tags Attendance
// @Accept json
// @Produce json
// @Param id path string true "Attendance ID"
// @Param payload body service.ReviewExcuseRequest true "Decision"
// @Success 200 {object} response.Envelope
// @Router /attendance/{id}/excuse/review [post]
func (h *AttendanceHandler) ReviewExcuse(c *gin.Context) {
	var req service.ReviewExcuseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}
	record, err := h.service.ReviewExcuse(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

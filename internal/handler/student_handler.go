package handler

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-portal-api/internal/models"
	appErrors "github.com/noah-isme/school-portal-api/pkg/errors"
	"github.com/noah-isme/school-portal-api/pkg/export"
	"github.com/noah-isme/school-portal-api/pkg/response"
)

type childrenService interface {
	Children(ctx context.Context, parentID string) ([]models.Child, error)
	Refresh(parentID string)
}

type gradeReadService interface {
	BySubject(ctx context.Context, claims *models.JWTClaims, studentID string) (*models.StudentGrades, bool, error)
}

type attendanceReadService interface {
	Month(ctx context.Context, claims *models.JWTClaims, studentID, month string) (*models.AttendanceMonth, bool, error)
	Range(ctx context.Context, claims *models.JWTClaims, studentID, from, to string) (*models.AttendanceRange, error)
	ExportMonth(ctx context.Context, claims *models.JWTClaims, studentID, month string, format export.Format) (*export.File, error)
}

type scheduleReadService interface {
	Week(ctx context.Context, claims *models.JWTClaims, studentID, date string) (*models.WeekSchedule, bool, error)
}

type assignmentReadService interface {
	ForStudent(ctx context.Context, claims *models.JWTClaims, studentID string) ([]models.StudentAssignment, bool, error)
}

// StudentHandler serves student-scoped read models and the parent's child list.
type StudentHandler struct {
	children    childrenService
	grades      gradeReadService
	attendance  attendanceReadService
	schedule    scheduleReadService
	assignments assignmentReadService
}

// StudentHandlerParams groups constructor dependencies.
type StudentHandlerParams struct {
	Children    childrenService
	Grades      gradeReadService
	Attendance  attendanceReadService
	Schedule    scheduleReadService
	Assignments assignmentReadService
}

// NewStudentHandler constructs the handler.
func NewStudentHandler(params StudentHandlerParams) *StudentHandler {
	return &StudentHandler{
		children:    params.Children,
		grades:      params.Grades,
		attendance:  params.Attendance,
		schedule:    params.Schedule,
		assignments: params.Assignments,
	}
}

// Children godoc
// @Summary List the caller's children
// @Tags Children
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /children [get]
func (h *StudentHandler) Children(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrAuthenticationRequired)
		return
	}
	children, err := h.children.Children(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, children)
}

// RefreshChildren godoc
// @Summary Reload the caller's children
// @Tags Children
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /children/refresh [post]
func (h *StudentHandler) RefreshChildren(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrAuthenticationRequired)
		return
	}
	h.children.Refresh(claims.UserID)
	h.Children(c)
}

// Grades godoc
// @Summary Grades grouped by subject
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/grades [get]
func (h *StudentHandler) Grades(c *gin.Context) {
	result, hit, err := h.grades.BySubject(c.Request.Context(), claimsFromContext(c), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, result, hit)
}

// Attendance godoc
// @Summary Attendance calendar for a month
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Param month query string true "Month (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/attendance [get]
func (h *StudentHandler) Attendance(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month is required"))
		return
	}
	result, hit, err := h.attendance.Month(c.Request.Context(), claimsFromContext(c), c.Param("studentId"), month)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, result, hit)
}

// AttendanceRange godoc
// @Summary Attendance records for a date range
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/attendance/range [get]
func (h *StudentHandler) AttendanceRange(c *gin.Context) {
	from := strings.TrimSpace(c.Query("from"))
	to := strings.TrimSpace(c.Query("to"))
	if from == "" || to == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "from and to are required"))
		return
	}
	result, err := h.attendance.Range(c.Request.Context(), claimsFromContext(c), c.Param("studentId"), from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AttendanceExport godoc
// @Summary Download a month of attendance as CSV or PDF
// @Tags Students
// @Produce text/csv
// @Produce application/pdf
// @Param studentId path string true "Student ID"
// @Param month query string true "Month (YYYY-MM)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Router /students/{studentId}/attendance/export [get]
func (h *StudentHandler) AttendanceExport(c *gin.Context) {
	month := strings.TrimSpace(c.Query("month"))
	if month == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month is required"))
		return
	}
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}
	file, err := h.attendance.ExportMonth(c.Request.Context(), claimsFromContext(c), c.Param("studentId"), month, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// Schedule godoc
// @Summary Weekly timetable
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Param week query string false "Any date in the week (YYYY-MM-DD). Defaults to today"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/schedule [get]
func (h *StudentHandler) Schedule(c *gin.Context) {
	result, hit, err := h.schedule.Week(c.Request.Context(), claimsFromContext(c), c.Param("studentId"), strings.TrimSpace(c.Query("week")))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, result, hit)
}

// Assignments godoc
// @Summary Assignments with submission status
// @Tags Students
// @Produce json
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{studentId}/assignments [get]
func (h *StudentHandler) Assignments(c *gin.Context) {
	result, hit, err := h.assignments.ForStudent(c.Request.Context(), claimsFromContext(c), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, result, hit)
}

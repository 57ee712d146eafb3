package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhq/rostering-api/internal/dto"
	apierrors "github.com/rosterhq/rostering-api/internal/errors"
	"github.com/rosterhq/rostering-api/internal/middleware"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/services"
)

// TimekeepingHandler coordinates clock in/out, review and timesheet endpoints.
type TimekeepingHandler struct {
	timekeepingService *services.TimekeepingService
}

func NewTimekeepingHandler(timekeepingService *services.TimekeepingService) *TimekeepingHandler {
	return &TimekeepingHandler{
		timekeepingService: timekeepingService,
	}
}

// ClockIn opens a clock record against the caller's shift allocation.
func (h *TimekeepingHandler) ClockIn(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	type ClockInRequest struct {
		Location string `json:"location" binding:"max=255"`
	}

	var req ClockInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.timekeepingService.ClockIn(services.ClockInInput{
		ShiftID:      shiftID,
		TeamMemberID: member.ID,
		At:           time.Now(),
		Location:     req.Location,
	})
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimekeepingRecordDTO(*record))
}

// ClockOut closes the caller's open clock record and computes hours.
func (h *TimekeepingHandler) ClockOut(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	type ClockOutRequest struct {
		BreakMinutes int    `json:"break_minutes" binding:"min=0"`
		Location     string `json:"location" binding:"max=255"`
	}

	var req ClockOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.timekeepingService.ClockOut(services.ClockOutInput{
		RecordID:     recordID,
		TeamMemberID: member.ID,
		At:           time.Now(),
		BreakMinutes: req.BreakMinutes,
		Location:     req.Location,
	})
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimekeepingRecordDTO(*record))
}

// ReviewRecord approves or rejects a submitted clock record.
func (h *TimekeepingHandler) ReviewRecord(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	type ReviewRequest struct {
		Status string `json:"status" binding:"required,oneof=approved rejected"`
		Notes  string `json:"notes"`
	}

	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.timekeepingService.ReviewRecord(recordID, models.TimekeepingStatus(req.Status), req.Notes, &member)
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimekeepingRecordDTO(*record))
}

// RequestEdit flags a reviewed record as disputed so it can be corrected.
func (h *TimekeepingHandler) RequestEdit(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	recordID, ok := parseIDParam(c, "recordId")
	if !ok {
		return
	}

	type RequestEditRequest struct {
		Notes string `json:"notes" binding:"required"`
	}

	var req RequestEditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	record, err := h.timekeepingService.RequestEdit(recordID, req.Notes, &member)
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimekeepingRecordDTO(*record))
}

// GenerateTimesheet builds a draft timesheet from approved records in a period.
func (h *TimekeepingHandler) GenerateTimesheet(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	type GenerateRequest struct {
		PeriodStart string `json:"period_start" binding:"required"`
		PeriodEnd   string `json:"period_end" binding:"required"`
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	start, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		apierrors.BadRequest(c, "Invalid period_start, expected YYYY-MM-DD")
		return
	}
	end, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		apierrors.BadRequest(c, "Invalid period_end, expected YYYY-MM-DD")
		return
	}

	sheet, err := h.timekeepingService.GenerateTimesheet(memberID, start, end, &member)
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTimesheetDTO(*sheet))
}

// ApproveTimesheet finalizes a draft timesheet.
func (h *TimekeepingHandler) ApproveTimesheet(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	timesheetID, ok := parseIDParam(c, "timesheetId")
	if !ok {
		return
	}

	sheet, err := h.timekeepingService.ApproveTimesheet(timesheetID, &member)
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTimesheetDTO(*sheet))
}

// ListTimesheets returns a member's timesheets.
func (h *TimekeepingHandler) ListTimesheets(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	sheets, err := h.timekeepingService.ListTimesheets(memberID, org.ID)
	if err != nil {
		respondTimekeepingError(c, err)
		return
	}

	sheetDTOs := make([]dto.TimesheetDTO, len(sheets))
	for i, sheet := range sheets {
		sheetDTOs[i] = dto.ToTimesheetDTO(sheet)
	}

	c.JSON(http.StatusOK, gin.H{"timesheets": sheetDTOs})
}

func respondTimekeepingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrRecordNotFound),
		errors.Is(err, services.ErrTimesheetNotFound),
		errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrAlreadyClockedIn),
		errors.Is(err, services.ErrTimesheetNotDraft):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrNotAllocated),
		errors.Is(err, services.ErrShiftNotPublished),
		errors.Is(err, services.ErrRecordNotOpen),
		errors.Is(err, services.ErrClockOutBeforeIn),
		errors.Is(err, services.ErrRecordNotReviewable),
		errors.Is(err, services.ErrInvalidReviewStatus),
		errors.Is(err, services.ErrInvalidPeriod):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

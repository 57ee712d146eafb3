package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rosterhq/rostering-api/internal/dto"
	apierrors "github.com/rosterhq/rostering-api/internal/errors"
	"github.com/rosterhq/rostering-api/internal/middleware"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/repository"
	"github.com/rosterhq/rostering-api/internal/services"
	"github.com/rosterhq/rostering-api/internal/utils"
)

// ShiftHandler coordinates shift lifecycle, allocation and invitation endpoints.
type ShiftHandler struct {
	shiftService      *services.ShiftService
	allocationService *services.AllocationService
	invitationService *services.InvitationService
}

func NewShiftHandler(
	shiftService *services.ShiftService,
	allocationService *services.AllocationService,
	invitationService *services.InvitationService,
) *ShiftHandler {
	return &ShiftHandler{
		shiftService:      shiftService,
		allocationService: allocationService,
		invitationService: invitationService,
	}
}

// CreateShift creates a draft shift.
func (h *ShiftHandler) CreateShift(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)

	type CreateShiftRequest struct {
		VenueID         uint64    `json:"venue_id" binding:"required"`
		RoleID          uint64    `json:"role_id" binding:"required"`
		Date            string    `json:"date" binding:"required"`
		StartTime       time.Time `json:"start_time" binding:"required"`
		EndTime         time.Time `json:"end_time" binding:"required"`
		HeadcountNeeded int       `json:"headcount_needed" binding:"required,min=1"`
	}

	var req CreateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	shift, err := h.shiftService.CreateShift(services.CreateShiftInput{
		Actor:           &member,
		VenueID:         req.VenueID,
		RoleID:          req.RoleID,
		Date:            date,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		HeadcountNeeded: req.HeadcountNeeded,
	})
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToShiftDTO(*shift))
}

// GetShift returns a shift with allocations and invites.
func (h *ShiftHandler) GetShift(c *gin.Context) {
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	org, _ := middleware.GetOrganization(c)
	shift, err := h.shiftService.GetShift(shiftID, org.ID)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftDTO(*shift))
}

// ListShifts returns shifts filtered by venue, status and date range.
func (h *ShiftHandler) ListShifts(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	pagination := utils.GetPaginationParams(c)

	filter := repository.ShiftFilter{
		OrganizationID: org.ID,
		Page:           pagination.Page,
		PageSize:       pagination.Limit,
	}
	if venueID, ok := parseOptionalID(c, "venue_id"); ok {
		filter.VenueID = &venueID
	}
	if status := c.Query("status"); status != "" {
		shiftStatus := models.ShiftStatus(status)
		filter.Status = &shiftStatus
	}
	if from := c.Query("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			apierrors.BadRequest(c, "Invalid from date, expected YYYY-MM-DD")
			return
		}
		filter.DateFrom = &t
	}
	if to := c.Query("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			apierrors.BadRequest(c, "Invalid to date, expected YYYY-MM-DD")
			return
		}
		filter.DateTo = &t
	}

	shifts, total, err := h.shiftService.ListShifts(filter)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	shiftDTOs := make([]dto.ShiftDTO, len(shifts))
	for i, shift := range shifts {
		shiftDTOs[i] = dto.ToShiftDTO(shift)
	}

	c.JSON(http.StatusOK, gin.H{
		"shifts": shiftDTOs,
		"pagination": utils.PaginationResponse{
			Page:  pagination.Page,
			Limit: pagination.Limit,
			Total: total,
		},
	})
}

// UpdateShift edits a draft shift.
func (h *ShiftHandler) UpdateShift(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	type UpdateShiftRequest struct {
		RoleID          *uint64    `json:"role_id"`
		Date            *string    `json:"date"`
		StartTime       *time.Time `json:"start_time"`
		EndTime         *time.Time `json:"end_time"`
		HeadcountNeeded *int       `json:"headcount_needed"`
	}

	var req UpdateShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.UpdateShiftInput{
		RoleID:          req.RoleID,
		StartTime:       req.StartTime,
		EndTime:         req.EndTime,
		HeadcountNeeded: req.HeadcountNeeded,
	}
	if req.Date != nil {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			apierrors.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		input.Date = &date
	}

	shift, err := h.shiftService.UpdateShift(shiftID, input, &member)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftDTO(*shift))
}

// PublishShift makes a draft shift visible for allocation.
func (h *ShiftHandler) PublishShift(c *gin.Context) {
	h.transitionShift(c, h.shiftService.PublishShift)
}

// CancelShift cancels a draft or published shift.
func (h *ShiftHandler) CancelShift(c *gin.Context) {
	h.transitionShift(c, h.shiftService.CancelShift)
}

// CompleteShift closes out a published shift.
func (h *ShiftHandler) CompleteShift(c *gin.Context) {
	h.transitionShift(c, h.shiftService.CompleteShift)
}

func (h *ShiftHandler) transitionShift(c *gin.Context, fn func(uint64, *models.TeamMember) (*models.RotaShift, error)) {
	member, _ := middleware.GetTeamMember(c)
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	shift, err := fn(shiftID, &member)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftDTO(*shift))
}

// AllocateMember directly assigns a member to a shift.
func (h *ShiftHandler) AllocateMember(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	type AllocateRequest struct {
		TeamMemberID uint64 `json:"team_member_id" binding:"required"`
	}

	var req AllocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	allocation, err := h.allocationService.Allocate(services.AllocateInput{
		ShiftID:      shiftID,
		TeamMemberID: req.TeamMemberID,
		Actor:        &member,
	})
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToShiftAllocationDTO(*allocation))
}

// RemoveAllocation cancels an allocation, freeing its headcount slot.
func (h *ShiftHandler) RemoveAllocation(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	allocationID, ok := parseIDParam(c, "allocationId")
	if !ok {
		return
	}

	if err := h.allocationService.Remove(allocationID, &member); err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Allocation removed"})
}

// ReallocateMember swaps one member's allocation for another's.
func (h *ShiftHandler) ReallocateMember(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	type ReallocateRequest struct {
		FromTeamMemberID uint64 `json:"from_team_member_id" binding:"required"`
		ToTeamMemberID   uint64 `json:"to_team_member_id" binding:"required"`
	}

	var req ReallocateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	allocation, err := h.allocationService.Reallocate(shiftID, req.FromTeamMemberID, req.ToTeamMemberID, &member)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftAllocationDTO(*allocation))
}

// InviteToShift offers a shift to candidate members.
func (h *ShiftHandler) InviteToShift(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	shiftID, ok := parseIDParam(c, "shiftId")
	if !ok {
		return
	}

	type InviteRequest struct {
		TeamMemberIDs []uint64 `json:"team_member_ids" binding:"required,min=1"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invites, err := h.invitationService.InviteToShift(shiftID, req.TeamMemberIDs, &member)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	inviteDTOs := make([]dto.ShiftInviteDTO, len(invites))
	for i, invite := range invites {
		inviteDTOs[i] = dto.ToShiftInviteDTO(invite)
	}

	c.JSON(http.StatusCreated, gin.H{"invites": inviteDTOs})
}

// ListMyInvites returns the caller's shift invites.
func (h *ShiftHandler) ListMyInvites(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)

	var status *models.InviteStatus
	if raw := c.Query("status"); raw != "" {
		s := models.InviteStatus(raw)
		status = &s
	}

	invites, err := h.invitationService.ListInvitesForMember(member.ID, status)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	inviteDTOs := make([]dto.ShiftInviteDTO, len(invites))
	for i, invite := range invites {
		inviteDTOs[i] = dto.ToShiftInviteDTO(invite)
	}

	c.JSON(http.StatusOK, gin.H{"invites": inviteDTOs})
}

// AcceptInvite accepts a pending invite. First accept wins the slot.
func (h *ShiftHandler) AcceptInvite(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	inviteID, ok := parseIDParam(c, "inviteId")
	if !ok {
		return
	}

	allocation, err := h.invitationService.AcceptInvite(inviteID, member.ID)
	if err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToShiftAllocationDTO(*allocation))
}

// DeclineInvite declines a pending invite.
func (h *ShiftHandler) DeclineInvite(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)
	inviteID, ok := parseIDParam(c, "inviteId")
	if !ok {
		return
	}

	if err := h.invitationService.DeclineInvite(inviteID, member.ID); err != nil {
		respondShiftError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Invite declined"})
}

func parseOptionalID(c *gin.Context, name string) (uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

func respondShiftError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthorized),
		errors.Is(err, services.ErrNotInvitee):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrShiftNotFound),
		errors.Is(err, services.ErrMemberNotFound),
		errors.Is(err, services.ErrAllocationNotFound),
		errors.Is(err, services.ErrInviteNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrShiftFull),
		errors.Is(err, services.ErrAlreadyAllocated),
		errors.Is(err, services.ErrInviteNotPending),
		errors.Is(err, services.ErrShiftNoLongerAvailable),
		errors.Is(err, services.ErrReallocationIncomplete):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidShiftTimes),
		errors.Is(err, services.ErrInvalidHeadcount),
		errors.Is(err, services.ErrShiftNotDraft),
		errors.Is(err, services.ErrShiftNotCancellable),
		errors.Is(err, services.ErrShiftNotCompletable),
		errors.Is(err, services.ErrShiftNotOpen),
		errors.Is(err, services.ErrMemberNotActive),
		errors.Is(err, services.ErrNoCandidates),
		errors.Is(err, services.ErrRoleNotInOrg),
		errors.Is(err, services.ErrVenueNotInOrg):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

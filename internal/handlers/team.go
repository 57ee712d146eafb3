package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rosterhq/rostering-api/internal/dto"
	apierrors "github.com/rosterhq/rostering-api/internal/errors"
	"github.com/rosterhq/rostering-api/internal/hierarchy"
	"github.com/rosterhq/rostering-api/internal/middleware"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/services"
)

// TeamHandler coordinates team membership endpoints.
type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// InviteMember invites a new member below the caller's hierarchy level.
func (h *TeamHandler) InviteMember(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)

	type InviteMemberRequest struct {
		Name           string   `json:"name" binding:"required,max=255"`
		Email          string   `json:"email" binding:"required,email"`
		Level          string   `json:"level" binding:"required"`
		EmploymentType string   `json:"employment_type"`
		VenueIDs       []uint64 `json:"venue_ids"`
	}

	var req InviteMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	level, err := hierarchy.ParseLevel(req.Level)
	if err != nil {
		apierrors.BadRequest(c, "Invalid hierarchy level")
		return
	}

	invited, err := h.teamService.InviteMember(services.InviteMemberInput{
		Actor:          &member,
		Name:           req.Name,
		Email:          req.Email,
		Level:          level,
		EmploymentType: models.EmploymentType(req.EmploymentType),
		VenueIDs:       req.VenueIDs,
	})
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamMemberDTO(*invited))
}

// RedeemInvite binds the authenticated user to a pending membership.
func (h *TeamHandler) RedeemInvite(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type RedeemRequest struct {
		Token string `json:"token" binding:"required"`
	}

	var req RedeemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.teamService.RedeemInvite(req.Token, userID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTO(*member))
}

// ListMembers returns the organization's team members.
func (h *TeamHandler) ListMembers(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)

	members, err := h.teamService.ListMembers(org.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	memberDTOs := make([]dto.TeamMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToTeamMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{"members": memberDTOs})
}

// ListAssignableLevels returns the hierarchy levels the caller may assign to
// others, so clients can limit level pickers up front.
func (h *TeamHandler) ListAssignableLevels(c *gin.Context) {
	member, _ := middleware.GetTeamMember(c)

	levels, err := hierarchy.AllowedLevelsToAssign(member.Level)
	if err != nil {
		apierrors.InternalError(c, "Failed to resolve assignable levels")
		return
	}

	c.JSON(http.StatusOK, gin.H{"levels": levels})
}

// UpdateLevel changes a member's hierarchy level.
func (h *TeamHandler) UpdateLevel(c *gin.Context) {
	actor, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	type UpdateLevelRequest struct {
		Level string `json:"level" binding:"required"`
	}

	var req UpdateLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	level, err := hierarchy.ParseLevel(req.Level)
	if err != nil {
		apierrors.BadRequest(c, "Invalid hierarchy level")
		return
	}

	updated, err := h.teamService.UpdateHierarchyLevel(memberID, level, &actor)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamMemberDTO(*updated))
}

// AssignRole attaches a job role to a member.
func (h *TeamHandler) AssignRole(c *gin.Context) {
	actor, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	type AssignRoleRequest struct {
		RoleID uint64 `json:"role_id" binding:"required"`
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.teamService.AssignRole(memberID, req.RoleID, &actor); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role assigned"})
}

// UnassignRole detaches a job role from a member.
func (h *TeamHandler) UnassignRole(c *gin.Context) {
	actor, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}
	roleID, ok := parseIDParam(c, "roleId")
	if !ok {
		return
	}

	if err := h.teamService.UnassignRole(memberID, roleID, &actor); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Role unassigned"})
}

// SetVenueScope replaces a member's venue scope.
func (h *TeamHandler) SetVenueScope(c *gin.Context) {
	actor, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	type VenueScopeRequest struct {
		VenueIDs []uint64 `json:"venue_ids"`
	}

	var req VenueScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.teamService.SetVenueScope(memberID, req.VenueIDs, &actor); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Venue scope updated"})
}

// Deactivate moves a member to inactive.
func (h *TeamHandler) Deactivate(c *gin.Context) {
	actor, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.teamService.Deactivate(memberID, &actor); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member deactivated"})
}

// Reactivate moves an inactive member back to active.
func (h *TeamHandler) Reactivate(c *gin.Context) {
	actor, _ := middleware.GetTeamMember(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	if err := h.teamService.Reactivate(memberID, &actor); err != nil {
		respondTeamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Member reactivated"})
}

// ReportingLine returns a member's chain of managers.
func (h *TeamHandler) ReportingLine(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	memberID, ok := parseIDParam(c, "memberId")
	if !ok {
		return
	}

	line, err := h.teamService.ReportingLine(memberID, org.ID)
	if err != nil {
		respondTeamError(c, err)
		return
	}

	lineDTOs := make([]dto.TeamMemberDTO, len(line))
	for i, manager := range line {
		lineDTOs[i] = dto.ToTeamMemberDTO(manager)
	}

	c.JSON(http.StatusOK, gin.H{"reporting_line": lineDTOs})
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

func respondTeamError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInviteTokenInvalid),
		errors.Is(err, services.ErrMemberAlreadyBound):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrInvalidMemberName),
		errors.Is(err, services.ErrInvalidMemberEmail),
		errors.Is(err, services.ErrRoleNotInOrg),
		errors.Is(err, services.ErrVenueNotInOrg),
		errors.Is(err, services.ErrMemberNotActive),
		errors.Is(err, services.ErrMemberNotInactive),
		errors.Is(err, hierarchy.ErrInvalidLevel):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

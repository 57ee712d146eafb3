package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rosterhq/rostering-api/internal/database"
	"github.com/rosterhq/rostering-api/internal/dto"
	apierrors "github.com/rosterhq/rostering-api/internal/errors"
	"github.com/rosterhq/rostering-api/internal/middleware"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/services"
)

// OrganizationHandler coordinates organization setup endpoints.
type OrganizationHandler struct {
	orgService  *services.OrganizationService
	authService *services.AuthService
}

func NewOrganizationHandler(orgService *services.OrganizationService, authService *services.AuthService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService:  orgService,
		authService: authService,
	}
}

// CreateOrganization creates a new organization with the caller as employer.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name string `json:"name" binding:"required,max=255"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.GetUser(userID)
	if err != nil {
		respondAuthError(c, err)
		return
	}

	org, founder, err := h.orgService.CreateOrganization(req.Name, user)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"organization": dto.ToOrganizationDTO(*org),
		"member":       dto.ToTeamMemberDTO(*founder),
	})
}

// ListOrganizations returns the organizations the user belongs to with their level.
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var memberships []models.TeamMember
	if err := database.GetDB().
		Preload("Organization").
		Where("user_id = ? AND status = ?", userID, models.MemberStatusActive).
		Find(&memberships).Error; err != nil {
		apierrors.InternalError(c, "Failed to fetch organizations")
		return
	}

	type OrgWithLevel struct {
		dto.OrganizationDTO
		Level models.HierarchyLevel `json:"level"`
	}

	orgsWithLevel := make([]OrgWithLevel, len(memberships))
	for i, m := range memberships {
		orgsWithLevel[i] = OrgWithLevel{
			OrganizationDTO: dto.ToOrganizationDTO(m.Organization),
			Level:           m.Level,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgsWithLevel,
	})
}

// GetOrganization returns organization details.
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	member, _ := middleware.GetTeamMember(c)

	c.JSON(http.StatusOK, gin.H{
		"organization": dto.ToOrganizationDTO(org),
		"your_level":   member.Level,
	})
}

// CompleteOnboarding marks the organization's initial setup as done.
func (h *OrganizationHandler) CompleteOnboarding(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	member, _ := middleware.GetTeamMember(c)

	updated, err := h.orgService.CompleteOnboarding(org.ID, &member)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*updated))
}

// UpdateHoursThreshold sets the organization's daily regular-hours cap.
func (h *OrganizationHandler) UpdateHoursThreshold(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	member, _ := middleware.GetTeamMember(c)

	type ThresholdRequest struct {
		RegularHoursThreshold float64 `json:"regular_hours_threshold" binding:"required"`
	}

	var req ThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.orgService.UpdateRegularHoursThreshold(org.ID, req.RegularHoursThreshold, &member)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToOrganizationDTO(*updated))
}

// CreateVenue adds a venue to the organization.
func (h *OrganizationHandler) CreateVenue(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	member, _ := middleware.GetTeamMember(c)

	type CreateVenueRequest struct {
		Name    string `json:"name" binding:"required,max=255"`
		Address string `json:"address" binding:"max=500"`
	}

	var req CreateVenueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	venue, err := h.orgService.CreateVenue(org.ID, req.Name, req.Address, &member)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToVenueDTO(*venue))
}

// ListVenues returns the organization's venues.
func (h *OrganizationHandler) ListVenues(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)

	venues, err := h.orgService.ListVenues(org.ID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	venueDTOs := make([]dto.VenueDTO, len(venues))
	for i, venue := range venues {
		venueDTOs[i] = dto.ToVenueDTO(venue)
	}

	c.JSON(http.StatusOK, gin.H{"venues": venueDTOs})
}

// CreateRole adds a job role to the organization.
func (h *OrganizationHandler) CreateRole(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)
	member, _ := middleware.GetTeamMember(c)

	type CreateRoleRequest struct {
		Name   string `json:"name" binding:"required,max=255"`
		Colour string `json:"colour" binding:"max=20"`
	}

	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	role, err := h.orgService.CreateRole(org.ID, req.Name, req.Colour, &member)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToRoleDTO(*role))
}

// ListRoles returns the organization's job roles.
func (h *OrganizationHandler) ListRoles(c *gin.Context) {
	org, _ := middleware.GetOrganization(c)

	roles, err := h.orgService.ListRoles(org.ID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	roleDTOs := make([]dto.RoleDTO, len(roles))
	for i, role := range roles {
		roleDTOs[i] = dto.ToRoleDTO(role)
	}

	c.JSON(http.StatusOK, gin.H{"roles": roleDTOs})
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotAuthorized):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidVenueName),
		errors.Is(err, services.ErrInvalidRoleName),
		errors.Is(err, services.ErrInvalidHoursThreshold):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}

package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/constants"
	"github.com/rosterhq/rostering-api/internal/database"
	"github.com/rosterhq/rostering-api/internal/dto"
	"github.com/rosterhq/rostering-api/internal/middleware"
	"github.com/rosterhq/rostering-api/internal/models"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"github.com/rosterhq/rostering-api/internal/services"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type shiftTestEnv struct {
	db     *gorm.DB
	router *gin.Engine

	authService *services.AuthService
	orgService  *services.OrganizationService

	org   *models.Organization
	venue *models.Venue
	role  *models.Role
}

func setupShiftTestEnv(t *testing.T) *shiftTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Organization{},
		&models.Venue{},
		&models.Role{},
		&models.TeamMember{},
		&models.RoleAssignment{},
		&models.TeamMemberVenue{},
		&models.ManagementChainEdge{},
		&models.RotaShift{},
		&models.ShiftAllocation{},
		&models.ShiftInvite{},
		&models.AuditLogEntry{},
		&models.Notification{},
	)
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	memberRepo := repository.NewTeamMemberRepository(db)
	shiftRepo := repository.NewShiftRepository(db)

	recorder := audit.NewRecorder(db)
	dispatcher := notifications.NopDispatcher{}

	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, memberRepo, recorder)
	shiftService := services.NewShiftService(shiftRepo, orgRepo, recorder)
	allocationService := services.NewAllocationService(shiftRepo, memberRepo, recorder, dispatcher)
	invitationService := services.NewInvitationService(shiftRepo, memberRepo, allocationService, recorder, dispatcher, 48*time.Hour)

	authHandler := NewAuthHandler(authService)
	shiftHandler := NewShiftHandler(shiftService, allocationService, invitationService)

	r := gin.New()
	store := cookie.NewStore([]byte("secret"))
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	r.POST("/api/auth/login", authHandler.Login)
	scoped := r.Group("/api/organizations/:id")
	scoped.Use(middleware.RequireAuth(), middleware.RequireOrganizationAccess())
	{
		scoped.POST("/shifts", middleware.RequireManagerRank(), shiftHandler.CreateShift)
		scoped.GET("/shifts/:shiftId", shiftHandler.GetShift)
		scoped.POST("/shifts/:shiftId/publish", middleware.RequireManagerRank(), shiftHandler.PublishShift)
		scoped.POST("/shifts/:shiftId/allocations", middleware.RequireManagerRank(), shiftHandler.AllocateMember)
		scoped.POST("/shifts/:shiftId/invites", middleware.RequireManagerRank(), shiftHandler.InviteToShift)
		scoped.POST("/invites/:inviteId/accept", shiftHandler.AcceptInvite)
		scoped.POST("/invites/:inviteId/decline", shiftHandler.DeclineInvite)
	}

	env := &shiftTestEnv{
		db:          db,
		router:      r,
		authService: authService,
		orgService:  orgService,
	}

	// An employer-owned organization with one venue and one role.
	owner := env.signup(t, "owner@example.com", "Owner")
	org, _, err := orgService.CreateOrganization("The Crown", owner)
	require.NoError(t, err)
	env.org = org

	env.venue = &models.Venue{OrganizationID: org.ID, Name: "Main Bar"}
	require.NoError(t, db.Create(env.venue).Error)
	env.role = &models.Role{OrganizationID: org.ID, Name: "Bartender"}
	require.NoError(t, db.Create(env.role).Error)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return env
}

func (env *shiftTestEnv) signup(t *testing.T, email, name string) *models.User {
	t.Helper()
	user, err := env.authService.Signup(services.SignupInput{Email: email, Name: name, Password: "supersecret"})
	require.NoError(t, err)
	return user
}

// addWorker creates an active worker membership bound to a fresh user account.
func (env *shiftTestEnv) addWorker(t *testing.T, email, name string) *models.TeamMember {
	t.Helper()
	user := env.signup(t, email, name)
	member := &models.TeamMember{
		OrganizationID: env.org.ID,
		UserID:         &user.ID,
		Name:           name,
		Email:          email,
		Level:          models.LevelWorker,
		EmploymentType: models.EmploymentFullTime,
		Status:         models.MemberStatusActive,
	}
	require.NoError(t, env.db.Create(member).Error)
	return member
}

func (env *shiftTestEnv) login(t *testing.T, email string) []*http.Cookie {
	t.Helper()
	body, err := json.Marshal(map[string]string{"email": email, "password": "supersecret"})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	return w.Result().Cookies()
}

func (env *shiftTestEnv) do(t *testing.T, cookies []*http.Cookie, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestShiftHandler_CreateAndPublish(t *testing.T) {
	env := setupShiftTestEnv(t)
	owner := env.login(t, "owner@example.com")

	w := env.do(t, owner, http.MethodPost, fmt.Sprintf("/api/organizations/%d/shifts", env.org.ID), gin.H{
		"venue_id":         env.venue.ID,
		"role_id":          env.role.ID,
		"date":             "2026-04-01",
		"start_time":       "2026-04-01T17:00:00Z",
		"end_time":         "2026-04-01T23:00:00Z",
		"headcount_needed": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var shift dto.ShiftDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shift))
	require.Equal(t, models.ShiftStatusDraft, shift.Status)

	w = env.do(t, owner, http.MethodPost, fmt.Sprintf("/api/organizations/%d/shifts/%d/publish", env.org.ID, shift.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shift))
	require.Equal(t, models.ShiftStatusPublished, shift.Status)
}

func TestShiftHandler_WorkerCannotCreateShift(t *testing.T) {
	env := setupShiftTestEnv(t)
	env.addWorker(t, "worker@example.com", "Worker")
	worker := env.login(t, "worker@example.com")

	w := env.do(t, worker, http.MethodPost, fmt.Sprintf("/api/organizations/%d/shifts", env.org.ID), gin.H{
		"venue_id":         env.venue.ID,
		"role_id":          env.role.ID,
		"date":             "2026-04-01",
		"start_time":       "2026-04-01T17:00:00Z",
		"end_time":         "2026-04-01T23:00:00Z",
		"headcount_needed": 1,
	})
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestShiftHandler_InviteAcceptFlow(t *testing.T) {
	env := setupShiftTestEnv(t)
	first := env.addWorker(t, "first@example.com", "First")
	second := env.addWorker(t, "second@example.com", "Second")
	owner := env.login(t, "owner@example.com")

	// Publish a single-slot shift.
	w := env.do(t, owner, http.MethodPost, fmt.Sprintf("/api/organizations/%d/shifts", env.org.ID), gin.H{
		"venue_id":         env.venue.ID,
		"role_id":          env.role.ID,
		"date":             "2026-04-01",
		"start_time":       "2026-04-01T17:00:00Z",
		"end_time":         "2026-04-01T23:00:00Z",
		"headcount_needed": 1,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var shift dto.ShiftDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &shift))

	w = env.do(t, owner, http.MethodPost, fmt.Sprintf("/api/organizations/%d/shifts/%d/publish", env.org.ID, shift.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Invite both workers.
	w = env.do(t, owner, http.MethodPost, fmt.Sprintf("/api/organizations/%d/shifts/%d/invites", env.org.ID, shift.ID), gin.H{
		"team_member_ids": []uint64{first.ID, second.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var inviteResp struct {
		Invites []dto.ShiftInviteDTO `json:"invites"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &inviteResp))
	require.Len(t, inviteResp.Invites, 2)

	// First worker accepts and wins the slot.
	firstCookies := env.login(t, "first@example.com")
	w = env.do(t, firstCookies, http.MethodPost,
		fmt.Sprintf("/api/organizations/%d/invites/%d/accept", env.org.ID, inviteResp.Invites[0].ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var allocation dto.ShiftAllocationDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &allocation))
	require.Equal(t, first.ID, allocation.TeamMemberID)

	// The second invite was retired when the shift filled.
	secondCookies := env.login(t, "second@example.com")
	w = env.do(t, secondCookies, http.MethodPost,
		fmt.Sprintf("/api/organizations/%d/invites/%d/accept", env.org.ID, inviteResp.Invites[1].ID), nil)
	require.Equal(t, http.StatusConflict, w.Code)
}

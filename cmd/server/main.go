package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/rosterhq/rostering-api/internal/audit"
	"github.com/rosterhq/rostering-api/internal/config"
	"github.com/rosterhq/rostering-api/internal/constants"
	"github.com/rosterhq/rostering-api/internal/database"
	"github.com/rosterhq/rostering-api/internal/handlers"
	"github.com/rosterhq/rostering-api/internal/middleware"
	"github.com/rosterhq/rostering-api/internal/notifications"
	"github.com/rosterhq/rostering-api/internal/repository"
	"github.com/rosterhq/rostering-api/internal/scheduler"
	"github.com/rosterhq/rostering-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	db := database.GetDB()
	if err := database.AddIndexes(db); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	memberRepo := repository.NewTeamMemberRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	timeRepo := repository.NewTimekeepingRepository(db)

	// Audit trail
	recorder := audit.NewRecorder(db)

	// Notification dispatcher; mail delivery is optional and degrades to logging
	senders := []notifications.Sender{notifications.LogSender{}}
	if cfg.SMTPHost != "" {
		mailClient, err := notifications.NewMailClient(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
		if err != nil {
			log.Fatalf("Failed to create mail client: %v", err)
		}
		senders = append(senders, notifications.NewMailSender(mailClient, cfg.MailFrom, memberRepo))
	}
	dispatcher := notifications.NewAsyncDispatcher(db, senders...)
	defer dispatcher.Close()

	// Services
	authService := services.NewAuthService(userRepo)
	orgService := services.NewOrganizationService(orgRepo, memberRepo, recorder)
	teamService := services.NewTeamService(memberRepo, orgRepo, recorder, dispatcher)
	shiftService := services.NewShiftService(shiftRepo, orgRepo, recorder)
	allocationService := services.NewAllocationService(shiftRepo, memberRepo, recorder, dispatcher)
	invitationService := services.NewInvitationService(shiftRepo, memberRepo, allocationService, recorder, dispatcher, cfg.InviteTTL)
	timekeepingService := services.NewTimekeepingService(timeRepo, shiftRepo, memberRepo, orgRepo, recorder, dispatcher)

	// Background invite expiry sweep
	sched, err := scheduler.New(invitationService)
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}
	if err := sched.Start(cfg.InviteSweepInterval); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer func() {
		if err := sched.Shutdown(); err != nil {
			log.Printf("Scheduler shutdown error: %v", err)
		}
	}()

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	orgHandler := handlers.NewOrganizationHandler(orgService, authService)
	teamHandler := handlers.NewTeamHandler(teamService)
	shiftHandler := handlers.NewShiftHandler(shiftService, allocationService, invitationService)
	timekeepingHandler := handlers.NewTimekeepingHandler(timekeepingService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Rostering API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Invite redemption happens before the user holds any membership
		api.POST("/invites/redeem", middleware.RequireAuth(), teamHandler.RedeemInvite)

		// Organization routes (protected)
		orgs := api.Group("/organizations")
		orgs.Use(middleware.RequireAuth())
		{
			orgs.POST("", orgHandler.CreateOrganization)
			orgs.GET("", orgHandler.ListOrganizations)

			scoped := orgs.Group("/:id")
			scoped.Use(middleware.RequireOrganizationAccess())
			{
				scoped.GET("", orgHandler.GetOrganization)
				scoped.POST("/onboarding/complete", middleware.RequireManagerRank(), orgHandler.CompleteOnboarding)
				scoped.PUT("/hours-threshold", middleware.RequireEmployer(), orgHandler.UpdateHoursThreshold)

				scoped.POST("/venues", middleware.RequireManagerRank(), orgHandler.CreateVenue)
				scoped.GET("/venues", orgHandler.ListVenues)
				scoped.POST("/roles", middleware.RequireManagerRank(), orgHandler.CreateRole)
				scoped.GET("/roles", orgHandler.ListRoles)

				// Team management
				scoped.GET("/members", teamHandler.ListMembers)
				scoped.GET("/members/assignable-levels", teamHandler.ListAssignableLevels)
				scoped.POST("/members", middleware.RequireManagerRank(), teamHandler.InviteMember)
				scoped.PATCH("/members/:memberId/level", middleware.RequireManagerRank(), teamHandler.UpdateLevel)
				scoped.POST("/members/:memberId/roles", middleware.RequireManagerRank(), teamHandler.AssignRole)
				scoped.DELETE("/members/:memberId/roles/:roleId", middleware.RequireManagerRank(), teamHandler.UnassignRole)
				scoped.PUT("/members/:memberId/venues", middleware.RequireManagerRank(), teamHandler.SetVenueScope)
				scoped.POST("/members/:memberId/deactivate", middleware.RequireManagerRank(), teamHandler.Deactivate)
				scoped.POST("/members/:memberId/reactivate", middleware.RequireManagerRank(), teamHandler.Reactivate)
				scoped.GET("/members/:memberId/reporting-line", teamHandler.ReportingLine)

				// Shift lifecycle
				scoped.GET("/shifts", shiftHandler.ListShifts)
				scoped.POST("/shifts", middleware.RequireManagerRank(), shiftHandler.CreateShift)
				scoped.GET("/shifts/:shiftId", shiftHandler.GetShift)
				scoped.PATCH("/shifts/:shiftId", middleware.RequireManagerRank(), shiftHandler.UpdateShift)
				scoped.POST("/shifts/:shiftId/publish", middleware.RequireManagerRank(), shiftHandler.PublishShift)
				scoped.POST("/shifts/:shiftId/cancel", middleware.RequireManagerRank(), shiftHandler.CancelShift)
				scoped.POST("/shifts/:shiftId/complete", middleware.RequireManagerRank(), shiftHandler.CompleteShift)

				// Allocation
				scoped.POST("/shifts/:shiftId/allocations", middleware.RequireManagerRank(), shiftHandler.AllocateMember)
				scoped.POST("/shifts/:shiftId/reallocate", middleware.RequireManagerRank(), shiftHandler.ReallocateMember)
				scoped.DELETE("/allocations/:allocationId", middleware.RequireManagerRank(), shiftHandler.RemoveAllocation)

				// Invitations
				scoped.POST("/shifts/:shiftId/invites", middleware.RequireManagerRank(), shiftHandler.InviteToShift)
				scoped.GET("/invites", shiftHandler.ListMyInvites)
				scoped.POST("/invites/:inviteId/accept", shiftHandler.AcceptInvite)
				scoped.POST("/invites/:inviteId/decline", shiftHandler.DeclineInvite)

				// Timekeeping
				scoped.POST("/shifts/:shiftId/clock-in", timekeepingHandler.ClockIn)
				scoped.POST("/records/:recordId/clock-out", timekeepingHandler.ClockOut)
				scoped.POST("/records/:recordId/review", middleware.RequireManagerRank(), timekeepingHandler.ReviewRecord)
				scoped.POST("/records/:recordId/request-edit", timekeepingHandler.RequestEdit)

				// Timesheets
				scoped.POST("/members/:memberId/timesheets", middleware.RequireManagerRank(), timekeepingHandler.GenerateTimesheet)
				scoped.GET("/members/:memberId/timesheets", timekeepingHandler.ListTimesheets)
				scoped.POST("/timesheets/:timesheetId/approve", middleware.RequireManagerRank(), timekeepingHandler.ApproveTimesheet)
			}
		}
	}

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

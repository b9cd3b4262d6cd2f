// Package server assembles the HTTP API from its repositories, services and handlers.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/auth"
	"github.com/yukikurage/group-study-api/internal/authz"
	"github.com/yukikurage/group-study-api/internal/config"
	"github.com/yukikurage/group-study-api/internal/constants"
	"github.com/yukikurage/group-study-api/internal/handlers"
	"github.com/yukikurage/group-study-api/internal/middleware"
	"github.com/yukikurage/group-study-api/internal/repository"
	"github.com/yukikurage/group-study-api/internal/services"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Deps are the collaborators the router is built from.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Verifier auth.IdentityVerifier
	Logger   *slog.Logger

	// PasswordCost overrides the bcrypt cost. Zero means bcrypt.DefaultCost.
	PasswordCost int
}

// NewRouter wires every route of the API.
func NewRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	handlers.RegisterValidators()

	// Repositories
	userRepo := repository.NewUserRepository(deps.DB)
	classRepo := repository.NewClassRepository(deps.DB)
	membershipRepo := repository.NewMembershipRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	submissionRepo := repository.NewSubmissionRepository(deps.DB)
	feedbackRepo := repository.NewFeedbackRepository(deps.DB)
	invitationRepo := repository.NewInvitationRepository(deps.DB)

	// Services
	authorizer := authz.NewAuthorizer(membershipRepo)
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	cost := deps.PasswordCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	authService := services.NewAuthService(userRepo, tokens, auth.NewPasswordService(cost), deps.Verifier, cfg.RotateRefreshTokens, deps.Logger)
	userService := services.NewUserService(userRepo)
	classService := services.NewClassService(classRepo, membershipRepo, authorizer)
	taskService := services.NewTaskService(taskRepo, authorizer, deps.Logger)
	submissionService := services.NewSubmissionService(submissionRepo, taskRepo, authorizer)
	feedbackService := services.NewFeedbackService(feedbackRepo, submissionRepo, taskRepo, authorizer)
	invitationService := services.NewInvitationService(invitationRepo, userRepo, membershipRepo, authorizer, cfg.InvitationTTL)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, userService, handlers.CookieSettings{
		Path:   cfg.RefreshCookiePath,
		Secure: cfg.CookieSecure,
	})
	userHandler := handlers.NewUserHandler(userService)
	classHandler := handlers.NewClassHandler(classService)
	taskHandler := handlers.NewTaskHandler(taskService)
	submissionHandler := handlers.NewSubmissionHandler(submissionService)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackService)
	invitationHandler := handlers.NewInvitationHandler(invitationService)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(deps.Logger))

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := deps.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Group Study API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokens)
	optionalAuth := middleware.OptionalAuth(tokens)
	loadClass := middleware.LoadClass(classService)
	loadTask := middleware.LoadTask(taskService)

	api := r.Group("/api")
	{
		// Session routes keep the refresh token in a signed cookie
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		session := api.Group("")
		session.Use(sessions.Sessions(constants.RefreshCookieName, store))
		{
			session.POST("/login", authHandler.Login)
			session.POST("/logout", authHandler.Logout)
			session.POST("/token", authHandler.PasswordLogin)
			session.POST("/token/refresh", authHandler.Refresh)
		}
		api.POST("/token/verify", authHandler.Verify)
		api.GET("/me", requireAuth, authHandler.GetCurrentUser)

		users := api.Group("/users")
		{
			users.POST("", authHandler.Signup)
			users.GET("", requireAuth, userHandler.ListUsers)
			users.GET("/email/:email", requireAuth, userHandler.GetUser)
			users.PATCH("/email/:email", requireAuth, userHandler.UpdateUser)
			users.DELETE("/email/:email", requireAuth, userHandler.DeleteUser)
			users.GET("/:id", requireAuth, userHandler.GetUser)
			users.PATCH("/:id", requireAuth, userHandler.UpdateUser)
			users.DELETE("/:id", requireAuth, userHandler.DeleteUser)
		}

		classes := api.Group("/class")
		{
			classes.GET("", optionalAuth, classHandler.ListClasses)
			classes.POST("", requireAuth, classHandler.CreateClass)
			classes.GET("/mine", requireAuth, classHandler.ListMyClasses)
			classes.POST("/join", requireAuth, classHandler.JoinByCode)
			classes.GET("/:code", optionalAuth, loadClass, classHandler.GetClass)

			class := classes.Group("/:code", requireAuth, loadClass)
			{
				class.PATCH("", classHandler.UpdateClass)
				class.DELETE("", classHandler.DeleteClass)
				class.POST("/join", classHandler.JoinClass)
				class.POST("/leave", classHandler.LeaveClass)
				class.POST("/change-role", classHandler.ChangeRole)
				class.POST("/regenerate-code", classHandler.RegenerateCode)
				class.DELETE("/members/:user_id", classHandler.RemoveMember)

				class.GET("/tasks", taskHandler.ListTasks)
				class.POST("/tasks", taskHandler.CreateTask)
				class.GET("/tasks/:task_id", loadTask, taskHandler.GetTask)
				class.PATCH("/tasks/:task_id", loadTask, taskHandler.UpdateTask)
				class.DELETE("/tasks/:task_id", loadTask, taskHandler.DeleteTask)
				class.GET("/tasks/:task_id/submissions", loadTask, submissionHandler.ListSubmissions)
				class.POST("/tasks/:task_id/submissions", loadTask, submissionHandler.CreateSubmission)

				class.GET("/invitations", invitationHandler.ListClassInvitations)
				class.POST("/invitations", invitationHandler.CreateInvitation)
				class.DELETE("/invitations/:invitation_id", invitationHandler.RevokeInvitation)
			}
		}

		invitations := api.Group("/invitations", requireAuth)
		{
			invitations.GET("", invitationHandler.ListMyInvitations)
			invitations.POST("/:token/accept", invitationHandler.AcceptInvitation)
			invitations.POST("/:token/decline", invitationHandler.DeclineInvitation)
		}

		submissions := api.Group("/submissions", requireAuth)
		{
			submissions.GET("/:id", submissionHandler.GetSubmission)
			submissions.PATCH("/:id", submissionHandler.UpdateSubmission)
			submissions.DELETE("/:id", submissionHandler.DeleteSubmission)
			submissions.POST("/:id/upvote", submissionHandler.Upvote)
			submissions.DELETE("/:id/upvote", submissionHandler.RemoveUpvote)
			submissions.GET("/:id/feedback", feedbackHandler.ListFeedback)
			submissions.POST("/:id/feedback", feedbackHandler.CreateFeedback)
		}

		feedback := api.Group("/feedback", requireAuth)
		{
			feedback.PATCH("/:id", feedbackHandler.UpdateFeedback)
			feedback.DELETE("/:id", feedbackHandler.DeleteFeedback)
		}
	}

	return r
}

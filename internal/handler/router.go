package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gatherly/sessionhub/internal/config"
	"gatherly/sessionhub/internal/handler/middleware"
	jwtpkg "gatherly/sessionhub/pkg/jwt"
)

func SetupRouter(
	cfg *config.Config,
	logger *zap.Logger,
	jwtManager *jwtpkg.Manager,
	sessionHandler *SessionHandler,
	membershipHandler *MembershipHandler,
	inviteHandler *InviteHandler,
	attendanceHandler *AttendanceHandler,
	reviewHandler *ReviewHandler,
	adminHandler *AdminHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS))

	// Health check
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes: invite resolution and guest joins need no account.
	public := r.Group("/api/v1")
	{
		public.GET("/invites/:token", inviteHandler.Resolve)
		public.POST("/sessions/:id/join/guest", membershipHandler.GuestJoin)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.JWTAuth(jwtManager))
	{
		protected.POST("/sessions", sessionHandler.Create)
		protected.GET("/sessions", sessionHandler.List)
		protected.GET("/sessions/:id", sessionHandler.Get)
		protected.PATCH("/sessions/:id", sessionHandler.Update)
		protected.POST("/sessions/:id/cancel", sessionHandler.Cancel)

		protected.POST("/sessions/:id/join", membershipHandler.Join)
		protected.POST("/sessions/:id/leave", membershipHandler.Leave)
		protected.GET("/sessions/:id/members", membershipHandler.ListMembers)
		protected.POST("/sessions/:id/members/:entry_id/approve", membershipHandler.Approve)
		protected.POST("/sessions/:id/members/:entry_id/reject", membershipHandler.Reject)
		protected.DELETE("/sessions/:id/members/:entry_id", membershipHandler.Kick)

		protected.POST("/sessions/:id/invites", inviteHandler.Create)

		protected.POST("/sessions/:id/attendance", attendanceHandler.Mark)
		protected.GET("/sessions/:id/eligibility", attendanceHandler.Eligibility)

		protected.POST("/sessions/:id/reviews", reviewHandler.Create)
		protected.GET("/users/:id/reviews", reviewHandler.ListByHost)
	}

	// Admin routes (JWT + admin check)
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.JWTAuth(jwtManager))
	admin.Use(middleware.AdminAuth(cfg.Admin.UserIDs))
	{
		admin.POST("/sessions/:id/attendance", attendanceHandler.AdminMark)
		admin.DELETE("/sessions/:id", adminHandler.RemoveSession)
	}

	return r
}

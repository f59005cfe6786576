package routes

import (
	"github.com/fcadmin/matchvote-backend/internal/config"
	"github.com/fcadmin/matchvote-backend/internal/handlers"
	"github.com/fcadmin/matchvote-backend/internal/middleware"
	"github.com/fcadmin/matchvote-backend/pkg/jwt"
	"github.com/gin-gonic/gin"
)

// HandlerDependencies bundles the handlers wired in main
type HandlerDependencies struct {
	AuthHandler     *handlers.AuthHandler
	PollHandler     *handlers.PollHandler
	VoteHandler     *handlers.VoteHandler
	TemplateHandler *handlers.TemplateHandler
	MatchHandler    *handlers.MatchHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, tokens *jwt.Manager, deps HandlerDependencies) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.ResponseTimeMiddleware())

	// Public routes: voting and poll reads are open to anonymous fans.
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{"status": "ok"})
		})

		public.POST("/auth/login", deps.AuthHandler.Login)

		polls := public.Group("/polls")
		{
			polls.GET("/active", deps.PollHandler.GetActivePolls)
			polls.GET("/archived", deps.PollHandler.GetArchivedPolls)
			polls.GET("/:id", deps.PollHandler.GetPollByID)
			polls.GET("/:id/tally", deps.VoteHandler.GetTally)
			polls.POST("/:id/vote", deps.VoteHandler.SubmitVote)
		}
	}

	// Protected routes: poll lifecycle commands, templates and the match feed.
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(tokens))
	{
		protected.POST("/auth/register", deps.AuthHandler.Register)

		polls := protected.Group("/polls")
		{
			polls.GET("", deps.PollHandler.GetPolls)
			polls.GET("/status/:status", deps.PollHandler.GetPollsByStatus)
			polls.GET("/match/:matchId", deps.PollHandler.GetPollsByMatch)
			polls.POST("", deps.PollHandler.CreatePoll)
			polls.POST("/:id/policy", deps.PollHandler.AttachPolicy)
			polls.POST("/:id/activate", deps.PollHandler.ActivatePoll)
			polls.POST("/:id/close", deps.PollHandler.ClosePoll)
			polls.DELETE("/:id", deps.PollHandler.CancelPoll)
		}

		matches := protected.Group("/matches")
		{
			matches.POST("/:matchId/status", deps.MatchHandler.UpdateMatchStatus)
			matches.GET("/:matchId/events", deps.MatchHandler.GetMatchEvents)
			matches.GET("/events", deps.MatchHandler.GetRecentEvents)
		}

		templates := protected.Group("/templates")
		{
			templates.GET("", deps.TemplateHandler.GetTemplates)
			templates.GET("/:id", deps.TemplateHandler.GetTemplateByID)
			templates.POST("", deps.TemplateHandler.CreateTemplate)
			templates.PUT("/:id", deps.TemplateHandler.UpdateTemplate)
			templates.DELETE("/:id", deps.TemplateHandler.DeleteTemplate)
		}
	}

	return router
}

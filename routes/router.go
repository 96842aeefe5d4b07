package routes

import (
	"log"
	"net/http"
	"os"
	"time"

	"suggestion-board-backend/auth"
	"suggestion-board-backend/handlers"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server wraps the HTTP server so main can shut it down gracefully
type Server struct {
	*http.Server
}

// SetupRouter configures the Gin router over the given handler set
func SetupRouter(h *handlers.Handlers) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // restrict to the frontend origin in production
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.Use(handlers.IPRateLimitMiddleware())

		api.GET("/health", h.HealthCheck)
		api.GET("/status", h.SystemStatus)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", auth.RequireAuth(), h.Me)
		}

		boards := api.Group("/boards")
		{
			boards.GET("", auth.OptionalAuth(), h.ListBoards)
			boards.GET("/:id", auth.OptionalAuth(), h.GetBoardView)
			boards.POST("/:id/suggestions", auth.RequireAuth(), h.SubmitSuggestion)
			boards.GET("/:id/votes", auth.RequireAuth(), h.GetMyBoardVotes)

			// Board administration
			boards.POST("", auth.RequireAdmin(), h.CreateBoard)
			boards.GET("/:id/config", auth.RequireAdmin(), h.GetBoard)
			boards.PATCH("/:id", auth.RequireAdmin(), h.UpdateBoard)
			boards.POST("/:id/toggle-voting", auth.RequireAdmin(), h.ToggleVoting)
			boards.POST("/:id/toggle-suggestions", auth.RequireAdmin(), h.ToggleSuggestions)
			boards.POST("/:id/toggle-status", auth.RequireAdmin(), h.ToggleBoardStatus)
			boards.DELETE("/:id", auth.RequireAdmin(), h.DeleteBoard)
		}

		suggestions := api.Group("/suggestions")
		{
			suggestions.GET("/pending", auth.RequireAdmin(), h.GetPendingSuggestions)
			suggestions.POST("/:id/approve", auth.RequireAdmin(), h.ApproveSuggestion)
			suggestions.POST("/:id/reject", auth.RequireAdmin(), h.RejectSuggestion)
			suggestions.DELETE("/:id", auth.RequireAdmin(), h.DeleteSuggestion)
			suggestions.GET("/:id/votes", auth.RequireAdmin(), h.GetSuggestionVotes)

			votes := suggestions.Group("/:id/votes", auth.RequireAuth(), handlers.VoteRateLimitMiddleware())
			{
				votes.POST("", h.CastVote)
				votes.DELETE("", h.RetractVote)
			}
		}

		admin := api.Group("/admin")
		{
			admin.POST("/events/retry-dead-letters", auth.RequireAdmin(), h.RetryDeadLetters)
		}
	}

	return router
}

// StartServer starts the HTTP server on SERVER_PORT (default 8090)
func StartServer(router *gin.Engine) *Server {
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8090"
	}

	addr := ":" + port

	srv := &Server{
		&http.Server{
			Addr:    addr,
			Handler: router,
		},
	}

	go func() {
		log.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	return srv
}

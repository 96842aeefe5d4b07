package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"suggestion-board-backend/auth"
	"suggestion-board-backend/database"
	"suggestion-board-backend/models"
	"suggestion-board-backend/repository"
	"suggestion-board-backend/service"

	"github.com/stretchr/testify/require"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var handlerTestDBSeq atomic.Int64

// SetupTestEnvironment builds the router and an in-memory SQLite database
// for one test. Each test gets its own named database so parallel tests
// never share state.
func SetupTestEnvironment(t *testing.T) (*gin.Engine, *gorm.DB) {
	testing.Init()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared", handlerTestDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))

	// SystemStatus reads the global connection.
	database.DB = db

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	boardRepo := repository.NewBoardRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)
	voteRepo := repository.NewVoteRepository(db)
	userRepo := repository.NewUserRepository(db)

	boards := service.NewBoardService(boardRepo, nil)
	suggestions := service.NewSuggestionService(suggestionRepo, boardRepo, nil)
	votes := service.NewVoteService(voteRepo, suggestionRepo, boardRepo, nil, nil)
	projector := service.NewBoardViewProjector(boardRepo, suggestionRepo, voteRepo)

	h := NewHandlers(boards, suggestions, votes, userRepo, projector, nil, nil)

	router := gin.New()
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	router.Use(cors.New(config))

	// Same layout as routes.SetupRouter; kept inline to avoid an import
	// cycle between the packages.
	api := router.Group("/api")
	{
		api.GET("/health", h.HealthCheck)

		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.GET("/me", auth.RequireAuth(), h.Me)
		}

		boardsGroup := api.Group("/boards")
		{
			boardsGroup.GET("", auth.OptionalAuth(), h.ListBoards)
			boardsGroup.GET("/:id", auth.OptionalAuth(), h.GetBoardView)
			boardsGroup.POST("/:id/suggestions", auth.RequireAuth(), h.SubmitSuggestion)
			boardsGroup.GET("/:id/votes", auth.RequireAuth(), h.GetMyBoardVotes)

			boardsGroup.POST("", auth.RequireAdmin(), h.CreateBoard)
			boardsGroup.GET("/:id/config", auth.RequireAdmin(), h.GetBoard)
			boardsGroup.PATCH("/:id", auth.RequireAdmin(), h.UpdateBoard)
			boardsGroup.POST("/:id/toggle-voting", auth.RequireAdmin(), h.ToggleVoting)
			boardsGroup.POST("/:id/toggle-suggestions", auth.RequireAdmin(), h.ToggleSuggestions)
			boardsGroup.POST("/:id/toggle-status", auth.RequireAdmin(), h.ToggleBoardStatus)
			boardsGroup.DELETE("/:id", auth.RequireAdmin(), h.DeleteBoard)
		}

		suggestionsGroup := api.Group("/suggestions")
		{
			suggestionsGroup.GET("/pending", auth.RequireAdmin(), h.GetPendingSuggestions)
			suggestionsGroup.POST("/:id/approve", auth.RequireAdmin(), h.ApproveSuggestion)
			suggestionsGroup.POST("/:id/reject", auth.RequireAdmin(), h.RejectSuggestion)
			suggestionsGroup.DELETE("/:id", auth.RequireAdmin(), h.DeleteSuggestion)
			suggestionsGroup.GET("/:id/votes", auth.RequireAdmin(), h.GetSuggestionVotes)

			votesGroup := suggestionsGroup.Group("/:id/votes", auth.RequireAuth())
			{
				votesGroup.POST("", h.CastVote)
				votesGroup.DELETE("", h.RetractVote)
			}
		}
	}

	return router, db
}

// createTestUser inserts a user and returns it with a valid bearer token
func createTestUser(t *testing.T, db *gorm.DB, username string, role models.UserRole) (*models.User, string) {
	t.Helper()

	hash, err := auth.HashPassword("test-password-123")
	require.NoError(t, err)

	user := models.User{Username: username, PasswordHash: hash, Role: role}
	require.NoError(t, db.Create(&user).Error)

	token, err := auth.GenerateToken(&user)
	require.NoError(t, err)

	return &user, "Bearer " + token
}

// doJSON performs a request with an optional JSON body and bearer token
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// createTestBoard inserts a board directly
func createTestBoard(t *testing.T, db *gorm.DB, mutate func(*models.Board)) *models.Board {
	t.Helper()

	board := models.Board{
		Title:           "Test Board",
		CreatedByUserID: 1,
		SuggestionsOpen: true,
		VotingOpen:      true,
		VotingType:      models.SingleVote,
	}
	if mutate != nil {
		mutate(&board)
	}
	require.NoError(t, db.Create(&board).Error)
	return &board
}

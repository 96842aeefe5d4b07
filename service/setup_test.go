package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"suggestion-board-backend/database"
	"suggestion-board-backend/models"
	"suggestion-board-backend/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter int64

// testEnv wires the services against a fresh in-memory SQLite database.
type testEnv struct {
	db          *gorm.DB
	boards      BoardService
	suggestions SuggestionService
	votes       VoteService
	projector   *BoardViewProjector
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named shared-cache database per test keeps connections of one test
	// on the same data while isolating tests from each other.
	name := fmt.Sprintf("file:servicetest%d?mode=memory&cache=shared", atomic.AddInt64(&testDBCounter, 1))
	db, err := gorm.Open(sqlite.Open(name), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	// Serialize writes at the pool level; SQLite allows one writer anyway
	// and this avoids spurious SQLITE_BUSY in the concurrency tests.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))

	boardRepo := repository.NewBoardRepository(db)
	suggestionRepo := repository.NewSuggestionRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	return &testEnv{
		db:          db,
		boards:      NewBoardService(boardRepo, nil),
		suggestions: NewSuggestionService(suggestionRepo, boardRepo, nil),
		votes:       NewVoteService(voteRepo, suggestionRepo, boardRepo, nil, nil),
		projector:   NewBoardViewProjector(boardRepo, suggestionRepo, voteRepo),
	}
}

// createBoard persists a board through the service and fails the test on error.
func (e *testEnv) createBoard(t *testing.T, board *models.Board) *models.Board {
	t.Helper()
	created, err := e.boards.CreateBoard(context.Background(), board)
	require.NoError(t, err)
	return created
}

// submit creates a suggestion and fails the test on error.
func (e *testEnv) submit(t *testing.T, boardID uint, text string, userID uint) *models.Suggestion {
	t.Helper()
	suggestion, err := e.suggestions.Submit(context.Background(), boardID, text, userID)
	require.NoError(t, err)
	return suggestion
}

// openBoard returns a board accepting suggestions and votes without approval.
func openBoard(votingType models.VotingType, maxVotes *int) *models.Board {
	return &models.Board{
		Title:           "Test Board",
		Description:     "board under test",
		CreatedByUserID: 1,
		SuggestionsOpen: true,
		VotingOpen:      true,
		VotingType:      votingType,
		MaxVotes:        maxVotes,
	}
}

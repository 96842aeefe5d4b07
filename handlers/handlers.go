package handlers

import (
	"errors"
	"net/http"

	"suggestion-board-backend/cache"
	"suggestion-board-backend/mq"
	"suggestion-board-backend/repository"
	"suggestion-board-backend/service"

	"github.com/gin-gonic/gin"
)

// Handlers holds the wired services behind the HTTP surface. Constructed
// once in main (and per test) so handlers never reach for globals.
type Handlers struct {
	boards      service.BoardService
	suggestions service.SuggestionService
	votes       service.VoteService
	users       repository.UserRepository
	projector   *service.BoardViewProjector
	viewCache   *cache.BoardViewCache
	events      *mq.EventPublisher
}

// NewHandlers creates the handler set. viewCache and events may be nil;
// the read path then always hits the projector directly.
func NewHandlers(
	boards service.BoardService,
	suggestions service.SuggestionService,
	votes service.VoteService,
	users repository.UserRepository,
	projector *service.BoardViewProjector,
	viewCache *cache.BoardViewCache,
	events *mq.EventPublisher,
) *Handlers {
	return &Handlers{
		boards:      boards,
		suggestions: suggestions,
		votes:       votes,
		users:       users,
		projector:   projector,
		viewCache:   viewCache,
		events:      events,
	}
}

// respondError maps service errors onto HTTP statuses. Unknown errors
// become opaque 500s so internals never leak to clients.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBoardNotFound),
		errors.Is(err, service.ErrSuggestionNotFound),
		errors.Is(err, service.ErrVoteNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidConfiguration):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSubmissionClosed),
		errors.Is(err, service.ErrVotingClosed),
		errors.Is(err, service.ErrBoardClosed),
		errors.Is(err, service.ErrSuggestionNotApproved):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrDuplicateVote),
		errors.Is(err, service.ErrVoteLimitExceeded),
		errors.Is(err, service.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

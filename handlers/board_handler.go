package handlers

import (
	"net/http"
	"strconv"

	"suggestion-board-backend/auth"
	"suggestion-board-backend/cache"
	"suggestion-board-backend/models"
	"suggestion-board-backend/service"

	"github.com/gin-gonic/gin"
)

// CreateBoardInput defines the expected input for creating a board
type CreateBoardInput struct {
	Title           string            `json:"title" binding:"required"`
	Description     string            `json:"description"`
	SuggestionsOpen *bool             `json:"suggestions_open"`
	VotingOpen      *bool             `json:"voting_open"`
	RequireApproval bool              `json:"require_approval"`
	VotingType      models.VotingType `json:"voting_type" binding:"omitempty,oneof=0 1"`
	MaxVotes        *int              `json:"max_votes"`
}

// UpdateBoardInput carries optional field patches. Nil fields are untouched.
type UpdateBoardInput struct {
	Title           *string            `json:"title"`
	Description     *string            `json:"description"`
	SuggestionsOpen *bool              `json:"suggestions_open"`
	VotingOpen      *bool              `json:"voting_open"`
	RequireApproval *bool              `json:"require_approval"`
	VotingType      *models.VotingType `json:"voting_type" binding:"omitempty,oneof=0 1"`
	MaxVotes        *int               `json:"max_votes"`
	Closed          *bool              `json:"closed"`
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " format"})
		return 0, false
	}
	return uint(id), true
}

// CreateBoard creates a board owned by the authenticated user
func (h *Handlers) CreateBoard(c *gin.Context) {
	var input CreateBoardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := auth.CurrentViewer(c)

	board := models.Board{
		Title:           input.Title,
		Description:     input.Description,
		CreatedByUserID: viewer.UserID,
		SuggestionsOpen: true,
		VotingOpen:      true,
		RequireApproval: input.RequireApproval,
		VotingType:      input.VotingType,
		MaxVotes:        input.MaxVotes,
	}
	if input.SuggestionsOpen != nil {
		board.SuggestionsOpen = *input.SuggestionsOpen
	}
	if input.VotingOpen != nil {
		board.VotingOpen = *input.VotingOpen
	}

	created, err := h.boards.CreateBoard(c.Request.Context(), &board)
	if err != nil {
		respondError(c, err)
		return
	}

	cache.AddBoardToFilter(created.ID)

	c.JSON(http.StatusCreated, created)
}

// ListBoards returns boards with offset/limit paging
func (h *Handlers) ListBoards(c *gin.Context) {
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	boards, err := h.boards.ListBoards(c.Request.Context(), offset, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list boards"})
		return
	}

	c.JSON(http.StatusOK, boards)
}

// GetBoardView returns the viewer-scoped projection of one board. Reads go
// through the bloom filter and view cache before touching the database.
func (h *Handlers) GetBoardView(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if !cache.BoardMayExist(ctx, id) {
		c.JSON(http.StatusNotFound, gin.H{"error": service.ErrBoardNotFound.Error()})
		return
	}

	viewer := auth.CurrentViewer(c)
	loader := func() (*service.BoardView, error) {
		return h.projector.ProjectBoardView(ctx, id, viewer)
	}

	var view *service.BoardView
	var err error
	if h.viewCache != nil {
		view, err = h.viewCache.GetBoardView(ctx, id, viewer, loader)
	} else {
		view, err = loader()
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// GetBoard returns the raw board configuration
func (h *Handlers) GetBoard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.GetBoardByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// UpdateBoard patches board configuration
func (h *Handlers) UpdateBoard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input UpdateBoardInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	board, err := h.boards.UpdateBoard(c.Request.Context(), id, service.BoardUpdate{
		Title:           input.Title,
		Description:     input.Description,
		SuggestionsOpen: input.SuggestionsOpen,
		VotingOpen:      input.VotingOpen,
		RequireApproval: input.RequireApproval,
		VotingType:      input.VotingType,
		MaxVotes:        input.MaxVotes,
		Closed:          input.Closed,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// ToggleVoting flips the voting flag
func (h *Handlers) ToggleVoting(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.ToggleVoting(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// ToggleSuggestions flips the suggestion intake flag
func (h *Handlers) ToggleSuggestions(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.ToggleSuggestions(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// ToggleBoardStatus closes or reopens the board. Closing also forces the
// suggestion and voting flags shut.
func (h *Handlers) ToggleBoardStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	board, err := h.boards.ToggleBoardStatus(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

// DeleteBoard removes the board with its suggestions and votes
func (h *Handlers) DeleteBoard(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.boards.DeleteBoard(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "board deleted"})
}

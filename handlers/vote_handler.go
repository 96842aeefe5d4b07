package handlers

import (
	"net/http"

	"suggestion-board-backend/auth"

	"github.com/gin-gonic/gin"
)

// CastVote records a vote by the authenticated user on a suggestion
func (h *Handlers) CastVote(c *gin.Context) {
	suggestionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewer := auth.CurrentViewer(c)

	vote, err := h.votes.CastVote(c.Request.Context(), suggestionID, viewer.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vote)
}

// RetractVote removes the authenticated user's vote from a suggestion
func (h *Handlers) RetractVote(c *gin.Context) {
	suggestionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewer := auth.CurrentViewer(c)

	if err := h.votes.RetractVote(c.Request.Context(), suggestionID, viewer.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "vote retracted"})
}

// GetSuggestionVotes lists all votes on a suggestion. Admin only.
func (h *Handlers) GetSuggestionVotes(c *gin.Context) {
	suggestionID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	votes, err := h.votes.GetVotesBySuggestionID(c.Request.Context(), suggestionID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list votes"})
		return
	}

	c.JSON(http.StatusOK, votes)
}

// GetMyBoardVotes lists the authenticated user's votes on one board
func (h *Handlers) GetMyBoardVotes(c *gin.Context) {
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	viewer := auth.CurrentViewer(c)

	votes, err := h.votes.GetUserVotesByBoardID(c.Request.Context(), viewer.UserID, boardID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list votes"})
		return
	}

	c.JSON(http.StatusOK, votes)
}

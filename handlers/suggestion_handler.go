package handlers

import (
	"net/http"

	"suggestion-board-backend/auth"

	"github.com/gin-gonic/gin"
)

// SubmitSuggestionInput defines the expected input for submitting a suggestion
type SubmitSuggestionInput struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// SubmitSuggestion adds a suggestion to a board for the authenticated user
func (h *Handlers) SubmitSuggestion(c *gin.Context) {
	boardID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input SubmitSuggestionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewer := auth.CurrentViewer(c)

	suggestion, err := h.suggestions.Submit(c.Request.Context(), boardID, input.Text, viewer.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, suggestion)
}

// GetPendingSuggestions lists suggestions awaiting review. Admin only.
func (h *Handlers) GetPendingSuggestions(c *gin.Context) {
	pending, err := h.suggestions.GetPendingSuggestions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list pending suggestions"})
		return
	}

	c.JSON(http.StatusOK, pending)
}

// ApproveSuggestion approves a pending suggestion. Admin only.
func (h *Handlers) ApproveSuggestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.suggestions.Approve(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "suggestion approved"})
}

// RejectSuggestion rejects a pending suggestion. Admin only.
func (h *Handlers) RejectSuggestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.suggestions.Reject(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "suggestion rejected"})
}

// DeleteSuggestion removes a suggestion and its votes. Admin only.
func (h *Handlers) DeleteSuggestion(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.suggestions.DeleteSuggestion(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "suggestion deleted"})
}

package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"suggestion-board-backend/models"
	"suggestion-board-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmitSuggestion(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	_, token := createTestUser(t, db, "alice", models.RoleUser)
	board := createTestBoard(t, db, nil)

	w := doJSON(t, router, "POST", fmt.Sprintf("/api/boards/%d/suggestions", board.ID), token, gin.H{
		"text": "Add dark mode",
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var suggestion models.Suggestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestion))
	assert.Equal(t, "Add dark mode", suggestion.Text)
	// No approval gate on this board: live immediately.
	assert.Equal(t, models.StatusApproved, suggestion.Status)
	assert.True(t, suggestion.Visible)
}

func TestSubmitSuggestion_RequiresAuth(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	board := createTestBoard(t, db, nil)

	w := doJSON(t, router, "POST", fmt.Sprintf("/api/boards/%d/suggestions", board.ID), "", gin.H{
		"text": "anonymous idea",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitSuggestion_SubmissionsClosed(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	_, token := createTestUser(t, db, "alice", models.RoleUser)
	board := createTestBoard(t, db, func(b *models.Board) { b.SuggestionsOpen = false })

	w := doJSON(t, router, "POST", fmt.Sprintf("/api/boards/%d/suggestions", board.ID), token, gin.H{
		"text": "too late",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApprovalFlow(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	_, userToken := createTestUser(t, db, "alice", models.RoleUser)
	_, adminToken := createTestUser(t, db, "admin", models.RoleAdmin)
	board := createTestBoard(t, db, func(b *models.Board) { b.RequireApproval = true })

	// Submission lands pending and hidden.
	w := doJSON(t, router, "POST", fmt.Sprintf("/api/boards/%d/suggestions", board.ID), userToken, gin.H{
		"text": "Needs review",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var suggestion models.Suggestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &suggestion))
	assert.Equal(t, models.StatusPending, suggestion.Status)
	assert.False(t, suggestion.Visible)

	// Hidden from anonymous viewers, listed for admins.
	w = doJSON(t, router, "GET", fmt.Sprintf("/api/boards/%d", board.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view service.BoardView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Empty(t, view.Suggestions)

	w = doJSON(t, router, "GET", "/api/suggestions/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var pending []models.Suggestion
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, suggestion.ID, pending[0].ID)

	// Approve and the suggestion goes live for everyone.
	w = doJSON(t, router, "POST", fmt.Sprintf("/api/suggestions/%d/approve", suggestion.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", fmt.Sprintf("/api/boards/%d", board.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	require.Len(t, view.Suggestions, 1)
	assert.Equal(t, "approved", view.Suggestions[0].Status)
}

func TestApprove_RequiresAdmin(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	_, userToken := createTestUser(t, db, "alice", models.RoleUser)

	w := doJSON(t, router, "POST", "/api/suggestions/1/approve", userToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestReject_AlreadyApproved(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	_, adminToken := createTestUser(t, db, "admin", models.RoleAdmin)
	board := createTestBoard(t, db, nil)

	suggestion := models.Suggestion{
		BoardID:           board.ID,
		Text:              "already live",
		SubmittedByUserID: 1,
		Status:            models.StatusApproved,
		Visible:           true,
	}
	require.NoError(t, db.Create(&suggestion).Error)

	w := doJSON(t, router, "POST", fmt.Sprintf("/api/suggestions/%d/reject", suggestion.ID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteSuggestion_RemovesVotes(t *testing.T) {
	router, db := SetupTestEnvironment(t)
	_, adminToken := createTestUser(t, db, "admin", models.RoleAdmin)
	board := createTestBoard(t, db, nil)

	suggestion := models.Suggestion{
		BoardID:           board.ID,
		Text:              "doomed",
		SubmittedByUserID: 1,
		Status:            models.StatusApproved,
		Visible:           true,
	}
	require.NoError(t, db.Create(&suggestion).Error)
	require.NoError(t, db.Create(&models.Vote{SuggestionID: suggestion.ID, UserID: 1}).Error)

	w := doJSON(t, router, "DELETE", fmt.Sprintf("/api/suggestions/%d", suggestion.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var voteCount int64
	require.NoError(t, db.Model(&models.Vote{}).Where("suggestion_id = ?", suggestion.ID).Count(&voteCount).Error)
	assert.Zero(t, voteCount)
}

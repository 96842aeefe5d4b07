package service

import (
	"context"
	"testing"

	"suggestion-board-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubmit_ApprovalRequired(t *testing.T) {
	env := newTestEnv(t)
	board := openBoard(models.SingleVote, nil)
	board.RequireApproval = true
	env.createBoard(t, board)

	suggestion := env.submit(t, board.ID, "Add dark mode", 42)

	assert.Equal(t, models.StatusPending, suggestion.Status)
	assert.False(t, suggestion.Visible)
}

func TestSubmit_AutoApproval(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.SingleVote, nil))

	suggestion := env.submit(t, board.ID, "Add dark mode", 42)

	assert.Equal(t, models.StatusApproved, suggestion.Status)
	assert.True(t, suggestion.Visible)
}

func TestSubmit_Closed(t *testing.T) {
	env := newTestEnv(t)

	board := openBoard(models.SingleVote, nil)
	board.SuggestionsOpen = false
	env.createBoard(t, board)

	_, err := env.suggestions.Submit(context.Background(), board.ID, "too late", 1)
	assert.ErrorIs(t, err, ErrSubmissionClosed)

	// A closed board refuses submissions even with suggestions nominally open.
	closed := openBoard(models.SingleVote, nil)
	closed.Closed = true
	env.createBoard(t, closed)

	_, err = env.suggestions.Submit(context.Background(), closed.ID, "still too late", 1)
	assert.ErrorIs(t, err, ErrSubmissionClosed)
}

func TestSubmit_BoardNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.suggestions.Submit(context.Background(), 9999, "nowhere", 1)
	assert.ErrorIs(t, err, ErrBoardNotFound)
}

func TestApprove_FromPending(t *testing.T) {
	env := newTestEnv(t)
	board := openBoard(models.SingleVote, nil)
	board.RequireApproval = true
	env.createBoard(t, board)

	suggestion := env.submit(t, board.ID, "Add dark mode", 42)
	require.NoError(t, env.suggestions.Approve(context.Background(), suggestion.ID))

	reloaded, err := env.suggestions.GetSuggestionByID(context.Background(), suggestion.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, reloaded.Status)
	assert.True(t, reloaded.Visible)
}

func TestApprove_InvalidTransition(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.SingleVote, nil))

	// Auto-approved suggestion is not pending anymore.
	suggestion := env.submit(t, board.ID, "already approved", 42)

	err := env.suggestions.Approve(context.Background(), suggestion.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	err = env.suggestions.Reject(context.Background(), suggestion.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestReject_IsTerminal(t *testing.T) {
	env := newTestEnv(t)
	board := openBoard(models.SingleVote, nil)
	board.RequireApproval = true
	env.createBoard(t, board)

	suggestion := env.submit(t, board.ID, "Add dark mode", 42)
	require.NoError(t, env.suggestions.Reject(context.Background(), suggestion.ID))

	reloaded, err := env.suggestions.GetSuggestionByID(context.Background(), suggestion.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, reloaded.Status)
	assert.False(t, reloaded.Visible)

	// No way back: neither approve nor a second reject is legal.
	assert.ErrorIs(t, env.suggestions.Approve(context.Background(), suggestion.ID), ErrInvalidTransition)
	assert.ErrorIs(t, env.suggestions.Reject(context.Background(), suggestion.ID), ErrInvalidTransition)
}

func TestGetPendingSuggestions(t *testing.T) {
	env := newTestEnv(t)
	board := openBoard(models.SingleVote, nil)
	board.RequireApproval = true
	env.createBoard(t, board)

	first := env.submit(t, board.ID, "first", 1)
	second := env.submit(t, board.ID, "second", 2)
	require.NoError(t, env.suggestions.Approve(context.Background(), first.ID))

	pending, err := env.suggestions.GetPendingSuggestions(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)
}

func TestVisibleTo(t *testing.T) {
	pending := &models.Suggestion{SubmittedByUserID: 7, Status: models.StatusPending, Visible: false}
	rejected := &models.Suggestion{SubmittedByUserID: 7, Status: models.StatusRejected, Visible: false}
	approved := &models.Suggestion{SubmittedByUserID: 7, Status: models.StatusApproved, Visible: true}

	submitter := &Viewer{UserID: 7}
	stranger := &Viewer{UserID: 8}
	admin := &Viewer{UserID: 9, IsAdmin: true}

	assert.True(t, VisibleTo(approved, nil))
	assert.True(t, VisibleTo(approved, stranger))

	assert.False(t, VisibleTo(pending, nil))
	assert.False(t, VisibleTo(pending, stranger))
	assert.True(t, VisibleTo(pending, submitter))
	assert.True(t, VisibleTo(pending, admin))

	// Terminal rejections are hidden from everyone but admins.
	assert.False(t, VisibleTo(rejected, stranger))
	assert.False(t, VisibleTo(rejected, submitter))
	assert.True(t, VisibleTo(rejected, admin))
}

func TestDeleteSuggestion_CascadesVotes(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.MultipleVote, nil))
	suggestion := env.submit(t, board.ID, "cascade me", 1)

	_, err := env.votes.CastVote(context.Background(), suggestion.ID, 10)
	require.NoError(t, err)

	require.NoError(t, env.suggestions.DeleteSuggestion(context.Background(), suggestion.ID))

	var voteCount int64
	require.NoError(t, env.db.Model(&models.Vote{}).Count(&voteCount).Error)
	assert.Zero(t, voteCount)
}

package service

import (
	"context"
	"testing"

	"suggestion-board-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBoard_InvalidConfiguration(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	badType := openBoard(models.VotingType(7), nil)
	_, err := env.boards.CreateBoard(ctx, badType)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	zero := 0
	badMax := openBoard(models.MultipleVote, &zero)
	_, err = env.boards.CreateBoard(ctx, badMax)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	negative := -3
	badMax = openBoard(models.MultipleVote, &negative)
	_, err = env.boards.CreateBoard(ctx, badMax)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestCreateBoard_SingleVoteDropsMaxVotes(t *testing.T) {
	env := newTestEnv(t)

	five := 5
	board, err := env.boards.CreateBoard(context.Background(), openBoard(models.SingleVote, &five))
	require.NoError(t, err)
	assert.Nil(t, board.MaxVotes, "max votes is undefined on single-vote boards")
}

func TestToggleBoardStatus_CloseForcesSubFlags(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.SingleVote, nil))
	ctx := context.Background()

	closed, err := env.boards.ToggleBoardStatus(ctx, board.ID)
	require.NoError(t, err)
	assert.True(t, closed.Closed)
	assert.False(t, closed.VotingOpen)
	assert.False(t, closed.SuggestionsOpen)

	// Reopening clears only the closed flag; the sub-flags stay closed until
	// toggled explicitly.
	reopened, err := env.boards.ToggleBoardStatus(ctx, board.ID)
	require.NoError(t, err)
	assert.False(t, reopened.Closed)
	assert.False(t, reopened.VotingOpen)
	assert.False(t, reopened.SuggestionsOpen)
}

func TestToggleFlags(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.SingleVote, nil))
	ctx := context.Background()

	toggled, err := env.boards.ToggleVoting(ctx, board.ID)
	require.NoError(t, err)
	assert.False(t, toggled.VotingOpen)

	toggled, err = env.boards.ToggleSuggestions(ctx, board.ID)
	require.NoError(t, err)
	assert.False(t, toggled.SuggestionsOpen)

	toggled, err = env.boards.ToggleVoting(ctx, board.ID)
	require.NoError(t, err)
	assert.True(t, toggled.VotingOpen)
}

func TestUpdateBoard_PatchesAndRevalidates(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.MultipleVote, nil))
	ctx := context.Background()

	title := "Renamed"
	three := 3
	updated, err := env.boards.UpdateBoard(ctx, board.ID, BoardUpdate{Title: &title, MaxVotes: &three})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	require.NotNil(t, updated.MaxVotes)
	assert.Equal(t, 3, *updated.MaxVotes)

	zero := 0
	_, err = env.boards.UpdateBoard(ctx, board.ID, BoardUpdate{MaxVotes: &zero})
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	closed := true
	updated, err = env.boards.UpdateBoard(ctx, board.ID, BoardUpdate{Closed: &closed})
	require.NoError(t, err)
	assert.True(t, updated.Closed)
	assert.False(t, updated.VotingOpen)
	assert.False(t, updated.SuggestionsOpen)
}

func TestDeleteBoard_Cascades(t *testing.T) {
	env := newTestEnv(t)
	board := env.createBoard(t, openBoard(models.MultipleVote, nil))
	suggestion := env.submit(t, board.ID, "doomed", 1)
	ctx := context.Background()

	_, err := env.votes.CastVote(ctx, suggestion.ID, 10)
	require.NoError(t, err)

	require.NoError(t, env.boards.DeleteBoard(ctx, board.ID))

	var suggestionCount, voteCount int64
	require.NoError(t, env.db.Model(&models.Suggestion{}).Count(&suggestionCount).Error)
	require.NoError(t, env.db.Model(&models.Vote{}).Count(&voteCount).Error)
	assert.Zero(t, suggestionCount)
	assert.Zero(t, voteCount)

	err = env.boards.DeleteBoard(ctx, board.ID)
	assert.ErrorIs(t, err, ErrBoardNotFound)
}

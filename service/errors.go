package service

import "errors"

// Business errors. All are non-fatal and map to client-facing responses in
// the handlers; the engine never retries internally.
var (
	// ErrInvalidConfiguration reports a bad board setup at construction time
	// (unknown voting type, non-positive max votes).
	ErrInvalidConfiguration = errors.New("invalid board configuration")

	// ErrBoardNotFound and ErrSuggestionNotFound are lookup failures.
	ErrBoardNotFound      = errors.New("board not found")
	ErrSuggestionNotFound = errors.New("suggestion not found")

	// ErrSubmissionClosed means the board is not accepting suggestions.
	ErrSubmissionClosed = errors.New("suggestions are not currently open for this board")

	// ErrInvalidTransition means approve/reject was called on a suggestion
	// that is not pending. Rejected is terminal.
	ErrInvalidTransition = errors.New("suggestion is not pending")

	// Vote eligibility failures, in precondition order.
	ErrVotingClosed          = errors.New("voting is not currently open for this board")
	ErrBoardClosed           = errors.New("this board is closed")
	ErrSuggestionNotApproved = errors.New("cannot vote on unapproved suggestion")
	ErrDuplicateVote         = errors.New("you have already voted for this suggestion")
	ErrVoteLimitExceeded     = errors.New("vote limit exceeded")

	// ErrVoteNotFound means retract was called for a pair with no vote.
	ErrVoteNotFound = errors.New("vote not found")
)

package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"suggestion-board-backend/models"
	"suggestion-board-backend/repository"

	"gorm.io/gorm"
)

// Locker serializes a critical section across instances. The cache package
// provides a redsync-backed implementation; a nil Locker degrades to running
// the section directly, which still leaves the pair-uniqueness guarantee to
// the database unique index — only the vote-limit count check loses its
// tightened bound.
type Locker interface {
	WithLock(lockName string, expiry time.Duration, action func() error) error
}

const voteLockExpiry = 5 * time.Second

// VoteService is the vote eligibility engine. It is the sole author of vote
// rows; all mutation goes through CastVote and RetractVote.
type VoteService interface {
	CastVote(ctx context.Context, suggestionID, userID uint) (*models.Vote, error)
	RetractVote(ctx context.Context, suggestionID, userID uint) error
	GetVotesBySuggestionID(ctx context.Context, suggestionID uint) ([]*models.Vote, error)
	GetUserVotesByBoardID(ctx context.Context, userID, boardID uint) ([]*models.Vote, error)
}

// VoteServiceImpl is the default VoteService
type VoteServiceImpl struct {
	voteRepo       repository.VoteRepository
	suggestionRepo repository.SuggestionRepository
	boardRepo      repository.BoardRepository
	locker         Locker
	events         EventPublisher
}

// NewVoteService creates a vote service. locker and events may be nil.
func NewVoteService(
	voteRepo repository.VoteRepository,
	suggestionRepo repository.SuggestionRepository,
	boardRepo repository.BoardRepository,
	locker Locker,
	events EventPublisher,
) VoteService {
	return &VoteServiceImpl{
		voteRepo:       voteRepo,
		suggestionRepo: suggestionRepo,
		boardRepo:      boardRepo,
		locker:         locker,
		events:         events,
	}
}

// CastVote checks the eligibility preconditions in order — voting open,
// board open, suggestion approved, no existing vote, vote limit — and then
// inserts the vote. The first failing condition wins. The insert relies on
// the (suggestion_id, user_id) unique index: two concurrent casts for the
// same pair resolve to one success and one ErrDuplicateVote, never two rows.
func (s *VoteServiceImpl) CastVote(ctx context.Context, suggestionID, userID uint) (*models.Vote, error) {
	suggestion, err := s.suggestionRepo.GetSuggestionByID(ctx, suggestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}
	board, err := s.boardRepo.GetBoardByID(ctx, suggestion.BoardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}

	if !board.VotingOpen {
		return nil, ErrVotingClosed
	}
	if board.Closed {
		return nil, ErrBoardClosed
	}
	if suggestion.Status != models.StatusApproved {
		return nil, ErrSuggestionNotApproved
	}

	// Fast path for the common duplicate case. Not a safety mechanism: the
	// unique index below is.
	if _, err := s.voteRepo.GetUserVoteOnSuggestion(ctx, userID, suggestionID); err == nil {
		return nil, ErrDuplicateVote
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	vote := &models.Vote{SuggestionID: suggestionID, UserID: userID}
	insert := func() error {
		if err := s.checkVoteLimit(ctx, board, userID); err != nil {
			return err
		}
		return s.voteRepo.CreateVote(ctx, vote)
	}

	// The limit rule is a count over multiple rows, so the check and insert
	// run under a per-(board, user) lock when one is available. Without it
	// the count is best effort, per the concurrency model.
	if s.locker != nil {
		lockName := fmt.Sprintf("vote:board:%d:user:%d", board.ID, userID)
		err = s.locker.WithLock(lockName, voteLockExpiry, insert)
	} else {
		err = insert()
	}
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateVote
		}
		return nil, err
	}

	s.publish(EventVoteCast, board.ID, suggestionID, userID)
	return vote, nil
}

// checkVoteLimit counts the user's existing votes across the board and
// applies the Single/Multiple rule. The offending limit goes into the error
// message.
func (s *VoteServiceImpl) checkVoteLimit(ctx context.Context, board *models.Board, userID uint) error {
	votes, err := s.voteRepo.GetUserVotesByBoardID(ctx, userID, board.ID)
	if err != nil {
		return err
	}
	count := len(votes)

	if board.VotingType == models.SingleVote && count >= 1 {
		return fmt.Errorf("%w: this board only allows one vote per user", ErrVoteLimitExceeded)
	}
	if board.VotingType == models.MultipleVote && board.MaxVotes != nil && count >= *board.MaxVotes {
		return fmt.Errorf("%w: you have reached the maximum number of votes (%d) for this board",
			ErrVoteLimitExceeded, *board.MaxVotes)
	}
	return nil
}

// RetractVote deletes the user's vote on a suggestion. The board state is
// deliberately not re-checked: removing a vote cannot create an invalid
// state, so a user may always withdraw, even on a closed board.
func (s *VoteServiceImpl) RetractVote(ctx context.Context, suggestionID, userID uint) error {
	vote, err := s.voteRepo.GetUserVoteOnSuggestion(ctx, userID, suggestionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrVoteNotFound
		}
		return err
	}
	if err := s.voteRepo.DeleteVote(ctx, vote.ID); err != nil {
		return err
	}

	if suggestion, err := s.suggestionRepo.GetSuggestionByID(ctx, suggestionID); err == nil {
		s.publish(EventVoteRetracted, suggestion.BoardID, suggestionID, userID)
	}
	return nil
}

func (s *VoteServiceImpl) GetVotesBySuggestionID(ctx context.Context, suggestionID uint) ([]*models.Vote, error) {
	return s.voteRepo.GetVotesBySuggestionID(ctx, suggestionID)
}

func (s *VoteServiceImpl) GetUserVotesByBoardID(ctx context.Context, userID, boardID uint) ([]*models.Vote, error) {
	return s.voteRepo.GetUserVotesByBoardID(ctx, userID, boardID)
}

func (s *VoteServiceImpl) publish(eventType string, boardID, suggestionID, userID uint) {
	if s.events != nil {
		s.events.Publish(eventType, boardID, suggestionID, userID)
	}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"suggestion-board-backend/models"
	"suggestion-board-backend/repository"

	"gorm.io/gorm"
)

// BoardService manages board configuration and state
type BoardService interface {
	CreateBoard(ctx context.Context, board *models.Board) (*models.Board, error)
	GetBoardByID(ctx context.Context, id uint) (*models.Board, error)
	ListBoards(ctx context.Context, offset, limit int) ([]*models.Board, error)
	UpdateBoard(ctx context.Context, id uint, update BoardUpdate) (*models.Board, error)
	ToggleVoting(ctx context.Context, id uint) (*models.Board, error)
	ToggleSuggestions(ctx context.Context, id uint) (*models.Board, error)
	ToggleBoardStatus(ctx context.Context, id uint) (*models.Board, error)
	DeleteBoard(ctx context.Context, id uint) error
}

// BoardUpdate carries optional field patches for UpdateBoard. Nil fields
// are left untouched.
type BoardUpdate struct {
	Title           *string
	Description     *string
	SuggestionsOpen *bool
	VotingOpen      *bool
	RequireApproval *bool
	VotingType      *models.VotingType
	MaxVotes        *int
	Closed          *bool
}

// BoardServiceImpl is the default BoardService
type BoardServiceImpl struct {
	boardRepo repository.BoardRepository
	events    EventPublisher
}

// NewBoardService creates a board service
func NewBoardService(boardRepo repository.BoardRepository, events EventPublisher) BoardService {
	return &BoardServiceImpl{boardRepo: boardRepo, events: events}
}

// validateConfiguration enforces the construction-time rules: the voting
// type must be a defined variant and MaxVotes, when present, positive.
func validateConfiguration(votingType models.VotingType, maxVotes *int) error {
	if !votingType.Valid() {
		return fmt.Errorf("%w: unknown voting type %d", ErrInvalidConfiguration, votingType)
	}
	if maxVotes != nil && *maxVotes <= 0 {
		return fmt.Errorf("%w: max votes must be a positive integer, got %d", ErrInvalidConfiguration, *maxVotes)
	}
	return nil
}

// CreateBoard validates the configuration and persists a new board
func (s *BoardServiceImpl) CreateBoard(ctx context.Context, board *models.Board) (*models.Board, error) {
	if err := validateConfiguration(board.VotingType, board.MaxVotes); err != nil {
		return nil, err
	}
	// MaxVotes is undefined for single-vote boards; don't store a stray value.
	if board.VotingType == models.SingleVote {
		board.MaxVotes = nil
	}
	if err := s.boardRepo.CreateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publish(EventBoardCreated, board.ID, 0, board.CreatedByUserID)
	return board, nil
}

func (s *BoardServiceImpl) GetBoardByID(ctx context.Context, id uint) (*models.Board, error) {
	board, err := s.boardRepo.GetBoardByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}
	return board, nil
}

func (s *BoardServiceImpl) ListBoards(ctx context.Context, offset, limit int) ([]*models.Board, error) {
	return s.boardRepo.ListBoards(ctx, offset, limit)
}

// UpdateBoard patches the given fields after re-validating the resulting
// configuration. CreatedByUserID is immutable and not patchable.
func (s *BoardServiceImpl) UpdateBoard(ctx context.Context, id uint, update BoardUpdate) (*models.Board, error) {
	board, err := s.GetBoardByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		board.Title = *update.Title
	}
	if update.Description != nil {
		board.Description = *update.Description
	}
	if update.SuggestionsOpen != nil {
		board.SuggestionsOpen = *update.SuggestionsOpen
	}
	if update.VotingOpen != nil {
		board.VotingOpen = *update.VotingOpen
	}
	if update.RequireApproval != nil {
		board.RequireApproval = *update.RequireApproval
	}
	if update.VotingType != nil {
		board.VotingType = *update.VotingType
	}
	if update.MaxVotes != nil {
		board.MaxVotes = update.MaxVotes
	}
	if update.Closed != nil {
		if *update.Closed {
			closeBoard(board)
		} else {
			board.Closed = false
		}
	}

	if err := validateConfiguration(board.VotingType, board.MaxVotes); err != nil {
		return nil, err
	}
	if board.VotingType == models.SingleVote {
		board.MaxVotes = nil
	}

	if err := s.boardRepo.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publish(EventBoardUpdated, board.ID, 0, 0)
	return board, nil
}

// ToggleVoting flips the voting flag
func (s *BoardServiceImpl) ToggleVoting(ctx context.Context, id uint) (*models.Board, error) {
	board, err := s.GetBoardByID(ctx, id)
	if err != nil {
		return nil, err
	}
	board.VotingOpen = !board.VotingOpen
	if err := s.boardRepo.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publish(EventBoardUpdated, board.ID, 0, 0)
	return board, nil
}

// ToggleSuggestions flips the suggestions flag
func (s *BoardServiceImpl) ToggleSuggestions(ctx context.Context, id uint) (*models.Board, error) {
	board, err := s.GetBoardByID(ctx, id)
	if err != nil {
		return nil, err
	}
	board.SuggestionsOpen = !board.SuggestionsOpen
	if err := s.boardRepo.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publish(EventBoardUpdated, board.ID, 0, 0)
	return board, nil
}

// ToggleBoardStatus closes or reopens the board. Closing force-closes
// suggestions and voting as well; reopening only clears the closed flag,
// the sub-flags stay as they were.
func (s *BoardServiceImpl) ToggleBoardStatus(ctx context.Context, id uint) (*models.Board, error) {
	board, err := s.GetBoardByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if board.Closed {
		board.Closed = false
	} else {
		closeBoard(board)
	}
	if err := s.boardRepo.UpdateBoard(ctx, board); err != nil {
		return nil, err
	}
	s.publish(EventBoardUpdated, board.ID, 0, 0)
	return board, nil
}

// DeleteBoard removes the board; suggestions and votes cascade
func (s *BoardServiceImpl) DeleteBoard(ctx context.Context, id uint) error {
	if _, err := s.GetBoardByID(ctx, id); err != nil {
		return err
	}
	if err := s.boardRepo.DeleteBoard(ctx, id); err != nil {
		return err
	}
	s.publish(EventBoardDeleted, id, 0, 0)
	return nil
}

func closeBoard(board *models.Board) {
	board.Closed = true
	board.VotingOpen = false
	board.SuggestionsOpen = false
}

func (s *BoardServiceImpl) publish(eventType string, boardID, suggestionID, userID uint) {
	if s.events != nil {
		s.events.Publish(eventType, boardID, suggestionID, userID)
	}
}

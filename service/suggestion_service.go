package service

import (
	"context"
	"errors"

	"suggestion-board-backend/models"
	"suggestion-board-backend/repository"

	"gorm.io/gorm"
)

// SuggestionService decides the initial state on submission and validates
// status transitions. Together with the vote service it is the only writer
// of suggestion state; nothing else may touch Status or Visible.
type SuggestionService interface {
	Submit(ctx context.Context, boardID uint, text string, submitterID uint) (*models.Suggestion, error)
	GetSuggestionByID(ctx context.Context, id uint) (*models.Suggestion, error)
	GetPendingSuggestions(ctx context.Context) ([]*models.Suggestion, error)
	Approve(ctx context.Context, id uint) error
	Reject(ctx context.Context, id uint) error
	DeleteSuggestion(ctx context.Context, id uint) error
}

// SuggestionServiceImpl is the default SuggestionService
type SuggestionServiceImpl struct {
	suggestionRepo repository.SuggestionRepository
	boardRepo      repository.BoardRepository
	events         EventPublisher
}

// NewSuggestionService creates a suggestion service
func NewSuggestionService(suggestionRepo repository.SuggestionRepository, boardRepo repository.BoardRepository, events EventPublisher) SuggestionService {
	return &SuggestionServiceImpl{
		suggestionRepo: suggestionRepo,
		boardRepo:      boardRepo,
		events:         events,
	}
}

// Submit creates a suggestion on an open board. Boards that require
// approval get a pending, invisible suggestion; otherwise it is approved
// and visible immediately.
func (s *SuggestionServiceImpl) Submit(ctx context.Context, boardID uint, text string, submitterID uint) (*models.Suggestion, error) {
	board, err := s.boardRepo.GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}

	if !board.SuggestionsOpen || board.Closed {
		return nil, ErrSubmissionClosed
	}

	suggestion := &models.Suggestion{
		BoardID:           boardID,
		Text:              text,
		SubmittedByUserID: submitterID,
	}
	if board.RequireApproval {
		suggestion.Status = models.StatusPending
		suggestion.Visible = false
	} else {
		suggestion.Status = models.StatusApproved
		suggestion.Visible = true
	}

	if err := s.suggestionRepo.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, err
	}
	s.publish(EventSuggestionSubmitted, boardID, suggestion.ID, submitterID)
	return suggestion, nil
}

func (s *SuggestionServiceImpl) GetSuggestionByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	suggestion, err := s.suggestionRepo.GetSuggestionByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuggestionNotFound
		}
		return nil, err
	}
	return suggestion, nil
}

func (s *SuggestionServiceImpl) GetPendingSuggestions(ctx context.Context) ([]*models.Suggestion, error) {
	return s.suggestionRepo.GetPendingSuggestions(ctx)
}

// Approve moves a pending suggestion to approved and makes it visible.
// Approved is only reachable from Pending.
func (s *SuggestionServiceImpl) Approve(ctx context.Context, id uint) error {
	suggestion, err := s.GetSuggestionByID(ctx, id)
	if err != nil {
		return err
	}
	if suggestion.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	suggestion.Status = models.StatusApproved
	suggestion.Visible = true
	if err := s.suggestionRepo.UpdateSuggestion(ctx, suggestion); err != nil {
		return err
	}
	s.publish(EventSuggestionApproved, suggestion.BoardID, suggestion.ID, 0)
	return nil
}

// Reject moves a pending suggestion to rejected. Rejected is terminal and
// never visible; votes cannot exist yet since voting requires approval.
func (s *SuggestionServiceImpl) Reject(ctx context.Context, id uint) error {
	suggestion, err := s.GetSuggestionByID(ctx, id)
	if err != nil {
		return err
	}
	if suggestion.Status != models.StatusPending {
		return ErrInvalidTransition
	}

	suggestion.Status = models.StatusRejected
	suggestion.Visible = false
	if err := s.suggestionRepo.UpdateSuggestion(ctx, suggestion); err != nil {
		return err
	}
	s.publish(EventSuggestionRejected, suggestion.BoardID, suggestion.ID, 0)
	return nil
}

// DeleteSuggestion removes the suggestion; its votes cascade
func (s *SuggestionServiceImpl) DeleteSuggestion(ctx context.Context, id uint) error {
	suggestion, err := s.GetSuggestionByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.suggestionRepo.DeleteSuggestion(ctx, id); err != nil {
		return err
	}
	s.publish(EventSuggestionDeleted, suggestion.BoardID, id, 0)
	return nil
}

// VisibleTo reports whether a suggestion is listed for the given viewer.
// Admins see everything; submitters see their own pending items; everyone
// else only sees visible suggestions. Rejected suggestions are invisible
// to non-admins, including their submitter.
func VisibleTo(suggestion *models.Suggestion, viewer *Viewer) bool {
	if viewer != nil && viewer.IsAdmin {
		return true
	}
	if suggestion.Visible {
		return true
	}
	return viewer != nil &&
		viewer.UserID == suggestion.SubmittedByUserID &&
		suggestion.Status == models.StatusPending
}

func (s *SuggestionServiceImpl) publish(eventType string, boardID, suggestionID, userID uint) {
	if s.events != nil {
		s.events.Publish(eventType, boardID, suggestionID, userID)
	}
}

package repository

import (
	"context"

	"suggestion-board-backend/models"

	"gorm.io/gorm"
)

// VoteRepository defines data access for votes. CreateVote leans on the
// unique index over (suggestion_id, user_id): a concurrent insert for the
// same pair surfaces as gorm.ErrDuplicatedKey, which the service layer
// reports as a duplicate vote.
type VoteRepository interface {
	CreateVote(ctx context.Context, vote *models.Vote) error
	GetUserVoteOnSuggestion(ctx context.Context, userID, suggestionID uint) (*models.Vote, error)
	GetVotesBySuggestionID(ctx context.Context, suggestionID uint) ([]*models.Vote, error)
	// GetUserVotesByBoardID returns the user's votes across all suggestions
	// of one board, the quantity the Single/Multiple vote-limit rule counts.
	GetUserVotesByBoardID(ctx context.Context, userID, boardID uint) ([]*models.Vote, error)
	CountVotesBySuggestionID(ctx context.Context, suggestionID uint) (int64, error)
	DeleteVote(ctx context.Context, id uint) error
}

// GormVoteRepository is the gorm-backed implementation
type GormVoteRepository struct {
	db *gorm.DB
}

// NewVoteRepository creates a vote repository
func NewVoteRepository(db *gorm.DB) *GormVoteRepository {
	return &GormVoteRepository{db: db}
}

func (r *GormVoteRepository) CreateVote(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).Create(vote).Error
}

func (r *GormVoteRepository) GetUserVoteOnSuggestion(ctx context.Context, userID, suggestionID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND suggestion_id = ?", userID, suggestionID).
		First(&vote).Error
	if err != nil {
		return nil, err
	}
	return &vote, nil
}

func (r *GormVoteRepository) GetVotesBySuggestionID(ctx context.Context, suggestionID uint) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Where("suggestion_id = ?", suggestionID).
		Order("created_at ASC").
		Find(&votes).Error
	return votes, err
}

func (r *GormVoteRepository) GetUserVotesByBoardID(ctx context.Context, userID, boardID uint) ([]*models.Vote, error) {
	var votes []*models.Vote
	err := r.db.WithContext(ctx).
		Joins("JOIN suggestions ON suggestions.id = votes.suggestion_id").
		Where("votes.user_id = ? AND suggestions.board_id = ?", userID, boardID).
		Find(&votes).Error
	return votes, err
}

func (r *GormVoteRepository) CountVotesBySuggestionID(ctx context.Context, suggestionID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Where("suggestion_id = ?", suggestionID).
		Count(&count).Error
	return count, err
}

func (r *GormVoteRepository) DeleteVote(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Vote{}, id).Error
}

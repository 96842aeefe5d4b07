package repository

import (
	"context"

	"suggestion-board-backend/models"

	"gorm.io/gorm"
)

// SuggestionRepository defines data access for suggestions
type SuggestionRepository interface {
	CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error
	GetSuggestionByID(ctx context.Context, id uint) (*models.Suggestion, error)
	// GetSuggestionsByBoardID returns all suggestions of a board in
	// submission order (oldest first), regardless of status. Visibility
	// filtering is the projector's job.
	GetSuggestionsByBoardID(ctx context.Context, boardID uint) ([]*models.Suggestion, error)
	// GetPendingSuggestions returns every pending suggestion across boards,
	// oldest first, for the admin review queue.
	GetPendingSuggestions(ctx context.Context) ([]*models.Suggestion, error)
	UpdateSuggestion(ctx context.Context, suggestion *models.Suggestion) error
	DeleteSuggestion(ctx context.Context, id uint) error
}

// GormSuggestionRepository is the gorm-backed implementation
type GormSuggestionRepository struct {
	db *gorm.DB
}

// NewSuggestionRepository creates a suggestion repository
func NewSuggestionRepository(db *gorm.DB) *GormSuggestionRepository {
	return &GormSuggestionRepository{db: db}
}

func (r *GormSuggestionRepository) CreateSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	return r.db.WithContext(ctx).Create(suggestion).Error
}

func (r *GormSuggestionRepository) GetSuggestionByID(ctx context.Context, id uint) (*models.Suggestion, error) {
	var suggestion models.Suggestion
	if err := r.db.WithContext(ctx).First(&suggestion, id).Error; err != nil {
		return nil, err
	}
	return &suggestion, nil
}

func (r *GormSuggestionRepository) GetSuggestionsByBoardID(ctx context.Context, boardID uint) ([]*models.Suggestion, error) {
	var suggestions []*models.Suggestion
	err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Order("created_at ASC, id ASC").
		Find(&suggestions).Error
	return suggestions, err
}

func (r *GormSuggestionRepository) GetPendingSuggestions(ctx context.Context) ([]*models.Suggestion, error) {
	var suggestions []*models.Suggestion
	err := r.db.WithContext(ctx).
		Where("status = ?", models.StatusPending).
		Order("created_at ASC, id ASC").
		Find(&suggestions).Error
	return suggestions, err
}

func (r *GormSuggestionRepository) UpdateSuggestion(ctx context.Context, suggestion *models.Suggestion) error {
	return r.db.WithContext(ctx).Save(suggestion).Error
}

// DeleteSuggestion removes the suggestion and its votes in one transaction.
func (r *GormSuggestionRepository) DeleteSuggestion(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("suggestion_id = ?", id).Delete(&models.Vote{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Suggestion{}, id).Error
	})
}

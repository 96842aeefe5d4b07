package repository

import (
	"context"

	"suggestion-board-backend/models"

	"gorm.io/gorm"
)

// BoardRepository defines data access for boards
type BoardRepository interface {
	CreateBoard(ctx context.Context, board *models.Board) error
	GetBoardByID(ctx context.Context, id uint) (*models.Board, error)
	ListBoards(ctx context.Context, offset, limit int) ([]*models.Board, error)
	ListBoardIDs(ctx context.Context) ([]uint, error)
	UpdateBoard(ctx context.Context, board *models.Board) error
	DeleteBoard(ctx context.Context, id uint) error
}

// GormBoardRepository is the gorm-backed implementation
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a board repository
func NewBoardRepository(db *gorm.DB) *GormBoardRepository {
	return &GormBoardRepository{db: db}
}

func (r *GormBoardRepository) CreateBoard(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Create(board).Error
}

func (r *GormBoardRepository) GetBoardByID(ctx context.Context, id uint) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).First(&board, id).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

func (r *GormBoardRepository) ListBoards(ctx context.Context, offset, limit int) ([]*models.Board, error) {
	var boards []*models.Board
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&boards).Error
	return boards, err
}

// ListBoardIDs returns every board ID, used to seed the existence filter
// at startup.
func (r *GormBoardRepository) ListBoardIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.Board{}).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *GormBoardRepository) UpdateBoard(ctx context.Context, board *models.Board) error {
	return r.db.WithContext(ctx).Save(board).Error
}

// DeleteBoard removes the board and, through its children, every suggestion
// and vote attached to it. Suggestions are deleted explicitly so the vote
// cascade also works on backends that skip FK enforcement (in-memory SQLite).
func (r *GormBoardRepository) DeleteBoard(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var suggestionIDs []uint
		if err := tx.Model(&models.Suggestion{}).
			Where("board_id = ?", id).
			Pluck("id", &suggestionIDs).Error; err != nil {
			return err
		}
		if len(suggestionIDs) > 0 {
			if err := tx.Where("suggestion_id IN ?", suggestionIDs).
				Delete(&models.Vote{}).Error; err != nil {
				return err
			}
			if err := tx.Where("board_id = ?", id).
				Delete(&models.Suggestion{}).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.Board{}, id).Error
	})
}

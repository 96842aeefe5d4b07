package models

import (
	"time"
)

// VotingType defines how many votes a user may cast on a board
// We use iota for enum-like behavior
type VotingType int

const (
	SingleVote   VotingType = iota // 0: one vote per user per board
	MultipleVote                   // 1: up to MaxVotes per user per board (unset = unlimited)
)

// Valid reports whether the value is one of the defined variants.
func (t VotingType) Valid() bool {
	return t == SingleVote || t == MultipleVote
}

// Board represents a suggestion board with its voting configuration.
// Deletion is immediate and cascades to suggestions and their votes,
// so no gorm.Model soft-delete column here.
type Board struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Title           string     `gorm:"not null" json:"title"`
	Description     string     `gorm:"type:text" json:"description"`
	CreatedByUserID uint       `gorm:"not null;index" json:"created_by_user_id"` // immutable after creation
	SuggestionsOpen bool       `gorm:"default:true" json:"suggestions_open"`
	VotingOpen      bool       `gorm:"default:true" json:"voting_open"`
	Closed          bool       `gorm:"default:false" json:"closed"`
	RequireApproval bool       `gorm:"default:false" json:"require_approval"`
	VotingType      VotingType `gorm:"not null;default:0" json:"voting_type"` // 0 for single, 1 for multiple
	MaxVotes        *int       `json:"max_votes,omitempty"`                   // only meaningful when VotingType is MultipleVote

	Suggestions []Suggestion `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"suggestions,omitempty"`
}

package models

import (
	"time"
)

// SuggestionStatus defines the approval state of a suggestion
type SuggestionStatus int

const (
	StatusPending  SuggestionStatus = iota // 0: awaiting admin review
	StatusApproved                         // 1: visible and votable
	StatusRejected                         // 2: terminal, never visible
)

// String returns the lowercase name used in API payloads.
func (s SuggestionStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	}
	return "unknown"
}

// Suggestion represents a user-submitted text item on a board.
// Visible is derived but stored: true iff the suggestion is Approved,
// or Pending on a board that does not require approval.
type Suggestion struct {
	ID                uint             `gorm:"primaryKey" json:"id"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	BoardID           uint             `gorm:"not null;index" json:"board_id"` // fixed at creation
	Text              string           `gorm:"type:text;not null" json:"text"`
	SubmittedByUserID uint             `gorm:"not null;index" json:"submitted_by_user_id"` // fixed at creation
	Status            SuggestionStatus `gorm:"not null;default:0" json:"status"`
	Visible           bool             `gorm:"not null;default:true" json:"visible"`

	Votes []Vote `gorm:"foreignKey:SuggestionID;constraint:OnDelete:CASCADE" json:"votes,omitempty"`
}

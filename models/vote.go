package models

import (
	"time"
)

// Vote is a single user's endorsement of one suggestion. The composite
// unique index on (suggestion_id, user_id) is the storage-level guarantee
// that at most one vote exists per pair; the application-level duplicate
// check is only a fast path in front of it.
type Vote struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	SuggestionID uint      `gorm:"not null;uniqueIndex:idx_votes_suggestion_user" json:"suggestion_id"`
	UserID       uint      `gorm:"not null;uniqueIndex:idx_votes_suggestion_user" json:"user_id"`
}

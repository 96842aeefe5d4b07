package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"suggestion-board-backend/models"
	"suggestion-board-backend/repository"

	"gorm.io/gorm"
)

// Viewer is the resolved identity the projector and visibility rules
// consume. The core never authenticates; the auth middleware supplies this.
// A nil *Viewer means an anonymous request.
type Viewer struct {
	UserID  uint
	IsAdmin bool
}

// SuggestionView is one suggestion annotated for a particular viewer
type SuggestionView struct {
	ID                uint      `json:"id"`
	Text              string    `json:"text"`
	SubmittedByUserID uint      `json:"submitted_by_user_id"`
	SubmittedAt       time.Time `json:"submitted_at"`
	Status            string    `json:"status"`
	Visible           bool      `json:"visible"`
	VoteCount         int       `json:"vote_count"`
	UserHasVoted      bool      `json:"user_has_voted"`
}

// BoardView is the read-facing aggregate for one board. Tallies are always
// computed from vote rows, never stored as counters, so they cannot drift.
type BoardView struct {
	ID              uint              `json:"id"`
	Title           string            `json:"title"`
	Description     string            `json:"description"`
	SuggestionsOpen bool              `json:"suggestions_open"`
	VotingOpen      bool              `json:"voting_open"`
	Closed          bool              `json:"closed"`
	RequireApproval bool              `json:"require_approval"`
	VotingType      models.VotingType `json:"voting_type"`
	MaxVotes        *int              `json:"max_votes,omitempty"`
	SuggestionCount int               `json:"suggestion_count"`
	TotalVotes      int               `json:"total_votes"`
	Suggestions     []SuggestionView  `json:"suggestions"`
}

// BoardViewProjector assembles viewer-scoped board views from stored state
type BoardViewProjector struct {
	boardRepo      repository.BoardRepository
	suggestionRepo repository.SuggestionRepository
	voteRepo       repository.VoteRepository
}

// NewBoardViewProjector creates a projector
func NewBoardViewProjector(
	boardRepo repository.BoardRepository,
	suggestionRepo repository.SuggestionRepository,
	voteRepo repository.VoteRepository,
) *BoardViewProjector {
	return &BoardViewProjector{
		boardRepo:      boardRepo,
		suggestionRepo: suggestionRepo,
		voteRepo:       voteRepo,
	}
}

// ProjectBoardView filters suggestions by the visibility rule for the
// viewer, sorts them by descending vote count (ties keep submission order,
// oldest first), annotates per-viewer vote flags and computes board
// aggregates over approved, visible suggestions only.
func (p *BoardViewProjector) ProjectBoardView(ctx context.Context, boardID uint, viewer *Viewer) (*BoardView, error) {
	board, err := p.boardRepo.GetBoardByID(ctx, boardID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBoardNotFound
		}
		return nil, err
	}

	// Suggestions arrive in submission order; the stable sort below keeps
	// that order among equal vote counts.
	suggestions, err := p.suggestionRepo.GetSuggestionsByBoardID(ctx, boardID)
	if err != nil {
		return nil, err
	}

	view := &BoardView{
		ID:              board.ID,
		Title:           board.Title,
		Description:     board.Description,
		SuggestionsOpen: board.SuggestionsOpen,
		VotingOpen:      board.VotingOpen,
		Closed:          board.Closed,
		RequireApproval: board.RequireApproval,
		VotingType:      board.VotingType,
		MaxVotes:        board.MaxVotes,
		Suggestions:     []SuggestionView{},
	}

	for _, suggestion := range suggestions {
		votes, err := p.voteRepo.GetVotesBySuggestionID(ctx, suggestion.ID)
		if err != nil {
			return nil, err
		}

		if suggestion.Status == models.StatusApproved && suggestion.Visible {
			view.SuggestionCount++
			view.TotalVotes += len(votes)
		}

		if !VisibleTo(suggestion, viewer) {
			continue
		}

		sv := SuggestionView{
			ID:                suggestion.ID,
			Text:              suggestion.Text,
			SubmittedByUserID: suggestion.SubmittedByUserID,
			SubmittedAt:       suggestion.CreatedAt,
			Status:            suggestion.Status.String(),
			Visible:           suggestion.Visible,
			VoteCount:         len(votes),
		}
		if viewer != nil {
			for _, vote := range votes {
				if vote.UserID == viewer.UserID {
					sv.UserHasVoted = true
					break
				}
			}
		}
		view.Suggestions = append(view.Suggestions, sv)
	}

	sort.SliceStable(view.Suggestions, func(i, j int) bool {
		return view.Suggestions[i].VoteCount > view.Suggestions[j].VoteCount
	})

	return view, nil
}

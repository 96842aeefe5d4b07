package service

// Event types published after successful mutations. Downstream consumers
// (cache invalidation, audit logs) subscribe via the mq package; publishing
// is fire-and-forget and never fails a request.
const (
	EventBoardCreated        = "board.created"
	EventBoardUpdated        = "board.updated"
	EventBoardDeleted        = "board.deleted"
	EventSuggestionSubmitted = "suggestion.submitted"
	EventSuggestionApproved  = "suggestion.approved"
	EventSuggestionRejected  = "suggestion.rejected"
	EventSuggestionDeleted   = "suggestion.deleted"
	EventVoteCast            = "vote.cast"
	EventVoteRetracted       = "vote.retracted"
)

// EventPublisher receives board events. A nil publisher is allowed
// everywhere and simply disables publishing.
type EventPublisher interface {
	Publish(eventType string, boardID, suggestionID, userID uint)
}

package mq

import (
	"context"
	"log"
	"sync"
	"time"

	"suggestion-board-backend/cache"
	"suggestion-board-backend/service"
)

// EventPublisher bridges the services to the Redis queue. It satisfies
// service.EventPublisher and drops events when the queue is unavailable,
// so core operations never fail because of it.
type EventPublisher struct {
	queue *RedisEventQueue
}

var (
	publisher     *EventPublisher
	publisherOnce sync.Once
)

// InitEventQueue connects the queue to the shared Redis client and starts
// the consumer with the given handler. Returns nil when Redis is down.
func InitEventQueue(handler EventHandler) *EventPublisher {
	publisherOnce.Do(func() {
		client, err := cache.GetClient()
		if err != nil {
			log.Printf("event queue disabled: %v", err)
			return
		}

		queue := NewRedisEventQueue(client)
		queue.RegisterHandler(handler)
		if err := queue.Start(); err != nil {
			log.Printf("failed to start event consumer: %v", err)
			return
		}

		publisher = &EventPublisher{queue: queue}
	})

	return publisher
}

// GetPublisher returns the publisher, or nil when the queue is disabled.
// Services accept a nil publisher and skip publishing.
func GetPublisher() *EventPublisher {
	return publisher
}

// Publish implements service.EventPublisher.
func (p *EventPublisher) Publish(eventType string, boardID, suggestionID, userID uint) {
	if p == nil || p.queue == nil {
		return
	}

	err := p.queue.Enqueue(Event{
		EventType:    eventType,
		BoardID:      boardID,
		SuggestionID: suggestionID,
		UserID:       userID,
		Timestamp:    time.Now().Unix(),
	})
	if err != nil {
		log.Printf("failed to publish %s event for board %d: %v", eventType, boardID, err)
	}
}

// Stats exposes queue lengths for the health endpoint.
func (p *EventPublisher) Stats() map[string]int64 {
	if p == nil || p.queue == nil {
		return nil
	}
	return p.queue.GetQueueStats()
}

// RetryDeadLetters requeues dead-lettered events. Admin operation.
func (p *EventPublisher) RetryDeadLetters() error {
	if p == nil || p.queue == nil {
		return cache.ErrRedisNotAvailable
	}
	return p.queue.RetryDeadLetters()
}

// Close stops the consumer.
func (p *EventPublisher) Close() {
	if p == nil || p.queue == nil {
		return
	}
	p.queue.Stop()
}

// InvalidationHandler returns the default consumer: it drops the cached
// views of the board the event touched.
func InvalidationHandler(viewCache *cache.BoardViewCache) EventHandler {
	return func(event Event) error {
		if viewCache == nil || event.BoardID == 0 {
			return nil
		}
		viewCache.InvalidateBoard(context.Background(), event.BoardID)
		return nil
	}
}

var _ service.EventPublisher = (*EventPublisher)(nil)

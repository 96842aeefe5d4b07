package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Queue key constants. The processing queue holds in-flight messages so a
// crashed consumer's work can be requeued by the timeout checker.
const (
	MainQueueName       = "board_events"
	ProcessingQueueName = "board_events_processing"
	DeadLetterQueueName = "board_events_dead_letter"
	RetriesHashName     = "board_event_retries"
	processedSetName    = "board_event_ids"
)

// Event is a domain event flowing through the queue. SuggestionID and
// UserID are zero when the event type does not involve them.
type Event struct {
	EventType    string `json:"eventType"`
	BoardID      uint   `json:"boardId"`
	SuggestionID uint   `json:"suggestionId,omitempty"`
	UserID       uint   `json:"userId,omitempty"`
	Timestamp    int64  `json:"timestamp"`
	MessageID    string `json:"messageId"`
}

// EventHandler processes one dequeued event. A non-nil error triggers a
// retry, then the dead-letter queue.
type EventHandler func(event Event) error

// RedisEventQueue is a Redis-list message queue with a processing queue,
// bounded retries and a dead-letter queue.
type RedisEventQueue struct {
	client            *redis.Client
	ctx               context.Context
	handler           EventHandler
	isRunning         bool
	stopChan          chan struct{}
	wg                sync.WaitGroup
	processingTimeout time.Duration
	retryDelay        time.Duration
	maxRetries        int
}

// NewRedisEventQueue creates a queue on the given client.
func NewRedisEventQueue(client *redis.Client) *RedisEventQueue {
	return &RedisEventQueue{
		client:            client,
		ctx:               context.Background(),
		stopChan:          make(chan struct{}),
		processingTimeout: 5 * time.Minute,
		retryDelay:        30 * time.Second,
		maxRetries:        3,
	}
}

// RegisterHandler sets the consumer callback. Must be called before Start.
func (q *RedisEventQueue) RegisterHandler(handler EventHandler) {
	q.handler = handler
}

// Enqueue publishes an event to the main queue. The message ID is recorded
// in a set so an at-least-once producer retry does not double-enqueue.
func (q *RedisEventQueue) Enqueue(event Event) error {
	if event.MessageID == "" {
		event.MessageID = uuid.New().String()
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().Unix()
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %v", err)
	}

	exists, err := q.client.SIsMember(q.ctx, processedSetName, event.MessageID).Result()
	if err != nil {
		log.Printf("event dedup check failed: %v", err)
	} else if exists {
		log.Printf("event %s already enqueued, skipping", event.MessageID)
		return nil
	}

	if err := q.client.SAdd(q.ctx, processedSetName, event.MessageID).Err(); err != nil {
		log.Printf("failed to record event id %s: %v", event.MessageID, err)
	}
	q.client.Expire(q.ctx, processedSetName, 48*time.Hour)

	if err := q.client.LPush(q.ctx, MainQueueName, jsonData).Err(); err != nil {
		return fmt.Errorf("failed to enqueue event: %v", err)
	}

	return nil
}

// Start launches the consumer loop and the in-flight timeout checker.
func (q *RedisEventQueue) Start() error {
	if q.handler == nil {
		return fmt.Errorf("event handler not registered")
	}
	if q.isRunning {
		return nil
	}

	q.isRunning = true

	q.wg.Add(1)
	go q.consumeLoop()

	q.wg.Add(1)
	go q.timeoutCheckLoop()

	log.Println("board event consumer started")
	return nil
}

// Stop shuts down the consumer goroutines and waits for them.
func (q *RedisEventQueue) Stop() {
	if !q.isRunning {
		return
	}

	close(q.stopChan)
	q.wg.Wait()
	q.isRunning = false
	log.Println("board event consumer stopped")
}

func (q *RedisEventQueue) consumeLoop() {
	defer q.wg.Done()

	for {
		select {
		case <-q.stopChan:
			return
		default:
			// BRPOPLPUSH moves the message into the processing queue in
			// one step, so it is never lost between pop and handle.
			result, err := q.client.BRPopLPush(q.ctx, MainQueueName, ProcessingQueueName, 1*time.Second).Result()
			if err != nil {
				if err != redis.Nil {
					log.Printf("failed to dequeue event: %v", err)
				}
				continue
			}

			go q.processMessage(result)
		}
	}
}

func (q *RedisEventQueue) timeoutCheckLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-q.stopChan:
			return
		case <-ticker.C:
			q.checkTimeouts()
		}
	}
}

// checkTimeouts requeues in-flight messages whose consumer presumably died.
func (q *RedisEventQueue) checkTimeouts() {
	messages, err := q.client.LRange(q.ctx, ProcessingQueueName, 0, -1).Result()
	if err != nil {
		log.Printf("failed to scan processing queue: %v", err)
		return
	}

	now := time.Now().Unix()

	for _, msgData := range messages {
		var event Event
		if err := json.Unmarshal([]byte(msgData), &event); err != nil {
			log.Printf("failed to decode in-flight event: %v", err)
			continue
		}

		if now-event.Timestamp <= int64(q.processingTimeout.Seconds()) {
			continue
		}

		retries, _ := q.client.HGet(q.ctx, RetriesHashName, event.MessageID).Int()
		if retries >= q.maxRetries {
			log.Printf("event %s exceeded max retries, moving to dead letter queue", event.MessageID)
			q.moveToDeadLetter(msgData)
			continue
		}

		q.client.HIncrBy(q.ctx, RetriesHashName, event.MessageID, 1)

		event.Timestamp = now
		updatedData, _ := json.Marshal(event)

		q.client.LRem(q.ctx, ProcessingQueueName, 1, msgData)

		time.AfterFunc(q.retryDelay, func() {
			q.client.LPush(q.ctx, MainQueueName, updatedData)
			log.Printf("event %s requeued, retry %d", event.MessageID, retries+1)
		})
	}
}

func (q *RedisEventQueue) processMessage(msgData string) {
	var event Event
	if err := json.Unmarshal([]byte(msgData), &event); err != nil {
		log.Printf("failed to decode event: %v", err)
		q.moveToDeadLetter(msgData)
		return
	}

	if err := q.handler(event); err != nil {
		log.Printf("failed to handle event %s (%s): %v", event.MessageID, event.EventType, err)

		retries, _ := q.client.HGet(q.ctx, RetriesHashName, event.MessageID).Int()
		if retries >= q.maxRetries {
			log.Printf("event %s exceeded max retries, moving to dead letter queue", event.MessageID)
			q.moveToDeadLetter(msgData)
			return
		}

		q.client.HIncrBy(q.ctx, RetriesHashName, event.MessageID, 1)

		event.Timestamp = time.Now().Unix()
		updatedData, _ := json.Marshal(event)

		time.AfterFunc(q.retryDelay, func() {
			q.client.LPush(q.ctx, MainQueueName, updatedData)
			log.Printf("event %s requeued, retry %d", event.MessageID, retries+1)
		})
	}

	q.client.LRem(q.ctx, ProcessingQueueName, 1, msgData)
}

func (q *RedisEventQueue) moveToDeadLetter(msgData string) {
	q.client.LPush(q.ctx, DeadLetterQueueName, msgData)
	q.client.LRem(q.ctx, ProcessingQueueName, 1, msgData)
}

// RetryDeadLetters moves every dead-lettered event back onto the main queue
// with a fresh retry budget.
func (q *RedisEventQueue) RetryDeadLetters() error {
	messages, err := q.client.LRange(q.ctx, DeadLetterQueueName, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("failed to read dead letter queue: %v", err)
	}

	count := 0
	for _, msgData := range messages {
		if err := q.client.LPush(q.ctx, MainQueueName, msgData).Err(); err != nil {
			log.Printf("failed to requeue dead letter: %v", err)
			continue
		}

		q.client.LRem(q.ctx, DeadLetterQueueName, 1, msgData)

		var event Event
		if json.Unmarshal([]byte(msgData), &event) == nil {
			q.client.HDel(q.ctx, RetriesHashName, event.MessageID)
		}

		count++
	}

	log.Printf("moved %d events from dead letter queue back to main queue", count)
	return nil
}

// GetQueueStats returns the length of each queue.
func (q *RedisEventQueue) GetQueueStats() map[string]int64 {
	stats := make(map[string]int64)

	mainLen, _ := q.client.LLen(q.ctx, MainQueueName).Result()
	procLen, _ := q.client.LLen(q.ctx, ProcessingQueueName).Result()
	deadLen, _ := q.client.LLen(q.ctx, DeadLetterQueueName).Result()

	stats["main_queue"] = mainLen
	stats["processing_queue"] = procLen
	stats["dead_letter_queue"] = deadLen

	return stats
}

// ClearAllQueues drops every queue and the retry hash. Test helper.
func (q *RedisEventQueue) ClearAllQueues() error {
	err := q.client.Del(q.ctx, MainQueueName, ProcessingQueueName, DeadLetterQueueName, RetriesHashName, processedSetName).Err()
	if err != nil {
		return fmt.Errorf("failed to clear queues: %v", err)
	}
	return nil
}

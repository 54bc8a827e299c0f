package notify

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/logging"
)

// QueuedNotification is a webhook payload waiting for another attempt.
type QueuedNotification struct {
	ID          string          `json:"id"`
	WebhookName string          `json:"webhook_name"`
	URL         string          `json:"url"`
	ContentType string          `json:"content_type"`
	Body        json.RawMessage `json:"body"`
	CreatedAt   time.Time       `json:"created_at"`
	NextRetry   time.Time       `json:"next_retry"`
	Attempts    int             `json:"attempts"`
	MaxRetries  int             `json:"max_retries"`
	LastError   string          `json:"last_error,omitempty"`
}

// DeliveryRecorder stores the outcome of a delivery on its webhook.
type DeliveryRecorder interface {
	RecordDelivery(name string, at time.Time, lastErr error) error
}

// RetryQueue re-sends failed webhook payloads on a backoff schedule.
type RetryQueue struct {
	mu       sync.RWMutex
	queue    []*QueuedNotification
	client   *HTTPClient
	recorder DeliveryRecorder
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	running  bool
	interval time.Duration
	now      func() time.Time

	totalQueued int
	totalSent   int
	totalFailed int
}

// NewRetryQueue creates a stopped queue. recorder may be nil.
func NewRetryQueue(client *HTTPClient, recorder DeliveryRecorder) *RetryQueue {
	ctx, cancel := context.WithCancel(context.Background())
	return &RetryQueue{
		client:   client,
		recorder: recorder,
		ctx:      ctx,
		cancel:   cancel,
		interval: config.Global.RetryQueue.CheckInterval,
		now:      time.Now,
	}
}

// Start begins processing the queue in the background.
func (q *RetryQueue) Start() {
	q.mu.Lock()
	if q.running {
		q.mu.Unlock()
		return
	}
	q.running = true
	q.mu.Unlock()

	q.wg.Add(1)
	go q.processLoop()
}

// Stop stops the processor. Pending entries are dropped with a log line.
func (q *RetryQueue) Stop() {
	q.mu.Lock()
	if !q.running {
		q.mu.Unlock()
		return
	}
	q.running = false
	pending := len(q.queue)
	q.mu.Unlock()

	q.cancel()
	q.wg.Wait()

	if pending > 0 {
		logging.Warn("retry queue stopped with pending notifications", logging.KeyCount, pending)
	}
}

// Enqueue schedules a failed payload for another attempt and returns its id.
func (q *RetryQueue) Enqueue(webhookName, url, contentType string, body []byte, maxRetries int, err error) string {
	now := q.now()
	n := &QueuedNotification{
		ID:          uuid.NewString(),
		WebhookName: webhookName,
		URL:         url,
		ContentType: contentType,
		Body:        body,
		CreatedAt:   now,
		NextRetry:   now.Add(calculateBackoff(0)),
		MaxRetries:  maxRetries,
	}
	if err != nil {
		n.LastError = err.Error()
	}

	q.mu.Lock()
	q.queue = append(q.queue, n)
	q.totalQueued++
	size := len(q.queue)
	q.mu.Unlock()

	logging.Info("notification queued for retry",
		logging.KeyWebhook, webhookName,
		"queue_size", size,
		logging.KeyError, err)
	return n.ID
}

func (q *RetryQueue) processLoop() {
	defer q.wg.Done()

	ticker := time.NewTicker(q.interval)
	defer ticker.Stop()

	for {
		select {
		case <-q.ctx.Done():
			return
		case <-ticker.C:
			q.ProcessDue()
		}
	}
}

// ProcessDue sends every entry whose retry time has come.
func (q *RetryQueue) ProcessDue() {
	now := q.now()

	q.mu.Lock()
	var ready, remaining []*QueuedNotification
	for _, n := range q.queue {
		if !n.NextRetry.After(now) {
			ready = append(ready, n)
		} else {
			remaining = append(remaining, n)
		}
	}
	q.queue = remaining
	q.mu.Unlock()

	for _, n := range ready {
		q.process(n)
	}
}

func (q *RetryQueue) process(n *QueuedNotification) {
	n.Attempts++

	logging.DebugLog("retrying notification",
		logging.KeyWebhook, n.WebhookName,
		"attempt", n.Attempts,
		"max_retries", n.MaxRetries)

	result := q.client.Send(q.ctx, n.URL, n.ContentType, n.Body)
	q.record(n.WebhookName, result.Error)

	if result.Error == nil {
		q.mu.Lock()
		q.totalSent++
		q.mu.Unlock()

		logging.Info("queued notification sent",
			logging.KeyWebhook, n.WebhookName,
			"attempts", n.Attempts,
			logging.KeyDuration, result.Duration.Milliseconds())
		return
	}

	n.LastError = result.Error.Error()
	if n.Attempts >= n.MaxRetries || !result.Retryable() {
		q.mu.Lock()
		q.totalFailed++
		q.mu.Unlock()

		logging.Warn("notification dropped after retries",
			logging.KeyWebhook, n.WebhookName,
			"attempts", n.Attempts,
			logging.KeyError, result.Error)
		return
	}

	n.NextRetry = q.now().Add(calculateBackoff(n.Attempts))

	q.mu.Lock()
	q.queue = append(q.queue, n)
	q.mu.Unlock()

	logging.DebugLog("notification re-queued",
		logging.KeyWebhook, n.WebhookName,
		"next_retry", n.NextRetry)
}

func (q *RetryQueue) record(name string, err error) {
	if q.recorder == nil {
		return
	}
	if rerr := q.recorder.RecordDelivery(name, q.now(), err); rerr != nil {
		logging.DebugLog("failed to record delivery", logging.KeyWebhook, name, logging.KeyError, rerr)
	}
}

// calculateBackoff returns the delay before retry number attempt+1.
func calculateBackoff(attempt int) time.Duration {
	backoffs := config.Global.RetryQueue.BackoffSchedule
	if len(backoffs) == 0 {
		return time.Minute
	}
	if attempt >= len(backoffs) {
		return backoffs[len(backoffs)-1]
	}
	return backoffs[attempt]
}

// QueueStats returns statistics about the retry queue.
type QueueStats struct {
	QueueSize   int `json:"queue_size"`
	TotalQueued int `json:"total_queued"`
	TotalSent   int `json:"total_sent"`
	TotalFailed int `json:"total_failed"`
}

// Stats returns current queue statistics.
func (q *RetryQueue) Stats() QueueStats {
	q.mu.RLock()
	defer q.mu.RUnlock()

	return QueueStats{
		QueueSize:   len(q.queue),
		TotalQueued: q.totalQueued,
		TotalSent:   q.totalSent,
		TotalFailed: q.totalFailed,
	}
}

// Pending returns the number of pending notifications.
func (q *RetryQueue) Pending() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.queue)
}

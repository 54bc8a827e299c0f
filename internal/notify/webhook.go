package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
)

// WebhookSource lists the webhooks a notification should go to.
type WebhookSource interface {
	ListFor(n *model.Notification) ([]*model.Webhook, error)
	DeliveryRecorder
}

// WebhookBackend posts notifications to every matching webhook.
type WebhookBackend struct {
	source WebhookSource
	client *HTTPClient
	queue  *RetryQueue
}

// NewWebhookBackend creates the backend. queue may be nil to disable retries.
func NewWebhookBackend(source WebhookSource, client *HTTPClient, queue *RetryQueue) *WebhookBackend {
	if client == nil {
		client = NewHTTPClient()
	}
	return &WebhookBackend{source: source, client: client, queue: queue}
}

// Name implements Backend.
func (b *WebhookBackend) Name() string { return "webhook" }

// DispatchResult contains the result of dispatching to a single webhook.
type DispatchResult struct {
	WebhookName string
	Success     bool
	StatusCode  int
	Duration    time.Duration
	Queued      bool
	Error       error
}

// Deliver implements Backend. Failures that may recover are queued.
func (b *WebhookBackend) Deliver(ctx context.Context, n *model.Notification) error {
	results, err := b.SendAll(ctx, n)
	if err != nil {
		return err
	}

	var errs []error
	for _, r := range results {
		if r.Error != nil && !r.Queued {
			errs = append(errs, fmt.Errorf("%s: %w", r.WebhookName, r.Error))
		}
	}
	return errors.Join(errs...)
}

// SendAll sends n to all enabled webhooks concurrently.
func (b *WebhookBackend) SendAll(ctx context.Context, n *model.Notification) ([]DispatchResult, error) {
	webhooks, err := b.source.ListFor(n)
	if err != nil {
		return nil, fmt.Errorf("failed to list webhooks: %w", err)
	}

	var wg sync.WaitGroup
	results := make([]DispatchResult, len(webhooks))
	for i, wh := range webhooks {
		wg.Add(1)
		go func(idx int, wh *model.Webhook) {
			defer wg.Done()
			results[idx] = b.send(ctx, n, wh, true)
		}(i, wh)
	}
	wg.Wait()
	return results, nil
}

// SendTo sends n to one webhook without queueing a retry.
func (b *WebhookBackend) SendTo(ctx context.Context, n *model.Notification, wh *model.Webhook) DispatchResult {
	return b.send(ctx, n, wh, false)
}

func (b *WebhookBackend) send(ctx context.Context, n *model.Notification, wh *model.Webhook, retry bool) DispatchResult {
	result := DispatchResult{WebhookName: wh.Name}
	log := logging.LoggerFromContext(ctx)

	formatter := GetFormatter(wh.Type)
	payload, err := formatter.Format(n)
	if err != nil {
		result.Error = fmt.Errorf("failed to format notification: %w", err)
		b.record(wh.Name, result.Error)
		return result
	}

	sent := b.client.Send(ctx, wh.URL, formatter.ContentType(), payload)
	result.StatusCode = sent.StatusCode
	result.Duration = sent.Duration
	result.Error = sent.Error
	result.Success = sent.Error == nil
	b.record(wh.Name, sent.Error)

	if sent.Error != nil {
		logging.WarnContext(ctx, "webhook delivery failed",
			logging.KeyWebhook, wh.Name,
			"url", logging.MaskURL(wh.URL),
			logging.KeyStatus, sent.StatusCode,
			logging.KeyError, sent.Error)
		if retry && b.queue != nil && sent.Retryable() {
			b.queue.Enqueue(wh.Name, wh.URL, formatter.ContentType(), payload, len(config.Global.RetryQueue.BackoffSchedule), sent.Error)
			result.Queued = true
		}
		return result
	}

	log.Debug("webhook delivered",
		logging.KeyWebhook, wh.Name,
		logging.KeyDuration, sent.Duration.Milliseconds())
	return result
}

func (b *WebhookBackend) record(name string, err error) {
	if rerr := b.source.RecordDelivery(name, time.Now(), err); rerr != nil {
		logging.DebugLog("failed to record delivery", logging.KeyWebhook, name, logging.KeyError, rerr)
	}
}

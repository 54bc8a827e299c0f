package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/manav03panchal/nudge/internal/config"
	"github.com/manav03panchal/nudge/internal/logging"
	"github.com/manav03panchal/nudge/internal/model"
)

// Backend delivers a notification to one channel.
type Backend interface {
	Name() string
	Deliver(ctx context.Context, n *model.Notification) error
}

// ErrHubFull is returned by TrySend when the delivery buffer is full.
var ErrHubFull = errors.New("notification buffer full")

// Hub fans notifications out to its backends on a worker goroutine.
// Send never blocks the caller and failures are only logged.
type Hub struct {
	backends []Backend
	ch       chan *model.Notification
	timeout  time.Duration

	mu       sync.Mutex
	running  bool
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	observer func(n *model.Notification, results []BackendResult)
}

// NewHub creates a hub for the given backends.
func NewHub(backends ...Backend) *Hub {
	size := config.Global.Engine.MailboxSize
	if size <= 0 {
		size = 16
	}
	return &Hub{
		backends: backends,
		ch:       make(chan *model.Notification, size),
		timeout:  config.Global.HTTP.Timeout * time.Duration(config.Global.HTTP.MaxRetries+1),
	}
}

// Backends returns the configured backend names.
func (h *Hub) Backends() []string {
	names := make([]string, 0, len(h.backends))
	for _, b := range h.backends {
		names = append(names, b.Name())
	}
	return names
}

// Observe registers fn to see the results of every delivery. Call it
// before Start.
func (h *Hub) Observe(fn func(n *model.Notification, results []BackendResult)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observer = fn
}

// Start runs the delivery worker until ctx is done or Stop is called.
func (h *Hub) Start(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	ctx, h.cancel = context.WithCancel(ctx)
	h.running = true

	h.wg.Add(1)
	go h.loop(ctx)
}

// Stop waits for the in-flight delivery and discards the rest.
func (h *Hub) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	h.cancel()
	h.mu.Unlock()

	h.wg.Wait()
}

// Send implements engine.Sender.
func (h *Hub) Send(n *model.Notification) {
	if err := h.TrySend(n); err != nil {
		logging.Warn("notification dropped",
			logging.KeyCategory, n.Category,
			logging.KeyError, err)
	}
}

// TrySend queues n for delivery.
func (h *Hub) TrySend(n *model.Notification) error {
	select {
	case h.ch <- n:
		return nil
	default:
		return ErrHubFull
	}
}

func (h *Hub) loop(ctx context.Context) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-h.ch:
			h.Deliver(ctx, n)
		}
	}
}

// BackendResult is the outcome of one backend delivery.
type BackendResult struct {
	Backend  string
	Duration time.Duration
	Error    error
}

// Deliver sends n to every backend concurrently and waits for all of them.
func (h *Hub) Deliver(ctx context.Context, n *model.Notification) []BackendResult {
	id := logging.NewDeliveryID()
	ctx = logging.WithDeliveryID(ctx, id)
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	log := logging.LoggerFromContext(ctx)

	results := make([]BackendResult, len(h.backends))
	var wg sync.WaitGroup
	for i, b := range h.backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			start := time.Now()
			err := b.Deliver(ctx, n)
			results[i] = BackendResult{Backend: b.Name(), Duration: time.Since(start), Error: err}
		}(i, b)
	}
	wg.Wait()

	for _, r := range results {
		if r.Error != nil {
			log.Warn("delivery failed",
				logging.KeyBackend, r.Backend,
				logging.KeyCategory, n.Category,
				logging.KeyError, r.Error)
			continue
		}
		log.Debug("delivered",
			logging.KeyBackend, r.Backend,
			logging.KeyCategory, n.Category,
			logging.KeyDuration, r.Duration.Milliseconds())
	}

	h.mu.Lock()
	observe := h.observer
	h.mu.Unlock()
	if observe != nil {
		observe(n, results)
	}
	return results
}

// SendTest delivers the fixed test notification synchronously.
func (h *Hub) SendTest(ctx context.Context) []BackendResult {
	return h.Deliver(ctx, model.NewTestNotification())
}

package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"bitserve/internal/domain"
	"bitserve/internal/metrics"
)

// Store persists webhook subscriptions across restarts.
type Store interface {
	Add(ctx context.Context, sub domain.WebhookSubscription) error
	List(ctx context.Context) ([]domain.WebhookSubscription, error)
}

type Config struct {
	QueueSize int           // buffered events awaiting delivery; default 1024
	Workers   int           // concurrent delivery workers; default 4
	Timeout   time.Duration // per-request timeout; default 10s
	Retry     RetryConfig
}

func (c Config) withDefaults() Config {
	if c.QueueSize <= 0 {
		c.QueueSize = 1024
	}
	if c.Workers <= 0 {
		c.Workers = 4
	}
	if c.Timeout <= 0 {
		c.Timeout = 10 * time.Second
	}
	if c.Retry.MaxAttempts <= 0 {
		c.Retry = DefaultRetryConfig()
	}
	return c
}

// Stats is a point-in-time snapshot of delivery counters.
type Stats struct {
	Delivered uint64 `json:"delivered"`
	Failed    uint64 `json:"failed"`
	Dropped   uint64 `json:"dropped"`
}

// payload is the JSON body POSTed to subscribed endpoints.
type payload struct {
	Event      domain.EventType    `json:"event"`
	InfoHash   domain.InfoHash     `json:"info_hash"`
	Torrent    domain.SessionState `json:"torrent"`
	OccurredAt time.Time           `json:"occurred_at"`
}

// Dispatcher fans lifecycle events out to registered webhook URLs. Publish
// never blocks the caller: events queue into a bounded channel and delivery
// workers drain it with per-URL retry. A full queue drops the event and
// counts the drop rather than stalling torrent operations.
type Dispatcher struct {
	cfg    Config
	client *http.Client
	store  Store // nil = in-memory subscriptions only
	logger *slog.Logger

	mu       sync.RWMutex
	subs     []domain.WebhookSubscription
	observer func(domain.LifecycleEvent)

	queue chan domain.LifecycleEvent

	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

func NewDispatcher(cfg Config, store Store, logger *slog.Logger) *Dispatcher {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		store:  store,
		logger: logger,
		queue:  make(chan domain.LifecycleEvent, cfg.QueueSize),
	}
}

// LoadSubscriptions replaces the in-memory subscription set with the
// persisted one. Called once at startup.
func (d *Dispatcher) LoadSubscriptions(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	subs, err := d.store.List(ctx)
	if err != nil {
		return fmt.Errorf("load webhook subscriptions: %w", err)
	}
	d.mu.Lock()
	d.subs = subs
	d.mu.Unlock()
	return nil
}

// Subscribe validates and registers a webhook. Registering the same
// event/URL pair twice is idempotent.
func (d *Dispatcher) Subscribe(ctx context.Context, sub domain.WebhookSubscription) error {
	if err := sub.Validate(); err != nil {
		return err
	}
	if d.store != nil {
		if err := d.store.Add(ctx, sub); err != nil {
			return fmt.Errorf("persist webhook subscription: %w", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, existing := range d.subs {
		if existing.Event == sub.Event && existing.URL == sub.URL {
			return nil
		}
	}
	d.subs = append(d.subs, sub)
	return nil
}

// Subscriptions returns a snapshot of the registered webhooks.
func (d *Dispatcher) Subscriptions() []domain.WebhookSubscription {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.WebhookSubscription, len(d.subs))
	copy(out, d.subs)
	return out
}

// SetObserver registers a callback invoked for every published event, used
// to mirror lifecycle events onto live websocket clients.
func (d *Dispatcher) SetObserver(fn func(domain.LifecycleEvent)) {
	d.mu.Lock()
	d.observer = fn
	d.mu.Unlock()
}

// Publish enqueues an event for webhook delivery. It never blocks.
func (d *Dispatcher) Publish(event domain.LifecycleEvent) {
	metrics.EventsPublishedTotal.WithLabelValues(string(event.Type)).Inc()

	d.mu.RLock()
	observer := d.observer
	d.mu.RUnlock()
	if observer != nil {
		observer(event)
	}

	select {
	case d.queue <- event:
		metrics.WebhookQueueDepth.Set(float64(len(d.queue)))
	default:
		d.dropped.Add(1)
		metrics.WebhookDroppedTotal.Inc()
		d.logger.Warn("webhook queue full, event dropped",
			"event", event.Type, "infoHash", event.InfoHash)
	}
}

// Run starts the delivery workers and blocks until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < d.cfg.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.worker(ctx)
		}()
	}
	wg.Wait()
}

func (d *Dispatcher) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.queue:
			metrics.WebhookQueueDepth.Set(float64(len(d.queue)))
			d.dispatch(ctx, event)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, event domain.LifecycleEvent) {
	d.mu.RLock()
	var targets []string
	for _, sub := range d.subs {
		if sub.Event == event.Type {
			targets = append(targets, sub.URL)
		}
	}
	d.mu.RUnlock()

	for _, url := range targets {
		if err := d.deliverWithRetry(ctx, url, event); err != nil {
			d.failed.Add(1)
			metrics.WebhookDeliveriesTotal.WithLabelValues("failed").Inc()
			d.logger.Error("webhook delivery failed",
				"url", url, "event", event.Type, "infoHash", event.InfoHash, "error", err)
			continue
		}
		d.delivered.Add(1)
		metrics.WebhookDeliveriesTotal.WithLabelValues("delivered").Inc()
	}
}

func (d *Dispatcher) deliverWithRetry(ctx context.Context, url string, event domain.LifecycleEvent) error {
	body, err := json.Marshal(payload{
		Event:      event.Type,
		InfoHash:   event.InfoHash,
		Torrent:    event.Payload,
		OccurredAt: event.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	return retryWithBackoff(ctx, d.cfg.Retry, func() error {
		return d.deliver(ctx, url, body)
	}, func(attempt int, err error) {
		metrics.WebhookRetriesTotal.Inc()
		d.logger.Debug("webhook delivery retrying",
			"url", url, "event", event.Type, "attempt", attempt, "error", err)
	})
}

func (d *Dispatcher) deliver(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// Stats reports delivery counters since startup.
func (d *Dispatcher) Stats() Stats {
	return Stats{
		Delivered: d.delivered.Load(),
		Failed:    d.failed.Load(),
		Dropped:   d.dropped.Load(),
	}
}

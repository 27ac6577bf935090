// Package webhooks delivers compliance events to registered subscribers with
// signed payloads and exponential backoff.
package webhooks

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fleetcomp/internal/metrics"
	"fleetcomp/internal/model"
	"fleetcomp/internal/store"
)

// Event types published by the service.
const (
	EventDutyStatusChanged   = "dutystatus.changed"
	EventViolationRecorded   = "violation.recorded"
	EventAssignmentBlocked   = "assignment.blocked"
	EventAssignmentCompleted = "assignment.completed"
)

// Event is the envelope posted to subscribers.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Data       any       `json:"data"`
}

type delivery struct {
	sub     model.Subscription
	body    []byte
	event   Event
	attempt int
}

// Worker fans events out to matching subscriptions. Deliveries are retried
// with exponential backoff up to maxAttempts; failures never surface to the
// request path.
type Worker struct {
	st          store.Store
	client      *http.Client
	log         *zap.Logger
	met         *metrics.Metrics
	queue       chan delivery
	maxAttempts int
	done        chan struct{}
}

// NewWorker builds a webhook worker. met may be nil.
func NewWorker(st store.Store, log *zap.Logger, met *metrics.Metrics, maxAttempts int, timeout time.Duration) *Worker {
	if log == nil {
		log = zap.NewNop()
	}
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Worker{
		st:          st,
		client:      &http.Client{Timeout: timeout},
		log:         log,
		met:         met,
		queue:       make(chan delivery, 256),
		maxAttempts: maxAttempts,
		done:        make(chan struct{}),
	}
}

// Start runs the delivery loop until ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)
		for {
			select {
			case <-ctx.Done():
				return
			case d := <-w.queue:
				w.deliver(ctx, d)
			}
		}
	}()
}

// Wait blocks until the delivery loop has exited.
func (w *Worker) Wait() { <-w.done }

// Publish enqueues the event for every subscription registered for its type.
// Enqueueing is best effort; a full queue drops with a log line.
func (w *Worker) Publish(ctx context.Context, eventType string, data any) {
	subs, err := w.st.ListSubscriptions(ctx)
	if err != nil {
		w.log.Warn("subscription list failed", zap.Error(err))
		return
	}
	ev := Event{ID: uuid.NewString(), Type: eventType, OccurredAt: time.Now().UTC(), Data: data}
	body, err := json.Marshal(ev)
	if err != nil {
		w.log.Warn("event marshal failed", zap.String("type", eventType), zap.Error(err))
		return
	}
	for _, s := range subs {
		if !subscribed(s, eventType) {
			continue
		}
		select {
		case w.queue <- delivery{sub: s, body: body, event: ev, attempt: 0}:
		default:
			w.log.Warn("webhook queue full, dropping event",
				zap.String("subscription", s.ID), zap.String("type", eventType))
			w.count("dropped")
		}
	}
}

func subscribed(s model.Subscription, eventType string) bool {
	if len(s.Events) == 0 {
		return true
	}
	for _, e := range s.Events {
		if e == eventType || e == "*" {
			return true
		}
	}
	return false
}

func (w *Worker) deliver(ctx context.Context, d delivery) {
	for d.attempt < w.maxAttempts {
		d.attempt++
		err := w.post(ctx, d)
		if err == nil {
			w.count("delivered")
			return
		}
		w.log.Warn("webhook delivery failed",
			zap.String("subscription", d.sub.ID),
			zap.String("type", d.event.Type),
			zap.Int("attempt", d.attempt),
			zap.Error(err))
		if d.attempt >= w.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(nextBackoff(d.attempt)):
		}
	}
	w.count("failed")
}

func (w *Worker) post(ctx context.Context, d delivery) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.sub.URL, bytes.NewReader(d.body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Fleetcomp-Event", d.event.Type)
	if d.sub.Secret != "" {
		req.Header.Set(SignatureHeader, Sign(d.sub.Secret, d.body))
	}
	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{code: resp.StatusCode}
	}
	return nil
}

type statusError struct{ code int }

func (e *statusError) Error() string { return http.StatusText(e.code) }

// nextBackoff doubles from 500ms per attempt, capped at 30s.
func nextBackoff(attempt int) time.Duration {
	d := 500 * time.Millisecond << (attempt - 1)
	if d > 30*time.Second {
		return 30 * time.Second
	}
	return d
}

func (w *Worker) count(result string) {
	if w.met != nil {
		w.met.WebhookDeliveries.WithLabelValues(result).Inc()
	}
}

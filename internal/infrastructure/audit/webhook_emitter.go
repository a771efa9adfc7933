package auditsink

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc"
	"github.com/valyala/bytebufferpool"

	"github.com/statline/canonical/internal/domain/audit"
	"github.com/statline/canonical/internal/platform/logging"
	"github.com/statline/canonical/internal/platform/resilience"
)

type WebhookEmitterConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

// WebhookEmitter POSTs each event to a downstream consumer. Delivery is
// fire-and-forget on a background goroutine: the resolver that produced the
// event never waits on, or fails because of, the webhook. A circuit breaker
// stops hammering a consumer that is already down.
type WebhookEmitter struct {
	client         *http.Client
	url            string
	token          string
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
	wg             conc.WaitGroup
}

func NewWebhookEmitter(cfg WebhookEmitterConfig, logger *logging.Logger) *WebhookEmitter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &WebhookEmitter{
		client:         &http.Client{Timeout: timeout},
		url:            strings.TrimSpace(cfg.URL),
		token:          strings.TrimSpace(cfg.Token),
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker(breakerCfg.FailureThreshold, breakerCfg.OpenTimeout, breakerCfg.HalfOpenMaxReq),
		circuitEnabled: breakerCfg.Enabled,
	}
}

type webhookEventPayload struct {
	EntityType      string   `json:"entity_type"`
	EntityID        string   `json:"entity_id"`
	Action          string   `json:"action"`
	MatchMethod     string   `json:"match_method"`
	MatchConfidence *float64 `json:"match_confidence,omitempty"`
	Timestamp       string   `json:"timestamp"`
}

func (e *WebhookEmitter) Emit(ctx context.Context, event audit.Event) {
	e.wg.Go(func() {
		// detach from the request context; the caller's request may finish
		// long before delivery does
		deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.client.Timeout)
		defer cancel()

		if err := e.deliver(deliverCtx, event); err != nil {
			e.logger.WarnContext(deliverCtx, "audit webhook delivery failed",
				"entity_type", event.EntityType, "entity_id", event.EntityID, "error", err)
		}
	})
}

// Close waits for in-flight deliveries. Call on shutdown.
func (e *WebhookEmitter) Close() {
	e.wg.Wait()
}

func (e *WebhookEmitter) deliver(ctx context.Context, event audit.Event) error {
	if e.url == "" {
		return crerr.New("webhook url is not configured")
	}
	if e.circuitEnabled {
		if err := e.breaker.Allow(); err != nil {
			return crerr.Wrapf(err, "circuit breaker %s", e.breaker.State())
		}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(webhookEventPayload{
		EntityType:      event.EntityType,
		EntityID:        event.EntityID,
		Action:          event.Action,
		MatchMethod:     event.MatchMethod,
		MatchConfidence: event.MatchConfidence,
		Timestamp:       event.Timestamp.UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return crerr.Wrap(err, "marshal audit event")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(buf.B))
	if err != nil {
		return crerr.Wrap(err, "create webhook request")
	}
	req.Header.Set("Content-Type", "application/json")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		e.recordFailure()
		return crerr.Wrap(err, "post audit event")
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		e.recordFailure()
		return crerr.Newf("webhook returned status %d", resp.StatusCode)
	}

	if e.circuitEnabled {
		e.breaker.RecordSuccess()
	}
	return nil
}

func (e *WebhookEmitter) recordFailure() {
	if e.circuitEnabled {
		e.breaker.RecordFailure()
	}
}

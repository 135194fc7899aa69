// Package upload transmits one spreadsheet row per sample cycle to the
// remote collaborator, with bounded exponential-backoff retry behind a
// circuit breaker. Delivery is at-least-once; rows carry the record UUID
// so the collaborator can deduplicate retried rows.
package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/croplink/fieldstation/internal/health"
	"github.com/croplink/fieldstation/internal/model"
)

// row is the flat wire record the spreadsheet collaborator appends; one
// row per upload.
type row struct {
	RecordID        string  `json:"record_id"`
	Timestamp       string  `json:"timestamp"`
	Nitrogen        float64 `json:"nitrogen"`
	Phosphorus      float64 `json:"phosphorus"`
	Potassium       float64 `json:"potassium"`
	TemperatureC    float64 `json:"temperature_c"`
	HumidityPct     float64 `json:"humidity_pct"`
	RecommendedCrop string  `json:"recommended_crop"`
}

type Config struct {
	URL    string
	APIKey string

	// MaxAttempts bounds total transmission attempts per record,
	// including the first; exhaustion marks the record Failed.
	MaxAttempts    int
	AttemptTimeout time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// Breaker settings: consecutive failures before the breaker opens,
	// and how long it stays open.
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

func (c *Config) withDefaults() Config {
	out := *c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 5
	}
	if out.AttemptTimeout <= 0 {
		out.AttemptTimeout = 10 * time.Second
	}
	if out.InitialBackoff <= 0 {
		out.InitialBackoff = 500 * time.Millisecond
	}
	if out.MaxBackoff <= 0 {
		out.MaxBackoff = 8 * time.Second
	}
	if out.BreakerFailures <= 0 {
		out.BreakerFailures = 3
	}
	if out.BreakerOpenFor <= 0 {
		out.BreakerOpenFor = 30 * time.Second
	}
	return out
}

type Client struct {
	cfg     Config
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	status  *health.Status
}

func NewClient(cfg Config, status *health.Status) (*Client, error) {
	if cfg.URL == "" {
		return nil, errors.New("upload: endpoint URL is required")
	}
	cfg = cfg.withDefaults()

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "spreadsheet",
		Timeout: cfg.BreakerOpenFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			health.BreakerStateChangesTotal.WithLabelValues(to.String()).Inc()
			log.Printf("upload: breaker %s %v -> %v", name, from, to)
		},
	})

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.AttemptTimeout},
		breaker: cb,
		status:  status,
	}, nil
}

// Send drives the record through Pending -> Attempting -> {Sent, Failed}.
// On exhaustion the record is Failed and the error is returned; the
// caller logs and discards, the process never dies over a dead link.
func (c *Client) Send(ctx context.Context, rec *model.UploadRecord) error {
	rec.State = model.DeliveryAttempting

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialBackoff
	bo.Multiplier = 2
	bo.MaxInterval = c.cfg.MaxBackoff
	bo.MaxElapsedTime = 0 // attempt cap bounds the retries, not wall time

	op := func() error {
		rec.Attempts++
		health.UploadAttemptsTotal.Inc()
		_, err := c.breaker.Execute(func() (any, error) {
			return nil, c.postRow(ctx, rec)
		})
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &model.NetworkError{Kind: model.NetworkUnreachable, Err: err}
		}
		return err
	}

	err := backoff.Retry(op, backoff.WithContext(
		backoff.WithMaxRetries(bo, uint64(c.cfg.MaxAttempts-1)), ctx))
	if err != nil {
		rec.State = model.DeliveryFailed
		health.UploadsTotal.WithLabelValues("failed").Inc()
		if c.status != nil {
			c.status.MarkUploadError()
		}
		return fmt.Errorf("upload record %s after %d attempts: %w", rec.ID, rec.Attempts, err)
	}

	rec.State = model.DeliverySent
	health.UploadsTotal.WithLabelValues("sent").Inc()
	return nil
}

// postRow performs one append-row request. Non-retryable failures (auth,
// client-side 4xx) come back wrapped in backoff.Permanent so the retry
// loop stops immediately.
func (c *Client) postRow(ctx context.Context, rec *model.UploadRecord) error {
	body, err := json.Marshal([]row{{
		RecordID:        rec.ID,
		Timestamp:       rec.Snapshot.Timestamp.UTC().Format(time.RFC3339),
		Nitrogen:        rec.Snapshot.Nitrogen,
		Phosphorus:      rec.Snapshot.Phosphorus,
		Potassium:       rec.Snapshot.Potassium,
		TemperatureC:    rec.Snapshot.TemperatureC,
		HumidityPct:     rec.Snapshot.HumidityPct,
		RecommendedCrop: rec.Recommendation.Crop,
	}})
	if err != nil {
		return backoff.Permanent(fmt.Errorf("marshal row: %w", err))
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.cfg.AttemptTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return backoff.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("apikey", c.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classifyTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return backoff.Permanent(&model.NetworkError{
			Kind: model.NetworkAuthFailure,
			Err:  fmt.Errorf("HTTP %d", resp.StatusCode),
		})
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &model.NetworkError{
			Kind: model.NetworkUnreachable,
			Err:  fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	default:
		// Remaining 4xx: the request itself is wrong; retrying the same
		// bytes cannot succeed.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return backoff.Permanent(fmt.Errorf("HTTP %d: %s", resp.StatusCode, snippet))
	}
}

func classifyTransport(err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return &model.NetworkError{Kind: model.NetworkTimeout, Err: err}
	}
	return &model.NetworkError{Kind: model.NetworkUnreachable, Err: err}
}

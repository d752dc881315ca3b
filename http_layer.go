package kaskade

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/janoshrubos/kaskade/internal/backoff"
)

// RetryCondition determines whether a network attempt should be retried.
type RetryCondition func(resp *http.Response, err error) bool

// DefaultRetryCondition retries on transport errors and 5xx responses.
func DefaultRetryCondition(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode >= 500
}

// HTTPLayer is the built-in network pipeline: it turns a request descriptor
// into an HTTP call with retries, exponential backoff, optional rate
// limiting and a circuit breaker. Non-2xx responses are returned as
// unsuccessful responses, not errors, so policy logic can branch on them.
type HTTPLayer struct {
	httpClient        *http.Client
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
	jitter            float64
	strategy          backoff.Strategy
	retryCondition    RetryCondition
	rateLimiter       *RateLimiter
	circuitBreaker    *CircuitBreaker
}

// HTTPLayerOption configures an HTTPLayer.
type HTTPLayerOption func(*HTTPLayer)

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(client *http.Client) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.httpClient = client
	}
}

// WithHTTPTimeout sets the per-attempt timeout.
func WithHTTPTimeout(d time.Duration) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.httpClient.Timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.maxRetries = n
	}
}

// WithBackoff sets the retry backoff parameters. Jitter is clamped to
// [0, 1].
func WithBackoff(initial, max time.Duration, multiplier, jitter float64) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.initialBackoff = initial
		l.maxBackoff = max
		l.backoffMultiplier = multiplier
		l.jitter = jitter
	}
}

// WithBackoffStrategy swaps the backoff algorithm.
func WithBackoffStrategy(strategy backoff.Strategy) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.strategy = strategy
	}
}

// WithRetryCondition sets a custom retry condition.
func WithRetryCondition(fn RetryCondition) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.retryCondition = fn
	}
}

// WithRateLimiter throttles the layer with a token bucket.
func WithRateLimiter(maxTokens int, refillRate time.Duration) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithCircuitBreaker sets the circuit breaker configuration.
func WithCircuitBreaker(config CircuitBreakerConfig) HTTPLayerOption {
	return func(l *HTTPLayer) {
		l.circuitBreaker = NewCircuitBreaker(config)
	}
}

// NewHTTPLayer creates an HTTPLayer with sane defaults: 30s timeout, 2
// retries, 100ms..10s exponential backoff with 10% jitter, circuit breaker
// on, no rate limiting.
func NewHTTPLayer(options ...HTTPLayerOption) *HTTPLayer {
	l := &HTTPLayer{
		httpClient:        &http.Client{Timeout: 30 * time.Second},
		maxRetries:        2,
		initialBackoff:    100 * time.Millisecond,
		maxBackoff:        10 * time.Second,
		backoffMultiplier: 2.0,
		jitter:            0.1,
		strategy:          backoff.ExponentialJitter{},
		retryCondition:    DefaultRetryCondition,
		rateLimiter:       nil,
		circuitBreaker:    NewCircuitBreaker(CircuitBreakerConfig{}),
	}
	for _, option := range options {
		option(l)
	}
	return l
}

// Execute implements Layer.
func (l *HTTPLayer) Execute(ctx context.Context, req *Request) (*Response, error) {
	data, err := bodyBytes(req.Body)
	if err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeNetwork,
			Message:   "cannot serialize request body",
			Cause:     err,
			Method:    string(req.Method()),
			URL:       req.URL(),
			Layer:     "cloud",
			Timestamp: time.Now(),
		}
	}

	var resp *http.Response
	var doErr error
	for attempt := 0; ; attempt++ {
		if l.rateLimiter != nil && !l.rateLimiter.Allow() {
			return nil, &ClientError{
				Type:      ErrorTypeRateLimit,
				Message:   "rate limit exceeded",
				Cause:     ErrRateLimited,
				Method:    string(req.Method()),
				URL:       req.URL(),
				Layer:     "cloud",
				Timestamp: time.Now(),
			}
		}
		if l.circuitBreaker != nil && !l.circuitBreaker.Allow() {
			return nil, &ClientError{
				Type:      ErrorTypeCircuitOpen,
				Message:   "circuit breaker is open",
				Cause:     ErrCircuitOpen,
				Method:    string(req.Method()),
				URL:       req.URL(),
				Layer:     "cloud",
				Timestamp: time.Now(),
			}
		}

		httpReq, err := l.buildHTTPRequest(ctx, req, data)
		if err != nil {
			return nil, err
		}

		resp, doErr = l.httpClient.Do(httpReq)

		if l.circuitBreaker != nil {
			if doErr != nil || resp.StatusCode >= 500 {
				l.circuitBreaker.RecordFailure()
			} else {
				l.circuitBreaker.RecordSuccess()
			}
		}

		if attempt < l.maxRetries && l.retryCondition(resp, doErr) {
			if resp != nil {
				io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
			delay := l.strategy.Calculate(attempt, l.initialBackoff, l.maxBackoff, l.backoffMultiplier, l.jitter)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}
		break
	}

	if doErr != nil {
		return nil, &ClientError{
			Type:      ErrorTypeNetwork,
			Message:   "network request failed",
			Cause:     doErr,
			Method:    string(req.Method()),
			URL:       req.URL(),
			Layer:     "cloud",
			Timestamp: time.Now(),
		}
	}

	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeNetwork,
			Message:   "cannot read response body",
			Cause:     err,
			Method:    string(req.Method()),
			URL:       req.URL(),
			Layer:     "cloud",
			Timestamp: time.Now(),
		}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header.Clone(),
		Data:       payload,
	}, nil
}

func (l *HTTPLayer) buildHTTPRequest(ctx context.Context, req *Request, data []byte) (*http.Request, error) {
	var body io.Reader
	if len(data) > 0 {
		body = bytes.NewReader(data)
	}
	httpReq, err := http.NewRequestWithContext(ctx, string(req.Method()), req.URL(), body)
	if err != nil {
		return nil, &ClientError{
			Type:      ErrorTypeValidation,
			Message:   "cannot build HTTP request",
			Cause:     err,
			Method:    string(req.Method()),
			URL:       req.URL(),
			Layer:     "cloud",
			Timestamp: time.Now(),
		}
	}
	req.Headers.apply(httpReq.Header)
	if accept := acceptForToken(req.ResponseType.transportToken()); accept != "" {
		httpReq.Header.Set(headerAccept, accept)
	}
	return httpReq, nil
}

// acceptForToken translates the transport response-type token to an Accept
// header override. The empty default token leaves the descriptor's own
// Accept header in place.
func acceptForToken(token string) string {
	switch token {
	case "text":
		return "text/plain, */*"
	case "document":
		return "application/xml, text/xml, */*"
	case "buffer":
		return "application/octet-stream, */*"
	default:
		return ""
	}
}

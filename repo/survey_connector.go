package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultBaseURL is the production survey service.
const DefaultBaseURL = "https://vote2.telekom.net/api/v1"

// CallObserver is notified after every remote call. status is 0 when the call
// failed before a response arrived.
type CallObserver interface {
	ObserveRemoteCall(operation string, status int, elapsed time.Duration)
}

// StatusError is returned for any non-2xx answer of the survey service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status %d: %s", e.StatusCode, e.Body)
}

// SurveyConnector talks to the remote survey service.
type SurveyConnector struct {
	baseURL       string
	apiKey        string
	adminPassword string
	httpClient    *http.Client
	observer      CallObserver
}

type ConnectorOption func(*SurveyConnector)

// WithHTTPClient replaces the default client (30s timeout).
func WithHTTPClient(c *http.Client) ConnectorOption {
	return func(sc *SurveyConnector) {
		sc.httpClient = c
	}
}

func WithCallObserver(o CallObserver) ConnectorOption {
	return func(sc *SurveyConnector) {
		sc.observer = o
	}
}

// NewSurveyConnector creates a connector. The API key and admin password are
// not checked here; a missing secret makes the remote calls fail.
func NewSurveyConnector(baseURL, apiKey, adminPassword string, opts ...ConnectorOption) *SurveyConnector {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	sc := &SurveyConnector{
		baseURL:       strings.TrimRight(baseURL, "/"),
		apiKey:        apiKey,
		adminPassword: adminPassword,
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

type requestIDKey struct{}

// WithRequestID stores the id forwarded as X-Request-ID on outbound calls.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the id stored by WithRequestID, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (sc *SurveyConnector) do(ctx context.Context, operation, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("error encoding %s request: %w", operation, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, sc.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("error building %s request: %w", operation, err)
	}
	req.Header.Set("x-api-key", sc.apiKey)
	req.Header.Set("Content-Type", "application/json")
	requestID := RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := sc.httpClient.Do(req)
	if err != nil {
		sc.observe(operation, 0, start)
		return fmt.Errorf("error calling %s: %w", operation, err)
	}
	defer resp.Body.Close()
	sc.observe(operation, resp.StatusCode, start)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading %s response: %w", operation, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("operation", operation).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("remote call")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}
	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("error decoding %s response: %w", operation, err)
	}
	return nil
}

func (sc *SurveyConnector) observe(operation string, status int, start time.Time) {
	if sc.observer != nil {
		sc.observer.ObserveRemoteCall(operation, status, time.Since(start))
	}
}

// isNotFound reports whether err is a 404 from the survey service.
func isNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

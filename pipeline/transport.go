// Copyright 2026 The Longshore Authors
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/longshore-foundation/longshore/lib/clock"
	"github.com/longshore-foundation/longshore/lib/schema/clientlog"
)

// Retry pacing for batch sends. Each failed attempt doubles the
// backoff up to the cap; the actual wait is jittered over
// [backoff/2, backoff*3/2) so clients do not thunder back in sync
// after a collector outage.
const (
	initialRetryBackoff = 1 * time.Second
	maxRetryBackoff     = 30 * time.Second
)

// errorBodyLimit caps how much of a non-2xx response body is read into
// the error message.
const errorBodyLimit = 512

// HTTPStatusError reports a non-2xx collector response.
type HTTPStatusError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body is the response body, truncated.
	Body string
}

func (e *HTTPStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("pipeline: collector returned %d", e.StatusCode)
	}
	return fmt.Sprintf("pipeline: collector returned %d: %s", e.StatusCode, e.Body)
}

// httpSender is the production BatchSender. A batch goes out as a JSON
// array of client log records in a single POST; a forced entry goes
// out as a single JSON object. Batch sends retry with jittered
// exponential backoff on the injected clock; forced sends perform
// exactly one attempt.
type httpSender struct {
	endpoint    string
	client      *http.Client
	clk         clock.Clock
	logger      *slog.Logger
	compression Compression
	userAgent   string
	source      string
	correlation string
	maxRetries  int
	timeout     time.Duration
}

func newHTTPSender(opts Options) *httpSender {
	return &httpSender{
		endpoint:    strings.TrimRight(opts.EndpointURL, "/"),
		client:      opts.HTTPClient,
		clk:         opts.Clock,
		logger:      opts.Diagnostics,
		compression: opts.Compression,
		userAgent:   opts.UserAgent,
		source:      opts.SourceContext,
		correlation: opts.CorrelationID,
		maxRetries:  opts.MaxRetryCount,
		timeout:     opts.RequestTimeout,
	}
}

// SendBatch ships the batch, retrying transient failures up to
// maxRetries additional attempts. When it returns an error the batch
// is dropped by the caller; nothing is re-queued.
func (s *httpSender) SendBatch(ctx context.Context, entries []Entry) error {
	payload := make([]clientlog.Request, len(entries))
	for i, entry := range entries {
		payload[i] = s.toRequest(entry)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("pipeline: encode batch: %w", err)
	}

	backoff := initialRetryBackoff
	for attempt := 0; ; attempt++ {
		err = s.post(ctx, body)
		if err == nil {
			return nil
		}
		if attempt >= s.maxRetries {
			return err
		}
		wait := jitter(backoff)
		s.logger.Warn("client log batch send failed",
			"error", err,
			"attempt", attempt+1,
			"retry_in", wait)
		select {
		case <-s.clk.After(wait):
		case <-ctx.Done():
			return fmt.Errorf("pipeline: batch send canceled: %w", ctx.Err())
		}
		backoff = min(backoff*2, maxRetryBackoff)
	}
}

// SendOne ships a single forced entry in exactly one attempt.
func (s *httpSender) SendOne(ctx context.Context, entry Entry) error {
	request := s.toRequest(entry)
	body, err := json.Marshal(&request)
	if err != nil {
		return fmt.Errorf("pipeline: encode forced entry: %w", err)
	}
	return s.post(ctx, body)
}

// post performs one HTTP exchange under the per-request timeout. Any
// 2xx status is success.
func (s *httpSender) post(ctx context.Context, body []byte) error {
	encoded, encoding := s.compression.encode(body)

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("pipeline: build request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")
	if encoding != "" {
		request.Header.Set("Content-Encoding", encoding)
	}
	if s.userAgent != "" {
		request.Header.Set("User-Agent", s.userAgent)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("pipeline: post client logs: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		io.Copy(io.Discard, response.Body)
		return nil
	}
	snippet, _ := io.ReadAll(io.LimitReader(response.Body, errorBodyLimit))
	return &HTTPStatusError{
		StatusCode: response.StatusCode,
		Body:       strings.TrimSpace(string(snippet)),
	}
}

// toRequest converts a captured entry to its wire form. Reserved
// context keys move to dedicated fields; everything else travels in
// additionalContext.
func (s *httpSender) toRequest(entry Entry) clientlog.Request {
	request := clientlog.Request{
		LogLevel:        entry.Level.WireName(),
		Message:         entry.Message,
		SourceContext:   s.source,
		UserAgent:       s.userAgent,
		ClientTimestamp: clientlog.Timestamp(entry.Time),
		CorrelationID:   s.correlation,
	}
	if entry.Err != nil {
		request.ExceptionMessage = entry.Err.Error()
		request.StackTrace = errorChain(entry.Err)
	}

	if len(entry.Context) == 0 {
		return request
	}
	extra := make(map[string]any, len(entry.Context))
	for key, value := range entry.Context {
		switch key {
		case FieldRequestURL:
			if s, ok := value.(string); ok {
				request.RequestURL = s
				continue
			}
		case FieldRequestMethod:
			if s, ok := value.(string); ok {
				request.RequestMethod = s
				continue
			}
		case FieldStatusCode:
			if code, ok := asInt(value); ok {
				request.StatusCode = code
				continue
			}
		case FieldCorrelationID:
			if s, ok := value.(string); ok {
				request.CorrelationID = s
				continue
			}
		}
		extra[key] = value
	}
	if len(extra) > 0 {
		request.AdditionalContext = extra
	}
	return request
}

// errorChain renders the error's unwrap chain below the top error, one
// cause per line. Returns empty for unwrapped errors: the top line is
// already in exceptionMessage.
func errorChain(err error) string {
	cause := errors.Unwrap(err)
	if cause == nil {
		return ""
	}
	var b strings.Builder
	for ; cause != nil; cause = errors.Unwrap(cause) {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(cause.Error())
	}
	return b.String()
}

// asInt widens the integer types a statusCode context value plausibly
// carries, including float64 from decoded JSON.
func asInt(value any) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case int32:
		return int(v), true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

// jitter spreads the wait uniformly over [backoff/2, backoff*3/2).
func jitter(backoff time.Duration) time.Duration {
	return backoff/2 + rand.N(backoff)
}

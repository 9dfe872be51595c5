/*
Copyright 2026 Nscale.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"
)

var (
	// ErrRetriesExhausted is returned when every attempt ended in a server
	// error or a transport failure.
	ErrRetriesExhausted = errors.New("all retry attempts failed")

	// ErrClientStatus is returned by validated calls that receive a 4xx.
	ErrClientStatus = errors.New("client error status")

	// ErrServerStatus marks a 5xx response.
	ErrServerStatus = errors.New("server error status")
)

// StatusError is a response whose status the wrapper refuses to hand back as
// a success.
type StatusError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed: %s %s (%d)", e.Method, e.Endpoint, e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode >= http.StatusInternalServerError {
		return ErrServerStatus
	}

	return ErrClientStatus
}

// Doer sends a single HTTP request, *http.Client satisfies it.
//
//go:generate mockgen -destination=mock/doer.go -package=mock . Doer
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}

	return nil
}

func (r *Response) Text() string {
	return string(r.Body)
}

// linearBackOff waits delay × n before the n-th retry.
type linearBackOff struct {
	delay   time.Duration
	retries int
}

func (b *linearBackOff) NextBackOff() time.Duration {
	b.retries++

	return b.delay * time.Duration(b.retries)
}

func (b *linearBackOff) Reset() {
	b.retries = 0
}

// RequestWrapper issues requests with logging, bounded linear-backoff retries
// on server and transport failures, and fail fast on client errors.
type RequestWrapper struct {
	doer         Doer
	header       http.Header
	maxAttempts  int
	retryDelay   time.Duration
	logger       *zap.Logger
	trace        *Trace
	logResponses bool
}

type WrapperOption func(*RequestWrapper)

// WithMaxAttempts sets the total number of attempts, including the first.
func WithMaxAttempts(n int) WrapperOption {
	return func(w *RequestWrapper) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithRetryDelay sets the base delay, the n-th retry waits n times this long.
func WithRetryDelay(d time.Duration) WrapperOption {
	return func(w *RequestWrapper) {
		if d >= 0 {
			w.retryDelay = d
		}
	}
}

func WithLogger(logger *zap.Logger) WrapperOption {
	return func(w *RequestWrapper) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithTrace records every attempt into t.
func WithTrace(t *Trace) WrapperOption {
	return func(w *RequestWrapper) {
		w.trace = t
	}
}

// WithHeader adds a header to every outbound request.
func WithHeader(key, value string) WrapperOption {
	return func(w *RequestWrapper) {
		w.header.Set(key, value)
	}
}

func WithResponseLogging(enabled bool) WrapperOption {
	return func(w *RequestWrapper) {
		w.logResponses = enabled
	}
}

func NewRequestWrapper(doer Doer, options ...WrapperOption) *RequestWrapper {
	w := &RequestWrapper{
		doer:        doer,
		header:      http.Header{},
		maxAttempts: 1,
		retryDelay:  time.Second,
		logger:      zap.NewNop(),
	}

	for _, o := range options {
		o(w)
	}

	return w
}

func (w *RequestWrapper) Get(ctx context.Context, endpoint string) (*Response, error) {
	return w.executeWithRetry(ctx, http.MethodGet, endpoint, nil)
}

func (w *RequestWrapper) Post(ctx context.Context, endpoint string, body any) (*Response, error) {
	return w.executeWithRetry(ctx, http.MethodPost, endpoint, body)
}

func (w *RequestWrapper) Put(ctx context.Context, endpoint string, body any) (*Response, error) {
	return w.executeWithRetry(ctx, http.MethodPut, endpoint, body)
}

func (w *RequestWrapper) Patch(ctx context.Context, endpoint string, body any) (*Response, error) {
	return w.executeWithRetry(ctx, http.MethodPatch, endpoint, body)
}

func (w *RequestWrapper) Delete(ctx context.Context, endpoint string) (*Response, error) {
	return w.executeWithRetry(ctx, http.MethodDelete, endpoint, nil)
}

// GetUnvalidated performs a single GET and returns whatever came back.
// Only a transport failure is an error.
func (w *RequestWrapper) GetUnvalidated(ctx context.Context, endpoint string) (*Response, error) {
	return w.executeOnce(ctx, http.MethodGet, endpoint, nil)
}

// PutUnvalidated performs a single PUT and returns whatever came back.
func (w *RequestWrapper) PutUnvalidated(ctx context.Context, endpoint string, body any) (*Response, error) {
	return w.executeOnce(ctx, http.MethodPut, endpoint, body)
}

func (w *RequestWrapper) executeOnce(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	resp, err := w.send(ctx, method, endpoint, payload, 1)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}

	return resp, nil
}

//nolint:cyclop // the retry decision table reads best in one place
func (w *RequestWrapper) executeWithRetry(ctx context.Context, method, endpoint string, body any) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	var (
		attempt   int
		last      *Response
		lastErr   error
		permanent error
	)

	operation := func() (*Response, error) {
		attempt++

		resp, err := w.send(ctx, method, endpoint, payload, attempt)
		if err != nil {
			var buildErr *requestBuildError
			if errors.As(err, &buildErr) {
				permanent = err
				return nil, backoff.Permanent(err)
			}

			last, lastErr = nil, err

			if attempt < w.maxAttempts {
				w.logger.Warn("network error, retrying",
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", w.maxAttempts),
					zap.Error(err))
			}

			return nil, err
		}

		last = resp

		if resp.StatusCode >= http.StatusInternalServerError {
			lastErr = newStatusError(method, endpoint, resp)

			if attempt < w.maxAttempts {
				w.logger.Warn("server error, retrying",
					zap.Int("status", resp.StatusCode),
					zap.Int("attempt", attempt),
					zap.Int("maxAttempts", w.maxAttempts))
			}

			return resp, lastErr
		}

		// Client errors are not transient.
		if resp.StatusCode >= http.StatusBadRequest {
			w.logFailure(method, endpoint, resp, payload)

			permanent = newStatusError(method, endpoint, resp)

			return resp, backoff.Permanent(permanent)
		}

		return resp, nil
	}

	//nolint:gosec // maxAttempts is always positive
	resp, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(&linearBackOff{delay: w.retryDelay}),
		backoff.WithMaxTries(uint(w.maxAttempts)),
		backoff.WithMaxElapsedTime(0))

	switch {
	case err == nil:
		return resp, nil
	case permanent != nil:
		return last, permanent
	case attempt >= w.maxAttempts && lastErr != nil:
		w.logger.Error("all retry attempts failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Int("attempts", attempt))

		return last, fmt.Errorf("%w: %s %s after %d attempt(s): %w", ErrRetriesExhausted, method, endpoint, attempt, lastErr)
	default:
		// Cancelled while waiting to retry.
		return last, fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
}

type requestBuildError struct {
	err error
}

func (e *requestBuildError) Error() string {
	return "creating request: " + e.err.Error()
}

func (e *requestBuildError) Unwrap() error {
	return e.err
}

// send performs one attempt, logs it and records it on the trace.
func (w *RequestWrapper) send(ctx context.Context, method, endpoint string, payload []byte, attempt int) (*Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, &requestBuildError{err: err}
	}

	traceParent := createTraceParent()

	for key, values := range w.header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	req.Header.Set("Traceparent", traceParent)
	req.Header.Set("Tracestate", "test-automation=godog")
	req.Header.Set("Accept", "application/json")

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	exchange := Exchange{
		StartedAt:   time.Now(),
		Attempt:     attempt,
		Method:      method,
		URL:         endpoint,
		TraceParent: traceParent,
	}

	if payload != nil {
		exchange.RequestBody = json.RawMessage(payload)
	}

	start := time.Now()
	resp, err := w.doer.Do(req)
	duration := time.Since(start)
	exchange.Duration = duration.String()

	if err != nil {
		exchange.Error = err.Error()
		w.record(exchange)

		w.logger.Warn("request failed",
			zap.String("method", method),
			zap.String("endpoint", endpoint),
			zap.Duration("duration", duration),
			zap.String("traceID", extractTraceID(traceParent)),
			zap.Error(err))

		return nil, fmt.Errorf("http request failed: %w", err)
	}

	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		exchange.StatusCode = resp.StatusCode
		exchange.Error = err.Error()
		w.record(exchange)

		return nil, fmt.Errorf("reading response body: %w", err)
	}

	exchange.StatusCode = resp.StatusCode
	exchange.ResponseBody = string(respBody)
	w.record(exchange)

	fields := []zap.Field{
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", duration),
	}

	if payload != nil {
		fields = append(fields, zap.ByteString("body", payload))
	}

	if attempt > 1 {
		fields = append(fields, zap.Int("retry", attempt-1))
	}

	if w.logResponses && len(respBody) > 0 {
		fields = append(fields, zap.ByteString("response", respBody))
	}

	w.logger.Info(fmt.Sprintf("[%s] %s → %d", method, endpoint, resp.StatusCode), fields...)

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       respBody,
	}, nil
}

func (w *RequestWrapper) record(e Exchange) {
	if w.trace != nil {
		w.trace.Record(e)
	}
}

// logFailure logs the full request and response of a rejected call.
func (w *RequestWrapper) logFailure(method, endpoint string, resp *Response, payload []byte) {
	fields := []zap.Field{
		zap.String("method", method),
		zap.String("endpoint", endpoint),
		zap.Int("status", resp.StatusCode),
	}

	if payload != nil {
		fields = append(fields, zap.Reflect("request", json.RawMessage(payload)))
	}

	fields = append(fields, responseField(resp.Body))

	w.logger.Error("API REQUEST FAILED", fields...)
}

func responseField(body []byte) zap.Field {
	if len(body) > 0 && json.Valid(body) {
		return zap.Reflect("response", json.RawMessage(body))
	}

	return zap.String("response", string(body))
}

func encodeBody(body any) ([]byte, error) {
	switch t := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return t, nil
	case json.RawMessage:
		return t, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}

	return data, nil
}

func newStatusError(method, endpoint string, resp *Response) *StatusError {
	return &StatusError{
		Method:     method,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}
}

/*
Copyright 2024-2025 the Unikorn Authors.
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
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Exchange is one HTTP attempt as seen by the wrapper.
type Exchange struct {
	StartedAt    time.Time       `json:"startedAt"`
	Attempt      int             `json:"attempt"`
	Method       string          `json:"method"`
	URL          string          `json:"url"`
	TraceParent  string          `json:"traceparent"`
	RequestBody  json.RawMessage `json:"requestBody,omitempty"`
	StatusCode   int             `json:"status,omitempty"`
	ResponseBody string          `json:"responseBody,omitempty"`
	Error        string          `json:"error,omitempty"`
	Duration     string          `json:"duration"`
}

// Trace records the exchanges of a single scenario. A scenario runs its steps
// sequentially so no locking is needed.
type Trace struct {
	exchanges []Exchange
}

func NewTrace() *Trace {
	return &Trace{}
}

func (t *Trace) Record(e Exchange) {
	t.exchanges = append(t.exchanges, e)
}

// Exchanges returns a copy of everything recorded so far.
func (t *Trace) Exchanges() []Exchange {
	out := make([]Exchange, len(t.exchanges))
	copy(out, t.exchanges)

	return out
}

func (t *Trace) Len() int {
	return len(t.exchanges)
}

// WriteFile saves the trace as indented JSON, creating parent directories.
func (t *Trace) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating trace directory: %w", err)
	}

	data, err := json.MarshalIndent(t.exchanges, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling trace: %w", err)
	}

	//nolint:gosec // artifacts are meant to be readable
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing trace: %w", err)
	}

	return nil
}

// generateTraceID creates a new W3C trace ID.
// A fresh trace ID per request lets a failure be found in the service logs.
func generateTraceID() string {
	bytes := make([]byte, 16)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// generateSpanID creates a new W3C span ID.
func generateSpanID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)

	return hex.EncodeToString(bytes)
}

// createTraceParent creates a W3C traceparent header value.
func createTraceParent() string {
	return fmt.Sprintf("00-%s-%s-01", generateTraceID(), generateSpanID())
}

// extractTraceID extracts the trace ID from a traceparent header value.
func extractTraceID(traceParent string) string {
	parts := strings.Split(traceParent, "-")
	if len(parts) >= 2 {
		return parts[1]
	}

	return traceParent
}

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
	"fmt"
	"net/http"
	"net/http/cookiejar"

	"go.uber.org/zap"

	"github.com/unikorn-cloud/blog-api-tests/pkg/openapi"
)

// ScenarioFixture is the authenticated HTTP context of one scenario. It owns
// its transport, cookies and headers, nothing is shared with other scenarios.
type ScenarioFixture struct {
	Client *APIClient
	Trace  *Trace

	httpClient *http.Client
	transport  *http.Transport
	closed     bool
}

// NewScenarioFixture creates the HTTP context and API client for a scenario.
// The validator may be nil to skip contract checks.
func NewScenarioFixture(config *TestConfig, logger *zap.Logger, validator *openapi.Validator) (*ScenarioFixture, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	//nolint:forcetypeassert // the default transport is always an *http.Transport
	transport := http.DefaultTransport.(*http.Transport).Clone()

	httpClient := &http.Client{
		Timeout:   config.RequestTimeout,
		Transport: transport,
		Jar:       jar,
	}

	trace := NewTrace()

	request := NewRequestWrapper(httpClient,
		WithHeader("Authorization", "Bearer "+config.AuthToken),
		WithMaxAttempts(config.MaxAttempts),
		WithRetryDelay(config.RetryDelay),
		WithLogger(logger),
		WithTrace(trace),
		WithResponseLogging(config.LogResponses))

	client := NewAPIClient(config.BaseURL, request)
	if validator != nil {
		client.WithValidator(validator)
	}

	return &ScenarioFixture{
		Client:     client,
		Trace:      trace,
		httpClient: httpClient,
		transport:  transport,
	}, nil
}

// Close releases connections and cookies. It is safe to call more than once.
func (f *ScenarioFixture) Close() {
	if f.closed {
		return
	}

	f.closed = true

	f.transport.CloseIdleConnections()
	f.httpClient.Jar = nil
}

func (f *ScenarioFixture) Closed() bool {
	return f.closed
}

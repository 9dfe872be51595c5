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

// Package api provides the HTTP plumbing of the blog API behaviour suite.
//
// # Layers
//
// Requests flow one way:
//
//	step definition -> APIClient -> RequestWrapper -> network
//
// The RequestWrapper is the only layer with behaviour of its own:
//   - every attempt is logged with method, endpoint, status and request body
//   - server errors and transport failures are retried with linear backoff,
//     the n-th retry waiting n times the configured delay
//   - client errors fail fast with a StatusError after logging the full
//     request and response
//   - the Unvalidated variants return whatever the service answered so negative
//     scenarios can assert on 4xx and 5xx statuses themselves
//
// The APIClient composes URLs and decodes JSON, optionally checking each typed
// response against the embedded contract in pkg/openapi.
//
// # Scenario isolation
//
// A ScenarioFixture owns the HTTP context of one scenario: its own transport,
// cookie jar, bearer token header and exchange Trace. It is created before the
// first step and closed after the last one on every exit path.
package api

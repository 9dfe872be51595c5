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

package openapi_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unikorn-cloud/blog-api-tests/pkg/openapi"
)

func newValidator(t *testing.T) *openapi.Validator {
	t.Helper()

	v, err := openapi.NewValidator(t.Context())
	require.NoError(t, err)

	return v
}

func TestValidResponses(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
	}{
		{"users", http.MethodGet, openapi.PathUsers, 200, `[{"id":1,"name":"Leanne Graham","username":"Bret","email":"Sincere@april.biz"}]`},
		{"missing user", http.MethodGet, openapi.PathUser, 404, `{}`},
		{"no posts", http.MethodGet, openapi.PathUserPosts, 200, `[]`},
		{"post", http.MethodGet, openapi.PathPost, 200, `{"id":1,"userId":1,"title":"t","body":"b"}`},
		{"created", http.MethodPost, openapi.PathPosts, 201, `{"id":101,"userId":1,"title":"","body":""}`},
		{"partial update", http.MethodPut, openapi.PathPost, 200, `{"id":7,"title":"only"}`},
		{"failed update without content", http.MethodPut, openapi.PathPost, 500, `TypeError`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			require.NoError(t, v.ValidateResponse(test.method, test.path, test.status, []byte(test.body)))
		})
	}
}

func TestInvalidResponses(t *testing.T) {
	t.Parallel()

	v := newValidator(t)

	tests := []struct {
		name   string
		method string
		path   string
		status int
		body   string
		err    error
	}{
		{"missing email", http.MethodGet, openapi.PathUsers, 200, `[{"id":1,"name":"n","username":"u"}]`, openapi.ErrSchemaMismatch},
		{"bad email", http.MethodGet, openapi.PathUser, 200, `{"id":1,"name":"n","username":"u","email":"nobody"}`, openapi.ErrSchemaMismatch},
		{"not empty", http.MethodGet, openapi.PathUser, 404, `{"error":"x"}`, openapi.ErrSchemaMismatch},
		{"post id zero", http.MethodGet, openapi.PathPost, 200, `{"id":0}`, openapi.ErrSchemaMismatch},
		{"not json", http.MethodGet, openapi.PathPosts, 200, `<html>`, openapi.ErrSchemaMismatch},
		{"unknown path", http.MethodGet, "/comments", 200, `[]`, openapi.ErrUnknownPath},
		{"unknown operation", http.MethodDelete, openapi.PathUsers, 200, `{}`, openapi.ErrUnknownOperation},
		{"undocumented status", http.MethodGet, openapi.PathUsers, 418, `{}`, openapi.ErrUndocumentedStatus},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()

			require.ErrorIs(t, v.ValidateResponse(test.method, test.path, test.status, []byte(test.body)), test.err)
		})
	}
}

func TestDocument(t *testing.T) {
	t.Parallel()

	require.Contains(t, string(openapi.Document()), "openapi: 3.0.3")
}

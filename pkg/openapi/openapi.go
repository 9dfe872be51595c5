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

// Package openapi holds the contract of the blog service surface the suite
// consumes, and validates responses against it.
package openapi

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Path templates as they appear in the document.
const (
	PathUsers     = "/users"
	PathUser      = "/users/{id}"
	PathUserPosts = "/users/{id}/posts"
	PathPosts     = "/posts"
	PathPost      = "/posts/{id}"
)

var (
	ErrUnknownPath        = errors.New("path not in contract")
	ErrUnknownOperation   = errors.New("operation not in contract")
	ErrUndocumentedStatus = errors.New("status not in contract")
	ErrSchemaMismatch     = errors.New("response does not match contract")
)

//go:embed blog.yaml
var document []byte

// Validator checks responses against the embedded document.
type Validator struct {
	doc *openapi3.T
}

// NewValidator loads and validates the embedded document.
func NewValidator(ctx context.Context) (*Validator, error) {
	loader := openapi3.NewLoader()

	doc, err := loader.LoadFromData(document)
	if err != nil {
		return nil, fmt.Errorf("loading contract: %w", err)
	}

	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("validating contract: %w", err)
	}

	return &Validator{
		doc: doc,
	}, nil
}

// Document returns the raw embedded document.
func Document() []byte {
	return document
}

// ValidateResponse checks that body is what the contract promises for the
// operation and status. Responses documented without content are accepted
// as is.
func (v *Validator) ValidateResponse(method, pathTemplate string, status int, body []byte) error {
	item := v.doc.Paths.Find(pathTemplate)
	if item == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPath, pathTemplate)
	}

	operation := item.GetOperation(method)
	if operation == nil {
		return fmt.Errorf("%w: %s %s", ErrUnknownOperation, method, pathTemplate)
	}

	response := operation.Responses.Status(status)
	if response == nil {
		response = operation.Responses.Default()
	}

	if response == nil || response.Value == nil {
		return fmt.Errorf("%w: %s %s (%d)", ErrUndocumentedStatus, method, pathTemplate, status)
	}

	media := response.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return fmt.Errorf("%w: %s %s (%d): %w", ErrSchemaMismatch, method, pathTemplate, status, err)
	}

	if err := media.Schema.Value.VisitJSON(decoded); err != nil {
		return fmt.Errorf("%w: %s %s (%d): %w", ErrSchemaMismatch, method, pathTemplate, status, err)
	}

	return nil
}

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

package steps

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cucumber/godog"
	. "github.com/onsi/gomega" //nolint:revive // matcher DSL

	"github.com/unikorn-cloud/blog-api-tests/test/api"
)

func (s *Scenario) registerNegativeSteps(sc *godog.ScenarioContext) {
	sc.When(`^I request a user with ID (-?\d+)$`, s.requestUser)
	sc.When(`^I request posts for user ID (-?\d+)$`, s.requestUserPosts)
	sc.When(`^I create a post with empty title and body$`, s.createEmptyPost)
	sc.When(`^I update post with ID (-?\d+)$`, s.updatePost)
	sc.When(`^I request an invalid endpoint "([^"]*)"$`, s.requestEndpoint)
	sc.Then(`^the response should return status (\d+)$`, s.responseStatusIs)
	sc.Then(`^the response body should be empty$`, s.responseBodyIsEmpty)
	sc.Then(`^the response should return an empty array$`, s.responseIsEmptyArray)
	sc.Then(`^the created post should have empty title and body$`, s.createdPostIsEmpty)
	sc.Then(`^I should receive an error message$`, s.responseHasErrorMessage)
}

func (s *Scenario) requestUser(ctx context.Context, userID int) error {
	resp, err := s.client().RawGet(ctx, fmt.Sprintf("/users/%d", userID))
	if err != nil {
		return err
	}

	s.capture(resp)

	return nil
}

func (s *Scenario) requestUserPosts(ctx context.Context, userID int) error {
	resp, err := s.client().RawGet(ctx, fmt.Sprintf("/users/%d/posts", userID))
	if err != nil {
		return err
	}

	s.capture(resp)

	return nil
}

func (s *Scenario) createEmptyPost(ctx context.Context) error {
	payload := api.NewPostPayload(1).WithTitle("").WithBody("").Build()

	resp, _, err := s.client().CreatePost(ctx, payload)
	if err != nil {
		return err
	}

	s.capture(resp)

	return nil
}

func (s *Scenario) updatePost(ctx context.Context, postID int) error {
	payload := api.NewPostPayload(1).WithTitle("Updated Title").WithBody("Updated Body").BuildUpdate()

	resp, err := s.client().RawPut(ctx, fmt.Sprintf("/posts/%d", postID), payload)
	if err != nil {
		return err
	}

	s.capture(resp)

	return nil
}

func (s *Scenario) requestEndpoint(ctx context.Context, endpoint string) error {
	resp, err := s.client().RawGet(ctx, endpoint)
	if err != nil {
		return err
	}

	s.capture(resp)

	return nil
}

func (s *Scenario) responseStatusIs(status int) error {
	if err := s.requireResponse(); err != nil {
		return err
	}

	return api.Assert(s.responseStatus, Equal(status), "response status")
}

func (s *Scenario) responseBodyIsEmpty() error {
	if err := s.requireResponse(); err != nil {
		return err
	}

	return api.Assert(s.responseBody, Equal(map[string]any{}), "response body")
}

func (s *Scenario) responseIsEmptyArray() error {
	if err := s.requireResponse(); err != nil {
		return err
	}

	return api.Assert(s.responseBody, And(BeAssignableToTypeOf([]any{}), BeEmpty()), "response body")
}

func (s *Scenario) createdPostIsEmpty() error {
	if err := s.requireResponse(); err != nil {
		return err
	}

	return api.Assert(s.responseBody, And(
		HaveKeyWithValue("title", ""),
		HaveKeyWithValue("body", ""),
	), "created post")
}

func (s *Scenario) responseHasErrorMessage() error {
	if err := s.requireResponse(); err != nil {
		return err
	}

	if err := api.Assert(s.responseBody, Not(BeNil()), "error response body"); err != nil {
		return err
	}

	if text, ok := s.responseBody.(string); ok {
		return api.Assert(text, Not(BeEmpty()), "error message")
	}

	return nil
}

// capture keeps the response for the assertion steps. The body is decoded as
// JSON where possible and kept as text otherwise.
func (s *Scenario) capture(resp *api.Response) {
	s.apiResponse = resp
	s.responseStatus = resp.StatusCode
	s.responseBody = decodeBody(resp)
}

func decodeBody(resp *api.Response) any {
	var body any
	if err := json.Unmarshal(resp.Body, &body); err != nil {
		return resp.Text()
	}

	return body
}

func (s *Scenario) requireResponse() error {
	if s.apiResponse == nil {
		return fmt.Errorf("%w: no request was made", api.ErrAssertion)
	}

	return nil
}

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

// Package steps binds the blog API scenarios to godog. Every scenario gets its
// own Scenario value, so state set by one step is only visible to later steps
// of the same scenario.
package steps

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cucumber/godog"
	"go.uber.org/zap"

	"github.com/unikorn-cloud/blog-api-tests/pkg/openapi"
	"github.com/unikorn-cloud/blog-api-tests/test/api"
	"github.com/unikorn-cloud/blog-api-tests/test/api/runner"
)

// Dependencies are shared by all scenarios and must be safe for concurrent use.
type Dependencies struct {
	Config *api.TestConfig
	Logger *zap.Logger
	// Validator is optional, without it responses are not checked against
	// the contract.
	Validator *openapi.Validator
	// Output receives the human readable step log, stdout when nil.
	Output io.Writer
}

// Scenario is the state of one running scenario.
type Scenario struct {
	deps    Dependencies
	attempt runner.Attempt
	out     io.Writer

	fixture *api.ScenarioFixture
	cancel  context.CancelFunc

	allUsers         []api.User
	selectedUser     *api.User
	userPosts        []api.Post
	selectedPost     *api.Post
	updatedPostTitle string
	created          *createdPost

	apiResponse    *api.Response
	responseStatus int
	responseBody   any
}

type createdPost struct {
	response *api.Response
	body     *api.Post
}

// InitializeScenario returns the initializer the runner calls for every
// scenario.
func InitializeScenario(deps Dependencies) runner.ScenarioInitializer {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	if deps.Output == nil {
		deps.Output = os.Stdout
	}

	return func(sc *godog.ScenarioContext, attempt runner.Attempt) {
		s := &Scenario{
			deps:    deps,
			attempt: attempt,
			out:     deps.Output,
		}

		sc.Before(s.before)
		sc.After(s.after)

		s.registerPositiveSteps(sc)
		s.registerNegativeSteps(sc)
	}
}

func (s *Scenario) before(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
	s.reset()

	logger := s.deps.Logger.With(zap.String("scenario", sc.Name), zap.Int("attempt", s.attempt.Number))

	fixture, err := api.NewScenarioFixture(s.deps.Config, logger, s.deps.Validator)
	if err != nil {
		return ctx, fmt.Errorf("creating scenario fixture: %w", err)
	}

	s.fixture = fixture

	if timeout := s.attempt.Config.Timeout; timeout > 0 {
		ctx, s.cancel = context.WithTimeout(ctx, timeout)
	}

	return ctx, nil
}

func (s *Scenario) after(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if s.fixture == nil {
		return ctx, nil
	}

	defer s.fixture.Close()

	policy := s.attempt.Config.Artifacts.Trace
	if !policy.Keep(s.attempt.Number, err != nil) || s.fixture.Trace.Len() == 0 {
		return ctx, nil
	}

	path := filepath.Join(s.attempt.Config.Artifacts.Dir, traceFileName(sc, s.attempt.Number))

	if werr := s.fixture.Trace.WriteFile(path); werr != nil {
		s.deps.Logger.Warn("writing trace", zap.String("path", path), zap.Error(werr))
		return ctx, nil
	}

	if err != nil {
		api.LogWarning(s.out, "scenario %q failed, trace written to %s", sc.Name, path)
	}

	return ctx, nil
}

// client is only valid between the before and after hooks.
func (s *Scenario) client() *api.APIClient {
	return s.fixture.Client
}

func (s *Scenario) reset() {
	deps, attempt, out := s.deps, s.attempt, s.out
	*s = Scenario{
		deps:    deps,
		attempt: attempt,
		out:     out,
	}
}

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

func traceFileName(sc *godog.Scenario, attempt int) string {
	name := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(sc.Name), "-"), "-")
	if name == "" {
		name = "scenario"
	}

	return fmt.Sprintf("%s-%s-attempt-%d.trace.json", name, sc.Id, attempt)
}

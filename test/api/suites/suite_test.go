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

//nolint:testpackage,revive // dot imports are the ginkgo convention
package suites

import (
	"context"
	"net/http/httptest"
	"os"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/unikorn-cloud/blog-api-tests/pkg/fakeapi"
	"github.com/unikorn-cloud/blog-api-tests/pkg/openapi"
	"github.com/unikorn-cloud/blog-api-tests/test/api"
	"github.com/unikorn-cloud/blog-api-tests/test/api/runner"
	"github.com/unikorn-cloud/blog-api-tests/test/api/steps"
)

var (
	client    *api.APIClient
	fixture   *api.ScenarioFixture
	ctx       context.Context
	config    *api.TestConfig
	validator *openapi.Validator
	twin      *fakeapi.Server
)

var _ = BeforeSuite(func() {
	var err error

	config, err = api.LoadTestConfig()
	Expect(err).NotTo(HaveOccurred())

	validator, err = openapi.NewValidator(context.Background())
	Expect(err).NotTo(HaveOccurred())

	if config.UseTwin() {
		twin = fakeapi.New(api.NewWriterLogger(GinkgoWriter, config))

		server := httptest.NewServer(twin)
		DeferCleanup(server.Close)

		config.BaseURL = server.URL
	}
})

var _ = BeforeEach(func() {
	var err error

	fixture, err = api.NewScenarioFixture(config, api.NewWriterLogger(GinkgoWriter, config), validator)
	Expect(err).NotTo(HaveOccurred())
	DeferCleanup(fixture.Close)

	client = fixture.Client
	ctx = context.Background()

	if twin != nil {
		twin.Faults.Reset()
	}
})

// requireTwin skips specs that need fault injection when running live.
func requireTwin() {
	if twin == nil {
		Skip("requires the in-process service twin")
	}
}

func TestSuites(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "API Test Suites")
}

// TestFeatures runs the behaviour scenarios under features/ with the policy
// in runner.yaml.
func TestFeatures(t *testing.T) {
	testConfig, err := api.LoadTestConfig()
	if err != nil {
		t.Fatal(err)
	}

	runnerConfig, err := runner.LoadConfig("runner.yaml")
	if err != nil {
		t.Fatal(err)
	}

	runnerConfig.ApplyEnvironment(os.Getenv)
	testConfig.ApplyBaseURL(runnerConfig.BaseURL)

	logger, err := api.NewLogger(testConfig)
	if err != nil {
		t.Fatal(err)
	}

	defer func() { _ = logger.Sync() }()

	if testConfig.UseTwin() {
		server := httptest.NewServer(fakeapi.New(logger.Named("twin")))
		defer server.Close()

		testConfig.BaseURL = server.URL
	}

	var contract *openapi.Validator

	if testConfig.SchemaValidation {
		if contract, err = openapi.NewValidator(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	logger.Info("running behaviour suite", zap.String("baseURL", testConfig.BaseURL))

	initializer := steps.InitializeScenario(steps.Dependencies{
		Config:    testConfig,
		Logger:    logger,
		Validator: contract,
	})

	result, err := runner.New("blog-api", runnerConfig, initializer, runner.WithLogger(logger)).Run()
	if err != nil {
		t.Fatal(err)
	}

	if !result.Passed() {
		t.Fatalf("behaviour suite failed after %d attempt(s), failing features: %v", result.Attempts, result.Failed)
	}
}

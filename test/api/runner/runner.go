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

// Package runner drives godog over the feature files with the policy of a
// runner file: scenario concurrency, re-runs of failing feature files and a
// cucumber JSON file per attempt for the report generator.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/cucumber/godog"
	"go.uber.org/zap"
)

// Attempt identifies one pass over the feature files.
type Attempt struct {
	// Number starts at 1, anything above is a retry.
	Number int
	Config *Config
}

func (a Attempt) Retry() bool {
	return a.Number > 1
}

// ScenarioInitializer registers hooks and steps for one scenario.
type ScenarioInitializer func(sc *godog.ScenarioContext, attempt Attempt)

// Result summarises a run.
type Result struct {
	// Status is the godog exit status of the last attempt.
	Status   int
	Attempts int
	// Failed lists the feature files that failed on the last attempt.
	Failed []string
	// Reports are the cucumber JSON files written, one per attempt.
	Reports []string
}

func (r *Result) Passed() bool {
	return r.Status == 0
}

type Runner struct {
	name        string
	config      *Config
	initializer ScenarioInitializer
	output      io.Writer
	logger      *zap.Logger
}

type Option func(*Runner)

// WithOutput sets where console formatter output goes, stdout by default.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.output = w
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func New(name string, config *Config, initializer ScenarioInitializer, options ...Option) *Runner {
	r := &Runner{
		name:        name,
		config:      config,
		initializer: initializer,
		output:      os.Stdout,
		logger:      zap.NewNop(),
	}

	for _, o := range options {
		o(r)
	}

	return r
}

// Run executes the suite. Feature files with a failing scenario are run again
// up to the configured number of retries; only the last attempt of each
// feature decides the outcome.
func (r *Runner) Run() (*Result, error) {
	if err := r.prepareOutput(); err != nil {
		return nil, err
	}

	result := &Result{}
	paths := r.config.Features

	for number := 1; number <= r.config.Retries+1; number++ {
		attempt := Attempt{Number: number, Config: r.config}
		failures := &failureSet{}
		report := r.reportPath(number)

		suite := godog.TestSuite{
			Name: r.name,
			ScenarioInitializer: func(sc *godog.ScenarioContext) {
				r.initializer(sc, attempt)
				sc.After(failures.after)
			},
			Options: &godog.Options{
				Format:      fmt.Sprintf("%s,cucumber:%s", r.config.ConsoleFormat(), report),
				Paths:       paths,
				Tags:        r.config.Tags,
				Concurrency: r.config.Concurrency(),
				Strict:      true,
				Output:      r.output,
			},
		}

		r.logger.Info("running features",
			zap.Int("attempt", number),
			zap.Strings("paths", paths),
			zap.Int("concurrency", r.config.Concurrency()))

		result.Status = suite.Run()
		result.Attempts = number
		result.Reports = append(result.Reports, report)
		result.Failed = failures.uris()

		if result.Status == 0 {
			return result, nil
		}

		// A failure without a failing scenario (parse errors, bad options)
		// will not improve on a retry.
		if len(result.Failed) == 0 {
			return result, nil
		}

		if number <= r.config.Retries {
			r.logger.Warn("retrying failed features",
				zap.Int("attempt", number+1),
				zap.Strings("features", result.Failed))
		}

		paths = result.Failed
	}

	return result, nil
}

func (r *Runner) reportPath(attempt int) string {
	return filepath.Join(r.config.Reporter.OutputDir, fmt.Sprintf("cucumber-attempt-%d.json", attempt))
}

// prepareOutput creates the report directory and removes reports of a
// previous run so they cannot be merged into this one.
func (r *Runner) prepareOutput() error {
	if err := os.MkdirAll(r.config.Reporter.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}

	stale, err := filepath.Glob(filepath.Join(r.config.Reporter.OutputDir, "cucumber-attempt-*.json"))
	if err != nil {
		return fmt.Errorf("listing previous reports: %w", err)
	}

	for _, path := range stale {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("removing previous report: %w", err)
		}
	}

	return nil
}

// failureSet collects the feature files of failed scenarios. Scenarios finish
// concurrently.
type failureSet struct {
	lock     sync.Mutex
	features []string
}

func (f *failureSet) after(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
	if err == nil {
		return ctx, nil
	}

	f.lock.Lock()
	defer f.lock.Unlock()

	if !slices.Contains(f.features, sc.Uri) {
		f.features = append(f.features, sc.Uri)
	}

	return ctx, nil
}

func (f *failureSet) uris() []string {
	f.lock.Lock()
	defer f.lock.Unlock()

	features := slices.Clone(f.features)
	slices.Sort(features)

	return features
}

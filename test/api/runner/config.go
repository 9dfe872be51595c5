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

package runner

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// TracePolicy decides when the HTTP exchange trace of a scenario is kept.
type TracePolicy string

const (
	TraceOff             TracePolicy = "off"
	TraceOn              TracePolicy = "on"
	TraceRetainOnFailure TracePolicy = "retain-on-failure"
	TraceOnFirstRetry    TracePolicy = "on-first-retry"
)

var ErrInvalidConfig = errors.New("invalid runner configuration")

// Keep reports whether a trace from the given attempt should be saved.
func (p TracePolicy) Keep(attempt int, failed bool) bool {
	switch p {
	case TraceOn:
		return true
	case TraceRetainOnFailure:
		return failed
	case TraceOnFirstRetry:
		return attempt == 2
	case TraceOff:
		return false
	default:
		return false
	}
}

func (p TracePolicy) valid() bool {
	switch p {
	case TraceOff, TraceOn, TraceRetainOnFailure, TraceOnFirstRetry:
		return true
	}

	return false
}

type ReporterConfig struct {
	// OutputDir receives one cucumber JSON file per attempt.
	OutputDir string `yaml:"outputDir"`

	// Console is the godog formatter printed to the terminal, defaults to
	// pretty for a single worker and progress otherwise.
	Console string `yaml:"console"`
}

type ArtifactsConfig struct {
	Trace TracePolicy `yaml:"trace"`
	Dir   string      `yaml:"dir"`
}

// Overrides are applied on top of the base configuration when running in CI.
type Overrides struct {
	Retries *int `yaml:"retries"`
	Workers *int `yaml:"workers"`
}

// Config is the runner file, the equivalent of a test runner's config module.
type Config struct {
	Features      []string        `yaml:"features"`
	Steps         []string        `yaml:"steps"`
	Timeout       time.Duration   `yaml:"timeout"`
	FullyParallel bool            `yaml:"fullyParallel"`
	Retries       int             `yaml:"retries"`
	Workers       int             `yaml:"workers"`
	BaseURL       string          `yaml:"baseURL"`
	Tags          string          `yaml:"tags"`
	Reporter      ReporterConfig  `yaml:"reporter"`
	Artifacts     ArtifactsConfig `yaml:"artifacts"`
	CI            Overrides       `yaml:"ci"`
}

// DefaultConfig is used for anything the file leaves out.
func DefaultConfig() *Config {
	return &Config{
		Features:      []string{"features"},
		Steps:         []string{"test/api/steps"},
		Timeout:       30 * time.Second,
		FullyParallel: true,
		Reporter: ReporterConfig{
			OutputDir: "report",
		},
		Artifacts: ArtifactsConfig{
			Trace: TraceOnFirstRetry,
			Dir:   "test-results",
		},
	}
}

// LoadConfig reads a runner file over the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading runner config: %w", err)
	}

	return ParseConfig(data)
}

func ParseConfig(data []byte) (*Config, error) {
	config := DefaultConfig()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing runner config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyEnvironment applies the CI overrides when the CI variable is set.
func (c *Config) ApplyEnvironment(getenv func(string) string) {
	if getenv("CI") == "" {
		return
	}

	if c.CI.Retries != nil {
		c.Retries = *c.CI.Retries
	}

	if c.CI.Workers != nil {
		c.Workers = *c.CI.Workers
	}
}

// Concurrency is the number of scenarios godog may run at once.
func (c *Config) Concurrency() int {
	if !c.FullyParallel {
		return 1
	}

	if c.Workers > 0 {
		return c.Workers
	}

	return runtime.NumCPU()
}

// ConsoleFormat is the terminal formatter.
func (c *Config) ConsoleFormat() string {
	if c.Reporter.Console != "" {
		return c.Reporter.Console
	}

	if c.Concurrency() > 1 {
		return "progress"
	}

	return "pretty"
}

func (c *Config) validate() error {
	switch {
	case len(c.Features) == 0:
		return fmt.Errorf("%w: no feature paths", ErrInvalidConfig)
	case c.Timeout < 0:
		return fmt.Errorf("%w: negative timeout", ErrInvalidConfig)
	case c.Retries < 0:
		return fmt.Errorf("%w: negative retries", ErrInvalidConfig)
	case c.Workers < 0:
		return fmt.Errorf("%w: negative workers", ErrInvalidConfig)
	case c.Reporter.OutputDir == "":
		return fmt.Errorf("%w: reporter.outputDir is required", ErrInvalidConfig)
	case !c.Artifacts.Trace.valid():
		return fmt.Errorf("%w: unknown trace policy %q", ErrInvalidConfig, c.Artifacts.Trace)
	}

	return nil
}

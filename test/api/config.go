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
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultBaseURL is the public fake blog service.
	DefaultBaseURL = "https://jsonplaceholder.typicode.com"

	// DefaultAuthToken is attached to every request. The service does not
	// check it, it only has to be well formed.
	DefaultAuthToken = "THIS-IS-A-FAKE-TOKEN"
)

type TestConfig struct {
	BaseURL          string
	AuthToken        string
	RequestTimeout   time.Duration
	MaxAttempts      int
	RetryDelay       time.Duration
	LiveAPI          bool
	SchemaValidation bool
	DebugLogging     bool
	LogResponses     bool

	// baseURLFromEnv records whether API_BASE_URL was set explicitly, in which
	// case it wins over the runner file.
	baseURLFromEnv bool
}

// LoadTestConfig loads configuration from environment variables and .env files.
// Returns an error if a value is present but unusable.
func LoadTestConfig() (*TestConfig, error) {
	loadEnvFile()

	baseURL := os.Getenv("API_BASE_URL")

	config := &TestConfig{
		BaseURL:          baseURL,
		AuthToken:        getStringWithDefault("API_AUTH_TOKEN", DefaultAuthToken),
		RequestTimeout:   getDurationWithDefault("REQUEST_TIMEOUT", 30*time.Second),
		MaxAttempts:      getIntWithDefault("API_MAX_ATTEMPTS", 1),
		RetryDelay:       getDurationWithDefault("API_RETRY_DELAY", time.Second),
		LiveAPI:          getBoolWithDefault("LIVE_API", false),
		SchemaValidation: getBoolWithDefault("SCHEMA_VALIDATION", true),
		DebugLogging:     getBoolWithDefault("DEBUG_LOGGING", false),
		LogResponses:     getBoolWithDefault("LOG_RESPONSES", false),
		baseURLFromEnv:   baseURL != "",
	}

	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ApplyBaseURL sets the base URL from a lower precedence source, such as the
// runner file, unless API_BASE_URL was set.
func (c *TestConfig) ApplyBaseURL(baseURL string) {
	if baseURL == "" || c.baseURLFromEnv {
		return
	}

	c.BaseURL = baseURL
}

// UseTwin reports whether suites should target an in-process twin of the
// service rather than the network. An explicit API_BASE_URL always wins.
func (c *TestConfig) UseTwin() bool {
	return !c.LiveAPI && !c.baseURLFromEnv
}

func getStringWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// getDurationWithDefault gets a duration from environment variable or returns default.
func getDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}

	return duration
}

// getBoolWithDefault gets a boolean from environment variable or returns default.
func getBoolWithDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	boolValue, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}

	return boolValue
}

func getIntWithDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func loadEnvFile() {
	envPaths := []string{
		".env",
		"../../../.env", // From test/api/suites directory
		"../../../test/.env",
	}

	var envPath string

	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			absPath, err := filepath.Abs(path)
			if err == nil {
				envPath = absPath
				break
			}
		}
	}

	if envPath == "" {
		// .env file not found - this is OK in CI/CD where env vars are set directly
		return
	}

	// Existing environment variables take precedence over the file.
	if err := godotenv.Load(envPath); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env file from %s: %v\n", envPath, err)
	}
}

// validateConfig checks that configuration values are usable.
func validateConfig(config *TestConfig) error {
	var problems []string

	if u, err := url.Parse(config.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("API_BASE_URL %q is not an absolute URL", config.BaseURL))
	}

	if config.MaxAttempts < 1 {
		problems = append(problems, fmt.Sprintf("API_MAX_ATTEMPTS must be at least 1, got %d", config.MaxAttempts))
	}

	if config.RetryDelay < 0 {
		problems = append(problems, "API_RETRY_DELAY must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return nil
}

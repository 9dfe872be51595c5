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

// Package report turns the cucumber JSON written by the behaviour suite into
// a single browsable HTML page.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Step statuses as written by the cucumber formatter.
const (
	StatusPassed    = "passed"
	StatusFailed    = "failed"
	StatusSkipped   = "skipped"
	StatusPending   = "pending"
	StatusUndefined = "undefined"
)

var ErrNoReports = errors.New("no cucumber JSON reports found")

type Tag struct {
	Name string `json:"name"`
	Line int    `json:"line,omitempty"`
}

type Match struct {
	Location string `json:"location,omitempty"`
}

type Result struct {
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
	// Duration is in nanoseconds.
	Duration int64 `json:"duration,omitempty"`
}

type Step struct {
	Keyword string `json:"keyword"`
	Name    string `json:"name"`
	Line    int    `json:"line"`
	Match   Match  `json:"match"`
	Result  Result `json:"result"`
}

// Element is a scenario or background.
type Element struct {
	ID          string `json:"id"`
	Keyword     string `json:"keyword"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Line        int    `json:"line"`
	Type        string `json:"type"`
	Tags        []Tag  `json:"tags,omitempty"`
	Steps       []Step `json:"steps,omitempty"`
}

type Feature struct {
	URI         string    `json:"uri"`
	ID          string    `json:"id"`
	Keyword     string    `json:"keyword"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Line        int       `json:"line"`
	Tags        []Tag     `json:"tags,omitempty"`
	Elements    []Element `json:"elements,omitempty"`
}

// Status is the first step status that is not passed, or passed.
func (e Element) Status() string {
	for _, s := range e.Steps {
		if s.Result.Status != StatusPassed {
			return s.Result.Status
		}
	}

	return StatusPassed
}

func (e Element) Duration() time.Duration {
	var total int64

	for _, s := range e.Steps {
		total += s.Result.Duration
	}

	return time.Duration(total)
}

// ErrorMessage returns the error of the failing step, if any.
func (e Element) ErrorMessage() string {
	for _, s := range e.Steps {
		if s.Result.ErrorMessage != "" {
			return s.Result.ErrorMessage
		}
	}

	return ""
}

func (e Element) key() string {
	return e.ID + "@" + strconv.Itoa(e.Line)
}

// ReadFile parses a single cucumber JSON file.
func ReadFile(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var features []Feature

	// An interrupted run can leave an empty file behind.
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil, nil
	}

	if err := json.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return features, nil
}

// Load reads every JSON file in dir and merges them in run order.
func Load(dir string) ([]Feature, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoReports, dir)
	}

	sortRunOrder(paths)

	runs := make([][]Feature, 0, len(paths))

	for _, path := range paths {
		features, err := ReadFile(path)
		if err != nil {
			return nil, err
		}

		runs = append(runs, features)
	}

	return Merge(runs...), nil
}

// sortRunOrder orders files so that attempt 10 follows attempt 9.
func sortRunOrder(paths []string) {
	sort.SliceStable(paths, func(i, j int) bool {
		if len(paths[i]) != len(paths[j]) {
			return len(paths[i]) < len(paths[j])
		}

		return paths[i] < paths[j]
	})
}

// Merge combines runs by feature URI. A scenario that appears in several runs
// keeps the result of the last one, so a retry that passes replaces the
// failure before it.
func Merge(runs ...[]Feature) []Feature {
	var (
		order    []string
		features = map[string]*Feature{}
		indexes  = map[string]map[string]int{}
	)

	for _, run := range runs {
		for _, f := range run {
			merged, ok := features[f.URI]
			if !ok {
				header := f
				header.Elements = nil

				merged = &header
				features[f.URI] = merged
				indexes[f.URI] = map[string]int{}
				order = append(order, f.URI)
			}

			for _, e := range f.Elements {
				if i, ok := indexes[f.URI][e.key()]; ok {
					merged.Elements[i] = e
					continue
				}

				indexes[f.URI][e.key()] = len(merged.Elements)
				merged.Elements = append(merged.Elements, e)
			}
		}
	}

	out := make([]Feature, 0, len(order))

	for _, uri := range order {
		out = append(out, *features[uri])
	}

	return out
}

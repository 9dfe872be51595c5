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

package report

import (
	"time"
)

// Counts tallies results by status.
type Counts struct {
	Passed    int
	Failed    int
	Skipped   int
	Pending   int
	Undefined int
}

func (c *Counts) add(status string) {
	switch status {
	case StatusPassed:
		c.Passed++
	case StatusFailed:
		c.Failed++
	case StatusPending:
		c.Pending++
	case StatusUndefined:
		c.Undefined++
	default:
		c.Skipped++
	}
}

func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped + c.Pending + c.Undefined
}

// PassRate is the percentage of passed results, zero when there are none.
func (c Counts) PassRate() float64 {
	if c.Total() == 0 {
		return 0
	}

	return float64(c.Passed) * 100 / float64(c.Total())
}

type FeatureSummary struct {
	Feature
	Scenarios []Element
	Scenario  Counts
	Steps     Counts
	Duration  time.Duration
}

// Status is failed when any scenario did not pass.
func (f FeatureSummary) Status() string {
	if f.Scenario.Total() == f.Scenario.Passed {
		return StatusPassed
	}

	return StatusFailed
}

type Summary struct {
	Features  []FeatureSummary
	Scenarios Counts
	Steps     Counts
	Duration  time.Duration
}

func (s Summary) Passed() bool {
	return s.Scenarios.Total() == s.Scenarios.Passed
}

// Summarize computes scenario and step totals per feature and overall.
// Backgrounds contribute steps but are not counted as scenarios.
func Summarize(features []Feature) Summary {
	var summary Summary

	for _, f := range features {
		fs := FeatureSummary{
			Feature: f,
		}

		for _, e := range f.Elements {
			for _, s := range e.Steps {
				fs.Steps.add(s.Result.Status)
			}

			fs.Duration += e.Duration()

			if e.Type == "background" {
				continue
			}

			fs.Scenario.add(e.Status())
			fs.Scenarios = append(fs.Scenarios, e)
		}

		summary.Features = append(summary.Features, fs)
		summary.Scenarios = summary.Scenarios.plus(fs.Scenario)
		summary.Steps = summary.Steps.plus(fs.Steps)
		summary.Duration += fs.Duration
	}

	return summary
}

func (c Counts) plus(o Counts) Counts {
	return Counts{
		Passed:    c.Passed + o.Passed,
		Failed:    c.Failed + o.Failed,
		Skipped:   c.Skipped + o.Skipped,
		Pending:   c.Pending + o.Pending,
		Undefined: c.Undefined + o.Undefined,
	}
}

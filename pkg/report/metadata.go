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
	"fmt"
	"runtime"
	"time"

	"github.com/creasty/defaults"
	"github.com/google/uuid"
)

// Platform is the machine the suite ran on.
type Platform struct {
	Name    string
	Version string `default:"Latest"`
}

// Metadata describes the run a report belongs to.
type Metadata struct {
	Title       string `default:"Test Execution Report"`
	Project     string `default:"JSON Placeholder API Tests"`
	Environment string `default:"Test"`
	Device      string `default:"Local test machine"`
	Platform    Platform
	RunID       string
	ExecutedAt  time.Time
}

// NewMetadata returns metadata for a run happening now on this machine.
func NewMetadata() (*Metadata, error) {
	m := &Metadata{}

	if err := defaults.Set(m); err != nil {
		return nil, fmt.Errorf("applying metadata defaults: %w", err)
	}

	m.Platform.Name = runtime.GOOS
	m.RunID = uuid.NewString()
	m.ExecutedAt = time.Now()

	return m, nil
}

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
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"time"
)

//go:embed report.html.tmpl
var pageTemplate string

//nolint:gochecknoglobals
var page = template.Must(template.New("report").Funcs(template.FuncMap{
	"duration": formatDuration,
	"percent": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f)
	},
	"timestamp": func(t time.Time) string {
		return t.Format("2006-01-02 15:04:05 MST")
	},
}).Parse(pageTemplate))

type pageData struct {
	Metadata *Metadata
	Summary  Summary
}

// Render writes the HTML page.
func Render(w io.Writer, summary Summary, metadata *Metadata) error {
	if err := page.Execute(w, pageData{Metadata: metadata, Summary: summary}); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	return nil
}

// Options control Generate.
type Options struct {
	// JSONDir holds the cucumber JSON files of the run.
	JSONDir string
	// ReportPath is the directory index.html is written to.
	ReportPath string
	Metadata   *Metadata
}

// Generate merges the cucumber JSON of a run and writes index.html into the
// report path, returning the summary it rendered.
func Generate(options Options) (*Summary, error) {
	features, err := Load(options.JSONDir)
	if err != nil {
		return nil, err
	}

	metadata := options.Metadata
	if metadata == nil {
		if metadata, err = NewMetadata(); err != nil {
			return nil, err
		}
	}

	summary := Summarize(features)

	var buf bytes.Buffer

	if err := Render(&buf, summary, metadata); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(options.ReportPath, 0o755); err != nil {
		return nil, fmt.Errorf("creating report directory: %w", err)
	}

	//nolint:gosec // the report is meant to be readable
	if err := os.WriteFile(filepath.Join(options.ReportPath, "index.html"), buf.Bytes(), 0o644); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}

	return &summary, nil
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}

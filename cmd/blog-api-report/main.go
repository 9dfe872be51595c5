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

package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/unikorn-cloud/blog-api-tests/pkg/report"
)

type options struct {
	jsonDir     string
	reportPath  string
	title       string
	project     string
	environment string
	device      string
	failOnError bool
}

func (o *options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.jsonDir, "json-dir", "test/api/suites/report", "Directory of cucumber JSON files")
	f.StringVar(&o.reportPath, "report-path", "cucumber-html-report", "Directory to write the HTML report to")
	f.StringVar(&o.title, "title", "", "Report title")
	f.StringVar(&o.project, "project", "", "Project name")
	f.StringVar(&o.environment, "environment", "", "Environment the suite ran against")
	f.StringVar(&o.device, "device", "", "Machine the suite ran on")
	f.BoolVar(&o.failOnError, "fail-on-error", false, "Exit non-zero when any scenario failed")
}

// apply overrides the metadata defaults with any flags that were set.
func (o *options) apply(m *report.Metadata) {
	for _, override := range []struct {
		value  string
		target *string
	}{
		{o.title, &m.Title},
		{o.project, &m.Project},
		{o.environment, &m.Environment},
		{o.device, &m.Device},
	} {
		if override.value != "" {
			*override.target = override.value
		}
	}
}

func main() {
	var o options

	o.AddFlags(pflag.CommandLine)

	pflag.Parse()

	metadata, err := report.NewMetadata()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	o.apply(metadata)

	summary, err := report.Generate(report.Options{
		JSONDir:    o.jsonDir,
		ReportPath: o.reportPath,
		Metadata:   metadata,
	})
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	fmt.Printf("%s Cucumber HTML report generated in: %s/\n", color.GreenString("✅"), o.reportPath)

	if o.failOnError && !summary.Passed() {
		fmt.Println(color.RedString("%d of %d scenarios failed", summary.Scenarios.Total()-summary.Scenarios.Passed, summary.Scenarios.Total()))
		os.Exit(1)
	}
}

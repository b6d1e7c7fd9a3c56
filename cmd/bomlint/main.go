// Copyright 2025 The bomlint Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package main provides the bomlint CLI: it loads SBOM files, runs the
// validator and prints the resulting reports.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/sbomtools/bomlint"
	"github.com/sbomtools/bomlint/document"
	"github.com/sbomtools/bomlint/log"
	"github.com/sbomtools/bomlint/result"
)

// Config represents the CLI configuration.
type Config struct {
	OutputFormat string
	FailFast     bool
	Paths        []string
}

const (
	exitPassed    = 0
	exitFailed    = 1
	exitLoadError = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg := parseFlags()
	if len(cfg.Paths) == 0 {
		fmt.Fprintln(os.Stderr, "usage: bomlint [-output text|json] [-fail-fast] file...")
		return exitLoadError
	}

	code := exitPassed
	for _, path := range cfg.Paths {
		doc, err := document.FromFile(path)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			code = exitLoadError
			if cfg.FailFast {
				return code
			}
			continue
		}
		report, err := bomlint.Validate(doc)
		if err != nil {
			log.Errorf("%s: %v", path, err)
			code = exitLoadError
			if cfg.FailFast {
				return code
			}
			continue
		}
		printReport(cfg.OutputFormat, path, report)
		if report.Overall == result.OutcomeFailed && code == exitPassed {
			code = exitFailed
		}
		if report.Overall == result.OutcomeFailed && cfg.FailFast {
			return exitFailed
		}
	}
	return code
}

func parseFlags() *Config {
	cfg := &Config{}
	flag.StringVar(&cfg.OutputFormat, "output", "text", "report output format: text or json")
	flag.BoolVar(&cfg.FailFast, "fail-fast", false, "stop at the first failing document")
	flag.Parse()
	cfg.Paths = flag.Args()
	return cfg
}

func printReport(format, path string, report *result.ValidationReport) {
	if format == "json" {
		out := struct {
			Path string `json:"path"`
			*result.ValidationReport
		}{Path: path, ValidationReport: report}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			log.Errorf("encoding report for %s: %v", path, err)
		}
		return
	}

	fmt.Printf("%s: %s (%d errors, %d diagnostics)\n",
		path, report.Overall, report.ErrorCount(), len(report.Diagnostics))
	for _, d := range report.Diagnostics {
		fmt.Printf("  %s\n", d)
	}
}

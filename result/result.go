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

// Package result provides the ValidationReport struct and its diagnostics.
package result

import "fmt"

// Severity classifies a diagnostic. Only errors affect the overall outcome.
type Severity string

const (
	// SeverityError marks a violation of the document's spec dialect.
	SeverityError Severity = "error"
	// SeverityWarning marks a spec-recommended but not required condition.
	SeverityWarning Severity = "warning"
)

// Outcome is the overall classification of a validated document.
type Outcome string

const (
	// OutcomePassed means zero error-severity diagnostics were found.
	OutcomePassed Outcome = "PASSED"
	// OutcomeFailed means at least one error-severity diagnostic was found.
	OutcomeFailed Outcome = "FAILED"
)

// Diagnostic describes one violation found during validation.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	// Path locates the offending field, e.g. "components[2].hashes[0]".
	// Empty for document-level diagnostics.
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Path == "" {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Severity, d.Path, d.Message)
}

// Errorf builds an error-severity diagnostic at the given path.
func Errorf(path, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Path: path, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning-severity diagnostic at the given path.
func Warnf(path, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Path: path, Message: fmt.Sprintf(format, args...)}
}

// ValidationReport stores the outcome of validating a single document.
// Diagnostics are ordered deterministically: document walk order, with
// structural diagnostics before reference-graph ones.
type ValidationReport struct {
	Overall     Outcome      `json:"overall"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Classify sets Overall from the accumulated diagnostics. Warnings never
// gate the outcome.
func (r *ValidationReport) Classify() {
	r.Overall = OutcomePassed
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			r.Overall = OutcomeFailed
			return
		}
	}
}

// ErrorCount returns the number of error-severity diagnostics.
func (r *ValidationReport) ErrorCount() int {
	n := 0
	for _, d := range r.Diagnostics {
		if d.Severity == SeverityError {
			n++
		}
	}
	return n
}

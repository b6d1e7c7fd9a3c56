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

// Package bomlint validates SBOM documents — CycloneDX 1.3 through 1.6 and
// SPDX 2.2/2.3 — against the structural and semantic rules of their
// spec-version dialects, reporting structured diagnostics.
package bomlint

import (
	"errors"
	"fmt"

	"github.com/sbomtools/bomlint/document"
	"github.com/sbomtools/bomlint/policy"
	"github.com/sbomtools/bomlint/refgraph"
	"github.com/sbomtools/bomlint/result"
	"github.com/sbomtools/bomlint/structural"
)

// ErrNilDocument is returned when Validate is handed no parsed document
// tree. This is a programming-contract violation, not a validation
// outcome; bad document content never produces an error, only diagnostics.
var ErrNilDocument = errors.New("document must not be nil")

// Validate runs the structural validator and then, unconditionally, the
// reference-graph validator over doc, so a single run surfaces the maximal
// diagnostic set. The report is Passed iff zero error-severity diagnostics
// exist; warnings never gate the outcome.
//
// Validate has no side effects, never mutates doc, and is safe to call
// concurrently on distinct documents.
func Validate(doc *document.Document) (*result.ValidationReport, error) {
	if doc == nil {
		return nil, ErrNilDocument
	}
	switch doc.Format {
	case policy.FormatCycloneDX:
		if doc.CDX == nil {
			return nil, fmt.Errorf("%w: no CycloneDX tree", ErrNilDocument)
		}
	case policy.FormatSPDX:
		if doc.SPDX == nil {
			return nil, fmt.Errorf("%w: no SPDX tree", ErrNilDocument)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", doc.Format)
	}

	report := &result.ValidationReport{}
	dialect := doc.Dialect()
	pol, supported := policy.Lookup(dialect.Format, dialect.Version)
	switch {
	case dialect.Version == "":
		report.Diagnostics = append(report.Diagnostics,
			result.Errorf("specVersion", "required field is missing"))
	case !supported:
		// Reported once, distinctly from ordinary field errors. Structural
		// checks depend on the policy and are skipped; the reference graph
		// is version-independent and still runs below.
		report.Diagnostics = append(report.Diagnostics,
			result.Errorf("specVersion", "unsupported %s version %q", dialect.Format, dialect.Version))
	default:
		switch doc.Format {
		case policy.FormatCycloneDX:
			report.Diagnostics = append(report.Diagnostics, structural.ValidateCDX(doc.CDX, pol)...)
		case policy.FormatSPDX:
			report.Diagnostics = append(report.Diagnostics, structural.ValidateSPDX(doc.SPDX, pol)...)
		}
	}

	switch doc.Format {
	case policy.FormatCycloneDX:
		report.Diagnostics = append(report.Diagnostics, refgraph.CheckCDX(doc.CDX)...)
	case policy.FormatSPDX:
		report.Diagnostics = append(report.Diagnostics, refgraph.CheckSPDX(doc.SPDX)...)
	}

	report.Classify()
	return report, nil
}

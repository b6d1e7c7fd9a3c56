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

package bomlint_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/sbomtools/bomlint"
	"github.com/sbomtools/bomlint/document"
	"github.com/sbomtools/bomlint/policy"
	"github.com/sbomtools/bomlint/result"
)

func validate(t *testing.T, jsonDoc string) *result.ValidationReport {
	t.Helper()
	doc, err := document.DecodeCycloneDX(strings.NewReader(jsonDoc))
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}
	report, err := bomlint.Validate(doc)
	if err != nil {
		t.Fatalf("Validate() = %v, want nil error", err)
	}
	return report
}

func reportErrors(r *result.ValidationReport) []result.Diagnostic {
	var errs []result.Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == result.SeverityError {
			errs = append(errs, d)
		}
	}
	return errs
}

// Minimal documents for each supported CycloneDX version. Each carries a
// serial number so the report is free of warnings too.
var minimalCDX = map[string]string{
	"1.3": `{
		"bomFormat": "CycloneDX", "specVersion": "1.3", "version": 1,
		"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"
	}`,
	"1.4": `{
		"$schema": "http://cyclonedx.org/schema/bom-1.4.schema.json",
		"bomFormat": "CycloneDX", "specVersion": "1.4", "version": 1,
		"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"
	}`,
	"1.5": `{
		"$schema": "http://cyclonedx.org/schema/bom-1.5.schema.json",
		"bomFormat": "CycloneDX", "specVersion": "1.5", "version": 1,
		"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"
	}`,
	"1.6": `{
		"$schema": "http://cyclonedx.org/schema/bom-1.6.schema.json",
		"bomFormat": "CycloneDX", "specVersion": "1.6", "version": 1,
		"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79"
	}`,
}

func minimalSPDX(version string) *spdx.Document {
	return &spdx.Document{
		SPDXVersion:       version,
		DataLicense:       "CC0-1.0",
		SPDXIdentifier:    common.ElementID("DOCUMENT"),
		DocumentName:      "example",
		DocumentNamespace: "https://example.com/spdxdocs/example-1.0",
		CreationInfo: &spdx.CreationInfo{
			Created: "2024-01-15T10:30:00Z",
			Creators: []common.Creator{
				{CreatorType: "Tool", Creator: "bomlint-0.1"},
			},
		},
	}
}

func TestValidateMinimalDocumentPerDialect(t *testing.T) {
	for _, d := range policy.Dialects() {
		t.Run(d.String(), func(t *testing.T) {
			var report *result.ValidationReport
			switch d.Format {
			case policy.FormatCycloneDX:
				fixture, ok := minimalCDX[d.Version]
				if !ok {
					t.Fatalf("no fixture for %s", d)
				}
				report = validate(t, fixture)
			case policy.FormatSPDX:
				var err error
				report, err = bomlint.Validate(&document.Document{
					Format: policy.FormatSPDX,
					SPDX:   minimalSPDX(d.Version),
				})
				if err != nil {
					t.Fatalf("Validate() = %v, want nil error", err)
				}
			}
			if report.Overall != result.OutcomePassed {
				t.Errorf("Overall = %s, want PASSED; diagnostics: %v", report.Overall, report.Diagnostics)
			}
			if n := report.ErrorCount(); n != 0 {
				t.Errorf("ErrorCount() = %d, want 0", n)
			}
		})
	}
}

func TestValidateDanglingDependencyRef(t *testing.T) {
	report := validate(t, `{
		"$schema": "http://cyclonedx.org/schema/bom-1.6.schema.json",
		"bomFormat": "CycloneDX", "specVersion": "1.6", "version": 1,
		"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
		"components": [{"type": "application", "name": "app", "bom-ref": "main"}],
		"dependencies": [{"ref": "main", "dependsOn": ["missing-ref"]}]
	}`)
	if report.Overall != result.OutcomeFailed {
		t.Errorf("Overall = %s, want FAILED", report.Overall)
	}
	want := []result.Diagnostic{
		result.Errorf("dependencies[0].dependsOn[0]",
			`reference "missing-ref" does not resolve to a declared identifier`),
	}
	if diff := cmp.Diff(want, reportErrors(report)); diff != "" {
		t.Errorf("Validate returned unexpected errors (-want +got):\n%s", diff)
	}
}

func TestValidateComponentVersionGate(t *testing.T) {
	// The same document body, with only the declared version changed,
	// flips between FAILED and PASSED.
	body := `"serialNumber": "urn:uuid:3e671687-395b-41f5-a30f-a58921a69b79",
		"components": [{"type": "library", "name": "lib-a"}]`

	report := validate(t, `{"bomFormat": "CycloneDX", "specVersion": "1.3", "version": 1, `+body+`}`)
	want := []result.Diagnostic{
		result.Errorf("components[0].version", "required field is missing in CycloneDX 1.3"),
	}
	if diff := cmp.Diff(want, reportErrors(report)); diff != "" {
		t.Errorf("Validate(1.3) returned unexpected errors (-want +got):\n%s", diff)
	}

	report = validate(t, `{
		"$schema": "http://cyclonedx.org/schema/bom-1.4.schema.json",
		"bomFormat": "CycloneDX", "specVersion": "1.4", "version": 1, `+body+`}`)
	if report.Overall != result.OutcomePassed {
		t.Errorf("Validate(1.4) Overall = %s, want PASSED; diagnostics: %v",
			report.Overall, report.Diagnostics)
	}
}

func TestValidateUnsupportedVersion(t *testing.T) {
	// Structural checks are skipped for an unsupported dialect, but the
	// reference-graph check still runs: the duplicate bom-ref must surface.
	report := validate(t, `{
		"bomFormat": "CycloneDX", "specVersion": "1.2", "version": 1,
		"components": [
			{"type": "library", "name": "a", "bom-ref": "dup"},
			{"type": "library", "name": "b", "bom-ref": "dup"}
		]
	}`)
	want := []result.Diagnostic{
		result.Errorf("specVersion", `unsupported CycloneDX version "1.2"`),
		result.Errorf("components[1].bom-ref", `duplicate identifier "dup"`),
	}
	if diff := cmp.Diff(want, report.Diagnostics); diff != "" {
		t.Errorf("Validate returned unexpected diagnostics (-want +got):\n%s", diff)
	}
	if report.Overall != result.OutcomeFailed {
		t.Errorf("Overall = %s, want FAILED", report.Overall)
	}
}

func TestValidateMissingSpecVersion(t *testing.T) {
	report := validate(t, `{"bomFormat": "CycloneDX", "version": 1}`)
	want := []result.Diagnostic{
		result.Errorf("specVersion", "required field is missing"),
	}
	if diff := cmp.Diff(want, reportErrors(report)); diff != "" {
		t.Errorf("Validate returned unexpected errors (-want +got):\n%s", diff)
	}
}

func TestValidateWarningsNeverGate(t *testing.T) {
	// serialNumber is recommended, not required: its absence warns but the
	// document still passes.
	report := validate(t, `{
		"bomFormat": "CycloneDX", "specVersion": "1.3", "version": 1
	}`)
	if report.Overall != result.OutcomePassed {
		t.Errorf("Overall = %s, want PASSED", report.Overall)
	}
	want := []result.Diagnostic{
		result.Warnf("serialNumber", "recommended field is missing"),
	}
	if diff := cmp.Diff(want, report.Diagnostics); diff != "" {
		t.Errorf("Validate returned unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestValidateContractErrors(t *testing.T) {
	if _, err := bomlint.Validate(nil); !errors.Is(err, bomlint.ErrNilDocument) {
		t.Errorf("Validate(nil) = %v, want ErrNilDocument", err)
	}
	if _, err := bomlint.Validate(&document.Document{Format: policy.FormatCycloneDX}); !errors.Is(err, bomlint.ErrNilDocument) {
		t.Errorf("Validate(empty CycloneDX) = %v, want ErrNilDocument", err)
	}
	if _, err := bomlint.Validate(&document.Document{Format: policy.FormatSPDX}); !errors.Is(err, bomlint.ErrNilDocument) {
		t.Errorf("Validate(empty SPDX) = %v, want ErrNilDocument", err)
	}
	if _, err := bomlint.Validate(&document.Document{Format: policy.Format("Swid")}); err == nil {
		t.Error("Validate(unknown format) = nil, want error")
	}
}

func TestValidateSPDXDanglingRelationship(t *testing.T) {
	doc := minimalSPDX("SPDX-2.3")
	doc.Packages = []*spdx.Package{{
		PackageName:             "pkg-a",
		PackageSPDXIdentifier:   common.ElementID("Package-a"),
		PackageDownloadLocation: "NOASSERTION",
		PackageLicenseConcluded: "NOASSERTION",
	}}
	doc.Relationships = []*spdx.Relationship{{
		RefA:         common.DocElementID{ElementRefID: common.ElementID("DOCUMENT")},
		RefB:         common.DocElementID{ElementRefID: common.ElementID("Package-b")},
		Relationship: "DESCRIBES",
	}}
	report, err := bomlint.Validate(&document.Document{Format: policy.FormatSPDX, SPDX: doc})
	if err != nil {
		t.Fatalf("Validate() = %v, want nil error", err)
	}
	want := []result.Diagnostic{
		result.Errorf("relationships[0].relatedSpdxElement",
			`reference "Package-b" does not resolve to a declared identifier`),
	}
	if diff := cmp.Diff(want, reportErrors(report)); diff != "" {
		t.Errorf("Validate returned unexpected errors (-want +got):\n%s", diff)
	}
}

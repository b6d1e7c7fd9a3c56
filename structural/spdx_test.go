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

package structural_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/sbomtools/bomlint/policy"
	"github.com/sbomtools/bomlint/result"
	"github.com/sbomtools/bomlint/structural"
)

func spdxPolicy(t *testing.T, version string) policy.Policy {
	t.Helper()
	pol, ok := policy.Lookup(policy.FormatSPDX, version)
	if !ok {
		t.Fatalf("Lookup(SPDX, %s) = not found", version)
	}
	return pol
}

// minimalSPDX returns a document that passes SPDX-2.3 validation with no
// error diagnostics.
func minimalSPDX() *spdx.Document {
	return &spdx.Document{
		SPDXVersion:       "SPDX-2.3",
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

func TestSPDXMinimalDocumentPasses(t *testing.T) {
	got := structural.ValidateSPDX(minimalSPDX(), spdxPolicy(t, "SPDX-2.3"))
	if errs := errorsOnly(got); len(errs) != 0 {
		t.Errorf("ValidateSPDX(minimal) = %v, want no errors", errs)
	}
}

func TestSPDXDocumentFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*spdx.Document)
		want   []result.Diagnostic
	}{
		{
			name:   "version mismatch",
			mutate: func(d *spdx.Document) { d.SPDXVersion = "SPDX-2.2" },
			want: []result.Diagnostic{
				result.Errorf("spdxVersion", `must be "SPDX-2.3" for SPDX SPDX-2.3`),
			},
		},
		{
			name:   "missing version",
			mutate: func(d *spdx.Document) { d.SPDXVersion = "" },
			want: []result.Diagnostic{
				result.Errorf("spdxVersion", "required field is missing"),
			},
		},
		{
			name:   "wrong data license",
			mutate: func(d *spdx.Document) { d.DataLicense = "Apache-2.0" },
			want: []result.Diagnostic{
				result.Errorf("dataLicense", `must be "CC0-1.0", got "Apache-2.0"`),
			},
		},
		{
			name:   "wrong document identifier",
			mutate: func(d *spdx.Document) { d.SPDXIdentifier = common.ElementID("Document-1") },
			want: []result.Diagnostic{
				result.Errorf("SPDXID", "must be SPDXRef-DOCUMENT"),
			},
		},
		{
			name:   "missing name",
			mutate: func(d *spdx.Document) { d.DocumentName = "" },
			want: []result.Diagnostic{
				result.Errorf("name", "required field is missing"),
			},
		},
		{
			name:   "namespace not a URL",
			mutate: func(d *spdx.Document) { d.DocumentNamespace = "not a url" },
			want: []result.Diagnostic{
				result.Errorf("documentNamespace", `"not a url" is not a valid URL`),
			},
		},
		{
			name:   "missing creation info",
			mutate: func(d *spdx.Document) { d.CreationInfo = nil },
			want: []result.Diagnostic{
				result.Errorf("creationInfo", "required field is missing"),
			},
		},
		{
			name: "bad created timestamp",
			mutate: func(d *spdx.Document) {
				d.CreationInfo.Created = "2024-01-15"
			},
			want: []result.Diagnostic{
				result.Errorf("creationInfo.created", `"2024-01-15" is not an ISO-8601 timestamp with timezone`),
			},
		},
		{
			name: "no creators",
			mutate: func(d *spdx.Document) {
				d.CreationInfo.Creators = nil
			},
			want: []result.Diagnostic{
				result.Errorf("creationInfo.creators", "at least one creator is required"),
			},
		},
		{
			name: "unknown creator prefix",
			mutate: func(d *spdx.Document) {
				d.CreationInfo.Creators = []common.Creator{
					{CreatorType: "Robot", Creator: "bomlint-0.1"},
				}
			},
			want: []result.Diagnostic{
				result.Errorf("creationInfo.creators[0]",
					"creator must be prefixed with Person:, Organization: or Tool:"),
			},
		},
		{
			name: "relationship without type",
			mutate: func(d *spdx.Document) {
				d.Relationships = []*spdx.Relationship{{
					RefA: common.DocElementID{ElementRefID: common.ElementID("DOCUMENT")},
					RefB: common.DocElementID{SpecialID: "NOASSERTION"},
				}}
			},
			want: []result.Diagnostic{
				result.Errorf("relationships[0].relationshipType", "required field is missing"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalSPDX()
			tt.mutate(doc)
			got := errorsOnly(structural.ValidateSPDX(doc, spdxPolicy(t, "SPDX-2.3")))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateSPDX returned unexpected errors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSPDXPackageValidation(t *testing.T) {
	tests := []struct {
		name string
		pkg  *spdx.Package
		want []result.Diagnostic
	}{
		{
			name: "complete package",
			pkg: &spdx.Package{
				PackageName:             "pkg-a",
				PackageSPDXIdentifier:   common.ElementID("Package-a"),
				PackageDownloadLocation: "NOASSERTION",
				PackageLicenseConcluded: "Apache-2.0",
				PackageChecksums: []common.Checksum{
					{Algorithm: common.SHA256, Value: strings.Repeat("ab", 32)},
				},
			},
			want: nil,
		},
		{
			name: "missing required fields",
			pkg:  &spdx.Package{},
			want: []result.Diagnostic{
				result.Errorf("packages[0].name", "required field is missing"),
				result.Errorf("packages[0].SPDXID", "required field is missing"),
				result.Errorf("packages[0].downloadLocation", "required field is missing"),
			},
		},
		{
			name: "checksum length mismatch",
			pkg: &spdx.Package{
				PackageName:             "pkg-a",
				PackageSPDXIdentifier:   common.ElementID("Package-a"),
				PackageDownloadLocation: "NOASSERTION",
				PackageLicenseConcluded: "NOASSERTION",
				PackageChecksums: []common.Checksum{
					{Algorithm: common.SHA1, Value: "abc123"},
				},
			},
			want: []result.Diagnostic{
				result.Errorf("packages[0].checksums[0]", "SHA-1 content must be 40 hex digits"),
			},
		},
		{
			name: "unknown checksum algorithm",
			pkg: &spdx.Package{
				PackageName:             "pkg-a",
				PackageSPDXIdentifier:   common.ElementID("Package-a"),
				PackageDownloadLocation: "NOASSERTION",
				PackageLicenseConcluded: "NOASSERTION",
				PackageChecksums: []common.Checksum{
					{Algorithm: "CRC32", Value: "deadbeef"},
				},
			},
			want: []result.Diagnostic{
				result.Errorf("packages[0].checksums[0]", `unknown checksum algorithm "CRC32"`),
			},
		},
		{
			name: "bad license expression",
			pkg: &spdx.Package{
				PackageName:             "pkg-a",
				PackageSPDXIdentifier:   common.ElementID("Package-a"),
				PackageDownloadLocation: "NOASSERTION",
				PackageLicenseConcluded: "some random words",
				PackageLicenseDeclared:  "NONE",
			},
			want: []result.Diagnostic{
				result.Errorf("packages[0].licenseConcluded",
					`"some random words" is not a recognizable SPDX license expression`),
			},
		},
		{
			name: "invalid purl external ref",
			pkg: &spdx.Package{
				PackageName:             "pkg-a",
				PackageSPDXIdentifier:   common.ElementID("Package-a"),
				PackageDownloadLocation: "NOASSERTION",
				PackageLicenseConcluded: "NOASSERTION",
				PackageExternalReferences: []*spdx.PackageExternalReference{
					{Category: "PACKAGE-MANAGER", RefType: "purl", Locator: "npm/lodash@4.17.21"},
				},
			},
			want: []result.Diagnostic{
				result.Errorf("packages[0].externalRefs[0].referenceLocator",
					`"npm/lodash@4.17.21" is not a package URL (missing pkg: prefix)`),
			},
		},
		{
			name: "invalid cpe external ref",
			pkg: &spdx.Package{
				PackageName:             "pkg-a",
				PackageSPDXIdentifier:   common.ElementID("Package-a"),
				PackageDownloadLocation: "NOASSERTION",
				PackageLicenseConcluded: "NOASSERTION",
				PackageExternalReferences: []*spdx.PackageExternalReference{
					{Category: "SECURITY", RefType: "cpe23Type", Locator: "nvd:a:vendor:product"},
				},
			},
			want: []result.Diagnostic{
				result.Errorf("packages[0].externalRefs[0].referenceLocator",
					`"nvd:a:vendor:product" is not a CPE identifier (missing cpe: prefix)`),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalSPDX()
			doc.Packages = []*spdx.Package{tt.pkg}
			got := errorsOnly(structural.ValidateSPDX(doc, spdxPolicy(t, "SPDX-2.3")))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateSPDX returned unexpected errors (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSPDXLicenseConcludedMissingIsWarning(t *testing.T) {
	doc := minimalSPDX()
	doc.Packages = []*spdx.Package{{
		PackageName:             "pkg-a",
		PackageSPDXIdentifier:   common.ElementID("Package-a"),
		PackageDownloadLocation: "NOASSERTION",
	}}
	got := structural.ValidateSPDX(doc, spdxPolicy(t, "SPDX-2.3"))
	want := []result.Diagnostic{
		result.Warnf("packages[0].licenseConcluded", "recommended field is missing"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateSPDX returned unexpected diagnostics (-want +got):\n%s", diff)
	}
}

func TestSPDXPrimaryPurposeVersionGate(t *testing.T) {
	pkg := func() *spdx.Package {
		return &spdx.Package{
			PackageName:             "pkg-a",
			PackageSPDXIdentifier:   common.ElementID("Package-a"),
			PackageDownloadLocation: "NOASSERTION",
			PackageLicenseConcluded: "NOASSERTION",
			PrimaryPackagePurpose:   "LIBRARY",
		}
	}

	doc := minimalSPDX()
	doc.SPDXVersion = "SPDX-2.2"
	doc.Packages = []*spdx.Package{pkg()}
	got := errorsOnly(structural.ValidateSPDX(doc, spdxPolicy(t, "SPDX-2.2")))
	want := []result.Diagnostic{
		result.Errorf("packages[0].primaryPackagePurpose", "not available in SPDX SPDX-2.2"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ValidateSPDX(2.2) returned unexpected errors (-want +got):\n%s", diff)
	}

	doc = minimalSPDX()
	doc.Packages = []*spdx.Package{pkg()}
	if errs := errorsOnly(structural.ValidateSPDX(doc, spdxPolicy(t, "SPDX-2.3"))); len(errs) != 0 {
		t.Errorf("ValidateSPDX(2.3) = %v, want no errors", errs)
	}
}

func TestSPDXFileValidation(t *testing.T) {
	tests := []struct {
		name string
		file *spdx.File
		want []result.Diagnostic
	}{
		{
			name: "complete file",
			file: &spdx.File{
				FileName:           "./src/main.go",
				FileSPDXIdentifier: common.ElementID("File-main"),
				Checksums: []common.Checksum{
					{Algorithm: common.SHA1, Value: strings.Repeat("ab", 20)},
				},
			},
			want: nil,
		},
		{
			name: "no checksums",
			file: &spdx.File{
				FileName:           "./src/main.go",
				FileSPDXIdentifier: common.ElementID("File-main"),
			},
			want: []result.Diagnostic{
				result.Errorf("files[0].checksums", "at least one checksum is required"),
			},
		},
		{
			name: "checksums without SHA1",
			file: &spdx.File{
				FileName:           "./src/main.go",
				FileSPDXIdentifier: common.ElementID("File-main"),
				Checksums: []common.Checksum{
					{Algorithm: common.SHA256, Value: strings.Repeat("ab", 32)},
				},
			},
			want: []result.Diagnostic{
				result.Errorf("files[0].checksums", "a SHA1 checksum is required"),
			},
		},
		{
			name: "missing identity fields",
			file: &spdx.File{
				Checksums: []common.Checksum{
					{Algorithm: common.SHA1, Value: strings.Repeat("ab", 20)},
				},
			},
			want: []result.Diagnostic{
				result.Errorf("files[0].fileName", "required field is missing"),
				result.Errorf("files[0].SPDXID", "required field is missing"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := minimalSPDX()
			doc.Files = []*spdx.File{tt.file}
			got := errorsOnly(structural.ValidateSPDX(doc, spdxPolicy(t, "SPDX-2.3")))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ValidateSPDX returned unexpected errors (-want +got):\n%s", diff)
			}
		})
	}
}

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

// Package policy holds the version policy table: the per-dialect shape and
// requiredness rules that differ between SBOM spec versions.
//
// The table is data, not code. Adding support for a new spec version means
// inserting one record here; the structural validator dispatches on the
// record's fields and needs no new branches unless a genuinely new entity
// shape appears.
package policy

import "fmt"

// Format identifies the SBOM document family.
type Format string

const (
	// FormatCycloneDX marks CycloneDX documents.
	FormatCycloneDX Format = "CycloneDX"
	// FormatSPDX marks SPDX documents.
	FormatSPDX Format = "SPDX"
)

// ToolsShape selects the wire shape of metadata.tools.
type ToolsShape int

const (
	// ToolsFlatList is the pre-1.5 shape: an array of {vendor,name,version}.
	ToolsFlatList ToolsShape = iota
	// ToolsComponentsWrapper is the 1.5+ shape: {components: [Component]}.
	ToolsComponentsWrapper
)

// SupplierShape selects the wire shape of component.supplier.
type SupplierShape int

const (
	// SupplierString is the pre-1.4 shape: a bare name string.
	SupplierString SupplierShape = iota
	// SupplierObject is the 1.4+ shape: an organizational entity object.
	SupplierObject
)

// Dialect is a (format, version) pair. It selects exactly one Policy.
type Dialect struct {
	Format  Format
	Version string
}

func (d Dialect) String() string {
	return fmt.Sprintf("%s %s", d.Format, d.Version)
}

// Policy is the set of version-specific shape and requiredness rules for
// one dialect.
type Policy struct {
	Dialect Dialect

	// SchemaURIRequired mandates the $schema field; when set, SchemaURI is
	// the only accepted value. When unset, the field must be absent.
	SchemaURIRequired bool
	SchemaURI         string

	ToolsShape    ToolsShape
	SupplierShape SupplierShape

	// ComponentVersionRequired makes component.version mandatory (CycloneDX
	// 1.3; optional from 1.4 on).
	ComponentVersionRequired bool

	// EvidenceAllowed gates the component evidence substructure (1.5+).
	// EvidenceCallstackRequiresModule is true for exactly one dialect (1.5);
	// later dialects make the frame's module field optional.
	EvidenceAllowed                 bool
	EvidenceCallstackRequiresModule bool

	// LifecyclesAllowed gates metadata.lifecycles (1.5+).
	LifecyclesAllowed bool

	// VulnerabilitiesAllowed gates the document vulnerabilities list (1.4+).
	VulnerabilitiesAllowed bool

	// ExtendedComponentTypes admits the component types added in 1.5
	// (data, device-driver, machine-learning-model, platform).
	ExtendedComponentTypes bool

	// PrimaryPurposeAllowed gates the SPDX primaryPackagePurpose field
	// (SPDX 2.3 only).
	PrimaryPurposeAllowed bool
}

func cdxSchemaURI(version string) string {
	return fmt.Sprintf("http://cyclonedx.org/schema/bom-%s.schema.json", version)
}

var table = map[Dialect]Policy{
	{FormatCycloneDX, "1.3"}: {
		Dialect:                  Dialect{FormatCycloneDX, "1.3"},
		ToolsShape:               ToolsFlatList,
		SupplierShape:            SupplierString,
		ComponentVersionRequired: true,
	},
	{FormatCycloneDX, "1.4"}: {
		Dialect:           Dialect{FormatCycloneDX, "1.4"},
		SchemaURIRequired: true,
		SchemaURI:         cdxSchemaURI("1.4"),
		ToolsShape:        ToolsFlatList,
		SupplierShape:     SupplierObject,

		VulnerabilitiesAllowed: true,
	},
	{FormatCycloneDX, "1.5"}: {
		Dialect:           Dialect{FormatCycloneDX, "1.5"},
		SchemaURIRequired: true,
		SchemaURI:         cdxSchemaURI("1.5"),
		ToolsShape:        ToolsComponentsWrapper,
		SupplierShape:     SupplierObject,

		EvidenceAllowed:                 true,
		EvidenceCallstackRequiresModule: true,
		LifecyclesAllowed:               true,
		VulnerabilitiesAllowed:          true,
		ExtendedComponentTypes:          true,
	},
	{FormatCycloneDX, "1.6"}: {
		Dialect:           Dialect{FormatCycloneDX, "1.6"},
		SchemaURIRequired: true,
		SchemaURI:         cdxSchemaURI("1.6"),
		ToolsShape:        ToolsComponentsWrapper,
		SupplierShape:     SupplierObject,

		EvidenceAllowed:        true,
		LifecyclesAllowed:      true,
		VulnerabilitiesAllowed: true,
		ExtendedComponentTypes: true,
	},
	{FormatSPDX, "SPDX-2.2"}: {
		Dialect: Dialect{FormatSPDX, "SPDX-2.2"},
	},
	{FormatSPDX, "SPDX-2.3"}: {
		Dialect:               Dialect{FormatSPDX, "SPDX-2.3"},
		PrimaryPurposeAllowed: true,
	},
}

// Lookup returns the policy for the given dialect. Selection is total: an
// unrecognized version yields ok == false and callers must report an
// unsupported-version diagnostic. There is no nearest-version fallback.
func Lookup(format Format, version string) (Policy, bool) {
	p, ok := table[Dialect{Format: format, Version: version}]
	return p, ok
}

// Dialects lists every supported dialect, CycloneDX before SPDX, versions
// ascending. The order is fixed so callers can iterate deterministically.
func Dialects() []Dialect {
	return []Dialect{
		{FormatCycloneDX, "1.3"},
		{FormatCycloneDX, "1.4"},
		{FormatCycloneDX, "1.5"},
		{FormatCycloneDX, "1.6"},
		{FormatSPDX, "SPDX-2.2"},
		{FormatSPDX, "SPDX-2.3"},
	}
}

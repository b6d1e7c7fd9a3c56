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

// Package cdx defines the parsed CycloneDX document tree that the
// validators operate on.
//
// The model deliberately differs from the cyclonedx-go BOM struct in one
// way: fields whose wire shape changes between spec versions
// (metadata.tools, component.supplier, evidence.identity) are kept as raw
// JSON so the structural validator can enforce the shape the document's
// declared version demands. Enum-valued fields reuse the cyclonedx-go
// vocabulary types so closed sets stay aligned with the library.
//
// Fields where CycloneDX distinguishes "absent" from "present but empty"
// (component.version, license expression, property value, frame module)
// are pointers.
package cdx

import (
	"encoding/json"

	"github.com/CycloneDX/cyclonedx-go"
)

// Document is the top-level CycloneDX entity. The document exclusively owns
// its tree; validators never mutate it.
type Document struct {
	JSONSchema         string              `json:"$schema,omitempty"`
	BOMFormat          string              `json:"bomFormat,omitempty"`
	SpecVersion        string              `json:"specVersion,omitempty"`
	SerialNumber       string              `json:"serialNumber,omitempty"`
	Version            int                 `json:"version,omitempty"`
	Metadata           *Metadata           `json:"metadata,omitempty"`
	Components         []Component         `json:"components,omitempty"`
	Services           []Service           `json:"services,omitempty"`
	Dependencies       []Dependency        `json:"dependencies,omitempty"`
	Compositions       []Composition       `json:"compositions,omitempty"`
	ExternalReferences []ExternalReference `json:"externalReferences,omitempty"`
	// Vulnerabilities is version-gated; only its presence is validated.
	Vulnerabilities json.RawMessage `json:"vulnerabilities,omitempty"`
}

// Metadata describes the BOM itself and its subject component.
type Metadata struct {
	Timestamp  string      `json:"timestamp,omitempty"`
	Lifecycles []Lifecycle `json:"lifecycles,omitempty"`
	// Tools is a flat list of Tool pre-1.5 and a {components: [...]} wrapper
	// from 1.5 on; the policy table decides which shape must decode.
	Tools       json.RawMessage         `json:"tools,omitempty"`
	Authors     []OrganizationalContact `json:"authors,omitempty"`
	Component   *Component              `json:"component,omitempty"`
	Manufacture *OrganizationalEntity   `json:"manufacture,omitempty"`
	Supplier    *OrganizationalEntity   `json:"supplier,omitempty"`
	Licenses    []LicenseChoice         `json:"licenses,omitempty"`
	Properties  []Property              `json:"properties,omitempty"`
}

// Lifecycle is one entry of metadata.lifecycles (1.5+).
type Lifecycle struct {
	Phase       cyclonedx.LifecyclePhase `json:"phase,omitempty"`
	Name        string                   `json:"name,omitempty"`
	Description string                   `json:"description,omitempty"`
}

// Tool is one entry of the pre-1.5 flat tools list.
type Tool struct {
	Vendor  *string `json:"vendor,omitempty"`
	Name    *string `json:"name,omitempty"`
	Version *string `json:"version,omitempty"`
}

// ToolsWrapper is the 1.5+ shape of metadata.tools.
type ToolsWrapper struct {
	Components *[]Component `json:"components,omitempty"`
	Services   *[]Service   `json:"services,omitempty"`
}

// Component is the recursive unit of an SBOM. Nested components carry the
// same invariants as top-level ones.
type Component struct {
	BOMRef   string                  `json:"bom-ref,omitempty"`
	Type     cyclonedx.ComponentType `json:"type,omitempty"`
	MIMEType string                  `json:"mime-type,omitempty"`
	// Supplier is a bare string pre-1.4 and an organizational entity object
	// from 1.4 on.
	Supplier           json.RawMessage     `json:"supplier,omitempty"`
	Author             string              `json:"author,omitempty"`
	Publisher          string              `json:"publisher,omitempty"`
	Group              string              `json:"group,omitempty"`
	Name               string              `json:"name,omitempty"`
	Version            *string             `json:"version,omitempty"`
	Description        string              `json:"description,omitempty"`
	Scope              cyclonedx.Scope     `json:"scope,omitempty"`
	Hashes             []Hash              `json:"hashes,omitempty"`
	Licenses           []LicenseChoice     `json:"licenses,omitempty"`
	Copyright          string              `json:"copyright,omitempty"`
	CPE                string              `json:"cpe,omitempty"`
	PackageURL         string              `json:"purl,omitempty"`
	SWID               *SWID               `json:"swid,omitempty"`
	Pedigree           *Pedigree           `json:"pedigree,omitempty"`
	ExternalReferences []ExternalReference `json:"externalReferences,omitempty"`
	Properties         []Property          `json:"properties,omitempty"`
	Components         []Component         `json:"components,omitempty"`
	Evidence           *Evidence           `json:"evidence,omitempty"`
}

// SWID is a component's software identification tag.
type SWID struct {
	TagID   string `json:"tagId,omitempty"`
	Name    string `json:"name,omitempty"`
	Version string `json:"version,omitempty"`
}

// Hash pairs a digest algorithm with its hex content.
type Hash struct {
	Algorithm cyclonedx.HashAlgorithm `json:"alg,omitempty"`
	Value     string                  `json:"content,omitempty"`
}

// LicenseChoice holds exactly one of a license object or an SPDX
// expression; never both, never neither.
type LicenseChoice struct {
	License    *License `json:"license,omitempty"`
	Expression *string  `json:"expression,omitempty"`
}

// License identifies a license by SPDX id or free-form name.
type License struct {
	ID   *string `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
	URL  string  `json:"url,omitempty"`
}

// ExternalReference points from the BOM to an external resource.
type ExternalReference struct {
	URL     string                            `json:"url,omitempty"`
	Comment string                            `json:"comment,omitempty"`
	Type    cyclonedx.ExternalReferenceType   `json:"type,omitempty"`
	Hashes  []Hash                            `json:"hashes,omitempty"`
}

// Pedigree captures component provenance.
type Pedigree struct {
	Ancestors   []Component `json:"ancestors,omitempty"`
	Descendants []Component `json:"descendants,omitempty"`
	Variants    []Component `json:"variants,omitempty"`
	Commits     []Commit    `json:"commits,omitempty"`
	Patches     []Patch     `json:"patches,omitempty"`
	Notes       string      `json:"notes,omitempty"`
}

// Commit is one pedigree commit; uid is required.
type Commit struct {
	UID       string              `json:"uid,omitempty"`
	URL       string              `json:"url,omitempty"`
	Author    *IdentifiableAction `json:"author,omitempty"`
	Committer *IdentifiableAction `json:"committer,omitempty"`
	Message   string              `json:"message,omitempty"`
}

// IdentifiableAction records who did something and when.
type IdentifiableAction struct {
	Timestamp string `json:"timestamp,omitempty"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Patch is one pedigree patch; type is required and drawn from a closed set.
type Patch struct {
	Type cyclonedx.PatchType `json:"type,omitempty"`
	Diff json.RawMessage     `json:"diff,omitempty"`
}

// Evidence captures how a component's identity was determined (1.5+).
// Identity is raw because 1.5 carries an object where 1.6 allows an array.
type Evidence struct {
	Identity    json.RawMessage      `json:"identity,omitempty"`
	Occurrences []EvidenceOccurrence `json:"occurrences,omitempty"`
	Callstack   *Callstack           `json:"callstack,omitempty"`
	Licenses    []LicenseChoice      `json:"licenses,omitempty"`
}

// EvidenceOccurrence is one location where the component was observed.
type EvidenceOccurrence struct {
	BOMRef   string `json:"bom-ref,omitempty"`
	Location string `json:"location,omitempty"`
}

// Callstack is the call-stack evidence substructure.
type Callstack struct {
	Frames []StackFrame `json:"frames,omitempty"`
}

// StackFrame is one frame of call-stack evidence. Module is a pointer
// because 1.5 requires the field while 1.6 makes it optional.
type StackFrame struct {
	Package      string   `json:"package,omitempty"`
	Module       *string  `json:"module,omitempty"`
	Function     string   `json:"function,omitempty"`
	Parameters   []string `json:"parameters,omitempty"`
	Line         *int     `json:"line,omitempty"`
	Column       *int     `json:"column,omitempty"`
	FullFilename string   `json:"fullFilename,omitempty"`
}

// Service is a network service entry of the BOM.
type Service struct {
	BOMRef             string                `json:"bom-ref,omitempty"`
	Provider           *OrganizationalEntity `json:"provider,omitempty"`
	Group              string                `json:"group,omitempty"`
	Name               string                `json:"name,omitempty"`
	Version            string                `json:"version,omitempty"`
	Description        string                `json:"description,omitempty"`
	Endpoints          []string              `json:"endpoints,omitempty"`
	Data               []DataClassification  `json:"data,omitempty"`
	Licenses           []LicenseChoice       `json:"licenses,omitempty"`
	ExternalReferences []ExternalReference   `json:"externalReferences,omitempty"`
	Properties         []Property            `json:"properties,omitempty"`
	Services           []Service             `json:"services,omitempty"`
}

// DataClassification is one service data-flow entry.
type DataClassification struct {
	Flow           cyclonedx.DataFlow `json:"flow,omitempty"`
	Classification string             `json:"classification,omitempty"`
}

// Dependency links a bom-ref to the bom-refs it depends on. Both sides
// must resolve; resolution is the reference-graph validator's job.
type Dependency struct {
	Ref       string   `json:"ref,omitempty"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Composition describes the completeness of a set of assemblies or
// dependencies.
type Composition struct {
	Aggregate    cyclonedx.CompositionAggregate `json:"aggregate,omitempty"`
	Assemblies   []string                       `json:"assemblies,omitempty"`
	Dependencies []string                       `json:"dependencies,omitempty"`
}

// OrganizationalEntity is a supplier, manufacturer or provider.
type OrganizationalEntity struct {
	Name    string                  `json:"name,omitempty"`
	URL     []string                `json:"url,omitempty"`
	Contact []OrganizationalContact `json:"contact,omitempty"`
}

// OrganizationalContact is a person reachable at an organization.
type OrganizationalContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Property is a name/value pair. Value is a pointer because CycloneDX
// requires the key to be present even when empty.
type Property struct {
	Name  string  `json:"name,omitempty"`
	Value *string `json:"value,omitempty"`
}

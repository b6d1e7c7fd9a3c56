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

// Package structural validates a parsed SBOM document tree against its
// dialect's policy: required-field presence, enum membership and
// version-dependent shape.
//
// The validator never stops at the first violation; it walks the whole
// tree and emits one diagnostic per defect so a single run surfaces the
// full list. Reference resolution is deliberately not done here — that is
// the refgraph package's job, keeping structural and graph concerns apart.
package structural

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/CycloneDX/cyclonedx-go"

	"github.com/sbomtools/bomlint/cdx"
	"github.com/sbomtools/bomlint/grammar"
	"github.com/sbomtools/bomlint/policy"
	"github.com/sbomtools/bomlint/result"
)

var (
	baseComponentTypes = []cyclonedx.ComponentType{
		cyclonedx.ComponentTypeApplication,
		cyclonedx.ComponentTypeFramework,
		cyclonedx.ComponentTypeLibrary,
		cyclonedx.ComponentTypeContainer,
		cyclonedx.ComponentTypeOS,
		cyclonedx.ComponentTypeDevice,
		cyclonedx.ComponentTypeFirmware,
		cyclonedx.ComponentTypeFile,
	}

	// Component types introduced in CycloneDX 1.5.
	extendedComponentTypes = []cyclonedx.ComponentType{
		cyclonedx.ComponentTypeData,
		cyclonedx.ComponentTypeDeviceDriver,
		cyclonedx.ComponentTypeMachineLearningModel,
		cyclonedx.ComponentTypePlatform,
	}

	scopes = []cyclonedx.Scope{
		cyclonedx.ScopeRequired,
		cyclonedx.ScopeOptional,
		cyclonedx.ScopeExcluded,
	}

	externalReferenceTypes = []cyclonedx.ExternalReferenceType{
		cyclonedx.ERTypeVCS,
		cyclonedx.ERTypeIssueTracker,
		cyclonedx.ERTypeWebsite,
		cyclonedx.ERTypeAdvisories,
		cyclonedx.ERTypeBOM,
		cyclonedx.ERTypeMailingList,
		cyclonedx.ERTypeSocial,
		cyclonedx.ERTypeChat,
		cyclonedx.ERTypeDocumentation,
		cyclonedx.ERTypeSupport,
		cyclonedx.ERTypeDistribution,
		cyclonedx.ERTypeLicense,
		cyclonedx.ERTypeBuildMeta,
		cyclonedx.ERTypeBuildSystem,
		cyclonedx.ERTypeReleaseNotes,
		cyclonedx.ERTypeOther,
	}

	patchTypes = []cyclonedx.PatchType{
		cyclonedx.PatchTypeUnofficial,
		cyclonedx.PatchTypeMonkey,
		cyclonedx.PatchTypeBackport,
		cyclonedx.PatchTypeCherryPick,
	}

	lifecyclePhases = []cyclonedx.LifecyclePhase{
		cyclonedx.LifecyclePhaseDesign,
		cyclonedx.LifecyclePhasePreBuild,
		cyclonedx.LifecyclePhaseBuild,
		cyclonedx.LifecyclePhasePostBuild,
		cyclonedx.LifecyclePhaseOperations,
		cyclonedx.LifecyclePhaseDiscovery,
		cyclonedx.LifecyclePhaseDecommission,
	}

	compositionAggregates = []cyclonedx.CompositionAggregate{
		cyclonedx.CompositionAggregateComplete,
		cyclonedx.CompositionAggregateIncomplete,
		cyclonedx.CompositionAggregateIncompleteFirstPartyOnly,
		cyclonedx.CompositionAggregateIncompleteThirdPartyOnly,
		cyclonedx.CompositionAggregateUnknown,
		cyclonedx.CompositionAggregateNotSpecified,
	}

	dataFlows = []cyclonedx.DataFlow{
		cyclonedx.DataFlowInbound,
		cyclonedx.DataFlowOutbound,
		cyclonedx.DataFlowBidirectional,
		cyclonedx.DataFlowUnknown,
	}
)

// ValidateCDX checks a CycloneDX document against the given dialect policy
// and returns every violation found, in document walk order. The document
// is not mutated.
func ValidateCDX(doc *cdx.Document, pol policy.Policy) []result.Diagnostic {
	c := &checker{pol: pol}
	c.document(doc)
	return c.diags
}

type checker struct {
	pol   policy.Policy
	diags []result.Diagnostic
}

func (c *checker) errorf(path, format string, args ...any) {
	c.diags = append(c.diags, result.Errorf(path, format, args...))
}

func (c *checker) warnf(path, format string, args ...any) {
	c.diags = append(c.diags, result.Warnf(path, format, args...))
}

func (c *checker) document(doc *cdx.Document) {
	if doc.BOMFormat == "" {
		c.errorf("bomFormat", "required field is missing")
	} else if doc.BOMFormat != string(policy.FormatCycloneDX) {
		c.errorf("bomFormat", "must be %q, got %q", policy.FormatCycloneDX, doc.BOMFormat)
	}
	if doc.SpecVersion == "" {
		c.errorf("specVersion", "required field is missing")
	}
	if doc.Version == 0 {
		c.errorf("version", "required field is missing")
	} else if doc.Version < 1 {
		c.errorf("version", "must be >= 1, got %d", doc.Version)
	}

	if c.pol.SchemaURIRequired {
		switch {
		case doc.JSONSchema == "":
			c.errorf("$schema", "required field is missing in %s", c.pol.Dialect)
		case doc.JSONSchema != c.pol.SchemaURI:
			c.errorf("$schema", "must be %q for %s", c.pol.SchemaURI, c.pol.Dialect)
		}
	} else if doc.JSONSchema != "" {
		c.errorf("$schema", "must not be present in %s", c.pol.Dialect)
	}

	if doc.SerialNumber != "" {
		if err := grammar.CheckSerialNumber(doc.SerialNumber); err != nil {
			c.errorf("serialNumber", "%v", err)
		}
	} else {
		c.warnf("serialNumber", "recommended field is missing")
	}

	if doc.Metadata != nil {
		c.metadata(doc.Metadata)
	}
	for i := range doc.Components {
		c.componentTree(&doc.Components[i], fmt.Sprintf("components[%d]", i))
	}
	for i := range doc.Services {
		c.serviceTree(&doc.Services[i], fmt.Sprintf("services[%d]", i))
	}
	for i, dep := range doc.Dependencies {
		if dep.Ref == "" {
			c.errorf(fmt.Sprintf("dependencies[%d].ref", i), "required field is missing")
		}
	}
	for i, comp := range doc.Compositions {
		path := fmt.Sprintf("compositions[%d]", i)
		if comp.Aggregate == "" {
			c.errorf(path+".aggregate", "required field is missing")
		} else if !slices.Contains(compositionAggregates, comp.Aggregate) {
			c.errorf(path+".aggregate", "invalid aggregate type %q", comp.Aggregate)
		}
	}
	if len(doc.Vulnerabilities) > 0 && !c.pol.VulnerabilitiesAllowed {
		c.errorf("vulnerabilities", "not available in %s", c.pol.Dialect)
	}
	for i := range doc.ExternalReferences {
		c.externalReference(&doc.ExternalReferences[i], fmt.Sprintf("externalReferences[%d]", i))
	}
}

func (c *checker) metadata(m *cdx.Metadata) {
	if m.Timestamp != "" {
		if err := grammar.CheckTimestamp(m.Timestamp); err != nil {
			c.errorf("metadata.timestamp", "%v", err)
		}
	}

	if len(m.Tools) > 0 {
		c.tools(m.Tools)
	}

	for i := range m.Authors {
		c.contact(&m.Authors[i], fmt.Sprintf("metadata.authors[%d]", i))
	}
	if m.Manufacture != nil {
		c.entity(m.Manufacture, "metadata.manufacture")
	}
	if m.Supplier != nil {
		c.entity(m.Supplier, "metadata.supplier")
	}
	if m.Component != nil {
		c.subjectComponentTree(m.Component, "metadata.component")
	}
	for i := range m.Licenses {
		c.licenseChoice(&m.Licenses[i], fmt.Sprintf("metadata.licenses[%d]", i))
	}
	c.properties(m.Properties, "metadata.properties")

	if len(m.Lifecycles) > 0 && !c.pol.LifecyclesAllowed {
		c.errorf("metadata.lifecycles", "not available in %s", c.pol.Dialect)
	} else {
		for i, lc := range m.Lifecycles {
			path := fmt.Sprintf("metadata.lifecycles[%d]", i)
			if lc.Phase == "" {
				c.errorf(path+".phase", "required field is missing")
			} else if !slices.Contains(lifecyclePhases, lc.Phase) {
				c.errorf(path+".phase", "invalid lifecycle phase %q", lc.Phase)
			}
		}
	}
}

// tools enforces the policy-selected shape of metadata.tools: a flat
// {vendor,name,version} array before 1.5, a components wrapper after.
func (c *checker) tools(raw json.RawMessage) {
	if c.pol.ToolsShape == policy.ToolsComponentsWrapper {
		var w cdx.ToolsWrapper
		if err := json.Unmarshal(raw, &w); err != nil || w.Components == nil {
			c.errorf("metadata.tools", "must use the components wrapper structure in %s", c.pol.Dialect)
			return
		}
		for i := range *w.Components {
			c.componentTree(&(*w.Components)[i], fmt.Sprintf("metadata.tools.components[%d]", i))
		}
		return
	}

	var tools []cdx.Tool
	if err := json.Unmarshal(raw, &tools); err != nil {
		c.errorf("metadata.tools", "must be a flat array in %s", c.pol.Dialect)
		return
	}
	for i, t := range tools {
		if t.Vendor == nil || t.Name == nil || t.Version == nil {
			c.errorf(fmt.Sprintf("metadata.tools[%d]", i), "missing required fields (vendor, name, version)")
		}
	}
}

type compWork struct {
	comp *cdx.Component
	path string
	// subject marks the BOM's primary component (metadata.component),
	// which is exempt from the per-version version-required rule.
	subject bool
}

// componentTree validates comp and every nested component. The walk uses
// an explicit stack instead of recursion so arbitrarily deep nesting
// cannot grow the call stack; children are pushed in reverse to keep
// document preorder, which keeps diagnostic order deterministic.
func (c *checker) componentTree(root *cdx.Component, path string) {
	c.walkComponents(compWork{comp: root, path: path})
}

// subjectComponentTree validates the metadata.component tree; only the
// root carries the subject exemption.
func (c *checker) subjectComponentTree(root *cdx.Component, path string) {
	c.walkComponents(compWork{comp: root, path: path, subject: true})
}

func (c *checker) walkComponents(root compWork) {
	stack := []compWork{root}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.component(it.comp, it.path, it.subject)
		for i := len(it.comp.Components) - 1; i >= 0; i-- {
			stack = append(stack, compWork{
				comp: &it.comp.Components[i],
				path: fmt.Sprintf("%s.components[%d]", it.path, i),
			})
		}
	}
}

// component checks one component's own fields. Nested components are the
// caller's responsibility.
func (c *checker) component(comp *cdx.Component, path string, subject bool) {
	if comp.Type == "" {
		c.errorf(path+".type", "required field is missing")
	} else if !c.validComponentType(comp.Type) {
		c.errorf(path+".type", "invalid component type %q", comp.Type)
	}
	if comp.Name == "" {
		c.errorf(path+".name", "required field is missing")
	}
	if c.pol.ComponentVersionRequired && !subject && comp.Version == nil {
		c.errorf(path+".version", "required field is missing in %s", c.pol.Dialect)
	}

	if len(comp.Supplier) > 0 {
		c.supplier(comp.Supplier, path+".supplier")
	}

	if comp.Scope != "" && !slices.Contains(scopes, comp.Scope) {
		c.errorf(path+".scope", "invalid scope %q", comp.Scope)
	}

	for i := range comp.Hashes {
		c.hash(&comp.Hashes[i], fmt.Sprintf("%s.hashes[%d]", path, i))
	}
	for i := range comp.Licenses {
		c.licenseChoice(&comp.Licenses[i], fmt.Sprintf("%s.licenses[%d]", path, i))
	}

	if comp.PackageURL != "" {
		if err := grammar.CheckPURL(comp.PackageURL); err != nil {
			c.errorf(path+".purl", "%v", err)
		} else if _, err := grammar.ParsePURL(comp.PackageURL); err != nil {
			c.warnf(path+".purl", "does not parse as a package URL: %v", err)
		}
	}
	if comp.CPE != "" {
		if err := grammar.CheckCPE(comp.CPE); err != nil {
			c.errorf(path+".cpe", "%v", err)
		}
	}
	if comp.MIMEType != "" {
		if err := grammar.CheckMIME(comp.MIMEType); err != nil {
			c.errorf(path+".mime-type", "%v", err)
		}
	}
	if comp.SWID != nil && (comp.SWID.TagID == "" || comp.SWID.Name == "") {
		c.errorf(path+".swid", "missing required fields (tagId, name)")
	}

	for i := range comp.ExternalReferences {
		c.externalReference(&comp.ExternalReferences[i], fmt.Sprintf("%s.externalReferences[%d]", path, i))
	}
	if comp.Pedigree != nil {
		c.pedigree(comp.Pedigree, path+".pedigree")
	}
	if comp.Evidence != nil {
		c.evidence(comp.Evidence, path+".evidence")
	}
	c.properties(comp.Properties, path+".properties")
}

func (c *checker) validComponentType(t cyclonedx.ComponentType) bool {
	if slices.Contains(baseComponentTypes, t) {
		return true
	}
	return c.pol.ExtendedComponentTypes && slices.Contains(extendedComponentTypes, t)
}

// supplier enforces the version-dependent supplier shape: a bare string
// before 1.4, an organizational entity object from 1.4 on.
func (c *checker) supplier(raw json.RawMessage, path string) {
	if c.pol.SupplierShape == policy.SupplierString {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			c.errorf(path, "must be a string in %s", c.pol.Dialect)
		}
		return
	}
	var entity cdx.OrganizationalEntity
	if err := json.Unmarshal(raw, &entity); err != nil {
		c.errorf(path, "must be an organizational entity object in %s", c.pol.Dialect)
		return
	}
	c.entity(&entity, path)
}

func (c *checker) entity(e *cdx.OrganizationalEntity, path string) {
	if e.Name == "" {
		c.errorf(path+".name", "required field is missing")
	}
	for i, u := range e.URL {
		if err := grammar.CheckURL(u); err != nil {
			c.errorf(fmt.Sprintf("%s.url[%d]", path, i), "%v", err)
		}
	}
	for i := range e.Contact {
		c.contact(&e.Contact[i], fmt.Sprintf("%s.contact[%d]", path, i))
	}
}

func (c *checker) contact(ct *cdx.OrganizationalContact, path string) {
	if ct.Email != "" {
		if err := grammar.CheckEmail(ct.Email); err != nil {
			c.errorf(path+".email", "%v", err)
		}
	}
}

func (c *checker) hash(h *cdx.Hash, path string) {
	if h.Algorithm == "" || h.Value == "" {
		c.errorf(path, "missing required fields (alg, content)")
		return
	}
	if err := grammar.CheckHash(h.Algorithm, h.Value); err != nil {
		c.errorf(path, "%v", err)
	}
}

// licenseChoice enforces the exactly-one-of law: a choice carries either a
// license object (with id or name) or an SPDX expression, never both and
// never neither.
func (c *checker) licenseChoice(lc *cdx.LicenseChoice, path string) {
	hasLicense := lc.License != nil
	hasExpression := lc.Expression != nil
	switch {
	case !hasLicense && !hasExpression:
		c.errorf(path, "must have either license or expression")
	case hasLicense && hasExpression:
		c.errorf(path, "must not have both license and expression")
	}
	if hasLicense && lc.License.ID == nil && lc.License.Name == nil {
		c.errorf(path+".license", "must have either id or name")
	}
	if hasExpression {
		if err := grammar.CheckLicenseExpression(*lc.Expression); err != nil {
			c.errorf(path+".expression", "%v", err)
		}
	}
}

func (c *checker) externalReference(ref *cdx.ExternalReference, path string) {
	if ref.URL == "" || ref.Type == "" {
		c.errorf(path, "missing required fields (url, type)")
		return
	}
	if !slices.Contains(externalReferenceTypes, ref.Type) {
		c.errorf(path+".type", "invalid external reference type %q", ref.Type)
	}
	if err := grammar.CheckURL(ref.URL); err != nil {
		c.errorf(path+".url", "%v", err)
	}
	for i := range ref.Hashes {
		c.hash(&ref.Hashes[i], fmt.Sprintf("%s.hashes[%d]", path, i))
	}
}

func (c *checker) pedigree(p *cdx.Pedigree, path string) {
	for i, commit := range p.Commits {
		cpath := fmt.Sprintf("%s.commits[%d]", path, i)
		if commit.UID == "" {
			c.errorf(cpath+".uid", "required field is missing")
		}
		c.action(commit.Author, cpath+".author")
		c.action(commit.Committer, cpath+".committer")
	}
	for i, patch := range p.Patches {
		ppath := fmt.Sprintf("%s.patches[%d]", path, i)
		if patch.Type == "" {
			c.errorf(ppath+".type", "required field is missing")
		} else if !slices.Contains(patchTypes, patch.Type) {
			c.errorf(ppath+".type", "invalid patch type %q", patch.Type)
		}
	}
}

func (c *checker) action(a *cdx.IdentifiableAction, path string) {
	if a == nil || a.Timestamp == "" {
		return
	}
	if err := grammar.CheckTimestamp(a.Timestamp); err != nil {
		c.errorf(path+".timestamp", "%v", err)
	}
}

// evidence is validated only when the dialect allows it; the caller gates
// on presence. The callstack module requirement applies to exactly one
// dialect (1.5).
func (c *checker) evidence(ev *cdx.Evidence, path string) {
	if !c.pol.EvidenceAllowed {
		c.errorf(path, "not available in %s", c.pol.Dialect)
		return
	}
	if ev.Callstack != nil {
		for i, frame := range ev.Callstack.Frames {
			if c.pol.EvidenceCallstackRequiresModule && frame.Module == nil {
				c.errorf(fmt.Sprintf("%s.callstack.frames[%d].module", path, i),
					"required field is missing in %s", c.pol.Dialect)
			}
		}
	}
	for i := range ev.Licenses {
		c.licenseChoice(&ev.Licenses[i], fmt.Sprintf("%s.licenses[%d]", path, i))
	}
}

func (c *checker) properties(props []cdx.Property, path string) {
	for i, p := range props {
		ppath := fmt.Sprintf("%s[%d]", path, i)
		if p.Name == "" {
			c.errorf(ppath+".name", "required field is missing")
		}
		if p.Value == nil {
			c.errorf(ppath+".value", "required field is missing")
		}
	}
}

type serviceWork struct {
	svc  *cdx.Service
	path string
}

// serviceTree validates svc and nested services with the same explicit
// stack discipline as componentTree.
func (c *checker) serviceTree(root *cdx.Service, path string) {
	stack := []serviceWork{{root, path}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.service(it.svc, it.path)
		for i := len(it.svc.Services) - 1; i >= 0; i-- {
			stack = append(stack, serviceWork{
				svc:  &it.svc.Services[i],
				path: fmt.Sprintf("%s.services[%d]", it.path, i),
			})
		}
	}
}

func (c *checker) service(svc *cdx.Service, path string) {
	if svc.Name == "" {
		c.errorf(path+".name", "required field is missing")
	}
	for i, ep := range svc.Endpoints {
		if err := grammar.CheckURL(ep); err != nil {
			c.errorf(fmt.Sprintf("%s.endpoints[%d]", path, i), "%v", err)
		}
	}
	for i, d := range svc.Data {
		dpath := fmt.Sprintf("%s.data[%d]", path, i)
		if d.Flow == "" || !slices.Contains(dataFlows, d.Flow) {
			c.errorf(dpath+".flow", "invalid or missing data flow")
		}
		if d.Classification == "" {
			c.errorf(dpath+".classification", "required field is missing")
		}
	}
	if svc.Provider != nil {
		c.entity(svc.Provider, path+".provider")
	}
	for i := range svc.Licenses {
		c.licenseChoice(&svc.Licenses[i], fmt.Sprintf("%s.licenses[%d]", path, i))
	}
	for i := range svc.ExternalReferences {
		c.externalReference(&svc.ExternalReferences[i], fmt.Sprintf("%s.externalReferences[%d]", path, i))
	}
	c.properties(svc.Properties, path+".properties")
}

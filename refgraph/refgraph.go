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

// Package refgraph verifies an SBOM's identifier graph: every declared
// identifier (bom-ref or SPDXID) must be unique within its document, and
// every dependency, composition or relationship reference must resolve to
// a declared identifier.
//
// The check runs in two passes, collect then resolve, so forward
// references are valid: SBOM documents carry no declaration-order
// guarantee. Identifiers are a process-local namespace scoped to one
// document and are never compared across documents.
package refgraph

import (
	"fmt"

	"bitbucket.org/creachadair/stringset"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/sbomtools/bomlint/cdx"
	"github.com/sbomtools/bomlint/result"
)

// CheckCDX validates the bom-ref graph of a CycloneDX document: duplicate
// declarations and dangling dependency/composition references.
func CheckCDX(doc *cdx.Document) []result.Diagnostic {
	g := &graph{declared: stringset.New()}

	// Pass 1: collect declarations. Duplicates are reported at insertion,
	// never silently overwritten.
	if doc.Metadata != nil && doc.Metadata.Component != nil {
		g.collectComponent(doc.Metadata.Component, "metadata.component")
	}
	for i := range doc.Components {
		g.collectComponent(&doc.Components[i], fmt.Sprintf("components[%d]", i))
	}
	for i := range doc.Services {
		g.collectService(&doc.Services[i], fmt.Sprintf("services[%d]", i))
	}

	// Pass 2: resolve references.
	for i, dep := range doc.Dependencies {
		if dep.Ref != "" {
			g.resolve(dep.Ref, fmt.Sprintf("dependencies[%d].ref", i))
		}
		for j, ref := range dep.DependsOn {
			g.resolve(ref, fmt.Sprintf("dependencies[%d].dependsOn[%d]", i, j))
		}
	}
	for i, comp := range doc.Compositions {
		for j, ref := range comp.Assemblies {
			g.resolve(ref, fmt.Sprintf("compositions[%d].assemblies[%d]", i, j))
		}
		for j, ref := range comp.Dependencies {
			g.resolve(ref, fmt.Sprintf("compositions[%d].dependencies[%d]", i, j))
		}
	}
	return g.diags
}

// CheckSPDX validates the SPDXID graph: the document, package and file
// identifiers must be unique and every relationship side must resolve.
// References into external documents (DocumentRef-...) and the special
// NONE/NOASSERTION targets are out of scope and skipped.
func CheckSPDX(doc *spdx.Document) []result.Diagnostic {
	g := &graph{declared: stringset.New()}

	if doc.SPDXIdentifier != "" {
		g.declare(string(doc.SPDXIdentifier), "SPDXID")
	}
	for i, pkg := range doc.Packages {
		if pkg.PackageSPDXIdentifier != "" {
			g.declare(string(pkg.PackageSPDXIdentifier), fmt.Sprintf("packages[%d].SPDXID", i))
		}
	}
	for i, f := range doc.Files {
		if f.FileSPDXIdentifier != "" {
			g.declare(string(f.FileSPDXIdentifier), fmt.Sprintf("files[%d].SPDXID", i))
		}
	}

	for i, rel := range doc.Relationships {
		g.resolveElement(rel.RefA, fmt.Sprintf("relationships[%d].spdxElementId", i))
		g.resolveElement(rel.RefB, fmt.Sprintf("relationships[%d].relatedSpdxElement", i))
	}
	return g.diags
}

type graph struct {
	declared stringset.Set
	diags    []result.Diagnostic
}

func (g *graph) declare(id, path string) {
	if !g.declared.Add(id) {
		g.diags = append(g.diags, result.Errorf(path, "duplicate identifier %q", id))
	}
}

func (g *graph) resolve(ref, path string) {
	if !g.declared.Contains(ref) {
		g.diags = append(g.diags, result.Errorf(path, "reference %q does not resolve to a declared identifier", ref))
	}
}

func (g *graph) resolveElement(ref common.DocElementID, path string) {
	// External document references and NONE/NOASSERTION cannot dangle
	// within this document.
	if ref.DocumentRefID != "" || ref.SpecialID != "" || ref.ElementRefID == "" {
		return
	}
	g.resolve(string(ref.ElementRefID), path)
}

// collectComponent declares the bom-refs of comp and all nested
// components, iteratively, in document preorder.
func (g *graph) collectComponent(root *cdx.Component, path string) {
	type item struct {
		comp *cdx.Component
		path string
	}
	stack := []item{{root, path}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.comp.BOMRef != "" {
			g.declare(it.comp.BOMRef, it.path+".bom-ref")
		}
		for i := len(it.comp.Components) - 1; i >= 0; i-- {
			stack = append(stack, item{
				comp: &it.comp.Components[i],
				path: fmt.Sprintf("%s.components[%d]", it.path, i),
			})
		}
	}
}

// collectService declares the bom-refs of svc and all nested services.
func (g *graph) collectService(root *cdx.Service, path string) {
	type item struct {
		svc  *cdx.Service
		path string
	}
	stack := []item{{root, path}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.svc.BOMRef != "" {
			g.declare(it.svc.BOMRef, it.path+".bom-ref")
		}
		for i := len(it.svc.Services) - 1; i >= 0; i-- {
			stack = append(stack, item{
				svc:  &it.svc.Services[i],
				path: fmt.Sprintf("%s.services[%d]", it.path, i),
			})
		}
	}
}

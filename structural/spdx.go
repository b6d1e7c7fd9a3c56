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

package structural

import (
	"fmt"

	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/spdx/v2/common"

	"github.com/sbomtools/bomlint/grammar"
	"github.com/sbomtools/bomlint/policy"
	"github.com/sbomtools/bomlint/result"
)

const spdxDataLicense = "CC0-1.0"

var creatorTypes = []string{"Person", "Organization", "Tool"}

// ValidateSPDX checks an SPDX document against the given dialect policy.
// The model is the tools-golang document tree, so shape errors are largely
// caught at parse time; this pass covers requiredness, value grammars and
// version gating.
func ValidateSPDX(doc *spdx.Document, pol policy.Policy) []result.Diagnostic {
	s := &spdxChecker{pol: pol}
	s.document(doc)
	return s.diags
}

type spdxChecker struct {
	pol   policy.Policy
	diags []result.Diagnostic
}

func (s *spdxChecker) errorf(path, format string, args ...any) {
	s.diags = append(s.diags, result.Errorf(path, format, args...))
}

func (s *spdxChecker) warnf(path, format string, args ...any) {
	s.diags = append(s.diags, result.Warnf(path, format, args...))
}

// isNoAssertion reports whether a license or location field carries one of
// the SPDX stand-in values that exempt it from grammar checks.
func isNoAssertion(v string) bool {
	return v == "NOASSERTION" || v == "NONE"
}

func (s *spdxChecker) document(doc *spdx.Document) {
	if doc.SPDXVersion == "" {
		s.errorf("spdxVersion", "required field is missing")
	} else if doc.SPDXVersion != s.pol.Dialect.Version {
		s.errorf("spdxVersion", "must be %q for %s", s.pol.Dialect.Version, s.pol.Dialect)
	}
	if doc.DataLicense != spdxDataLicense {
		s.errorf("dataLicense", "must be %q, got %q", spdxDataLicense, doc.DataLicense)
	}
	if doc.SPDXIdentifier != common.ElementID("DOCUMENT") {
		s.errorf("SPDXID", "must be SPDXRef-DOCUMENT")
	}
	if doc.DocumentName == "" {
		s.errorf("name", "required field is missing")
	}
	if doc.DocumentNamespace == "" {
		s.errorf("documentNamespace", "required field is missing")
	} else if err := grammar.CheckURL(doc.DocumentNamespace); err != nil {
		s.errorf("documentNamespace", "%v", err)
	}

	if doc.CreationInfo == nil {
		s.errorf("creationInfo", "required field is missing")
	} else {
		s.creationInfo(doc.CreationInfo)
	}

	for i, pkg := range doc.Packages {
		s.pkg(pkg, fmt.Sprintf("packages[%d]", i))
	}
	for i, f := range doc.Files {
		s.file(f, fmt.Sprintf("files[%d]", i))
	}
	for i, rel := range doc.Relationships {
		if rel.Relationship == "" {
			s.errorf(fmt.Sprintf("relationships[%d].relationshipType", i), "required field is missing")
		}
	}
}

func (s *spdxChecker) creationInfo(ci *spdx.CreationInfo) {
	if ci.Created == "" {
		s.errorf("creationInfo.created", "required field is missing")
	} else if err := grammar.CheckTimestamp(ci.Created); err != nil {
		s.errorf("creationInfo.created", "%v", err)
	}
	if len(ci.Creators) == 0 {
		s.errorf("creationInfo.creators", "at least one creator is required")
	}
	for i, cr := range ci.Creators {
		valid := false
		for _, t := range creatorTypes {
			if cr.CreatorType == t {
				valid = true
				break
			}
		}
		if !valid {
			s.errorf(fmt.Sprintf("creationInfo.creators[%d]", i),
				"creator must be prefixed with Person:, Organization: or Tool:")
		}
	}
}

func (s *spdxChecker) pkg(pkg *spdx.Package, path string) {
	if pkg.PackageName == "" {
		s.errorf(path+".name", "required field is missing")
	}
	if pkg.PackageSPDXIdentifier == "" {
		s.errorf(path+".SPDXID", "required field is missing")
	}
	if pkg.PackageDownloadLocation == "" {
		s.errorf(path+".downloadLocation", "required field is missing")
	}

	for i, sum := range pkg.PackageChecksums {
		s.checksum(sum, fmt.Sprintf("%s.checksums[%d]", path, i))
	}

	if pkg.PackageLicenseConcluded == "" {
		s.warnf(path+".licenseConcluded", "recommended field is missing")
	} else if !isNoAssertion(pkg.PackageLicenseConcluded) {
		if err := grammar.CheckLicenseExpression(pkg.PackageLicenseConcluded); err != nil {
			s.errorf(path+".licenseConcluded", "%v", err)
		}
	}
	if pkg.PackageLicenseDeclared != "" && !isNoAssertion(pkg.PackageLicenseDeclared) {
		if err := grammar.CheckLicenseExpression(pkg.PackageLicenseDeclared); err != nil {
			s.errorf(path+".licenseDeclared", "%v", err)
		}
	}

	for i, ref := range pkg.PackageExternalReferences {
		rpath := fmt.Sprintf("%s.externalRefs[%d]", path, i)
		switch ref.RefType {
		case "cpe23Type", "cpe22Type":
			if err := grammar.CheckCPE(ref.Locator); err != nil {
				s.errorf(rpath+".referenceLocator", "%v", err)
			}
		case "purl":
			if err := grammar.CheckPURL(ref.Locator); err != nil {
				s.errorf(rpath+".referenceLocator", "%v", err)
			}
		}
	}

	if pkg.PrimaryPackagePurpose != "" && !s.pol.PrimaryPurposeAllowed {
		s.errorf(path+".primaryPackagePurpose", "not available in %s", s.pol.Dialect)
	}
}

func (s *spdxChecker) file(f *spdx.File, path string) {
	if f.FileName == "" {
		s.errorf(path+".fileName", "required field is missing")
	}
	if f.FileSPDXIdentifier == "" {
		s.errorf(path+".SPDXID", "required field is missing")
	}
	if len(f.Checksums) == 0 {
		s.errorf(path+".checksums", "at least one checksum is required")
		return
	}
	hasSHA1 := false
	for i, sum := range f.Checksums {
		if sum.Algorithm == common.SHA1 {
			hasSHA1 = true
		}
		s.checksum(sum, fmt.Sprintf("%s.checksums[%d]", path, i))
	}
	if !hasSHA1 {
		s.errorf(path+".checksums", "a SHA1 checksum is required")
	}
}

func (s *spdxChecker) checksum(sum common.Checksum, path string) {
	alg, ok := grammar.NormalizeHashAlgorithm(string(sum.Algorithm))
	if !ok {
		s.errorf(path, "unknown checksum algorithm %q", sum.Algorithm)
		return
	}
	if err := grammar.CheckHash(alg, sum.Value); err != nil {
		s.errorf(path, "%v", err)
	}
}

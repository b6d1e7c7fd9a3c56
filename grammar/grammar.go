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

// Package grammar provides stand-alone format validators for the value
// grammars found in SBOM documents: UUIDs, timestamps, hash digests, URLs,
// emails, MIME types, CPE/PURL identifiers and SPDX license expressions.
//
// All checks are pure functions that return nil for a valid value and a
// descriptive error otherwise. They never panic; callers aggregate the
// errors into diagnostics.
package grammar

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/CycloneDX/cyclonedx-go"
	"github.com/google/uuid"
	"github.com/package-url/packageurl-go"
)

var (
	// RFC 4122 layout behind a urn:uuid: prefix. Version and variant bits
	// are not enforced here; use CheckSerialNumberStrict for that.
	serialNumberRE = regexp.MustCompile(`^urn:uuid:[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
	hexRE          = regexp.MustCompile(`^[0-9a-fA-F]+$`)
	emailRE        = regexp.MustCompile(`^[^@]+@[^@]+\.[^@]+$`)
	mimeRE         = regexp.MustCompile(`^[-+a-z0-9.]+/[-+a-z0-9.]+$`)
)

// CheckSerialNumber reports whether s is a urn:uuid serial number in the
// 8-4-4-4-12 hex-group layout, upper or lower case.
func CheckSerialNumber(s string) error {
	if !serialNumberRE.MatchString(s) {
		return fmt.Errorf("%q is not a urn:uuid RFC 4122 identifier", s)
	}
	return nil
}

// CheckSerialNumberStrict additionally parses the UUID, enforcing hex
// validity beyond the layout check.
func CheckSerialNumberStrict(s string) error {
	if err := CheckSerialNumber(s); err != nil {
		return err
	}
	if _, err := uuid.Parse(s); err != nil {
		return fmt.Errorf("%q is not a parseable UUID: %w", s, err)
	}
	return nil
}

// CheckTimestamp reports whether s is an ISO-8601 timestamp with an explicit
// timezone offset or Z suffix (RFC 3339).
func CheckTimestamp(s string) error {
	if _, err := time.Parse(time.RFC3339, s); err != nil {
		return fmt.Errorf("%q is not an ISO-8601 timestamp with timezone", s)
	}
	return nil
}

// hashLengths maps each supported hash algorithm to its hex-digit length.
var hashLengths = map[cyclonedx.HashAlgorithm]int{
	cyclonedx.HashAlgoMD5:         32,
	cyclonedx.HashAlgoSHA1:        40,
	cyclonedx.HashAlgoSHA256:      64,
	cyclonedx.HashAlgoSHA384:      96,
	cyclonedx.HashAlgoSHA512:      128,
	cyclonedx.HashAlgoSHA3_256:    64,
	cyclonedx.HashAlgoSHA3_384:    96,
	cyclonedx.HashAlgoSHA3_512:    128,
	cyclonedx.HashAlgoBlake2b_256: 64,
	cyclonedx.HashAlgoBlake2b_384: 96,
	cyclonedx.HashAlgoBlake2b_512: 128,
	cyclonedx.HashAlgoBlake3:      64,
}

// spdxHashAliases maps SPDX checksum algorithm spellings onto the CycloneDX
// vocabulary used by the hash length table.
var spdxHashAliases = map[string]cyclonedx.HashAlgorithm{
	"MD5":    cyclonedx.HashAlgoMD5,
	"SHA1":   cyclonedx.HashAlgoSHA1,
	"SHA256": cyclonedx.HashAlgoSHA256,
	"SHA384": cyclonedx.HashAlgoSHA384,
	"SHA512": cyclonedx.HashAlgoSHA512,
}

// HashLength returns the expected hex-digit length for alg and whether alg
// is in the supported set.
func HashLength(alg cyclonedx.HashAlgorithm) (int, bool) {
	n, ok := hashLengths[alg]
	return n, ok
}

// NormalizeHashAlgorithm resolves an algorithm name in either CycloneDX or
// SPDX spelling to the CycloneDX vocabulary.
func NormalizeHashAlgorithm(name string) (cyclonedx.HashAlgorithm, bool) {
	alg := cyclonedx.HashAlgorithm(name)
	if _, ok := hashLengths[alg]; ok {
		return alg, true
	}
	alg, ok := spdxHashAliases[name]
	return alg, ok
}

// CheckHash validates a digest against its algorithm: the algorithm must be
// in the supported set and the content must be hex of the algorithm's
// length. An unknown algorithm is its own error, independent of content.
func CheckHash(alg cyclonedx.HashAlgorithm, content string) error {
	want, ok := hashLengths[alg]
	if !ok {
		return fmt.Errorf("unknown hash algorithm %q", alg)
	}
	if len(content) != want || !hexRE.MatchString(content) {
		return fmt.Errorf("%s content must be %d hex digits", alg, want)
	}
	return nil
}

// CheckURL reports whether s parses as a URL with a scheme and a non-empty
// authority component.
func CheckURL(s string) error {
	u, err := url.Parse(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%q is not a valid URL", s)
	}
	return nil
}

// CheckEmail reports whether s has exactly one @ with a non-empty local
// part and a dotted domain.
func CheckEmail(s string) error {
	if !emailRE.MatchString(s) {
		return fmt.Errorf("%q is not a valid email address", s)
	}
	return nil
}

// CheckMIME reports whether s is a type/subtype MIME expression.
func CheckMIME(s string) error {
	if !mimeRE.MatchString(s) {
		return fmt.Errorf("%q is not a valid MIME type", s)
	}
	return nil
}

// CheckCPE reports whether s carries the cpe: prefix. The full CPE 2.2/2.3
// grammar is not enforced.
func CheckCPE(s string) error {
	if !strings.HasPrefix(s, "cpe:") {
		return fmt.Errorf("%q is not a CPE identifier (missing cpe: prefix)", s)
	}
	return nil
}

// CheckPURL reports whether s carries the pkg: prefix. The full package-url
// grammar is not enforced; see ParsePURL.
func CheckPURL(s string) error {
	if !strings.HasPrefix(s, "pkg:") {
		return fmt.Errorf("%q is not a package URL (missing pkg: prefix)", s)
	}
	return nil
}

// ParsePURL parses s with the package-url grammar. Callers that only need
// the lenient prefix rule should use CheckPURL.
func ParsePURL(s string) (packageurl.PackageURL, error) {
	return packageurl.FromString(s)
}

// CheckLicenseExpression applies a deliberately permissive heuristic: an
// expression is accepted if it is a single whitespace-free license id or
// contains one of the operators AND, OR or WITH. This is not a full SPDX
// expression parser.
func CheckLicenseExpression(s string) error {
	if s == "" {
		return errors.New("license expression is empty")
	}
	if !strings.Contains(s, " ") {
		return nil
	}
	for _, op := range []string{"AND", "OR", "WITH"} {
		if strings.Contains(s, op) {
			return nil
		}
	}
	return fmt.Errorf("%q is not a recognizable SPDX license expression", s)
}

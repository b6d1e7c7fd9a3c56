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

// Package document loads serialized SBOMs into the in-memory trees the
// validators consume. Deserialization failures are parse errors, reported
// before the core validator ever runs.
package document

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	spdxjson "github.com/spdx/tools-golang/json"
	"github.com/spdx/tools-golang/spdx"
	"github.com/spdx/tools-golang/tagvalue"

	"github.com/sbomtools/bomlint/cdx"
	"github.com/sbomtools/bomlint/log"
	"github.com/sbomtools/bomlint/policy"
)

// ErrUnknownFormat is returned when a file matches no recognized SBOM
// naming convention and its content identifies neither format.
var ErrUnknownFormat = errors.New("unrecognized SBOM format")

// Document is the parsed input to validation: exactly one of CDX or SPDX
// is set, selected by Format.
type Document struct {
	Format policy.Format
	CDX    *cdx.Document
	SPDX   *spdx.Document
}

// Dialect returns the (format, declared version) pair that selects the
// document's policy.
func (d *Document) Dialect() policy.Dialect {
	dialect := policy.Dialect{Format: d.Format}
	switch d.Format {
	case policy.FormatCycloneDX:
		if d.CDX != nil {
			dialect.Version = d.CDX.SpecVersion
		}
	case policy.FormatSPDX:
		if d.SPDX != nil {
			dialect.Version = d.SPDX.SPDXVersion
		}
	}
	return dialect
}

type decodeFunc = func(io.Reader) (*Document, error)

// Recognized file patterns, per the CycloneDX and SPDX naming conventions.
var decoderExtensions = map[string]decodeFunc{
	".cdx.json":  DecodeCycloneDX,
	".spdx.json": DecodeSPDXJSON,
	".spdx":      DecodeSPDXTagValue,
}

var decoderNames = map[string]decodeFunc{
	"bom.json": DecodeCycloneDX,
}

// FromFile reads and parses one SBOM file. The decoder is chosen by file
// naming convention; a bare .json file is sniffed by its discriminator
// field (bomFormat vs. spdxVersion).
func FromFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if decode := findDecoder(path); decode != nil {
		return decode(f)
	}
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		log.Debugf("%s matches no SBOM naming convention, sniffing content", path)
		return Sniff(f)
	}
	return nil, fmt.Errorf("%s: %w", path, ErrUnknownFormat)
}

func findDecoder(path string) decodeFunc {
	// For Windows
	path = filepath.ToSlash(path)
	lower := strings.ToLower(path)

	for ext, decode := range decoderExtensions {
		if strings.HasSuffix(lower, ext) {
			return decode
		}
	}
	for name, decode := range decoderNames {
		if strings.ToLower(filepath.Base(path)) == name {
			return decode
		}
	}
	return nil
}

// Sniff decodes a JSON document whose format is unknown, dispatching on
// the top-level discriminator field.
func Sniff(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var probe struct {
		BOMFormat   string `json:"bomFormat"`
		SPDXVersion string `json:"spdxVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("parsing SBOM: %w", err)
	}
	switch {
	case probe.BOMFormat != "":
		return DecodeCycloneDX(bytes.NewReader(data))
	case probe.SPDXVersion != "":
		return DecodeSPDXJSON(bytes.NewReader(data))
	}
	return nil, ErrUnknownFormat
}

// DecodeCycloneDX parses a CycloneDX JSON document.
func DecodeCycloneDX(r io.Reader) (*Document, error) {
	var doc cdx.Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing CycloneDX document: %w", err)
	}
	return &Document{Format: policy.FormatCycloneDX, CDX: &doc}, nil
}

// DecodeSPDXJSON parses an SPDX JSON document. tools-golang converts older
// documents to the latest model and rewrites SPDXVersion along the way, so
// the declared version is captured from the raw input and restored: dialect
// dispatch must see the version the document actually declares.
func DecodeSPDXJSON(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := spdxjson.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing SPDX document: %w", err)
	}
	var probe struct {
		SPDXVersion string `json:"spdxVersion"`
	}
	if err := json.Unmarshal(data, &probe); err == nil && probe.SPDXVersion != "" {
		doc.SPDXVersion = probe.SPDXVersion
	}
	return &Document{Format: policy.FormatSPDX, SPDX: doc}, nil
}

// DecodeSPDXTagValue parses an SPDX tag-value document, restoring the
// declared SPDXVersion the same way DecodeSPDXJSON does.
func DecodeSPDXTagValue(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	doc, err := tagvalue.Read(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing SPDX tag-value document: %w", err)
	}
	if declared := declaredTagValueVersion(data); declared != "" {
		doc.SPDXVersion = declared
	}
	return &Document{Format: policy.FormatSPDX, SPDX: doc}, nil
}

func declaredTagValueVersion(data []byte) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if v, ok := strings.CutPrefix(strings.TrimSpace(sc.Text()), "SPDXVersion:"); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

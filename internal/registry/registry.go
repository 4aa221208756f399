// Package registry decodes the external registry dump (crates.json,
// downloads.json) and the --crate-list file format into pkgid.Package
// values. Fetching these files is the caller's job (an external
// collaborator); this package only parses their bytes.
package registry

import (
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

// nameVersion is one entry of crates.json: a two-element [name, version]
// array.
type nameVersion [2]string

// LoadCrateList decodes crates.json (a JSON array of [name, version]
// pairs) into a ranked package list, joined against downloads. Packages
// are returned in the order they appear in the dump; callers rank with
// pkgid.SortByRank once downloads are attached.
func LoadCrateList(data []byte, downloads map[string]uint64) ([]pkgid.Package, error) {
	var raw []nameVersion
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("registry: decode crates.json: %w", err)
	}

	out := make([]pkgid.Package, 0, len(raw))
	for _, nv := range raw {
		out = append(out, pkgid.Package{
			Name:      nv[0],
			Version:   pkgid.ParseVersion(nv[1]),
			Downloads: downloads[nv[0]],
		})
	}
	return out, nil
}

// LoadDownloads decodes downloads.json (a JSON object mapping a package
// name to its recent download count, or null for unknown) into a plain
// map; a null value is treated as absent rather than zero.
func LoadDownloads(data []byte) (map[string]uint64, error) {
	var raw map[string]*uint64
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("registry: decode downloads.json: %w", err)
	}

	out := make(map[string]uint64, len(raw))
	for name, n := range raw {
		if n != nil {
			out[name] = *n
		}
	}
	return out, nil
}

// ParseCrateListFile parses the --crate-list file format: a whitespace
// separated list of tokens, each "name@version", "name/version", or a
// bare "name". yaml.v3 is tried first (a YAML list of the same tokens is
// also accepted); when the file doesn't parse as valid YAML, it falls
// back to plain whitespace-separated text. A bare name is resolved
// against all, the master crate list, taking its version and downloads;
// names absent from all are silently dropped (the package no longer
// exists in the registry dump).
func ParseCrateListFile(data []byte, all []pkgid.Package) ([]pkgid.Package, error) {
	tokens, err := tokenizeCrateList(data)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]pkgid.Package, len(all))
	for _, p := range all {
		byName[p.Name] = p
	}

	out := make([]pkgid.Package, 0, len(tokens))
	for _, tok := range tokens {
		name, versionStr, hasVersion := splitNameVersion(tok)

		known, ok := byName[name]
		if !ok {
			continue
		}

		pkg := known
		if hasVersion {
			pkg.Version = pkgid.ParseVersion(versionStr)
		}
		out = append(out, pkg)
	}
	return out, nil
}

// tokenizeCrateList splits the raw file contents into whitespace tokens,
// preferring a YAML list parse when the contents happen to be valid YAML.
func tokenizeCrateList(data []byte) ([]string, error) {
	var asYAML []string
	if err := yaml.Unmarshal(data, &asYAML); err == nil && len(asYAML) > 0 {
		var tokens []string
		for _, line := range asYAML {
			tokens = append(tokens, strings.Fields(line)...)
		}
		return tokens, nil
	}
	return strings.Fields(string(data)), nil
}

// splitNameVersion splits "name@version" or "name/version" into its
// parts; a bare name (neither separator present) reports hasVersion=false.
func splitNameVersion(tok string) (name, version string, hasVersion bool) {
	if i := strings.IndexByte(tok, '@'); i >= 0 {
		return tok[:i], tok[i+1:], true
	}
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		return tok[:i], tok[i+1:], true
	}
	return tok, "", false
}

// IgnoreSet builds a lookup set from a newline/whitespace separated list
// of package names permanently excluded from every run (packages known to
// produce unbounded output without finishing).
func IgnoreSet(data []byte) map[string]bool {
	fields := strings.Fields(string(data))
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		out[f] = true
	}
	return out
}

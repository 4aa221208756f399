package pkgid

import "sort"

// Package identifies one published unit of the target ecosystem: a name
// plus a version. Two packages are the same identity if both fields are
// equal; callers that need to collapse duplicates by (name, version) can
// use Key as a map key.
type Package struct {
	Name    string
	Version Version

	// Downloads is the optional recent-download count, used only for
	// ranking; zero means "unknown", not "zero downloads".
	Downloads uint64
}

// Key is a comparable (name, version-string) pair suitable for
// deduplicating a package list in a map.
type Key struct {
	Name    string
	Version string
}

// Key returns p's dedup key.
func (p Package) Key() Key {
	return Key{Name: p.Name, Version: p.Version.String()}
}

// Dedup collapses a package list by (name, version), keeping the first
// occurrence of each key.
func Dedup(pkgs []Package) []Package {
	seen := make(map[Key]struct{}, len(pkgs))
	out := make([]Package, 0, len(pkgs))
	for _, p := range pkgs {
		k := p.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

// SortByRank orders packages by (downloads desc, version desc), the
// ordering the aggregator's UB listing page uses before deduping by name.
func SortByRank(pkgs []Package) {
	sort.Slice(pkgs, func(i, j int) bool {
		if pkgs[i].Downloads != pkgs[j].Downloads {
			return pkgs[i].Downloads > pkgs[j].Downloads
		}
		return pkgs[j].Version.Less(pkgs[i].Version)
	})
}

// DedupByNameKeepingHighestVersion keeps, for each distinct package name,
// only the entry with the highest version. Input order is otherwise
// preserved for ties.
func DedupByNameKeepingHighestVersion(pkgs []Package) []Package {
	best := make(map[string]Package, len(pkgs))
	order := make([]string, 0, len(pkgs))
	for _, p := range pkgs {
		cur, ok := best[p.Name]
		if !ok {
			order = append(order, p.Name)
			best[p.Name] = p
			continue
		}
		if cur.Version.Less(p.Version) {
			best[p.Name] = p
		}
	}
	out := make([]Package, 0, len(order))
	for _, name := range order {
		out = append(out, best[name])
	}
	return out
}

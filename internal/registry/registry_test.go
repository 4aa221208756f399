package registry

import (
	"testing"

	"github.com/ubfleet/ubfleet/internal/pkgid"
)

func TestLoadCrateListJoinsDownloads(t *testing.T) {
	crates := []byte(`[["serde","1.0.0"],["regex","1.9.0"]]`)
	downloads := map[string]uint64{"serde": 42}

	pkgs, err := LoadCrateList(crates, downloads)
	if err != nil {
		t.Fatalf("LoadCrateList: %v", err)
	}
	if len(pkgs) != 2 {
		t.Fatalf("expected 2 packages, got %d", len(pkgs))
	}
	if pkgs[0].Name != "serde" || pkgs[0].Downloads != 42 {
		t.Fatalf("serde entry wrong: %+v", pkgs[0])
	}
	if pkgs[1].Downloads != 0 {
		t.Fatalf("regex entry should default to zero downloads, got %d", pkgs[1].Downloads)
	}
}

func TestLoadDownloadsTreatsNullAsAbsent(t *testing.T) {
	data := []byte(`{"serde": 42, "regex": null}`)
	downloads, err := LoadDownloads(data)
	if err != nil {
		t.Fatalf("LoadDownloads: %v", err)
	}
	if downloads["serde"] != 42 {
		t.Fatalf("expected serde=42, got %d", downloads["serde"])
	}
	if _, ok := downloads["regex"]; ok {
		t.Fatalf("expected regex to be absent (null), found %d", downloads["regex"])
	}
}

func TestParseCrateListFileAcceptsAllSeparatorForms(t *testing.T) {
	all := []pkgid.Package{
		{Name: "serde", Version: pkgid.ParseVersion("1.0.0"), Downloads: 100},
		{Name: "regex", Version: pkgid.ParseVersion("1.9.0"), Downloads: 50},
		{Name: "anyhow", Version: pkgid.ParseVersion("1.0.75"), Downloads: 10},
	}

	out, err := ParseCrateListFile([]byte("serde@1.2.0 regex/1.9.0 anyhow\n"), all)
	if err != nil {
		t.Fatalf("ParseCrateListFile: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("expected 3 resolved packages, got %d: %+v", len(out), out)
	}
	if out[0].Version.String() != "1.2.0" {
		t.Fatalf("expected explicit @version override, got %q", out[0].Version.String())
	}
	if out[1].Version.String() != "1.9.0" {
		t.Fatalf("expected explicit /version override, got %q", out[1].Version.String())
	}
	if out[2].Version.String() != "1.0.75" {
		t.Fatalf("expected bare name to resolve to known version, got %q", out[2].Version.String())
	}
}

func TestParseCrateListFileDropsUnknownNames(t *testing.T) {
	out, err := ParseCrateListFile([]byte("ghost-crate\n"), nil)
	if err != nil {
		t.Fatalf("ParseCrateListFile: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected unknown name to be dropped, got %+v", out)
	}
}

func TestIgnoreSetSplitsOnWhitespace(t *testing.T) {
	set := IgnoreSet([]byte("foo\nbar baz\n"))
	for _, name := range []string{"foo", "bar", "baz"} {
		if !set[name] {
			t.Fatalf("expected %q in ignore set", name)
		}
	}
	if set["quux"] {
		t.Fatalf("unexpected name in ignore set")
	}
}
